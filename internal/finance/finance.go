// Package finance holds the order revenue/profit/tax arithmetic used
// by the admin dashboard. Everything here is pure: no I/O, no retained
// state, safe to re-run on every request.
package finance

import (
	"github.com/shopspring/decimal"
	"github.com/wayofglory/shop/internal/domain/models"
)

// Categories a line item can be a service under. Items in these
// categories, or flagged as services, bear no sales tax.
const (
	CategoryServices       = "Services"
	CategoryServicesCustom = "Services/Custom"
)

// Calculator carries the business rates. Rates are configuration, not
// constants baked into the arithmetic, so they can change without a
// code change.
type Calculator struct {
	// TaxRate is the sales tax applied to taxable (physical product)
	// subtotals, e.g. 0.0775 for Riverside, CA.
	TaxRate decimal.Decimal
	// ProductMargin is the flat profit margin applied to product
	// revenue, e.g. 0.2155. Services and installation are treated as
	// 100% margin.
	ProductMargin decimal.Decimal
}

// NewCalculator builds a Calculator from float rates as they appear in
// the config file.
func NewCalculator(taxRate, productMargin float64) Calculator {
	return Calculator{
		TaxRate:       decimal.NewFromFloat(taxRate),
		ProductMargin: decimal.NewFromFloat(productMargin),
	}
}

// Breakdown splits an amount across the three revenue categories.
type Breakdown struct {
	Products     decimal.Decimal `json:"products"`
	Services     decimal.Decimal `json:"services"`
	Installation decimal.Decimal `json:"installation"`
}

// Total sums the three categories.
func (b Breakdown) Total() decimal.Decimal {
	return b.Products.Add(b.Services).Add(b.Installation)
}

func (b Breakdown) add(o Breakdown) Breakdown {
	return Breakdown{
		Products:     b.Products.Add(o.Products),
		Services:     b.Services.Add(o.Services),
		Installation: b.Installation.Add(o.Installation),
	}
}

// OrderFinancials is the per-order aggregate exposed to the dashboard.
type OrderFinancials struct {
	Revenue      Breakdown       `json:"revenue"`
	Profit       Breakdown       `json:"profit"`
	Tax          decimal.Decimal `json:"tax"`
	TotalWithTax decimal.Decimal `json:"total_with_tax"`
}

// IsServiceItem reports whether a line item is non-taxable labor
// rather than a physical product. A missing product snapshot means
// "not a service".
func IsServiceItem(item models.OrderItem) bool {
	if item.Product == nil {
		return false
	}
	return item.Product.Category == CategoryServices ||
		item.Product.Category == CategoryServicesCustom ||
		item.Product.IsService
}

// IsServiceOnlyOrder reports whether every item in the order is a
// service; such orders bear no sales tax at all.
func IsServiceOnlyOrder(order models.Order) bool {
	for _, item := range order.Items {
		if !IsServiceItem(item) {
			return false
		}
	}
	return true
}

// extendedPrice is unit price times quantity, using the price frozen
// at order time.
func extendedPrice(item models.OrderItem) decimal.Decimal {
	return item.PriceAtTime.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// subtotals partitions the order's items into taxable and non-taxable
// buckets and sums their extended prices.
func subtotals(order models.Order) (taxable, nonTaxable decimal.Decimal) {
	for _, item := range order.Items {
		if IsServiceItem(item) {
			nonTaxable = nonTaxable.Add(extendedPrice(item))
		} else {
			taxable = taxable.Add(extendedPrice(item))
		}
	}
	return taxable, nonTaxable
}

// OrderTax computes the sales tax for one order. Only physical
// products are taxed.
func (c Calculator) OrderTax(order models.Order) decimal.Decimal {
	taxable, _ := subtotals(order)
	return taxable.Mul(c.TaxRate)
}

// OrderRevenue splits the order's revenue across products, services
// and installation.
func (c Calculator) OrderRevenue(order models.Order) Breakdown {
	taxable, nonTaxable := subtotals(order)
	return Breakdown{
		Products:     taxable,
		Services:     nonTaxable,
		Installation: order.InstallationPrice.Decimal,
	}
}

// OrderProfit splits the order's profit across the same categories.
// Product profit is the flat ProductMargin applied to product
// revenue; services and installation carry no cost, so their revenue
// is their profit.
func (c Calculator) OrderProfit(order models.Order) Breakdown {
	taxable, nonTaxable := subtotals(order)
	return Breakdown{
		Products:     taxable.Mul(c.ProductMargin),
		Services:     nonTaxable,
		Installation: order.InstallationPrice.Decimal,
	}
}

// OrderTotalWithTax is what the customer owes: both subtotals, tax on
// the taxable part, and the installation fee.
func (c Calculator) OrderTotalWithTax(order models.Order) decimal.Decimal {
	taxable, nonTaxable := subtotals(order)
	tax := taxable.Mul(c.TaxRate)
	return taxable.Add(nonTaxable).Add(tax).Add(order.InstallationPrice.Decimal)
}

// Aggregate computes the full per-order financial view.
func (c Calculator) Aggregate(order models.Order) OrderFinancials {
	return OrderFinancials{
		Revenue:      c.OrderRevenue(order),
		Profit:       c.OrderProfit(order),
		Tax:          c.OrderTax(order),
		TotalWithTax: c.OrderTotalWithTax(order),
	}
}

// CostBasisProfit computes profit from the actual frozen unit costs,
// (price - cost) * quantity per item plus the installation fee. This
// is the secondary figure behind the portfolio margin percentage; the
// per-category dashboard numbers use the flat-margin path above.
func CostBasisProfit(orders []models.Order) decimal.Decimal {
	var total decimal.Decimal
	for _, order := range orders {
		for _, item := range order.Items {
			unit := item.PriceAtTime.Decimal.Sub(item.CostAtTime.Decimal)
			total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		total = total.Add(order.InstallationPrice.Decimal)
	}
	return total
}

// StatusCounts is the number of orders per lifecycle state.
type StatusCounts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Confirmed int `json:"confirmed"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// Summary is the portfolio-level read model shown at the top of the
// admin orders page. Recomputed from scratch on every request.
type Summary struct {
	Statuses           StatusCounts    `json:"statuses"`
	Revenue            Breakdown       `json:"revenue"`
	Profit             Breakdown       `json:"profit"`
	TotalTax           decimal.Decimal `json:"total_tax"`
	AverageTaxPerOrder decimal.Decimal `json:"average_tax_per_order"`
	CostBasisProfit    decimal.Decimal `json:"cost_basis_profit"`
	// ProfitMarginPercent is cost-basis profit over total revenue,
	// as a percentage. Zero when there is no revenue.
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`
}

// Summarize folds Aggregate over the whole collection. An empty
// collection yields an all-zero summary; averages never divide by
// zero.
func (c Calculator) Summarize(orders []models.Order) Summary {
	var s Summary
	s.Statuses.Total = len(orders)

	for _, order := range orders {
		switch order.Status {
		case models.StatusPending:
			s.Statuses.Pending++
		case models.StatusConfirmed:
			s.Statuses.Confirmed++
		case models.StatusCompleted:
			s.Statuses.Completed++
		case models.StatusCancelled:
			s.Statuses.Cancelled++
		}

		s.Revenue = s.Revenue.add(c.OrderRevenue(order))
		s.Profit = s.Profit.add(c.OrderProfit(order))
		s.TotalTax = s.TotalTax.Add(c.OrderTax(order))
	}

	if len(orders) > 0 {
		s.AverageTaxPerOrder = s.TotalTax.Div(decimal.NewFromInt(int64(len(orders))))
	}

	s.CostBasisProfit = CostBasisProfit(orders)
	if revenue := s.Revenue.Total(); !revenue.IsZero() {
		s.ProfitMarginPercent = s.CostBasisProfit.Div(revenue).Mul(decimal.NewFromInt(100))
	}
	return s
}
