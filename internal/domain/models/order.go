package models

import (
	"errors"
	"time"
)

// OrderStatus is the lifecycle state of an order. The set is closed:
// anything outside these four values is rejected at the boundary.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

var ErrInvalidStatus = errors.New("invalid order status")

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Order is one customer purchase transaction with its line items.
type Order struct {
	ID           int64  `json:"id"`
	OrderNumber  string `json:"order_number"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization,omitempty"`

	ShippingAddress      string `json:"shipping_address"`
	ShippingCity         string `json:"shipping_city"`
	ShippingState        string `json:"shipping_state"`
	ShippingZip          string `json:"shipping_zip"`
	ShippingInstructions string `json:"shipping_instructions,omitempty"`

	InstallationAddress string `json:"installation_address,omitempty"`
	InstallationCity    string `json:"installation_city,omitempty"`
	InstallationState   string `json:"installation_state,omitempty"`
	InstallationZip     string `json:"installation_zip,omitempty"`
	InstallationDate    string `json:"installation_date,omitempty"`
	InstallationTime    string `json:"installation_time,omitempty"`
	AccessInstructions  string `json:"access_instructions,omitempty"`
	ContactOnsite       string `json:"contact_onsite,omitempty"`
	ContactOnsitePhone  string `json:"contact_onsite_phone,omitempty"`

	PaymentMethod     string      `json:"payment_method"`
	TotalAmount       Money       `json:"total_amount"`
	InstallationPrice Money       `json:"installation_price"`
	SignatureURL      string      `json:"signature_url,omitempty"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
	Items             []OrderItem `json:"order_items"`
}

// OrderItem is one line within an order. Price and cost are frozen at
// order time; later catalog changes never touch historical orders.
type OrderItem struct {
	ID          int64            `json:"id"`
	OrderID     int64            `json:"order_id"`
	ProductID   int64            `json:"product_id"`
	Quantity    int              `json:"quantity"`
	PriceAtTime Money            `json:"price_at_time"`
	CostAtTime  Money            `json:"cost_at_time"`
	Product     *ProductSnapshot `json:"product,omitempty"`
}

// ProductSnapshot is the denormalized copy of the product's
// classification embedded in a line item at the time of sale.
type ProductSnapshot struct {
	Title     string `json:"title"`
	Category  string `json:"category,omitempty"`
	IsService bool   `json:"is_service,omitempty"`
}
