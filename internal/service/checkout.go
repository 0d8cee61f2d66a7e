package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/finance"
	"github.com/wayofglory/shop/internal/storage"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// CheckoutService turns a storefront cart into a persisted order.
type CheckoutService interface {
	PlaceOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// CheckoutRequest is the validated payload from the checkout wizard's
// final step.
type CheckoutRequest struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Organization string

	ShippingAddress      string
	ShippingCity         string
	ShippingState        string
	ShippingZip          string
	ShippingInstructions string

	InstallationAddress string
	InstallationCity    string
	InstallationState   string
	InstallationZip     string
	InstallationDate    string
	InstallationTime    string
	AccessInstructions  string
	ContactOnsite       string
	ContactOnsitePhone  string

	PaymentMethod     string
	InstallationPrice models.Money
	Items             []CheckoutItem
}

type CheckoutItem struct {
	ProductID int64
	Quantity  int
}

// CheckoutResult is returned to the storefront after a successful
// order.
type CheckoutResult struct {
	OrderID     int64        `json:"id"`
	OrderNumber string       `json:"order_number"`
	TotalAmount models.Money `json:"total_amount"`
}

type checkoutService struct {
	log         *slog.Logger
	db          *sql.DB
	orderRepo   storage.OrderStorage
	productRepo storage.ProductStorage
	calculator  finance.Calculator
}

func NewCheckoutService(log *slog.Logger, db *sql.DB, orderRepo storage.OrderStorage, productRepo storage.ProductStorage, calculator finance.Calculator) CheckoutService {
	return &checkoutService{
		log:         log,
		db:          db,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		calculator:  calculator,
	}
}

// newOrderNumber produces a short human-readable confirmation code.
func newOrderNumber() string {
	id := uuid.New().String()
	return "WOG-" + strings.ToUpper(id[:8])
}

// PlaceOrder loads each cart product inside one transaction, freezes
// its price, cost and classification onto the line item, computes the
// total with tax, and persists the order. Any failure rolls the whole
// order back.
func (s *checkoutService) PlaceOrder(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	const op = "service.CheckoutService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.String("email", req.Email))

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyCart)
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%s: product %d: %w", op, item.ProductID, ErrInvalidQuantity)
		}
	}

	logger.Info("starting checkout transaction", slog.Int("items", len(req.Items)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	order := buildOrder(req)
	for _, cartItem := range req.Items {
		product, err := s.productRepo.GetProductByID(ctx, tx, cartItem.ProductID)
		if err != nil {
			s.rollback(tx, logger)
			logger.Error("failed to get product", slog.Int64("productID", cartItem.ProductID), slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to get product %d: %w", op, cartItem.ProductID, err)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			Quantity:    cartItem.Quantity,
			PriceAtTime: product.Price,
			CostAtTime:  product.Cost,
			Product:     product.Snapshot(),
		})
	}

	order.TotalAmount = models.MoneyFromDecimal(s.calculator.OrderTotalWithTax(*order))

	orderID, err := s.orderRepo.CreateOrder(ctx, tx, order)
	if err != nil {
		s.rollback(tx, logger)
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range order.Items {
		order.Items[i].OrderID = orderID
		if err := s.orderRepo.CreateOrderItem(ctx, tx, &order.Items[i]); err != nil {
			s.rollback(tx, logger)
			logger.Error("failed to create order item", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order placed", slog.Int64("orderID", orderID), slog.String("orderNumber", order.OrderNumber))
	return &CheckoutResult{
		OrderID:     orderID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
	}, nil
}

func (s *checkoutService) rollback(tx *sql.Tx, logger *slog.Logger) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}

func buildOrder(req CheckoutRequest) *models.Order {
	return &models.Order{
		OrderNumber:          newOrderNumber(),
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Phone:                req.Phone,
		Organization:         req.Organization,
		ShippingAddress:      req.ShippingAddress,
		ShippingCity:         req.ShippingCity,
		ShippingState:        req.ShippingState,
		ShippingZip:          req.ShippingZip,
		ShippingInstructions: req.ShippingInstructions,
		InstallationAddress:  req.InstallationAddress,
		InstallationCity:     req.InstallationCity,
		InstallationState:    req.InstallationState,
		InstallationZip:      req.InstallationZip,
		InstallationDate:     req.InstallationDate,
		InstallationTime:     req.InstallationTime,
		AccessInstructions:   req.AccessInstructions,
		ContactOnsite:        req.ContactOnsite,
		ContactOnsitePhone:   req.ContactOnsitePhone,
		PaymentMethod:        req.PaymentMethod,
		InstallationPrice:    req.InstallationPrice,
		Status:               models.StatusPending,
	}
}
