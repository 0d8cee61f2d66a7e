package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/finance"
	"github.com/wayofglory/shop/internal/listing"
	"github.com/wayofglory/shop/internal/storage"
)

// OrderService is the admin read/mutate surface for orders.
type OrderService interface {
	// ListOrders applies the operator's criteria and returns the view
	// list together with portfolio statistics over all orders.
	ListOrders(ctx context.Context, criteria listing.Criteria) (*OrderListing, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	// UpdateStatus transitions an order to a new lifecycle state after
	// validating it against the closed status set.
	UpdateStatus(ctx context.Context, id int64, status string) error
	// DeleteOrder removes an order permanently. There is no tombstone.
	DeleteOrder(ctx context.Context, id int64) error
}

// OrderListing is the admin list response: the filtered view plus the
// summary computed over the whole collection.
type OrderListing struct {
	Orders []models.Order  `json:"orders"`
	Stats  finance.Summary `json:"stats"`
}

type orderService struct {
	log        *slog.Logger
	orderRepo  storage.OrderStorage
	calculator finance.Calculator
	now        func() time.Time
}

func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, calculator finance.Calculator) OrderService {
	return &orderService{
		log:        log,
		orderRepo:  orderRepo,
		calculator: calculator,
		now:        time.Now,
	}
}

func (s *orderService) ListOrders(ctx context.Context, criteria listing.Criteria) (*OrderListing, error) {
	const op = "service.OrderService.ListOrders"
	logger := s.log.With(slog.String("op", op))

	orders, err := s.orderRepo.ListOrders(ctx)
	if err != nil {
		logger.Error("failed to list orders", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to list orders: %w", op, err)
	}

	// Stats always cover the full collection; filters only narrow the
	// visible list.
	stats := s.calculator.Summarize(orders)
	view := listing.Apply(orders, criteria, s.now())

	logger.Info("orders listed", slog.Int("total", len(orders)), slog.Int("visible", len(view)))
	return &OrderListing{Orders: view, Stats: stats}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	const op = "service.OrderService.GetOrder"

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		s.log.Error("failed to get order", slog.String("op", op), slog.Int64("orderID", id), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	const op = "service.OrderService.UpdateStatus"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id), slog.String("status", status))

	parsed, err := models.ParseOrderStatus(status)
	if err != nil {
		logger.Warn("rejected status value")
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, id, parsed); err != nil {
		logger.Error("failed to update order status", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order status updated")
	return nil
}

func (s *orderService) DeleteOrder(ctx context.Context, id int64) error {
	const op = "service.OrderService.DeleteOrder"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", id))

	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		logger.Error("failed to delete order", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("order deleted")
	return nil
}
