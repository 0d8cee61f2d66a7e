package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wayofglory/shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage describes persistence for orders and their line items.
type OrderStorage interface {
	// ListOrders returns every order with its items and product
	// snapshots, newest first.
	ListOrders(ctx context.Context) ([]models.Order, error)
	// GetOrderByID returns one order with its items.
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	// CreateOrder inserts an order inside the checkout transaction and
	// returns the generated id.
	CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error)
	// CreateOrderItem inserts one line item inside the checkout transaction.
	CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	// UpdateOrderStatus sets the order's status; ErrOrderNotFound when
	// no row matched.
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
	// DeleteOrder removes the order and its items. Irreversible.
	DeleteOrder(ctx context.Context, id int64) error
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates the postgres-backed order repository.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

const orderColumns = `o.id, o.order_number, o.first_name, o.last_name, o.email, o.phone, o.organization,
	o.shipping_address, o.shipping_city, o.shipping_state, o.shipping_zip, o.shipping_instructions,
	o.installation_address, o.installation_city, o.installation_state, o.installation_zip,
	o.installation_date, o.installation_time, o.access_instructions, o.contact_onsite, o.contact_onsite_phone,
	o.payment_method, o.total_amount, o.installation_price, o.signature_url, o.status, o.created_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.FirstName, &order.LastName, &order.Email, &order.Phone, &order.Organization,
		&order.ShippingAddress, &order.ShippingCity, &order.ShippingState, &order.ShippingZip, &order.ShippingInstructions,
		&order.InstallationAddress, &order.InstallationCity, &order.InstallationState, &order.InstallationZip,
		&order.InstallationDate, &order.InstallationTime, &order.AccessInstructions, &order.ContactOnsite, &order.ContactOnsitePhone,
		&order.PaymentMethod, &order.TotalAmount, &order.InstallationPrice, &order.SignatureURL, &order.Status, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListOrders(ctx context.Context) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders o ORDER BY o.created_at DESC`, orderColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	index := make(map[int64]int)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[order.ID] = len(orders)
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []models.Order{}, nil
	}

	items, err := r.listItems(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, nil
}

// listItems fetches every line item with its product snapshot in one
// query; the caller attaches them to their orders.
func (r *orderRepository) listItems(ctx context.Context) ([]models.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_time, oi.cost_at_time,
		       oi.product_title, oi.product_category, oi.product_is_service
		FROM order_items oi
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanItem(row interface{ Scan(...interface{}) error }) (*models.OrderItem, error) {
	item := &models.OrderItem{}
	snapshot := &models.ProductSnapshot{}
	if err := row.Scan(
		&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtTime, &item.CostAtTime,
		&snapshot.Title, &snapshot.Category, &snapshot.IsService,
	); err != nil {
		return nil, err
	}
	item.Product = snapshot
	return item, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders o WHERE o.id = $1`, orderColumns)
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_time, oi.cost_at_time,
		       oi.product_title, oi.product_category, oi.product_is_service
		FROM order_items oi
		WHERE oi.order_id = $1
		ORDER BY oi.id`
	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	query := `
		INSERT INTO orders (
			order_number, first_name, last_name, email, phone, organization,
			shipping_address, shipping_city, shipping_state, shipping_zip, shipping_instructions,
			installation_address, installation_city, installation_state, installation_zip,
			installation_date, installation_time, access_instructions, contact_onsite, contact_onsite_phone,
			payment_method, total_amount, installation_price, signature_url, status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,NOW())
		RETURNING id`
	var id int64
	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.FirstName, order.LastName, order.Email, order.Phone, order.Organization,
		order.ShippingAddress, order.ShippingCity, order.ShippingState, order.ShippingZip, order.ShippingInstructions,
		order.InstallationAddress, order.InstallationCity, order.InstallationState, order.InstallationZip,
		order.InstallationDate, order.InstallationTime, order.AccessInstructions, order.ContactOnsite, order.ContactOnsitePhone,
		order.PaymentMethod, order.TotalAmount, order.InstallationPrice, order.SignatureURL, order.Status,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (
			order_id, product_id, quantity, price_at_time, cost_at_time,
			product_title, product_category, product_is_service
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := tx.ExecContext(ctx, query,
		item.OrderID, item.ProductID, item.Quantity, item.PriceAtTime, item.CostAtTime,
		item.Product.Title, item.Product.Category, item.Product.IsService,
	)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	// order_items has ON DELETE CASCADE; one statement is enough.
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}
