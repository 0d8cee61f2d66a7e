package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wayofglory/shop/internal/domain/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductStorage describes catalog reads.
type ProductStorage interface {
	// ListActiveProducts returns the storefront catalog.
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	// GetProductByID loads one product inside the checkout transaction
	// so its price and cost can be frozen onto the line item.
	GetProductByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates the catalog repository.
func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

func (r *productRepository) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, title, description, category, price, cost, is_service, active
		FROM products
		WHERE active = TRUE
		ORDER BY category, title`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Cost, &p.IsService, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) GetProductByID(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT id, title, description, category, price, cost, is_service, active FROM products WHERE id = $1`
	row := tx.QueryRowContext(ctx, query, id)
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Price, &p.Cost, &p.IsService, &p.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}
