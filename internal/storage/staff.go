package storage

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wayofglory/shop/internal/domain/models"
)

var ErrStaffNotFound = errors.New("staff not found")

// StaffStorage describes admin account lookups.
type StaffStorage interface {
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
}

type staffRepository struct {
	db *sql.DB
}

// NewStaffRepository creates the staff repository.
func NewStaffRepository(db *sql.DB) StaffStorage {
	return &staffRepository{db: db}
}

func (r *staffRepository) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	staff := &models.Staff{}
	query := `SELECT id, email, pass_hash FROM staff WHERE email = $1`
	row := r.db.QueryRowContext(ctx, query, email)
	if err := row.Scan(&staff.ID, &staff.Email, &staff.PassHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return staff, nil
}
