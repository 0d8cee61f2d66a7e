package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wayofglory/shop/internal/domain/models"
)

// EmailLogStorage records order emails for the admin history view.
type EmailLogStorage interface {
	CreateEmailLog(ctx context.Context, entry *models.EmailLog) error
	// GetLogsByOrderID returns the order's email history, newest
	// first, with a 200-character content preview.
	GetLogsByOrderID(ctx context.Context, orderID int64) ([]models.EmailLog, error)
}

type emailLogRepository struct {
	db *sql.DB
}

// NewEmailLogRepository creates the email log repository.
func NewEmailLogRepository(db *sql.DB) EmailLogStorage {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) CreateEmailLog(ctx context.Context, entry *models.EmailLog) error {
	query := `INSERT INTO email_logs (order_id, template_id, subject, content, sent_at)
	          VALUES ($1, $2, $3, $4, NOW())`
	_, err := r.db.ExecContext(ctx, query, entry.OrderID, entry.TemplateID, entry.Subject, entry.Content)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

func (r *emailLogRepository) GetLogsByOrderID(ctx context.Context, orderID int64) ([]models.EmailLog, error) {
	query := `
		SELECT el.id, el.order_id, el.template_id, el.subject, el.content,
		       SUBSTRING(el.content, 1, 200) AS preview, el.sent_at
		FROM email_logs el
		WHERE el.order_id = $1
		ORDER BY el.sent_at DESC`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.EmailLog
	for rows.Next() {
		var entry models.EmailLog
		if err := rows.Scan(&entry.ID, &entry.OrderID, &entry.TemplateID, &entry.Subject, &entry.Content, &entry.Preview, &entry.SentAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
