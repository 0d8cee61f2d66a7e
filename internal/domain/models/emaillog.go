package models

import "time"

// EmailLog records one order-related email sent to a customer.
// Preview holds the first 200 characters of the content.
type EmailLog struct {
	ID         int64     `json:"id"`
	OrderID    int64     `json:"order_id"`
	TemplateID string    `json:"template_id,omitempty"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Preview    string    `json:"preview"`
	SentAt     time.Time `json:"sent_at"`
}
