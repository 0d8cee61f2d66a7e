package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/lib/openai"
	"github.com/wayofglory/shop/internal/service"
	"github.com/wayofglory/shop/internal/storage"
)

// GenerateEmailRequest is the AI composer payload.
type GenerateEmailRequest struct {
	OrderID          int64  `json:"order_id" validate:"required,gt=0"`
	Prompt           string `json:"prompt"`
	TemplateType     string `json:"template_type"`
	IsTemplateChange bool   `json:"is_template_change"`
}

// GenerateEmailHandler handles POST /api/admin/generate-email.
func GenerateEmailHandler(log *slog.Logger, emailService service.EmailService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GenerateEmailHandler"
		logger := log.With(slog.String("op", op))

		var req GenerateEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		result, err := emailService.GenerateEmail(r.Context(), req.OrderID, req.Prompt, req.TemplateType, req.IsTemplateChange)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, openai.ErrNoAPIKey):
				http.Error(w, "email generation is not configured", http.StatusServiceUnavailable)
			default:
				logger.Error("failed to generate email", slog.Any("error", err))
				http.Error(w, "failed to generate email content", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, logger, result)
	}
}

// SendEmailRequest selects the canned template to send.
type SendEmailRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// SendEmailHandler handles POST /api/admin/orders/{id}/send-email.
func SendEmailHandler(log *slog.Logger, emailService service.EmailService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.SendEmailHandler"
		logger := log.With(slog.String("op", op))

		id, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		var req SendEmailRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "validation error", http.StatusBadRequest)
			return
		}

		entry, err := emailService.SendTemplate(r.Context(), id, req.TemplateID)
		if err != nil {
			if errors.Is(err, storage.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			logger.Error("failed to send email", slog.Any("error", err))
			http.Error(w, "failed to send email", http.StatusInternalServerError)
			return
		}

		writeJSON(w, logger, entry)
	}
}

// EmailLogsHandler handles GET /api/admin/orders/{id}/email-logs.
func EmailLogsHandler(log *slog.Logger, emailService service.EmailService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.EmailLogsHandler"
		logger := log.With(slog.String("op", op))

		id, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "invalid order id", http.StatusBadRequest)
			return
		}

		logs, err := emailService.EmailLogs(r.Context(), id)
		if err != nil {
			logger.Error("failed to fetch email logs", slog.Any("error", err))
			http.Error(w, "failed to fetch email logs", http.StatusInternalServerError)
			return
		}
		if logs == nil {
			logs = []models.EmailLog{}
		}

		writeJSON(w, logger, logs)
	}
}
