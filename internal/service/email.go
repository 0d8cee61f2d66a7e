package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wayofglory/shop/internal/domain/models"
	"github.com/wayofglory/shop/internal/lib/emailtmpl"
	"github.com/wayofglory/shop/internal/lib/openai"
	"github.com/wayofglory/shop/internal/storage"
)

// fallbackSubject is used when the model's reply carries no
// "Subject:" line.
const fallbackSubject = "Way of Glory - Order Update"

// Mailer delivers a rendered email. Actual SMTP delivery is outside
// this service; the default implementation records the send in the
// log stream and the email_logs table is the source of truth.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// LogMailer is the no-transport Mailer used until an SMTP provider is
// wired in.
type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) Send(ctx context.Context, to, subject, html string) error {
	m.Log.Info("email dispatched",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.Int("bytes", len(html)),
	)
	return nil
}

// GeneratedEmail is the AI composer's output.
type GeneratedEmail struct {
	Subject       string `json:"subject"`
	Content       string `json:"content"`
	HTML          string `json:"html"`
	IsNewTemplate bool   `json:"isNewTemplate"`
}

// EmailService drives the admin email dialog: canned templates, the
// AI composer, sending, and per-order history.
type EmailService interface {
	// GenerateEmail asks the completion model for email copy about the
	// order. When isTemplateChange is set it returns empty content so
	// the dialog can reset, without spending a completion.
	GenerateEmail(ctx context.Context, orderID int64, prompt, templateType string, isTemplateChange bool) (*GeneratedEmail, error)
	// SendTemplate renders one of the canned templates for the order,
	// dispatches it, and records it in the email log.
	SendTemplate(ctx context.Context, orderID int64, templateID string) (*models.EmailLog, error)
	EmailLogs(ctx context.Context, orderID int64) ([]models.EmailLog, error)
}

type emailService struct {
	log          *slog.Logger
	orderRepo    storage.OrderStorage
	emailLogRepo storage.EmailLogStorage
	completions  openai.CompletionClient
	mailer       Mailer
}

func NewEmailService(log *slog.Logger, orderRepo storage.OrderStorage, emailLogRepo storage.EmailLogStorage, completions openai.CompletionClient, mailer Mailer) EmailService {
	return &emailService{
		log:          log,
		orderRepo:    orderRepo,
		emailLogRepo: emailLogRepo,
		completions:  completions,
		mailer:       mailer,
	}
}

const generatorSystemMessage = "You are a concise email generator. Generate plain text content that will be formatted into HTML later. Never include HTML tags in your response."

func (s *emailService) GenerateEmail(ctx context.Context, orderID int64, prompt, templateType string, isTemplateChange bool) (*GeneratedEmail, error) {
	const op = "service.EmailService.GenerateEmail"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID))

	// Switching templates in the dialog just clears the editor.
	if isTemplateChange {
		return &GeneratedEmail{IsNewTemplate: true}, nil
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	userMessage := buildGenerationPrompt(order, prompt, templateType)
	reply, err := s.completions.Complete(ctx, generatorSystemMessage, userMessage)
	if err != nil {
		logger.Error("completion request failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: completion request failed: %w", op, err)
	}

	subject, content := splitSubject(reply)
	logger.Info("email generated", slog.String("subject", subject))

	return &GeneratedEmail{
		Subject: subject,
		Content: content,
		HTML:    emailtmpl.WrapPlainContent(order, content),
	}, nil
}

// buildGenerationPrompt frames the order facts and the operator's ask
// for the model, so it has nothing to invent.
func buildGenerationPrompt(order *models.Order, prompt, templateType string) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant helping to generate email content for Way of Glory. ")
	b.WriteString("Generate a concise, professional email following this structure:\n\n")
	b.WriteString("Subject: [Write a clear subject line]\n\n")
	b.WriteString("[Write your main content here as plain text with each paragraph separated by newlines. ")
	b.WriteString("Do not include any HTML tags - they will be added automatically. ")
	b.WriteString("Be specific and factual, do not include any made-up information.]\n\n")
	b.WriteString("Order Details:\n")
	fmt.Fprintf(&b, "- Customer: %s %s\n", order.FirstName, order.LastName)
	fmt.Fprintf(&b, "- Order #%d\n", order.ID)
	fmt.Fprintf(&b, "- Amount: $%s\n", order.TotalAmount.StringFixed(2))
	if order.InstallationDate != "" {
		fmt.Fprintf(&b, "- Installation Date: %s\n", order.InstallationDate)
	}
	if templateType != "" {
		fmt.Fprintf(&b, "\nEMAIL TYPE: %s\n", templateType)
	}
	fmt.Fprintf(&b, "\nUSER PROMPT: %s\n", prompt)
	b.WriteString("\nIMPORTANT: be concise and factual, only reference the actual order details provided, and write plain text with each paragraph on a new line.")
	return b.String()
}

// splitSubject pulls the "Subject:" line out of the model's reply; the
// remaining non-empty lines become the body.
func splitSubject(reply string) (subject, content string) {
	subject = fallbackSubject
	lines := strings.Split(reply, "\n")
	var body []string
	found := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !found && strings.HasPrefix(trimmed, "Subject:") {
			subject = strings.TrimSpace(strings.TrimPrefix(trimmed, "Subject:"))
			found = true
			continue
		}
		if trimmed != "" {
			body = append(body, trimmed)
		}
	}
	return subject, strings.Join(body, "\n")
}

func (s *emailService) SendTemplate(ctx context.Context, orderID int64, templateID string) (*models.EmailLog, error) {
	const op = "service.EmailService.SendTemplate"
	logger := s.log.With(slog.String("op", op), slog.Int64("orderID", orderID), slog.String("template", templateID))

	if !emailtmpl.IsKnownTemplate(templateID) {
		return nil, fmt.Errorf("%s: unknown email template: %s", op, templateID)
	}

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		logger.Error("failed to get order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	subject, html, err := emailtmpl.Render(templateID, order)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.mailer.Send(ctx, order.Email, subject, html); err != nil {
		logger.Error("failed to send email", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to send email: %w", op, err)
	}

	entry := &models.EmailLog{
		OrderID:    orderID,
		TemplateID: templateID,
		Subject:    subject,
		Content:    html,
	}
	if err := s.emailLogRepo.CreateEmailLog(ctx, entry); err != nil {
		logger.Error("failed to record email log", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("template email sent")
	return entry, nil
}

func (s *emailService) EmailLogs(ctx context.Context, orderID int64) ([]models.EmailLog, error) {
	const op = "service.EmailService.EmailLogs"

	logs, err := s.emailLogRepo.GetLogsByOrderID(ctx, orderID)
	if err != nil {
		s.log.Error("failed to get email logs", slog.String("op", op), slog.Int64("orderID", orderID), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return logs, nil
}
