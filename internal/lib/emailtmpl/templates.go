// Package emailtmpl renders the transactional email bodies sent from
// the admin dashboard. The markup mirrors the storefront's house
// style; amounts are rounded to two decimals here, at display time.
package emailtmpl

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/wayofglory/shop/internal/domain/models"
)

// Template ids offered in the admin email dialog.
const (
	TemplatePaymentReminder          = "payment_reminder"
	TemplateInstallationConfirmation = "installation_confirmation"
	TemplateShippingUpdate           = "shipping_update"
	TemplateThankYou                 = "thank_you"
)

// Subjects for each template id.
var subjects = map[string]string{
	TemplatePaymentReminder:          "Payment Reminder for Your Way of Glory Order",
	TemplateInstallationConfirmation: "Installation Details for Your Way of Glory Order",
	TemplateShippingUpdate:           "Shipping Update for Your Way of Glory Order",
	TemplateThankYou:                 "Thank You for Your Way of Glory Order",
}

const baseStyle = `
<style>
  .email-container {
    font-family: 'Segoe UI', system-ui, -apple-system, sans-serif;
    max-width: 600px;
    margin: 0 auto;
    padding: 32px;
    background-color: #ffffff;
  }
  .content {
    background-color: #ffffff;
    border-radius: 12px;
    padding: 32px;
    margin-bottom: 32px;
    box-shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
  }
  h1 { color: #111827; font-size: 24px; font-weight: 600; margin: 0; }
  p { color: #4b5563; font-size: 16px; line-height: 1.6; margin: 16px 0; }
  .details {
    background-color: #f9fafb;
    border-radius: 8px;
    padding: 16px;
    margin: 16px 0;
  }
  .footer {
    text-align: center;
    color: #6b7280;
    font-size: 14px;
    margin-top: 32px;
    padding-top: 32px;
    border-top: 1px solid #e5e7eb;
  }
</style>
`

type templateData struct {
	FirstName        string
	LastName         string
	OrderID          int64
	TotalAmount      string
	InstallationDate string
	InstallationTime string
	Address          string
}

var bodies = map[string]*template.Template{
	TemplatePaymentReminder: mustParse(TemplatePaymentReminder, `
<div class="content">
  <h1>Payment Reminder</h1>
  <p>Dear {{.FirstName}} {{.LastName}},</p>
  <p>This is a friendly reminder about your pending payment for order #{{.OrderID}}.</p>
  <div class="details">
    <p style="margin: 0;"><strong>Total Amount Due:</strong> ${{.TotalAmount}}</p>
  </div>
  <p>We accept cash in person, checks made payable to Way of Glory, and direct deposit. Please complete your payment to proceed with your order. If you've already made the payment, please disregard this reminder.</p>
</div>`),
	TemplateInstallationConfirmation: mustParse(TemplateInstallationConfirmation, `
<div class="content">
  <h1>Installation Confirmation</h1>
  <p>Dear {{.FirstName}} {{.LastName}},</p>
  <p>Your installation for order #{{.OrderID}} is confirmed.</p>
  <div class="details">
    <p style="margin: 0;"><strong>Date:</strong> {{.InstallationDate}}</p>
    <p style="margin: 0;"><strong>Time:</strong> {{.InstallationTime}}</p>
    <p style="margin: 0;"><strong>Address:</strong> {{.Address}}</p>
  </div>
  <p>Please make sure the installation area is accessible and that someone is on site during the appointment. Our team will contact you if anything changes.</p>
</div>`),
	TemplateShippingUpdate: mustParse(TemplateShippingUpdate, `
<div class="content">
  <h1>Shipping Update</h1>
  <p>Dear {{.FirstName}} {{.LastName}},</p>
  <p>There is an update on the shipment for your order #{{.OrderID}}.</p>
  <p>Your equipment is on its way. We will reach out with installation scheduling once everything arrives.</p>
  <p>If you have any questions about your delivery, reply to this email or call our office.</p>
</div>`),
	TemplateThankYou: mustParse(TemplateThankYou, `
<div class="content">
  <h1>Thank You</h1>
  <p>Dear {{.FirstName}} {{.LastName}},</p>
  <p>Thank you for choosing Way of Glory for order #{{.OrderID}}. It was a pleasure serving you.</p>
  <p>We hope everything sounds great. If you need adjustments, maintenance, or future upgrades, we are always here to help.</p>
</div>`),
}

func mustParse(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(body))
}

// IsKnownTemplate reports whether the id is one of the four offered
// templates.
func IsKnownTemplate(id string) bool {
	_, ok := subjects[id]
	return ok
}

// Render produces the subject and full HTML document for a template id
// and order.
func Render(templateID string, order *models.Order) (subject, html string, err error) {
	subject, ok := subjects[templateID]
	if !ok {
		return "", "", fmt.Errorf("unknown email template: %s", templateID)
	}

	addressParts := []string{order.InstallationAddress, order.InstallationCity, order.InstallationState, order.InstallationZip}
	var address []string
	for _, part := range addressParts {
		if part != "" {
			address = append(address, part)
		}
	}

	data := templateData{
		FirstName:        order.FirstName,
		LastName:         order.LastName,
		OrderID:          order.ID,
		TotalAmount:      order.TotalAmount.StringFixed(2),
		InstallationDate: order.InstallationDate,
		InstallationTime: order.InstallationTime,
		Address:          strings.Join(address, ", "),
	}

	var body bytes.Buffer
	if err := bodies[templateID].Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render email template %s: %w", templateID, err)
	}

	return subject, wrapDocument(body.String()), nil
}

// WrapPlainContent turns generated plain-text paragraphs into the same
// framed HTML document the templates use, greeting the customer and
// signing off with the order number.
func WrapPlainContent(order *models.Order, content string) string {
	var body bytes.Buffer
	body.WriteString(`<div class="content">` + "\n")
	fmt.Fprintf(&body, "  <h1>Dear %s,</h1>\n", template.HTMLEscapeString(order.FirstName))
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fmt.Fprintf(&body, "  <p>%s</p>\n", template.HTMLEscapeString(line))
	}
	body.WriteString(`  <div class="footer"><p>Best regards,</p><p>Way of Glory Team</p>`)
	fmt.Fprintf(&body, "<p>Order #%d</p></div>\n</div>", order.ID)
	return wrapDocument(body.String())
}

func wrapDocument(body string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
` + baseStyle + `</head>
<body>
<div class="email-container">
` + body + `
</div>
</body>
</html>`
}
