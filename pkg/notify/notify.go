// Package notify sends transactional email through SendGrid.
package notify

import (
	"fmt"

	sendgrid "github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"menuflow/pkg/order"
)

// Mailer sends order receipts. Sending is best-effort; callers log failures
// and never block checkout on them.
type Mailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

// New creates a Mailer using the given SendGrid API key and sender address.
func New(apiKey, fromName, fromAddr string) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddr),
	}
}

// SendReceipt emails the order summary to the customer.
func (m *Mailer) SendReceipt(toAddr string, o order.Order) error {
	subject := fmt.Sprintf("Order confirmation %s", o.ID)
	body := fmt.Sprintf(
		"Thank you for your order!\n\nOrder %s placed %s.\n\n",
		o.ID, o.CreatedAt.Format("2006-01-02 15:04"))
	for _, it := range o.Items {
		body += fmt.Sprintf("  %d x %s @ %s\n", it.Quantity, it.ProductName, it.UnitPrice.StringFixed(2))
	}
	body += fmt.Sprintf("\nTotal: %s\n", o.Total.StringFixed(2))

	to := mail.NewEmail("", toAddr)
	msg := mail.NewSingleEmail(m.from, subject, to, body, "")
	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sending receipt: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sending receipt: status %d", resp.StatusCode)
	}
	return nil
}
