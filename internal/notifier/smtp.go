package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds the mail server settings, read from the environment at startup.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type smtpNotifier struct {
	cfg SMTPConfig
}

// NewSMTPNotifier returns a Notifier sending plain-text invoice mails over SMTP.
func NewSMTPNotifier(cfg SMTPConfig) Notifier {
	return &smtpNotifier{cfg: cfg}
}

func (n *smtpNotifier) SendInvoiceEmail(ctx context.Context, to string, summary InvoiceSummary) error {
	subject := fmt.Sprintf("Invoice %s - %s %02d/%d", summary.InvoiceNo, summary.RoomName, summary.Month, summary.Year)
	return n.send(ctx, to, subject, renderInvoiceBody(summary, false))
}

func (n *smtpNotifier) ResendInvoiceEmail(ctx context.Context, to string, summary InvoiceSummary) error {
	subject := fmt.Sprintf("[Updated] Invoice %s - %s %02d/%d", summary.InvoiceNo, summary.RoomName, summary.Month, summary.Year)
	return n.send(ctx, to, subject, renderInvoiceBody(summary, true))
}

func (n *smtpNotifier) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := strings.Join([]string{
		"From: " + n.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	addr := n.cfg.Host + ":" + n.cfg.Port
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send invoice mail to %s: %w", to, err)
	}
	return nil
}

func renderInvoiceBody(s InvoiceSummary, updated bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", s.TenantName)
	if updated {
		fmt.Fprintf(&b, "Your invoice for room %s has been corrected. Updated figures below.\n\n", s.RoomName)
	} else {
		fmt.Fprintf(&b, "Here is your invoice for room %s, period %02d/%d.\n\n", s.RoomName, s.Month, s.Year)
	}
	fmt.Fprintf(&b, "Invoice no:    %s\n", s.InvoiceNo)
	fmt.Fprintf(&b, "Room rent:     %s\n", s.RoomPrice)
	fmt.Fprintf(&b, "Electricity:   %s\n", s.ElectricCost)
	fmt.Fprintf(&b, "Water:         %s\n", s.WaterCost)
	fmt.Fprintf(&b, "Services:      %s\n", s.ServiceCost)
	fmt.Fprintf(&b, "TOTAL:         %s\n\n", s.Total)
	b.WriteString("You can pay using any of these options:\n")
	b.WriteString("  1. Bank transfer via the QR code on the payment page (attach your transfer proof)\n")
	b.WriteString("  2. Online payment gateway\n")
	b.WriteString("  3. Cash to the owner (will be confirmed manually)\n\n")
	if s.PaymentURL != "" {
		fmt.Fprintf(&b, "Payment page: %s\n", s.PaymentURL)
	}
	return b.String()
}
