// Package notify entrega los recordatorios de pago.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jhoicas/agency-billing/internal/application/billing"
	"github.com/jhoicas/agency-billing/pkg/config"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

var (
	_ billing.Notifier = (*EmailNotifier)(nil)
	_ billing.Notifier = (*LogNotifier)(nil)
)

// sender lo cumple *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier envía recordatorios por SMTP.
type EmailNotifier struct {
	dialer sender
	from   string
}

// NewEmailNotifier construye el notificador desde la configuración SMTP.
func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// SendReminder arma y envía el correo.
func (n *EmailNotifier) SendReminder(ctx context.Context, msg billing.ReminderMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := BuildReminder(n.from, msg)
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// BuildReminder mensaje de recordatorio en HTML.
func BuildReminder(from string, msg billing.ReminderMessage) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetAddressHeader("To", msg.To, msg.ClientName)
	m.SetHeader("Subject", reminderSubject(msg))
	m.SetBody("text/html", reminderBody(msg))
	return m
}

func reminderSubject(msg billing.ReminderMessage) string {
	if msg.Overdue {
		return fmt.Sprintf("Factura %s vencida", msg.InvoiceNumber)
	}
	return fmt.Sprintf("Recordatorio de pago: factura %s", msg.InvoiceNumber)
}

func reminderBody(msg billing.ReminderMessage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hola %s,</p>", html.EscapeString(msg.ClientName))
	if msg.Overdue {
		fmt.Fprintf(&b, "<p>La factura <strong>%s</strong> venció el %s.</p>",
			html.EscapeString(msg.InvoiceNumber), msg.DueDate.Format("2006-01-02"))
	} else {
		fmt.Fprintf(&b, "<p>La factura <strong>%s</strong> vence el %s.</p>",
			html.EscapeString(msg.InvoiceNumber), msg.DueDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "<p>Saldo pendiente: <strong>%s %s</strong></p>", msg.Balance.StringFixed(2), html.EscapeString(msg.Currency))
	b.WriteString("<p>Gracias.</p>")
	return b.String()
}

// LogNotifier solo registra el recordatorio (desarrollo o SMTP sin configurar).
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendReminder(_ context.Context, msg billing.ReminderMessage) error {
	n.log.Info().
		Str("invoice", msg.InvoiceNumber).
		Str("to", msg.To).
		Str("balance", msg.Balance.StringFixed(2)).
		Bool("overdue", msg.Overdue).
		Msg("recordatorio (sin SMTP)")
	return nil
}
