package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// Locker serializa las operaciones sobre una misma factura.
// unlock siempre es no-nil cuando err == nil y debe llamarse una sola vez.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ReminderMessage datos del recordatorio de pago enviado al cliente.
type ReminderMessage struct {
	InvoiceID     string
	InvoiceNumber string
	To            string
	ClientName    string
	Balance       decimal.Decimal
	Currency      string
	DueDate       time.Time
	Overdue       bool
}

// Notifier entrega recordatorios de pago (correo u otro canal).
type Notifier interface {
	SendReminder(ctx context.Context, msg ReminderMessage) error
}

// InvoicePDFGenerator renderiza la factura inmutable a un documento imprimible.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, company entity.CompanyInfo) ([]byte, error)
}

// Clock fuente de tiempo inyectable (tests).
type Clock func() time.Time

func lockKey(invoiceID string) string {
	return "invoice:" + invoiceID
}
