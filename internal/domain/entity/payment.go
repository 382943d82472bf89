package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus estado de un registro de pago.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentRecord entrada del historial de pagos (solo se agrega, nunca se edita).
type PaymentRecord struct {
	ID            string
	InvoiceID     string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PaymentMethod string
	TransactionID string
	Status        PaymentStatus
	Notes         string
}
