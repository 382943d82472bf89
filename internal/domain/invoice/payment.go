package invoice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// PaidAmount suma de los pagos completados.
func PaidAmount(inv *entity.Invoice) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range inv.PaymentHistory {
		if p.Status == entity.PaymentStatusCompleted {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

// Balance saldo pendiente: total menos pagos completados (puede ser negativo si hay sobrepago).
func Balance(inv *entity.Invoice) decimal.Decimal {
	return inv.TotalAmount.Sub(PaidAmount(inv))
}

// IsDuplicatePayment indica si el pago ya está en el historial (mismo ID, o mismo transactionId y estado).
// Un Status vacío cuenta como completed.
func IsDuplicatePayment(inv *entity.Invoice, p entity.PaymentRecord) bool {
	if p.Status == "" {
		p.Status = entity.PaymentStatusCompleted
	}
	for _, existing := range inv.PaymentHistory {
		if p.ID != "" && existing.ID == p.ID {
			return true
		}
		if p.TransactionID != "" && existing.TransactionID == p.TransactionID && existing.Status == p.Status {
			return true
		}
	}
	return false
}

// RecordPayment agrega el pago al historial y pasa la factura a paid si los pagos completados cubren el total.
// Devuelve applied=false cuando el pago ya estaba registrado (mismo ID, o mismo transactionId y estado).
func RecordPayment(inv *entity.Invoice, p entity.PaymentRecord) (out *entity.Invoice, applied bool, err error) {
	if inv.Status == entity.InvoiceStatusDraft {
		return nil, false, fmt.Errorf("%w: no se registran pagos sobre un borrador", domain.ErrInvalidTransition)
	}
	if !p.Amount.IsPositive() {
		return nil, false, fmt.Errorf("%w: el monto del pago debe ser positivo", domain.ErrInvalidInput)
	}
	if p.PaymentDate.IsZero() {
		return nil, false, fmt.Errorf("%w: fecha de pago obligatoria", domain.ErrInvalidInput)
	}
	if p.Status == "" {
		p.Status = entity.PaymentStatusCompleted
	}
	switch p.Status {
	case entity.PaymentStatusPending, entity.PaymentStatusCompleted, entity.PaymentStatusFailed:
	default:
		return nil, false, fmt.Errorf("%w: estado de pago %q desconocido", domain.ErrInvalidInput, p.Status)
	}
	if p.InvoiceID != "" && p.InvoiceID != inv.ID {
		return nil, false, fmt.Errorf("%w: el pago pertenece a otra factura", domain.ErrInvalidInput)
	}
	if IsDuplicatePayment(inv, p) {
		return inv.Clone(), false, nil
	}

	out = inv.Clone()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.InvoiceID = out.ID
	out.PaymentHistory = append(out.PaymentHistory, p)
	out.UpdatedAt = p.PaymentDate

	if p.Status == entity.PaymentStatusCompleted && IsOutstanding(out.Status) && !Balance(out).IsPositive() {
		paid := p.PaymentDate
		out.Status = entity.InvoiceStatusPaid
		out.PaidDate = &paid
		out.PaymentMethod = p.PaymentMethod
		if out.PaymentMethod == "" {
			out.PaymentMethod = DefaultPaymentMethod
		}
	}
	return out, true, nil
}
