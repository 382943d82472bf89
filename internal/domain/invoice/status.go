package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// transitions tabla de transiciones permitidas (unidireccional).
var transitions = map[entity.InvoiceStatus][]entity.InvoiceStatus{
	entity.InvoiceStatusDraft:   {entity.InvoiceStatusSent, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusSent:    {entity.InvoiceStatusViewed, entity.InvoiceStatusOverdue, entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusViewed:  {entity.InvoiceStatusOverdue, entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
	entity.InvoiceStatusOverdue: {entity.InvoiceStatusPaid, entity.InvoiceStatusCancelled},
}

// CanTransition indica si la tabla permite pasar de from a to.
func CanTransition(from, to entity.InvoiceStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionContext datos que acompañan una transición.
type TransitionContext struct {
	Now           time.Time
	PaymentMethod string // solo para paid
	TransactionID string // solo para paid
}

// DefaultPaymentMethod método registrado cuando se marca pagada sin indicar método.
const DefaultPaymentMethod = "manual"

// Transition aplica la transición a to y devuelve una factura nueva.
// Repetir la transición al estado actual no cambia nada (entrega al menos una vez).
func Transition(inv *entity.Invoice, to entity.InvoiceStatus, tc TransitionContext) (*entity.Invoice, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, to)
	}
	if inv.Status == to {
		return inv.Clone(), nil
	}
	if inv.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrTerminalState, inv.Status, to)
	}
	if !CanTransition(inv.Status, to) {
		return nil, fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, inv.Status, to)
	}
	if tc.Now.IsZero() {
		return nil, fmt.Errorf("%w: fecha de transición obligatoria", domain.ErrInvalidInput)
	}

	out := inv.Clone()
	now := tc.Now
	switch to {
	case entity.InvoiceStatusSent:
		if len(out.Items) == 0 {
			return nil, fmt.Errorf("%w: no se puede enviar una factura sin líneas", domain.ErrInvalidInput)
		}
		if err := Recompute(out); err != nil {
			return nil, err
		}
		if out.IssueDate == nil {
			out.IssueDate = &now
		}
	case entity.InvoiceStatusViewed:
		out.ViewedAt = &now
	case entity.InvoiceStatusOverdue:
		if !PastDue(out, now) {
			return nil, fmt.Errorf("%w: la factura vence el %s", domain.ErrInvalidTransition, out.DueDate.Format("2006-01-02"))
		}
	case entity.InvoiceStatusPaid:
		method := strings.TrimSpace(tc.PaymentMethod)
		if method == "" {
			method = DefaultPaymentMethod
		}
		if due := Balance(out); due.IsPositive() {
			out.PaymentHistory = append(out.PaymentHistory, entity.PaymentRecord{
				ID:            uuid.New().String(),
				InvoiceID:     out.ID,
				Amount:        due,
				PaymentDate:   now,
				PaymentMethod: method,
				TransactionID: tc.TransactionID,
				Status:        entity.PaymentStatusCompleted,
			})
		}
		out.PaidDate = &now
		out.PaymentMethod = method
	}
	out.Status = to
	out.UpdatedAt = now
	return out, nil
}

// MarkOverdue chequeo programado: sent/viewed con now > dueDate pasan a overdue.
func MarkOverdue(inv *entity.Invoice, now time.Time) (*entity.Invoice, bool) {
	if inv.Status != entity.InvoiceStatusSent && inv.Status != entity.InvoiceStatusViewed {
		return inv, false
	}
	if !PastDue(inv, now) {
		return inv, false
	}
	out := inv.Clone()
	out.Status = entity.InvoiceStatusOverdue
	out.UpdatedAt = now
	return out, true
}

// PastDue indica si la fecha calendario (UTC) de now es posterior a DueDate.
// El día del vencimiento todavía no cuenta como vencida.
func PastDue(inv *entity.Invoice, now time.Time) bool {
	return truncateDay(now).After(truncateDay(inv.DueDate))
}

// IsOutstanding indica si la factura espera pago del cliente.
func IsOutstanding(s entity.InvoiceStatus) bool {
	return s == entity.InvoiceStatusSent || s == entity.InvoiceStatusViewed || s == entity.InvoiceStatusOverdue
}
