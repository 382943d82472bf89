package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus estado del ciclo de vida de la factura.
type InvoiceStatus string

// Estados de la factura. paid y cancelled son terminales.
const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusViewed    InvoiceStatus = "viewed"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// IsTerminal indica si desde este estado ya no hay transiciones.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Valid indica si s es uno de los estados conocidos.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusViewed,
		InvoiceStatusOverdue, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// ClientInfo copia de los datos del cliente al momento de crear la factura.
// No se enlaza al cliente vivo: editar el cliente no altera facturas históricas.
type ClientInfo struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Address string
	TaxID   string
}

// ProjectInfo copia opcional del proyecto facturado.
type ProjectInfo struct {
	ID          string
	Name        string
	Description string
}

// Invoice representa una factura de la agencia.
// Subtotal, TaxAmount y TotalAmount son derivados: solo los escribe el motor de totales.
type Invoice struct {
	ID             string
	InvoiceNumber  string // <PREFIX>-<YEAR>-<SEQ>
	ClientID       string
	ClientInfo     ClientInfo
	ProjectInfo    *ProjectInfo
	TemplateID     string
	Items          []InvoiceItem
	TaxPolicy      TaxPolicy // snapshot de la política vigente al crear
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
	Status         InvoiceStatus
	IssueDate      *time.Time
	DueDate        time.Time
	ViewedAt       *time.Time
	PaidDate       *time.Time
	PaymentMethod  string
	Notes          string
	Terms          string
	CreatedBy      string
	SharedWith     []string // IDs de empleados con acceso de lectura
	PaymentHistory []PaymentRecord
	LastReminderAt *time.Time
	Version        int // control de concurrencia optimista
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone devuelve una copia profunda; el motor nunca modifica la factura recibida.
func (inv *Invoice) Clone() *Invoice {
	if inv == nil {
		return nil
	}
	out := *inv
	out.Items = append([]InvoiceItem(nil), inv.Items...)
	out.SharedWith = append([]string(nil), inv.SharedWith...)
	out.PaymentHistory = append([]PaymentRecord(nil), inv.PaymentHistory...)
	if inv.ProjectInfo != nil {
		p := *inv.ProjectInfo
		out.ProjectInfo = &p
	}
	out.IssueDate = cloneTime(inv.IssueDate)
	out.ViewedAt = cloneTime(inv.ViewedAt)
	out.PaidDate = cloneTime(inv.PaidDate)
	out.LastReminderAt = cloneTime(inv.LastReminderAt)
	return &out
}

// IsSharedWith indica si el empleado tiene acceso de lectura.
func (inv *Invoice) IsSharedWith(employeeID string) bool {
	for _, id := range inv.SharedWith {
		if id == employeeID {
			return true
		}
	}
	return false
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
