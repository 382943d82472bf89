package invoice

import "github.com/jhoicas/agency-billing/internal/domain/entity"

// Action operación que un actor puede ejecutar sobre una factura.
type Action string

const (
	ActionView          Action = "view"
	ActionDownload      Action = "download"
	ActionEdit          Action = "edit"
	ActionSend          Action = "send"
	ActionDelete        Action = "delete"
	ActionCancel        Action = "cancel"
	ActionShare         Action = "share"
	ActionRecordPayment Action = "record_payment"
	ActionMarkOverdue   Action = "mark_overdue"
	ActionSendReminder  Action = "send_reminder"
	ActionPay           Action = "pay"
)

// Access resultado del predicado de visibilidad para (actor, factura).
type Access struct {
	Visible bool
	Actions []Action
}

// Can indica si la acción está permitida.
func (a Access) Can(action Action) bool {
	for _, x := range a.Actions {
		if x == action {
			return true
		}
	}
	return false
}

// Evaluate calcula visibilidad y acciones permitidas. Se evalúa en cada acceso; no se cachea.
func Evaluate(actor entity.Actor, inv *entity.Invoice) Access {
	if inv == nil || actor.ID == "" {
		return Access{}
	}
	st := inv.Status
	switch actor.Role {
	case entity.RoleAdmin:
		acts := []Action{ActionView, ActionDownload}
		if st == entity.InvoiceStatusDraft {
			acts = append(acts, ActionEdit, ActionSend)
		}
		if st == entity.InvoiceStatusDraft || st == entity.InvoiceStatusCancelled {
			acts = append(acts, ActionDelete)
		}
		if !st.IsTerminal() {
			acts = append(acts, ActionCancel)
		}
		if st != entity.InvoiceStatusCancelled {
			acts = append(acts, ActionShare)
		}
		if st != entity.InvoiceStatusDraft {
			acts = append(acts, ActionRecordPayment)
		}
		if st == entity.InvoiceStatusSent || st == entity.InvoiceStatusViewed {
			acts = append(acts, ActionMarkOverdue)
		}
		if IsOutstanding(st) {
			acts = append(acts, ActionSendReminder)
		}
		return Access{Visible: true, Actions: acts}
	case entity.RoleEmployee:
		if !inv.IsSharedWith(actor.ID) {
			return Access{}
		}
		acts := []Action{ActionView, ActionDownload}
		if IsOutstanding(st) {
			acts = append(acts, ActionSendReminder)
		}
		return Access{Visible: true, Actions: acts}
	case entity.RoleClient:
		if inv.ClientID != actor.ID || st == entity.InvoiceStatusDraft {
			return Access{}
		}
		acts := []Action{ActionView, ActionDownload}
		if IsOutstanding(st) {
			acts = append(acts, ActionPay)
		}
		return Access{Visible: true, Actions: acts}
	}
	return Access{}
}

// CanCreate solo los administradores crean facturas, plantillas y configuración.
func CanCreate(actor entity.Actor) bool {
	return actor.Role == entity.RoleAdmin && actor.ID != ""
}

// VisibleInvoices filtra las facturas visibles para el actor, conservando el orden.
func VisibleInvoices(actor entity.Actor, all []*entity.Invoice) []*entity.Invoice {
	out := make([]*entity.Invoice, 0, len(all))
	for _, inv := range all {
		if Evaluate(actor, inv).Visible {
			out = append(out, inv)
		}
	}
	return out
}
