package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

func TestEvaluate_AdminVeTodoYEditaSoloBorrador(t *testing.T) {
	draft := newDraft(t)
	a := invoice.Evaluate(testAdmin, draft)
	assert.True(t, a.Visible)
	assert.True(t, a.Can(invoice.ActionEdit))
	assert.True(t, a.Can(invoice.ActionSend))
	assert.True(t, a.Can(invoice.ActionDelete))
	assert.False(t, a.Can(invoice.ActionRecordPayment))

	sent := sendInvoice(t, draft)
	a = invoice.Evaluate(testAdmin, sent)
	assert.False(t, a.Can(invoice.ActionEdit))
	assert.True(t, a.Can(invoice.ActionRecordPayment))
	assert.True(t, a.Can(invoice.ActionCancel))
	assert.True(t, a.Can(invoice.ActionSendReminder))
}

// Un empleado fuera de sharedWith no ve la factura.
func TestEvaluate_EmpleadoSoloSiEstaCompartida(t *testing.T) {
	sent := sendInvoice(t, newDraft(t))

	shared := invoice.Evaluate(entity.Actor{ID: "emp-1", Role: entity.RoleEmployee}, sent)
	assert.True(t, shared.Visible)
	assert.True(t, shared.Can(invoice.ActionSendReminder))
	assert.False(t, shared.Can(invoice.ActionEdit))
	assert.False(t, shared.Can(invoice.ActionDelete))

	other := invoice.Evaluate(entity.Actor{ID: "emp-2", Role: entity.RoleEmployee}, sent)
	assert.False(t, other.Visible)
	assert.Empty(t, other.Actions)
}

// Un cliente cuyo id no coincide con clientId no ve la factura.
func TestEvaluate_ClienteSoloSusFacturasEnviadas(t *testing.T) {
	draft := newDraft(t)
	owner := entity.Actor{ID: "client-1", Role: entity.RoleClient}

	assert.False(t, invoice.Evaluate(owner, draft).Visible, "el cliente no ve borradores")

	sent := sendInvoice(t, draft)
	a := invoice.Evaluate(owner, sent)
	assert.True(t, a.Visible)
	assert.True(t, a.Can(invoice.ActionPay))
	assert.True(t, a.Can(invoice.ActionDownload))
	assert.False(t, a.Can(invoice.ActionEdit))

	stranger := entity.Actor{ID: "client-2", Role: entity.RoleClient}
	assert.False(t, invoice.Evaluate(stranger, sent).Visible)
}

func TestEvaluate_RolDesconocidoOActorVacio(t *testing.T) {
	inv := newDraft(t)
	assert.False(t, invoice.Evaluate(entity.Actor{ID: "x", Role: "guest"}, inv).Visible)
	assert.False(t, invoice.Evaluate(entity.Actor{Role: entity.RoleAdmin}, inv).Visible)
}

func TestVisibleInvoices_FiltraPorRol(t *testing.T) {
	a := sendInvoice(t, newDraft(t))
	b, err := invoice.NewInvoice(invoice.CreateParams{
		ID: "inv-2", Number: "INV-2024-002", ClientID: "client-2",
		Client: entity.ClientInfo{Name: "Globex"}, Settings: testSettings(),
		Items: fixtureItems(), Now: testNow,
	})
	require.NoError(t, err)
	b = sendInvoice(t, b)
	all := []*entity.Invoice{a, b}

	assert.Len(t, invoice.VisibleInvoices(testAdmin, all), 2)

	emp := invoice.VisibleInvoices(entity.Actor{ID: "emp-1", Role: entity.RoleEmployee}, all)
	require.Len(t, emp, 1)
	assert.Equal(t, "inv-1", emp[0].ID)

	cli := invoice.VisibleInvoices(entity.Actor{ID: "client-2", Role: entity.RoleClient}, all)
	require.Len(t, cli, 1)
	assert.Equal(t, "inv-2", cli[0].ID)
}

// El predicado se reevalúa sobre la factura actual: compartir cambia la visibilidad de inmediato.
func TestEvaluate_ReflejaMutaciones(t *testing.T) {
	inv := sendInvoice(t, newDraft(t))
	emp := entity.Actor{ID: "emp-9", Role: entity.RoleEmployee}
	assert.False(t, invoice.Evaluate(emp, inv).Visible)

	shared, err := invoice.Share(inv, []string{"emp-9"})
	require.NoError(t, err)
	assert.True(t, invoice.Evaluate(emp, shared).Visible)
}
