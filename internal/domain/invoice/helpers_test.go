package invoice_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

var (
	testNow   = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	testRate  = decimal.NewFromInt(15)
	testAdmin = entity.Actor{ID: "admin-1", Role: entity.RoleAdmin}
)

func rate(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func testSettings() entity.InvoiceSettings {
	return entity.InvoiceSettings{
		DefaultDueDays: 30,
		Numbering:      entity.NumberingSettings{Prefix: "INV", Padding: 3},
		Tax:            entity.TaxPolicy{Mode: entity.TaxModePerItem, DefaultRate: testRate},
		Currency:       "USD",
	}
}

// fixtureItems reproduce el fixture de la agencia: diseño de marca + 100 posts.
func fixtureItems() []entity.InvoiceItem {
	return []entity.InvoiceItem{
		{ID: "item-1", Description: "Diseño de identidad de marca", Quantity: 1, UnitPrice: decimal.NewFromInt(50000), ServiceType: "branding", TaxRate: rate(15)},
		{ID: "item-2", Description: "Publicaciones en redes sociales", Quantity: 100, UnitPrice: decimal.NewFromInt(800), ServiceType: "social", TaxRate: rate(15)},
	}
}

func newDraft(t *testing.T) *entity.Invoice {
	t.Helper()
	inv, err := invoice.NewInvoice(invoice.CreateParams{
		ID:         "inv-1",
		Number:     "INV-2024-001",
		ClientID:   "client-1",
		Client:     entity.ClientInfo{Name: "Acme", Email: "billing@acme.test"},
		Settings:   testSettings(),
		Items:      fixtureItems(),
		CreatedBy:  testAdmin.ID,
		SharedWith: []string{"emp-1"},
		Now:        testNow,
	})
	require.NoError(t, err)
	return inv
}

func sendInvoice(t *testing.T, inv *entity.Invoice) *entity.Invoice {
	t.Helper()
	out, err := invoice.Transition(inv, entity.InvoiceStatusSent, invoice.TransitionContext{Now: testNow})
	require.NoError(t, err)
	return out
}
