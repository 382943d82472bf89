package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

// Identidades de los datos de ejemplo.
const (
	SeedAdminID    = "admin-1"
	SeedEmployeeID = "emp-1"
	SeedClientID   = "client-1"
)

// Seed carga una plantilla y dos facturas de ejemplo (un borrador y una enviada).
func Seed(ctx context.Context, invoices *InvoiceRepo, templates *TemplateRepo, settings entity.InvoiceSettings, now time.Time) error {
	rate := decimal.NewFromInt(15)
	tpl := &entity.InvoiceTemplate{
		ID:   "tpl-retainer",
		Name: "Retainer mensual",
		Items: []entity.InvoiceItem{
			{Description: "Gestión de redes sociales", Quantity: 1, UnitPrice: decimal.NewFromInt(50000), ServiceType: "social"},
			{Description: "Horas de diseño", Quantity: 100, UnitPrice: decimal.NewFromInt(800), ServiceType: "design", TaxRate: &rate},
		},
		Terms:     "Pago a 30 días",
		Currency:  settings.Currency,
		Company:   settings.Company,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := templates.Create(ctx, tpl); err != nil {
		return fmt.Errorf("seed plantilla: %w", err)
	}

	client := entity.ClientInfo{Name: "Acme S.A.", Email: "pagos@acme.test", Company: "Acme"}
	for i, sendIt := range []bool{false, true} {
		seq, err := invoices.NextSequence(ctx, settings.Numbering.Prefix, now.Year())
		if err != nil {
			return err
		}
		number, err := invoice.FormatNumber(settings.Numbering.Prefix, now.Year(), seq, settings.Numbering.Padding)
		if err != nil {
			return err
		}
		inv, err := invoice.NewInvoice(invoice.CreateParams{
			ID:         fmt.Sprintf("inv-seed-%d", i+1),
			Number:     number,
			ClientID:   SeedClientID,
			Client:     client,
			Template:   tpl,
			Settings:   settings,
			CreatedBy:  SeedAdminID,
			SharedWith: []string{SeedEmployeeID},
			Now:        now,
		})
		if err != nil {
			return fmt.Errorf("seed factura: %w", err)
		}
		if sendIt {
			if inv, err = invoice.Transition(inv, entity.InvoiceStatusSent, invoice.TransitionContext{Now: now}); err != nil {
				return fmt.Errorf("seed envío: %w", err)
			}
		}
		if err := invoices.Create(ctx, inv); err != nil {
			return err
		}
	}
	return nil
}
