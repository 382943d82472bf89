package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

// PDFUseCase exporta la factura a PDF a partir de una copia inmutable.
type PDFUseCase struct {
	repo      repository.InvoiceRepository
	settings  *SettingsUseCase
	templates repository.TemplateRepository
	pdf       InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(repo repository.InvoiceRepository, templates repository.TemplateRepository, settings *SettingsUseCase, pdf InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{repo: repo, templates: templates, settings: settings, pdf: pdf}
}

// Download devuelve el PDF y el nombre de archivo sugerido.
// Los datos de la agencia salen de la plantilla de origen si la tiene y si no de la configuración.
func (uc *PDFUseCase) Download(ctx context.Context, actor entity.Actor, id string) ([]byte, string, error) {
	inv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if inv == nil {
		if actor.Role == entity.RoleAdmin {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", domain.ErrForbidden
	}
	if !invoice.Evaluate(actor, inv).Can(invoice.ActionDownload) {
		return nil, "", domain.ErrForbidden
	}
	snapshot := inv.Clone()
	if err := invoice.VerifyTotals(snapshot); err != nil {
		if err := invoice.Recompute(snapshot); err != nil {
			return nil, "", err
		}
	}

	settings, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, "", err
	}
	company := settings.Company
	if snapshot.TemplateID != "" {
		tpl, err := uc.templates.GetByID(ctx, snapshot.TemplateID)
		if err != nil {
			return nil, "", err
		}
		if tpl != nil && tpl.Company.Name != "" {
			company = tpl.Company
		}
	}
	data, err := uc.pdf.GenerateInvoicePDF(ctx, snapshot, company)
	if err != nil {
		return nil, "", fmt.Errorf("generar pdf: %w", err)
	}
	return data, snapshot.InvoiceNumber + ".pdf", nil
}
