package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
	"github.com/jhoicas/agency-billing/pkg/logger"
)

// TemplateUseCase administra plantillas de factura.
type TemplateUseCase struct {
	repo repository.TemplateRepository
	log  *logger.Logger
	now  Clock
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(repo repository.TemplateRepository, log *logger.Logger, now Clock) *TemplateUseCase {
	return &TemplateUseCase{repo: repo, log: log, now: now}
}

// Create valida y guarda una plantilla. Solo administradores.
func (uc *TemplateUseCase) Create(ctx context.Context, actor entity.Actor, in dto.TemplateRequest) (*dto.TemplateResponse, error) {
	if !invoice.CanCreate(actor) {
		return nil, domain.ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre de plantilla obligatorio", domain.ErrInvalidInput)
	}
	items := toItems(in.Items)
	for i := range items {
		if err := invoice.ValidateItem(items[i]); err != nil {
			return nil, err
		}
		items[i].ID = ""
	}
	tpl := &entity.InvoiceTemplate{
		ID:      uuid.New().String(),
		Name:    name,
		Items:   items,
		Terms:   in.Terms,
		Notes:   in.Notes,
		Company: toCompany(in.Company),
	}
	if in.TaxPolicy != nil {
		tpl.TaxPolicy = toPolicy(*in.TaxPolicy)
		if err := invoice.ValidatePolicy(tpl.TaxPolicy); err != nil {
			return nil, err
		}
	}
	if in.Currency != "" {
		cur, err := invoice.NormalizeCurrency(in.Currency)
		if err != nil {
			return nil, err
		}
		tpl.Currency = cur
	}
	tpl.CreatedAt = uc.now()
	tpl.UpdatedAt = tpl.CreatedAt
	if err := uc.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}
	uc.log.Info().Str("template_id", tpl.ID).Str("name", tpl.Name).Msg("plantilla creada")
	return toTemplateResponse(tpl), nil
}

// List devuelve todas las plantillas. Solo administradores.
func (uc *TemplateUseCase) List(ctx context.Context, actor entity.Actor) ([]dto.TemplateResponse, error) {
	if !invoice.CanCreate(actor) {
		return nil, domain.ErrForbidden
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, *toTemplateResponse(t))
	}
	return out, nil
}

func toTemplateResponse(t *entity.InvoiceTemplate) *dto.TemplateResponse {
	resp := &dto.TemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Items:     toItemResponses(t.Items),
		Terms:     t.Terms,
		Notes:     t.Notes,
		Currency:  t.Currency,
		Company:   toCompanyDTO(t.Company),
		CreatedAt: formatStamp(&t.CreatedAt),
	}
	if t.TaxPolicy.Mode != "" {
		p := toPolicyDTO(t.TaxPolicy)
		resp.TaxPolicy = &p
	}
	return resp
}
