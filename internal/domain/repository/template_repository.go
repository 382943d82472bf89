package repository

import (
	"context"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// TemplateRepository define el puerto de persistencia para InvoiceTemplate.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *entity.InvoiceTemplate) error
	GetByID(ctx context.Context, id string) (*entity.InvoiceTemplate, error)
	List(ctx context.Context) ([]*entity.InvoiceTemplate, error)
}
