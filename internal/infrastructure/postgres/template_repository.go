package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

var _ repository.TemplateRepository = (*TemplateRepo)(nil)

// TemplateRepo implementación de TemplateRepository.
type TemplateRepo struct {
	q Querier
}

// NewTemplateRepository construye el adaptador.
func NewTemplateRepository(q Querier) *TemplateRepo {
	return &TemplateRepo{q: q}
}

// Create persiste la plantilla.
func (r *TemplateRepo) Create(ctx context.Context, tpl *entity.InvoiceTemplate) error {
	doc, err := json.Marshal(templateDoc{
		Items:    toItemDocs(tpl.Items),
		Terms:    tpl.Terms,
		Notes:    tpl.Notes,
		Tax:      taxDoc{Mode: string(tpl.TaxPolicy.Mode), DefaultRate: tpl.TaxPolicy.DefaultRate},
		Currency: tpl.Currency,
		Company:  tpl.Company,
	})
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = r.q.Exec(ctx,
		`INSERT INTO invoice_templates (id, name, document, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		tpl.ID, tpl.Name, doc, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r *TemplateRepo) GetByID(ctx context.Context, id string) (*entity.InvoiceTemplate, error) {
	row := r.q.QueryRow(ctx, `SELECT id, name, document, created_at, updated_at FROM invoice_templates WHERE id = $1`, id)
	tpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

// List devuelve las plantillas ordenadas por nombre.
func (r *TemplateRepo) List(ctx context.Context) ([]*entity.InvoiceTemplate, error) {
	rows, err := r.q.Query(ctx, `SELECT id, name, document, created_at, updated_at FROM invoice_templates ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		list = append(list, tpl)
	}
	return list, rows.Err()
}

func scanTemplate(row pgx.Row) (*entity.InvoiceTemplate, error) {
	var tpl entity.InvoiceTemplate
	var raw []byte
	if err := row.Scan(&tpl.ID, &tpl.Name, &raw, &tpl.CreatedAt, &tpl.UpdatedAt); err != nil {
		return nil, err
	}
	var doc templateDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode template %s: %w", tpl.ID, err)
	}
	tpl.Items = fromItemDocs(doc.Items)
	tpl.Terms = doc.Terms
	tpl.Notes = doc.Notes
	tpl.TaxPolicy = entity.TaxPolicy{Mode: entity.TaxMode(doc.Tax.Mode), DefaultRate: doc.Tax.DefaultRate}
	tpl.Currency = doc.Currency
	tpl.Company = doc.Company
	return &tpl, nil
}
