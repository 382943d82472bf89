package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `id, invoice_number, client_id, status, shared_with, due_date,
	subtotal, tax_amount, total_amount, currency, version, document, created_at, updated_at`

// Create persiste la factura completa.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	doc, err := json.Marshal(newInvoiceDoc(inv))
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}
	if inv.Version == 0 {
		inv.Version = 1
	}
	query := `INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query,
		inv.ID, inv.InvoiceNumber, inv.ClientID, string(inv.Status), sharedOrEmpty(inv.SharedWith), inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Currency, inv.Version, doc,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.InvoiceNumber)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update reemplaza la factura solo si la versión almacenada es expectedVersion.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice, expectedVersion int) error {
	doc, err := json.Marshal(newInvoiceDoc(inv))
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}
	query := `
		UPDATE invoices
		SET status       = $3,
		    shared_with  = $4,
		    due_date     = $5,
		    subtotal     = $6,
		    tax_amount   = $7,
		    total_amount = $8,
		    currency     = $9,
		    document     = $10,
		    updated_at   = $11,
		    version      = version + 1
		WHERE id = $1 AND version = $2`
	tag, err := r.q.Exec(ctx, query,
		inv.ID, expectedVersion, string(inv.Status), sharedOrEmpty(inv.SharedWith), inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.TotalAmount, inv.Currency, doc, inv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, inv.ID).Scan(&exists); err != nil {
			return fmt.Errorf("check invoice: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: la factura %s cambió (versión esperada %d)", domain.ErrConflict, inv.ID, expectedVersion)
	}
	inv.Version = expectedVersion + 1
	return nil
}

// GetByID obtiene una factura completa por ID.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	row := r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List filtra por estado, cliente o empleado compartido, en orden de creación.
func (r *InvoiceRepo) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	var statuses []string
	for _, s := range f.Statuses {
		statuses = append(statuses, string(s))
	}
	query := `SELECT ` + invoiceColumns + ` FROM invoices
		WHERE ($1::text[] IS NULL OR status = ANY($1))
		  AND ($2 = '' OR client_id = $2)
		  AND ($3 = '' OR $3 = ANY(shared_with))
		ORDER BY created_at, id
		LIMIT NULLIF($4, 0) OFFSET $5`
	rows, err := r.q.Query(ctx, query, statuses, f.ClientID, f.SharedID, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Delete elimina la factura.
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextSequence reserva el consecutivo con un upsert atómico por (prefix, year).
func (r *InvoiceRepo) NextSequence(ctx context.Context, prefix string, year int) (int, error) {
	const query = `
		INSERT INTO invoice_sequences (prefix, year, last_seq) VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year) DO UPDATE SET last_seq = invoice_sequences.last_seq + 1
		RETURNING last_seq`
	var seq int
	if err := r.q.QueryRow(ctx, query, prefix, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next invoice sequence: %w", err)
	}
	return seq, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var status string
	var raw []byte
	if err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &status, &inv.SharedWith, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.TotalAmount, &inv.Currency, &inv.Version, &raw,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var doc invoiceDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode invoice %s: %w", inv.ID, err)
	}
	inv.Status = entity.InvoiceStatus(status)
	doc.apply(&inv)
	if len(inv.SharedWith) == 0 {
		inv.SharedWith = nil
	}
	return &inv, nil
}

func sharedOrEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
