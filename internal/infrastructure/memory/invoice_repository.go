// Package memory repositorios en proceso para desarrollo y tests.
// Guardan y devuelven copias: los llamadores nunca comparten estado con el almacén.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo almacén de facturas con chequeo de versión.
type InvoiceRepo struct {
	mu        sync.RWMutex
	invoices  map[string]*entity.Invoice
	numbers   map[string]string
	sequences map[string]int
}

// NewInvoiceRepository crea un almacén vacío.
func NewInvoiceRepository() *InvoiceRepo {
	return &InvoiceRepo{
		invoices:  make(map[string]*entity.Invoice),
		numbers:   make(map[string]string),
		sequences: make(map[string]int),
	}
}

func (r *InvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invoices[inv.ID]; ok {
		return fmt.Errorf("%w: factura %s", domain.ErrDuplicate, inv.ID)
	}
	if _, ok := r.numbers[inv.InvoiceNumber]; ok {
		return fmt.Errorf("%w: número %s", domain.ErrDuplicate, inv.InvoiceNumber)
	}
	if inv.Version == 0 {
		inv.Version = 1
	}
	r.invoices[inv.ID] = inv.Clone()
	r.numbers[inv.InvoiceNumber] = inv.ID
	return nil
}

func (r *InvoiceRepo) Update(_ context.Context, inv *entity.Invoice, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.invoices[inv.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return fmt.Errorf("%w: la factura %s cambió (versión %d, esperada %d)", domain.ErrConflict, inv.ID, cur.Version, expectedVersion)
	}
	inv.Version = expectedVersion + 1
	r.invoices[inv.ID] = inv.Clone()
	return nil
}

func (r *InvoiceRepo) GetByID(_ context.Context, id string) (*entity.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	return inv.Clone(), nil
}

func (r *InvoiceRepo) List(_ context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, error) {
	r.mu.RLock()
	out := make([]*entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if matches(inv, f) {
			out = append(out, inv.Clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*entity.Invoice{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *InvoiceRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.numbers, inv.InvoiceNumber)
	delete(r.invoices, id)
	return nil
}

func (r *InvoiceRepo) NextSequence(_ context.Context, prefix string, year int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s/%d", prefix, year)
	r.sequences[key]++
	return r.sequences[key], nil
}

func matches(inv *entity.Invoice, f repository.InvoiceFilter) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if inv.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.ClientID != "" && inv.ClientID != f.ClientID {
		return false
	}
	if f.SharedID != "" && !inv.IsSharedWith(f.SharedID) {
		return false
	}
	return true
}
