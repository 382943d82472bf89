package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// CreateParams datos para crear una factura nueva en borrador.
type CreateParams struct {
	ID         string // opcional; se genera si va vacío
	Number     string
	ClientID   string
	Client     entity.ClientInfo
	Project    *entity.ProjectInfo
	Template   *entity.InvoiceTemplate // opcional; se copia, no se referencia
	Settings   entity.InvoiceSettings
	Items      []entity.InvoiceItem
	Currency   string
	IssueDate  *time.Time
	DueDate    *time.Time // si es nil: fecha base + Settings.DefaultDueDays
	Notes      string
	Terms      string
	CreatedBy  string
	SharedWith []string
	Now        time.Time
}

// NewInvoice construye una factura en estado draft con totales calculados.
func NewInvoice(p CreateParams) (*entity.Invoice, error) {
	if strings.TrimSpace(p.ClientID) == "" || strings.TrimSpace(p.Client.Name) == "" {
		return nil, fmt.Errorf("%w: cliente obligatorio", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Number) == "" {
		return nil, fmt.Errorf("%w: número de factura obligatorio", domain.ErrInvalidInput)
	}
	if p.Now.IsZero() {
		return nil, fmt.Errorf("%w: fecha de creación obligatoria", domain.ErrInvalidInput)
	}

	policy := p.Settings.Tax
	terms, notes := p.Terms, p.Notes
	cur := p.Currency
	var items []entity.InvoiceItem
	templateID := ""
	if t := p.Template; t != nil {
		templateID = t.ID
		for _, it := range t.Items {
			it.ID = ""
			if it.TaxRate != nil {
				r := *it.TaxRate
				it.TaxRate = &r
			}
			items = append(items, it)
		}
		if terms == "" {
			terms = t.Terms
		}
		if notes == "" {
			notes = t.Notes
		}
		if t.TaxPolicy.Mode != "" {
			policy = t.TaxPolicy
		}
		if cur == "" {
			cur = t.Currency
		}
	}
	if policy.Mode == "" {
		policy.Mode = entity.TaxModePerItem
	}
	if cur == "" {
		cur = p.Settings.Currency
	}
	cur, err := NormalizeCurrency(cur)
	if err != nil {
		return nil, err
	}

	items = append(items, p.Items...)
	seen := make(map[string]bool, len(items))
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.New().String()
		}
		if seen[items[i].ID] {
			return nil, fmt.Errorf("%w: línea %s repetida", domain.ErrDuplicate, items[i].ID)
		}
		seen[items[i].ID] = true
	}

	base := p.Now
	if p.IssueDate != nil {
		base = *p.IssueDate
	}
	var due time.Time
	if p.DueDate != nil {
		due = *p.DueDate
	} else {
		due = base.AddDate(0, 0, p.Settings.DefaultDueDays)
	}
	if p.IssueDate != nil && due.Before(*p.IssueDate) {
		return nil, fmt.Errorf("%w: la fecha de vencimiento es anterior a la de emisión", domain.ErrInvalidInput)
	}

	id := p.ID
	if id == "" {
		id = uuid.New().String()
	}
	inv := &entity.Invoice{
		ID:            id,
		InvoiceNumber: p.Number,
		ClientID:      p.ClientID,
		ClientInfo:    p.Client,
		TemplateID:    templateID,
		Items:         items,
		TaxPolicy:     policy,
		Currency:      cur,
		Status:        entity.InvoiceStatusDraft,
		DueDate:       due,
		Notes:         notes,
		Terms:         terms,
		CreatedBy:     p.CreatedBy,
		SharedWith:    dedupe(p.SharedWith),
		Version:       1,
		CreatedAt:     p.Now,
		UpdatedAt:     p.Now,
	}
	if p.IssueDate != nil {
		d := *p.IssueDate
		inv.IssueDate = &d
	}
	if p.Project != nil {
		pr := *p.Project
		inv.ProjectInfo = &pr
	}
	if err := Recompute(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// NormalizeCurrency valida un código ISO 4217 y lo devuelve en mayúsculas.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w: moneda %q no reconocida", domain.ErrInvalidInput, code)
	}
	return unit.String(), nil
}

func requireDraft(inv *entity.Invoice) error {
	if inv.Status != entity.InvoiceStatusDraft {
		return fmt.Errorf("%w: estado actual %s", domain.ErrNotDraft, inv.Status)
	}
	return nil
}

// AddItem devuelve una nueva factura con la línea agregada y los totales recalculados.
func AddItem(inv *entity.Invoice, item entity.InvoiceItem) (*entity.Invoice, error) {
	if err := requireDraft(inv); err != nil {
		return nil, err
	}
	if err := ValidateItem(item); err != nil {
		return nil, err
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	for _, it := range inv.Items {
		if it.ID == item.ID {
			return nil, fmt.Errorf("%w: línea %s ya existe", domain.ErrDuplicate, item.ID)
		}
	}
	out := inv.Clone()
	out.Items = append(out.Items, item)
	if err := Recompute(out); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveItem devuelve una nueva factura sin la línea itemID.
func RemoveItem(inv *entity.Invoice, itemID string) (*entity.Invoice, error) {
	if err := requireDraft(inv); err != nil {
		return nil, err
	}
	idx := -1
	for i, it := range inv.Items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: línea %s", domain.ErrNotFound, itemID)
	}
	out := inv.Clone()
	out.Items = append(out.Items[:idx], out.Items[idx+1:]...)
	if err := Recompute(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DetailsPatch campos editables en borrador. Los nil no se tocan.
type DetailsPatch struct {
	IssueDate *time.Time
	DueDate   *time.Time
	Notes     *string
	Terms     *string
	TaxPolicy *entity.TaxPolicy
}

// UpdateDetails aplica el patch a una factura en borrador.
func UpdateDetails(inv *entity.Invoice, patch DetailsPatch) (*entity.Invoice, error) {
	if err := requireDraft(inv); err != nil {
		return nil, err
	}
	out := inv.Clone()
	if patch.IssueDate != nil {
		d := *patch.IssueDate
		out.IssueDate = &d
	}
	if patch.DueDate != nil {
		out.DueDate = *patch.DueDate
	}
	if out.IssueDate != nil && out.DueDate.Before(*out.IssueDate) {
		return nil, fmt.Errorf("%w: la fecha de vencimiento es anterior a la de emisión", domain.ErrInvalidInput)
	}
	if patch.Notes != nil {
		out.Notes = *patch.Notes
	}
	if patch.Terms != nil {
		out.Terms = *patch.Terms
	}
	if patch.TaxPolicy != nil {
		out.TaxPolicy = *patch.TaxPolicy
	}
	if err := Recompute(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Share concede lectura a los empleados indicados. No aplica a facturas canceladas.
func Share(inv *entity.Invoice, employeeIDs []string) (*entity.Invoice, error) {
	if inv.Status == entity.InvoiceStatusCancelled {
		return nil, fmt.Errorf("%w: factura cancelada", domain.ErrTerminalState)
	}
	out := inv.Clone()
	for _, id := range employeeIDs {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: id de empleado vacío", domain.ErrInvalidInput)
		}
	}
	out.SharedWith = dedupe(append(out.SharedWith, employeeIDs...))
	return out, nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
