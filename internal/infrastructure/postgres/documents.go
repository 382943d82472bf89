package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// Representación JSONB de los agregados. Las columnas de la tabla son copia
// de los campos que se filtran; el documento es la fuente al leer.

type itemDoc struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Quantity    int64            `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	ServiceType string           `json:"service_type,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

type paymentDoc struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
}

type taxDoc struct {
	Mode        string          `json:"mode"`
	DefaultRate decimal.Decimal `json:"default_rate"`
}

type invoiceDoc struct {
	ClientInfo     entity.ClientInfo   `json:"client_info"`
	ProjectInfo    *entity.ProjectInfo `json:"project_info,omitempty"`
	TemplateID     string              `json:"template_id,omitempty"`
	Items          []itemDoc           `json:"items"`
	Tax            taxDoc              `json:"tax"`
	IssueDate      *time.Time          `json:"issue_date,omitempty"`
	ViewedAt       *time.Time          `json:"viewed_at,omitempty"`
	PaidDate       *time.Time          `json:"paid_date,omitempty"`
	PaymentMethod  string              `json:"payment_method,omitempty"`
	Notes          string              `json:"notes,omitempty"`
	Terms          string              `json:"terms,omitempty"`
	CreatedBy      string              `json:"created_by"`
	PaymentHistory []paymentDoc        `json:"payment_history,omitempty"`
	LastReminderAt *time.Time          `json:"last_reminder_at,omitempty"`
}

type templateDoc struct {
	Items    []itemDoc          `json:"items"`
	Terms    string             `json:"terms,omitempty"`
	Notes    string             `json:"notes,omitempty"`
	Tax      taxDoc             `json:"tax"`
	Currency string             `json:"currency,omitempty"`
	Company  entity.CompanyInfo `json:"company"`
}

func toItemDocs(items []entity.InvoiceItem) []itemDoc {
	out := make([]itemDoc, 0, len(items))
	for _, it := range items {
		out = append(out, itemDoc{
			ID: it.ID, Description: it.Description, Quantity: it.Quantity,
			UnitPrice: it.UnitPrice, ServiceType: it.ServiceType, TaxRate: it.TaxRate,
		})
	}
	return out
}

func fromItemDocs(docs []itemDoc) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, entity.InvoiceItem{
			ID: d.ID, Description: d.Description, Quantity: d.Quantity,
			UnitPrice: d.UnitPrice, ServiceType: d.ServiceType, TaxRate: d.TaxRate,
		})
	}
	return out
}

func newInvoiceDoc(inv *entity.Invoice) invoiceDoc {
	doc := invoiceDoc{
		ClientInfo:     inv.ClientInfo,
		ProjectInfo:    inv.ProjectInfo,
		TemplateID:     inv.TemplateID,
		Items:          toItemDocs(inv.Items),
		Tax:            taxDoc{Mode: string(inv.TaxPolicy.Mode), DefaultRate: inv.TaxPolicy.DefaultRate},
		IssueDate:      inv.IssueDate,
		ViewedAt:       inv.ViewedAt,
		PaidDate:       inv.PaidDate,
		PaymentMethod:  inv.PaymentMethod,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		CreatedBy:      inv.CreatedBy,
		LastReminderAt: inv.LastReminderAt,
	}
	for _, p := range inv.PaymentHistory {
		doc.PaymentHistory = append(doc.PaymentHistory, paymentDoc{
			ID: p.ID, Amount: p.Amount, PaymentDate: p.PaymentDate, PaymentMethod: p.PaymentMethod,
			TransactionID: p.TransactionID, Status: string(p.Status), Notes: p.Notes,
		})
	}
	return doc
}

// apply vuelca el documento sobre inv (las columnas ya escaneadas se conservan).
func (d invoiceDoc) apply(inv *entity.Invoice) {
	inv.ClientInfo = d.ClientInfo
	inv.ProjectInfo = d.ProjectInfo
	inv.TemplateID = d.TemplateID
	inv.Items = fromItemDocs(d.Items)
	inv.TaxPolicy = entity.TaxPolicy{Mode: entity.TaxMode(d.Tax.Mode), DefaultRate: d.Tax.DefaultRate}
	inv.IssueDate = d.IssueDate
	inv.ViewedAt = d.ViewedAt
	inv.PaidDate = d.PaidDate
	inv.PaymentMethod = d.PaymentMethod
	inv.Notes = d.Notes
	inv.Terms = d.Terms
	inv.CreatedBy = d.CreatedBy
	inv.LastReminderAt = d.LastReminderAt
	for _, p := range d.PaymentHistory {
		inv.PaymentHistory = append(inv.PaymentHistory, entity.PaymentRecord{
			ID: p.ID, InvoiceID: inv.ID, Amount: p.Amount, PaymentDate: p.PaymentDate,
			PaymentMethod: p.PaymentMethod, TransactionID: p.TransactionID,
			Status: entity.PaymentStatus(p.Status), Notes: p.Notes,
		})
	}
}
