package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/agency-billing/internal/application/dto"
	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
	"github.com/jhoicas/agency-billing/internal/domain/invoice"
)

const dateLayout = "2006-01-02"

// parseDate acepta "2006-01-02" o RFC 3339.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q (use AAAA-MM-DD)", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func formatStamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toItem(in dto.InvoiceItemRequest) entity.InvoiceItem {
	return entity.InvoiceItem{
		ID:          in.ID,
		Description: strings.TrimSpace(in.Description),
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		ServiceType: in.ServiceType,
		TaxRate:     in.TaxRate,
	}
}

func toItems(in []dto.InvoiceItemRequest) []entity.InvoiceItem {
	out := make([]entity.InvoiceItem, 0, len(in))
	for _, it := range in {
		out = append(out, toItem(it))
	}
	return out
}

func toItemResponses(items []entity.InvoiceItem) []dto.InvoiceItemResponse {
	out := make([]dto.InvoiceItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.InvoiceItemResponse{
			ID:          it.ID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			ServiceType: it.ServiceType,
			TaxRate:     it.TaxRate,
			Total:       invoice.ItemTotal(it),
		})
	}
	return out
}

func toPolicy(in dto.TaxPolicyDTO) entity.TaxPolicy {
	return entity.TaxPolicy{Mode: entity.TaxMode(in.Mode), DefaultRate: in.DefaultRate}
}

func toPolicyDTO(p entity.TaxPolicy) dto.TaxPolicyDTO {
	return dto.TaxPolicyDTO{Mode: string(p.Mode), DefaultRate: p.DefaultRate}
}

func toCompany(in dto.CompanyInfoDTO) entity.CompanyInfo {
	return entity.CompanyInfo{Name: in.Name, Email: in.Email, Phone: in.Phone, Address: in.Address, TaxID: in.TaxID}
}

func toCompanyDTO(c entity.CompanyInfo) dto.CompanyInfoDTO {
	return dto.CompanyInfoDTO{Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address, TaxID: c.TaxID}
}

func toInvoiceResponse(inv *entity.Invoice, access invoice.Access) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientID:      inv.ClientID,
		Client: dto.ClientInfoDTO{
			Name:    inv.ClientInfo.Name,
			Email:   inv.ClientInfo.Email,
			Phone:   inv.ClientInfo.Phone,
			Company: inv.ClientInfo.Company,
			Address: inv.ClientInfo.Address,
			TaxID:   inv.ClientInfo.TaxID,
		},
		Items:          toItemResponses(inv.Items),
		TaxMode:        string(inv.TaxPolicy.Mode),
		DefaultTaxRate: inv.TaxPolicy.DefaultRate,
		Subtotal:       inv.Subtotal,
		TaxAmount:      inv.TaxAmount,
		TotalAmount:    inv.TotalAmount,
		Balance:        invoice.Balance(inv),
		Currency:       inv.Currency,
		Status:         string(inv.Status),
		IssueDate:      formatDate(inv.IssueDate),
		DueDate:        inv.DueDate.Format(dateLayout),
		ViewedAt:       formatStamp(inv.ViewedAt),
		PaidDate:       formatDate(inv.PaidDate),
		PaymentMethod:  inv.PaymentMethod,
		Notes:          inv.Notes,
		Terms:          inv.Terms,
		CreatedBy:      inv.CreatedBy,
		SharedWith:     inv.SharedWith,
		Actions:        make([]string, 0, len(access.Actions)),
		Version:        inv.Version,
		CreatedAt:      formatStamp(&inv.CreatedAt),
		UpdatedAt:      formatStamp(&inv.UpdatedAt),
	}
	if inv.ProjectInfo != nil {
		resp.Project = &dto.ProjectInfoDTO{
			ID:          inv.ProjectInfo.ID,
			Name:        inv.ProjectInfo.Name,
			Description: inv.ProjectInfo.Description,
		}
	}
	for _, p := range inv.PaymentHistory {
		resp.PaymentHistory = append(resp.PaymentHistory, dto.PaymentResponse{
			ID:            p.ID,
			Amount:        p.Amount,
			PaymentDate:   formatStamp(&p.PaymentDate),
			PaymentMethod: p.PaymentMethod,
			TransactionID: p.TransactionID,
			Status:        string(p.Status),
			Notes:         p.Notes,
		})
	}
	for _, a := range access.Actions {
		resp.Actions = append(resp.Actions, string(a))
	}
	return resp
}
