package entity

import "time"

// CompanyInfo datos de la agencia emisora que aparecen en la factura.
type CompanyInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
	TaxID   string
}

// InvoiceTemplate semilla reutilizable para crear facturas (se copia al usarse).
type InvoiceTemplate struct {
	ID        string
	Name      string
	Items     []InvoiceItem
	Terms     string
	Notes     string
	TaxPolicy TaxPolicy
	Currency  string
	Company   CompanyInfo
	CreatedAt time.Time
	UpdatedAt time.Time
}
