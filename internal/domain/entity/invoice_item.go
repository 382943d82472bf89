package entity

import "github.com/shopspring/decimal"

// InvoiceItem representa una línea facturable.
// TaxRate nil significa "usar la tasa por defecto de la política de la factura".
type InvoiceItem struct {
	ID          string
	Description string
	Quantity    int64
	UnitPrice   decimal.Decimal
	ServiceType string
	TaxRate     *decimal.Decimal // porcentaje 0–100
}
