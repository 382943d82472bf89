package entity

import "github.com/shopspring/decimal"

// TaxMode modo de cálculo del impuesto.
type TaxMode string

const (
	// TaxModePerItem usa la tasa de cada línea (o DefaultRate si la línea no tiene).
	TaxModePerItem TaxMode = "per_item"
	// TaxModeFlat aplica DefaultRate al subtotal e ignora las tasas por línea.
	TaxModeFlat TaxMode = "flat"
)

// TaxPolicy política de impuestos de una factura.
type TaxPolicy struct {
	Mode        TaxMode
	DefaultRate decimal.Decimal // porcentaje 0–100
}
