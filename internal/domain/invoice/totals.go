// Package invoice es el motor de facturación: totales, ciclo de vida y visibilidad.
// Todas las funciones son puras; reciben una factura y devuelven otra nueva.
package invoice

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agency-billing/internal/domain"
	"github.com/jhoicas/agency-billing/internal/domain/entity"
)

// moneyScale decimales de la moneda (unidades menores).
const moneyScale = 2

var hundred = decimal.NewFromInt(100)

// Totals resultado del cálculo de totales.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ItemTotal devuelve quantity × unitPrice sin redondeo adicional.
func ItemTotal(item entity.InvoiceItem) decimal.Decimal {
	return decimal.NewFromInt(item.Quantity).Mul(item.UnitPrice)
}

// ValidateItem rechaza líneas inválidas en lugar de corregirlas.
func ValidateItem(item entity.InvoiceItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return fmt.Errorf("%w: la descripción es obligatoria", domain.ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo (recibido %d)", domain.ErrInvalidInput, item.Quantity)
	}
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: el precio unitario no puede ser negativo", domain.ErrInvalidInput)
	}
	if !item.UnitPrice.Equal(item.UnitPrice.Round(moneyScale)) {
		return fmt.Errorf("%w: el precio unitario excede la precisión de la moneda", domain.ErrInvalidInput)
	}
	if item.TaxRate != nil {
		if err := validateRate(*item.TaxRate); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePolicy verifica modo y tasa por defecto.
func ValidatePolicy(policy entity.TaxPolicy) error {
	switch policy.Mode {
	case entity.TaxModePerItem, entity.TaxModeFlat:
	default:
		return fmt.Errorf("%w: modo de impuesto desconocido %q", domain.ErrInvalidInput, policy.Mode)
	}
	return validateRate(policy.DefaultRate)
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(hundred) {
		return fmt.Errorf("%w: la tasa de impuesto debe estar entre 0 y 100", domain.ErrInvalidInput)
	}
	return nil
}

// EffectiveRate resuelve la tasa aplicada a una línea según la política.
func EffectiveRate(item entity.InvoiceItem, policy entity.TaxPolicy) decimal.Decimal {
	if policy.Mode == entity.TaxModePerItem && item.TaxRate != nil {
		return *item.TaxRate
	}
	return policy.DefaultRate
}

// CalculateTotals calcula subtotal, impuesto y total.
// En modo per_item el impuesto de cada línea se redondea a la precisión de la moneda y se suma;
// en modo flat se aplica DefaultRate al subtotal una sola vez.
func CalculateTotals(items []entity.InvoiceItem, policy entity.TaxPolicy) (Totals, error) {
	if err := ValidatePolicy(policy); err != nil {
		return Totals{}, err
	}
	subtotal := decimal.Zero
	tax := decimal.Zero
	for _, item := range items {
		if err := ValidateItem(item); err != nil {
			return Totals{}, err
		}
		line := ItemTotal(item)
		subtotal = subtotal.Add(line)
		if policy.Mode == entity.TaxModePerItem {
			tax = tax.Add(taxOn(line, EffectiveRate(item, policy)))
		}
	}
	if policy.Mode == entity.TaxModeFlat {
		tax = taxOn(subtotal, policy.DefaultRate)
	}
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: subtotal.Add(tax),
	}, nil
}

func taxOn(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(moneyScale)
}

// Recompute reescribe los campos derivados de inv a partir de sus líneas.
func Recompute(inv *entity.Invoice) error {
	t, err := CalculateTotals(inv.Items, inv.TaxPolicy)
	if err != nil {
		return err
	}
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
	return nil
}

// VerifyTotals devuelve ErrIntegrity si los totales almacenados no coinciden con los recalculados.
func VerifyTotals(inv *entity.Invoice) error {
	t, err := CalculateTotals(inv.Items, inv.TaxPolicy)
	if err != nil {
		return err
	}
	if !inv.TotalAmount.Equal(inv.Subtotal.Add(inv.TaxAmount)) ||
		!inv.Subtotal.Equal(t.Subtotal) ||
		!inv.TaxAmount.Equal(t.TaxAmount) {
		return fmt.Errorf("%w: factura %s total=%s esperado=%s",
			domain.ErrIntegrity, inv.ID, inv.TotalAmount.String(), t.TotalAmount.String())
	}
	return nil
}
