package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
)

const (
	// MoneyScale decimales de los montos del ledger (columnas NUMERIC(13,6)).
	MoneyScale = 6
	// TaxRateScale decimales de la tasa de impuesto (columnas NUMERIC(5,2)).
	TaxRateScale = 2
)

var (
	hundred    = decimal.NewFromInt(100)
	maxTaxRate = hundred
	// MaxAmount cota exclusiva de cualquier monto: NUMERIC(13,6) admite 7 dígitos enteros.
	MaxAmount = decimal.New(1, 7)
)

// Totals montos derivados de un movimiento o de una línea de venta.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals calcula subtotal, impuesto y total (servicio de dominio puro).
//
//	Subtotal  = round(cantidad * costoUnitario, 6)
//	Impuesto  = round(Subtotal * tasa / 100, 6)
//	Total     = Subtotal + Impuesto
//
// El redondeo es half-up (los montos nunca son negativos) y se aplica una sola vez aquí;
// nadie recalcula estos valores después de persistirlos.
func ComputeTotals(quantity int, unitCost, taxRate decimal.Decimal) (Totals, error) {
	if quantity <= 0 {
		return Totals{}, domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if err := ValidateMoney("unit_cost", unitCost); err != nil {
		return Totals{}, err
	}
	if err := ValidateTaxRate(taxRate); err != nil {
		return Totals{}, err
	}
	subtotal := decimal.NewFromInt(int64(quantity)).Mul(unitCost).Round(MoneyScale)
	taxAmount := subtotal.Mul(taxRate).Div(hundred).Round(MoneyScale)
	t := Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
	if err := ValidateMoney("subtotal", t.Subtotal); err != nil {
		return Totals{}, err
	}
	if err := ValidateMoney("total", t.Total); err != nil {
		return Totals{}, err
	}
	return t, nil
}

// ValidateMoney exige un monto no negativo, con a lo sumo 6 decimales y menor que MaxAmount,
// es decir un valor que la columna guarda sin redondear.
func ValidateMoney(field string, v decimal.Decimal) error {
	if v.IsNegative() {
		return domain.NewValidationError(field, "no puede ser negativo")
	}
	if !v.Equal(v.Round(MoneyScale)) {
		return domain.NewValidationError(field, "máximo 6 decimales")
	}
	if v.GreaterThanOrEqual(MaxAmount) {
		return domain.NewValidationError(field, "debe ser menor que 10000000")
	}
	return nil
}

// ValidateTaxRate exige un porcentaje entre 0 y 100 con a lo sumo 2 decimales.
func ValidateTaxRate(taxRate decimal.Decimal) error {
	if taxRate.IsNegative() || taxRate.GreaterThan(maxTaxRate) {
		return domain.NewValidationError("tax_rate", "debe estar entre 0 y 100")
	}
	if !taxRate.Equal(taxRate.Round(TaxRateScale)) {
		return domain.NewValidationError("tax_rate", "máximo 2 decimales")
	}
	return nil
}

// Sum acumula varios Totals (cabecera de venta).
func Sum(items ...Totals) Totals {
	out := Totals{Subtotal: decimal.Zero, TaxAmount: decimal.Zero, Total: decimal.Zero}
	for _, t := range items {
		out.Subtotal = out.Subtotal.Add(t.Subtotal)
		out.TaxAmount = out.TaxAmount.Add(t.TaxAmount)
		out.Total = out.Total.Add(t.Total)
	}
	return out
}
