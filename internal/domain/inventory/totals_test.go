package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Escenario base: 5 unidades a 2.00 con IVA 15%.
func TestComputeTotals_DescuentoConIVA(t *testing.T) {
	got, err := inventory.ComputeTotals(5, dec("2"), dec("15"))
	require.NoError(t, err)

	assert.True(t, got.Subtotal.Equal(dec("10.00")), "subtotal = %s", got.Subtotal)
	assert.True(t, got.TaxAmount.Equal(dec("1.50")), "tax = %s", got.TaxAmount)
	assert.True(t, got.Total.Equal(dec("11.50")), "total = %s", got.Total)
}

func TestComputeTotals_Redondeo(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		unitCost  string
		taxRate   string
		subtotal  string
		taxAmount string
	}{
		{"impuesto half-up en el sexto decimal", 1, "0.000015", "10", "0.000015", "0.000002"},
		{"impuesto debajo de la mitad", 1, "0.000014", "10", "0.000014", "0.000001"},
		{"ceros a la derecha no cuentan como decimales", 2, "1.50000000", "15.000", "3", "0.45"},
		{"impuesto con mitad exacta", 1, "0.000005", "10", "0.000005", "0.000001"},
		{"tasa con decimales", 3, "1.333333", "12.5", "3.999999", "0.499999875"},
		{"costo cero", 7, "0", "15", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inventory.ComputeTotals(tt.qty, dec(tt.unitCost), dec(tt.taxRate))
			require.NoError(t, err)
			assert.True(t, got.Subtotal.Equal(dec(tt.subtotal)), "subtotal = %s", got.Subtotal)
			wantTax := dec(tt.taxAmount).Round(inventory.MoneyScale)
			assert.True(t, got.TaxAmount.Equal(wantTax), "tax = %s, want %s", got.TaxAmount, wantTax)
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)))
		})
	}
}

// La invariante debe cumplirse para cualquier combinación válida.
func TestComputeTotals_Invariante(t *testing.T) {
	costs := []string{"0", "0.01", "1.999999", "3.141592", "1000", "0.333333"}
	rates := []string{"0", "5", "12", "15", "19", "100", "7.25"}
	for qty := 1; qty <= 25; qty += 4 {
		for _, c := range costs {
			for _, r := range rates {
				got, err := inventory.ComputeTotals(qty, dec(c), dec(r))
				require.NoError(t, err)
				sub := decimal.NewFromInt(int64(qty)).Mul(dec(c)).Round(6)
				tax := sub.Mul(dec(r)).Div(decimal.NewFromInt(100)).Round(6)
				assert.True(t, got.Subtotal.Equal(sub))
				assert.True(t, got.TaxAmount.Equal(tax))
				assert.True(t, got.Total.Equal(sub.Add(tax)))
				assert.False(t, got.Total.IsNegative())
			}
		}
	}
}

func TestComputeTotals_EntradaInvalida(t *testing.T) {
	tests := []struct {
		name  string
		qty   int
		cost  string
		rate  string
		field string
	}{
		{"cantidad cero", 0, "1", "0", "quantity"},
		{"cantidad negativa", -2, "1", "0", "quantity"},
		{"costo negativo", 1, "-0.01", "0", "unit_cost"},
		{"tasa negativa", 1, "1", "-1", "tax_rate"},
		{"tasa mayor a 100", 1, "1", "100.01", "tax_rate"},
		{"costo con 7 decimales", 10, "0.1234567", "12", "unit_cost"},
		{"tasa con 3 decimales", 10, "0.123456", "12.345", "tax_rate"},
		{"costo fuera de rango", 1, "99999999999", "0", "unit_cost"},
		{"costo en el límite", 1, "10000000", "0", "unit_cost"},
		{"subtotal fuera de rango", 2, "5000000", "0", "subtotal"},
		{"total fuera de rango por el impuesto", 1, "9000000", "15", "total"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inventory.ComputeTotals(tt.qty, dec(tt.cost), dec(tt.rate))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateMoney(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"cero", "0", false},
		{"seis decimales", "0.123456", false},
		{"máximo representable", "9999999.999999", false},
		{"siete decimales", "0.1234567", true},
		{"igual a la cota", "10000000", true},
		{"negativo", "-1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inventory.ValidateMoney("unit_price", dec(tt.value))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "unit_price", vErr.Field)
		})
	}
}

func TestSum(t *testing.T) {
	a, _ := inventory.ComputeTotals(2, dec("1.5"), dec("10"))
	b, _ := inventory.ComputeTotals(1, dec("4"), dec("0"))
	s := inventory.Sum(a, b)
	assert.True(t, s.Subtotal.Equal(dec("7")))
	assert.True(t, s.TaxAmount.Equal(dec("0.3")))
	assert.True(t, s.Total.Equal(dec("7.3")))
}
