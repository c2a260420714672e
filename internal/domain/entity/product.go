package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product agregado del catálogo. Stock solo lo escribe el ledger, dentro de la misma
// transacción que inserta el movimiento.
type Product struct {
	ID        string
	SKU       string
	Name      string
	Stock     int
	Cost      decimal.Decimal // costo unitario por defecto para movimientos sin unit_cost
	TaxRate   decimal.Decimal // porcentaje 0-100
	DeletedAt *time.Time      // borrado lógico; sus movimientos siguen siendo auditables
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Deleted indica si el producto fue dado de baja.
func (p *Product) Deleted() bool { return p.DeletedAt != nil }
