package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la venta persistida.
const (
	SaleStatusCommitted = "committed"
)

// Sale cabecera de una venta POS.
type Sale struct {
	ID         string
	RequestID  string // clave de idempotencia enviada por el cliente (única)
	CustomerID string
	UserID     string
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Status     string
	Notes      string
	CreatedAt  time.Time
	Items      []SaleItem
}

// SaleItem línea de la venta. ProductID vacío = línea libre (servicio) sin movimiento de stock.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	Total       decimal.Decimal
	MovementID  string
}

// HasProduct indica si la línea afecta inventario.
func (i SaleItem) HasProduct() bool { return i.ProductID != "" }
