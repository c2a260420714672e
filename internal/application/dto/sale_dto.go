package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateSaleRequest body de POST /api/sales.
// RequestID también puede llegar en el header Idempotency-Key.
type CreateSaleRequest struct {
	RequestID  string            `json:"request_id"`
	CustomerID string            `json:"customer_id,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Items      []SaleItemRequest `json:"items"`
}

// SaleItemRequest línea de venta. Sin product_id es una línea libre (servicio) sin stock.
type SaleItemRequest struct {
	ProductID   string           `json:"product_id,omitempty"`
	Description string           `json:"description,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"` // vacío = tasa del producto
}

// SaleItemResponse línea persistida.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	MovementID  string          `json:"movement_id,omitempty"`
}

// SaleResponse venta confirmada. Replayed=true cuando se devolvió una venta existente
// para el mismo request_id.
type SaleResponse struct {
	ID         string             `json:"id"`
	RequestID  string             `json:"request_id"`
	CustomerID string             `json:"customer_id,omitempty"`
	UserID     string             `json:"user_id"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	TaxAmount  decimal.Decimal    `json:"tax_amount"`
	Total      decimal.Decimal    `json:"total"`
	Status     string             `json:"status"`
	Notes      string             `json:"notes,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []SaleItemResponse `json:"items"`
	Replayed   bool               `json:"replayed"`
}

// StockConflictResponse cuerpo 409 cuando una venta no tiene stock suficiente.
type StockConflictResponse struct {
	Code     string                  `json:"code"`
	Message  string                  `json:"message"`
	Products []InsufficientStockItem `json:"products"`
}

// InsufficientStockItem producto sin stock suficiente.
type InsufficientStockItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"`
}
