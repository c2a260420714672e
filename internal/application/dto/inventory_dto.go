package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Sirve para entradas (compra, devolución, ajuste) y salidas manuales.
type RegisterMovementRequest struct {
	ProductID    string           `json:"product_id"`
	MovementType string           `json:"movement_type"`
	Quantity     int              `json:"quantity"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"` // vacío = costo del producto
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`  // vacío = tasa del producto
	Reason       string           `json:"reason,omitempty"`
	ReferenceID  string           `json:"reference_id,omitempty"`
}

// MovementResponse movimiento del ledger en respuestas HTTP.
type MovementResponse struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	MovementType string          `json:"movement_type"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
	StockBefore  int             `json:"stock_before"`
	StockAfter   int             `json:"stock_after"`
	Reason       string          `json:"reason,omitempty"`
	UserID       string          `json:"user_id"`
	ReferenceID  string          `json:"reference_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// MovementListQuery query string de GET /api/inventory/movements.
type MovementListQuery struct {
	ProductID    string `query:"product_id"`
	MovementType string `query:"movement_type"`
	UserID       string `query:"user_id"`
	DateFrom     string `query:"date_from"` // RFC3339 o YYYY-MM-DD
	DateTo       string `query:"date_to"`
	Search       string `query:"search"`
	SortBy       string `query:"sort_by"`
	SortDir      string `query:"sort_dir"`
	PageRequest
}

// MovementPage página del ledger.
type MovementPage struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementLookupRequest body de POST /api/inventory/movements/lookup.
type MovementLookupRequest struct {
	IDs []string `json:"ids"`
}

// MovementLookupResponse movimientos en el orden pedido; Missing lista los ids inexistentes.
type MovementLookupResponse struct {
	Items   []MovementResponse `json:"items"`
	Missing []string           `json:"missing"`
}

// StockDiscountRequest descuento de un producto.
type StockDiscountRequest struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Reason    string           `json:"reason,omitempty"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
}

// SingleDiscountRequest body de POST /api/inventory/stock/discount.
type SingleDiscountRequest struct {
	StockDiscountRequest
	MovementType string `json:"movement_type,omitempty"` // por defecto sale
}

// StockDiscountResult resultado por producto. Con Success=false, StockAfter = StockBefore.
type StockDiscountResult struct {
	ProductID          string `json:"product_id"`
	MovementID         string `json:"movement_id,omitempty"`
	StockBefore        int    `json:"stock_before"`
	StockAfter         int    `json:"stock_after"`
	QuantityDiscounted int    `json:"quantity_discounted"`
	Success            bool   `json:"success"`
	Error              string `json:"error,omitempty"`
}

// BulkDiscountRequest body de POST /api/inventory/stock/discount-bulk y /stock/check.
type BulkDiscountRequest struct {
	Items        []StockDiscountRequest `json:"items"`
	MovementType string                 `json:"movement_type,omitempty"`
}

// BulkDiscountResult resultado de un lote: o todos en Successful o todos en Failed.
type BulkDiscountResult struct {
	Successful      []StockDiscountResult `json:"successful"`
	Failed          []StockDiscountResult `json:"failed"`
	TotalProcessed  int                   `json:"total_processed"`
	TotalSuccessful int                   `json:"total_successful"`
	TotalFailed     int                   `json:"total_failed"`
}

// StockCheckItem verificación de disponibilidad de una línea.
type StockCheckItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Available   int    `json:"available"`
	Requested   int    `json:"requested"` // acumulado del producto hasta esta línea
	Sufficient  bool   `json:"sufficient"`
	Error       string `json:"error,omitempty"`
}

// StockCheckReport resultado de la verificación previa (sin escrituras).
type StockCheckReport struct {
	Items         []StockCheckItem `json:"items"`
	AllSufficient bool             `json:"all_sufficient"`
}

// LedgerVerification resultado de reproducir el ledger de un producto.
type LedgerVerification struct {
	ProductID    string   `json:"product_id"`
	ProductStock int      `json:"product_stock"`
	LedgerStock  int      `json:"ledger_stock"`
	Movements    int      `json:"movements"`
	Consistent   bool     `json:"consistent"`
	Issues       []string `json:"issues,omitempty"`
}
