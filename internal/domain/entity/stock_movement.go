package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType clasifica por qué cambió el stock de un producto.
type MovementType string

// Tipos de movimiento de inventario (conjunto cerrado).
const (
	MovementPurchase      MovementType = "purchase"       // compra a proveedor
	MovementReturnIn      MovementType = "return_in"      // devolución de cliente
	MovementTransferIn    MovementType = "transfer_in"    // traslado entrante
	MovementAdjustmentIn  MovementType = "adjustment_in"  // ajuste positivo
	MovementSale          MovementType = "sale"           // venta
	MovementReturnOut     MovementType = "return_out"     // devolución a proveedor
	MovementTransferOut   MovementType = "transfer_out"   // traslado saliente
	MovementAdjustmentOut MovementType = "adjustment_out" // ajuste negativo
	MovementDamaged       MovementType = "damaged"        // producto dañado
	MovementExpired       MovementType = "expired"        // producto vencido
)

// Direction signo del movimiento sobre el stock.
type Direction int

const (
	Inbound  Direction = 1
	Outbound Direction = -1
)

// movementDirections es la única fuente de verdad del sentido de cada tipo.
// Agregar un tipo nuevo = una línea aquí + el CHECK de la migración.
var movementDirections = map[MovementType]Direction{
	MovementPurchase:      Inbound,
	MovementReturnIn:      Inbound,
	MovementTransferIn:    Inbound,
	MovementAdjustmentIn:  Inbound,
	MovementSale:          Outbound,
	MovementReturnOut:     Outbound,
	MovementTransferOut:   Outbound,
	MovementAdjustmentOut: Outbound,
	MovementDamaged:       Outbound,
	MovementExpired:       Outbound,
}

var movementOrder = []MovementType{
	MovementPurchase, MovementReturnIn, MovementTransferIn, MovementAdjustmentIn,
	MovementSale, MovementReturnOut, MovementTransferOut, MovementAdjustmentOut,
	MovementDamaged, MovementExpired,
}

// MovementTypes devuelve todos los tipos válidos, entradas primero.
func MovementTypes() []MovementType {
	out := make([]MovementType, len(movementOrder))
	copy(out, movementOrder)
	return out
}

// ParseMovementType valida un tipo recibido como texto.
func ParseMovementType(s string) (MovementType, bool) {
	t := MovementType(s)
	_, ok := movementDirections[t]
	return t, ok
}

// Valid indica si el tipo pertenece a la taxonomía.
func (t MovementType) Valid() bool {
	_, ok := movementDirections[t]
	return ok
}

// Direction devuelve Inbound u Outbound. Un tipo desconocido devuelve 0.
func (t MovementType) Direction() Direction {
	return movementDirections[t]
}

// IsInbound indica si el tipo aumenta el stock.
func (t MovementType) IsInbound() bool { return t.Direction() == Inbound }

// IsOutbound indica si el tipo disminuye el stock.
func (t MovementType) IsOutbound() bool { return t.Direction() == Outbound }

// Apply calcula stockAfter a partir de stockBefore y la cantidad según el sentido del tipo.
// No valida negativos: eso lo decide el ledger.
func (t MovementType) Apply(stockBefore, quantity int) int {
	return stockBefore + int(t.Direction())*quantity
}

func (t MovementType) String() string { return string(t) }

// StockMovement entrada inmutable del ledger de inventario.
type StockMovement struct {
	ID           string
	ProductID    string
	MovementType MovementType
	Quantity     int             // siempre > 0; el sentido lo da MovementType
	UnitCost     decimal.Decimal // decimal(13,6)
	Subtotal     decimal.Decimal
	TaxRate      decimal.Decimal // porcentaje 0-100, decimal(5,2)
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	StockBefore  int
	StockAfter   int
	Reason       string
	UserID       string
	ReferenceID  string // venta u otro documento origen (opcional)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
