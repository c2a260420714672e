package repository

import (
	"context"
	"time"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// Columnas permitidas para ordenar el listado del ledger.
const (
	SortByCreatedAt    = "created_at"
	SortByQuantity     = "quantity"
	SortByTotal        = "total"
	SortByMovementType = "movement_type"
)

// MovementFilter criterios de búsqueda del ledger (todos opcionales).
type MovementFilter struct {
	ProductID    string
	MovementType entity.MovementType
	UserID       string
	DateFrom     *time.Time
	DateTo       *time.Time
	Search       string // texto libre sobre reason
	SortBy       string
	SortDesc     bool
	Limit        int
	Offset       int
}

// StockMovementRepository puerto de persistencia append-only del ledger.
// No existe Update ni Delete: un movimiento escrito es inmutable.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.StockMovement, error)
	// List devuelve la página pedida y el total de filas que cumplen el filtro.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	// ListByProductAsc devuelve el ledger completo de un producto en orden de escritura.
	ListByProductAsc(ctx context.Context, productID string) ([]*entity.StockMovement, error)
}
