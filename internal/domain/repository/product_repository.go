package repository

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// ProductRepository puerto del catálogo de productos que consume el ledger.
// Las implementaciones aceptan pool o tx; GetForUpdate y UpdateStock solo tienen sentido dentro de una tx.
type ProductRepository interface {
	// GetByID devuelve domain.NotFoundError si no existe (incluye productos dados de baja).
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetByIDs devuelve los productos encontrados; los ausentes simplemente no aparecen.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// GetForUpdate lee el producto y bloquea su fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// UpdateStock fija product.stock. Solo lo invoca el ledger.
	UpdateStock(ctx context.Context, id string, newStock int) error
}
