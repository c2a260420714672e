package repository

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// SaleRepository persistencia del agregado venta (cabecera + líneas).
type SaleRepository interface {
	// Create guarda cabecera y líneas. Si request_id ya existe devuelve domain.ErrDuplicate.
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetByRequestID devuelve nil, nil si no hay venta con esa clave.
	GetByRequestID(ctx context.Context, requestID string) (*entity.Sale, error)
}
