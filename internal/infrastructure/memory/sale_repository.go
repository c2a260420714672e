package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria; request_id es único como en la tabla sales.
type SaleRepo struct {
	store *Store
	tx    *memTx
}

// NewSaleRepository repo de lectura fuera de transacción.
func NewSaleRepository(store *Store) *SaleRepo {
	return &SaleRepo{store: store}
}

// Create agrega la venta a la tx. request_id repetido devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx == nil {
		return fmt.Errorf("create sale: requiere transacción")
	}
	r.store.mu.RLock()
	_, dup := r.store.saleByRequest[sale.RequestID]
	r.store.mu.RUnlock()
	if !dup {
		dup = slices.ContainsFunc(r.tx.sales, func(s entity.Sale) bool { return s.RequestID == sale.RequestID })
	}
	if dup {
		return errDuplicateRequest(sale.RequestID)
	}
	cp := *sale
	cp.Items = slices.Clone(sale.Items)
	r.tx.sales = append(r.tx.sales, cp)
	return nil
}

// GetByID devuelve NotFoundError si la venta no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "venta", ID: id}
	}
	s.Items = slices.Clone(s.Items)
	return &s, nil
}

// GetByRequestID devuelve nil, nil si no hay venta con esa clave.
func (r *SaleRepo) GetByRequestID(ctx context.Context, requestID string) (*entity.Sale, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	id, ok := r.store.saleByRequest[requestID]
	r.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}
