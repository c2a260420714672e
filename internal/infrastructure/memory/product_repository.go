package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria. Con tx nil lee y escribe el estado confirmado.
type ProductRepo struct {
	store *Store
	tx    *memTx
}

// NewProductRepository repo fuera de transacción (lecturas del pool).
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) read(id string) (*entity.Product, bool) {
	r.store.mu.RLock()
	p, ok := r.store.products[id]
	r.store.mu.RUnlock()
	if !ok || p.Deleted() {
		return nil, false
	}
	if r.tx != nil {
		if stock, pending := r.tx.stock[id]; pending {
			p.Stock = stock
			p.UpdatedAt = r.tx.touched[id]
		}
	}
	return &p, true
}

// GetByID devuelve NotFoundError si no existe o está dado de baja.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := r.read(id)
	if !ok {
		return nil, &domain.NotFoundError{Entity: "producto", ID: id}
	}
	return p, nil
}

// GetByIDs omite ausentes y dados de baja; no repite IDs.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := r.read(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetForUpdate toma el bloqueo de fila y lee el stock vigente. Espera mientras otra tx lo retenga.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx == nil {
		return nil, fmt.Errorf("get product for update %s: requiere transacción", id)
	}
	if err := r.tx.lock(ctx, id); err != nil {
		return nil, fmt.Errorf("lock product %s: %w", id, err)
	}
	return r.GetByID(ctx, id)
}

// UpdateStock fija el stock; dentro de una tx queda pendiente hasta Commit.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, newStock int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if newStock < 0 {
		return fmt.Errorf("update stock %s: valor negativo %d", id, newStock)
	}
	now := time.Now().UTC()
	if r.tx != nil {
		if _, held := r.tx.held[id]; !held {
			return fmt.Errorf("update stock %s: fila no bloqueada", id)
		}
		r.tx.stock[id] = newStock
		r.tx.touched[id] = now
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return &domain.NotFoundError{Entity: "producto", ID: id}
	}
	p.Stock = newStock
	p.UpdatedAt = now
	r.store.products[id] = p
	return nil
}
