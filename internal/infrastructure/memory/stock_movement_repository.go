package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger en memoria (append-only).
type StockMovementRepo struct {
	store *Store
	tx    *memTx
}

// NewStockMovementRepository repo de solo lectura fuera de transacción.
func NewStockMovementRepository(store *Store) *StockMovementRepo {
	return &StockMovementRepo{store: store}
}

// Create agrega el movimiento a la tx; se publica al confirmar.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx == nil {
		return fmt.Errorf("create movement: requiere transacción")
	}
	r.store.mu.RLock()
	_, productOK := r.store.products[m.ProductID]
	_, dup := r.store.movementIndex[m.ID]
	r.store.mu.RUnlock()
	if !productOK {
		return fmt.Errorf("create movement: product %s no existe", m.ProductID)
	}
	if dup {
		return fmt.Errorf("create movement %s: %w", m.ID, domain.ErrDuplicate)
	}
	r.tx.movements = append(r.tx.movements, *m)
	return nil
}

// GetByID incluye movimientos de productos dados de baja.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	idx, ok := r.store.movementIndex[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "movimiento", ID: id}
	}
	m := r.store.movements[idx]
	return &m, nil
}

// GetByIDs devuelve los movimientos encontrados.
func (r *StockMovementRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.StockMovement, 0, len(ids))
	for _, id := range ids {
		if idx, ok := r.store.movementIndex[id]; ok {
			m := r.store.movements[idx]
			out = append(out, &m)
		}
	}
	return out, nil
}

// List aplica filtros, orden y paginación sobre los movimientos confirmados.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.store.mu.RLock()
	matched := make([]entity.StockMovement, 0)
	for _, m := range r.store.movements {
		if matches(m, f) {
			matched = append(matched, m)
		}
	}
	r.store.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b entity.StockMovement) int {
		c := compareBy(a, b, f.SortBy)
		if f.SortDesc {
			return -c
		}
		return c
	})

	total := len(matched)
	start := min(f.Offset, total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}
	out := make([]*entity.StockMovement, 0, end-start)
	for i := start; i < end; i++ {
		m := matched[i]
		out = append(out, &m)
	}
	return out, total, nil
}

// ListByProductAsc ledger completo del producto en orden de confirmación.
func (r *StockMovementRepo) ListByProductAsc(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.ProductID == productID {
			out = append(out, &m)
		}
	}
	return out, nil
}

func matches(m entity.StockMovement, f repository.MovementFilter) bool {
	if f.ProductID != "" && m.ProductID != f.ProductID {
		return false
	}
	if f.MovementType != "" && m.MovementType != f.MovementType {
		return false
	}
	if f.UserID != "" && m.UserID != f.UserID {
		return false
	}
	if f.DateFrom != nil && m.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && m.CreatedAt.After(*f.DateTo) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(m.Reason), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func compareBy(a, b entity.StockMovement, sortBy string) int {
	switch sortBy {
	case repository.SortByQuantity:
		return cmp.Compare(a.Quantity, b.Quantity)
	case repository.SortByTotal:
		return a.Total.Cmp(b.Total)
	case repository.SortByMovementType:
		return strings.Compare(string(a.MovementType), string(b.MovementType))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
