package memory

import (
	"context"
	"sync"
	"time"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
)

// Store almacenamiento en memoria para desarrollo local y tests (STORAGE_DRIVER=memory).
//
// Emula el comportamiento transaccional del adaptador PostgreSQL: cada producto tiene un
// bloqueo de fila que una tx retiene hasta Commit/Rollback, y las escrituras de la tx solo
// se publican al confirmar.
type Store struct {
	mu            sync.RWMutex
	products      map[string]entity.Product
	users         map[string]entity.User
	movements     []entity.StockMovement
	movementIndex map[string]int
	sales         map[string]entity.Sale
	saleByRequest map[string]string

	locksMu  sync.Mutex
	rowLocks map[string]chan struct{}
}

// NewStore crea un Store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]entity.Product),
		users:         make(map[string]entity.User),
		movementIndex: make(map[string]int),
		sales:         make(map[string]entity.Sale),
		saleByRequest: make(map[string]string),
		rowLocks:      make(map[string]chan struct{}),
	}
}

// SeedProduct inserta o reemplaza un producto (fixtures y arranque en modo memoria).
func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	s.products[p.ID] = p
}

// SeedUser inserta o reemplaza un usuario.
func (s *Store) SeedUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
}

// Product devuelve una copia del producto confirmado.
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// MovementCount cantidad de movimientos confirmados.
func (s *Store) MovementCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movements)
}

// SaleCount cantidad de ventas confirmadas.
func (s *Store) SaleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sales)
}

func (s *Store) rowLock(productID string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.rowLocks[productID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.rowLocks[productID] = ch
	}
	return ch
}

// memTx estado de una transacción abierta.
type memTx struct {
	store     *Store
	held      map[string]chan struct{}
	stock     map[string]int
	touched   map[string]time.Time
	movements []entity.StockMovement
	sales     []entity.Sale
}

func newMemTx(s *Store) *memTx {
	return &memTx{
		store:   s,
		held:    make(map[string]chan struct{}),
		stock:   make(map[string]int),
		touched: make(map[string]time.Time),
	}
}

// lock toma el bloqueo de fila del producto; reentrante dentro de la misma tx.
func (tx *memTx) lock(ctx context.Context, productID string) error {
	if _, ok := tx.held[productID]; ok {
		return nil
	}
	ch := tx.store.rowLock(productID)
	select {
	case ch <- struct{}{}:
		tx.held[productID] = ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (tx *memTx) release() {
	for id, ch := range tx.held {
		<-ch
		delete(tx.held, id)
	}
}

// commit publica las escrituras. Revalida unicidad de request_id frente a otras tx ya confirmadas.
func (tx *memTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sale := range tx.sales {
		if _, dup := s.saleByRequest[sale.RequestID]; dup {
			return errDuplicateRequest(sale.RequestID)
		}
	}
	for id, stock := range tx.stock {
		p := s.products[id]
		p.Stock = stock
		p.UpdatedAt = tx.touched[id]
		s.products[id] = p
	}
	for _, m := range tx.movements {
		s.movementIndex[m.ID] = len(s.movements)
		s.movements = append(s.movements, m)
	}
	for _, sale := range tx.sales {
		s.sales[sale.ID] = sale
		s.saleByRequest[sale.RequestID] = sale.ID
	}
	return nil
}
