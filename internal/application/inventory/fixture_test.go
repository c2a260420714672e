package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/internal/infrastructure/memory"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

const cashierID = "user-cashier"

type fixture struct {
	store    *memory.Store
	runner   *memory.TxRunner
	discount *inventory.StockDiscountUseCase
	register *inventory.RegisterMovementUseCase
	ledger   *inventory.LedgerUseCase
}

func newFixture(t *testing.T, products ...entity.Product) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedUser(entity.User{ID: cashierID, Name: "Caja 1", Active: true})
	for _, p := range products {
		store.SeedProduct(p)
	}
	return newFixtureWithRunner(store, memory.NewTxRunner(store, 5*time.Second))
}

func newFixtureWithRunner(store *memory.Store, runner inventory.TxRunner) *fixture {
	log := logger.NewNop()
	products := memory.NewProductRepository(store)
	users := memory.NewUserRepository(store)
	movements := memory.NewStockMovementRepository(store)
	f := &fixture{
		store:    store,
		discount: inventory.NewStockDiscountUseCase(runner, products, users, log, nil),
		register: inventory.NewRegisterMovementUseCase(runner, users, log, nil),
		ledger:   inventory.NewLedgerUseCase(movements, products, log),
	}
	if r, ok := runner.(*memory.TxRunner); ok {
		f.runner = r
	}
	return f
}

func product(id string, stock int) entity.Product {
	return entity.Product{
		ID:      id,
		SKU:     "SKU-" + id,
		Name:    "Producto " + id,
		Stock:   stock,
		Cost:    decimal.RequireFromString("2"),
		TaxRate: decimal.RequireFromString("15"),
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func stockOf(t *testing.T, f *fixture, id string) int {
	t.Helper()
	p, ok := f.store.Product(id)
	if !ok {
		t.Fatalf("producto %s no existe", id)
	}
	return p.Stock
}

// hookRunner ejecuta before() justo antes de abrir la transacción del lote,
// después de la verificación previa.
type hookRunner struct {
	inner  *memory.TxRunner
	before func()
}

func (h *hookRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	if h.before != nil {
		before := h.before
		h.before = nil
		before()
	}
	return h.inner.Run(ctx, fn)
}
