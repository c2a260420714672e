package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

// Ensure TxRunner implements inventory.TxRunner and sale.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sale.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewTxRunner construye el runner con el pool. timeout (DB_TX_TIMEOUT) limita cada transacción;
// al vencer, las consultas en curso se cancelan y se hace Rollback.
func NewTxRunner(pool *pgxpool.Pool, timeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, timeout: timeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewStockMovementRepository(tx), NewProductRepository(tx))
	})
}

// RunSale inicia una transacción con repos de inventario y ventas (para CreateSale).
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, NewStockMovementRepository(tx), NewProductRepository(tx), NewSaleRepository(tx))
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
