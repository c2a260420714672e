package memory

import (
	"context"
	"time"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ sale.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción en memoria.
type TxRunner struct {
	store   *Store
	timeout time.Duration
}

// NewTxRunner construye el runner. timeout <= 0 = sin límite propio (solo el del ctx).
func NewTxRunner(store *Store, timeout time.Duration) *TxRunner {
	return &TxRunner{store: store, timeout: timeout}
}

// Run ejecuta fn con repos de inventario atados a la tx y confirma si fn no falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return r.inTx(ctx, func(ctx context.Context, tx *memTx) error {
		return fn(ctx, &StockMovementRepo{store: r.store, tx: tx}, &ProductRepo{store: r.store, tx: tx})
	})
}

// RunSale igual que Run, sumando el repositorio de ventas.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return r.inTx(ctx, func(ctx context.Context, tx *memTx) error {
		return fn(ctx,
			&StockMovementRepo{store: r.store, tx: tx},
			&ProductRepo{store: r.store, tx: tx},
			&SaleRepo{store: r.store, tx: tx},
		)
	})
}

func (r *TxRunner) inTx(ctx context.Context, fn func(ctx context.Context, tx *memTx) error) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	tx := newMemTx(r.store)
	defer tx.release()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	// tx vencida = rollback, igual que en PostgreSQL
	if err := ctx.Err(); err != nil {
		return err
	}
	return tx.commit()
}
