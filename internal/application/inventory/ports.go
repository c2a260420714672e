package inventory

import (
	"context"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o vence el timeout de la tx) se hace Rollback; si no, Commit.
// fn recibe el ctx de la tx (con su deadline) y debe usarlo en cada llamada a los repos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// TxRepos repositorios atados a una transacción abierta por el caller.
type TxRepos struct {
	Movements repository.StockMovementRepository
	Products  repository.ProductRepository
}
