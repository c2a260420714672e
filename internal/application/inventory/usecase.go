package inventory

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/internal/metrics"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// RegisterMovementUseCase registra movimientos manuales de cualquier tipo (compras, devoluciones,
// ajustes, mermas) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	userRepo repository.UserRepository
	log      *logger.Logger
	metrics  *metrics.StockMetrics
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	userRepo repository.UserRepository,
	log *logger.Logger,
	m *metrics.StockMetrics,
) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		userRepo: userRepo,
		log:      log,
		metrics:  m,
	}
}

// RegisterMovement inicia una transacción, bloquea la fila del producto, escribe el movimiento,
// actualiza product.stock y hace Commit. Una salida sin stock suficiente devuelve
// InsufficientStockError y no escribe nada.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input AppendMovementInput) (*entity.StockMovement, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := EnsureUser(ctx, uc.userRepo, input.UserID); err != nil {
		return nil, err
	}

	var movement *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		movement, err = AppendMovement(ctx, TxRepos{Movements: movRepo, Products: productRepo}, input)
		return err
	})
	if err != nil {
		var insufficient *domain.InsufficientStockError
		if errors.As(err, &insufficient) {
			uc.metrics.RecordInsufficientStock("single")
			return nil, err
		}
		if domain.IsDomainError(err) {
			return nil, err
		}
		uc.log.Error().Err(err).
			Str("product_id", input.ProductID).
			Str("movement_type", string(input.MovementType)).
			Msg("registrar movimiento")
		return nil, domain.NewPersistenceError("register movement", err)
	}

	uc.metrics.RecordMovement(string(movement.MovementType))
	uc.log.Info().
		Str("product_id", movement.ProductID).
		Str("movement_type", string(movement.MovementType)).
		Int("stock_before", movement.StockBefore).
		Int("stock_after", movement.StockAfter).
		Msg("movimiento registrado")
	return movement, nil
}
