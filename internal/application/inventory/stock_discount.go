package inventory

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-faster/errors"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/internal/metrics"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// Mensajes de error por línea en los resultados de descuento.
const (
	errMsgInsufficientStock = "insufficient stock"
	errMsgNotFound          = "not found"
	errMsgBatchAborted      = "aborted: batch rejected"
)

// StockDiscountUseCase descuenta stock de uno o varios productos.
//
// La verificación previa es solo informativa; la garantía real la da el bloqueo de fila
// que toma AppendMovement dentro de la transacción.
type StockDiscountUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	log         *logger.Logger
	metrics     *metrics.StockMetrics
}

// NewStockDiscountUseCase construye el caso de uso. m puede ser nil.
func NewStockDiscountUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
	m *metrics.StockMetrics,
) *StockDiscountUseCase {
	return &StockDiscountUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		userRepo:    userRepo,
		log:         log,
		metrics:     m,
	}
}

// ResolveOutboundType aplica el tipo por defecto (sale) y exige un tipo de salida.
func ResolveOutboundType(raw string) (entity.MovementType, error) {
	if raw == "" {
		return entity.MovementSale, nil
	}
	t, ok := entity.ParseMovementType(raw)
	if !ok {
		return "", domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+raw)
	}
	if !t.IsOutbound() {
		return "", domain.NewValidationError("movement_type", "el descuento requiere un tipo de salida")
	}
	return t, nil
}

// EnsureUser valida que el actor exista (atribución de auditoría).
func EnsureUser(ctx context.Context, users repository.UserRepository, userID string) error {
	if userID == "" {
		return domain.NewValidationError("user_id", "es obligatorio")
	}
	ok, err := users.Exists(ctx, userID)
	if err != nil {
		return domain.NewPersistenceError("check user", err)
	}
	if !ok {
		return &domain.NotFoundError{Entity: "usuario", ID: userID}
	}
	return nil
}

func validateRequests(reqs []dto.StockDiscountRequest) error {
	if len(reqs) == 0 {
		return domain.NewValidationError("items", "debe incluir al menos un producto")
	}
	for i, r := range reqs {
		if r.ProductID == "" {
			return domain.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "es obligatorio")
		}
		if r.Quantity <= 0 {
			return domain.NewValidationError(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if err := ValidatePriceOverrides(fmt.Sprintf("items[%d].", i), r.UnitCost, r.TaxRate); err != nil {
			return err
		}
	}
	return nil
}

// DiscountStock descuenta un producto en su propia transacción.
// Stock insuficiente no es error: devuelve Success=false sin modificar nada.
func (uc *StockDiscountUseCase) DiscountStock(
	ctx context.Context,
	userID string,
	req dto.StockDiscountRequest,
	movementType entity.MovementType,
) (*dto.StockDiscountResult, error) {
	if movementType == "" {
		movementType = entity.MovementSale
	}
	if !movementType.IsOutbound() {
		return nil, domain.NewValidationError("movement_type", "el descuento requiere un tipo de salida")
	}
	if err := validateRequests([]dto.StockDiscountRequest{req}); err != nil {
		return nil, err
	}
	if err := EnsureUser(ctx, uc.userRepo, userID); err != nil {
		return nil, err
	}

	var movement *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		movement, err = AppendMovement(ctx, TxRepos{Movements: movRepo, Products: productRepo}, toAppendInput(req, movementType, userID, ""))
		return err
	})

	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		uc.metrics.RecordInsufficientStock("single")
		uc.log.Warn().
			Str("product_id", req.ProductID).
			Int("stock_before", insufficient.Available).
			Int("requested", req.Quantity).
			Msg("descuento rechazado por stock insuficiente")
		return &dto.StockDiscountResult{
			ProductID:   req.ProductID,
			StockBefore: insufficient.Available,
			StockAfter:  insufficient.Available,
			Success:     false,
			Error:       errMsgInsufficientStock,
		}, nil
	case err != nil:
		return nil, uc.wrapTxError("discount stock", err)
	}

	uc.metrics.RecordMovement(string(movement.MovementType))
	uc.log.Info().
		Str("product_id", movement.ProductID).
		Str("movement_id", movement.ID).
		Int("stock_before", movement.StockBefore).
		Int("stock_after", movement.StockAfter).
		Msg("stock descontado")
	return successResult(movement), nil
}

// CheckMultipleProductsStock verifica disponibilidad sin escribir nada.
// Las cantidades del mismo producto en varias líneas se acumulan antes de comparar.
func (uc *StockDiscountUseCase) CheckMultipleProductsStock(ctx context.Context, reqs []dto.StockDiscountRequest) (*dto.StockCheckReport, error) {
	if err := validateRequests(reqs); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}
	products, err := uc.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, domain.NewPersistenceError("load products", err)
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		if !p.Deleted() {
			byID[p.ID] = p
		}
	}

	report := &dto.StockCheckReport{Items: make([]dto.StockCheckItem, 0, len(reqs)), AllSufficient: true}
	requested := make(map[string]int, len(reqs))
	for _, r := range reqs {
		requested[r.ProductID] += r.Quantity
		item := dto.StockCheckItem{ProductID: r.ProductID, Requested: requested[r.ProductID]}
		p, ok := byID[r.ProductID]
		if !ok {
			item.Error = errMsgNotFound
		} else {
			item.ProductName = p.Name
			item.Available = p.Stock
			item.Sufficient = p.Stock >= item.Requested
			if !item.Sufficient {
				item.Error = errMsgInsufficientStock
			}
		}
		if !item.Sufficient {
			report.AllSufficient = false
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// ConflictFromReport construye el error del lote a partir del pre-check fallido:
// NotFoundError si falta algún producto, StockConflictError con todos los faltantes si no.
func ConflictFromReport(report *dto.StockCheckReport) error {
	var short []domain.InsufficientStockError
	seen := make(map[string]int)
	for _, it := range report.Items {
		if it.Error == errMsgNotFound {
			return &domain.NotFoundError{Entity: "producto", ID: it.ProductID}
		}
		if it.Sufficient {
			continue
		}
		e := domain.InsufficientStockError{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Available:   it.Available,
			Requested:   it.Requested,
		}
		// una entrada por producto con el requerido acumulado final
		if idx, ok := seen[it.ProductID]; ok {
			short[idx] = e
			continue
		}
		seen[it.ProductID] = len(short)
		short = append(short, e)
	}
	if len(short) == 0 {
		return nil
	}
	return &domain.StockConflictError{Items: short}
}

// DiscountMultipleProducts descuenta un lote completo o nada.
//
// Fase 1: pre-check; cualquier faltante rechaza el lote sin escrituras.
// Fase 2: todas las líneas en una sola transacción, bloqueando en orden ascendente de producto.
// Si una línea falla en la fase 2 (carrera con otro escritor) se revierte el lote entero.
// En ambos rechazos se devuelve el resultado con todas las líneas en Failed junto al error.
func (uc *StockDiscountUseCase) DiscountMultipleProducts(
	ctx context.Context,
	userID string,
	reqs []dto.StockDiscountRequest,
	movementType entity.MovementType,
) (*dto.BulkDiscountResult, error) {
	if movementType == "" {
		movementType = entity.MovementSale
	}
	if !movementType.IsOutbound() {
		return nil, domain.NewValidationError("movement_type", "el descuento requiere un tipo de salida")
	}
	if err := validateRequests(reqs); err != nil {
		return nil, err
	}
	if err := EnsureUser(ctx, uc.userRepo, userID); err != nil {
		return nil, err
	}

	report, err := uc.CheckMultipleProductsStock(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if !report.AllSufficient {
		uc.metrics.RecordInsufficientStock("precheck")
		uc.metrics.RecordBulkBatch("rejected")
		uc.log.Warn().Int("items", len(reqs)).Msg("lote rechazado en verificación previa")
		return rejectedFromReport(report), ConflictFromReport(report)
	}

	var movements []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(ctx context.Context, movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		var err error
		movements, err = uc.DiscountInTx(ctx, TxRepos{Movements: movRepo, Products: productRepo}, userID, reqs, movementType, "")
		return err
	})

	var insufficient *domain.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		uc.metrics.RecordInsufficientStock("mutation")
		uc.metrics.RecordBulkBatch("aborted")
		uc.log.Warn().
			Str("product_id", insufficient.ProductID).
			Int("stock_before", insufficient.Available).
			Int("requested", insufficient.Requested).
			Msg("lote revertido: stock cambió entre verificación y descuento")
		return abortedResult(reqs, insufficient), &domain.StockConflictError{Items: []domain.InsufficientStockError{*insufficient}}
	case err != nil:
		uc.metrics.RecordBulkBatch("error")
		return nil, uc.wrapTxError("discount bulk", err)
	}

	uc.metrics.RecordBulkBatch("committed")
	res := &dto.BulkDiscountResult{Successful: make([]dto.StockDiscountResult, 0, len(movements)), Failed: []dto.StockDiscountResult{}}
	for _, m := range movements {
		uc.metrics.RecordMovement(string(m.MovementType))
		res.Successful = append(res.Successful, *successResult(m))
	}
	res.TotalProcessed = len(reqs)
	res.TotalSuccessful = len(res.Successful)
	uc.log.Info().Int("items", len(reqs)).Msg("lote descontado")
	return res, nil
}

// DiscountInTx aplica el descuento de todas las líneas con los repos de una tx ya abierta.
// Bloquea en orden ascendente de product_id para que dos lotes concurrentes no se interbloqueen.
// Devuelve los movimientos en el mismo orden que reqs. Al primer fallo corta y devuelve el error;
// el caller es responsable del Rollback.
func (uc *StockDiscountUseCase) DiscountInTx(
	ctx context.Context,
	repos TxRepos,
	userID string,
	reqs []dto.StockDiscountRequest,
	movementType entity.MovementType,
	referenceID string,
) ([]*entity.StockMovement, error) {
	order := make([]int, len(reqs))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return strings.Compare(reqs[a].ProductID, reqs[b].ProductID)
	})

	movements := make([]*entity.StockMovement, len(reqs))
	for _, i := range order {
		m, err := AppendMovement(ctx, repos, toAppendInput(reqs[i], movementType, userID, referenceID))
		if err != nil {
			return nil, err
		}
		movements[i] = m
	}
	return movements, nil
}

// wrapTxError deja pasar errores de dominio y registra la causa técnica antes de ocultarla.
func (uc *StockDiscountUseCase) wrapTxError(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	uc.log.Error().Err(err).Str("op", op).Msg("transacción de inventario revertida")
	return domain.NewPersistenceError(op, err)
}

func toAppendInput(r dto.StockDiscountRequest, t entity.MovementType, userID, referenceID string) AppendMovementInput {
	return AppendMovementInput{
		ProductID:    r.ProductID,
		MovementType: t,
		Quantity:     r.Quantity,
		UnitCost:     r.UnitCost,
		TaxRate:      r.TaxRate,
		Reason:       r.Reason,
		UserID:       userID,
		ReferenceID:  referenceID,
	}
}

func successResult(m *entity.StockMovement) *dto.StockDiscountResult {
	return &dto.StockDiscountResult{
		ProductID:          m.ProductID,
		MovementID:         m.ID,
		StockBefore:        m.StockBefore,
		StockAfter:         m.StockAfter,
		QuantityDiscounted: m.Quantity,
		Success:            true,
	}
}

func rejectedFromReport(report *dto.StockCheckReport) *dto.BulkDiscountResult {
	res := &dto.BulkDiscountResult{Successful: []dto.StockDiscountResult{}}
	for _, it := range report.Items {
		msg := it.Error
		if msg == "" {
			msg = errMsgBatchAborted
		}
		res.Failed = append(res.Failed, dto.StockDiscountResult{
			ProductID:   it.ProductID,
			StockBefore: it.Available,
			StockAfter:  it.Available,
			Error:       msg,
		})
	}
	res.TotalProcessed = len(report.Items)
	res.TotalFailed = len(res.Failed)
	return res
}

func abortedResult(reqs []dto.StockDiscountRequest, cause *domain.InsufficientStockError) *dto.BulkDiscountResult {
	res := &dto.BulkDiscountResult{Successful: []dto.StockDiscountResult{}}
	for _, r := range reqs {
		item := dto.StockDiscountResult{ProductID: r.ProductID, Error: errMsgBatchAborted}
		if r.ProductID == cause.ProductID {
			item.StockBefore = cause.Available
			item.StockAfter = cause.Available
			item.Error = errMsgInsufficientStock
		}
		res.Failed = append(res.Failed, item)
	}
	res.TotalProcessed = len(reqs)
	res.TotalFailed = len(res.Failed)
	return res
}
