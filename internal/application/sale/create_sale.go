package sale

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	appinventory "github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/internal/metrics"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

const (
	maxRequestIDLength   = 100
	maxCustomerIDLength  = 36
	maxNotesLength       = 500
	maxDescriptionLength = 255
	defaultNotifyWait  = 30 * time.Second
)

// CreateSaleUseCase orquesta la venta: verificación de stock, descuento, persistencia y Commit
// en una única transacción. Nada de lo escrito es visible si cualquier paso falla.
type CreateSaleUseCase struct {
	txRunner      TxRunner
	saleRepo      repository.SaleRepository
	userRepo      repository.UserRepository
	stock         *appinventory.StockDiscountUseCase
	notifier      InvoiceNotifier
	log           *logger.Logger
	metrics       *metrics.StockMetrics
	notifyTimeout time.Duration
}

// NewCreateSaleUseCase construye el orquestador. notifier y m pueden ser nil.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	stock *appinventory.StockDiscountUseCase,
	notifier InvoiceNotifier,
	log *logger.Logger,
	m *metrics.StockMetrics,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:      txRunner,
		saleRepo:      saleRepo,
		userRepo:      userRepo,
		stock:         stock,
		notifier:      notifier,
		log:           log,
		metrics:       m,
		notifyTimeout: defaultNotifyWait,
	}
}

// WithNotifyTimeout cambia el límite de la notificación post-commit.
func (uc *CreateSaleUseCase) WithNotifyTimeout(d time.Duration) *CreateSaleUseCase {
	if d > 0 {
		uc.notifyTimeout = d
	}
	return uc
}

// CreateSale crea la venta o, si ya existe una con el mismo RequestID, la devuelve con Replayed=true
// sin tocar el inventario.
func (uc *CreateSaleUseCase) CreateSale(ctx context.Context, userID string, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	tr := newTracker(req.RequestID, uc.log, uc.metrics)

	if err := validateSaleRequest(req); err != nil {
		return nil, tr.abort(err)
	}
	if err := appinventory.EnsureUser(ctx, uc.userRepo, userID); err != nil {
		return nil, tr.abort(err)
	}

	if existing, err := uc.saleRepo.GetByRequestID(ctx, req.RequestID); err != nil {
		return nil, tr.abort(uc.persistenceError("find sale by request_id", err))
	} else if existing != nil {
		uc.log.Info().Str("request_id", req.RequestID).Str("sale_id", existing.ID).Msg("venta repetida, se devuelve la existente")
		return ToSaleResponse(existing, true), nil
	}

	stockReqs, lineOf := productLines(req)
	names := make(map[string]string)
	if len(stockReqs) > 0 {
		report, err := uc.stock.CheckMultipleProductsStock(ctx, stockReqs)
		if err != nil {
			return nil, tr.abort(err)
		}
		if !report.AllSufficient {
			uc.metrics.RecordInsufficientStock("precheck")
			return nil, tr.abort(appinventory.ConflictFromReport(report))
		}
		for _, it := range report.Items {
			names[it.ProductID] = it.ProductName
		}
	}
	tr.advance(StateStockValidated)

	saleID := uuid.New().String()
	var sale *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		movements, err := uc.stock.DiscountInTx(ctx,
			appinventory.TxRepos{Movements: movRepo, Products: productRepo},
			userID, stockReqs, entity.MovementSale, saleID)
		if err != nil {
			return err
		}
		tr.advance(StateStockReserved)

		sale, err = buildSale(saleID, userID, req, movements, lineOf, names)
		if err != nil {
			return err
		}
		if err := saleRepo.Create(ctx, sale); err != nil {
			return err
		}
		tr.advance(StatePersisted)
		return nil
	})

	var insufficient *domain.InsufficientStockError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrDuplicate):
		// otra petición con el mismo request_id confirmó primero
		tr.abort(err)
		existing, findErr := uc.saleRepo.GetByRequestID(ctx, req.RequestID)
		if findErr != nil || existing == nil {
			return nil, uc.persistenceError("find concurrent sale", errors.Wrap(err, "request_id duplicado"))
		}
		return ToSaleResponse(existing, true), nil
	case errors.As(err, &insufficient):
		// un reintento concurrente pudo ver el stock ya descontado por la venta original
		if existing, findErr := uc.saleRepo.GetByRequestID(ctx, req.RequestID); findErr == nil && existing != nil {
			tr.abort(err)
			return ToSaleResponse(existing, true), nil
		}
		uc.metrics.RecordInsufficientStock("mutation")
		return nil, tr.abort(&domain.StockConflictError{Items: []domain.InsufficientStockError{*insufficient}})
	default:
		return nil, tr.abort(uc.persistenceError("create sale", err))
	}

	tr.advance(StateCommitted)
	for _, it := range sale.Items {
		if it.HasProduct() {
			uc.metrics.RecordMovement(string(entity.MovementSale))
		}
	}
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("request_id", sale.RequestID).
		Int("items", len(sale.Items)).
		Str("total", sale.Total.String()).
		Msg("venta confirmada")

	uc.notifyAsync(sale)
	return ToSaleResponse(sale, false), nil
}

// GetSale devuelve una venta confirmada.
func (uc *CreateSaleUseCase) GetSale(ctx context.Context, id string) (*dto.SaleResponse, error) {
	s, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, uc.persistenceError("get sale", err)
	}
	return ToSaleResponse(s, false), nil
}

// notifyAsync dispara la notificación en una goroutine con su propio contexto:
// la petición HTTP puede haber terminado y el resultado no afecta a la venta.
func (uc *CreateSaleUseCase) notifyAsync(sale *entity.Sale) {
	if uc.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), uc.notifyTimeout)
		defer cancel()
		if err := uc.notifier.NotifySaleCommitted(ctx, sale); err != nil {
			uc.metrics.RecordNotification("error")
			uc.log.Error().Err(err).Str("sale_id", sale.ID).Msg("notificación de venta fallida")
			return
		}
		uc.metrics.RecordNotification("ok")
	}()
}

func (uc *CreateSaleUseCase) persistenceError(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	uc.log.Error().Err(err).Str("op", op).Msg("venta revertida")
	return domain.NewPersistenceError(op, err)
}

func validateSaleRequest(req dto.CreateSaleRequest) error {
	if req.RequestID == "" {
		return domain.NewValidationError("request_id", "es obligatorio (body o header Idempotency-Key)")
	}
	if utf8.RuneCountInString(req.RequestID) > maxRequestIDLength {
		return domain.NewValidationError("request_id", "máximo 100 caracteres")
	}
	if utf8.RuneCountInString(req.CustomerID) > maxCustomerIDLength {
		return domain.NewValidationError("customer_id", "máximo 36 caracteres")
	}
	if utf8.RuneCountInString(req.Notes) > maxNotesLength {
		return domain.NewValidationError("notes", "máximo 500 caracteres")
	}
	if len(req.Items) == 0 {
		return domain.NewValidationError("items", "debe incluir al menos una línea")
	}
	// con la tasa aún desconocida (la del producto) el total se acota con tasa 0; buildSale
	// vuelve a validar con la tasa real
	lines := make([]inventory.Totals, 0, len(req.Items))
	for i, it := range req.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if it.Quantity <= 0 {
			return domain.NewValidationError(prefix+"quantity", "debe ser mayor que cero")
		}
		if err := inventory.ValidateMoney(prefix+"unit_price", it.UnitPrice); err != nil {
			return err
		}
		if err := appinventory.ValidatePriceOverrides(prefix, nil, it.TaxRate); err != nil {
			return err
		}
		if it.ProductID == "" && it.Description == "" {
			return domain.NewValidationError(prefix+"description", "obligatoria en líneas sin producto")
		}
		if utf8.RuneCountInString(it.Description) > maxDescriptionLength {
			return domain.NewValidationError(prefix+"description", "máximo 255 caracteres")
		}
		taxRate := decimal.Zero
		if it.TaxRate != nil {
			taxRate = *it.TaxRate
		}
		t, err := inventory.ComputeTotals(it.Quantity, it.UnitPrice, taxRate)
		if err != nil {
			return withFieldPrefix(prefix, err)
		}
		lines = append(lines, t)
	}
	return inventory.ValidateMoney("total", inventory.Sum(lines...).Total)
}

func withFieldPrefix(prefix string, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return domain.NewValidationError(prefix+vErr.Field, vErr.Reason)
	}
	return err
}

// productLines extrae las líneas con producto como pedidos de descuento; lineOf[k] es el índice
// de la línea de venta que originó stockReqs[k].
func productLines(req dto.CreateSaleRequest) (stockReqs []dto.StockDiscountRequest, lineOf []int) {
	for i, it := range req.Items {
		if it.ProductID == "" {
			continue
		}
		stockReqs = append(stockReqs, dto.StockDiscountRequest{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Reason:    "venta " + req.RequestID,
			TaxRate:   it.TaxRate,
		})
		lineOf = append(lineOf, i)
	}
	return stockReqs, lineOf
}

func buildSale(
	saleID, userID string,
	req dto.CreateSaleRequest,
	movements []*entity.StockMovement,
	lineOf []int,
	names map[string]string,
) (*entity.Sale, error) {
	movementOf := make(map[int]*entity.StockMovement, len(movements))
	for k, m := range movements {
		movementOf[lineOf[k]] = m
	}

	items := make([]entity.SaleItem, 0, len(req.Items))
	lineTotals := make([]inventory.Totals, 0, len(req.Items))
	for i, it := range req.Items {
		taxRate := decimal.Zero
		if it.TaxRate != nil {
			taxRate = *it.TaxRate
		}
		item := entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      saleID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		if m, ok := movementOf[i]; ok {
			// sin tasa explícita la línea usa la del producto, igual que su movimiento
			taxRate = m.TaxRate
			item.MovementID = m.ID
			if item.Description == "" {
				item.Description = names[it.ProductID]
			}
		}
		totals, err := inventory.ComputeTotals(it.Quantity, it.UnitPrice, taxRate)
		if err != nil {
			return nil, withFieldPrefix(fmt.Sprintf("items[%d].", i), err)
		}
		item.TaxRate = taxRate
		item.Subtotal = totals.Subtotal
		item.TaxAmount = totals.TaxAmount
		item.Total = totals.Total
		items = append(items, item)
		lineTotals = append(lineTotals, totals)
	}

	sum := inventory.Sum(lineTotals...)
	if err := inventory.ValidateMoney("total", sum.Total); err != nil {
		return nil, err
	}
	return &entity.Sale{
		ID:         saleID,
		RequestID:  req.RequestID,
		CustomerID: req.CustomerID,
		UserID:     userID,
		Subtotal:   sum.Subtotal,
		TaxAmount:  sum.TaxAmount,
		Total:      sum.Total,
		Status:     entity.SaleStatusCommitted,
		Notes:      req.Notes,
		CreatedAt:  time.Now().UTC(),
		Items:      items,
	}, nil
}

// ToSaleResponse convierte la venta al DTO de respuesta.
func ToSaleResponse(s *entity.Sale, replayed bool) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
			Subtotal:    it.Subtotal,
			TaxAmount:   it.TaxAmount,
			Total:       it.Total,
			MovementID:  it.MovementID,
		})
	}
	return &dto.SaleResponse{
		ID:         s.ID,
		RequestID:  s.RequestID,
		CustomerID: s.CustomerID,
		UserID:     s.UserID,
		Subtotal:   s.Subtotal,
		TaxAmount:  s.TaxAmount,
		Total:      s.Total,
		Status:     s.Status,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt,
		Items:      items,
		Replayed:   replayed,
	}
}
