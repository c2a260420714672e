package inventory

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/entity"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain/repository"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// MaxReasonLength longitud máxima del motivo de un movimiento.
const MaxReasonLength = 255

// AppendMovementInput datos de un movimiento a escribir en el ledger.
type AppendMovementInput struct {
	ProductID    string
	MovementType entity.MovementType
	Quantity     int
	UnitCost     *decimal.Decimal // nil = product.Cost
	TaxRate      *decimal.Decimal // nil = product.TaxRate
	Reason       string
	UserID       string
	ReferenceID  string
}

func (in AppendMovementInput) validate() error {
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "es obligatorio")
	}
	if !in.MovementType.Valid() {
		return domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+string(in.MovementType))
	}
	if in.Quantity <= 0 {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if in.UserID == "" {
		return domain.NewValidationError("user_id", "es obligatorio")
	}
	if utf8.RuneCountInString(in.Reason) > MaxReasonLength {
		return domain.NewValidationError("reason", "máximo 255 caracteres")
	}
	return ValidatePriceOverrides("", in.UnitCost, in.TaxRate)
}

// ValidatePriceOverrides valida costo y tasa explícitos (nil = valor del producto) con la
// precisión de las columnas; prefix antecede al nombre del campo en el error ("items[2].").
func ValidatePriceOverrides(prefix string, unitCost, taxRate *decimal.Decimal) error {
	var err error
	if unitCost != nil {
		err = inventory.ValidateMoney("unit_cost", *unitCost)
	}
	if err == nil && taxRate != nil {
		err = inventory.ValidateTaxRate(*taxRate)
	}
	var vErr *domain.ValidationError
	if prefix != "" && errors.As(err, &vErr) {
		return domain.NewValidationError(prefix+vErr.Field, vErr.Reason)
	}
	return err
}

// AppendMovement escribe un movimiento y actualiza product.stock dentro de la tx del caller.
//
// Bloquea la fila del producto (GetForUpdate), toma su stock como StockBefore, aplica el sentido
// del tipo y rechaza con InsufficientStockError si el resultado queda negativo. Nunca hace Commit.
func AppendMovement(ctx context.Context, repos TxRepos, in AppendMovementInput) (*entity.StockMovement, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	product, err := repos.Products.GetForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Deleted() {
		return nil, &domain.NotFoundError{Entity: "producto", ID: in.ProductID}
	}

	stockBefore := product.Stock
	stockAfter := in.MovementType.Apply(stockBefore, in.Quantity)
	if stockAfter < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Available:   stockBefore,
			Requested:   in.Quantity,
		}
	}

	unitCost := product.Cost
	if in.UnitCost != nil {
		unitCost = *in.UnitCost
	}
	taxRate := product.TaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	totals, err := inventory.ComputeTotals(in.Quantity, unitCost, taxRate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	movement := &entity.StockMovement{
		ID:           uuid.New().String(),
		ProductID:    product.ID,
		MovementType: in.MovementType,
		Quantity:     in.Quantity,
		UnitCost:     unitCost,
		Subtotal:     totals.Subtotal,
		TaxRate:      taxRate,
		TaxAmount:    totals.TaxAmount,
		Total:        totals.Total,
		StockBefore:  stockBefore,
		StockAfter:   stockAfter,
		Reason:       in.Reason,
		UserID:       in.UserID,
		ReferenceID:  in.ReferenceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repos.Movements.Create(ctx, movement); err != nil {
		return nil, errors.Wrap(err, "append movement")
	}
	if err := repos.Products.UpdateStock(ctx, product.ID, stockAfter); err != nil {
		return nil, errors.Wrap(err, "update product stock")
	}
	return movement, nil
}

// Límites del listado del ledger.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// LedgerUseCase consultas de solo lectura sobre el ledger (usa el pool, READ COMMITTED).
type LedgerUseCase struct {
	movRepo     repository.StockMovementRepository
	productRepo repository.ProductRepository
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso de consultas.
func NewLedgerUseCase(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository, log *logger.Logger) *LedgerUseCase {
	return &LedgerUseCase{movRepo: movRepo, productRepo: productRepo, log: log}
}

// List devuelve una página del ledger según los filtros del query string.
func (uc *LedgerUseCase) List(ctx context.Context, q dto.MovementListQuery) (*dto.MovementPage, error) {
	filter, err := BuildMovementFilter(q)
	if err != nil {
		return nil, err
	}
	items, total, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		uc.log.Error().Err(err).Msg("listar movimientos")
		return nil, domain.NewPersistenceError("list movements", err)
	}
	out := make([]dto.MovementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ToMovementResponse(m))
	}
	return &dto.MovementPage{
		Items: out,
		Page:  dto.NewPageResponse(filter.Limit, filter.Offset, total),
	}, nil
}

// GetByID devuelve un movimiento (también de productos dados de baja).
func (uc *LedgerUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	m, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get movement", err)
	}
	resp := ToMovementResponse(m)
	return &resp, nil
}

// MaxLookupIDs cantidad máxima de ids por consulta en GetByIDs.
const MaxLookupIDs = 100

// GetByIDs devuelve los movimientos en el orden de ids (sin repetir) y los ids que no existen.
// Incluye movimientos de productos dados de baja.
func (uc *LedgerUseCase) GetByIDs(ctx context.Context, ids []string) (*dto.MovementLookupResponse, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "debe incluir al menos un id")
	}
	if len(ids) > MaxLookupIDs {
		return nil, domain.NewValidationError("ids", "máximo 100 ids")
	}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return nil, domain.NewValidationError("ids", "no puede contener ids vacíos")
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	list, err := uc.movRepo.GetByIDs(ctx, unique)
	if err != nil {
		uc.log.Error().Err(err).Int("ids", len(unique)).Msg("buscar movimientos")
		return nil, domain.NewPersistenceError("get movements", err)
	}
	byID := make(map[string]*entity.StockMovement, len(list))
	for _, m := range list {
		byID[m.ID] = m
	}
	out := &dto.MovementLookupResponse{
		Items:   make([]dto.MovementResponse, 0, len(list)),
		Missing: []string{},
	}
	for _, id := range unique {
		if m, ok := byID[id]; ok {
			out.Items = append(out.Items, ToMovementResponse(m))
		} else {
			out.Missing = append(out.Missing, id)
		}
	}
	return out, nil
}

// VerifyProduct reproduce el ledger del producto desde stock 0 y lo compara con product.stock.
func (uc *LedgerUseCase) VerifyProduct(ctx context.Context, productID string) (*dto.LedgerVerification, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, domain.NewPersistenceError("get product", err)
	}
	movements, err := uc.movRepo.ListByProductAsc(ctx, productID)
	if err != nil {
		return nil, domain.NewPersistenceError("list product ledger", err)
	}

	res := ReplayLedger(movements)
	res.ProductID = product.ID
	res.ProductStock = product.Stock
	if res.LedgerStock != product.Stock {
		res.Issues = append(res.Issues, "product.stock "+itoa(product.Stock)+" distinto del stock del ledger "+itoa(res.LedgerStock))
	}
	res.Consistent = len(res.Issues) == 0
	if !res.Consistent {
		uc.log.Warn().Str("product_id", productID).Strs("issues", res.Issues).Msg("ledger inconsistente")
	}
	return res, nil
}

// ReplayLedger recorre movimientos ordenados (más antiguo primero) verificando la cadena
// StockBefore/StockAfter y los montos derivados de cada entrada.
func ReplayLedger(movements []*entity.StockMovement) *dto.LedgerVerification {
	res := &dto.LedgerVerification{Movements: len(movements)}
	stock := 0
	for _, m := range movements {
		if m.StockBefore != stock {
			res.Issues = append(res.Issues, "movimiento "+m.ID+": stock_before "+itoa(m.StockBefore)+", esperado "+itoa(stock))
		}
		if want := m.MovementType.Apply(m.StockBefore, m.Quantity); m.StockAfter != want || m.StockAfter < 0 {
			res.Issues = append(res.Issues, "movimiento "+m.ID+": stock_after "+itoa(m.StockAfter)+", esperado "+itoa(want))
		}
		totals, err := inventory.ComputeTotals(m.Quantity, m.UnitCost, m.TaxRate)
		switch {
		case err != nil:
			res.Issues = append(res.Issues, "movimiento "+m.ID+": "+err.Error())
		case !totals.Subtotal.Equal(m.Subtotal) || !totals.TaxAmount.Equal(m.TaxAmount) || !totals.Total.Equal(m.Total):
			res.Issues = append(res.Issues, "movimiento "+m.ID+": totales no coinciden")
		}
		stock = m.StockAfter
	}
	res.LedgerStock = stock
	res.Consistent = len(res.Issues) == 0
	return res
}

// BuildMovementFilter valida y normaliza el query string del listado.
func BuildMovementFilter(q dto.MovementListQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{
		ProductID: q.ProductID,
		UserID:    q.UserID,
		Search:    q.Search,
		SortBy:    repository.SortByCreatedAt,
		SortDesc:  true,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}
	if q.MovementType != "" {
		t, ok := entity.ParseMovementType(q.MovementType)
		if !ok {
			return f, domain.NewValidationError("movement_type", "tipo de movimiento desconocido: "+q.MovementType)
		}
		f.MovementType = t
	}
	if q.DateFrom != "" {
		t, err := parseDate(q.DateFrom, false)
		if err != nil {
			return f, domain.NewValidationError("date_from", "formato esperado RFC3339 o YYYY-MM-DD")
		}
		f.DateFrom = &t
	}
	if q.DateTo != "" {
		t, err := parseDate(q.DateTo, true)
		if err != nil {
			return f, domain.NewValidationError("date_to", "formato esperado RFC3339 o YYYY-MM-DD")
		}
		f.DateTo = &t
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, domain.NewValidationError("date_to", "no puede ser anterior a date_from")
	}
	switch q.SortBy {
	case "":
	case repository.SortByCreatedAt, repository.SortByQuantity, repository.SortByTotal, repository.SortByMovementType:
		f.SortBy = q.SortBy
	default:
		return f, domain.NewValidationError("sort_by", "columna no permitida: "+q.SortBy)
	}
	switch q.SortDir {
	case "", "desc":
	case "asc":
		f.SortDesc = false
	default:
		return f, domain.NewValidationError("sort_dir", "debe ser asc o desc")
	}
	if f.Limit == 0 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit < 1 || f.Limit > MaxPageLimit {
		return f, domain.NewValidationError("limit", "debe estar entre 1 y 100")
	}
	if f.Offset < 0 {
		return f, domain.NewValidationError("offset", "no puede ser negativo")
	}
	return f, nil
}

// parseDate acepta RFC3339 o fecha sola; con endOfDay la fecha sola cubre el día completo.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
