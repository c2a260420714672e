package http

import (
	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/inventory"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// InventoryHandler maneja el ledger y los descuentos de stock (protegido).
type InventoryHandler struct {
	register *inventory.RegisterMovementUseCase
	discount *inventory.StockDiscountUseCase
	ledger   *inventory.LedgerUseCase
	log      *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	register *inventory.RegisterMovementUseCase,
	discount *inventory.StockDiscountUseCase,
	ledger *inventory.LedgerUseCase,
	log *logger.Logger,
) *InventoryHandler {
	return &InventoryHandler{register: register, discount: discount, ledger: ledger, log: log}
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        movement_type  query  string  false  "purchase, sale, adjustment_in, ..."
// @Param        user_id        query  string  false  "Usuario"
// @Param        date_from      query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        date_to        query  string  false  "RFC3339 o YYYY-MM-DD (día completo)"
// @Param        search         query  string  false  "Texto en reason"
// @Param        sort_by        query  string  false  "created_at, quantity, total, movement_type"
// @Param        sort_dir       query  string  false  "asc | desc"
// @Param        limit          query  int     false  "1..100 (20)"
// @Param        offset         query  int     false  ">= 0"
// @Success      200  {object}  dto.MovementPage
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "parámetros de consulta inválidos"})
	}
	page, err := h.ledger.List(c.Context(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(page)
}

// GetMovement godoc
// @Summary      Obtener movimiento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	m, err := h.ledger.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(m)
}

// LookupMovements godoc
// @Summary      Buscar movimientos por id
// @Description  Devuelve los movimientos en el orden pedido (hasta 100 ids) y los ids inexistentes.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementLookupRequest  true  "IDs"
// @Success      200  {object}  dto.MovementLookupResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/lookup [post]
func (h *InventoryHandler) LookupMovements(c *fiber.Ctx) error {
	var in dto.MovementLookupRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.ledger.GetByIDs(c.Context(), in.IDs)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Description  Entradas (purchase, return_in, transfer_in, adjustment_in) y salidas manuales.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, movement_type, quantity, unit_cost y tax_rate opcionales"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.StockConflictResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	resp, err := h.register.RegisterMovementFromRequest(c.Context(), userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// DiscountStock godoc
// @Summary      Descontar stock de un producto
// @Description  Stock insuficiente responde 200 con success=false y el stock sin cambios.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SingleDiscountRequest  true  "product_id, quantity, movement_type (sale por defecto)"
// @Success      200   {object}  dto.StockDiscountResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/discount [post]
func (h *InventoryHandler) DiscountStock(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.SingleDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := inventory.ResolveOutboundType(in.MovementType)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.discount.DiscountStock(c.Context(), userID, in.StockDiscountRequest, t)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// CheckStock godoc
// @Summary      Verificar disponibilidad de un lote
// @Description  No escribe nada. Las líneas del mismo producto acumulan lo requerido.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkDiscountRequest  true  "items"
// @Success      200   {object}  dto.StockCheckReport
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/check [post]
func (h *InventoryHandler) CheckStock(c *fiber.Ctx) error {
	var in dto.BulkDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	report, err := h.discount.CheckMultipleProductsStock(c.Context(), in.Items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(report)
}

// DiscountBulk godoc
// @Summary      Descontar stock de un lote (todo o nada)
// @Description  Si algún producto no alcanza responde 409 con todas las líneas en failed.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkDiscountRequest  true  "items, movement_type (sale por defecto)"
// @Success      200   {object}  dto.BulkDiscountResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.BulkDiscountResult
// @Router       /api/inventory/stock/discount-bulk [post]
func (h *InventoryHandler) DiscountBulk(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.BulkDiscountRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := inventory.ResolveOutboundType(in.MovementType)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.discount.DiscountMultipleProducts(c.Context(), userID, in.Items, t)
	if err != nil {
		if res != nil && errors.Is(err, domain.ErrInsufficientStock) {
			return c.Status(fiber.StatusConflict).JSON(res)
		}
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// VerifyLedger godoc
// @Summary      Verificar el ledger de un producto
// @Description  Reproduce los movimientos en orden y compara con el stock actual.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.LedgerVerification
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/ledger/verify [get]
func (h *InventoryHandler) VerifyLedger(c *fiber.Ctx) error {
	v, err := h.ledger.VerifyProduct(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(v)
}
