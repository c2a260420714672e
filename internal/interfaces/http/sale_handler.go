package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/application/sale"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// HeaderIdempotencyKey header alternativo a request_id en el body.
const HeaderIdempotencyKey = "Idempotency-Key"

// SaleHandler maneja las ventas POS (protegido).
type SaleHandler struct {
	uc  *sale.CreateSaleUseCase
	log *logger.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sale.CreateSaleUseCase, log *logger.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock, persiste la venta y confirma en una sola transacción.
// @Description  Un reintento con el mismo request_id devuelve la venta original (200, replayed=true).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "request_id si no viene en el body"
// @Param        body             body    dto.CreateSaleRequest  true   "request_id, items"
// @Success      201  {object}  dto.SaleResponse
// @Success      200  {object}  dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.StockConflictResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if key := strings.TrimSpace(c.Get(HeaderIdempotencyKey)); key != "" {
		if in.RequestID != "" && in.RequestID != key {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: "Idempotency-Key y request_id no coinciden"})
		}
		in.RequestID = key
	}

	resp, err := h.uc.CreateSale(c.Context(), userID, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if resp.Replayed {
		return c.JSON(resp)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	resp, err := h.uc.GetSale(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(resp)
}
