package http

import (
	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/internal/domain"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// Códigos de error expuestos en dto.ErrorResponse.Code.
const (
	CodeValidation        = "VALIDATION"
	CodeInvalidBody       = "INVALID_BODY"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeInternal          = "INTERNAL"
)

// StatusFor traduce un error de dominio a código HTTP.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// writeError responde con el cuerpo que corresponde al error. Los fallos de persistencia
// y los no clasificados se registran y al cliente solo llega un mensaje genérico.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var (
		conflict   *domain.StockConflictError
		short      *domain.InsufficientStockError
		validation *domain.ValidationError
	)
	switch {
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(conflictResponse(conflict.Items))
	case errors.As(err, &short):
		return c.Status(fiber.StatusConflict).JSON(conflictResponse([]domain.InsufficientStockError{*short}))
	case errors.As(err, &validation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeValidation, Message: validation.Error()})
	}

	status := StatusFor(err)
	switch status {
	case fiber.StatusNotFound:
		return c.Status(status).JSON(dto.ErrorResponse{Code: CodeNotFound, Message: err.Error()})
	case fiber.StatusBadRequest:
		return c.Status(status).JSON(dto.ErrorResponse{Code: CodeValidation, Message: err.Error()})
	case fiber.StatusConflict:
		return c.Status(status).JSON(dto.ErrorResponse{Code: CodeConflict, Message: err.Error()})
	case fiber.StatusUnauthorized:
		return c.Status(status).JSON(dto.ErrorResponse{Code: CodeUnauthorized, Message: "no autorizado"})
	}

	requestLog(c, log).Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: CodeInternal, Message: "error interno, intente nuevamente"})
}

func conflictResponse(items []domain.InsufficientStockError) dto.StockConflictResponse {
	out := dto.StockConflictResponse{
		Code:     CodeInsufficientStock,
		Message:  "insufficient stock",
		Products: make([]dto.InsufficientStockItem, 0, len(items)),
	}
	for _, it := range items {
		out.Products = append(out.Products, dto.InsufficientStockItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Available:   it.Available,
			Requested:   it.Requested,
		})
	}
	return out
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: CodeInvalidBody, Message: "cuerpo inválido"})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeUnauthorized, Message: "token inválido"})
}
