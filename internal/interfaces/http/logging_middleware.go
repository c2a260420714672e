package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-Id"
	localLogger     = "logger"
)

// RequestLogger asigna un X-Request-Id (o respeta el recibido), deja un sublogger con ese id
// en Locals y en el UserContext, y registra una línea por request al terminar.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		reqLog := log.WithRequestID(requestID)
		c.Locals(localLogger, reqLog)
		c.SetUserContext(reqLog.WithContext(c.UserContext()))

		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler escriba la respuesta para registrar el status real
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		duration := time.Since(start)
		requestLog(c, reqLog).ForStatus(status).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("duration", duration).
			Int("response_size", len(c.Response().Body())).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

// requestLog devuelve el logger del request si RequestLogger está montado.
func requestLog(c *fiber.Ctx, fallback *logger.Logger) *logger.Logger {
	if l, ok := c.Locals(localLogger).(*logger.Logger); ok && l != nil {
		return l
	}
	return fallback
}
