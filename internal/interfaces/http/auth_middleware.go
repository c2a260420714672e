package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/softec-apps/PUI-POS-sub002/internal/application/dto"
	"github.com/softec-apps/PUI-POS-sub002/pkg/jwt"
	"github.com/softec-apps/PUI-POS-sub002/pkg/logger"
)

// LocalUserID key de Locals con el usuario autenticado.
const LocalUserID = "user_id"

const (
	CodeMissingToken = "MISSING_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"
)

// AuthMiddleware exige Authorization: Bearer <jwt>. El usuario del token queda en Locals
// y en el logger del request; es el user_id que se registra en cada movimiento.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, errResp := bearerToken(c.Get(fiber.HeaderAuthorization))
		if errResp != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(errResp)
		}
		userID, err := jwt.Parse(jwtSecret, token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: CodeInvalidToken, Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		if l, ok := c.Locals(localLogger).(*logger.Logger); ok {
			c.Locals(localLogger, l.WithUserID(userID))
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, *dto.ErrorResponse) {
	if header == "" {
		return "", &dto.ErrorResponse{Code: CodeMissingToken, Message: "Authorization header requerido"}
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", &dto.ErrorResponse{Code: CodeInvalidToken, Message: "formato: Bearer <token>"}
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", &dto.ErrorResponse{Code: CodeMissingToken, Message: "token vacío"}
	}
	return token, nil
}

// GetUserID devuelve el UserID autenticado; vacío si la ruta no pasa por AuthMiddleware.
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}
