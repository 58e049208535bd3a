package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/taskrally/taskrally-backend/backend/handlers"
	webservices "github.com/taskrally/taskrally-backend/backend/services"
	"github.com/taskrally/taskrally-backend/backend/utils"
)

// AuthRequired middleware ensures the request carries a valid bearer token
// and stores the resolved user in the request context.
func AuthRequired(webApp *handlers.WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return utils.SendUnauthorized(c, "Missing bearer token")
		}

		user, err := webApp.SessionService.ResolveToken(c.Context(), token)
		if err != nil {
			if errors.Is(err, webservices.ErrInvalidToken) {
				return utils.SendUnauthorized(c, "Invalid token")
			}
			slog.Error("Token resolution failed", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Authentication backend unavailable")
		}

		c.Locals("user", user)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
