package middleware

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/handler"
	"github.com/Isaac-1-lang/Ecommerce/internal/response"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Principal, error)
}

type AuthMiddleware struct {
	auth   Authenticator
	logger *slog.Logger
}

type AuthMiddlewareConfig struct {
	Authenticator Authenticator
	Logger        *slog.Logger
}

func NewAuthMiddleware(cfg AuthMiddlewareConfig) *AuthMiddleware {
	return &AuthMiddleware{
		auth:   cfg.Authenticator,
		logger: cfg.Logger,
	}
}

// Require rejects requests without a bearer token bound to a live session.
func (m *AuthMiddleware) Require() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := handler.BearerToken(c)
		if token == "" {
			return response.Unauthorized(c, handler.MsgNoToken)
		}

		principal, err := m.auth.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidSession) || errors.Is(err, domain.ErrUnauthorized) {
				m.logger.Debug("rejected bearer token", "error", err, "path", c.Path())
				return response.Error(c, fiber.StatusUnauthorized, response.ErrCodeInvalidSession, handler.MsgInvalidSession)
			}
			return handler.HandleDomainError(c, m.logger, err)
		}

		handler.SetPrincipalInContext(c, principal)

		return c.Next()
	}
}

// RequireRole must run after Require.
func RequireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := handler.GetUserFromContext(c)
		if user == nil {
			return response.Unauthorized(c, handler.MsgNotAuthenticated)
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return response.Forbidden(c, handler.MsgAdminRequired)
	}
}
