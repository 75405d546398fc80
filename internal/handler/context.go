package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
	"github.com/Isaac-1-lang/Ecommerce/internal/service"
)

const (
	principalContextKey = "principal"
	userContextKey      = "user"
	bearerPrefix        = "bearer "
)

func SetPrincipalInContext(c *fiber.Ctx, principal *service.Principal) {
	c.Locals(principalContextKey, principal)
	c.Locals(userContextKey, principal.User)
}

func GetPrincipalFromContext(c *fiber.Ctx) *service.Principal {
	principal, _ := c.Locals(principalContextKey).(*service.Principal)
	return principal
}

func GetUserFromContext(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userContextKey).(*domain.User)
	return user
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(c *fiber.Ctx) string {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}

func clientInfo(c *fiber.Ctx) service.ClientInfo {
	return service.ClientInfo{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}
