package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lumio-edu/lumio-api/internal/utils"
)

// RequireRole ensures the authenticated user holds one of the allowed roles.
// JWTProtected stores the role as a lowercase string, so anything else in the
// locals slot is treated as no role at all.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		normalized := strings.ToLower(strings.TrimSpace(role))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalsUserRole).(string)
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
