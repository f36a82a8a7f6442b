package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"storefront-admin/internal/core/config"

	"github.com/gofiber/fiber/v2"
)

// Role identifies the privilege level of an authenticated operator.
type Role string

const (
	// RoleOperator is the regular back-office role.
	RoleOperator Role = "operator"
	// RoleAdmin additionally unlocks destructive actions.
	RoleAdmin Role = "admin"
)

// roleContextKey is the fiber.Ctx locals key holding the authenticated role.
const roleContextKey = "auth_role"

// Resolve matches a raw token against the configured tokens and returns the
// corresponding role. Comparison is constant-time.
func Resolve(cfg config.AuthConfig, token string) (Role, bool) {
	if token == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.AdminToken)) == 1 {
		return RoleAdmin, true
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(cfg.OperatorToken)) == 1 {
		return RoleOperator, true
	}
	return "", false
}

// Middleware authenticates requests using a Bearer token and stores the
// resolved role in the request context.
func Middleware(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing authorization header",
			})
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid authorization header format",
			})
		}

		role, ok := Resolve(cfg, strings.TrimSpace(parts[1]))
		if !ok {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		c.Locals(roleContextKey, role)
		return c.Next()
	}
}

// RequireAdmin rejects requests whose authenticated role is not admin.
// Must run after Middleware.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if RoleFromContext(c) != RoleAdmin {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{
				"error": "admin role required",
			})
		}
		return c.Next()
	}
}

// RoleFromContext returns the authenticated role stored by Middleware, or the
// empty Role when unauthenticated.
func RoleFromContext(c *fiber.Ctx) Role {
	role, _ := c.Locals(roleContextKey).(Role)
	return role
}
