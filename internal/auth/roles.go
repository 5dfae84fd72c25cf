package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/shopmena/helpdesk/internal/domain"
)

// RequireUser ensures a customer account is authenticated.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role != domain.RoleUser {
			return fiber.NewError(http.StatusForbidden, "customer account required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures an admin account is authenticated.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Role != domain.RoleAdmin {
			return fiber.NewError(http.StatusForbidden, "admin account required")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures the caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
