package auth

import (
	"github.com/gofiber/fiber/v2"
)

const localsAdmin = "admin"

// RequireSession returns a Fiber middleware that validates the session cookie
// and stores its claims on the request. Requests without a valid session are
// sent to loginURL with any stale cookie cleared.
func (m *Manager) RequireSession(loginURL string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookie)
		if token == "" {
			return c.Redirect(loginURL, fiber.StatusSeeOther)
		}

		claims, err := m.VerifySession(token)
		if err != nil {
			m.ClearSession(c)
			return c.Redirect(loginURL, fiber.StatusSeeOther)
		}

		c.Locals(localsAdmin, claims)
		return c.Next()
	}
}

// CurrentAdmin extracts the session claims from a Fiber context.
func CurrentAdmin(c *fiber.Ctx) *Claims {
	claims, _ := c.Locals(localsAdmin).(*Claims)
	return claims
}
