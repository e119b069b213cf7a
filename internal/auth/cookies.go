package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"rocket-admin/internal/metadata"
)

// Cookie builds an HTTP-only, strict same-site cookie scoped to the whole host.
func Cookie(name, value string, ttl time.Duration, secure bool) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// ExpiredCookie deletes a cookie set by Cookie.
func ExpiredCookie(name string, secure bool) *fiber.Cookie {
	c := Cookie(name, "", 0, secure)
	c.Expires = time.Unix(0, 0)
	return c
}

func (m *Manager) SecureCookies() bool { return m.secure }

func (m *Manager) SetSession(c *fiber.Ctx, token string) {
	c.Cookie(Cookie(SessionCookie, token, m.sessionTTL, m.secure))
}

func (m *Manager) ClearSession(c *fiber.Ctx) {
	c.Cookie(ExpiredCookie(SessionCookie, m.secure))
}

// MintCSRF issues a CSRF token for the current request's session, stores it
// in the CSRF cookie and returns it for the form's hidden field. The cookie
// holds one token, so a form rendered earlier in another tab stops verifying.
func (m *Manager) MintCSRF(c *fiber.Ctx) (string, error) {
	token, err := m.IssueCSRF(subjectOf(c))
	if err != nil {
		return "", err
	}
	c.Cookie(Cookie(CSRFCookie, token, m.csrfTTL, m.secure))
	return token, nil
}

// CheckCSRF validates the submitted form token against the CSRF cookie.
func (m *Manager) CheckCSRF(c *fiber.Ctx) error {
	if err := m.VerifyCSRF(c.Cookies(CSRFCookie), c.FormValue(CSRFField), subjectOf(c)); err != nil {
		return metadata.CSRFError(err)
	}
	return nil
}

func subjectOf(c *fiber.Ctx) string {
	if claims := CurrentAdmin(c); claims != nil {
		return claims.Subject
	}
	return ""
}
