package admin

import (
	"encoding/json"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"rocket-admin/internal/auth"
	"rocket-admin/internal/views"
)

const FlashCookie = "rocket_flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// setFlash stores a one-shot message for the next rendered page.
func (h *Handler) setFlash(c *fiber.Ctx, typ, message string) {
	raw, err := json.Marshal(views.Flash{Type: typ, Message: message})
	if err != nil {
		h.logger.Warn("encode flash", "error", err)
		return
	}
	c.Cookie(auth.Cookie(FlashCookie, url.QueryEscape(string(raw)), h.flashTTL, h.auth.SecureCookies()))
}

// popFlash returns the pending flash, if any, and clears it.
func (h *Handler) popFlash(c *fiber.Ctx) *views.Flash {
	raw := c.Cookies(FlashCookie)
	if raw == "" {
		return nil
	}
	c.Cookie(auth.ExpiredCookie(FlashCookie, h.auth.SecureCookies()))

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return nil
	}
	var f views.Flash
	if err := json.Unmarshal([]byte(decoded), &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// redirectWithFlash sets a flash and answers with 303 See Other.
func (h *Handler) redirectWithFlash(c *fiber.Ctx, location, typ, message string) error {
	h.setFlash(c, typ, message)
	return c.Redirect(location, fiber.StatusSeeOther)
}
