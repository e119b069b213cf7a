package auth

import (
	"bytes"
	"context"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"rocket-admin/internal/store"
	"rocket-admin/internal/views"
)

const loginFailed = "Invalid email or password."

// UserFinder looks up admin accounts by email.
type UserFinder interface {
	FindUserByEmail(ctx context.Context, email string) (*store.User, error)
}

// Handler serves the login and logout pages.
type Handler struct {
	manager  *Manager
	users    UserFinder
	views    *views.Renderer
	logger   *slog.Logger
	validate *validator.Validate
}

func NewHandler(m *Manager, users UserFinder, r *views.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		manager:  m,
		users:    users,
		views:    r,
		logger:   logger,
		validate: validator.New(),
	}
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,max=72"`
}

// RegisterRoutes registers the unauthenticated routes on r.
func RegisterRoutes(r fiber.Router, h *Handler) {
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
	r.Post("/logout", h.Logout)
}

// LoginPage handles GET /login.
func (h *Handler) LoginPage(c *fiber.Ctx) error {
	if token := c.Cookies(SessionCookie); token != "" {
		if _, err := h.manager.VerifySession(token); err == nil {
			return c.Redirect(h.views.URL(), fiber.StatusSeeOther)
		}
	}
	return h.renderLogin(c, fiber.StatusOK, "", "")
}

// Login handles POST /login. Every failure renders the same message.
func (h *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderLogin(c, fiber.StatusUnauthorized, "", loginFailed)
	}
	if err := h.manager.CheckCSRF(c); err != nil {
		h.logger.Info("login rejected", "reason", "csrf", "error", err)
		return h.renderLogin(c, fiber.StatusUnauthorized, form.Email, loginFailed)
	}
	if err := h.validate.Struct(form); err != nil {
		return h.renderLogin(c, fiber.StatusUnauthorized, form.Email, loginFailed)
	}

	user, err := h.users.FindUserByEmail(c.UserContext(), form.Email)
	if err != nil {
		// Keep the response time close to the wrong-password path.
		_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(form.Password))
		h.logger.Info("login rejected", "reason", "unknown email")
		return h.renderLogin(c, fiber.StatusUnauthorized, form.Email, loginFailed)
	}
	if !CheckPassword(form.Password, user.PasswordHash) {
		h.logger.Info("login rejected", "reason", "password", "user", user.ID)
		return h.renderLogin(c, fiber.StatusUnauthorized, form.Email, loginFailed)
	}

	token, err := h.manager.IssueSession(user.ID, user.Email)
	if err != nil {
		return err
	}
	h.manager.SetSession(c, token)
	c.Cookie(ExpiredCookie(CSRFCookie, h.manager.secure))
	h.logger.Info("admin signed in", "user", user.ID)
	return c.Redirect(h.views.URL(), fiber.StatusSeeOther)
}

// Logout handles GET and POST /logout.
func (h *Handler) Logout(c *fiber.Ctx) error {
	h.manager.ClearSession(c)
	c.Cookie(ExpiredCookie(CSRFCookie, h.manager.secure))
	return c.Redirect(h.views.URL("login"), fiber.StatusSeeOther)
}

func (h *Handler) renderLogin(c *fiber.Ctx, status int, email, message string) error {
	token, err := h.manager.MintCSRF(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.views.Login(&buf, views.LoginPage{Email: email, Error: message, CSRFToken: token}); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})
