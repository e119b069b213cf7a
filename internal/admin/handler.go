package admin

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"rocket-admin/internal/auth"
	"rocket-admin/internal/metadata"
	"rocket-admin/internal/views"
)

// Deps are the collaborators of the admin panel handlers.
type Deps struct {
	Registry *metadata.Registry
	DB       metadata.Database
	Auth     *auth.Manager
	Views    *views.Renderer
	Logger   *slog.Logger
	PerPage  int           // fallback when a resource sets none
	FlashTTL time.Duration
}

type Handler struct {
	registry *metadata.Registry
	db       metadata.Database
	auth     *auth.Manager
	views    *views.Renderer
	logger   *slog.Logger
	perPage  int
	flashTTL time.Duration
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.FlashTTL <= 0 {
		d.FlashTTL = time.Minute
	}
	return &Handler{
		registry: d.Registry,
		db:       d.DB,
		auth:     d.Auth,
		views:    d.Views,
		logger:   d.Logger,
		perPage:  d.PerPage,
		flashTTL: d.FlashTTL,
	}
}

// RegisterRoutes registers the dashboard and the per-resource routes on r.
// Every route runs the given middleware first.
func RegisterRoutes(r fiber.Router, h *Handler, mw ...fiber.Handler) {
	route := func(method, path string, handler fiber.Handler) {
		handlers := append(append([]fiber.Handler{}, mw...), handler)
		r.Add(method, path, handlers...)
	}

	route(fiber.MethodGet, "/", h.Dashboard)

	route(fiber.MethodGet, "/:resource", h.Index)
	route(fiber.MethodGet, "/:resource/new", h.New)
	route(fiber.MethodPost, "/:resource", h.Create)
	route(fiber.MethodPost, "/:resource/actions/:slug", h.CollectionAction)

	route(fiber.MethodGet, "/:resource/:id", h.Show)
	route(fiber.MethodGet, "/:resource/:id/edit", h.Edit)
	route(fiber.MethodPost, "/:resource/:id", h.Override)
	route(fiber.MethodPut, "/:resource/:id", h.Update)
	route(fiber.MethodPatch, "/:resource/:id", h.Update)
	route(fiber.MethodDelete, "/:resource/:id", h.Destroy)
	route(fiber.MethodPost, "/:resource/:id/actions/:slug", h.MemberAction)
}

// Mount registers the login routes and the protected admin routes under the
// renderer's base path.
func Mount(app *fiber.App, h *Handler, authHandler *auth.Handler) {
	group := app.Group(h.views.BasePath())
	auth.RegisterRoutes(group, authHandler)
	RegisterRoutes(group, h, h.auth.RequireSession(h.views.URL("login")))
}

// Dashboard handles GET /
func (h *Handler) Dashboard(c *fiber.Ctx) error {
	resources := h.registry.All()
	items := make([]views.DashboardItem, len(resources))

	g, ctx := errgroup.WithContext(c.UserContext())
	g.SetLimit(4)
	for i, res := range resources {
		g.Go(func() error {
			n, err := h.db.Count(ctx, res.TableName, nil)
			if err != nil {
				return fmt.Errorf("count %s: %w", res.TableName, err)
			}
			items[i] = views.DashboardItem{Label: res.PluralName, URL: h.views.URL(res.RoutePath), Count: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return h.html(c, fiber.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.Dashboard(buf, views.DashboardPage{Base: h.base(c, nil), Items: items})
	})
}

// resource resolves the :resource path parameter.
func (h *Handler) resource(c *fiber.Ctx) *metadata.ResourceDefinition {
	return h.registry.Get(c.Params("resource"))
}

func (h *Handler) resourcePerPage(res *metadata.ResourceDefinition) int {
	if res.Options.PerPage > 0 || h.perPage <= 0 {
		return res.PerPage()
	}
	return h.perPage
}

// base builds the layout data shared by every page and consumes the flash.
func (h *Handler) base(c *fiber.Ctx, active *metadata.ResourceDefinition) views.Base {
	b := views.Base{Flash: h.popFlash(c)}
	if claims := auth.CurrentAdmin(c); claims != nil {
		b.Admin = claims.Email
	}
	for _, res := range h.registry.All() {
		b.Nav = append(b.Nav, views.NavItem{
			Label:  res.PluralName,
			URL:    h.views.URL(res.RoutePath),
			Active: active != nil && active.RoutePath == res.RoutePath,
		})
	}
	return b
}

func (h *Handler) html(c *fiber.Ctx, status int, render func(*bytes.Buffer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func (h *Handler) notFound(c *fiber.Ctx, res *metadata.ResourceDefinition, message string) error {
	page := views.NotFoundPage{Base: h.base(c, res), Message: message}
	if res != nil {
		page.BackURL = h.views.URL(res.RoutePath)
		page.BackLabel = res.PluralName
	}
	return h.html(c, fiber.StatusNotFound, func(buf *bytes.Buffer) error {
		return h.views.NotFound(buf, page)
	})
}

func (h *Handler) unknownResource(c *fiber.Ctx) error {
	return h.notFound(c, nil, "Page not found.")
}

// findRecord loads one record by its path id, keyed by column name.
func (h *Handler) findRecord(c *fiber.Ctx, res *metadata.ResourceDefinition, id string) (metadata.Record, error) {
	pk, err := res.ParseID(id)
	if err != nil {
		return nil, err
	}
	rows, err := h.db.Select(c.UserContext(), res.TableName, metadata.Query{
		Filters: []metadata.Filter{{Column: res.PrimaryKey().SQLName, Value: pk}},
		Limit:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", res.TableName, id, err)
	}
	if len(rows) == 0 {
		return nil, metadata.NotFoundError(res.DisplayName, id)
	}
	return res.Columns.FromRow(rows[0]), nil
}

// ErrorHandler renders unhandled errors as an HTML page.
func ErrorHandler(r *views.Renderer, logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Something went wrong."

		var fiberErr *fiber.Error
		var appErr *metadata.Error
		switch {
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
			message = fiberErr.Message
		case errors.As(err, &appErr) && appErr.Kind == metadata.KindNotFound:
			code = fiber.StatusNotFound
			message = appErr.Message
		}
		if code == fiber.StatusNotFound && appErr == nil {
			message = "Page not found."
		}

		var buf bytes.Buffer
		var renderErr error
		if code == fiber.StatusNotFound {
			renderErr = r.NotFound(&buf, views.NotFoundPage{Message: message})
		} else {
			if code >= fiber.StatusInternalServerError {
				logger.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
			}
			renderErr = r.Error(&buf, views.ErrorPage{Status: code, Message: message})
		}
		if renderErr != nil {
			logger.Error("render error page", "error", renderErr)
			return c.Status(code).SendString(message)
		}
		c.Type("html", "utf-8")
		return c.Status(code).Send(buf.Bytes())
	}
}
