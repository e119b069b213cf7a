package admin

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"rocket-admin/internal/auth"
	"rocket-admin/internal/metadata"
	"rocket-admin/internal/views"
)

// Index handles GET /:resource
func (h *Handler) Index(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := h.resourcePerPage(res)

	var rows []metadata.Record
	var total int64
	g, ctx := errgroup.WithContext(c.UserContext())
	if offset, ok := pageOffset(page, perPage); ok {
		g.Go(func() error {
			var err error
			rows, err = h.db.Select(ctx, res.TableName, metadata.Query{
				OrderBy: []metadata.Order{{Column: res.PrimaryKey().SQLName}},
				Limit:   perPage,
				Offset:  offset,
			})
			return err
		})
	}
	g.Go(func() error {
		var err error
		total, err = h.db.Count(ctx, res.TableName, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("list %s: %w", res.TableName, err)
	}

	token, err := h.auth.MintCSRF(c)
	if err != nil {
		return err
	}
	return h.html(c, fiber.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.Index(buf, views.IndexPage{
			Base:       h.base(c, res),
			Resource:   res,
			Rows:       res.Columns.FromRows(rows),
			Page:       page,
			TotalPages: totalPages(total, perPage),
			TotalCount: total,
			CSRFToken:  token,
		})
	})
}

// pageOffset returns the row offset of a 1-based page. ok is false when the
// offset does not fit in an int; such a page is always past the end.
func pageOffset(page, perPage int) (offset int, ok bool) {
	if page < 1 || perPage <= 0 {
		return 0, false
	}
	if page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}

func totalPages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}

// New handles GET /:resource/new
func (h *Handler) New(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	return h.renderForm(c, res, nil)
}

// Create handles POST /:resource
func (h *Handler) Create(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	newURL := h.views.URL(res.RoutePath, "new")

	if err := h.auth.CheckCSRF(c); err != nil {
		return h.redirectWithFlash(c, newURL, FlashError, err.Error())
	}

	values, err := metadata.ParseFormValues(formValues(c), res.FormColumns(), res.Options.PermitParams)
	if err != nil {
		return h.rejectForm(c, res, nil, values, err)
	}

	row, err := h.db.Insert(c.UserContext(), res.TableName, res.Columns.ToRow(values))
	if err != nil {
		dbErr := metadata.DatabaseError(err)
		h.logger.Warn("create failed", "resource", res.TableName, "kind", dbErr.Kind, "error", dbErr)
		return h.redirectWithFlash(c, newURL, FlashError, dbErr.Error())
	}
	rec := res.Columns.FromRow(row)
	h.logger.Info("record created", "resource", res.TableName, "id", res.RecordID(rec), "admin", adminID(c))

	return h.redirectWithFlash(c, h.views.URL(res.RoutePath, res.RecordID(rec)),
		FlashSuccess, res.DisplayName+" created successfully.")
}

// Show handles GET /:resource/:id
func (h *Handler) Show(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	rec, err := h.findRecord(c, res, c.Params("id"))
	if err != nil {
		if metadata.IsKind(err, metadata.KindNotFound) {
			return h.notFound(c, res, res.DisplayName+" not found.")
		}
		return err
	}

	token, err := h.auth.MintCSRF(c)
	if err != nil {
		return err
	}
	return h.html(c, fiber.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.Show(buf, views.ShowPage{Base: h.base(c, res), Resource: res, Record: rec, CSRFToken: token})
	})
}

// Edit handles GET /:resource/:id/edit
func (h *Handler) Edit(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	rec, err := h.findRecord(c, res, c.Params("id"))
	if err != nil {
		if metadata.IsKind(err, metadata.KindNotFound) {
			return h.notFound(c, res, res.DisplayName+" not found.")
		}
		return err
	}
	return h.renderForm(c, res, rec)
}

func (h *Handler) renderForm(c *fiber.Ctx, res *metadata.ResourceDefinition, rec metadata.Record) error {
	token, err := h.auth.MintCSRF(c)
	if err != nil {
		return err
	}
	return h.html(c, fiber.StatusOK, func(buf *bytes.Buffer) error {
		return h.views.Form(buf, views.FormPage{Base: h.base(c, res), Resource: res, Record: rec, CSRFToken: token})
	})
}

// rejectForm re-renders the originating form with the submitted values and
// the field errors of a Validation error. rec is nil for the new form.
func (h *Handler) rejectForm(c *fiber.Ctx, res *metadata.ResourceDefinition, rec, values metadata.Record, err error) error {
	var verr *metadata.Error
	if !errors.As(err, &verr) || verr.Kind != metadata.KindValidation {
		return err
	}
	token, err := h.auth.MintCSRF(c)
	if err != nil {
		return err
	}
	base := h.base(c, res)
	base.Flash = &views.Flash{Type: FlashError, Message: verr.Error()}
	return h.html(c, fiber.StatusUnprocessableEntity, func(buf *bytes.Buffer) error {
		return h.views.Form(buf, views.FormPage{
			Base:      base,
			Resource:  res,
			Record:    rec,
			Values:    values,
			CSRFToken: token,
			Errors:    verr.Fields,
		})
	})
}

// Update handles PUT /:resource/:id and POST /:resource/:id?_method=PUT
func (h *Handler) Update(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	id := c.Params("id")
	editURL := h.views.URL(res.RoutePath, id, "edit")

	pk, err := res.ParseID(id)
	if err != nil {
		return h.notFound(c, res, res.DisplayName+" not found.")
	}
	if err := h.auth.CheckCSRF(c); err != nil {
		return h.redirectWithFlash(c, editURL, FlashError, err.Error())
	}

	raw := formValues(c)
	values, err := metadata.ParseFormValues(raw, keepPasswords(res.FormColumns(), raw), res.Options.PermitParams)
	if err != nil {
		rec, findErr := h.findRecord(c, res, id)
		if findErr != nil {
			return h.redirectWithFlash(c, h.views.URL(res.RoutePath), FlashError, res.DisplayName+" not found.")
		}
		return h.rejectForm(c, res, rec, values, err)
	}
	if col := res.Columns.FindUpdatedAt(); col != nil {
		values[col.Name] = time.Now().UTC()
	}

	if _, err := h.db.Update(c.UserContext(), res.TableName, res.PrimaryKey().SQLName, pk, res.Columns.ToRow(values)); err != nil {
		if errors.Is(err, metadata.ErrRecordNotFound) {
			return h.redirectWithFlash(c, h.views.URL(res.RoutePath), FlashError, res.DisplayName+" not found.")
		}
		dbErr := metadata.DatabaseError(err)
		h.logger.Warn("update failed", "resource", res.TableName, "id", id, "kind", dbErr.Kind, "error", dbErr)
		return h.redirectWithFlash(c, editURL, FlashError, dbErr.Error())
	}
	h.logger.Info("record updated", "resource", res.TableName, "id", id, "admin", adminID(c))

	return h.redirectWithFlash(c, h.views.URL(res.RoutePath, id), FlashSuccess, res.DisplayName+" updated successfully.")
}

// keepPasswords drops password columns left blank on an edit form so the
// stored value is kept.
func keepPasswords(cols metadata.Columns, raw map[string]string) metadata.Columns {
	out := make(metadata.Columns, 0, len(cols))
	for _, col := range cols {
		if col.IsPassword() && strings.TrimSpace(raw[col.Name]) == "" {
			continue
		}
		out = append(out, col)
	}
	return out
}

// Destroy handles DELETE /:resource/:id and POST /:resource/:id?_method=DELETE
func (h *Handler) Destroy(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	id := c.Params("id")
	indexURL := h.views.URL(res.RoutePath)
	showURL := h.views.URL(res.RoutePath, id)

	pk, err := res.ParseID(id)
	if err != nil {
		return h.redirectWithFlash(c, indexURL, FlashError, res.DisplayName+" not found.")
	}
	if err := h.auth.CheckCSRF(c); err != nil {
		return h.redirectWithFlash(c, showURL, FlashError, err.Error())
	}

	if err := h.db.Delete(c.UserContext(), res.TableName, res.PrimaryKey().SQLName, pk); err != nil {
		if errors.Is(err, metadata.ErrRecordNotFound) {
			return h.redirectWithFlash(c, indexURL, FlashError, res.DisplayName+" not found.")
		}
		dbErr := metadata.DatabaseError(err)
		h.logger.Warn("delete failed", "resource", res.TableName, "id", id, "kind", dbErr.Kind, "error", dbErr)
		return h.redirectWithFlash(c, showURL, FlashError, dbErr.Error())
	}
	h.logger.Info("record deleted", "resource", res.TableName, "id", id, "admin", adminID(c))

	return h.redirectWithFlash(c, indexURL, FlashSuccess, res.DisplayName+" deleted successfully.")
}

// Override handles POST /:resource/:id, dispatching on the _method override.
func (h *Handler) Override(c *fiber.Ctx) error {
	method := c.Query("_method")
	if method == "" {
		method = c.FormValue("_method")
	}
	switch strings.ToUpper(method) {
	case fiber.MethodPut, fiber.MethodPatch:
		return h.Update(c)
	case fiber.MethodDelete:
		return h.Destroy(c)
	default:
		return fiber.ErrMethodNotAllowed
	}
}

// formValues collects the submitted url-encoded fields, minus the control fields.
func formValues(c *fiber.Ctx) map[string]string {
	values := make(map[string]string)
	c.Request().PostArgs().VisitAll(func(k, v []byte) {
		key := string(k)
		if key == auth.CSRFField || key == "_method" {
			return
		}
		values[key] = string(v)
	})
	return values
}

func adminID(c *fiber.Ctx) string {
	if claims := auth.CurrentAdmin(c); claims != nil {
		return claims.Subject
	}
	return ""
}
