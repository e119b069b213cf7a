package admin

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"rocket-admin/internal/auth"
	"rocket-admin/internal/metadata"
)

// MemberAction handles POST /:resource/:id/actions/:slug
func (h *Handler) MemberAction(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	id := c.Params("id")
	showURL := h.views.URL(res.RoutePath, id)

	action := res.FindMemberAction(c.Params("slug"))
	if action == nil {
		return h.redirectWithFlash(c, showURL, FlashError, "Unknown action.")
	}
	if err := h.auth.CheckCSRF(c); err != nil {
		return h.redirectWithFlash(c, showURL, FlashError, err.Error())
	}

	rec, err := h.findRecord(c, res, id)
	if err != nil {
		if metadata.IsKind(err, metadata.KindNotFound) {
			return h.notFound(c, res, res.DisplayName+" not found.")
		}
		return err
	}
	allowed, err := action.Allowed(rec)
	if err != nil {
		h.logger.Warn("action condition failed", "resource", res.TableName, "action", action.Slug(), "error", err)
	}
	if !allowed {
		return h.redirectWithFlash(c, showURL, FlashError, fmt.Sprintf("%s is not available for this %s.", action.Name, res.DisplayName))
	}

	if err := runMember(h.actionContext(c, res), action, id, h.db); err != nil {
		h.logger.Warn("member action failed", "resource", res.TableName, "id", id, "action", action.Slug(), "error", err)
		return h.redirectWithFlash(c, showURL, FlashError, err.Error())
	}
	h.logger.Info("member action", "resource", res.TableName, "id", id, "action", action.Slug(), "admin", adminID(c))
	return h.redirectWithFlash(c, showURL, FlashSuccess, action.Name+" completed.")
}

// CollectionAction handles POST /:resource/actions/:slug
func (h *Handler) CollectionAction(c *fiber.Ctx) error {
	res := h.resource(c)
	if res == nil {
		return h.unknownResource(c)
	}
	indexURL := h.views.URL(res.RoutePath)

	action := res.FindCollectionAction(c.Params("slug"))
	if action == nil {
		return h.redirectWithFlash(c, indexURL, FlashError, "Unknown action.")
	}
	if err := h.auth.CheckCSRF(c); err != nil {
		return h.redirectWithFlash(c, indexURL, FlashError, err.Error())
	}

	req := &metadata.ActionRequest{
		Context:  h.actionContext(c, res),
		Resource: res,
		Query:    c.Queries(),
		Form:     formValues(c),
	}
	resp, err := runCollection(action, req, h.db)
	if err != nil {
		h.logger.Warn("collection action failed", "resource", res.TableName, "action", action.Slug(), "error", err)
		return h.redirectWithFlash(c, indexURL, FlashError, err.Error())
	}
	h.logger.Info("collection action", "resource", res.TableName, "action", action.Slug(), "admin", adminID(c))

	if resp != nil {
		return sendResponse(c, resp)
	}
	return h.redirectWithFlash(c, indexURL, FlashSuccess, action.Name+" completed.")
}

func (h *Handler) actionContext(c *fiber.Ctx, res *metadata.ResourceDefinition) context.Context {
	ctx := metadata.WithResource(c.UserContext(), res)
	if claims := auth.CurrentAdmin(c); claims != nil {
		ctx = metadata.WithUser(ctx, &metadata.UserContext{ID: claims.Subject, Email: claims.Email})
	}
	return ctx
}

// runMember reports handler failures, panics included, as Action errors.
func runMember(ctx context.Context, a *metadata.MemberAction, id string, db metadata.Database) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = metadata.ActionError(fmt.Errorf("%s failed: %v", a.Name, r))
		}
	}()
	if err := a.Handler(ctx, id, db); err != nil {
		return metadata.ActionError(err)
	}
	return nil
}

func runCollection(a *metadata.CollectionAction, req *metadata.ActionRequest, db metadata.Database) (resp *metadata.ActionResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, metadata.ActionError(fmt.Errorf("%s failed: %v", a.Name, r))
		}
	}()
	resp, err = a.Handler(req, db)
	if err != nil {
		return nil, metadata.ActionError(err)
	}
	return resp, nil
}

func sendResponse(c *fiber.Ctx, resp *metadata.ActionResponse) error {
	status := resp.Status
	if status == 0 {
		status = fiber.StatusOK
	}
	if resp.Filename != "" {
		c.Attachment(resp.Filename)
	}
	if resp.ContentType != "" {
		c.Set(fiber.HeaderContentType, resp.ContentType)
	}
	return c.Status(status).Send(resp.Body)
}
