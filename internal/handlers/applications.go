package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/gorm"
)

// ApplicationHandler handles the tenant application routes. Every
// lookup is scoped to the actor's company; foreign ids read as missing.
type ApplicationHandler struct {
	DB *gorm.DB
}

// List handles GET /api/applications
// @Summary List the actor's company applications with manual counts
// @Tags Applications
// @Produce json
// @Param q query string false "Free-text filter over name and description"
// @Success 200 {array} services.ApplicationWithManualCount
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionApplicationView, authz.Target{}).Err(); err != nil {
		return err
	}

	apps, err := services.ListApplications(h.DB, actor.CompanyID, c.Query("q"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, apps, fiber.StatusOK)
}

// Create handles POST /api/applications
// @Summary Create an application in the actor's company
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body services.ApplicationInput true "Application fields"
// @Success 201 {object} models.Application
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionApplicationCreate, authz.Target{}).Err(); err != nil {
		return err
	}

	var input services.ApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	app, err := services.CreateApplication(h.DB, actor.CompanyID, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, app, fiber.StatusCreated)
}

// Get handles GET /api/applications/:id
// @Summary Get an application in the actor's company
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionApplicationView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	app, err := services.GetApplicationForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// Update handles PUT /api/applications/:id
// @Summary Update an application in the actor's company
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param body body services.ApplicationInput true "Application fields"
// @Success 200 {object} models.Application
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [put]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionApplicationEdit, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input services.ApplicationInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	app, err := services.UpdateApplication(h.DB, id, actor.CompanyID, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, app, fiber.StatusOK)
}

// Delete handles DELETE /api/applications/:id
// @Summary Soft-delete an application and its manuals
// @Description Cascades to the application's active manuals in one transaction. Stored PDFs are retained.
// @Tags Applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionApplicationDelete, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	// Scope check first so a foreign id reads as missing.
	if _, err := services.GetApplicationForCompany(h.DB, id, actor.CompanyID); err != nil {
		return err
	}

	if err := services.DeleteApplication(h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}
