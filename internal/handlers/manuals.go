package handlers

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/gorm"
)

// presignTTL bounds how long a shared download URL stays valid.
const presignTTL = time.Hour

// ManualHandler handles the tenant manual routes, including the PDF
// upload, download, and presigned URL endpoints.
type ManualHandler struct {
	DB    *gorm.DB
	Store services.ObjectStore
}

// readUploadedFile pulls the optional multipart "file" part into memory.
// Returns nil when the part is absent.
func readUploadedFile(c *fiber.Ctx) ([]byte, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, nil
	}

	f, err := header.Open()
	if err != nil {
		return nil, &types.ValidationError{Field: "file", Reason: "unreadable upload"}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &types.ValidationError{Field: "file", Reason: "unreadable upload"}
	}
	return data, nil
}

// List handles GET /api/applications/:id/manuals
// @Summary List an application's manuals
// @Tags Manuals
// @Produce json
// @Param id path int true "Application ID"
// @Param q query string false "Free-text filter over name and description"
// @Success 200 {array} models.Manual
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /applications/{id}/manuals [get]
func (h *ManualHandler) List(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualView, authz.Target{}).Err(); err != nil {
		return err
	}

	appID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := services.GetApplicationForCompany(h.DB, appID, actor.CompanyID); err != nil {
		return err
	}

	manuals, err := services.ListManuals(h.DB, appID, c.Query("q"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, manuals, fiber.StatusOK)
}

// Create handles POST /api/applications/:id/manuals
// @Summary Upload a manual PDF under an application
// @Description Multipart form: manual_name, description, file (PDF). The row exists only if the upload succeeds.
// @Tags Manuals
// @Accept mpfd
// @Produce json
// @Param id path int true "Application ID"
// @Success 201 {object} models.Manual
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /applications/{id}/manuals [post]
func (h *ManualHandler) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualCreate, authz.Target{}).Err(); err != nil {
		return err
	}

	appID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := services.GetApplicationForCompany(h.DB, appID, actor.CompanyID); err != nil {
		return err
	}

	file, err := readUploadedFile(c)
	if err != nil {
		return err
	}

	manual, err := services.CreateManual(c.Context(), h.DB, h.Store, appID, services.ManualInput{
		ManualName:  c.FormValue("manual_name"),
		Description: c.FormValue("description"),
		File:        file,
	})
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, manual, fiber.StatusCreated)
}

// Get handles GET /api/manuals/:id
// @Summary Get a manual in the actor's company
// @Tags Manuals
// @Produce json
// @Param id path int true "Manual ID"
// @Success 200 {object} models.Manual
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /manuals/{id} [get]
func (h *ManualHandler) Get(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	manual, err := services.GetManualForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, manual, fiber.StatusOK)
}

// Update handles PUT /api/manuals/:id
// @Summary Update a manual, optionally replacing its PDF
// @Description Multipart form: manual_name, description, file (optional). A new file replaces the stored object under the same key.
// @Tags Manuals
// @Accept mpfd
// @Produce json
// @Param id path int true "Manual ID"
// @Success 200 {object} models.Manual
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /manuals/{id} [put]
func (h *ManualHandler) Update(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualEdit, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	manual, err := services.GetManualForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	file, err := readUploadedFile(c)
	if err != nil {
		return err
	}

	updated, err := services.UpdateManual(c.Context(), h.DB, h.Store, manual, services.ManualInput{
		ManualName:  c.FormValue("manual_name"),
		Description: c.FormValue("description"),
		File:        file,
	})
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, updated, fiber.StatusOK)
}

// Delete handles DELETE /api/manuals/:id
// @Summary Soft-delete a manual
// @Description The stored PDF is retained in object storage.
// @Tags Manuals
// @Produce json
// @Param id path int true "Manual ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /manuals/{id} [delete]
func (h *ManualHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualDelete, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	manual, err := services.GetManualForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	if err := services.DeleteManual(h.DB, manual.ManualID); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}

// Download handles GET /api/manuals/:id/download
// @Summary Download a manual's PDF
// @Tags Manuals
// @Produce application/pdf
// @Param id path int true "Manual ID"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /manuals/{id}/download [get]
func (h *ManualHandler) Download(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	manual, err := services.GetManualForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	data, err := services.DownloadManual(c.Context(), h.Store, manual)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", manual.ManualName+".pdf"))
	return c.Send(data)
}

type presignedURLResponse struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in"`
}

// PresignedURL handles GET /api/manuals/:id/url
// @Summary Get a time-limited download URL for a manual's PDF
// @Description The URL is served straight from object storage; the body never passes through this service.
// @Tags Manuals
// @Produce json
// @Param id path int true "Manual ID"
// @Success 200 {object} presignedURLResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /manuals/{id}/url [get]
func (h *ManualHandler) PresignedURL(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionManualView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	manual, err := services.GetManualForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	url, err := services.PresignManual(c.Context(), h.Store, manual, presignTTL)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, presignedURLResponse{
		URL:       url,
		ExpiresIn: int64(presignTTL.Seconds()),
	}, fiber.StatusOK)
}
