package handlers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/gorm"
)

// CompanyHandler handles the superuser company-management routes.
type CompanyHandler struct {
	DB    *gorm.DB
	Creds *credentials.Manager
}

// List handles GET /api/admin/companies
// @Summary List active companies with user counts
// @Tags Companies
// @Produce json
// @Param q query string false "Free-text filter over name, address, tel"
// @Success 200 {array} services.CompanyWithUserCount
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/companies [get]
func (h *CompanyHandler) List(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyView, authz.Target{}).Err(); err != nil {
		return err
	}

	companies, err := services.ListCompanies(h.DB, c.Query("q"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, companies, fiber.StatusOK)
}

// Create handles POST /api/admin/companies
// @Summary Create a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param body body services.CompanyInput true "Company fields"
// @Success 201 {object} models.Company
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/companies [post]
func (h *CompanyHandler) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyCreate, authz.Target{}).Err(); err != nil {
		return err
	}

	var input services.CompanyInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	company, err := services.CreateCompany(h.DB, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, company, fiber.StatusCreated)
}

// Get handles GET /api/admin/companies/:id
// @Summary Get a company
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.Company
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id} [get]
func (h *CompanyHandler) Get(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	company, err := services.GetCompany(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, company, fiber.StatusOK)
}

// Update handles PUT /api/admin/companies/:id
// @Summary Update a company
// @Tags Companies
// @Accept json
// @Produce json
// @Param id path int true "Company ID"
// @Param body body services.CompanyInput true "Company fields"
// @Success 200 {object} models.Company
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id} [put]
func (h *CompanyHandler) Update(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyEdit, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var input services.CompanyInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	company, err := services.UpdateCompany(h.DB, id, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, company, fiber.StatusOK)
}

type deleteCompanyResponse struct {
	Message            string `json:"message"`
	Ok                 bool   `json:"ok"`
	CredentialsRevoked bool   `json:"credentials_revoked"`
	Warning            string `json:"warning,omitempty"`
}

// Delete handles DELETE /api/admin/companies/:id
// @Summary Soft-delete a company and cascade to its dependents
// @Description Soft-deletes the company, its applications, manuals, and users in one transaction, then revokes the company's machine credentials. The database row is the source of truth: a credential revocation failure is reported as a warning, not a rollback.
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} deleteCompanyResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyDelete, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := services.DeleteCompany(h.DB, id); err != nil {
		return err
	}

	// Revocation runs after the transaction commits; the rows stay
	// deleted even when the credential store is unreachable.
	resp := deleteCompanyResponse{Message: "Success", Ok: true, CredentialsRevoked: true}
	if !h.Creds.RevokeAll(c.Context(), id) {
		log.Printf("company delete: credential revocation incomplete for company %d", id)
		resp.CredentialsRevoked = false
		resp.Warning = "company deleted, but credential revocation did not complete; revoke manually"
	}
	return utils.SuccessResponse(c, resp, fiber.StatusOK)
}

// Restore handles POST /api/admin/companies/:id/restore
// @Summary Restore a soft-deleted company
// @Description Clears the company's deleted flag only; dependent rows stay deleted until restored individually.
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id}/restore [post]
func (h *CompanyHandler) Restore(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCompanyRestore, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := services.RestoreCompany(h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}

type issuedCredentialResponse struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	CompanyID    uint64    `json:"company_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// IssueCredential handles POST /api/admin/companies/:id/credentials
// @Summary Issue a machine credential for a company
// @Description Returns the client secret exactly once; only its hash is stored.
// @Tags Credentials
// @Produce json
// @Param id path int true "Company ID"
// @Success 201 {object} issuedCredentialResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id}/credentials [post]
func (h *CompanyHandler) IssueCredential(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCredentialIssue, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := services.GetCompany(h.DB, id); err != nil {
		return err
	}

	cred, secret, err := h.Creds.Issue(c.Context(), id)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, issuedCredentialResponse{
		ClientID:     cred.ClientID,
		ClientSecret: secret,
		CompanyID:    cred.CompanyID,
		CreatedAt:    cred.CreatedAt,
	}, fiber.StatusCreated)
}

type credentialListItem struct {
	ClientID  string    `json:"client_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListCredentials handles GET /api/admin/companies/:id/credentials
// @Summary List a company's machine credentials
// @Tags Credentials
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {array} credentialListItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id}/credentials [get]
func (h *CompanyHandler) ListCredentials(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCredentialIssue, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := services.GetCompany(h.DB, id); err != nil {
		return err
	}

	creds, err := h.Creds.ListByCompany(c.Context(), id)
	if err != nil {
		return err
	}

	items := make([]credentialListItem, 0, len(creds))
	for _, cred := range creds {
		items = append(items, credentialListItem{
			ClientID:  cred.ClientID,
			IsActive:  cred.IsActive,
			CreatedAt: cred.CreatedAt,
		})
	}
	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// RevokeCredential handles DELETE /api/admin/companies/:id/credentials/:clientID
// @Summary Deactivate a single machine credential
// @Description Flips is_active off; the record is retained for audit.
// @Tags Credentials
// @Produce json
// @Param id path int true "Company ID"
// @Param clientID path string true "Client ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 502 {object} utils.ErrorResponseStruct
// @Router /admin/companies/{id}/credentials/{clientID} [delete]
func (h *CompanyHandler) RevokeCredential(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionCredentialRevoke, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := services.GetCompany(h.DB, id); err != nil {
		return err
	}

	clientID := c.Params("clientID")
	if clientID == "" {
		return &types.ValidationError{Field: "clientID", Reason: "required"}
	}

	if err := h.Creds.Deactivate(c.Context(), clientID); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}
