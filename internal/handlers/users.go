package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/gorm"
)

// UserHandler handles both the superuser's cross-tenant user
// administration and the tenant-scoped user routes.
type UserHandler struct {
	DB *gorm.DB
}

type adminCreateUserRequest struct {
	services.UserInput
	CompanyID types.FlexUint64 `json:"company_id"`
}

// AdminList handles GET /api/admin/users
// @Summary List users across all companies
// @Tags AdminUsers
// @Produce json
// @Param q query string false "Free-text filter over username, email, name"
// @Param company_id query int false "Restrict to one company"
// @Success 200 {array} models.User
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /admin/users [get]
func (h *UserHandler) AdminList(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionAdminUserView, authz.Target{}).Err(); err != nil {
		return err
	}

	companyID, err := parseQueryID(c, "company_id")
	if err != nil {
		return err
	}

	users, err := services.ListUsers(h.DB, c.Query("q"), companyID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// AdminCreate handles POST /api/admin/users
// @Summary Create a user in any company
// @Description Superuser-created users are always granted FullAccess regardless of the requested role.
// @Tags AdminUsers
// @Accept json
// @Produce json
// @Param body body adminCreateUserRequest true "User fields plus company_id"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /admin/users [post]
func (h *UserHandler) AdminCreate(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionAdminUserCreate, authz.Target{}).Err(); err != nil {
		return err
	}

	var req adminCreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	if req.CompanyID == 0 {
		return &types.ValidationError{Field: "company_id", Reason: "required"}
	}
	if _, err := services.GetCompany(h.DB, req.CompanyID.Uint64()); err != nil {
		return err
	}

	// The privileged path pins the role; the tier matrix does not apply.
	req.UserInput.RoleID = models.RoleFullAccess

	user, err := services.CreateUser(h.DB, req.CompanyID.Uint64(), req.UserInput)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// AdminGet handles GET /api/admin/users/:id
// @Summary Get any user
// @Tags AdminUsers
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id} [get]
func (h *UserHandler) AdminGet(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionAdminUserView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := services.GetUser(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// AdminUpdate handles PUT /api/admin/users/:id
// @Summary Update any user
// @Tags AdminUsers
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UserInput true "User fields"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id} [put]
func (h *UserHandler) AdminUpdate(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionAdminUserEdit, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := services.GetUser(h.DB, id)
	if err != nil {
		return err
	}

	var input services.UserInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	updated, err := services.UpdateUser(h.DB, user, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, updated, fiber.StatusOK)
}

// AdminDelete handles DELETE /api/admin/users/:id
// @Summary Soft-delete any user
// @Tags AdminUsers
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /admin/users/{id} [delete]
func (h *UserHandler) AdminDelete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionAdminUserDelete, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := services.DeleteUser(h.DB, id); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}

// List handles GET /api/users
// @Summary List the actor's company users, excluding the actor
// @Tags Users
// @Produce json
// @Param q query string false "Free-text filter over username, email, name"
// @Success 200 {array} models.User
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionUserView, authz.Target{}).Err(); err != nil {
		return err
	}

	users, err := services.ListCompanyUsers(h.DB, actor.CompanyID, actor.UserID, c.Query("q"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, users, fiber.StatusOK)
}

// Create handles POST /api/users
// @Summary Create a user in the actor's company
// @Description The assigned role must be within the actor's assignable set.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.UserInput true "User fields"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionUserCreate, authz.Target{}).Err(); err != nil {
		return err
	}

	var input services.UserInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	roleID := input.RoleID
	if roleID == 0 {
		roleID = models.RoleReadOnly
	}
	if !actor.Role.CanAssign(roleID) {
		return &types.AuthorizationDeniedError{Reason: "role not assignable"}
	}

	user, err := services.CreateUser(h.DB, actor.CompanyID, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// Get handles GET /api/users/:id
// @Summary Get a user in the actor's company
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionUserView, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := services.GetUserForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// Update handles PUT /api/users/:id
// @Summary Update a user in the actor's company
// @Tags Users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.UserInput true "User fields"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)
	if err := authz.Authorize(actor, authz.ActionUserEdit, authz.Target{}).Err(); err != nil {
		return err
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	user, err := services.GetUserForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	var input services.UserInput
	if err := c.BodyParser(&input); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	if input.RoleID != 0 && input.RoleID != user.RoleID && !actor.Role.CanAssign(input.RoleID) {
		return &types.AuthorizationDeniedError{Reason: "role not assignable"}
	}

	updated, err := services.UpdateUser(h.DB, user, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, updated, fiber.StatusOK)
}

// Delete handles DELETE /api/users/:id
// @Summary Soft-delete a user in the actor's company
// @Description Self-deletion is always denied.
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	actor := middleware.ActorFromCtx(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := authz.Authorize(actor, authz.ActionUserDelete, authz.Target{CompanyID: actor.CompanyID, UserID: id}).Err(); err != nil {
		return err
	}

	user, err := services.GetUserForCompany(h.DB, id, actor.CompanyID)
	if err != nil {
		return err
	}

	if err := services.DeleteUser(h.DB, user.UserID); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c)
}
