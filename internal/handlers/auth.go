package handlers

import (
	"crypto/subtle"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/authz"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/middleware"
	"github.com/teraonavi/navi-admin/internal/models"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
	"gorm.io/gorm"
)

// AuthHandler handles login, logout, and client-credential token
// verification.
type AuthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Creds *credentials.Manager
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Ok        bool          `json:"ok"`
	Superuser bool          `json:"superuser"`
	UserID    uint64        `json:"user_id,omitempty"`
	CompanyID uint64        `json:"company_id,omitempty"`
	RoleID    models.RoleID `json:"role_id,omitempty"`
	FullName  string        `json:"full_name,omitempty"`
}

// AdminLogin handles POST /api/admin/login
// @Summary Platform superuser login
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /admin/login [post]
func (h *AuthHandler) AdminLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	nameOK := subtle.ConstantTimeCompare([]byte(req.Login), []byte(h.Cfg.SuperuserName))
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.SuperuserPassword))
	if nameOK&passOK != 1 {
		return services.ErrInvalidLogin
	}

	actor := authz.Actor{Authenticated: true, Superuser: true}
	token, err := middleware.IssueSessionToken(h.Cfg, actor)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, h.Cfg, token)

	log.Printf("admin login: superuser session issued")
	return utils.SuccessResponse(c, loginResponse{Ok: true, Superuser: true}, fiber.StatusOK)
}

// Login handles POST /api/login
// @Summary Tenant user login (email or username)
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} loginResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}

	user, err := services.AuthenticateUser(h.DB, req.Login, req.Password)
	if err != nil {
		return err
	}

	actor := authz.Actor{
		Authenticated: true,
		UserID:        user.UserID,
		CompanyID:     user.CompanyID,
		Role:          user.RoleID,
	}
	token, err := middleware.IssueSessionToken(h.Cfg, actor)
	if err != nil {
		return err
	}
	middleware.SetSessionCookie(c, h.Cfg, token)

	log.Printf("login: user %d (company %d) session issued", user.UserID, user.CompanyID)
	return utils.SuccessResponse(c, loginResponse{
		Ok:        true,
		UserID:    user.UserID,
		CompanyID: user.CompanyID,
		RoleID:    user.RoleID,
		FullName:  user.FullName(),
	}, fiber.StatusOK)
}

// Logout handles POST /api/logout
// @Summary Clear the session
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	middleware.ClearSessionCookie(c)
	return utils.MutationSuccessResponse(c)
}

// ErrInvalidClient rejects a bad client_id/client_secret pair.
var ErrInvalidClient = errors.New("invalid client credentials")

type clientTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type clientTokenResponse struct {
	Ok        bool   `json:"ok"`
	CompanyID uint64 `json:"company_id"`
}

// VerifyClient handles POST /api/auth/client
// @Summary Verify machine client credentials
// @Description Checks a client_id/client_secret pair and returns the owning company id.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body clientTokenRequest true "Client credentials"
// @Success 200 {object} clientTokenResponse
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/client [post]
func (h *AuthHandler) VerifyClient(c *fiber.Ctx) error {
	var req clientTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return &types.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		return &types.ValidationError{Field: "client_id", Reason: "client_id and client_secret are required"}
	}

	companyID, ok := h.Creds.Verify(c.Context(), req.ClientID, req.ClientSecret)
	if !ok {
		return ErrInvalidClient
	}

	// The owning company must still exist and be active.
	if _, err := services.GetCompany(h.DB, companyID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return ErrInvalidClient
		}
		return err
	}

	return utils.SuccessResponse(c, clientTokenResponse{Ok: true, CompanyID: companyID}, fiber.StatusOK)
}
