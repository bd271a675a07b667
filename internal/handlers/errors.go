package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/services"
	"github.com/teraonavi/navi-admin/internal/types"
	"github.com/teraonavi/navi-admin/internal/utils"
)

// ErrorHandler translates the error taxonomy into the standard JSON
// envelope. Registered as the Fiber app's global error handler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "internal"

	var validationErr *types.ValidationError
	var deniedErr *types.AuthorizationDeniedError
	var credErr *types.CredentialStoreError
	var objErr *types.ObjectStoreError
	var cascadeErr *types.CascadeIntegrityError
	var fiberErr *fiber.Error

	switch {
	case errors.Is(err, types.ErrAuthenticationRequired),
		errors.Is(err, services.ErrInvalidLogin),
		errors.Is(err, ErrInvalidClient):
		code = fiber.StatusUnauthorized
		errorType = "authentication"
	case errors.As(err, &deniedErr):
		code = fiber.StatusForbidden
		errorType = "authorization"
	case errors.Is(err, types.ErrNotFound):
		code = fiber.StatusNotFound
		errorType = "not_found"
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
		errorType = "validation"
	case errors.As(err, &credErr):
		code = fiber.StatusBadGateway
		errorType = "credential_store"
	case errors.As(err, &objErr):
		code = fiber.StatusBadGateway
		errorType = "object_store"
	case errors.As(err, &cascadeErr):
		code = fiber.StatusInternalServerError
		errorType = "cascade"
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	if code == fiber.StatusInternalServerError {
		log.Printf("request failed: %s %s: %v", c.Method(), c.OriginalURL(), err)
	}

	return utils.ErrorResponse(c, message, code, errorType)
}
