package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/types"
)

// parseIDParam reads a numeric path parameter. Unparseable ids surface
// as a validation failure rather than a 404 so typos are diagnosable.
func parseIDParam(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &types.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

// parseQueryID reads an optional numeric query parameter; absent means
// zero.
func parseQueryID(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, &types.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}
