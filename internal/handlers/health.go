package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/teraonavi/navi-admin/internal/config"
	"github.com/teraonavi/navi-admin/internal/credentials"
	"github.com/teraonavi/navi-admin/internal/objectstore"
	"github.com/teraonavi/navi-admin/internal/services"
	"gorm.io/gorm"
)

// HealthHandler handles the health probe route.
type HealthHandler struct {
	Cfg   *config.Config
	DB    *gorm.DB
	Creds *credentials.Manager
	Store *objectstore.Client
}

// Check handles GET /api/health
// @Summary Probe the database, credential store, and object store
// @Tags Health
// @Produce json
// @Success 200 {object} services.HealthCheckResult
// @Failure 503 {object} services.HealthCheckResult
// @Router /health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	result := services.HealthCheck(c.Context(), h.Cfg, h.DB, h.Creds, h.Store)

	status := fiber.StatusOK
	if result.Status != "healthy" {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(result)
}
