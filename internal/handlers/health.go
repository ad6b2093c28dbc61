package handlers

import (
	"veripay/internal/repositories"
	"veripay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// HealthCheck reports process and dependency health.
func HealthCheck(c *fiber.Ctx) error {
	dbStatus := "ok"
	if sqlDB, err := repositories.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
	}

	status := fiber.StatusOK
	if dbStatus != "ok" {
		status = fiber.StatusServiceUnavailable
	}

	return utils.Respond(c, status, fiber.Map{
		"status":   "up",
		"database": dbStatus,
	})
}
