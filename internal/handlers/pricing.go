package handlers

import (
	"errors"

	"veripay/internal/models"
	"veripay/internal/services/pricing"
	"veripay/internal/utils"
	"veripay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type PricingHandler struct {
	pricingService pricing.Service
}

func NewPricingHandler(pricingService pricing.Service) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// ListServices returns the active catalog. Public so clients can show
// prices before purchase.
func (h *PricingHandler) ListServices(c *fiber.Ctx) error {
	services, err := h.pricingService.List(c.Context())
	if err != nil {
		return utils.InternalError(c, "Failed to load service catalog")
	}

	return utils.Success(c, fiber.Map{"services": services})
}

// UpdateService changes a catalog row. Only the fields enumerated on
// PricingUpdate can move; anything else in the body is dropped by the
// decoder.
func (h *PricingHandler) UpdateService(c *fiber.Ctx) error {
	serviceName := c.Params("service")
	if serviceName == "" {
		return utils.BadRequest(c, "Service name is required")
	}

	var input models.PricingUpdate
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	updated, err := h.pricingService.Update(c.Context(), serviceName, input)
	if err != nil {
		if errors.Is(err, pricing.ErrServiceNotFound) {
			return utils.NotFound(c, "Service not found in catalog")
		}
		return utils.InternalError(c, "Failed to update service")
	}

	return utils.Success(c, fiber.Map{
		"message": "Service updated",
		"service": updated,
	})
}
