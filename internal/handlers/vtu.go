package handlers

import (
	"errors"

	"veripay/internal/services/vtu"
	"veripay/internal/utils"
	"veripay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type VTUHandler struct {
	vtuService vtu.Service
}

func NewVTUHandler(vtuService vtu.Service) *VTUHandler {
	return &VTUHandler{vtuService: vtuService}
}

func (h *VTUHandler) BuyAirtime(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Network  int    `json:"network" validate:"required"`
		Phone    string `json:"phone" validate:"required,ngphone"`
		PlanType string `json:"plan_type" validate:"required,oneof=VTU SHARE vtu share"`
		Amount   int64  `json:"amount" validate:"required,gt=0"`
		Pin      string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.vtuService.BuyAirtime(c.Context(), vtu.AirtimeRequest{
		UserID:   claims.UserID,
		Network:  input.Network,
		Phone:    input.Phone,
		PlanType: input.PlanType,
		Amount:   input.Amount,
		Pin:      input.Pin,
	})
	if err != nil {
		if errors.Is(err, vtu.ErrInvalidNetwork) || errors.Is(err, vtu.ErrInvalidPlanType) ||
			errors.Is(err, vtu.ErrFractionalAmount) {
			return utils.BadRequest(c, err.Error())
		}
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message":  "Airtime purchase successful",
		"purchase": result,
	})
}

func (h *VTUHandler) BuyData(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Network int    `json:"network" validate:"required"`
		Phone   string `json:"phone" validate:"required,ngphone"`
		PlanID  int    `json:"plan_id" validate:"required"`
		Amount  int64  `json:"amount" validate:"required,gt=0"`
		Pin     string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.vtuService.BuyData(c.Context(), vtu.DataRequest{
		UserID:  claims.UserID,
		Network: input.Network,
		Phone:   input.Phone,
		PlanID:  input.PlanID,
		Amount:  input.Amount,
		Pin:     input.Pin,
	})
	if err != nil {
		if errors.Is(err, vtu.ErrInvalidNetwork) {
			return utils.BadRequest(c, err.Error())
		}
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message":  "Data purchase successful",
		"purchase": result,
	})
}
