package handlers

import (
	"veripay/internal/services/verification"
	"veripay/internal/utils"
	"veripay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type VerificationHandler struct {
	verificationService verification.Service
}

func NewVerificationHandler(verificationService verification.Service) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

func (h *VerificationHandler) VerifyNIN(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Nin string `json:"nin" validate:"required,len=11,numeric"`
		Pin string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.verificationService.VerifyNIN(c.Context(), claims.UserID, input.Nin, input.Pin)
	if err != nil {
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message": "NIN verification successful",
		"result":  result,
	})
}

func (h *VerificationHandler) VerifyBVN(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Bvn string `json:"bvn" validate:"required,len=11,numeric"`
		Pin string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.verificationService.VerifyBVN(c.Context(), claims.UserID, input.Bvn, input.Pin)
	if err != nil {
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message": "BVN verification successful",
		"result":  result,
	})
}

func (h *VerificationHandler) CheckIPE(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TrackingID string `json:"tracking_id" validate:"required"`
		Pin        string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.verificationService.CheckIPE(c.Context(), claims.UserID, input.TrackingID, input.Pin)
	if err != nil {
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message": "IPE status check successful",
		"result":  result,
	})
}

func (h *VerificationHandler) Personalize(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		TrackingID string `json:"tracking_id" validate:"required"`
		Pin        string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	result, err := h.verificationService.Personalize(c.Context(), claims.UserID, input.TrackingID, input.Pin)
	if err != nil {
		return respondSettlementError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message": "NIN personalization successful",
		"result":  result,
	})
}
