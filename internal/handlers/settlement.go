package handlers

import (
	"errors"

	"veripay/internal/services/ledger"
	"veripay/internal/services/pricing"
	"veripay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// respondSettlementError maps ledger and pricing failures from a paid
// operation onto HTTP responses.
func respondSettlementError(c *fiber.Ctx, err error) error {
	var actionErr *ledger.ExternalActionError

	switch {
	case errors.Is(err, ledger.ErrAccountNotFound):
		return utils.NotFound(c, "Wallet not found")
	case errors.Is(err, ledger.ErrPinNotSet):
		return utils.BadRequest(c, "Transaction pin has not been set")
	case errors.Is(err, ledger.ErrIncorrectPin):
		return utils.Unauthorized(c, "Incorrect transaction pin")
	case errors.Is(err, ledger.ErrInsufficientBalance):
		return utils.BadRequest(c, "Insufficient wallet balance")
	case errors.Is(err, ledger.ErrInvalidAmount):
		return utils.BadRequest(c, "Amount must be greater than zero")
	case errors.Is(err, ledger.ErrInvalidPin):
		return utils.BadRequest(c, "Pin must be exactly 4 digits")
	case errors.Is(err, ledger.ErrReferenceInUse):
		return utils.Respond(c, fiber.StatusConflict, fiber.Map{
			"error": "Transaction reference is already in use",
		})
	case errors.Is(err, pricing.ErrServiceNotFound):
		return utils.NotFound(c, "Service not available")
	case errors.Is(err, pricing.ErrServiceDisabled):
		return utils.BadRequest(c, "Service is currently disabled")
	case errors.As(err, &actionErr):
		// Provider declined or timed out; the wallet was not debited.
		return utils.Respond(c, fiber.StatusBadGateway, fiber.Map{
			"error": "Provider request failed, wallet not debited",
		})
	case errors.Is(err, ledger.ErrIndeterminate):
		return utils.Respond(c, fiber.StatusInternalServerError, fiber.Map{
			"error": "Settlement outcome unknown, retry with the same reference",
		})
	default:
		return utils.InternalError(c, "Failed to process transaction")
	}
}
