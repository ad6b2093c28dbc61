package handlers

import (
	"errors"

	"veripay/internal/models"
	"veripay/internal/services/account"
	"veripay/internal/services/ledger"
	"veripay/internal/utils"
	"veripay/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService  ledger.Service
	accountService account.Service
}

func NewWalletHandler(ledgerService ledger.Service, accountService account.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:  ledgerService,
		accountService: accountService,
	}
}

// extractUserClaims is a helper function to reduce duplication
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	acct, err := h.ledgerService.GetAccount(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return utils.NotFound(c, "Wallet not found")
		}
		return utils.InternalError(c, "Failed to get wallet")
	}

	return utils.Success(c, fiber.Map{
		"wallet":  acct,
		"has_pin": acct.HasPin(),
	})
}

func (h *WalletHandler) CreateWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	acct, err := h.accountService.CreateAccount(c.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAlreadyExists):
			return utils.BadRequest(c, "Wallet already exists")
		case errors.Is(err, account.ErrUserNotFound):
			return utils.NotFound(c, "User not found")
		default:
			return utils.InternalError(c, "Failed to create wallet")
		}
	}

	return utils.Created(c, fiber.Map{
		"message": "Wallet created",
		"wallet":  acct,
	})
}

func (h *WalletHandler) SetPin(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Pin string `json:"pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := h.ledgerService.SetPin(c.Context(), claims.UserID, input.Pin); err != nil {
		switch {
		case errors.Is(err, ledger.ErrPinAlreadySet):
			return utils.BadRequest(c, "Transaction pin is already set")
		case errors.Is(err, ledger.ErrAccountNotFound):
			return utils.NotFound(c, "Wallet not found")
		default:
			return utils.InternalError(c, "Failed to set pin")
		}
	}

	return utils.Success(c, fiber.Map{"message": "Transaction pin set"})
}

func (h *WalletHandler) ResetPin(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		CurrentPin string `json:"current_pin" validate:"required,txnpin"`
		NewPin     string `json:"new_pin" validate:"required,txnpin"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}
	if err := validation.Struct(&input); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if err := h.ledgerService.ResetPin(c.Context(), claims.UserID, input.CurrentPin, input.NewPin); err != nil {
		switch {
		case errors.Is(err, ledger.ErrIncorrectPin):
			return utils.Unauthorized(c, "Incorrect transaction pin")
		case errors.Is(err, ledger.ErrPinNotSet):
			return utils.BadRequest(c, "Transaction pin has not been set")
		case errors.Is(err, ledger.ErrAccountNotFound):
			return utils.NotFound(c, "Wallet not found")
		default:
			return utils.InternalError(c, "Failed to reset pin")
		}
	}

	return utils.Success(c, fiber.Map{"message": "Transaction pin updated"})
}
