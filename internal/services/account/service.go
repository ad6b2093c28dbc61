// Package account provisions funding accounts. Creation talks to the
// payment processor; balance mutations stay with the ledger service.
package account

import (
	"context"
	"errors"
	"fmt"

	"veripay/internal/models"
	"veripay/internal/providers/monnify"
	"veripay/internal/repositories"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already has a virtual account")
	ErrNotFound      = errors.New("virtual account not found")
)

// Provisioner reserves a dedicated bank account with the processor.
type Provisioner interface {
	CreateReservedAccount(ctx context.Context, req monnify.ReservedAccountRequest) (*monnify.ReservedAccount, error)
}

type Service interface {
	CreateAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error)
	GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error)
}

type service struct {
	users       repositories.UserRepository
	ledgerRepo  repositories.LedgerRepository
	provisioner Provisioner
}

func NewService(users repositories.UserRepository, ledgerRepo repositories.LedgerRepository, provisioner Provisioner) Service {
	if users == nil {
		panic("user repository is required")
	}
	if ledgerRepo == nil {
		panic("ledger repository is required")
	}
	if provisioner == nil {
		panic("provisioner is required")
	}
	return &service{users: users, ledgerRepo: ledgerRepo, provisioner: provisioner}
}

// CreateAccount reserves a funding account for the user, once. The
// account starts with a zero balance and no PIN.
func (s *service) CreateAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.HasAccount {
		return nil, ErrAlreadyExists
	}
	if existing, err := s.ledgerRepo.GetAccountByUserID(userID); err == nil && existing != nil {
		return nil, ErrAlreadyExists
	}

	reserved, err := s.provisioner.CreateReservedAccount(ctx, monnify.ReservedAccountRequest{
		AccountReference: fmt.Sprintf("user_%d", user.ID),
		AccountName:      user.FullName(),
		CustomerEmail:    user.Email,
		CustomerName:     user.FullName(),
		Nin:              user.Nin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to provision funding account: %w", err)
	}

	acct := &models.VirtualAccount{
		UserID:           user.ID,
		AccountReference: reserved.AccountReference,
		AccountNumber:    reserved.AccountNumber,
		AccountName:      reserved.AccountName,
		BankName:         reserved.BankName,
		CurrencyCode:     reserved.CurrencyCode,
	}
	if err := s.ledgerRepo.CreateAccount(acct); err != nil {
		return nil, fmt.Errorf("failed to persist account: %w", err)
	}
	if err := s.users.MarkHasAccount(user.ID); err != nil {
		return nil, fmt.Errorf("failed to flag user account: %w", err)
	}

	return acct, nil
}

func (s *service) GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error) {
	acct, err := s.ledgerRepo.GetAccountByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acct, nil
}
