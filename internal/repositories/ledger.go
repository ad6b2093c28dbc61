package repositories

import (
	"context"

	"veripay/internal/models"
)

// LedgerRepository is the only write path to account balances and the
// transaction ledger. Balance mutations are conditional single-statement
// updates so the check-and-decrement is one indivisible step even under
// concurrent settlements.
type LedgerRepository interface {
	CreateAccount(acct *models.VirtualAccount) error
	GetAccountByUserID(userID uint) (*models.VirtualAccount, error)
	GetAccountByNumber(accountNumber string) (*models.VirtualAccount, error)
	GetAccountByID(id uint) (*models.VirtualAccount, error)
	UpdatePinHash(accountID uint, pinHash string) error

	// DebitBalance decrements only when balance >= amount, returning
	// ErrInsufficientBalance otherwise. CreditBalance increments
	// unconditionally.
	DebitBalance(accountID uint, amount int64) error
	CreditBalance(accountID uint, amount int64) error

	// CreateTransaction appends to the ledger. A duplicate reference
	// surfaces as ErrDuplicateReference, never as a second row.
	CreateTransaction(txn *models.Transaction) error
	GetTransactionByReference(reference string) (*models.Transaction, error)
	GetTransactionHistory(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, error)

	// ExecuteInTransaction runs fn against a repository bound to one
	// database transaction; an error rolls everything back.
	ExecuteInTransaction(fn func(LedgerRepository) error) error
}
