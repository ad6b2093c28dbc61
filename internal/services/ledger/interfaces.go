package ledger

import (
	"context"

	"veripay/internal/models"
)

// Service is the only write path to wallet balances. No other package
// mutates an account balance; collaborators pass their provider call in
// as the external action and the ledger decides whether money moves.
type Service interface {
	// Authorize validates a requested spend without side effects:
	// account exists, PIN matches, balance covers the amount.
	Authorize(ctx context.Context, userID uint, amount int64, pin string) (*models.VirtualAccount, error)

	// SettleDebit runs authorize -> external action -> atomic commit.
	// The debit is applied only after the external action confirms
	// success; a failed action leaves the balance untouched and appends
	// a failed audit record.
	SettleDebit(ctx context.Context, req DebitRequest, action ExternalAction) (*SettlementResult, error)

	// SettleCredit applies a top-up exactly once per reference.
	SettleCredit(ctx context.Context, req CreditRequest) (*SettlementResult, error)

	// PIN management. SetPin is set-once; ResetPin requires the current
	// PIN.
	SetPin(ctx context.Context, userID uint, pin string) error
	ResetPin(ctx context.Context, userID uint, currentPin, newPin string) error

	// Reads.
	GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error)
	GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error)
}
