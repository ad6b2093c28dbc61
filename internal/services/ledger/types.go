package ledger

import (
	"context"

	"veripay/internal/models"
)

// ExternalAction is the provider call performed between authorization
// and commit. Its outcome is the single source of truth for whether the
// debit is applied. On success it may return metadata to store on the
// transaction record.
type ExternalAction func(ctx context.Context) (models.JSON, error)

// DebitRequest describes a paid operation to settle.
type DebitRequest struct {
	UserID      uint
	Amount      int64
	Pin         string
	Reference   string // optional; generated when empty
	Kind        string
	Description string
}

// CreditRequest describes a wallet top-up to settle. Reference is the
// idempotency key and is mandatory.
type CreditRequest struct {
	UserID      uint
	Amount      int64
	Reference   string
	Kind        string
	Description string
}

// SettlementResult is the terminal outcome of a settlement attempt.
type SettlementResult struct {
	Reference  string `json:"reference"`
	Direction  string `json:"direction"`
	Status     string `json:"status"`
	Amount     int64  `json:"amount"`
	NewBalance int64  `json:"new_balance"`
	// Replayed is set when an already-settled reference was observed and
	// the recorded outcome was returned without a second mutation.
	Replayed bool `json:"replayed"`
}

// AccountCache is the cache surface the ledger needs: read copies of
// accounts, invalidated after every settlement.
type AccountCache interface {
	GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error)
	CacheAccount(ctx context.Context, acct *models.VirtualAccount) error
	InvalidateAccount(ctx context.Context, userID uint) error
}
