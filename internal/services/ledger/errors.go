package ledger

import (
	"errors"
	"fmt"
)

// Service errors
var (
	// Validation failures, rejected before the ledger is touched.
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrInvalidPin       = errors.New("pin must be exactly 4 digits")
	ErrMissingReference = errors.New("transaction reference is required")

	// Authorization failures, rejected before the external call.
	ErrAccountNotFound     = errors.New("account not found")
	ErrPinNotSet           = errors.New("transaction pin has not been set")
	ErrPinAlreadySet       = errors.New("transaction pin is already set")
	ErrIncorrectPin        = errors.New("incorrect transaction pin")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrReferenceInUse rejects a reference already recorded for a
	// different account. References are idempotency keys scoped to one
	// wallet; another wallet's history is never replayable.
	ErrReferenceInUse = errors.New("transaction reference belongs to another account")

	// ErrIndeterminate signals a storage fault during the atomic commit:
	// the outcome of the mutation is unknown and the caller must retry
	// with the same reference rather than assume either result.
	ErrIndeterminate = errors.New("settlement outcome indeterminate, retry with the same reference")
)

// ExternalActionError wraps a provider call that timed out or was
// rejected. The ledger is untouched when this is returned; the attempt
// is audited as a failed transaction.
type ExternalActionError struct {
	Err error
}

func (e *ExternalActionError) Error() string {
	return fmt.Sprintf("external action failed: %v", e.Err)
}

func (e *ExternalActionError) Unwrap() error {
	return e.Err
}
