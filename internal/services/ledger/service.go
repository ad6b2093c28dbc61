package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"veripay/internal/models"
	"veripay/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const pinBcryptCost = 12

type service struct {
	repo    repositories.LedgerRepository
	cache   AccountCache
	metrics MetricsCollector
}

// NewService creates the ledger service. The repository is required;
// cache and metrics fall back to no-ops when nil.
func NewService(repo repositories.LedgerRepository, cache AccountCache, metrics MetricsCollector) Service {
	if repo == nil {
		panic("ledger repository is required")
	}
	if cache == nil {
		cache = &noopCache{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &service{repo: repo, cache: cache, metrics: metrics}
}

// Authorize is read-only: it must not mutate the balance, because the
// external action between authorization and commit can still fail.
func (s *service) Authorize(ctx context.Context, userID uint, amount int64, pin string) (*models.VirtualAccount, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		s.metrics.RecordAuthorizationFailure("account_not_found")
		return nil, err
	}

	if !acct.HasPin() {
		s.metrics.RecordAuthorizationFailure("pin_not_set")
		return nil, ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PinHash), []byte(pin)); err != nil {
		s.metrics.RecordAuthorizationFailure("incorrect_pin")
		return nil, ErrIncorrectPin
	}

	if acct.Balance < amount {
		s.metrics.RecordAuthorizationFailure("insufficient_balance")
		return nil, ErrInsufficientBalance
	}

	return acct, nil
}

func (s *service) SettleDebit(ctx context.Context, req DebitRequest, action ExternalAction) (*SettlementResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if action == nil {
		return nil, errors.New("external action is required")
	}

	reference := req.Reference
	if reference == "" {
		reference = newReference(req.Kind)
	} else {
		// Caller-supplied references are idempotency keys: an existing
		// record of any status is replayed without re-invoking the
		// external action or touching the balance.
		if result, ok, err := s.replayByReference(ctx, req.UserID, reference); err != nil {
			return nil, err
		} else if ok {
			return result, nil
		}
	}

	acct, err := s.Authorize(ctx, req.UserID, req.Amount, req.Pin)
	if err != nil {
		return nil, err
	}

	metadata, actionErr := action(ctx)
	if actionErr != nil {
		s.appendFailedDebit(acct, req, reference, actionErr)
		s.metrics.RecordSettlement(models.DirectionDebit, req.Kind, models.StatusFailed, req.Amount)
		return nil, &ExternalActionError{Err: actionErr}
	}

	// Commit: the conditional decrement and the success record share one
	// database transaction. The decrement re-validates the balance, so a
	// concurrent settlement that won the race fails here rather than
	// overdrawing the account.
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.DebitBalance(acct.ID, req.Amount); err != nil {
			return err
		}
		return tx.CreateTransaction(&models.Transaction{
			AccountID:   acct.ID,
			Reference:   reference,
			Amount:      req.Amount,
			Direction:   models.DirectionDebit,
			Status:      models.StatusSuccess,
			Kind:        req.Kind,
			Description: req.Description,
			Metadata:    metadata,
		})
	})

	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			// The external action already happened and cannot be undone;
			// audit the attempt so the record is not lost.
			s.appendFailedDebit(acct, req, reference, err)
			s.metrics.RecordSettlement(models.DirectionDebit, req.Kind, models.StatusFailed, req.Amount)
			return nil, ErrInsufficientBalance
		case errors.Is(err, repositories.ErrDuplicateReference):
			result, ok, rerr := s.replayByReference(ctx, req.UserID, reference)
			if rerr != nil {
				return nil, rerr
			}
			if ok {
				return result, nil
			}
			return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
		default:
			s.metrics.RecordError("settle_debit", "persistence")
			return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
		}
	}

	if cerr := s.cache.InvalidateAccount(ctx, acct.UserID); cerr != nil {
		log.Printf("failed to invalidate account cache for user %d: %v", acct.UserID, cerr)
	}
	s.metrics.RecordSettlement(models.DirectionDebit, req.Kind, models.StatusSuccess, req.Amount)

	return &SettlementResult{
		Reference:  reference,
		Direction:  models.DirectionDebit,
		Status:     models.StatusSuccess,
		Amount:     req.Amount,
		NewBalance: s.currentBalance(acct.UserID, acct.Balance-req.Amount),
	}, nil
}

func (s *service) SettleCredit(ctx context.Context, req CreditRequest) (*SettlementResult, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.Reference == "" {
		return nil, ErrMissingReference
	}

	// The upstream processor delivers at least once; an already-seen
	// reference of any status means the event was handled.
	if result, ok, err := s.replayByReference(ctx, req.UserID, req.Reference); err != nil {
		return nil, err
	} else if ok {
		return result, nil
	}

	acct, err := s.getAccount(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindWalletTopup
	}

	// The ledger insert goes first inside the transaction: the unique
	// reference index is the gate, so of two concurrent deliveries only
	// one increment can commit.
	err = s.repo.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := tx.CreateTransaction(&models.Transaction{
			AccountID:   acct.ID,
			Reference:   req.Reference,
			Amount:      req.Amount,
			Direction:   models.DirectionCredit,
			Status:      models.StatusSuccess,
			Kind:        kind,
			Description: req.Description,
		}); err != nil {
			return err
		}
		return tx.CreditBalance(acct.ID, req.Amount)
	})

	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateReference) {
			result, ok, rerr := s.replayByReference(ctx, req.UserID, req.Reference)
			if rerr != nil {
				return nil, rerr
			}
			if ok {
				return result, nil
			}
		}
		s.metrics.RecordError("settle_credit", "persistence")
		return nil, fmt.Errorf("%w: %v", ErrIndeterminate, err)
	}

	if cerr := s.cache.InvalidateAccount(ctx, acct.UserID); cerr != nil {
		log.Printf("failed to invalidate account cache for user %d: %v", acct.UserID, cerr)
	}
	s.metrics.RecordSettlement(models.DirectionCredit, kind, models.StatusSuccess, req.Amount)

	return &SettlementResult{
		Reference:  req.Reference,
		Direction:  models.DirectionCredit,
		Status:     models.StatusSuccess,
		Amount:     req.Amount,
		NewBalance: s.currentBalance(acct.UserID, acct.Balance+req.Amount),
	}, nil
}

func (s *service) SetPin(ctx context.Context, userID uint, pin string) error {
	if !validPin(pin) {
		return ErrInvalidPin
	}

	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		return err
	}
	if acct.HasPin() {
		return ErrPinAlreadySet
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinBcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	if err := s.repo.UpdatePinHash(acct.ID, string(hash)); err != nil {
		return err
	}
	if cerr := s.cache.InvalidateAccount(ctx, userID); cerr != nil {
		log.Printf("failed to invalidate account cache for user %d: %v", userID, cerr)
	}
	return nil
}

func (s *service) ResetPin(ctx context.Context, userID uint, currentPin, newPin string) error {
	if !validPin(newPin) {
		return ErrInvalidPin
	}

	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		return err
	}
	if !acct.HasPin() {
		return ErrPinNotSet
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PinHash), []byte(currentPin)); err != nil {
		return ErrIncorrectPin
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), pinBcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	if err := s.repo.UpdatePinHash(acct.ID, string(hash)); err != nil {
		return err
	}
	if cerr := s.cache.InvalidateAccount(ctx, userID); cerr != nil {
		log.Printf("failed to invalidate account cache for user %d: %v", userID, cerr)
	}
	return nil
}

func (s *service) GetAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error) {
	return s.getAccount(ctx, userID)
}

func (s *service) GetTransactionHistory(ctx context.Context, userID uint, limit, offset int) ([]models.Transaction, error) {
	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetTransactionHistory(ctx, acct.ID, limit, offset)
}

// Helpers

func (s *service) getAccount(ctx context.Context, userID uint) (*models.VirtualAccount, error) {
	if acct, err := s.cache.GetAccount(ctx, userID); err == nil && acct != nil {
		return acct, nil
	}

	acct, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if cerr := s.cache.CacheAccount(ctx, acct); cerr != nil {
		log.Printf("failed to cache account for user %d: %v", userID, cerr)
	}
	return acct, nil
}

// replayByReference returns the recorded outcome for an already-settled
// reference, or ok=false when the reference is unseen. The record must
// belong to the caller's account: references are idempotency keys scoped
// to one wallet, so a foreign record is rejected rather than replayed.
func (s *service) replayByReference(ctx context.Context, userID uint, reference string) (*SettlementResult, bool, error) {
	existing, err := s.repo.GetTransactionByReference(reference)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to check reference: %w", err)
	}

	acct, err := s.getAccount(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if existing.AccountID != acct.ID {
		return nil, false, ErrReferenceInUse
	}

	return &SettlementResult{
		Reference:  existing.Reference,
		Direction:  existing.Direction,
		Status:     existing.Status,
		Amount:     existing.Amount,
		NewBalance: s.currentBalance(userID, acct.Balance),
		Replayed:   true,
	}, true, nil
}

// appendFailedDebit writes the audit record for a settlement that did
// not move money. Failures here are logged, not surfaced: the audit
// trail must not mask the original outcome.
func (s *service) appendFailedDebit(acct *models.VirtualAccount, req DebitRequest, reference string, cause error) {
	txn := &models.Transaction{
		AccountID:   acct.ID,
		Reference:   reference,
		Amount:      req.Amount,
		Direction:   models.DirectionDebit,
		Status:      models.StatusFailed,
		Kind:        req.Kind,
		Description: req.Description,
		Metadata:    models.JSON{"failure_reason": cause.Error()},
	}
	if err := s.repo.CreateTransaction(txn); err != nil && !errors.Is(err, repositories.ErrDuplicateReference) {
		log.Printf("failed to record failed debit %s: %v", reference, err)
	}
}

// currentBalance re-reads the committed balance; fallback is used when
// the read fails so the caller still gets a best-effort figure.
func (s *service) currentBalance(userID uint, fallback int64) int64 {
	acct, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		return fallback
	}
	return acct.Balance
}

func newReference(kind string) string {
	prefix := strings.ToUpper(strings.ReplaceAll(kind, "-", ""))
	if prefix == "" {
		prefix = "TXN"
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

func validPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

type noopCache struct{}

func (n *noopCache) GetAccount(context.Context, uint) (*models.VirtualAccount, error) {
	return nil, errors.New("no cache")
}
func (n *noopCache) CacheAccount(context.Context, *models.VirtualAccount) error { return nil }
func (n *noopCache) InvalidateAccount(context.Context, uint) error              { return nil }
