package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"veripay/internal/models"
	"veripay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeLedgerRepo is an in-memory LedgerRepository with the same
// contract as the gorm implementation: conditional decrement, unique
// references, transactional rollback.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	accounts map[uint]*models.VirtualAccount
	byUser   map[uint]uint
	txns     map[string]*models.Transaction
	order    []string
	nextID   uint
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		accounts: make(map[uint]*models.VirtualAccount),
		byUser:   make(map[uint]uint),
		txns:     make(map[string]*models.Transaction),
	}
}

func (f *fakeLedgerRepo) CreateAccount(acct *models.VirtualAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	acct.ID = f.nextID
	cp := *acct
	f.accounts[acct.ID] = &cp
	f.byUser[acct.UserID] = acct.ID
	return nil
}

func (f *fakeLedgerRepo) GetAccountByUserID(userID uint) (*models.VirtualAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getAccountByUserLocked(userID)
}

func (f *fakeLedgerRepo) getAccountByUserLocked(userID uint) (*models.VirtualAccount, error) {
	id, ok := f.byUser[userID]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	cp := *f.accounts[id]
	return &cp, nil
}

func (f *fakeLedgerRepo) GetAccountByNumber(accountNumber string) (*models.VirtualAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acct := range f.accounts {
		if acct.AccountNumber == accountNumber {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (f *fakeLedgerRepo) GetAccountByID(id uint) (*models.VirtualAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	cp := *acct
	return &cp, nil
}

func (f *fakeLedgerRepo) UpdatePinHash(accountID uint, pinHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[accountID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	acct.PinHash = pinHash
	return nil
}

func (f *fakeLedgerRepo) DebitBalance(accountID uint, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debitLocked(accountID, amount)
}

func (f *fakeLedgerRepo) debitLocked(accountID uint, amount int64) error {
	acct, ok := f.accounts[accountID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if acct.Balance < amount {
		return repositories.ErrInsufficientBalance
	}
	acct.Balance -= amount
	return nil
}

func (f *fakeLedgerRepo) CreditBalance(accountID uint, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creditLocked(accountID, amount)
}

func (f *fakeLedgerRepo) creditLocked(accountID uint, amount int64) error {
	acct, ok := f.accounts[accountID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	acct.Balance += amount
	return nil
}

func (f *fakeLedgerRepo) CreateTransaction(txn *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createTransactionLocked(txn)
}

func (f *fakeLedgerRepo) createTransactionLocked(txn *models.Transaction) error {
	if _, exists := f.txns[txn.Reference]; exists {
		return repositories.ErrDuplicateReference
	}
	cp := *txn
	f.txns[txn.Reference] = &cp
	f.order = append(f.order, txn.Reference)
	return nil
}

func (f *fakeLedgerRepo) GetTransactionByReference(reference string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn, ok := f.txns[reference]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *txn
	return &cp, nil
}

func (f *fakeLedgerRepo) GetTransactionHistory(_ context.Context, accountID uint, limit, offset int) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.Transaction
	for i := len(f.order) - 1; i >= 0; i-- {
		txn := f.txns[f.order[i]]
		if txn.AccountID == accountID {
			all = append(all, *txn)
		}
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// ExecuteInTransaction snapshots state and rolls back on error, like a
// real database transaction.
func (f *fakeLedgerRepo) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapAccounts := make(map[uint]*models.VirtualAccount, len(f.accounts))
	for id, acct := range f.accounts {
		cp := *acct
		snapAccounts[id] = &cp
	}
	snapTxns := make(map[string]*models.Transaction, len(f.txns))
	for ref, txn := range f.txns {
		cp := *txn
		snapTxns[ref] = &cp
	}
	snapOrder := append([]string(nil), f.order...)

	if err := fn(&fakeTxRepo{f}); err != nil {
		f.accounts = snapAccounts
		f.txns = snapTxns
		f.order = snapOrder
		return err
	}
	return nil
}

// fakeTxRepo runs inside the lock held by ExecuteInTransaction.
type fakeTxRepo struct {
	f *fakeLedgerRepo
}

func (t *fakeTxRepo) CreateAccount(*models.VirtualAccount) error { panic("not used in tx") }
func (t *fakeTxRepo) GetAccountByUserID(userID uint) (*models.VirtualAccount, error) {
	return t.f.getAccountByUserLocked(userID)
}
func (t *fakeTxRepo) GetAccountByNumber(string) (*models.VirtualAccount, error) {
	panic("not used in tx")
}
func (t *fakeTxRepo) GetAccountByID(uint) (*models.VirtualAccount, error) { panic("not used in tx") }
func (t *fakeTxRepo) UpdatePinHash(uint, string) error                    { panic("not used in tx") }
func (t *fakeTxRepo) DebitBalance(accountID uint, amount int64) error {
	return t.f.debitLocked(accountID, amount)
}
func (t *fakeTxRepo) CreditBalance(accountID uint, amount int64) error {
	return t.f.creditLocked(accountID, amount)
}
func (t *fakeTxRepo) CreateTransaction(txn *models.Transaction) error {
	return t.f.createTransactionLocked(txn)
}
func (t *fakeTxRepo) GetTransactionByReference(string) (*models.Transaction, error) {
	panic("not used in tx")
}
func (t *fakeTxRepo) GetTransactionHistory(context.Context, uint, int, int) ([]models.Transaction, error) {
	panic("not used in tx")
}
func (t *fakeTxRepo) ExecuteInTransaction(func(repositories.LedgerRepository) error) error {
	panic("nested transactions not supported")
}

const testPin = "1234"

func seedAccount(t *testing.T, repo *fakeLedgerRepo, userID uint, balance int64, withPin bool) *models.VirtualAccount {
	t.Helper()
	acct := &models.VirtualAccount{
		UserID:        userID,
		AccountNumber: fmt.Sprintf("30000000%02d", userID),
		Balance:       balance,
	}
	if withPin {
		hash, err := bcrypt.GenerateFromPassword([]byte(testPin), bcrypt.MinCost)
		require.NoError(t, err)
		acct.PinHash = string(hash)
	}
	require.NoError(t, repo.CreateAccount(acct))
	return acct
}

func successAction() ExternalAction {
	return func(context.Context) (models.JSON, error) {
		return models.JSON{"provider_status": "successful"}, nil
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		amount  int64
		pin     string
		seed    func(*fakeLedgerRepo)
		wantErr error
	}{
		{
			name:   "authorized spend",
			userID: 1, amount: 300, pin: testPin,
			seed: func(r *fakeLedgerRepo) { seedAccount(t, r, 1, 1000, true) },
		},
		{
			name:   "account not found",
			userID: 99, amount: 100, pin: testPin,
			seed:    func(r *fakeLedgerRepo) {},
			wantErr: ErrAccountNotFound,
		},
		{
			name:   "pin not set",
			userID: 1, amount: 100, pin: testPin,
			seed:    func(r *fakeLedgerRepo) { seedAccount(t, r, 1, 1000, false) },
			wantErr: ErrPinNotSet,
		},
		{
			name:   "incorrect pin",
			userID: 1, amount: 100, pin: "9999",
			seed:    func(r *fakeLedgerRepo) { seedAccount(t, r, 1, 1000, true) },
			wantErr: ErrIncorrectPin,
		},
		{
			name:   "insufficient balance",
			userID: 1, amount: 5000, pin: testPin,
			seed:    func(r *fakeLedgerRepo) { seedAccount(t, r, 1, 1000, true) },
			wantErr: ErrInsufficientBalance,
		},
		{
			name:   "zero amount rejected",
			userID: 1, amount: 0, pin: testPin,
			seed:    func(r *fakeLedgerRepo) { seedAccount(t, r, 1, 1000, true) },
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeLedgerRepo()
			tt.seed(repo)
			svc := NewService(repo, nil, nil)

			acct, err := svc.Authorize(context.Background(), tt.userID, tt.amount, tt.pin)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, acct)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.userID, acct.UserID)
		})
	}
}

func TestAuthorize_DoesNotMutateBalance(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	_, err := svc.Authorize(context.Background(), 1, 300, testPin)
	require.NoError(t, err)

	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Balance)
}

func TestSettleDebit_Success(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	result, err := svc.SettleDebit(context.Background(), DebitRequest{
		UserID:      1,
		Amount:      300,
		Pin:         testPin,
		Kind:        models.KindAirtimePurchase,
		Description: "Airtime purchase: MTN VTU - 08031234567",
	}, successAction())

	require.NoError(t, err)
	assert.Equal(t, models.DirectionDebit, result.Direction)
	assert.Equal(t, models.StatusSuccess, result.Status)
	assert.Equal(t, int64(700), result.NewBalance)
	assert.False(t, result.Replayed)
	assert.NotEmpty(t, result.Reference)

	txn, err := repo.GetTransactionByReference(result.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, txn.Status)
	assert.Equal(t, int64(300), txn.Amount)
	assert.Equal(t, "successful", txn.Metadata["provider_status"])
}

func TestSettleDebit_ExternalActionFailure(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	providerErr := errors.New("provider timeout")
	_, err := svc.SettleDebit(context.Background(), DebitRequest{
		UserID:    1,
		Amount:    300,
		Pin:       testPin,
		Reference: "AIR-FAIL-1",
		Kind:      models.KindAirtimePurchase,
	}, func(context.Context) (models.JSON, error) {
		return nil, providerErr
	})

	var actionErr *ExternalActionError
	require.ErrorAs(t, err, &actionErr)
	assert.ErrorIs(t, actionErr, providerErr)

	// Balance untouched, attempt audited as failed.
	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Balance)

	txn, err := repo.GetTransactionByReference("AIR-FAIL-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, txn.Status)
	assert.Equal(t, "provider timeout", txn.Metadata["failure_reason"])
}

func TestSettleDebit_IncorrectPinLeavesNoTrace(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	invoked := false
	_, err := svc.SettleDebit(context.Background(), DebitRequest{
		UserID: 1,
		Amount: 300,
		Pin:    "0000",
		Kind:   models.KindAirtimePurchase,
	}, func(context.Context) (models.JSON, error) {
		invoked = true
		return nil, nil
	})

	assert.ErrorIs(t, err, ErrIncorrectPin)
	assert.False(t, invoked, "external action must not run on failed authorization")

	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Balance)
	assert.Empty(t, repo.order)
}

func TestSettleDebit_ReplaySuccessfulReference(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	req := DebitRequest{
		UserID:    1,
		Amount:    300,
		Pin:       testPin,
		Reference: "AIR-REF-1",
		Kind:      models.KindAirtimePurchase,
	}

	first, err := svc.SettleDebit(context.Background(), req, successAction())
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	invocations := 0
	second, err := svc.SettleDebit(context.Background(), req, func(context.Context) (models.JSON, error) {
		invocations++
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, models.StatusSuccess, second.Status)
	assert.Equal(t, int64(300), second.Amount)
	assert.Equal(t, int64(700), second.NewBalance, "replay reports the current balance")
	assert.Zero(t, invocations, "replay must not re-invoke the external action")

	// Debited exactly once.
	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), acct.Balance)
}

func TestSettleDebit_ReplayFailedReference(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	req := DebitRequest{
		UserID:    1,
		Amount:    300,
		Pin:       testPin,
		Reference: "AIR-REF-2",
		Kind:      models.KindAirtimePurchase,
	}

	_, err := svc.SettleDebit(context.Background(), req, func(context.Context) (models.JSON, error) {
		return nil, errors.New("provider rejected")
	})
	require.Error(t, err)

	// The recorded failure is replayed; the action does not get a second
	// chance under the same reference.
	result, err := svc.SettleDebit(context.Background(), req, successAction())
	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, models.StatusFailed, result.Status)

	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), acct.Balance)
}

func TestSettleDebit_ForeignReferenceRejected(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	seedAccount(t, repo, 2, 50, true)
	svc := NewService(repo, nil, nil)

	_, err := svc.SettleDebit(context.Background(), DebitRequest{
		UserID:    1,
		Amount:    300,
		Pin:       testPin,
		Reference: "SHARED-REF",
		Kind:      models.KindAirtimePurchase,
	}, successAction())
	require.NoError(t, err)

	// Another wallet reusing the reference must not see the recorded
	// outcome, regardless of pin or amount.
	invoked := false
	_, err = svc.SettleDebit(context.Background(), DebitRequest{
		UserID:    2,
		Amount:    999999,
		Pin:       "0000",
		Reference: "SHARED-REF",
		Kind:      models.KindAirtimePurchase,
	}, func(context.Context) (models.JSON, error) {
		invoked = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrReferenceInUse)
	assert.False(t, invoked, "external action must not run for a foreign reference")

	owner, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(700), owner.Balance)

	other, err := repo.GetAccountByUserID(2)
	require.NoError(t, err)
	assert.Equal(t, int64(50), other.Balance)
}

func TestSettleDebit_ConcurrentSettlementsNeverOverdraw(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	amounts := []int64{700, 500}
	errs := make([]error, len(amounts))
	var wg sync.WaitGroup
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount int64) {
			defer wg.Done()
			_, errs[i] = svc.SettleDebit(context.Background(), DebitRequest{
				UserID: 1,
				Amount: amount,
				Pin:    testPin,
				Kind:   models.KindAirtimePurchase,
			}, successAction())
		}(i, amount)
	}
	wg.Wait()

	var succeeded int64
	failures := 0
	for i, err := range errs {
		if err == nil {
			succeeded += amounts[i]
		} else {
			failures++
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the competing settlements must lose")

	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, 1000-succeeded, acct.Balance)
	assert.GreaterOrEqual(t, acct.Balance, int64(0))
}

func TestSettleCredit_Success(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 0, false)
	svc := NewService(repo, nil, nil)

	result, err := svc.SettleCredit(context.Background(), CreditRequest{
		UserID:      1,
		Amount:      500000,
		Reference:   "MNFY-REF-1",
		Description: "Deposit to virtual account",
	})

	require.NoError(t, err)
	assert.Equal(t, models.DirectionCredit, result.Direction)
	assert.Equal(t, int64(500000), result.NewBalance)
	assert.False(t, result.Replayed)

	txn, err := repo.GetTransactionByReference("MNFY-REF-1")
	require.NoError(t, err)
	assert.Equal(t, models.KindWalletTopup, txn.Kind)
}

func TestSettleCredit_ReplayCreditsOnce(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 0, false)
	svc := NewService(repo, nil, nil)

	req := CreditRequest{UserID: 1, Amount: 500000, Reference: "R1"}

	first, err := svc.SettleCredit(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := svc.SettleCredit(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, models.StatusSuccess, second.Status)
	assert.Equal(t, int64(500000), second.NewBalance, "replay reports the current balance")

	acct, err := repo.GetAccountByUserID(1)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), acct.Balance, "replayed delivery must not credit twice")
}

func TestSettleCredit_ForeignReferenceRejected(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 0, false)
	seedAccount(t, repo, 2, 0, false)
	svc := NewService(repo, nil, nil)

	_, err := svc.SettleCredit(context.Background(), CreditRequest{UserID: 1, Amount: 500000, Reference: "MNFY-REF-9"})
	require.NoError(t, err)

	_, err = svc.SettleCredit(context.Background(), CreditRequest{UserID: 2, Amount: 500000, Reference: "MNFY-REF-9"})
	assert.ErrorIs(t, err, ErrReferenceInUse)

	other, err := repo.GetAccountByUserID(2)
	require.NoError(t, err)
	assert.Zero(t, other.Balance)
}

func TestSettleCredit_Validation(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 0, false)
	svc := NewService(repo, nil, nil)

	_, err := svc.SettleCredit(context.Background(), CreditRequest{UserID: 1, Amount: 100})
	assert.ErrorIs(t, err, ErrMissingReference)

	_, err = svc.SettleCredit(context.Background(), CreditRequest{UserID: 1, Amount: 0, Reference: "R2"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSetPin(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 0, false)
	svc := NewService(repo, nil, nil)

	t.Run("rejects malformed pin", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetPin(context.Background(), 1, "12a4"), ErrInvalidPin)
		assert.ErrorIs(t, svc.SetPin(context.Background(), 1, "12345"), ErrInvalidPin)
	})

	t.Run("sets once", func(t *testing.T) {
		require.NoError(t, svc.SetPin(context.Background(), 1, "4321"))

		_, err := svc.Authorize(context.Background(), 1, 1, "4321")
		assert.NotErrorIs(t, err, ErrIncorrectPin)
	})

	t.Run("second set rejected", func(t *testing.T) {
		assert.ErrorIs(t, svc.SetPin(context.Background(), 1, "1111"), ErrPinAlreadySet)
	})
}

func TestResetPin(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 1000, true)
	svc := NewService(repo, nil, nil)

	t.Run("requires current pin", func(t *testing.T) {
		assert.ErrorIs(t, svc.ResetPin(context.Background(), 1, "0000", "5678"), ErrIncorrectPin)
	})

	t.Run("rotates with correct pin", func(t *testing.T) {
		require.NoError(t, svc.ResetPin(context.Background(), 1, testPin, "5678"))

		_, err := svc.Authorize(context.Background(), 1, 100, "5678")
		assert.NoError(t, err)

		_, err = svc.Authorize(context.Background(), 1, 100, testPin)
		assert.ErrorIs(t, err, ErrIncorrectPin)
	})
}

func TestGetTransactionHistory(t *testing.T) {
	repo := newFakeLedgerRepo()
	seedAccount(t, repo, 1, 100000, true)
	svc := NewService(repo, nil, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.SettleDebit(context.Background(), DebitRequest{
			UserID: 1,
			Amount: 100,
			Pin:    testPin,
			Kind:   models.KindAirtimePurchase,
		}, successAction())
		require.NoError(t, err)
	}

	history, err := svc.GetTransactionHistory(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	rest, err := svc.GetTransactionHistory(context.Background(), 1, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
