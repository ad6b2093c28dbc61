package verification

import (
	"context"
	"errors"
	"testing"

	"veripay/internal/models"
	"veripay/internal/providers/prembly"
	"veripay/internal/services/ledger"
	"veripay/internal/services/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedger applies the debit only when the external action succeeds,
// mirroring the real settlement order.
type fakeLedger struct {
	ledger.Service
	lastReq ledger.DebitRequest
}

func (f *fakeLedger) SettleDebit(ctx context.Context, req ledger.DebitRequest, action ledger.ExternalAction) (*ledger.SettlementResult, error) {
	f.lastReq = req
	if _, err := action(ctx); err != nil {
		return nil, &ledger.ExternalActionError{Err: err}
	}
	return &ledger.SettlementResult{
		Reference:  "VER-1",
		Direction:  models.DirectionDebit,
		Status:     models.StatusSuccess,
		Amount:     req.Amount,
		NewBalance: 100000 - req.Amount,
	}, nil
}

type fakePricing struct {
	pricing.Service
	disabled map[string]bool
}

func (f *fakePricing) Quote(_ context.Context, serviceName string) (*models.Pricing, error) {
	if f.disabled[serviceName] {
		return nil, pricing.ErrServiceDisabled
	}
	return &models.Pricing{ServiceName: serviceName, SellingPrice: 30000, Provider: "prembly", IsActive: true}, nil
}

type fakeProvider struct {
	lastCall string
	lastArg  string
	err      error
}

func (f *fakeProvider) respond(call, arg string) (*prembly.VerificationResponse, error) {
	f.lastCall = call
	f.lastArg = arg
	if f.err != nil {
		return nil, f.err
	}
	resp := &prembly.VerificationResponse{Status: true, Data: map[string]interface{}{"firstname": "Ada"}}
	resp.Verification.Status = "VERIFIED"
	return resp, nil
}

func (f *fakeProvider) VerifyNIN(_ context.Context, nin string) (*prembly.VerificationResponse, error) {
	return f.respond("nin", nin)
}

func (f *fakeProvider) VerifyBVN(_ context.Context, bvn string) (*prembly.VerificationResponse, error) {
	return f.respond("bvn", bvn)
}

func (f *fakeProvider) CheckIPE(_ context.Context, trackingID string) (*prembly.VerificationResponse, error) {
	return f.respond("ipe", trackingID)
}

func (f *fakeProvider) Personalize(_ context.Context, trackingID string) (*prembly.VerificationResponse, error) {
	return f.respond("personalize", trackingID)
}

func TestVerifyNIN(t *testing.T) {
	fl := &fakeLedger{}
	fp := &fakeProvider{}
	svc := NewService(fl, &fakePricing{}, fp)

	result, err := svc.VerifyNIN(context.Background(), 1, "12345678901", "1234")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, result.Settlement.Status)
	assert.Equal(t, "Ada", result.Data["firstname"])

	assert.Equal(t, models.KindNinVerification, fl.lastReq.Kind)
	assert.Equal(t, int64(30000), fl.lastReq.Amount, "charge comes from the catalog")
	assert.Equal(t, "NIN verification: *******8901", fl.lastReq.Description, "identity number is masked")
	assert.Equal(t, "12345678901", fp.lastArg)
}

func TestPersonalize(t *testing.T) {
	t.Run("settles against the personalization catalog entry", func(t *testing.T) {
		fl := &fakeLedger{}
		fp := &fakeProvider{}
		svc := NewService(fl, &fakePricing{}, fp)

		result, err := svc.Personalize(context.Background(), 1, "IPE-TRACK-7", "1234")
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccess, result.Settlement.Status)

		assert.Equal(t, models.KindPersonalization, fl.lastReq.Kind)
		assert.Equal(t, int64(30000), fl.lastReq.Amount)
		assert.Equal(t, "NIN personalization: IPE-TRACK-7", fl.lastReq.Description)
		assert.Equal(t, "personalize", fp.lastCall)
		assert.Equal(t, "IPE-TRACK-7", fp.lastArg)
	})

	t.Run("disabled catalog entry blocks the order", func(t *testing.T) {
		fl := &fakeLedger{}
		svc := NewService(fl, &fakePricing{disabled: map[string]bool{models.ServicePersonalization: true}}, &fakeProvider{})

		_, err := svc.Personalize(context.Background(), 1, "IPE-TRACK-7", "1234")
		assert.ErrorIs(t, err, pricing.ErrServiceDisabled)
		assert.Zero(t, fl.lastReq.Amount, "wallet must not be touched")
	})

	t.Run("provider failure surfaces as external action error", func(t *testing.T) {
		fp := &fakeProvider{err: errors.New("upstream 500")}
		svc := NewService(&fakeLedger{}, &fakePricing{}, fp)

		_, err := svc.Personalize(context.Background(), 1, "IPE-TRACK-7", "1234")
		var actionErr *ledger.ExternalActionError
		assert.ErrorAs(t, err, &actionErr)
	})
}

func TestMaskNumber(t *testing.T) {
	assert.Equal(t, "*******8901", maskNumber("12345678901"))
	assert.Equal(t, "1234", maskNumber("1234"))
}
