// Package verification settles identity lookups (NIN, BVN, IPE) and
// NIN slip personalization. The charge comes from the pricing catalog
// and the provider lookup runs as the ledger's external action.
package verification

import (
	"context"
	"fmt"

	"veripay/internal/models"
	"veripay/internal/providers/prembly"
	"veripay/internal/services/ledger"
	"veripay/internal/services/pricing"
)

// Provider is the upstream identity verification API.
type Provider interface {
	VerifyNIN(ctx context.Context, nin string) (*prembly.VerificationResponse, error)
	VerifyBVN(ctx context.Context, bvn string) (*prembly.VerificationResponse, error)
	CheckIPE(ctx context.Context, trackingID string) (*prembly.VerificationResponse, error)
	Personalize(ctx context.Context, trackingID string) (*prembly.VerificationResponse, error)
}

// Result pairs the settlement with the provider's identity record.
type Result struct {
	Settlement *ledger.SettlementResult `json:"settlement"`
	Data       map[string]interface{}   `json:"data,omitempty"`
}

type Service interface {
	VerifyNIN(ctx context.Context, userID uint, nin, pin string) (*Result, error)
	VerifyBVN(ctx context.Context, userID uint, bvn, pin string) (*Result, error)
	CheckIPE(ctx context.Context, userID uint, trackingID, pin string) (*Result, error)
	Personalize(ctx context.Context, userID uint, trackingID, pin string) (*Result, error)
}

type service struct {
	ledger   ledger.Service
	pricing  pricing.Service
	provider Provider
}

func NewService(ledgerSvc ledger.Service, pricingSvc pricing.Service, provider Provider) Service {
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	if pricingSvc == nil {
		panic("pricing service is required")
	}
	if provider == nil {
		panic("verification provider is required")
	}
	return &service{ledger: ledgerSvc, pricing: pricingSvc, provider: provider}
}

func (s *service) VerifyNIN(ctx context.Context, userID uint, nin, pin string) (*Result, error) {
	return s.settleLookup(ctx, userID, pin,
		models.ServiceNinVerification, models.KindNinVerification,
		fmt.Sprintf("NIN verification: %s", maskNumber(nin)),
		func(ctx context.Context) (*prembly.VerificationResponse, error) {
			return s.provider.VerifyNIN(ctx, nin)
		})
}

func (s *service) VerifyBVN(ctx context.Context, userID uint, bvn, pin string) (*Result, error) {
	return s.settleLookup(ctx, userID, pin,
		models.ServiceBvnVerification, models.KindBvnVerification,
		fmt.Sprintf("BVN verification: %s", maskNumber(bvn)),
		func(ctx context.Context) (*prembly.VerificationResponse, error) {
			return s.provider.VerifyBVN(ctx, bvn)
		})
}

func (s *service) CheckIPE(ctx context.Context, userID uint, trackingID, pin string) (*Result, error) {
	return s.settleLookup(ctx, userID, pin,
		models.ServiceIpeVerification, models.KindIpeVerification,
		fmt.Sprintf("IPE status check: %s", trackingID),
		func(ctx context.Context) (*prembly.VerificationResponse, error) {
			return s.provider.CheckIPE(ctx, trackingID)
		})
}

// Personalize orders a personalized NIN slip for a cleared tracking id.
func (s *service) Personalize(ctx context.Context, userID uint, trackingID, pin string) (*Result, error) {
	return s.settleLookup(ctx, userID, pin,
		models.ServicePersonalization, models.KindPersonalization,
		fmt.Sprintf("NIN personalization: %s", trackingID),
		func(ctx context.Context) (*prembly.VerificationResponse, error) {
			return s.provider.Personalize(ctx, trackingID)
		})
}

func (s *service) settleLookup(
	ctx context.Context,
	userID uint,
	pin string,
	serviceName, kind, description string,
	lookup func(ctx context.Context) (*prembly.VerificationResponse, error),
) (*Result, error) {
	quote, err := s.pricing.Quote(ctx, serviceName)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	settlement, err := s.ledger.SettleDebit(ctx, ledger.DebitRequest{
		UserID:      userID,
		Amount:      quote.SellingPrice,
		Pin:         pin,
		Kind:        kind,
		Description: description,
	}, func(ctx context.Context) (models.JSON, error) {
		resp, err := lookup(ctx)
		if err != nil {
			return nil, err
		}
		data = resp.Data
		return models.JSON{
			"provider":            quote.Provider,
			"verification_status": resp.Verification.Status,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Settlement: settlement, Data: data}, nil
}

// maskNumber hides all but the last four digits of an identity number.
func maskNumber(v string) string {
	if len(v) <= 4 {
		return v
	}
	masked := make([]byte, len(v)-4)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + v[len(v)-4:]
}
