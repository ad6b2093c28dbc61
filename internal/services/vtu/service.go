// Package vtu settles airtime and data purchases. The provider top-up
// runs as the ledger's external action, so the wallet is only debited
// when the provider confirms delivery.
package vtu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"veripay/internal/models"
	"veripay/internal/providers/husmodata"
	"veripay/internal/services/ledger"
	"veripay/internal/services/pricing"
)

var (
	ErrInvalidNetwork  = errors.New("invalid network")
	ErrInvalidPlanType = errors.New("invalid plan type, use VTU or SHARE")

	// Airtime is delivered in whole naira; a fractional amount would
	// debit more kobo than the provider delivers.
	ErrFractionalAmount = errors.New("airtime amount must be a multiple of 100 kobo")
)

// Provider is the upstream VTU API.
type Provider interface {
	BuyAirtime(ctx context.Context, req husmodata.AirtimeRequest) (*husmodata.TopupResponse, error)
	BuyData(ctx context.Context, req husmodata.DataRequest) (*husmodata.TopupResponse, error)
}

// AirtimeRequest is a user's airtime purchase. Amount is the face value
// in kobo and is also the wallet charge.
type AirtimeRequest struct {
	UserID   uint
	Network  int
	Phone    string
	PlanType string
	Amount   int64
	Pin      string
}

// DataRequest is a user's data bundle purchase.
type DataRequest struct {
	UserID  uint
	Network int
	Phone   string
	PlanID  int
	Amount  int64
	Pin     string
}

// PurchaseResult pairs the settlement with the provider's message.
type PurchaseResult struct {
	Settlement      *ledger.SettlementResult `json:"settlement"`
	ProviderMessage string                   `json:"provider_message,omitempty"`
}

type Service interface {
	BuyAirtime(ctx context.Context, req AirtimeRequest) (*PurchaseResult, error)
	BuyData(ctx context.Context, req DataRequest) (*PurchaseResult, error)
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
	if provider == nil {
		panic("vtu provider is required")
	}
	return &service{ledger: ledgerSvc, pricing: pricingSvc, provider: provider}
}

func (s *service) BuyAirtime(ctx context.Context, req AirtimeRequest) (*PurchaseResult, error) {
	network, ok := husmodata.NetworkNames[req.Network]
	if !ok {
		return nil, ErrInvalidNetwork
	}
	planType := strings.ToUpper(req.PlanType)
	if planType != "VTU" && planType != "SHARE" {
		return nil, ErrInvalidPlanType
	}
	if req.Amount%100 != 0 {
		return nil, ErrFractionalAmount
	}

	// Catalog gate only; airtime is billed at face value.
	if _, err := s.pricing.Quote(ctx, models.ServiceAirtime); err != nil {
		return nil, err
	}

	var message string
	settlement, err := s.ledger.SettleDebit(ctx, ledger.DebitRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Pin:         req.Pin,
		Kind:        models.KindAirtimePurchase,
		Description: fmt.Sprintf("Airtime purchase: %s %s - %s", network, planType, req.Phone),
	}, func(ctx context.Context) (models.JSON, error) {
		resp, err := s.provider.BuyAirtime(ctx, husmodata.AirtimeRequest{
			Network:      req.Network,
			Amount:       req.Amount / 100,
			MobileNumber: req.Phone,
			PortedNumber: true,
			AirtimeType:  planType,
		})
		if err != nil {
			return nil, err
		}
		message = resp.Message
		return models.JSON{
			"provider":        "husmodata",
			"provider_status": resp.Status,
			"network":         network,
			"phone":           req.Phone,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseResult{Settlement: settlement, ProviderMessage: message}, nil
}

func (s *service) BuyData(ctx context.Context, req DataRequest) (*PurchaseResult, error) {
	network, ok := husmodata.NetworkNames[req.Network]
	if !ok {
		return nil, ErrInvalidNetwork
	}

	if _, err := s.pricing.Quote(ctx, models.ServiceData); err != nil {
		return nil, err
	}

	var message string
	settlement, err := s.ledger.SettleDebit(ctx, ledger.DebitRequest{
		UserID:      req.UserID,
		Amount:      req.Amount,
		Pin:         req.Pin,
		Kind:        models.KindDataPurchase,
		Description: fmt.Sprintf("Data purchase: %s plan %d - %s", network, req.PlanID, req.Phone),
	}, func(ctx context.Context) (models.JSON, error) {
		resp, err := s.provider.BuyData(ctx, husmodata.DataRequest{
			Network:      req.Network,
			MobileNumber: req.Phone,
			Plan:         req.PlanID,
			PortedNumber: true,
		})
		if err != nil {
			return nil, err
		}
		message = resp.Message
		return models.JSON{
			"provider":        "husmodata",
			"provider_status": resp.Status,
			"network":         network,
			"phone":           req.Phone,
			"plan_id":         req.PlanID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &PurchaseResult{Settlement: settlement, ProviderMessage: message}, nil
}
