// Package webhook ingests asynchronous payment notifications. Events are
// authenticated against the shared HMAC secret, deduplicated through the
// transaction ledger, and credited exactly once.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"veripay/internal/models"
	"veripay/internal/repositories"
	"veripay/internal/services/ledger"
)

// AccountResolver maps a destination account number to the owning
// wallet.
type AccountResolver interface {
	GetAccountByNumber(accountNumber string) (*models.VirtualAccount, error)
}

// Ingestor authenticates, deduplicates and settles processor events.
type Ingestor struct {
	secret   []byte
	accounts AccountResolver
	ledger   ledger.Service
}

func NewIngestor(secret string, accounts AccountResolver, ledgerSvc ledger.Service) *Ingestor {
	if accounts == nil {
		panic("account resolver is required")
	}
	if ledgerSvc == nil {
		panic("ledger service is required")
	}
	return &Ingestor{secret: []byte(secret), accounts: accounts, ledger: ledgerSvc}
}

// Ingest processes one delivery. Signature failures, foreign events and
// unknown accounts are acknowledged without mutation; only a storage
// fault during the credit commit is returned as an error.
func (i *Ingestor) Ingest(ctx context.Context, rawBody []byte, signature string) (*AckResult, error) {
	if !i.validSignature(rawBody, signature) {
		log.Printf("webhook signature mismatch, event dropped")
		return &AckResult{Outcome: OutcomeInvalidSignature}, nil
	}

	var event Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		log.Printf("webhook payload unreadable: %v", err)
		return &AckResult{Outcome: OutcomeInvalidPayload}, nil
	}

	if event.EventType != EventSuccessfulTransaction {
		return &AckResult{Outcome: OutcomeIgnoredEvent}, nil
	}

	data := event.EventData
	if data.TransactionReference == "" || data.DestinationAccountNumber == "" || data.AmountPaid <= 0 {
		log.Printf("webhook funding event missing fields, reference=%q account=%q",
			data.TransactionReference, data.DestinationAccountNumber)
		return &AckResult{Outcome: OutcomeInvalidPayload}, nil
	}

	acct, err := i.accounts.GetAccountByNumber(data.DestinationAccountNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			// Usually a race with account provisioning or an event for a
			// different tenant. Not an error worth a retry storm.
			log.Printf("webhook for unknown account %s ignored", data.DestinationAccountNumber)
			return &AckResult{Outcome: OutcomeUnknownAccount}, nil
		}
		return nil, fmt.Errorf("failed to resolve account: %w", err)
	}

	description := data.PaymentDescription
	if description == "" {
		description = "Deposit to virtual account"
	}

	result, err := i.ledger.SettleCredit(ctx, ledger.CreditRequest{
		UserID:      acct.UserID,
		Amount:      nairaToKobo(data.AmountPaid),
		Reference:   data.TransactionReference,
		Kind:        models.KindWalletTopup,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrReferenceInUse) {
			// The reference is already settled against another wallet.
			// Redelivery cannot change that; ack it and keep the log.
			log.Printf("webhook reference %s already recorded for a different account", data.TransactionReference)
			return &AckResult{Outcome: OutcomeReferenceConflict, Reference: data.TransactionReference}, nil
		}
		return nil, fmt.Errorf("failed to settle credit %s: %w", data.TransactionReference, err)
	}

	if result.Replayed {
		return &AckResult{Outcome: OutcomeAlreadyProcessed, Reference: result.Reference}, nil
	}
	return &AckResult{Outcome: OutcomeCredited, Reference: result.Reference}, nil
}

// validSignature checks the HMAC-SHA512 hex digest of the exact raw
// request bytes. Comparison is constant-time.
func (i *Ingestor) validSignature(rawBody []byte, signature string) bool {
	if len(i.secret) == 0 || signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, i.secret)
	mac.Write(rawBody)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(provided, expected)
}

func nairaToKobo(naira float64) int64 {
	return int64(math.Round(naira * 100))
}
