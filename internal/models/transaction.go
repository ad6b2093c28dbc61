package models

import "time"

// Transaction directions.
const (
	DirectionCredit = "credit"
	DirectionDebit  = "debit"
)

// Transaction statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPending = "pending"
)

// Transaction kinds emitted by the services today. Kind is free text, so
// new categories do not need a schema change.
const (
	KindWalletTopup     = "wallet-topup"
	KindAirtimePurchase = "airtime-purchase"
	KindDataPurchase    = "data-purchase"
	KindNinVerification = "nin-verification"
	KindBvnVerification = "bvn-verification"
	KindIpeVerification = "ipe-verification"
	KindPersonalization = "personalization"
)

// Transaction is one committed balance mutation or failed settlement
// attempt. Rows are append-only: never updated, never deleted. Reference
// is unique across the whole ledger so a replayed write is a no-op
// rather than a second mutation.
type Transaction struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AccountID   uint      `gorm:"index;not null" json:"account_id"`
	Reference   string    `gorm:"uniqueIndex;not null" json:"reference"`
	Amount      int64     `gorm:"not null" json:"amount"`
	Direction   string    `gorm:"not null" json:"direction"`
	Status      string    `gorm:"not null;default:'pending'" json:"status"`
	Kind        string    `gorm:"not null" json:"kind"`
	Description string    `json:"description"`
	Metadata    JSON      `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
