package models

import "time"

// VirtualAccount is the prepaid wallet backing every paid operation.
// Balance is held in kobo so arithmetic never touches binary floats.
// Balance is only ever mutated through the ledger service; every other
// package gets a read-only view.
type VirtualAccount struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	UserID           uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	AccountReference string    `gorm:"uniqueIndex;not null" json:"account_reference"`
	AccountNumber    string    `gorm:"index" json:"account_number"`
	AccountName      string    `json:"account_name"`
	BankName         string    `json:"bank_name"`
	CurrencyCode     string    `gorm:"default:'NGN'" json:"currency_code"`
	Balance          int64     `gorm:"not null;default:0" json:"balance"`
	PinHash          string    `gorm:"default:''" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HasPin reports whether a transaction PIN has been configured.
func (a *VirtualAccount) HasPin() bool {
	return a.PinHash != ""
}
