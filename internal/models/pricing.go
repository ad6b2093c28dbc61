package models

import "time"

// Service catalog names. Each paid operation resolves its charge through
// one of these rows.
const (
	ServiceNinVerification = "nin_verification"
	ServiceBvnVerification = "bvn_verification"
	ServiceIpeVerification = "ipe_verification"
	ServiceAirtime         = "airtime"
	ServiceData            = "data"
	ServicePersonalization = "personalization"
)

// Pricing is one row of the service catalog. CostPrice is what the
// upstream provider charges, SellingPrice is what the user is billed;
// both in kobo.
type Pricing struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	ServiceName  string    `gorm:"uniqueIndex;not null" json:"service_name"`
	DisplayName  string    `gorm:"not null" json:"display_name"`
	Description  string    `json:"description"`
	CostPrice    int64     `gorm:"not null" json:"cost_price"`
	SellingPrice int64     `gorm:"not null" json:"selling_price"`
	Currency     string    `gorm:"default:'NGN'" json:"currency"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	Provider     string    `json:"provider"`
	Category     string    `json:"category"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PricingUpdate enumerates the fields an admin is allowed to change.
// Nil pointers leave the column untouched; there is no dynamic field
// merging anywhere in the update path.
type PricingUpdate struct {
	DisplayName  *string `json:"display_name"`
	Description  *string `json:"description"`
	CostPrice    *int64  `json:"cost_price" validate:"omitempty,gt=0"`
	SellingPrice *int64  `json:"selling_price" validate:"omitempty,gt=0"`
	IsActive     *bool   `json:"is_active"`
	Provider     *string `json:"provider"`
}
