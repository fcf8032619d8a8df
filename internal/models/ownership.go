package models

import "time"

// Ownership is the per-user, per-property ledger of tokens held. One row per
// (user, property) pair; subsequent purchases update the row in place.
type Ownership struct {
	ID                  int64      `json:"id"`
	UserID              int64      `json:"user_id"`
	PropertyID          int64      `json:"property_id"`
	TokensOwned         int64      `json:"tokens_owned"`
	PurchasePrice       float64    `json:"purchase_price"`
	TotalInvested       float64    `json:"total_invested"`
	OwnershipPercentage float64    `json:"ownership_percentage"`
	RentEarned          float64    `json:"rent_earned"`
	LastRentPayoutAt    *time.Time `json:"last_rent_payout_at,omitempty"`
	IsActive            bool       `json:"is_active"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Investment pairs an ownership row with its property for portfolio views.
type Investment struct {
	Ownership Ownership `json:"ownership"`
	Property  Property  `json:"property"`
}

// CurrentValue is the mark-to-token-price value of the held tokens.
func (i Investment) CurrentValue() float64 {
	return float64(i.Ownership.TokensOwned) * i.Property.TokenPrice
}

// MonthlyRentShare is the owner's proportional slice of the monthly rent.
func (i Investment) MonthlyRentShare() float64 {
	if i.Property.TotalTokens <= 0 {
		return 0
	}
	return float64(i.Ownership.TokensOwned) / float64(i.Property.TotalTokens) * i.Property.MonthlyRent
}

// ProfitLoss is current value minus cost basis.
func (i Investment) ProfitLoss() float64 {
	return i.CurrentValue() - i.Ownership.TotalInvested
}
