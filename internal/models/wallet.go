package models

import "time"

// Wallet holds one user's cash balance plus running accumulators. The
// accumulators are written alongside every balance change, never recomputed
// from the journal, so a mismatch between the two is a detectable bug.
type Wallet struct {
	ID                int64      `json:"id"`
	UserID            int64      `json:"user_id"`
	Balance           float64    `json:"balance"`
	TotalDeposited    float64    `json:"total_deposited"`
	TotalWithdrawn    float64    `json:"total_withdrawn"`
	TotalInvested     float64    `json:"total_invested"`
	TotalRentEarned   float64    `json:"total_rent_earned"`
	Currency          string     `json:"currency"`
	IsLocked          bool       `json:"is_locked"`
	LastTransactionAt *time.Time `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
