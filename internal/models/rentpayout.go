package models

import "time"

const (
	PayoutPending    = "pending"
	PayoutProcessing = "processing"
	PayoutCompleted  = "completed"
	PayoutFailed     = "failed"
)

// RentPayout records one rent distribution for a (property, month, year)
// period. The period is unique per property, which makes payout processing
// idempotent; the record is immutable once completed.
type RentPayout struct {
	ID                 int64          `json:"id"`
	PropertyID         int64          `json:"property_id"`
	TotalRentCollected float64        `json:"total_rent_collected"`
	PayoutMonth        int            `json:"payout_month"`
	PayoutYear         int            `json:"payout_year"`
	RentPerToken       float64        `json:"rent_per_token"`
	TotalDistributed   float64        `json:"total_distributed"`
	Status             string         `json:"status"`
	ProcessedBy        int64          `json:"processed_by"`
	ProcessedAt        time.Time      `json:"processed_at"`
	Notes              string         `json:"notes,omitempty"`
	Distributions      []Distribution `json:"distributions,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// Distribution is one owner's slice of a rent payout.
type Distribution struct {
	ID         int64     `json:"id,omitempty"`
	PayoutID   int64     `json:"payout_id,omitempty"`
	UserID     int64     `json:"user_id"`
	TokensHeld int64     `json:"tokens_held"`
	AmountPaid float64   `json:"amount_paid"`
	PaidAt     time.Time `json:"paid_at"`
}
