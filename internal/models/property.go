package models

import "time"

// Property lifecycle states. Purchases are permitted only while a property
// is approved and has tokens left; tokensAvailable reaching zero flips the
// status to sold_out.
const (
	PropertyPending  = "pending"
	PropertyApproved = "approved"
	PropertyRejected = "rejected"
	PropertySoldOut  = "sold_out"
	PropertyDelisted = "delisted"
)

const (
	PropertyResidential = "residential"
	PropertyCommercial  = "commercial"
	PropertyIndustrial  = "industrial"
	PropertyLand        = "land"
)

// Property is a listed real property carved into a fixed supply of tokens.
// TokenPrice and RentalYield are derived; call RecalculateDerived after
// changing TotalValue, TotalTokens, or MonthlyRent.
type Property struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	PropertyType    string     `json:"property_type"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	State           string     `json:"state"`
	ZipCode         string     `json:"zip_code"`
	Country         string     `json:"country"`
	TotalValue      float64    `json:"total_value"`
	TotalTokens     int64      `json:"total_tokens"`
	TokenPrice      float64    `json:"token_price"`
	TokensAvailable int64      `json:"tokens_available"`
	TokensSold      int64      `json:"tokens_sold"`
	MonthlyRent     float64    `json:"monthly_rent"`
	RentalYield     float64    `json:"rental_yield"`
	SellerID        int64      `json:"seller_id"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ApprovedBy      *int64     `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	IsFeatured      bool       `json:"is_featured"`
	InvestorCount   int64      `json:"investor_count"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RecalculateDerived refreshes TokenPrice and RentalYield from their inputs.
func (p *Property) RecalculateDerived() {
	p.TokenPrice = TokenPrice(p.TotalValue, p.TotalTokens)
	p.RentalYield = RentalYield(p.MonthlyRent, p.TotalValue)
}

// PropertyFilter narrows public property listings.
type PropertyFilter struct {
	Status       string
	PropertyType string
	City         string
	MinPrice     *float64
	MaxPrice     *float64
	Search       string
	Limit        int
	Offset       int
}
