package models

// Derived economics values are computed by these functions at write time
// rather than stored as independently editable fields, so the stored numbers
// can never drift from their inputs.

// TokenPrice is the price of one token: totalValue / totalTokens.
func TokenPrice(totalValue float64, totalTokens int64) float64 {
	if totalTokens <= 0 {
		return 0
	}
	return totalValue / float64(totalTokens)
}

// RentalYield is the annualized rent as a percentage of total value.
func RentalYield(monthlyRent, totalValue float64) float64 {
	if totalValue <= 0 {
		return 0
	}
	return (monthlyRent * 12 / totalValue) * 100
}

// OwnershipPercentage is the share of a property a token count represents.
func OwnershipPercentage(tokensOwned, totalTokens int64) float64 {
	if totalTokens <= 0 {
		return 0
	}
	return float64(tokensOwned) / float64(totalTokens) * 100
}
