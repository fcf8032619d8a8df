package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenPrice(t *testing.T) {
	assert.Equal(t, 50.0, TokenPrice(5000, 100))
	assert.Equal(t, 0.0, TokenPrice(5000, 0), "zero token supply must not divide")
	assert.Equal(t, 0.0, TokenPrice(5000, -1))
}

func TestRentalYield(t *testing.T) {
	// $1000/month on a $5000 property is 240% annualized.
	assert.Equal(t, 240.0, RentalYield(1000, 5000))
	assert.Equal(t, 6.0, RentalYield(500, 100000))
	assert.Equal(t, 0.0, RentalYield(1000, 0))
}

func TestOwnershipPercentage(t *testing.T) {
	assert.Equal(t, 10.0, OwnershipPercentage(10, 100))
	assert.Equal(t, 100.0, OwnershipPercentage(250, 250))
	assert.Equal(t, 0.0, OwnershipPercentage(10, 0))
}

func TestRecalculateDerived(t *testing.T) {
	p := Property{TotalValue: 5000, TotalTokens: 100, MonthlyRent: 1000}
	p.RecalculateDerived()
	assert.Equal(t, 50.0, p.TokenPrice)
	assert.Equal(t, 240.0, p.RentalYield)
}

func TestInvestmentMath(t *testing.T) {
	inv := Investment{
		Ownership: Ownership{TokensOwned: 20, TotalInvested: 900},
		Property:  Property{TokenPrice: 50, TotalTokens: 100, MonthlyRent: 1000},
	}
	assert.Equal(t, 1000.0, inv.CurrentValue())
	assert.Equal(t, 200.0, inv.MonthlyRentShare())
	assert.Equal(t, 100.0, inv.ProfitLoss())

	empty := Investment{Property: Property{TokenPrice: 50}}
	assert.Equal(t, 0.0, empty.MonthlyRentShare())
}

func TestRegistrationRole(t *testing.T) {
	assert.True(t, RegistrationRole(RoleInvestor))
	assert.True(t, RegistrationRole(RoleSeller))
	assert.False(t, RegistrationRole(RoleAdmin))
	assert.False(t, RegistrationRole("superuser"))
}
