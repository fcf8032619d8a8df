package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// ownershipRegistry maintains the per-(user, property) token ledger inside
// one unit of work.
type ownershipRegistry struct {
	uow storage.UnitOfWork
	now func() time.Time
}

// recordPurchase creates the ownership row on a user's first purchase of a
// property, or increments the existing row. The ownership percentage is
// recomputed from the property's current totalTokens on every change. The
// boolean result reports whether this purchase made the user a new investor.
func (r ownershipRegistry) recordPurchase(ctx context.Context, userID, propertyID, tokens int64, pricePerToken float64, totalTokens int64) (models.Ownership, bool, error) {
	cost := float64(tokens) * pricePerToken

	existing, err := r.uow.OwnershipForUpdate(ctx, userID, propertyID)
	switch {
	case err == nil:
		existing.TokensOwned += tokens
		existing.TotalInvested += cost
		existing.OwnershipPercentage = models.OwnershipPercentage(existing.TokensOwned, totalTokens)
		if err := r.uow.UpdateOwnership(ctx, existing); err != nil {
			return models.Ownership{}, false, fmt.Errorf("update ownership: %w", err)
		}
		return existing, false, nil

	case errors.Is(err, storage.ErrNotFound):
		created, err := r.uow.CreateOwnership(ctx, models.Ownership{
			UserID:              userID,
			PropertyID:          propertyID,
			TokensOwned:         tokens,
			PurchasePrice:       pricePerToken,
			TotalInvested:       cost,
			OwnershipPercentage: models.OwnershipPercentage(tokens, totalTokens),
			IsActive:            true,
		})
		if err != nil {
			return models.Ownership{}, false, fmt.Errorf("create ownership: %w", err)
		}
		return created, true, nil

	default:
		return models.Ownership{}, false, fmt.Errorf("load ownership: %w", err)
	}
}

// creditRent adds amount to the ownership row's cumulative rent and stamps
// the payout time. It never creates a row: a missing or inactive row yields
// ErrOwnerNotFound, which the payout loop skips rather than aborts on.
func (r ownershipRegistry) creditRent(ctx context.Context, userID, propertyID int64, amount float64) error {
	o, err := r.uow.OwnershipForUpdate(ctx, userID, propertyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("load ownership: %w", err)
	}
	if !o.IsActive {
		return ErrOwnerNotFound
	}

	o.RentEarned += amount
	ts := r.now()
	o.LastRentPayoutAt = &ts
	if err := r.uow.UpdateOwnership(ctx, o); err != nil {
		return fmt.Errorf("credit rent: %w", err)
	}
	return nil
}
