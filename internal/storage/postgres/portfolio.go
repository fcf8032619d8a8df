package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

const ownershipColumns = `id, user_id, property_id, tokens_owned, purchase_price, total_invested,
	ownership_percentage, rent_earned, last_rent_payout_at, is_active, created_at, updated_at`

// GetOwnership fetches the ownership row for a (user, property) pair.
func (s *Store) GetOwnership(ctx context.Context, userID, propertyID int64) (models.Ownership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+ownershipColumns+` FROM ownerships WHERE user_id = $1 AND property_id = $2;`,
		userID, propertyID)
	return scanOwnership(row)
}

// ListInvestments returns the user's active ownerships joined with their
// properties, newest first.
func (s *Store) ListInvestments(ctx context.Context, userID int64) ([]models.Investment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.user_id, o.property_id, o.tokens_owned, o.purchase_price, o.total_invested,
			o.ownership_percentage, o.rent_earned, o.last_rent_payout_at, o.is_active, o.created_at, o.updated_at,
			p.id, p.title, p.description, p.property_type, p.address, p.city, p.state, p.zip_code, p.country,
			p.total_value, p.total_tokens, p.token_price, p.tokens_available, p.tokens_sold, p.monthly_rent,
			p.rental_yield, p.seller_id, p.status, p.rejection_reason, p.approved_by, p.approved_at,
			p.is_featured, p.investor_count, p.created_at, p.updated_at
		FROM ownerships o
		JOIN properties p ON p.id = o.property_id
		WHERE o.user_id = $1 AND o.is_active
		ORDER BY o.created_at DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()

	var investments []models.Investment
	for rows.Next() {
		var inv models.Investment
		o := &inv.Ownership
		p := &inv.Property
		err := rows.Scan(&o.ID, &o.UserID, &o.PropertyID, &o.TokensOwned, &o.PurchasePrice, &o.TotalInvested,
			&o.OwnershipPercentage, &o.RentEarned, &o.LastRentPayoutAt, &o.IsActive, &o.CreatedAt, &o.UpdatedAt,
			&p.ID, &p.Title, &p.Description, &p.PropertyType, &p.Address, &p.City, &p.State, &p.ZipCode,
			&p.Country, &p.TotalValue, &p.TotalTokens, &p.TokenPrice, &p.TokensAvailable, &p.TokensSold,
			&p.MonthlyRent, &p.RentalYield, &p.SellerID, &p.Status, &p.RejectionReason, &p.ApprovedBy,
			&p.ApprovedAt, &p.IsFeatured, &p.InvestorCount, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

func scanOwnership(row pgx.Row) (models.Ownership, error) {
	var o models.Ownership
	err := row.Scan(&o.ID, &o.UserID, &o.PropertyID, &o.TokensOwned, &o.PurchasePrice, &o.TotalInvested,
		&o.OwnershipPercentage, &o.RentEarned, &o.LastRentPayoutAt, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Ownership{}, storage.ErrNotFound
		}
		return models.Ownership{}, err
	}
	return o, nil
}
