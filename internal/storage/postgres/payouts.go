package postgres

import (
	"context"
	"fmt"

	"github.com/brickvest/brickvest-be/internal/models"
)

const payoutColumns = `id, property_id, total_rent_collected, payout_month, payout_year, rent_per_token,
	total_distributed, status, processed_by, processed_at, notes, created_at`

// ListRentPayouts returns a page of payout records with their distributions,
// optionally restricted to one property.
func (s *Store) ListRentPayouts(ctx context.Context, propertyID *int64, limit, offset int) ([]models.RentPayout, int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rent_payouts WHERE ($1::bigint IS NULL OR property_id = $1);`,
		propertyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count rent payouts: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+payoutColumns+` FROM rent_payouts
		WHERE ($1::bigint IS NULL OR property_id = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3;`, propertyID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list rent payouts: %w", err)
	}
	defer rows.Close()

	var payouts []models.RentPayout
	for rows.Next() {
		var p models.RentPayout
		err := rows.Scan(&p.ID, &p.PropertyID, &p.TotalRentCollected, &p.PayoutMonth, &p.PayoutYear,
			&p.RentPerToken, &p.TotalDistributed, &p.Status, &p.ProcessedBy, &p.ProcessedAt,
			&p.Notes, &p.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("scan rent payout: %w", err)
		}
		payouts = append(payouts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range payouts {
		distributions, err := s.listDistributions(ctx, payouts[i].ID)
		if err != nil {
			return nil, 0, err
		}
		payouts[i].Distributions = distributions
	}
	return payouts, total, nil
}

func (s *Store) listDistributions(ctx context.Context, payoutID int64) ([]models.Distribution, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, payout_id, user_id, tokens_held, amount_paid, paid_at
		FROM rent_payout_distributions
		WHERE payout_id = $1
		ORDER BY id;`, payoutID)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	var distributions []models.Distribution
	for rows.Next() {
		var d models.Distribution
		if err := rows.Scan(&d.ID, &d.PayoutID, &d.UserID, &d.TokensHeld, &d.AmountPaid, &d.PaidAt); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		distributions = append(distributions, d)
	}
	return distributions, rows.Err()
}
