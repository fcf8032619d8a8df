package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

const propertyColumns = `id, title, description, property_type, address, city, state, zip_code, country,
	total_value, total_tokens, token_price, tokens_available, tokens_sold, monthly_rent, rental_yield,
	seller_id, status, rejection_reason, approved_by, approved_at, is_featured, investor_count,
	created_at, updated_at`

// CreateProperty inserts a new listing. Derived fields must already be
// computed by the caller.
func (s *Store) CreateProperty(ctx context.Context, p models.Property) (models.Property, error) {
	const query = `
		INSERT INTO properties (title, description, property_type, address, city, state, zip_code, country,
			total_value, total_tokens, token_price, tokens_available, tokens_sold, monthly_rent, rental_yield,
			seller_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + propertyColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		p.Title, p.Description, p.PropertyType, p.Address, p.City, p.State, p.ZipCode, p.Country,
		p.TotalValue, p.TotalTokens, p.TokenPrice, p.TokensAvailable, p.TokensSold, p.MonthlyRent, p.RentalYield,
		p.SellerID, p.Status)
	return scanProperty(row)
}

// GetProperty fetches a listing by id.
func (s *Store) GetProperty(ctx context.Context, id int64) (models.Property, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1;`, id)
	return scanProperty(row)
}

// UpdateProperty persists listing fields, including recomputed economics and
// lifecycle stamps. Inventory counters are only mutated here for unsold
// pending listings; settled inventory moves through the unit of work.
func (s *Store) UpdateProperty(ctx context.Context, p models.Property) (models.Property, error) {
	const query = `
		UPDATE properties
		SET title = $1, description = $2, property_type = $3, address = $4, city = $5, state = $6,
			zip_code = $7, country = $8, total_value = $9, total_tokens = $10, token_price = $11,
			tokens_available = $12, monthly_rent = $13, rental_yield = $14, status = $15,
			rejection_reason = $16, approved_by = $17, approved_at = $18, is_featured = $19,
			updated_at = NOW()
		WHERE id = $20
		RETURNING ` + propertyColumns + `;`
	row := s.pool.QueryRow(ctx, query,
		p.Title, p.Description, p.PropertyType, p.Address, p.City, p.State,
		p.ZipCode, p.Country, p.TotalValue, p.TotalTokens, p.TokenPrice,
		p.TokensAvailable, p.MonthlyRent, p.RentalYield, p.Status,
		p.RejectionReason, p.ApprovedBy, p.ApprovedAt, p.IsFeatured, p.ID)
	return scanProperty(row)
}

// DeleteProperty removes a listing. Callers must ensure no tokens were sold.
func (s *Store) DeleteProperty(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListProperties returns a filtered page of listings plus the total count.
func (s *Store) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, int64, error) {
	where, args := buildPropertyFilter(filter)

	var total int64
	if err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties`+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 12
	}
	pageArgs := append(args, limit, filter.Offset)
	query := fmt.Sprintf(`SELECT `+propertyColumns+` FROM properties%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		where, len(args)+1, len(args)+2)

	rows, err := s.pool.Query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	properties, err := collectProperties(rows)
	if err != nil {
		return nil, 0, err
	}
	return properties, total, nil
}

// ListPropertiesBySeller returns all of one seller's listings, newest first.
func (s *Store) ListPropertiesBySeller(ctx context.Context, sellerID int64) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE seller_id = $1 ORDER BY created_at DESC;`, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller properties: %w", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

// ListFeaturedProperties returns approved, featured listings.
func (s *Store) ListFeaturedProperties(ctx context.Context, limit int) ([]models.Property, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+propertyColumns+` FROM properties
		WHERE status = $1 AND is_featured
		ORDER BY created_at DESC
		LIMIT $2;`, models.PropertyApproved, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured properties: %w", err)
	}
	defer rows.Close()
	return collectProperties(rows)
}

// CountPropertiesByStatus counts listings, optionally restricted to a status.
func (s *Store) CountPropertiesByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM properties WHERE ($1 = '' OR status = $1);`, status).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count properties by status: %w", err)
	}
	return total, nil
}

func buildPropertyFilter(filter models.PropertyFilter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.PropertyType != "" {
		add("property_type = $%d", filter.PropertyType)
	}
	if filter.City != "" {
		add("city ILIKE $%d", "%"+filter.City+"%")
	}
	if filter.MinPrice != nil {
		add("token_price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("token_price <= $%d", *filter.MaxPrice)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR city ILIKE $%d)", n, n, n))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func collectProperties(rows pgx.Rows) ([]models.Property, error) {
	var properties []models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func scanProperty(row pgx.Row) (models.Property, error) {
	var p models.Property
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.PropertyType, &p.Address, &p.City, &p.State,
		&p.ZipCode, &p.Country, &p.TotalValue, &p.TotalTokens, &p.TokenPrice, &p.TokensAvailable,
		&p.TokensSold, &p.MonthlyRent, &p.RentalYield, &p.SellerID, &p.Status, &p.RejectionReason,
		&p.ApprovedBy, &p.ApprovedAt, &p.IsFeatured, &p.InvestorCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Property{}, storage.ErrNotFound
		}
		return models.Property{}, err
	}
	return p, nil
}
