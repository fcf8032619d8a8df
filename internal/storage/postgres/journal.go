package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

const transactionColumns = `id, user_id, property_id, transaction_type, tokens, amount, price_per_token,
	payment_method, reference, status, description, balance_before, balance_after, metadata, created_at`

// GetTransaction fetches one journal entry scoped to its owner.
func (s *Store) GetTransaction(ctx context.Context, id, userID int64) (models.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2;`, id, userID)
	return scanTransaction(row)
}

// ListTransactionsByUser returns a page of a user's journal entries, newest
// first, optionally restricted to a set of transaction types.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID int64, types []string, limit, offset int) ([]models.Transaction, int64, error) {
	if types == nil {
		types = []string{}
	}
	var total int64
	if err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transactions
		WHERE user_id = $1 AND (cardinality($2::text[]) = 0 OR transaction_type = ANY($2));`,
		userID, types).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = $1 AND (cardinality($2::text[]) = 0 OR transaction_type = ANY($2))
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4;`, userID, types, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		transactions = append(transactions, t)
	}
	return transactions, total, rows.Err()
}

// ListRecentTransactions returns the newest journal entries across all users.
func (s *Store) ListRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY created_at DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumTransactionAmounts totals journal amounts for one type and status.
func (s *Store) SumTransactionAmounts(ctx context.Context, txType, status string) (float64, error) {
	var sum float64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE transaction_type = $1 AND status = $2;`, txType, status).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return sum, nil
}

// CountTransactions counts all journal entries.
func (s *Store) CountTransactions(ctx context.Context) (int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions;`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return total, nil
}

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.PropertyID, &t.TransactionType, &t.Tokens, &t.Amount,
		&t.PricePerToken, &t.PaymentMethod, &t.Reference, &t.Status, &t.Description,
		&t.BalanceBefore, &t.BalanceAfter, &t.Metadata, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Transaction{}, storage.ErrNotFound
		}
		return models.Transaction{}, err
	}
	return t, nil
}
