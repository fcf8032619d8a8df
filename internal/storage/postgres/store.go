package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brickvest/brickvest-be/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the platform.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'investor',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS wallets (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL REFERENCES users(id),
			balance NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			total_deposited NUMERIC(18,2) NOT NULL DEFAULT 0,
			total_withdrawn NUMERIC(18,2) NOT NULL DEFAULT 0,
			total_invested NUMERIC(18,2) NOT NULL DEFAULT 0,
			total_rent_earned NUMERIC(18,2) NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			is_locked BOOLEAN NOT NULL DEFAULT FALSE,
			last_transaction_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS properties (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			property_type TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT '',
			zip_code TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT 'USA',
			total_value NUMERIC(18,2) NOT NULL CHECK (total_value >= 0),
			total_tokens BIGINT NOT NULL CHECK (total_tokens >= 1),
			token_price NUMERIC(18,6) NOT NULL,
			tokens_available BIGINT NOT NULL CHECK (tokens_available >= 0),
			tokens_sold BIGINT NOT NULL DEFAULT 0,
			monthly_rent NUMERIC(18,2) NOT NULL DEFAULT 0,
			rental_yield NUMERIC(10,4) NOT NULL DEFAULT 0,
			seller_id BIGINT NOT NULL REFERENCES users(id),
			status TEXT NOT NULL DEFAULT 'pending',
			rejection_reason TEXT NOT NULL DEFAULT '',
			approved_by BIGINT REFERENCES users(id),
			approved_at TIMESTAMPTZ,
			is_featured BOOLEAN NOT NULL DEFAULT FALSE,
			investor_count BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (tokens_available + tokens_sold = total_tokens)
		);`,
		`CREATE TABLE IF NOT EXISTS ownerships (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			property_id BIGINT NOT NULL REFERENCES properties(id),
			tokens_owned BIGINT NOT NULL CHECK (tokens_owned >= 1),
			purchase_price NUMERIC(18,6) NOT NULL,
			total_invested NUMERIC(18,2) NOT NULL,
			ownership_percentage NUMERIC(10,4) NOT NULL,
			rent_earned NUMERIC(18,2) NOT NULL DEFAULT 0,
			last_rent_payout_at TIMESTAMPTZ,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, property_id)
		);`,
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			property_id BIGINT REFERENCES properties(id),
			transaction_type TEXT NOT NULL,
			tokens BIGINT NOT NULL DEFAULT 0,
			amount NUMERIC(18,2) NOT NULL,
			price_per_token NUMERIC(18,6) NOT NULL DEFAULT 0,
			payment_method TEXT NOT NULL DEFAULT 'wallet',
			reference TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			description TEXT NOT NULL DEFAULT '',
			balance_before NUMERIC(18,2) NOT NULL DEFAULT 0,
			balance_after NUMERIC(18,2) NOT NULL DEFAULT 0,
			metadata JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS transactions_user_created_idx ON transactions (user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS transactions_property_type_idx ON transactions (property_id, transaction_type);`,
		`CREATE TABLE IF NOT EXISTS rent_payouts (
			id BIGSERIAL PRIMARY KEY,
			property_id BIGINT NOT NULL REFERENCES properties(id),
			total_rent_collected NUMERIC(18,2) NOT NULL,
			payout_month INT NOT NULL CHECK (payout_month BETWEEN 1 AND 12),
			payout_year INT NOT NULL,
			rent_per_token NUMERIC(18,6) NOT NULL,
			total_distributed NUMERIC(18,2) NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'pending',
			processed_by BIGINT NOT NULL REFERENCES users(id),
			processed_at TIMESTAMPTZ NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (property_id, payout_month, payout_year)
		);`,
		`CREATE TABLE IF NOT EXISTS rent_payout_distributions (
			id BIGSERIAL PRIMARY KEY,
			payout_id BIGINT NOT NULL REFERENCES rent_payouts(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id),
			tokens_held BIGINT NOT NULL,
			amount_paid NUMERIC(18,2) NOT NULL,
			paid_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
