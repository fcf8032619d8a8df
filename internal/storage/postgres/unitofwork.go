package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

const walletColumns = `id, user_id, balance, total_deposited, total_withdrawn, total_invested,
	total_rent_earned, currency, is_locked, last_transaction_at, created_at, updated_at`

// RunInTx executes fn inside one database transaction. If fn returns an
// error the transaction rolls back and nothing persists.
func (s *Store) RunInTx(ctx context.Context, fn func(storage.UnitOfWork) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&unitOfWork{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// unitOfWork scopes mutating operations to one pgx transaction. Rows read
// through the ForUpdate accessors stay locked until commit or rollback, which
// serializes concurrent settlements touching the same property or wallet.
type unitOfWork struct {
	tx pgx.Tx
}

var _ storage.UnitOfWork = (*unitOfWork)(nil)

// PropertyForUpdate reads and locks a property row.
func (u *unitOfWork) PropertyForUpdate(ctx context.Context, id int64) (models.Property, error) {
	row := u.tx.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1 FOR UPDATE;`, id)
	return scanProperty(row)
}

// UpdatePropertyInventory persists the token counters, lifecycle status, and
// investor count of a locked property row.
func (u *unitOfWork) UpdatePropertyInventory(ctx context.Context, p models.Property) error {
	_, err := u.tx.Exec(ctx, `
		UPDATE properties
		SET tokens_available = $1, tokens_sold = $2, status = $3, investor_count = $4, updated_at = NOW()
		WHERE id = $5;`,
		p.TokensAvailable, p.TokensSold, p.Status, p.InvestorCount, p.ID)
	if err != nil {
		return fmt.Errorf("update property inventory: %w", err)
	}
	return nil
}

// GetOrCreateWallet returns the user's wallet, creating a zero-balance row if
// none exists, and locks it for the transaction.
func (u *unitOfWork) GetOrCreateWallet(ctx context.Context, userID int64) (models.Wallet, error) {
	if _, err := u.tx.Exec(ctx,
		`INSERT INTO wallets (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`, userID); err != nil {
		return models.Wallet{}, fmt.Errorf("ensure wallet: %w", err)
	}
	row := u.tx.QueryRow(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE user_id = $1 FOR UPDATE;`, userID)
	return scanWallet(row)
}

// UpdateWallet persists the balance, accumulators, and last-transaction stamp
// of a locked wallet row.
func (u *unitOfWork) UpdateWallet(ctx context.Context, w models.Wallet) error {
	_, err := u.tx.Exec(ctx, `
		UPDATE wallets
		SET balance = $1, total_deposited = $2, total_withdrawn = $3, total_invested = $4,
			total_rent_earned = $5, last_transaction_at = $6, updated_at = NOW()
		WHERE id = $7;`,
		w.Balance, w.TotalDeposited, w.TotalWithdrawn, w.TotalInvested,
		w.TotalRentEarned, w.LastTransactionAt, w.ID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	return nil
}

// OwnershipForUpdate reads and locks the ownership row for a (user, property)
// pair; storage.ErrNotFound if none exists.
func (u *unitOfWork) OwnershipForUpdate(ctx context.Context, userID, propertyID int64) (models.Ownership, error) {
	row := u.tx.QueryRow(ctx,
		`SELECT `+ownershipColumns+` FROM ownerships WHERE user_id = $1 AND property_id = $2 FOR UPDATE;`,
		userID, propertyID)
	return scanOwnership(row)
}

// CreateOwnership inserts a first-purchase ownership row.
func (u *unitOfWork) CreateOwnership(ctx context.Context, o models.Ownership) (models.Ownership, error) {
	row := u.tx.QueryRow(ctx, `
		INSERT INTO ownerships (user_id, property_id, tokens_owned, purchase_price, total_invested,
			ownership_percentage, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+ownershipColumns+`;`,
		o.UserID, o.PropertyID, o.TokensOwned, o.PurchasePrice, o.TotalInvested,
		o.OwnershipPercentage, o.IsActive)
	created, err := scanOwnership(row)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Ownership{}, storage.ErrAlreadyExists
		}
		return models.Ownership{}, err
	}
	return created, nil
}

// UpdateOwnership persists the mutable fields of a locked ownership row.
func (u *unitOfWork) UpdateOwnership(ctx context.Context, o models.Ownership) error {
	_, err := u.tx.Exec(ctx, `
		UPDATE ownerships
		SET tokens_owned = $1, total_invested = $2, ownership_percentage = $3, rent_earned = $4,
			last_rent_payout_at = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7;`,
		o.TokensOwned, o.TotalInvested, o.OwnershipPercentage, o.RentEarned,
		o.LastRentPayoutAt, o.IsActive, o.ID)
	if err != nil {
		return fmt.Errorf("update ownership: %w", err)
	}
	return nil
}

// ListActiveOwnerships reads and locks all active ownership rows for a
// property, so a rent fan-out cannot race a purchase on the same rows.
func (u *unitOfWork) ListActiveOwnerships(ctx context.Context, propertyID int64) ([]models.Ownership, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT `+ownershipColumns+` FROM ownerships WHERE property_id = $1 AND is_active ORDER BY id FOR UPDATE;`,
		propertyID)
	if err != nil {
		return nil, fmt.Errorf("list active ownerships: %w", err)
	}
	defer rows.Close()

	var ownerships []models.Ownership
	for rows.Next() {
		o, err := scanOwnership(rows)
		if err != nil {
			return nil, err
		}
		ownerships = append(ownerships, o)
	}
	return ownerships, rows.Err()
}

// AppendTransaction inserts an immutable journal entry.
func (u *unitOfWork) AppendTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	metadata := t.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	row := u.tx.QueryRow(ctx, `
		INSERT INTO transactions (user_id, property_id, transaction_type, tokens, amount, price_per_token,
			payment_method, reference, status, description, balance_before, balance_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+transactionColumns+`;`,
		t.UserID, t.PropertyID, t.TransactionType, t.Tokens, t.Amount, t.PricePerToken,
		t.PaymentMethod, t.Reference, t.Status, t.Description, t.BalanceBefore, t.BalanceAfter, metadata)
	return scanTransaction(row)
}

// HasRentPayout reports whether a payout exists for the property period.
func (u *unitOfWork) HasRentPayout(ctx context.Context, propertyID int64, month, year int) (bool, error) {
	var exists bool
	err := u.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM rent_payouts WHERE property_id = $1 AND payout_month = $2 AND payout_year = $3
		);`, propertyID, month, year).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check rent payout: %w", err)
	}
	return exists, nil
}

// CreateRentPayout inserts the payout record and its distribution rows. The
// unique (property, month, year) index turns a racing duplicate into
// storage.ErrAlreadyExists.
func (u *unitOfWork) CreateRentPayout(ctx context.Context, p models.RentPayout) (models.RentPayout, error) {
	row := u.tx.QueryRow(ctx, `
		INSERT INTO rent_payouts (property_id, total_rent_collected, payout_month, payout_year,
			rent_per_token, total_distributed, status, processed_by, processed_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at;`,
		p.PropertyID, p.TotalRentCollected, p.PayoutMonth, p.PayoutYear,
		p.RentPerToken, p.TotalDistributed, p.Status, p.ProcessedBy, p.ProcessedAt, p.Notes)
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.RentPayout{}, storage.ErrAlreadyExists
		}
		return models.RentPayout{}, fmt.Errorf("create rent payout: %w", err)
	}

	for i := range p.Distributions {
		d := &p.Distributions[i]
		d.PayoutID = p.ID
		err := u.tx.QueryRow(ctx, `
			INSERT INTO rent_payout_distributions (payout_id, user_id, tokens_held, amount_paid, paid_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id;`,
			d.PayoutID, d.UserID, d.TokensHeld, d.AmountPaid, d.PaidAt).Scan(&d.ID)
		if err != nil {
			return models.RentPayout{}, fmt.Errorf("create distribution: %w", err)
		}
	}
	return p, nil
}

func scanWallet(row pgx.Row) (models.Wallet, error) {
	var w models.Wallet
	err := row.Scan(&w.ID, &w.UserID, &w.Balance, &w.TotalDeposited, &w.TotalWithdrawn,
		&w.TotalInvested, &w.TotalRentEarned, &w.Currency, &w.IsLocked,
		&w.LastTransactionAt, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return models.Wallet{}, err
	}
	return w, nil
}
