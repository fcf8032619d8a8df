package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

// creditReason selects which accumulator a credit feeds. Sale proceeds touch
// only the balance, matching how sellers are paid out.
type creditReason int

const (
	creditDeposit creditReason = iota
	creditRentEarnings
	creditSaleProceeds
)

// debitReason selects which accumulator a debit feeds.
type debitReason int

const (
	debitWithdrawal debitReason = iota
	debitInvestment
)

// walletLedger applies balance mutations against wallets inside one unit of
// work. Every mutation updates the matching accumulator in the same write, so
// the accumulators stay a pure function of the applied events.
type walletLedger struct {
	uow storage.UnitOfWork
	now func() time.Time
}

// credit adds amount to the user's balance, creating the wallet on first
// touch. Returns the balance before the credit and the updated wallet.
func (l walletLedger) credit(ctx context.Context, userID int64, amount float64, reason creditReason) (float64, models.Wallet, error) {
	w, err := l.uow.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return 0, models.Wallet{}, fmt.Errorf("load wallet for user %d: %w", userID, err)
	}

	before := w.Balance
	w.Balance += amount
	switch reason {
	case creditDeposit:
		w.TotalDeposited += amount
	case creditRentEarnings:
		w.TotalRentEarned += amount
	case creditSaleProceeds:
		// balance only
	}
	ts := l.now()
	w.LastTransactionAt = &ts

	if err := l.uow.UpdateWallet(ctx, w); err != nil {
		return 0, models.Wallet{}, fmt.Errorf("credit wallet for user %d: %w", userID, err)
	}
	return before, w, nil
}

// debit subtracts amount from the user's balance. Fails with
// ErrInsufficientFunds when amount exceeds the balance and ErrWalletLocked
// when the wallet is locked. Returns the balance before the debit.
func (l walletLedger) debit(ctx context.Context, userID int64, amount float64, reason debitReason) (float64, models.Wallet, error) {
	w, err := l.uow.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return 0, models.Wallet{}, fmt.Errorf("load wallet for user %d: %w", userID, err)
	}
	if w.IsLocked {
		return 0, models.Wallet{}, ErrWalletLocked
	}
	if amount > w.Balance {
		return 0, models.Wallet{}, ErrInsufficientFunds
	}

	before := w.Balance
	w.Balance -= amount
	switch reason {
	case debitWithdrawal:
		w.TotalWithdrawn += amount
	case debitInvestment:
		w.TotalInvested += amount
	}
	ts := l.now()
	w.LastTransactionAt = &ts

	if err := l.uow.UpdateWallet(ctx, w); err != nil {
		return 0, models.Wallet{}, fmt.Errorf("debit wallet for user %d: %w", userID, err)
	}
	return before, w, nil
}
