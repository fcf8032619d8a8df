package settlement

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brickvest/brickvest-be/internal/metrics"
	"github.com/brickvest/brickvest-be/internal/models"
)

const (
	sellerID = int64(1)
	buyerID  = int64(2)
	otherID  = int64(3)
	adminID  = int64(9)
)

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	engine := NewEngine(store, logger, metrics.NewSettlement(prometheus.NewRegistry()), 100000)
	engine.now = func() time.Time {
		return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
	return engine
}

// newListedProperty seeds an approved 100-token property priced at $50 per
// token.
func newListedProperty(store *fakeStore) models.Property {
	p := models.Property{
		Title:           "Sunset Apartments",
		PropertyType:    models.PropertyResidential,
		TotalValue:      5000,
		TotalTokens:     100,
		TokenPrice:      50,
		TokensAvailable: 100,
		MonthlyRent:     1000,
		SellerID:        sellerID,
		Status:          models.PropertyApproved,
	}
	return store.addProperty(p)
}

func TestPurchaseTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("first purchase settles wallet, ownership, inventory, and journal", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 1000})

		result, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 10)
		require.NoError(t, err)

		assert.Equal(t, 500.0, result.WalletBalance)
		assert.Equal(t, int64(10), result.Ownership.TokensOwned)
		assert.Equal(t, 10.0, result.Ownership.OwnershipPercentage)
		assert.Equal(t, 500.0, result.Ownership.TotalInvested)
		assert.True(t, result.Ownership.IsActive)

		buyer := store.wallets[buyerID]
		assert.Equal(t, 500.0, buyer.Balance)
		assert.Equal(t, 500.0, buyer.TotalInvested)
		require.NotNil(t, buyer.LastTransactionAt)

		seller := store.wallets[sellerID]
		assert.Equal(t, 500.0, seller.Balance)
		assert.Zero(t, seller.TotalDeposited, "sale proceeds must not count as deposits")

		updated := store.properties[property.ID]
		assert.Equal(t, int64(90), updated.TokensAvailable)
		assert.Equal(t, int64(10), updated.TokensSold)
		assert.Equal(t, int64(1), updated.InvestorCount)
		assert.Equal(t, models.PropertyApproved, updated.Status)

		entry := result.Transaction
		assert.Equal(t, models.TxTokenPurchase, entry.TransactionType)
		assert.Equal(t, models.TxCompleted, entry.Status)
		assert.Equal(t, models.PaymentWallet, entry.PaymentMethod)
		assert.Equal(t, "Purchased 10 tokens of Sunset Apartments", entry.Description)
		assert.Equal(t, 1000.0, entry.BalanceBefore)
		assert.Equal(t, 500.0, entry.BalanceAfter)
		require.NotNil(t, entry.PropertyID)
		assert.Equal(t, property.ID, *entry.PropertyID)
	})

	t.Run("repeat purchase grows the existing ownership row", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 2000})

		_, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 10)
		require.NoError(t, err)
		result, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 5)
		require.NoError(t, err)

		assert.Equal(t, int64(15), result.Ownership.TokensOwned)
		assert.Equal(t, 15.0, result.Ownership.OwnershipPercentage)
		assert.Equal(t, 750.0, result.Ownership.TotalInvested)

		updated := store.properties[property.ID]
		assert.Equal(t, int64(1), updated.InvestorCount, "same buyer must not be counted twice")
		assert.Equal(t, int64(85), updated.TokensAvailable)
	})

	t.Run("buying the last token flips the property to sold out", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 5000})

		_, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 100)
		require.NoError(t, err)

		updated := store.properties[property.ID]
		assert.Equal(t, models.PropertySoldOut, updated.Status)
		assert.Zero(t, updated.TokensAvailable)
		assert.Equal(t, int64(100), updated.TokensSold)
	})

	t.Run("failures leave no partial state behind", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 100})

		before := store.snapshot()
		_, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 10)
		require.ErrorIs(t, err, ErrInsufficientFunds)

		assert.Equal(t, before.properties, store.properties)
		assert.Equal(t, before.wallets, store.wallets)
		assert.Equal(t, before.ownerships, store.ownerships)
		assert.Empty(t, store.transactions)
	})

	t.Run("precondition failures", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		pending := store.addProperty(models.Property{
			TotalTokens: 100, TokenPrice: 50, TokensAvailable: 100,
			SellerID: sellerID, Status: models.PropertyPending,
		})
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 100000})
		store.addWallet(models.Wallet{UserID: sellerID, Balance: 100000})

		_, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = engine.PurchaseTokens(ctx, buyerID, 404404, 10)
		assert.ErrorIs(t, err, ErrPropertyNotFound)

		_, err = engine.PurchaseTokens(ctx, buyerID, pending.ID, 10)
		assert.ErrorIs(t, err, ErrNotAvailable)

		_, err = engine.PurchaseTokens(ctx, buyerID, property.ID, 101)
		assert.ErrorIs(t, err, ErrInsufficientInventory)

		_, err = engine.PurchaseTokens(ctx, sellerID, property.ID, 10)
		assert.ErrorIs(t, err, ErrSelfTradeForbidden)
	})

	t.Run("locked wallet cannot buy", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 1000, IsLocked: true})

		_, err := engine.PurchaseTokens(ctx, buyerID, property.ID, 10)
		assert.ErrorIs(t, err, ErrWalletLocked)
	})
}

func TestProcessRentPayout(t *testing.T) {
	ctx := context.Background()

	seed := func() (*fakeStore, *Engine, models.Property) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)
		store.addOwnership(models.Ownership{
			UserID: buyerID, PropertyID: property.ID, TokensOwned: 60, IsActive: true,
		})
		store.addOwnership(models.Ownership{
			UserID: otherID, PropertyID: property.ID, TokensOwned: 40, IsActive: true,
		})
		return store, engine, property
	}

	t.Run("splits rent proportionally to tokens held", func(t *testing.T) {
		store, engine, property := seed()

		result, err := engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.InvestorsPaid)
		assert.Equal(t, 1000.0, result.TotalDistributed)
		assert.Equal(t, 10.0, result.Payout.RentPerToken)
		assert.Equal(t, models.PayoutCompleted, result.Payout.Status)
		assert.Equal(t, adminID, result.Payout.ProcessedBy)
		require.Len(t, result.Payout.Distributions, 2)

		assert.Equal(t, 600.0, store.wallets[buyerID].Balance)
		assert.Equal(t, 600.0, store.wallets[buyerID].TotalRentEarned)
		assert.Equal(t, 400.0, store.wallets[otherID].Balance)

		majority := store.ownerships[ownershipKey{buyerID, property.ID}]
		assert.Equal(t, 600.0, majority.RentEarned)
		require.NotNil(t, majority.LastRentPayoutAt)

		require.Len(t, store.transactions, 2)
		for _, entry := range store.transactions {
			assert.Equal(t, models.TxRentPayout, entry.TransactionType)
			assert.Equal(t, models.PaymentSystem, entry.PaymentMethod)
			assert.Equal(t, "Rent payout for 6/2025 - Sunset Apartments", entry.Description)
			assert.Equal(t, 6, entry.Metadata["month"])
			assert.Equal(t, 2025, entry.Metadata["year"])
		}
	})

	t.Run("rent lands in a locked wallet too", func(t *testing.T) {
		store, engine, property := seed()
		store.addWallet(models.Wallet{UserID: buyerID, IsLocked: true})

		_, err := engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		})
		require.NoError(t, err)
		assert.Equal(t, 600.0, store.wallets[buyerID].Balance)
	})

	t.Run("same period cannot be paid twice", func(t *testing.T) {
		store, engine, property := seed()
		req := PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		}

		_, err := engine.ProcessRentPayout(ctx, req)
		require.NoError(t, err)
		_, err = engine.ProcessRentPayout(ctx, req)
		require.ErrorIs(t, err, ErrAlreadyProcessed)

		assert.Equal(t, 600.0, store.wallets[buyerID].Balance, "balance must not be credited twice")
		assert.Len(t, store.transactions, 2)
	})

	t.Run("different period for the same property settles fine", func(t *testing.T) {
		store, engine, property := seed()

		_, err := engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		})
		require.NoError(t, err)
		_, err = engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 7, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		})
		require.NoError(t, err)

		assert.Equal(t, 1200.0, store.wallets[buyerID].Balance)
	})

	t.Run("missing ownership row is skipped, not fatal", func(t *testing.T) {
		store, engine, property := seed()
		store.staleOwners = []models.Ownership{
			{ID: 999999, UserID: 777, PropertyID: property.ID, TokensOwned: 10, IsActive: true},
		}

		result, err := engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
		})
		require.NoError(t, err)

		assert.Equal(t, 2, result.InvestorsPaid)
		assert.Equal(t, 1000.0, result.TotalDistributed)
		_, hasGhostWallet := store.wallets[777]
		assert.False(t, hasGhostWallet)
	})

	t.Run("validation and empty-property failures", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		property := newListedProperty(store)

		_, err := engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 13, Year: 2025, TotalRent: 1000,
		})
		assert.ErrorIs(t, err, ErrInvalidPeriod)

		_, err = engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 0,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: 404404, Month: 6, Year: 2025, TotalRent: 1000,
		})
		assert.ErrorIs(t, err, ErrPropertyNotFound)

		_, err = engine.ProcessRentPayout(ctx, PayoutRequest{
			PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000,
		})
		assert.ErrorIs(t, err, ErrNoInvestors)
	})
}

func TestDeposit(t *testing.T) {
	ctx := context.Background()

	t.Run("credits the wallet and journals the reference", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)

		result, err := engine.Deposit(ctx, buyerID, 250.50, "")
		require.NoError(t, err)

		assert.Equal(t, 250.50, result.NewBalance)
		assert.Equal(t, 250.50, store.wallets[buyerID].TotalDeposited)

		entry := result.Transaction
		assert.Equal(t, models.TxWalletDeposit, entry.TransactionType)
		assert.Equal(t, models.PaymentCard, entry.PaymentMethod, "empty method defaults to card")
		assert.True(t, strings.HasPrefix(entry.Reference, "DEP_"))
		assert.Equal(t, "4242", entry.Metadata["card_last4"])
		assert.Equal(t, "Deposited $250.50 via card", entry.Description)
		assert.Equal(t, 0.0, entry.BalanceBefore)
		assert.Equal(t, 250.50, entry.BalanceAfter)
	})

	t.Run("enforces the per-deposit cap", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)

		_, err := engine.Deposit(ctx, buyerID, 100001, models.PaymentBankTransfer)
		require.ErrorIs(t, err, ErrDepositLimit)

		_, err = engine.Deposit(ctx, buyerID, 100000, models.PaymentBankTransfer)
		require.NoError(t, err)
	})

	t.Run("rejects amounts below the $1 minimum", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)

		_, err := engine.Deposit(ctx, buyerID, 0, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = engine.Deposit(ctx, buyerID, 0.99, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = engine.Deposit(ctx, buyerID, -5, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("debits the wallet and journals the reference", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 500})

		result, err := engine.Withdraw(ctx, buyerID, 200, "First National")
		require.NoError(t, err)

		assert.Equal(t, 300.0, result.NewBalance)
		assert.Equal(t, 200.0, store.wallets[buyerID].TotalWithdrawn)

		entry := result.Transaction
		assert.Equal(t, models.TxWalletWithdrawal, entry.TransactionType)
		assert.Equal(t, models.PaymentBankTransfer, entry.PaymentMethod)
		assert.True(t, strings.HasPrefix(entry.Reference, "WTH_"))
		assert.Equal(t, "Withdrew $200.00", entry.Description)
		assert.Equal(t, "First National", entry.Metadata["bank_name"])
	})

	t.Run("cannot overdraw or use a locked wallet", func(t *testing.T) {
		store := newFakeStore()
		engine := newTestEngine(t, store)
		store.addWallet(models.Wallet{UserID: buyerID, Balance: 100})
		store.addWallet(models.Wallet{UserID: otherID, Balance: 100, IsLocked: true})

		_, err := engine.Withdraw(ctx, buyerID, 100.01, "")
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		_, err = engine.Withdraw(ctx, otherID, 50, "")
		assert.ErrorIs(t, err, ErrWalletLocked)

		assert.Equal(t, 100.0, store.wallets[buyerID].Balance)
		assert.Empty(t, store.transactions)
	})
}

func TestWalletCreatesOnFirstTouch(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(t, store)

	wallet, err := engine.Wallet(context.Background(), buyerID)
	require.NoError(t, err)
	assert.Equal(t, buyerID, wallet.UserID)
	assert.Zero(t, wallet.Balance)
	assert.Equal(t, "USD", wallet.Currency)
}

// TestJournalBalanceAlgebra runs a mixed sequence of operations and checks
// that every journal entry's before/after delta matches its amount and that
// chaining the entries reproduces the final wallet balance.
func TestJournalBalanceAlgebra(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := newTestEngine(t, store)
	property := newListedProperty(store)

	_, err := engine.Deposit(ctx, buyerID, 5000, "")
	require.NoError(t, err)
	_, err = engine.PurchaseTokens(ctx, buyerID, property.ID, 20)
	require.NoError(t, err)
	_, err = engine.ProcessRentPayout(ctx, PayoutRequest{
		PropertyID: property.ID, Month: 6, Year: 2025, TotalRent: 1000, ProcessedBy: adminID,
	})
	require.NoError(t, err)
	_, err = engine.Withdraw(ctx, buyerID, 150, "")
	require.NoError(t, err)

	running := 0.0
	for _, entry := range store.transactions {
		if entry.UserID != buyerID {
			continue
		}
		assert.Equal(t, running, entry.BalanceBefore, "entry %s", entry.TransactionType)
		switch entry.TransactionType {
		case models.TxWalletDeposit, models.TxRentPayout:
			running += entry.Amount
		case models.TxWalletWithdrawal, models.TxTokenPurchase:
			running -= entry.Amount
		}
		assert.InDelta(t, running, entry.BalanceAfter, 1e-9, "entry %s", entry.TransactionType)
	}
	assert.InDelta(t, running, store.wallets[buyerID].Balance, 1e-9)

	// deposit 5000, invest 1000, rent 200 (20 of 100 tokens), withdraw 150
	assert.InDelta(t, 4050.0, store.wallets[buyerID].Balance, 1e-9)
}
