package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/brickvest/brickvest-be/internal/metrics"
	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

const (
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Engine settles the compound money movements of the platform: token
// purchases and rent payouts, plus the single-row deposit and withdrawal
// operations. Each operation runs inside one atomic unit of work; the engine
// itself is stateless between calls.
type Engine struct {
	store      storage.TxRunner
	logger     *logrus.Logger
	metrics    *metrics.Settlement
	maxDeposit float64
	now        func() time.Time
}

// NewEngine constructs the settlement engine. metrics may be nil.
func NewEngine(store storage.TxRunner, logger *logrus.Logger, m *metrics.Settlement, maxDeposit float64) *Engine {
	return &Engine{
		store:      store,
		logger:     logger,
		metrics:    m,
		maxDeposit: maxDeposit,
		now:        time.Now,
	}
}

// PurchaseResult is the outcome of a successful token purchase.
type PurchaseResult struct {
	Transaction   models.Transaction `json:"transaction"`
	Ownership     models.Ownership   `json:"ownership"`
	WalletBalance float64            `json:"wallet_balance"`
}

// PayoutResult is the outcome of a successful rent payout.
type PayoutResult struct {
	Payout           models.RentPayout `json:"payout"`
	InvestorsPaid    int               `json:"investors_paid"`
	TotalDistributed float64           `json:"total_distributed"`
}

// WalletResult is the outcome of a deposit or withdrawal.
type WalletResult struct {
	Transaction models.Transaction `json:"transaction"`
	NewBalance  float64            `json:"new_balance"`
}

// PayoutRequest describes one rent payout run.
type PayoutRequest struct {
	PropertyID  int64
	Month       int
	Year        int
	TotalRent   float64
	ProcessedBy int64
	Notes       string
}

// PurchaseTokens transfers tokens of a property to the buyer against their
// wallet balance. Preconditions are checked in order under the property row
// lock; on success the buyer debit, seller credit, inventory decrement,
// ownership update, and journal entry all commit together or not at all.
func (e *Engine) PurchaseTokens(ctx context.Context, buyerID, propertyID, tokens int64) (PurchaseResult, error) {
	if tokens < 1 {
		return PurchaseResult{}, ErrInvalidAmount
	}

	var result PurchaseResult
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		property, err := uow.PropertyForUpdate(ctx, propertyID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("load property %d: %w", propertyID, err)
		}
		if property.Status != models.PropertyApproved {
			return ErrNotAvailable
		}
		if tokens > property.TokensAvailable {
			return ErrInsufficientInventory
		}
		if property.SellerID == buyerID {
			return ErrSelfTradeForbidden
		}

		totalCost := float64(tokens) * property.TokenPrice
		ledger := walletLedger{uow: uow, now: e.now}
		registry := ownershipRegistry{uow: uow, now: e.now}

		balanceBefore, buyerWallet, err := ledger.debit(ctx, buyerID, totalCost, debitInvestment)
		if err != nil {
			return err
		}
		if _, _, err := ledger.credit(ctx, property.SellerID, totalCost, creditSaleProceeds); err != nil {
			return err
		}

		ownership, newInvestor, err := registry.recordPurchase(ctx, buyerID, propertyID, tokens, property.TokenPrice, property.TotalTokens)
		if err != nil {
			return err
		}

		property.TokensAvailable -= tokens
		property.TokensSold += tokens
		if property.TokensAvailable == 0 {
			property.Status = models.PropertySoldOut
		}
		if newInvestor {
			property.InvestorCount++
		}
		if err := uow.UpdatePropertyInventory(ctx, property); err != nil {
			return err
		}

		entry, err := uow.AppendTransaction(ctx, models.Transaction{
			UserID:          buyerID,
			PropertyID:      &property.ID,
			TransactionType: models.TxTokenPurchase,
			Tokens:          tokens,
			Amount:          totalCost,
			PricePerToken:   property.TokenPrice,
			PaymentMethod:   models.PaymentWallet,
			Status:          models.TxCompleted,
			Description:     fmt.Sprintf("Purchased %d tokens of %s", tokens, property.Title),
			BalanceBefore:   balanceBefore,
			BalanceAfter:    buyerWallet.Balance,
		})
		if err != nil {
			return fmt.Errorf("append journal entry: %w", err)
		}

		result = PurchaseResult{
			Transaction:   entry,
			Ownership:     ownership,
			WalletBalance: buyerWallet.Balance,
		}
		return nil
	})
	if err != nil {
		e.countPurchase(statusFailed)
		return PurchaseResult{}, err
	}

	e.countPurchase(statusCompleted)
	e.logger.WithFields(logrus.Fields{
		"buyer_id":    buyerID,
		"property_id": propertyID,
		"tokens":      tokens,
		"amount":      result.Transaction.Amount,
	}).Info("Tokens purchased")
	return result, nil
}

// ProcessRentPayout fans one month's collected rent out to all active owners
// of a property, proportionally to tokens held. The fan-out plus the payout
// record form one atomic unit keyed by the unique (property, month, year)
// period, so retries are exactly-once. A missing ownership row is skipped and
// logged rather than failing the batch.
func (e *Engine) ProcessRentPayout(ctx context.Context, req PayoutRequest) (PayoutResult, error) {
	if req.Month < 1 || req.Month > 12 {
		return PayoutResult{}, ErrInvalidPeriod
	}
	if req.TotalRent <= 0 {
		return PayoutResult{}, ErrInvalidAmount
	}
	propertyID, month, year, totalRent := req.PropertyID, req.Month, req.Year, req.TotalRent

	var result PayoutResult
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		property, err := uow.PropertyForUpdate(ctx, propertyID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrPropertyNotFound
			}
			return fmt.Errorf("load property %d: %w", propertyID, err)
		}

		exists, err := uow.HasRentPayout(ctx, propertyID, month, year)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyProcessed
		}

		owners, err := uow.ListActiveOwnerships(ctx, propertyID)
		if err != nil {
			return err
		}
		if len(owners) == 0 {
			return ErrNoInvestors
		}

		ledger := walletLedger{uow: uow, now: e.now}
		registry := ownershipRegistry{uow: uow, now: e.now}
		rentPerToken := totalRent / float64(property.TotalTokens)

		var distributions []models.Distribution
		var totalDistributed float64
		for _, owner := range owners {
			amount := float64(owner.TokensOwned) * rentPerToken

			if err := registry.creditRent(ctx, owner.UserID, propertyID, amount); err != nil {
				if errors.Is(err, ErrOwnerNotFound) {
					e.countSkippedDistribution()
					e.logger.WithFields(logrus.Fields{
						"user_id":     owner.UserID,
						"property_id": propertyID,
					}).Warn("Skipping rent distribution: ownership row missing")
					continue
				}
				return err
			}

			balanceBefore, wallet, err := ledger.credit(ctx, owner.UserID, amount, creditRentEarnings)
			if err != nil {
				return err
			}

			if _, err := uow.AppendTransaction(ctx, models.Transaction{
				UserID:          owner.UserID,
				PropertyID:      &property.ID,
				TransactionType: models.TxRentPayout,
				Amount:          amount,
				PaymentMethod:   models.PaymentSystem,
				Status:          models.TxCompleted,
				Description:     fmt.Sprintf("Rent payout for %d/%d - %s", month, year, property.Title),
				BalanceBefore:   balanceBefore,
				BalanceAfter:    wallet.Balance,
				Metadata: map[string]any{
					"month":       month,
					"year":        year,
					"tokens_held": owner.TokensOwned,
				},
			}); err != nil {
				return fmt.Errorf("append journal entry: %w", err)
			}

			distributions = append(distributions, models.Distribution{
				UserID:     owner.UserID,
				TokensHeld: owner.TokensOwned,
				AmountPaid: amount,
				PaidAt:     e.now(),
			})
			totalDistributed += amount
		}
		if len(distributions) == 0 {
			return ErrNoInvestors
		}

		payout, err := uow.CreateRentPayout(ctx, models.RentPayout{
			PropertyID:         propertyID,
			TotalRentCollected: totalRent,
			PayoutMonth:        month,
			PayoutYear:         year,
			RentPerToken:       rentPerToken,
			TotalDistributed:   totalDistributed,
			Status:             models.PayoutCompleted,
			ProcessedBy:        req.ProcessedBy,
			ProcessedAt:        e.now(),
			Notes:              req.Notes,
			Distributions:      distributions,
		})
		if err != nil {
			if errors.Is(err, storage.ErrAlreadyExists) {
				return ErrAlreadyProcessed
			}
			return err
		}

		result = PayoutResult{
			Payout:           payout,
			InvestorsPaid:    len(distributions),
			TotalDistributed: totalDistributed,
		}
		return nil
	})
	if err != nil {
		e.countPayout(statusFailed)
		return PayoutResult{}, err
	}

	e.countPayout(statusCompleted)
	e.logger.WithFields(logrus.Fields{
		"property_id":       propertyID,
		"month":             month,
		"year":              year,
		"investors_paid":    result.InvestorsPaid,
		"total_distributed": result.TotalDistributed,
	}).Info("Rent payout processed")
	return result, nil
}

// Deposit credits external funds into the user's wallet and appends a
// journal entry. Amounts run from $1 to the configured per-deposit maximum.
func (e *Engine) Deposit(ctx context.Context, userID int64, amount float64, method string) (WalletResult, error) {
	if amount < 1 {
		return WalletResult{}, ErrInvalidAmount
	}
	if e.maxDeposit > 0 && amount > e.maxDeposit {
		return WalletResult{}, ErrDepositLimit
	}
	if method == "" {
		method = models.PaymentCard
	}

	var result WalletResult
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		ledger := walletLedger{uow: uow, now: e.now}
		balanceBefore, wallet, err := ledger.credit(ctx, userID, amount, creditDeposit)
		if err != nil {
			return err
		}

		entry, err := uow.AppendTransaction(ctx, models.Transaction{
			UserID:          userID,
			TransactionType: models.TxWalletDeposit,
			Amount:          amount,
			PaymentMethod:   method,
			Reference:       "DEP_" + uuid.NewString(),
			Status:          models.TxCompleted,
			Description:     fmt.Sprintf("Deposited $%.2f via %s", amount, method),
			BalanceBefore:   balanceBefore,
			BalanceAfter:    wallet.Balance,
			Metadata:        map[string]any{"card_last4": "4242"},
		})
		if err != nil {
			return fmt.Errorf("append journal entry: %w", err)
		}
		result = WalletResult{Transaction: entry, NewBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		e.countDeposit(statusFailed)
		return WalletResult{}, err
	}

	e.countDeposit(statusCompleted)
	return result, nil
}

// Withdraw debits funds from the user's wallet and appends a journal entry.
// The $1 minimum matches the deposit side.
func (e *Engine) Withdraw(ctx context.Context, userID int64, amount float64, bankName string) (WalletResult, error) {
	if amount < 1 {
		return WalletResult{}, ErrInvalidAmount
	}
	if bankName == "" {
		bankName = "Bank Account"
	}

	var result WalletResult
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		ledger := walletLedger{uow: uow, now: e.now}
		balanceBefore, wallet, err := ledger.debit(ctx, userID, amount, debitWithdrawal)
		if err != nil {
			return err
		}

		entry, err := uow.AppendTransaction(ctx, models.Transaction{
			UserID:          userID,
			TransactionType: models.TxWalletWithdrawal,
			Amount:          amount,
			PaymentMethod:   models.PaymentBankTransfer,
			Reference:       "WTH_" + uuid.NewString(),
			Status:          models.TxCompleted,
			Description:     fmt.Sprintf("Withdrew $%.2f", amount),
			BalanceBefore:   balanceBefore,
			BalanceAfter:    wallet.Balance,
			Metadata:        map[string]any{"bank_name": bankName},
		})
		if err != nil {
			return fmt.Errorf("append journal entry: %w", err)
		}
		result = WalletResult{Transaction: entry, NewBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		e.countWithdrawal(statusFailed)
		return WalletResult{}, err
	}

	e.countWithdrawal(statusCompleted)
	return result, nil
}

// Wallet returns the user's wallet, creating it on first touch.
func (e *Engine) Wallet(ctx context.Context, userID int64) (models.Wallet, error) {
	var wallet models.Wallet
	err := e.store.RunInTx(ctx, func(uow storage.UnitOfWork) error {
		w, err := uow.GetOrCreateWallet(ctx, userID)
		if err != nil {
			return err
		}
		wallet = w
		return nil
	})
	if err != nil {
		return models.Wallet{}, err
	}
	return wallet, nil
}

func (e *Engine) countPurchase(status string) {
	if e.metrics != nil {
		e.metrics.Purchases.WithLabelValues(status).Inc()
	}
}

func (e *Engine) countPayout(status string) {
	if e.metrics != nil {
		e.metrics.Payouts.WithLabelValues(status).Inc()
	}
}

func (e *Engine) countDeposit(status string) {
	if e.metrics != nil {
		e.metrics.Deposits.WithLabelValues(status).Inc()
	}
}

func (e *Engine) countWithdrawal(status string) {
	if e.metrics != nil {
		e.metrics.Withdrawals.WithLabelValues(status).Inc()
	}
}

func (e *Engine) countSkippedDistribution() {
	if e.metrics != nil {
		e.metrics.SkippedDistributions.Inc()
	}
}
