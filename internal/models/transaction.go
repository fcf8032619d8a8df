package models

import "time"

// Transaction types. Every balance-affecting event appends exactly one entry
// per affected user.
const (
	TxTokenPurchase    = "token_purchase"
	TxTokenSale        = "token_sale"
	TxRentPayout       = "rent_payout"
	TxWalletDeposit    = "wallet_deposit"
	TxWalletWithdrawal = "wallet_withdrawal"
)

const (
	PaymentWallet       = "wallet"
	PaymentCard         = "card"
	PaymentBankTransfer = "bank_transfer"
	PaymentSystem       = "system"
)

const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
	TxRefunded  = "refunded"
)

// Transaction is an immutable journal entry. Rows are insert-only; there is
// deliberately no update path for this table.
type Transaction struct {
	ID              int64          `json:"id"`
	UserID          int64          `json:"user_id"`
	PropertyID      *int64         `json:"property_id,omitempty"`
	TransactionType string         `json:"transaction_type"`
	Tokens          int64          `json:"tokens,omitempty"`
	Amount          float64        `json:"amount"`
	PricePerToken   float64        `json:"price_per_token,omitempty"`
	PaymentMethod   string         `json:"payment_method"`
	Reference       string         `json:"reference"`
	Status          string         `json:"status"`
	Description     string         `json:"description"`
	BalanceBefore   float64        `json:"balance_before"`
	BalanceAfter    float64        `json:"balance_after"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
