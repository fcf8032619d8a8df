package settlement

import "errors"

// Settlement failure taxonomy. Precondition failures are returned before any
// mutation begins; mutation-phase failures roll back the whole unit of work.
var (
	// ErrPropertyNotFound indicates the property does not exist.
	ErrPropertyNotFound = errors.New("property not found")

	// ErrNotAvailable indicates the property is not open for investment
	// (not approved, or sold out).
	ErrNotAvailable = errors.New("property is not available for investment")

	// ErrInsufficientInventory indicates the purchase asks for more tokens
	// than remain available.
	ErrInsufficientInventory = errors.New("not enough tokens available")

	// ErrSelfTradeForbidden indicates a seller tried to buy their own tokens.
	ErrSelfTradeForbidden = errors.New("cannot buy tokens from your own property")

	// ErrInsufficientFunds indicates a debit larger than the wallet balance.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrWalletLocked indicates a debit against an administratively locked
	// wallet. Credits still land so rent is never lost.
	ErrWalletLocked = errors.New("wallet is locked")

	// ErrAlreadyProcessed indicates a rent payout already exists for the
	// (property, month, year) period.
	ErrAlreadyProcessed = errors.New("rent payout already processed for this period")

	// ErrNoInvestors indicates the property has no active ownership rows.
	ErrNoInvestors = errors.New("no investors found for this property")

	// ErrOwnerNotFound indicates a rent credit against a missing or inactive
	// ownership row. The payout skips that distribution and continues.
	ErrOwnerNotFound = errors.New("no active ownership for user and property")

	// ErrInvalidAmount indicates a non-positive amount or token count.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPeriod indicates a payout month outside 1..12.
	ErrInvalidPeriod = errors.New("invalid payout period")

	// ErrDepositLimit indicates a deposit above the configured maximum.
	ErrDepositLimit = errors.New("deposit exceeds maximum allowed amount")
)
