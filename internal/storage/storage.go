package storage

import (
	"context"
	"errors"

	"github.com/brickvest/brickvest-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations for identities.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error)
	CountUsersByRole(ctx context.Context, role string) (int64, error)
}

// PropertyStore captures persistence operations for property listings.
type PropertyStore interface {
	CreateProperty(ctx context.Context, p models.Property) (models.Property, error)
	GetProperty(ctx context.Context, id int64) (models.Property, error)
	UpdateProperty(ctx context.Context, p models.Property) (models.Property, error)
	DeleteProperty(ctx context.Context, id int64) error
	ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, int64, error)
	ListPropertiesBySeller(ctx context.Context, sellerID int64) ([]models.Property, error)
	ListFeaturedProperties(ctx context.Context, limit int) ([]models.Property, error)
	CountPropertiesByStatus(ctx context.Context, status string) (int64, error)
}

// PortfolioStore captures read paths over ownership rows.
type PortfolioStore interface {
	GetOwnership(ctx context.Context, userID, propertyID int64) (models.Ownership, error)
	ListInvestments(ctx context.Context, userID int64) ([]models.Investment, error)
}

// JournalStore captures read paths over the transaction journal.
type JournalStore interface {
	GetTransaction(ctx context.Context, id, userID int64) (models.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID int64, types []string, limit, offset int) ([]models.Transaction, int64, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
	SumTransactionAmounts(ctx context.Context, txType, status string) (float64, error)
	CountTransactions(ctx context.Context) (int64, error)
}

// PayoutStore captures read paths over rent payout records.
type PayoutStore interface {
	ListRentPayouts(ctx context.Context, propertyID *int64, limit, offset int) ([]models.RentPayout, int64, error)
}

// UnitOfWork exposes the mutating operations available inside one atomic
// store transaction. Row-returning accessors suffixed ForUpdate hold a lock
// on the row until the unit commits or rolls back.
type UnitOfWork interface {
	PropertyForUpdate(ctx context.Context, id int64) (models.Property, error)
	UpdatePropertyInventory(ctx context.Context, p models.Property) error

	// GetOrCreateWallet returns the user's wallet, creating a zero-balance
	// row first if none exists, and locks it for the transaction.
	GetOrCreateWallet(ctx context.Context, userID int64) (models.Wallet, error)
	UpdateWallet(ctx context.Context, w models.Wallet) error

	OwnershipForUpdate(ctx context.Context, userID, propertyID int64) (models.Ownership, error)
	CreateOwnership(ctx context.Context, o models.Ownership) (models.Ownership, error)
	UpdateOwnership(ctx context.Context, o models.Ownership) error
	ListActiveOwnerships(ctx context.Context, propertyID int64) ([]models.Ownership, error)

	AppendTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error)

	HasRentPayout(ctx context.Context, propertyID int64, month, year int) (bool, error)
	CreateRentPayout(ctx context.Context, p models.RentPayout) (models.RentPayout, error)
}

// TxRunner runs a function inside one atomic unit of work. If fn returns an
// error the unit rolls back and nothing persists.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(UnitOfWork) error) error
}

// Store is the full persistence surface consumed by the HTTP layer and the
// settlement engine.
type Store interface {
	UserStore
	PropertyStore
	PortfolioStore
	JournalStore
	PayoutStore
	TxRunner
	Close()
}
