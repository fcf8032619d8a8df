package settlement

import (
	"context"
	"maps"
	"slices"

	"github.com/brickvest/brickvest-be/internal/models"
	"github.com/brickvest/brickvest-be/internal/storage"
)

type ownershipKey struct {
	userID     int64
	propertyID int64
}

type payoutKey struct {
	propertyID int64
	month      int
	year       int
}

// fakeStore is an in-memory storage.TxRunner with real rollback semantics:
// RunInTx snapshots all state up front and restores it when fn fails, so the
// atomicity behavior under test matches the Postgres implementation.
type fakeStore struct {
	properties   map[int64]models.Property
	wallets      map[int64]models.Wallet
	ownerships   map[ownershipKey]models.Ownership
	transactions []models.Transaction
	payouts      map[payoutKey]models.RentPayout

	// staleOwners are returned from ListActiveOwnerships on top of the real
	// rows, simulating an ownership row that vanished mid-payout.
	staleOwners []models.Ownership

	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		properties: make(map[int64]models.Property),
		wallets:    make(map[int64]models.Wallet),
		ownerships: make(map[ownershipKey]models.Ownership),
		payouts:    make(map[payoutKey]models.RentPayout),
		nextID:     1000,
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addProperty(p models.Property) models.Property {
	if p.ID == 0 {
		p.ID = f.id()
	}
	f.properties[p.ID] = p
	return p
}

func (f *fakeStore) addWallet(w models.Wallet) models.Wallet {
	if w.ID == 0 {
		w.ID = f.id()
	}
	f.wallets[w.UserID] = w
	return w
}

func (f *fakeStore) addOwnership(o models.Ownership) models.Ownership {
	if o.ID == 0 {
		o.ID = f.id()
	}
	f.ownerships[ownershipKey{o.UserID, o.PropertyID}] = o
	return o
}

type fakeSnapshot struct {
	properties   map[int64]models.Property
	wallets      map[int64]models.Wallet
	ownerships   map[ownershipKey]models.Ownership
	transactions []models.Transaction
	payouts      map[payoutKey]models.RentPayout
	nextID       int64
}

func (f *fakeStore) snapshot() fakeSnapshot {
	return fakeSnapshot{
		properties:   maps.Clone(f.properties),
		wallets:      maps.Clone(f.wallets),
		ownerships:   maps.Clone(f.ownerships),
		transactions: slices.Clone(f.transactions),
		payouts:      maps.Clone(f.payouts),
		nextID:       f.nextID,
	}
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.properties = s.properties
	f.wallets = s.wallets
	f.ownerships = s.ownerships
	f.transactions = s.transactions
	f.payouts = s.payouts
	f.nextID = s.nextID
}

func (f *fakeStore) RunInTx(ctx context.Context, fn func(storage.UnitOfWork) error) error {
	before := f.snapshot()
	if err := fn(&fakeUnitOfWork{store: f}); err != nil {
		f.restore(before)
		return err
	}
	return nil
}

type fakeUnitOfWork struct {
	store *fakeStore
}

var _ storage.UnitOfWork = (*fakeUnitOfWork)(nil)

func (u *fakeUnitOfWork) PropertyForUpdate(ctx context.Context, id int64) (models.Property, error) {
	p, ok := u.store.properties[id]
	if !ok {
		return models.Property{}, storage.ErrNotFound
	}
	return p, nil
}

func (u *fakeUnitOfWork) UpdatePropertyInventory(ctx context.Context, p models.Property) error {
	if _, ok := u.store.properties[p.ID]; !ok {
		return storage.ErrNotFound
	}
	u.store.properties[p.ID] = p
	return nil
}

func (u *fakeUnitOfWork) GetOrCreateWallet(ctx context.Context, userID int64) (models.Wallet, error) {
	if w, ok := u.store.wallets[userID]; ok {
		return w, nil
	}
	w := models.Wallet{ID: u.store.id(), UserID: userID, Currency: "USD"}
	u.store.wallets[userID] = w
	return w, nil
}

func (u *fakeUnitOfWork) UpdateWallet(ctx context.Context, w models.Wallet) error {
	if _, ok := u.store.wallets[w.UserID]; !ok {
		return storage.ErrNotFound
	}
	u.store.wallets[w.UserID] = w
	return nil
}

func (u *fakeUnitOfWork) OwnershipForUpdate(ctx context.Context, userID, propertyID int64) (models.Ownership, error) {
	o, ok := u.store.ownerships[ownershipKey{userID, propertyID}]
	if !ok {
		return models.Ownership{}, storage.ErrNotFound
	}
	return o, nil
}

func (u *fakeUnitOfWork) CreateOwnership(ctx context.Context, o models.Ownership) (models.Ownership, error) {
	key := ownershipKey{o.UserID, o.PropertyID}
	if _, ok := u.store.ownerships[key]; ok {
		return models.Ownership{}, storage.ErrAlreadyExists
	}
	o.ID = u.store.id()
	u.store.ownerships[key] = o
	return o, nil
}

func (u *fakeUnitOfWork) UpdateOwnership(ctx context.Context, o models.Ownership) error {
	key := ownershipKey{o.UserID, o.PropertyID}
	if _, ok := u.store.ownerships[key]; !ok {
		return storage.ErrNotFound
	}
	u.store.ownerships[key] = o
	return nil
}

func (u *fakeUnitOfWork) ListActiveOwnerships(ctx context.Context, propertyID int64) ([]models.Ownership, error) {
	var out []models.Ownership
	for _, o := range u.store.ownerships {
		if o.PropertyID == propertyID && o.IsActive && o.TokensOwned > 0 {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b models.Ownership) int {
		return int(a.ID - b.ID)
	})
	for _, o := range u.store.staleOwners {
		if o.PropertyID == propertyID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (u *fakeUnitOfWork) AppendTransaction(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = u.store.id()
	u.store.transactions = append(u.store.transactions, t)
	return t, nil
}

func (u *fakeUnitOfWork) HasRentPayout(ctx context.Context, propertyID int64, month, year int) (bool, error) {
	_, ok := u.store.payouts[payoutKey{propertyID, month, year}]
	return ok, nil
}

func (u *fakeUnitOfWork) CreateRentPayout(ctx context.Context, p models.RentPayout) (models.RentPayout, error) {
	key := payoutKey{p.PropertyID, p.PayoutMonth, p.PayoutYear}
	if _, ok := u.store.payouts[key]; ok {
		return models.RentPayout{}, storage.ErrAlreadyExists
	}
	p.ID = u.store.id()
	u.store.payouts[key] = p
	return p, nil
}
