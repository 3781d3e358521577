package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credgem/credgem/internal/application/dtos"
	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
	"github.com/credgem/credgem/internal/domain/valueobjects"
)

func TestCreateWallet(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	uc := NewCreateWalletUseCase(wallets, publisher, uow)

	dto, err := uc.Execute(context.Background(), dtos.CreateWalletCommand{
		Name:    "acme-prod",
		Context: map[string]any{"tier": "pro"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "active", dto.Status)
	assert.Empty(t, dto.Balances)

	_, ok := wallets.store[dto.ID]
	assert.True(t, ok)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventTypeWalletCreated, publisher.published[0].EventType())

	_ = balances
}

func TestCreateWallet_InvalidName(t *testing.T) {
	wallets, _, publisher, uow := newFakes()
	uc := NewCreateWalletUseCase(wallets, publisher, uow)

	_, err := uc.Execute(context.Background(), dtos.CreateWalletCommand{Name: ""})
	assert.True(t, errors.IsValidation(err))
	assert.Empty(t, wallets.store)
}

func TestGetWallet_IncludesBalances(t *testing.T) {
	wallets, balances, _, _ := newFakes()
	w := seedWallet(t, wallets, "acme-prod")

	b := entities.NewBalance(w.ID(), "points")
	b.Deposit(valueobjects.MustAmount("75"))
	balances.store = append(balances.store, b)

	uc := NewGetWalletUseCase(wallets, balances)
	dto, err := uc.Execute(context.Background(), w.ID())
	require.NoError(t, err)

	require.Len(t, dto.Balances, 1)
	assert.Equal(t, "75", dto.Balances[0].Available)
}

func TestGetWallet_NotFound(t *testing.T) {
	wallets, balances, _, _ := newFakes()
	uc := NewGetWalletUseCase(wallets, balances)

	_, err := uc.Execute(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrWalletNotFound)
}

func TestUpdateWallet(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	w := seedWallet(t, wallets, "old-name")

	uc := NewUpdateWalletUseCase(wallets, balances, publisher, uow)
	newName := "new-name"
	dto, err := uc.Execute(context.Background(), dtos.UpdateWalletCommand{
		WalletID: w.ID(),
		Name:     &newName,
	})
	require.NoError(t, err)
	assert.Equal(t, "new-name", dto.Name)

	// Context untouched when omitted.
	assert.Equal(t, "pro", dto.Context["tier"])
}

func TestUpdateWallet_ReplacesContextWholesale(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	w := seedWallet(t, wallets, "acme")

	uc := NewUpdateWalletUseCase(wallets, balances, publisher, uow)
	newCtx := map[string]any{"region": "eu"}
	dto, err := uc.Execute(context.Background(), dtos.UpdateWalletCommand{
		WalletID: w.ID(),
		Context:  &newCtx,
	})
	require.NoError(t, err)

	assert.Equal(t, "eu", dto.Context["region"])
	_, hadTier := dto.Context["tier"]
	assert.False(t, hadTier, "replace is not a merge")
}

func TestDeleteWallet(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	w := seedWallet(t, wallets, "acme")

	uc := NewDeleteWalletUseCase(wallets, balances, publisher, uow)
	require.NoError(t, uc.Execute(context.Background(), w.ID()))

	assert.Equal(t, entities.WalletStatusInactive, wallets.store[w.ID()].Status())
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventTypeWalletDeactivated, publisher.published[0].EventType())
}

func TestDeleteWallet_RefusedWithFunds(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	w := seedWallet(t, wallets, "acme")

	b := entities.NewBalance(w.ID(), "points")
	b.Deposit(valueobjects.MustAmount("5"))
	balances.store = append(balances.store, b)

	uc := NewDeleteWalletUseCase(wallets, balances, publisher, uow)
	err := uc.Execute(context.Background(), w.ID())
	assert.ErrorIs(t, err, errors.ErrWalletHasBalances)
	assert.Equal(t, entities.WalletStatusActive, wallets.store[w.ID()].Status())
}

func TestDeleteWallet_DrainedBalancesAllowed(t *testing.T) {
	wallets, balances, publisher, uow := newFakes()
	w := seedWallet(t, wallets, "acme")

	// Spent history does not block deletion; only live funds do.
	b := entities.NewBalance(w.ID(), "points")
	b.Deposit(valueobjects.MustAmount("5"))
	require.NoError(t, b.DebitDirect(valueobjects.MustAmount("5")))
	balances.store = append(balances.store, b)

	uc := NewDeleteWalletUseCase(wallets, balances, publisher, uow)
	assert.NoError(t, uc.Execute(context.Background(), w.ID()))
}

func TestListWallets(t *testing.T) {
	wallets, balances, _, _ := newFakes()
	seedWallet(t, wallets, "acme-prod")
	seedWallet(t, wallets, "acme-staging")
	seedWallet(t, wallets, "globex")

	uc := NewListWalletsUseCase(wallets, balances)

	name := "acme"
	page, err := uc.Execute(context.Background(), dtos.ListWalletsQuery{
		Name:     &name,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Len(t, page.Wallets, 2)
	assert.Equal(t, 2, page.Pagination.TotalCount)
}

// ---- fakes ----

type fakeWalletRepo struct {
	store map[string]*entities.Wallet
	order []string
}

func (r *fakeWalletRepo) Save(_ context.Context, w *entities.Wallet) error {
	if _, ok := r.store[w.ID()]; !ok {
		r.order = append(r.order, w.ID())
	}
	r.store[w.ID()] = w
	return nil
}

func (r *fakeWalletRepo) FindByID(_ context.Context, id string) (*entities.Wallet, error) {
	w, ok := r.store[id]
	if !ok {
		return nil, errors.ErrWalletNotFound
	}
	return w, nil
}

func (r *fakeWalletRepo) List(_ context.Context, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, int, error) {
	var matched []*entities.Wallet
	for _, id := range r.order {
		w := r.store[id]
		if filter.Name != nil && !strings.Contains(strings.ToLower(w.Name()), strings.ToLower(*filter.Name)) {
			continue
		}
		if filter.Status != nil && w.Status() != *filter.Status {
			continue
		}
		matched = append(matched, w)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

type fakeBalanceRepo struct {
	store []*entities.Balance
}

func (r *fakeBalanceRepo) Find(_ context.Context, walletID, creditTypeID string) (*entities.Balance, error) {
	for _, b := range r.store {
		if b.WalletID() == walletID && b.CreditTypeID() == creditTypeID {
			return b, nil
		}
	}
	return nil, errors.ErrBalanceNotFound
}

func (r *fakeBalanceRepo) Save(_ context.Context, b *entities.Balance) error {
	for i, existing := range r.store {
		if existing.ID() == b.ID() {
			r.store[i] = b
			return nil
		}
	}
	r.store = append(r.store, b)
	return nil
}

func (r *fakeBalanceRepo) FindByWallet(_ context.Context, walletID string) ([]*entities.Balance, error) {
	var result []*entities.Balance
	for _, b := range r.store {
		if b.WalletID() == walletID {
			result = append(result, b)
		}
	}
	return result, nil
}

type fakePublisher struct {
	published []events.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, e events.DomainEvent) error {
	p.published = append(p.published, e)
	return nil
}

func (p *fakePublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	p.published = append(p.published, batch...)
	return nil
}

type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newFakes() (*fakeWalletRepo, *fakeBalanceRepo, *fakePublisher, fakeUnitOfWork) {
	return &fakeWalletRepo{store: make(map[string]*entities.Wallet)},
		&fakeBalanceRepo{},
		&fakePublisher{},
		fakeUnitOfWork{}
}

func seedWallet(t *testing.T, repo *fakeWalletRepo, name string) *entities.Wallet {
	t.Helper()
	w, err := entities.NewWallet(name, map[string]any{"tier": "pro"})
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), w))
	return w
}
