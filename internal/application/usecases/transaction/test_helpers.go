package transaction

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/credgem/credgem/internal/application/ports"
	"github.com/credgem/credgem/internal/domain/entities"
	"github.com/credgem/credgem/internal/domain/errors"
	"github.com/credgem/credgem/internal/domain/events"
)

// In-memory fakes for the ports. Shared by the use case tests in this
// package; the postgres integration tests cover the real adapters.

type fakeWalletRepo struct {
	wallets map[string]*entities.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*entities.Wallet)}
}

func (r *fakeWalletRepo) Save(_ context.Context, w *entities.Wallet) error {
	r.wallets[w.ID()] = w
	return nil
}

func (r *fakeWalletRepo) FindByID(_ context.Context, id string) (*entities.Wallet, error) {
	w, ok := r.wallets[id]
	if !ok {
		return nil, errors.ErrWalletNotFound
	}
	return w, nil
}

func (r *fakeWalletRepo) List(_ context.Context, filter ports.WalletFilter, offset, limit int) ([]*entities.Wallet, int, error) {
	var matched []*entities.Wallet
	for _, w := range r.wallets {
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

type fakeCreditTypeRepo struct {
	creditTypes map[string]*entities.CreditType
}

func newFakeCreditTypeRepo() *fakeCreditTypeRepo {
	return &fakeCreditTypeRepo{creditTypes: make(map[string]*entities.CreditType)}
}

func (r *fakeCreditTypeRepo) Save(_ context.Context, ct *entities.CreditType) error {
	r.creditTypes[ct.ID()] = ct
	return nil
}

func (r *fakeCreditTypeRepo) FindByID(_ context.Context, id string) (*entities.CreditType, error) {
	ct, ok := r.creditTypes[id]
	if !ok {
		return nil, errors.ErrCreditTypeNotFound
	}
	return ct, nil
}

func (r *fakeCreditTypeRepo) FindByIDs(_ context.Context, ids []string) (map[string]*entities.CreditType, error) {
	result := make(map[string]*entities.CreditType)
	for _, id := range ids {
		if ct, ok := r.creditTypes[id]; ok {
			result[id] = ct
		}
	}
	return result, nil
}

func (r *fakeCreditTypeRepo) List(_ context.Context, offset, limit int) ([]*entities.CreditType, int, error) {
	var all []*entities.CreditType
	for _, ct := range r.creditTypes {
		all = append(all, ct)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *fakeCreditTypeRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.creditTypes[id]; !ok {
		return errors.ErrCreditTypeNotFound
	}
	delete(r.creditTypes, id)
	return nil
}

type fakeBalanceRepo struct {
	balances map[string]*entities.Balance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]*entities.Balance)}
}

func balanceKey(walletID, creditTypeID string) string {
	return walletID + "/" + creditTypeID
}

func (r *fakeBalanceRepo) Find(_ context.Context, walletID, creditTypeID string) (*entities.Balance, error) {
	b, ok := r.balances[balanceKey(walletID, creditTypeID)]
	if !ok {
		return nil, errors.ErrBalanceNotFound
	}
	return b, nil
}

func (r *fakeBalanceRepo) Save(_ context.Context, b *entities.Balance) error {
	r.balances[balanceKey(b.WalletID(), b.CreditTypeID())] = b
	return nil
}

func (r *fakeBalanceRepo) FindByWallet(_ context.Context, walletID string) ([]*entities.Balance, error) {
	var result []*entities.Balance
	for _, b := range r.balances {
		if b.WalletID() == walletID {
			result = append(result, b)
		}
	}
	return result, nil
}

type fakeTransactionRepo struct {
	transactions map[string]*entities.Transaction
	order        []string
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: make(map[string]*entities.Transaction)}
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *entities.Transaction) error {
	if tx.ExternalID() != nil {
		for _, id := range r.order {
			existing := r.transactions[id]
			if existing.WalletID() == tx.WalletID() &&
				existing.ExternalID() != nil &&
				*existing.ExternalID() == *tx.ExternalID() {
				return errors.ErrDuplicateTransaction
			}
		}
	}
	r.transactions[tx.ID()] = tx
	r.order = append(r.order, tx.ID())
	return nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, tx *entities.Transaction) error {
	if _, ok := r.transactions[tx.ID()]; !ok {
		return errors.ErrTransactionNotFound
	}
	r.transactions[tx.ID()] = tx
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id string) (*entities.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return nil, errors.ErrTransactionNotFound
	}
	return tx, nil
}

func (r *fakeTransactionRepo) List(_ context.Context, filter ports.TransactionFilter, offset, limit int) ([]*entities.Transaction, int, error) {
	var matched []*entities.Transaction
	// Newest first: walk insertion order backwards.
	for i := len(r.order) - 1; i >= 0; i-- {
		tx := r.transactions[r.order[i]]
		if filter.WalletID != nil && tx.WalletID() != *filter.WalletID {
			continue
		}
		if filter.CreditTypeID != nil && tx.CreditTypeID() != *filter.CreditTypeID {
			continue
		}
		if filter.Type != nil && tx.Type() != *filter.Type {
			continue
		}
		if filter.Status != nil && tx.Status() != *filter.Status {
			continue
		}
		if filter.ExternalID != nil && (tx.ExternalID() == nil || *tx.ExternalID() != *filter.ExternalID) {
			continue
		}
		matched = append(matched, tx)
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

func (r *fakeTransactionRepo) byStatus(status entities.TransactionStatus) []*entities.Transaction {
	var result []*entities.Transaction
	for _, id := range r.order {
		if tx := r.transactions[id]; tx.Status() == status {
			result = append(result, tx)
		}
	}
	return result
}

type fakePublisher struct {
	published []events.DomainEvent
}

func (p *fakePublisher) Publish(_ context.Context, event events.DomainEvent) error {
	p.published = append(p.published, event)
	return nil
}

func (p *fakePublisher) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	p.published = append(p.published, batch...)
	return nil
}

// failingPublisher rejects batch writes while still accepting single
// events, so failure finalization can run.
type failingPublisher struct {
	fakePublisher
	batchErr error
}

func (p *failingPublisher) PublishBatch(_ context.Context, _ []events.DomainEvent) error {
	return p.batchErr
}

func (p *fakePublisher) byType(eventType string) []events.DomainEvent {
	var result []events.DomainEvent
	for _, e := range p.published {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

type fakeLease struct{}

func (fakeLease) Release(context.Context) error { return nil }

type fakeLocker struct {
	busy     bool
	acquired []string
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (ports.Lease, error) {
	if l.busy {
		return nil, errors.ErrLockBusy
	}
	l.acquired = append(l.acquired, key)
	return fakeLease{}, nil
}

// fakeUnitOfWork runs the function directly; the fakes have no real
// transactionality to manage.
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fixture bundles the fakes plus a wired orchestrator.
type fixture struct {
	wallets      *fakeWalletRepo
	creditTypes  *fakeCreditTypeRepo
	balances     *fakeBalanceRepo
	transactions *fakeTransactionRepo
	publisher    *fakePublisher
	locker       *fakeLocker
	orch         *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		wallets:      newFakeWalletRepo(),
		creditTypes:  newFakeCreditTypeRepo(),
		balances:     newFakeBalanceRepo(),
		transactions: newFakeTransactionRepo(),
		publisher:    &fakePublisher{},
		locker:       &fakeLocker{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.orch = NewOrchestrator(
		f.wallets, f.creditTypes, f.balances, f.transactions,
		f.publisher, f.locker, fakeUnitOfWork{}, logger,
	)
	return f
}

// seed creates an active wallet and a credit type, returning their ids.
func (f *fixture) seed() (walletID, creditTypeID string) {
	wallet, err := entities.NewWallet("test-wallet", nil)
	if err != nil {
		panic(err)
	}
	f.wallets.wallets[wallet.ID()] = wallet

	ct, err := entities.NewCreditType("points", "test credits")
	if err != nil {
		panic(err)
	}
	f.creditTypes.creditTypes[ct.ID()] = ct

	return wallet.ID(), ct.ID()
}
