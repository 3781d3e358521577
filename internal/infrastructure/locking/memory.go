package locking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/credgem/credgem/internal/application/ports"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

var _ ports.Locker = (*MemoryLocker)(nil)

type leaseEntry struct {
	token  string
	expiry time.Time
}

// MemoryLocker is a process-local ports.Locker for tests and
// single-node deployments. Expired leases are treated as free. Each
// lease carries a random token; release is compare-and-delete on that
// token, so a stale holder never removes a lock it no longer owns.
type MemoryLocker struct {
	mu      sync.Mutex
	leases  map[string]leaseEntry
	waitFor time.Duration
}

// NewMemoryLocker creates a locker that waits up to waitFor for a busy
// lock.
func NewMemoryLocker(waitFor time.Duration) *MemoryLocker {
	return &MemoryLocker{
		leases:  make(map[string]leaseEntry),
		waitFor: waitFor,
	}
}

// Acquire takes the lock for key, polling until the wait budget runs
// out.
func (l *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	token := uuid.NewString()

	deadline := time.Now().Add(l.waitFor)
	for {
		if l.tryAcquire(key, token, ttl) {
			return &memoryLease{locker: l, key: key, token: token}, nil
		}

		if time.Now().After(deadline) {
			return nil, domainErrors.ErrLockBusy
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

func (l *MemoryLocker) tryAcquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, held := l.leases[key]; held && time.Now().Before(entry.expiry) {
		return false
	}
	l.leases[key] = leaseEntry{token: token, expiry: time.Now().Add(ttl)}
	return true
}

func (l *MemoryLocker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, held := l.leases[key]; held && entry.token == token {
		delete(l.leases, key)
	}
}

type memoryLease struct {
	locker *MemoryLocker
	key    string
	token  string
}

func (l *memoryLease) Release(_ context.Context) error {
	l.locker.release(l.key, l.token)
	return nil
}
