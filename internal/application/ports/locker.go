package ports

import (
	"context"
	"time"
)

// Locker serializes balance mutations per (wallet, credit type) pair.
// Acquire blocks until the lease is granted or the context/wait budget
// runs out; a timed-out acquisition surfaces as errors.ErrLockBusy.
//
// Leases are time-bounded so a crashed holder cannot wedge the pair
// forever. A handler that outlives its lease loses the guarantee; the
// TTL is sized well above the handler budget.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}

// Lease is a held lock. Release is idempotent and only removes the lock
// if this lease still owns it.
type Lease interface {
	Release(ctx context.Context) error
}
