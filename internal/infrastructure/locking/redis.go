// Package locking provides the per-(wallet, credit type) lease locks
// that serialize balance mutations. The Redis implementation is the
// production one; the in-memory one backs tests and single-node runs.
package locking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/credgem/credgem/internal/application/ports"
	domainErrors "github.com/credgem/credgem/internal/domain/errors"
)

var _ ports.Locker = (*RedisLocker)(nil)

const (
	keyPrefix     = "credgem:lock:"
	retryInterval = 50 * time.Millisecond
)

// releaseScript deletes the lock only if the caller still owns it, so a
// lease that expired and was re-acquired by someone else is never
// removed by the old holder.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// RedisLocker implements ports.Locker on SET NX PX. Each lease carries
// a random token; release is compare-and-delete on that token.
type RedisLocker struct {
	client  *redis.Client
	waitFor time.Duration
}

// NewRedisLocker creates a locker that waits up to waitFor for a busy
// lock before giving up with ErrLockBusy.
func NewRedisLocker(client *redis.Client, waitFor time.Duration) *RedisLocker {
	return &RedisLocker{client: client, waitFor: waitFor}
}

// Acquire takes the lock for key, polling until the wait budget runs
// out. The context cancels the wait early.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	deadline := time.Now().Add(l.waitFor)
	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return &redisLease{client: l.client, key: redisKey, token: token}, nil
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

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.key, err)
	}
	return nil
}
