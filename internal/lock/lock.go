package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smukkama/era5-sync/internal/logger"
)

// releaseScript deletes the key only while it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// refreshScript resets the TTL only while the key still holds our token
const refreshScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`

// ErrLeaseLost is returned when the lock expired or was taken over
var ErrLeaseLost = errors.New("lock lease lost")

// Client is the subset of *redis.Client used by the lock
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// LockHeldError is returned when another process holds the lock
type LockHeldError struct {
	Key    string
	Holder string
}

func (e *LockHeldError) Error() string {
	if e.Holder == "" {
		return fmt.Sprintf("lock %s is held by another process", e.Key)
	}
	return fmt.Sprintf("lock %s is held by %s", e.Key, e.Holder)
}

// Locker hands out a single-writer lease on one Redis key
type Locker struct {
	client Client
	key    string
	ttl    time.Duration
}

// New creates a locker for key. The TTL bounds how long a crashed holder
// blocks other processes.
func New(client Client, key string, ttl time.Duration) *Locker {
	return &Locker{client: client, key: key, ttl: ttl}
}

// Lease is a held lock
type Lease struct {
	locker *Locker
	token  string
}

// Token identifies the holder in Redis
func (l *Lease) Token() string {
	return l.token
}

// Acquire takes the lock or returns *LockHeldError
func (l *Locker) Acquire(ctx context.Context) (*Lease, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set lock in Redis: %w", err)
	}
	if !ok {
		holder, err := l.client.Get(ctx, l.key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("failed to read lock holder: %w", err)
		}
		return nil, &LockHeldError{Key: l.key, Holder: holder}
	}

	return &Lease{locker: l, token: token}, nil
}

// Release drops the lock if it is still ours. Releasing an expired or
// stolen lock is not an error.
func (l *Lease) Release(ctx context.Context) error {
	_, err := l.locker.client.Eval(ctx, releaseScript, []string{l.locker.key}, l.token).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// Refresh extends the lease by the locker's TTL. It returns ErrLeaseLost
// once another process holds the key or it has expired.
func (l *Lease) Refresh(ctx context.Context) error {
	n, err := l.locker.client.Eval(ctx, refreshScript, []string{l.locker.key},
		l.token, l.locker.ttl.Milliseconds()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLeaseLost, l.locker.key)
	}
	return nil
}

// Hold refreshes the lease every third of its TTL until stop is called.
// The returned context is cancelled with ErrLeaseLost as its cause when
// the lease cannot be kept. Transient Redis errors are retried on the next
// tick.
func (l *Lease) Hold(ctx context.Context) (context.Context, func()) {
	held, cancel := context.WithCancelCause(ctx)

	interval := l.locker.ttl / 3
	if interval <= 0 {
		interval = time.Second
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		log := logger.FromContext(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-held.Done():
				return
			case <-ticker.C:
			}

			err := l.Refresh(held)
			if err == nil {
				continue
			}
			if held.Err() != nil {
				return
			}
			if errors.Is(err, ErrLeaseLost) {
				log.Error().Err(err).Msg("lock lost, stopping run")
				cancel(err)
				return
			}
			log.Warn().Err(err).Msg("lock refresh failed")
		}
	}()

	return held, func() {
		cancel(nil)
		<-done
	}
}
