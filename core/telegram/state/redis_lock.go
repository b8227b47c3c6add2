package state

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/lotbot/core/logger"
)

const (
	defaultLockPrefix = "fsm:lock:"
	defaultLockExpiry = 30 * time.Second
)

// RedisLocks serialises a user's events across bot instances sharing one Redis.
// Waiters inside this process queue on a local lock first, so each process
// contends for the Redis mutex at most once per user.
type RedisLocks struct {
	local  *UserLocks
	rs     *redsync.Redsync
	prefix string
	expiry time.Duration
}

// RedisLockOptions tunes RedisLocks; zero values take defaults.
type RedisLockOptions struct {
	KeyPrefix string
	// Expiry bounds how long a crashed holder can block the user.
	Expiry time.Duration
}

// NewRedisLocks builds a Locker on top of client.
func NewRedisLocks(client redis.UniversalClient, opts RedisLockOptions) *RedisLocks {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultLockPrefix
	}
	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = defaultLockExpiry
	}
	return &RedisLocks{
		local:  NewUserLocks(),
		rs:     redsync.New(goredis.NewPool(client)),
		prefix: prefix,
		expiry: expiry,
	}
}

// Acquire implements Locker.
func (l *RedisLocks) Acquire(ctx context.Context, userID int64) (func(), error) {
	unlockLocal := l.local.Lock(userID)

	mutex := l.rs.NewMutex(l.prefix+strconv.FormatInt(userID, 10),
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(64),
		redsync.WithRetryDelay(50*time.Millisecond),
	)
	if err := mutex.LockContext(ctx); err != nil {
		unlockLocal()
		return nil, fmt.Errorf("state: lock user %d: %w", userID, err)
	}

	return func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil || !ok {
			attrs := []slog.Attr{slog.Int64("user_id", userID)}
			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
			}
			logger.Warn(ctx, "store.state", "redis.unlock", attrs...)
		}
		unlockLocal()
	}, nil
}
