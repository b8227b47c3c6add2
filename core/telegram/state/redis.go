package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/lotbot/core/logger"
)

const defaultKeyPrefix = "fsm:"

// RedisOptions configures a Redis-backed Store.
type RedisOptions struct {
	URL       string
	KeyPrefix string
	// TTL bounds how long an abandoned conversation is kept; zero keeps it until cleared.
	TTL time.Duration
}

// RedisStore keeps conversation values in Redis so they survive bot restarts.
type RedisStore[S any] struct {
	client redis.UniversalClient
	codec  Codec[S]
	prefix string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity.
func NewRedisStore[S any](ctx context.Context, opts RedisOptions, codec Codec[S]) (*RedisStore[S], error) {
	if codec == nil {
		return nil, errors.New("state: nil codec")
	}
	parsed, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("state: parse redis url: %w", err)
	}
	client := redis.NewClient(parsed)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("state: connect to redis: %w", err)
	}

	logger.Info(ctx, "store.state", "redis.connect",
		slog.String("status", "ok"),
		slog.String("host", parsed.Addr),
	)
	return NewRedisStoreWithClient(client, opts, codec), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient[S any](client redis.UniversalClient, opts RedisOptions, codec Codec[S]) *RedisStore[S] {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisStore[S]{
		client: client,
		codec:  codec,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

func (r *RedisStore[S]) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Get loads and decodes the user's value.
func (r *RedisStore[S]) Get(ctx context.Context, userID int64) (S, bool, error) {
	var zero S
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("state: get %d: %w", userID, err)
	}
	v, err := r.codec.Unmarshal(data)
	if err != nil {
		return zero, false, fmt.Errorf("state: decode %d: %w", userID, err)
	}
	return v, true, nil
}

// Set encodes and stores the user's value.
func (r *RedisStore[S]) Set(ctx context.Context, userID int64, value S) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("state: encode %d: %w", userID, err)
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("state: set %d: %w", userID, err)
	}
	return nil
}

// Clear deletes the user's value.
func (r *RedisStore[S]) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("state: clear %d: %w", userID, err)
	}
	return nil
}

// Client returns the underlying connection, shared with RedisLocks.
func (r *RedisStore[S]) Client() redis.UniversalClient {
	return r.client
}

// Close releases the Redis connection.
func (r *RedisStore[S]) Close() error {
	return r.client.Close()
}
