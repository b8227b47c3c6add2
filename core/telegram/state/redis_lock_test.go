package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLockClient(t *testing.T, mr *miniredis.Miniredis) redis.UniversalClient {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisLocksHoldsKeyUntilUnlock(t *testing.T) {
	mr := miniredis.RunT(t)
	locks := NewRedisLocks(newLockClient(t, mr), RedisLockOptions{KeyPrefix: "test:lock:"})

	unlock, err := locks.Acquire(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:7"))

	unlock()
	assert.False(t, mr.Exists("test:lock:7"))
}

func TestRedisLocksSerialiseAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	a := NewRedisLocks(newLockClient(t, mr), RedisLockOptions{})
	b := NewRedisLocks(newLockClient(t, mr), RedisLockOptions{})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 6; i++ {
		locker := Locker(a)
		if i%2 == 1 {
			locker = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Acquire(context.Background(), 42)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestRedisLocksHonourContext(t *testing.T) {
	mr := miniredis.RunT(t)
	holder := NewRedisLocks(newLockClient(t, mr), RedisLockOptions{})
	other := NewRedisLocks(newLockClient(t, mr), RedisLockOptions{})

	unlock, err := holder.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = other.Acquire(ctx, 1)
	assert.Error(t, err)

	// A different user is unaffected.
	unlock2, err := other.Acquire(context.Background(), 2)
	require.NoError(t, err)
	unlock2()
}

func TestUserLocksAcquire(t *testing.T) {
	var l Locker = NewUserLocks()
	unlock, err := l.Acquire(context.Background(), 3)
	require.NoError(t, err)
	unlock()
}
