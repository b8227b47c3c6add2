package state

import (
	"context"
	"sync"
)

// Locker grants exclusive per-user sections. The returned func releases the section.
type Locker interface {
	Acquire(ctx context.Context, userID int64) (func(), error)
}

// UserLocks serialises work per user while letting different users proceed in parallel.
type UserLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewUserLocks returns an empty lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{locks: make(map[int64]*userLock)}
}

// Lock blocks until the user's lock is held and returns the matching unlock function.
// Entries are dropped once no goroutine holds or waits for them.
func (l *UserLocks) Lock(userID int64) func() {
	l.mu.Lock()
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}

// Acquire implements Locker. It never fails.
func (l *UserLocks) Acquire(_ context.Context, userID int64) (func(), error) {
	return l.Lock(userID), nil
}

func (l *UserLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
