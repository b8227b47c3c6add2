package state

import "context"

// Store keeps at most one conversation value per user.
// Absence of a value means the user is idle.
type Store[S any] interface {
	// Get returns the user's current value and whether one exists.
	Get(ctx context.Context, userID int64) (S, bool, error)
	// Set replaces the user's value.
	Set(ctx context.Context, userID int64, value S) error
	// Clear removes the user's value. Clearing an idle user is not an error.
	Clear(ctx context.Context, userID int64) error
}

// Codec converts stored values to bytes for out-of-process backends.
type Codec[S any] interface {
	Marshal(value S) ([]byte, error)
	Unmarshal(data []byte) (S, error)
}
