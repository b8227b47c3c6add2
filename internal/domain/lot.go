package domain

import "fmt"

// LotStatus is the moderation state of a lot.
type LotStatus string

const (
	LotPendingReview LotStatus = "pending"
	LotActive        LotStatus = "active"
	LotRejected      LotStatus = "rejected"
)

// Valid reports whether s is one of the known lot statuses.
func (s LotStatus) Valid() bool {
	switch s {
	case LotPendingReview, LotActive, LotRejected:
		return true
	}
	return false
}

// ParseLotStatus converts a stored code into a LotStatus.
func ParseLotStatus(raw string) (LotStatus, error) {
	s := LotStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown lot status %q", raw)
	}
	return s, nil
}

// Lot is a seller's listing.
type Lot struct {
	ID          int64
	UserID      int64
	Description string
	Price       string
	// Photo is an opaque file reference; empty when none was attached.
	Photo  string
	Status LotStatus
	// Reason is set only for rejected lots.
	Reason string
}

// HasPhoto reports whether the lot carries an image.
func (l Lot) HasPhoto() bool { return l.Photo != "" }
