package domain

import "fmt"

// SellerStatus is the moderation state of a seller application.
type SellerStatus string

const (
	SellerPendingReview SellerStatus = "pending"
	SellerApproved      SellerStatus = "approved"
	SellerRejected      SellerStatus = "rejected"
)

// Valid reports whether s is one of the known seller statuses.
func (s SellerStatus) Valid() bool {
	switch s {
	case SellerPendingReview, SellerApproved, SellerRejected:
		return true
	}
	return false
}

// ParseSellerStatus converts a stored code into a SellerStatus.
func ParseSellerStatus(raw string) (SellerStatus, error) {
	s := SellerStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown seller status %q", raw)
	}
	return s, nil
}

// SellerApplication is a request for selling privileges, one per user.
type SellerApplication struct {
	UserID int64
	Phone  string
	Email  string
	Name   string
	Status SellerStatus
	Reason string
}

// CanResubmit reports whether a new application may replace this one.
func (a SellerApplication) CanResubmit() bool { return a.Status == SellerRejected }
