package domain

import "context"

// LotRepository persists lots. Get returns ErrNotFound for unknown ids and
// Insert returns ErrConflict when the id is already taken.
type LotRepository interface {
	Insert(ctx context.Context, lot Lot) error
	Get(ctx context.Context, id int64) (Lot, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ListByOwner(ctx context.Context, userID int64) ([]Lot, error)
	ListByStatus(ctx context.Context, status LotStatus) ([]Lot, error)
	List(ctx context.Context) ([]Lot, error)
	UpdateStatus(ctx context.Context, id int64, status LotStatus, reason string) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) (int64, error)
}

// SellerRepository persists seller applications keyed by user id.
type SellerRepository interface {
	Insert(ctx context.Context, app SellerApplication) error
	Get(ctx context.Context, userID int64) (SellerApplication, error)
	ListByStatus(ctx context.Context, status SellerStatus) ([]SellerApplication, error)
	UpdateStatus(ctx context.Context, userID int64, status SellerStatus, reason string) error
	Delete(ctx context.Context, userID int64) error
	DeleteAll(ctx context.Context) (int64, error)
}
