// Package memory implements the entity repositories in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m3rciful/lotbot/internal/domain"
)

// LotStore keeps lots in a map guarded by a mutex.
type LotStore struct {
	mu   sync.RWMutex
	lots map[int64]domain.Lot
}

// NewLotStore returns an empty store.
func NewLotStore() *LotStore {
	return &LotStore{lots: make(map[int64]domain.Lot)}
}

var _ domain.LotRepository = (*LotStore)(nil)

func (s *LotStore) Insert(_ context.Context, lot domain.Lot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[lot.ID]; ok {
		return domain.ErrConflict
	}
	s.lots[lot.ID] = lot
	return nil
}

func (s *LotStore) Get(_ context.Context, id int64) (domain.Lot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lot, ok := s.lots[id]
	if !ok {
		return domain.Lot{}, domain.ErrNotFound
	}
	return lot, nil
}

func (s *LotStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lots[id]
	return ok, nil
}

func (s *LotStore) ListByOwner(_ context.Context, userID int64) ([]domain.Lot, error) {
	return s.filter(func(l domain.Lot) bool { return l.UserID == userID }), nil
}

func (s *LotStore) ListByStatus(_ context.Context, status domain.LotStatus) ([]domain.Lot, error) {
	return s.filter(func(l domain.Lot) bool { return l.Status == status }), nil
}

func (s *LotStore) List(_ context.Context) ([]domain.Lot, error) {
	return s.filter(func(domain.Lot) bool { return true }), nil
}

func (s *LotStore) UpdateStatus(_ context.Context, id int64, status domain.LotStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lot, ok := s.lots[id]
	if !ok {
		return domain.ErrNotFound
	}
	lot.Status = status
	lot.Reason = reason
	s.lots[id] = lot
	return nil
}

func (s *LotStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lots[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.lots, id)
	return nil
}

func (s *LotStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.lots))
	s.lots = make(map[int64]domain.Lot)
	return n, nil
}

// filter returns matching lots ordered by id.
func (s *LotStore) filter(keep func(domain.Lot) bool) []domain.Lot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Lot, 0, len(s.lots))
	for _, l := range s.lots {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SellerStore keeps seller applications keyed by user id.
type SellerStore struct {
	mu      sync.RWMutex
	sellers map[int64]domain.SellerApplication
}

// NewSellerStore returns an empty store.
func NewSellerStore() *SellerStore {
	return &SellerStore{sellers: make(map[int64]domain.SellerApplication)}
}

var _ domain.SellerRepository = (*SellerStore)(nil)

func (s *SellerStore) Insert(_ context.Context, app domain.SellerApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[app.UserID]; ok {
		return domain.ErrConflict
	}
	if app.Status == "" {
		app.Status = domain.SellerPendingReview
	}
	s.sellers[app.UserID] = app
	return nil
}

func (s *SellerStore) Get(_ context.Context, userID int64) (domain.SellerApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.sellers[userID]
	if !ok {
		return domain.SellerApplication{}, domain.ErrNotFound
	}
	return app, nil
}

func (s *SellerStore) ListByStatus(_ context.Context, status domain.SellerStatus) ([]domain.SellerApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SellerApplication, 0)
	for _, a := range s.sellers {
		if a.Status == status {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *SellerStore) UpdateStatus(_ context.Context, userID int64, status domain.SellerStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.sellers[userID]
	if !ok {
		return domain.ErrNotFound
	}
	app.Status = status
	app.Reason = reason
	s.sellers[userID] = app
	return nil
}

func (s *SellerStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[userID]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sellers, userID)
	return nil
}

func (s *SellerStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.sellers))
	s.sellers = make(map[int64]domain.SellerApplication)
	return n, nil
}
