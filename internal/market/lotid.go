package market

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/m3rciful/lotbot/internal/domain"
)

const (
	lotIDMin         = 100000
	lotIDSpan        = 900000
	maxLotIDAttempts = 32
)

// ErrLotIDExhausted is returned when no free lot id was found within the attempt budget.
var ErrLotIDExhausted = errors.New("market: no free lot id")

// IDSource yields candidate lot ids.
type IDSource func() int64

// RandomLotID draws a six-digit id.
func RandomLotID() int64 {
	return lotIDMin + rand.Int64N(lotIDSpan)
}

// insertLot stores lot under a fresh id. Candidates already present are skipped
// and an insert conflict (a concurrent writer took the id) draws again.
func (e *Engine) insertLot(ctx context.Context, lot domain.Lot) (domain.Lot, error) {
	for attempt := 0; attempt < maxLotIDAttempts; attempt++ {
		id := e.nextID()
		exists, err := e.lots.Exists(ctx, id)
		if err != nil {
			return domain.Lot{}, fmt.Errorf("check lot id: %w", err)
		}
		if exists {
			continue
		}
		lot.ID = id
		err = e.lots.Insert(ctx, lot)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return domain.Lot{}, fmt.Errorf("insert lot: %w", err)
		}
		return lot, nil
	}
	return domain.Lot{}, ErrLotIDExhausted
}
