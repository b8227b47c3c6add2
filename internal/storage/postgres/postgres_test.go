package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/m3rciful/lotbot/internal/domain"
)

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError("op", nil))
	assert.ErrorIs(t, mapError("op", sql.ErrNoRows), domain.ErrNotFound)
	assert.ErrorIs(t, mapError("op", fmt.Errorf("wrapped: %w", sql.ErrNoRows)), domain.ErrNotFound)

	dup := mapError("insert lot", &pq.Error{Code: "23505"})
	assert.ErrorIs(t, dup, domain.ErrConflict)
	assert.Contains(t, dup.Error(), "insert lot")

	other := mapError("insert lot", &pq.Error{Code: "42P01"})
	assert.False(t, errors.Is(other, domain.ErrConflict))
	assert.False(t, errors.Is(other, domain.ErrNotFound))
}

type fakeResult struct {
	n   int64
	err error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.n, f.err }

func TestRequireAffected(t *testing.T) {
	assert.NoError(t, requireAffected("op", fakeResult{n: 1}))
	assert.ErrorIs(t, requireAffected("op", fakeResult{n: 0}), domain.ErrNotFound)
	assert.Error(t, requireAffected("op", fakeResult{err: errors.New("driver")}))
}

func TestRowConversion(t *testing.T) {
	lot, err := lotRow{ID: 123456, UserID: 9, Status: "active", Photo: sql.NullString{String: "file", Valid: true}}.toDomain()
	assert.NoError(t, err)
	assert.Equal(t, domain.LotActive, lot.Status)
	assert.True(t, lot.HasPhoto())

	_, err = sellerRow{UserID: 1, Status: "bogus"}.toDomain()
	assert.Error(t, err)
}
