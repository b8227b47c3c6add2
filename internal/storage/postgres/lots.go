package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/lotbot/internal/domain"
)

const lotColumns = `lot_id, user_id, description, price, photo, status, reason`

type lotRow struct {
	ID          int64          `db:"lot_id"`
	UserID      int64          `db:"user_id"`
	Description string         `db:"description"`
	Price       string         `db:"price"`
	Photo       sql.NullString `db:"photo"`
	Status      string         `db:"status"`
	Reason      sql.NullString `db:"reason"`
}

func (r lotRow) toDomain() (domain.Lot, error) {
	st, err := domain.ParseLotStatus(r.Status)
	if err != nil {
		return domain.Lot{}, err
	}
	return domain.Lot{
		ID:          r.ID,
		UserID:      r.UserID,
		Description: r.Description,
		Price:       r.Price,
		Photo:       r.Photo.String,
		Status:      st,
		Reason:      r.Reason.String,
	}, nil
}

// LotStore is the PostgreSQL LotRepository.
type LotStore struct {
	db *sqlx.DB
}

// NewLotStore wraps an open connection pool.
func NewLotStore(db *sqlx.DB) *LotStore {
	return &LotStore{db: db}
}

var _ domain.LotRepository = (*LotStore)(nil)

func (s *LotStore) Insert(ctx context.Context, lot domain.Lot) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lots (lot_id, user_id, description, price, photo, status, reason)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		lot.ID, lot.UserID, lot.Description, lot.Price,
		nullString(lot.Photo), string(lot.Status), nullString(lot.Reason),
	)
	return mapError("insert lot", err)
}

func (s *LotStore) Get(ctx context.Context, id int64) (domain.Lot, error) {
	var row lotRow
	err := s.db.GetContext(ctx, &row, `SELECT `+lotColumns+` FROM lots WHERE lot_id = $1`, id)
	if err != nil {
		return domain.Lot{}, mapError("get lot", err)
	}
	return row.toDomain()
}

func (s *LotStore) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := s.db.GetContext(ctx, &ok, `SELECT EXISTS (SELECT 1 FROM lots WHERE lot_id = $1)`, id); err != nil {
		return false, mapError("lot exists", err)
	}
	return ok, nil
}

func (s *LotStore) ListByOwner(ctx context.Context, userID int64) ([]domain.Lot, error) {
	return s.list(ctx, "list lots by owner",
		`SELECT `+lotColumns+` FROM lots WHERE user_id = $1 ORDER BY lot_id`, userID)
}

func (s *LotStore) ListByStatus(ctx context.Context, status domain.LotStatus) ([]domain.Lot, error) {
	return s.list(ctx, "list lots by status",
		`SELECT `+lotColumns+` FROM lots WHERE status = $1 ORDER BY lot_id`, string(status))
}

func (s *LotStore) List(ctx context.Context) ([]domain.Lot, error) {
	return s.list(ctx, "list lots", `SELECT `+lotColumns+` FROM lots ORDER BY lot_id`)
}

func (s *LotStore) UpdateStatus(ctx context.Context, id int64, status domain.LotStatus, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lots SET status = $2, reason = $3 WHERE lot_id = $1`,
		id, string(status), nullString(reason),
	)
	if err != nil {
		return mapError("update lot status", err)
	}
	return requireAffected("update lot status", res)
}

func (s *LotStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lots WHERE lot_id = $1`, id)
	if err != nil {
		return mapError("delete lot", err)
	}
	return requireAffected("delete lot", res)
}

func (s *LotStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lots`)
	if err != nil {
		return 0, mapError("delete all lots", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all lots: rows affected: %w", err)
	}
	return n, nil
}

func (s *LotStore) list(ctx context.Context, op, query string, args ...any) ([]domain.Lot, error) {
	var rows []lotRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, mapError(op, err)
	}
	out := make([]domain.Lot, 0, len(rows))
	for _, r := range rows {
		lot, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: lot %d: %w", op, r.ID, err)
		}
		out = append(out, lot)
	}
	return out, nil
}
