package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/lotbot/internal/domain"
)

const sellerColumns = `user_id, phone, email, name, status, reason`

type sellerRow struct {
	UserID int64          `db:"user_id"`
	Phone  string         `db:"phone"`
	Email  string         `db:"email"`
	Name   string         `db:"name"`
	Status string         `db:"status"`
	Reason sql.NullString `db:"reason"`
}

func (r sellerRow) toDomain() (domain.SellerApplication, error) {
	st, err := domain.ParseSellerStatus(r.Status)
	if err != nil {
		return domain.SellerApplication{}, err
	}
	return domain.SellerApplication{
		UserID: r.UserID,
		Phone:  r.Phone,
		Email:  r.Email,
		Name:   r.Name,
		Status: st,
		Reason: r.Reason.String,
	}, nil
}

// SellerStore is the PostgreSQL SellerRepository.
type SellerStore struct {
	db *sqlx.DB
}

// NewSellerStore wraps an open connection pool.
func NewSellerStore(db *sqlx.DB) *SellerStore {
	return &SellerStore{db: db}
}

var _ domain.SellerRepository = (*SellerStore)(nil)

func (s *SellerStore) Insert(ctx context.Context, app domain.SellerApplication) error {
	status := app.Status
	if status == "" {
		status = domain.SellerPendingReview
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sellers (user_id, phone, email, name, status, reason)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		app.UserID, app.Phone, app.Email, app.Name, string(status), nullString(app.Reason),
	)
	return mapError("insert seller", err)
}

func (s *SellerStore) Get(ctx context.Context, userID int64) (domain.SellerApplication, error) {
	var row sellerRow
	err := s.db.GetContext(ctx, &row, `SELECT `+sellerColumns+` FROM sellers WHERE user_id = $1`, userID)
	if err != nil {
		return domain.SellerApplication{}, mapError("get seller", err)
	}
	return row.toDomain()
}

func (s *SellerStore) ListByStatus(ctx context.Context, status domain.SellerStatus) ([]domain.SellerApplication, error) {
	var rows []sellerRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+sellerColumns+` FROM sellers WHERE status = $1 ORDER BY user_id`, string(status))
	if err != nil {
		return nil, mapError("list sellers by status", err)
	}
	out := make([]domain.SellerApplication, 0, len(rows))
	for _, r := range rows {
		app, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("list sellers by status: seller %d: %w", r.UserID, err)
		}
		out = append(out, app)
	}
	return out, nil
}

func (s *SellerStore) UpdateStatus(ctx context.Context, userID int64, status domain.SellerStatus, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sellers SET status = $2, reason = $3 WHERE user_id = $1`,
		userID, string(status), nullString(reason),
	)
	if err != nil {
		return mapError("update seller status", err)
	}
	return requireAffected("update seller status", res)
}

func (s *SellerStore) Delete(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sellers WHERE user_id = $1`, userID)
	if err != nil {
		return mapError("delete seller", err)
	}
	return requireAffected("delete seller", res)
}

func (s *SellerStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sellers`)
	if err != nil {
		return 0, mapError("delete all sellers", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete all sellers: rows affected: %w", err)
	}
	return n, nil
}
