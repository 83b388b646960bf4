package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authkeeper-server/internal/dbx"
	"github.com/dtroode/authkeeper-server/internal/model"
)

var _ model.Store = (*Store)(nil)

const uniqueViolation = "23505"

// Store hands out repositories bound either to the pool or to a running
// transaction.
type Store struct {
	db   *sql.DB
	q    dbx.DBTX
	inTx bool
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

func (s *Store) Users() model.UserStore {
	return NewUserRepository(s.q)
}

func (s *Store) RefreshTokens() model.RefreshTokenStore {
	return NewRefreshTokenRepository(s.q)
}

// WithinTx runs fn under READ COMMITTED. Row locks taken with FOR UPDATE
// serialize concurrent rotations of the same ledger row.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx model.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}

	opts := &sql.TxOptions{Isolation: sql.LevelReadCommitted}
	return dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &Store{db: s.db, q: tx, inTx: true})
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
