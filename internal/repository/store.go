package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories can run
// inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories that share one connection or transaction.
type Store interface {
	Cohorts() CohortRepository
	Students() StudentRepository
	// WithinTx runs fn with a Store bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type pgStore struct {
	pool     *pgxpool.Pool
	cohorts  *cohortRepository
	students *studentRepository
}

// NewStore creates a PostgreSQL-backed Store.
func NewStore(pool *pgxpool.Pool) Store {
	return newStore(pool, pool)
}

func newStore(pool *pgxpool.Pool, db DBTX) *pgStore {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return &pgStore{
		pool:     pool,
		cohorts:  &cohortRepository{db: db, sb: sb},
		students: &studentRepository{db: db, sb: sb},
	}
}

func (s *pgStore) Cohorts() CohortRepository   { return s.cohorts }
func (s *pgStore) Students() StudentRepository { return s.students }

func (s *pgStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	// Already inside a transaction.
	if s.pool == nil {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newStore(nil, tx))
	})
}
