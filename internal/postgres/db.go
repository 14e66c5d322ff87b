package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kickzshop/checkout/internal/domain"
)

// uniqueViolation is the Postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

// DBTX matches the query methods shared by *pgxpool.Pool and pgx.Tx, so the
// same store code runs inside and outside a transaction and can be mocked
// in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool adds transaction creation to DBTX. *pgxpool.Pool satisfies it.
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Queries implements domain.Store over a DBTX.
type Queries struct {
	db DBTX
}

// Compile-time check that Queries covers the full store surface.
var _ domain.Store = (*Queries)(nil)

// New creates a store over the given connection, pool, or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// TxManager implements domain.TxManager over a pgx pool.
type TxManager struct {
	pool Pool
}

// NewTxManager creates a transaction manager backed by pool.
func NewTxManager(pool Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx runs fn inside a transaction. The transaction commits when fn
// returns nil; it rolls back when fn returns an error or panics. A panic is
// converted into an internal-class error so nothing propagates as a raw
// fault past the caller.
func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, s domain.Store) error) (err error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			err = domain.Internal(fmt.Errorf("panic: %v", p), "postgres.tx", "transaction aborted")
		}
	}()

	if err := fn(ctx, New(tx)); err != nil {
		// Rollback failure is secondary; the fn error is what matters.
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
