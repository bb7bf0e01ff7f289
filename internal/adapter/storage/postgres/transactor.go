package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgLockNotAvailable is the SQLSTATE Postgres raises when lock_timeout
// expires while waiting on a row lock.
const pgLockNotAvailable = "55P03"

// Transactor implements ports.DBTransactor over a pgx pool. Every
// transaction it opens carries a local lock_timeout so a mutation that
// cannot acquire its per-wallet row lock aborts within a bounded time,
// leaving no partial effect.
type Transactor struct {
	pool        Pool
	lockTimeout time.Duration
}

// NewTransactor creates a Transactor. lockTimeout <= 0 disables the bound.
func NewTransactor(pool Pool, lockTimeout time.Duration) *Transactor {
	return &Transactor{pool: pool, lockTimeout: lockTimeout}
}

// Begin starts a database transaction with the configured lock timeout.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if t.lockTimeout > 0 {
		// SET LOCAL does not accept bind parameters; the value comes from
		// config, never from request input.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", t.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	return tx, nil
}

// IsLockTimeout reports whether err is a lock_timeout expiry.
func IsLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable
}
