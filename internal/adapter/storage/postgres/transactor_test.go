package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactor_Begin_SetsLockTimeout(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SET LOCAL lock_timeout = '3000ms'").
		WillReturnResult(pgxmock.NewResult("SET", 0))

	tr := NewTransactor(mock, 3*time.Second)
	tx, err := tr.Begin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_Begin_NoTimeoutConfigured(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()

	tr := NewTransactor(mock, 0)
	tx, err := tr.Begin(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsLockTimeout(t *testing.T) {
	lockErr := &pgconn.PgError{Code: "55P03"}
	assert.True(t, IsLockTimeout(lockErr))
	assert.True(t, IsLockTimeout(errors.Join(errors.New("lock wallet"), lockErr)))

	assert.False(t, IsLockTimeout(errors.New("plain error")))
	assert.False(t, IsLockTimeout(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsLockTimeout(nil))
}
