// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
)

func (p *fakePool) tx() *fakeTx {
	p.txMu.Lock()
	defer p.txMu.Unlock()
	return p.lastTx
}

func TestWithSession_CommitsOnSuccess(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)

	var ran bool
	err := h.WithSession(context.Background(), func(tx pgx.Tx) error {
		ran = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.True(t, pool.tx().committed)
	assert.False(t, pool.tx().rolledBack)
}

func TestWithSession_RollsBackOnError(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)

	boom := errors.New("constraint violation")
	err := h.WithSession(context.Background(), func(tx pgx.Tx) error {
		return boom
	})

	// The caller's error propagates untouched.
	require.ErrorIs(t, err, boom)
	assert.False(t, pool.tx().committed)
	assert.True(t, pool.tx().rolledBack)
}

func TestWithSession_RollsBackOnPanic(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)

	require.Panics(t, func() {
		_ = h.WithSession(context.Background(), func(tx pgx.Tx) error {
			panic("handler blew up")
		})
	})

	assert.False(t, pool.tx().committed)
	assert.True(t, pool.tx().rolledBack)
}

func TestWithSession_RollsBackOnCancellation(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)

	ctx, cancel := context.WithCancel(context.Background())

	err := h.WithSession(ctx, func(tx pgx.Tx) error {
		// Cancellation mid-session: commit must fail and cleanup must
		// still run despite the dead context.
		cancel()
		return nil
	})

	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.False(t, pool.tx().committed)
	assert.True(t, pool.tx().rolledBack)
}

func TestWithSession_LazyInitOnFirstUse(t *testing.T) {
	pool := &fakePool{}
	h, constructions := newTestHolder(pool, nil)

	require.NoError(t, h.WithSession(context.Background(), func(tx pgx.Tx) error { return nil }))
	require.NoError(t, h.WithSession(context.Background(), func(tx pgx.Tx) error { return nil }))

	assert.Equal(t, int32(1), constructions.Load())
	assert.Equal(t, int32(2), pool.begun.Load())
}

func TestWithSession_InitFailurePropagates(t *testing.T) {
	h, _ := newTestHolder(nil, errors.New("connection refused"))

	err := h.WithSession(context.Background(), func(tx pgx.Tx) error { return nil })

	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestWithSession_BeginFailure(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("too many clients already")}
	h, _ := newTestHolder(pool, nil)

	err := h.WithSession(context.Background(), func(tx pgx.Tx) error { return nil })

	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "too many clients")
}

func TestWithSession_CommitFailureReleasesSession(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)

	// Commit fails after fn succeeds; the session must still be released.
	err := h.WithSession(context.Background(), func(tx pgx.Tx) error {
		pool.tx().commitErr = errors.New("server closed the connection unexpectedly")
		return nil
	})

	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.True(t, pool.tx().rolledBack)
}

func newSyncHolder(t *testing.T) (*Holder, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := NewHolder("app_db", testConfig())
	h.openDB = func(cfg config.Config) (*sql.DB, error) { return db, nil }
	return h, mock
}

func TestWithSyncSession_CommitsOnSuccess(t *testing.T) {
	h, mock := newSyncHolder(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE accounts").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := h.WithSyncSession(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE accounts SET balance = balance - 1")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSyncSession_RollsBackOnError(t *testing.T) {
	h, mock := newSyncHolder(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("divide by zero")
	err := h.WithSyncSession(context.Background(), func(tx *sql.Tx) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSyncSession_RollsBackOnPanic(t *testing.T) {
	h, mock := newSyncHolder(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	require.Panics(t, func() {
		_ = h.WithSyncSession(context.Background(), func(tx *sql.Tx) error {
			panic("worker blew up")
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSyncSession_CommitFailure(t *testing.T) {
	h, mock := newSyncHolder(t)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))
	// database/sql marks the Tx done even when the driver commit fails, so
	// the deferred rollback is a no-op ErrTxDone, not a driver call.

	err := h.WithSyncSession(context.Background(), func(tx *sql.Tx) error { return nil })

	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, err.Error(), "disk full")
}
