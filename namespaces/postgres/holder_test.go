// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
)

// fakePool implements Pool for testing without a live server.
type fakePool struct {
	beginErr error
	pingErr  error
	queryErr error
	scanVal  int

	begun  atomic.Int32
	closed atomic.Int32
	lastTx *fakeTx
	txMu   sync.Mutex
}

func (p *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	p.begun.Add(1)
	tx := &fakeTx{}
	p.txMu.Lock()
	p.lastTx = tx
	p.txMu.Unlock()
	return tx, nil
}

func (p *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &fakeRow{err: p.queryErr, val: p.scanVal}
}

func (p *fakePool) Ping(ctx context.Context) error { return p.pingErr }

func (p *fakePool) Close() { p.closed.Add(1) }

// fakeRow implements pgx.Row.
type fakeRow struct {
	err error
	val int
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if p, ok := dest[0].(*int); ok {
			*p = r.val
		}
	}
	return nil
}

// fakeTx implements pgx.Tx, recording commit/rollback calls.
type fakeTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.commitErr != nil {
		return t.commitErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.committed || t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

func (t *fakeTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (t *fakeTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (t *fakeTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (t *fakeTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &fakeRow{val: 1}
}

func (t *fakeTx) Conn() *pgx.Conn { return nil }

func testConfig() config.Config {
	cfg, _ := config.New("db.internal", 5432, "app", "supersecret", "appdb")
	cfg.PoolPrePing = false
	return cfg
}

// newTestHolder wires a holder to a fakePool, counting pool constructions.
func newTestHolder(pool *fakePool, constructErr error) (*Holder, *atomic.Int32) {
	h := NewHolder("app_db", testConfig())
	var constructions atomic.Int32
	h.newPool = func(ctx context.Context, cfg config.Config) (Pool, error) {
		constructions.Add(1)
		if constructErr != nil {
			return nil, constructErr
		}
		return pool, nil
	}
	return h, &constructions
}

func TestHolder_StartsUnconnected(t *testing.T) {
	h := NewHolder("app_db", testConfig())
	info := h.Info()

	assert.False(t, info.AsyncInitialized)
	assert.False(t, info.SyncInitialized)
	assert.False(t, info.Connected)
}

func TestInitAsync_Idempotent(t *testing.T) {
	pool := &fakePool{}
	h, constructions := newTestHolder(pool, nil)

	require.NoError(t, h.InitAsync(context.Background()))
	require.NoError(t, h.InitAsync(context.Background()))

	assert.Equal(t, int32(1), constructions.Load())
	assert.True(t, h.Info().AsyncInitialized)
}

func TestInitAsync_ConcurrentFirstUse(t *testing.T) {
	pool := &fakePool{}
	h, constructions := newTestHolder(pool, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.InitAsync(context.Background())
		}()
	}
	wg.Wait()

	// The double-checked lock must prevent a second construction.
	assert.Equal(t, int32(1), constructions.Load())
}

func TestInitAsync_FailureLeavesHolderRetryable(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	h, constructions := newTestHolder(nil, boom)

	err := h.InitAsync(context.Background())
	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "app_db", connErr.Namespace)
	assert.False(t, h.Info().AsyncInitialized)

	// A later call retries construction instead of caching the failure.
	_ = h.InitAsync(context.Background())
	assert.Equal(t, int32(2), constructions.Load())
}

func TestInitAsync_PrePingFailureClosesPool(t *testing.T) {
	pool := &fakePool{pingErr: errors.New("server is starting up")}
	h, _ := newTestHolder(pool, nil)
	h.cfg.PoolPrePing = true

	err := h.InitAsync(context.Background())
	var connErr *base.ConnectionError
	require.ErrorAs(t, err, &connErr)

	// The half-constructed pool must not leak.
	assert.Equal(t, int32(1), pool.closed.Load())
	assert.False(t, h.Info().AsyncInitialized)
}

func TestInitSync_IndependentOfAsync(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	h := NewHolder("app_db", testConfig())
	h.openDB = func(cfg config.Config) (*sql.DB, error) { return db, nil }

	require.NoError(t, h.InitSync(context.Background()))

	info := h.Info()
	assert.True(t, info.SyncInitialized)
	assert.False(t, info.AsyncInitialized)
	assert.True(t, info.Connected)

	mock.ExpectClose()
	h.CloseSync()
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSync_PrePing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing()

	h := NewHolder("app_db", testConfig())
	h.cfg.PoolPrePing = true
	h.openDB = func(cfg config.Config) (*sql.DB, error) { return db, nil }

	require.NoError(t, h.InitSync(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitSync_PrePingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("password authentication failed"))
	mock.ExpectClose()

	h := NewHolder("app_db", testConfig())
	h.cfg.PoolPrePing = true
	h.openDB = func(cfg config.Config) (*sql.DB, error) { return db, nil }

	initErr := h.InitSync(context.Background())
	var connErr *base.ConnectionError
	require.ErrorAs(t, initErr, &connErr)
	assert.False(t, h.Info().SyncInitialized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_Idempotent(t *testing.T) {
	pool := &fakePool{}
	h, _ := newTestHolder(pool, nil)
	require.NoError(t, h.InitAsync(context.Background()))

	h.Close()
	h.Close()

	assert.Equal(t, int32(1), pool.closed.Load())
	assert.False(t, h.Info().Connected)
}

func TestClose_ReturnsHolderToUnconnected(t *testing.T) {
	pool := &fakePool{}
	h, constructions := newTestHolder(pool, nil)

	require.NoError(t, h.InitAsync(context.Background()))
	h.Close()
	require.NoError(t, h.InitAsync(context.Background()))

	// Close returns the holder to the unconnected state; the next init
	// builds a fresh engine.
	assert.Equal(t, int32(2), constructions.Load())
}

func TestTestConnection_Healthy(t *testing.T) {
	pool := &fakePool{scanVal: 1}
	h, _ := newTestHolder(pool, nil)

	result := h.TestConnection(context.Background())

	assert.True(t, result.Healthy)
	assert.Empty(t, result.Error)
	assert.Equal(t, "app_db", result.Namespace)
	// Testing is a legitimate first use: the engine is now initialized.
	assert.True(t, h.Info().AsyncInitialized)
}

func TestTestConnection_QueryFailure(t *testing.T) {
	pool := &fakePool{queryErr: errors.New("connection reset by peer")}
	h, _ := newTestHolder(pool, nil)

	result := h.TestConnection(context.Background())

	assert.False(t, result.Healthy)
	assert.Contains(t, result.Error, "connection reset by peer")
}

func TestTestConnection_InitFailureReportedNotRaised(t *testing.T) {
	h, _ := newTestHolder(nil, errors.New("no route to host"))

	result := h.TestConnection(context.Background())

	assert.False(t, result.Healthy)
	assert.Contains(t, result.Error, "no route to host")
}

func TestInfo_NeverInitializes(t *testing.T) {
	pool := &fakePool{}
	h, constructions := newTestHolder(pool, nil)

	for i := 0; i < 3; i++ {
		_ = h.Info()
	}

	assert.Equal(t, int32(0), constructions.Load())
}

func TestInfo_MasksPassword(t *testing.T) {
	h := NewHolder("app_db", testConfig())
	info := h.Info()

	assert.Equal(t, "su***et", info.MaskedPassword)
	assert.Equal(t, "app", info.User)
	assert.Equal(t, "appdb", info.Database)
}
