// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // PostgreSQL driver for the sync path

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
	"axonflow/dbmanager/shared/logger"
)

// Pool is the slice of *pgxpool.Pool the holder depends on. Narrowing to an
// interface lets tests substitute a fake pool without a live server.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Holder owns the engine resources for a single namespace: zero-or-one
// async pool (pgx) and zero-or-one sync *sql.DB (lib/pq). Either path may
// exist without the other; both start nil and are created on first use or
// explicit init. The pool doubles as the session factory, so an engine and
// its factory can never exist separately.
type Holder struct {
	namespace string
	cfg       config.Config
	logger    *logger.Logger

	mu   sync.Mutex
	pool Pool
	db   *sql.DB

	// construction seams, overridden in tests
	newPool func(ctx context.Context, cfg config.Config) (Pool, error)
	openDB  func(cfg config.Config) (*sql.DB, error)
}

// NewHolder creates an unconnected holder for the namespace. No connection
// is attempted until InitAsync/InitSync or first session use.
func NewHolder(namespace string, cfg config.Config) *Holder {
	return &Holder{
		namespace: namespace,
		cfg:       cfg,
		logger:    logger.New("holder"),
		newPool:   openPgxPool,
		openDB:    openSQLDB,
	}
}

func openPgxPool(ctx context.Context, cfg config.Config) (Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.AsyncDSN())
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func openSQLDB(cfg config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.SyncDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxConns())
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(time.Duration(cfg.PoolRecycle) * time.Second)
	return db, nil
}

// Namespace returns the namespace this holder serves.
func (h *Holder) Namespace() string {
	return h.namespace
}

// Config returns a copy of the holder's configuration.
func (h *Holder) Config() config.Config {
	return h.cfg
}

// InitAsync creates the async pool if it does not exist yet. Idempotent:
// a second call returns immediately. The null-check-then-create sequence is
// guarded by the holder mutex so concurrent first use cannot construct two
// pools. On failure the pool reference stays nil and a later call retries
// cleanly.
func (h *Holder) InitAsync(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initAsyncLocked(ctx)
}

func (h *Holder) initAsyncLocked(ctx context.Context) error {
	if h.pool != nil {
		return nil
	}

	pool, err := h.newPool(ctx, h.cfg)
	if err != nil {
		engineInits.WithLabelValues(h.namespace, modeAsync, statusError).Inc()
		return base.NewConnectionError(h.namespace, "InitAsync", "failed to create async pool", err)
	}

	if h.cfg.PoolPrePing {
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			engineInits.WithLabelValues(h.namespace, modeAsync, statusError).Inc()
			return base.NewConnectionError(h.namespace, "InitAsync", "pre-ping failed", err)
		}
	}

	h.pool = pool
	engineInits.WithLabelValues(h.namespace, modeAsync, statusOK).Inc()
	h.logger.Info(h.namespace, "Async engine initialized", map[string]interface{}{
		"max_conns": h.cfg.MaxConns(),
	})
	return nil
}

// InitSync creates the sync *sql.DB if it does not exist yet. Independent
// of the async path; same idempotency and retry contract as InitAsync.
func (h *Holder) InitSync(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initSyncLocked(ctx)
}

func (h *Holder) initSyncLocked(ctx context.Context) error {
	if h.db != nil {
		return nil
	}

	db, err := h.openDB(h.cfg)
	if err != nil {
		engineInits.WithLabelValues(h.namespace, modeSync, statusError).Inc()
		return base.NewConnectionError(h.namespace, "InitSync", "failed to open database", err)
	}

	if h.cfg.PoolPrePing {
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			engineInits.WithLabelValues(h.namespace, modeSync, statusError).Inc()
			return base.NewConnectionError(h.namespace, "InitSync", "pre-ping failed", err)
		}
	}

	h.db = db
	engineInits.WithLabelValues(h.namespace, modeSync, statusOK).Inc()
	h.logger.Info(h.namespace, "Sync engine initialized", map[string]interface{}{
		"max_conns": h.cfg.MaxConns(),
	})
	return nil
}

// asyncPool returns the pool, initializing it lazily.
func (h *Holder) asyncPool(ctx context.Context) (Pool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.initAsyncLocked(ctx); err != nil {
		return nil, err
	}
	return h.pool, nil
}

// syncDB returns the *sql.DB, initializing it lazily.
func (h *Holder) syncDB(ctx context.Context) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.initSyncLocked(ctx); err != nil {
		return nil, err
	}
	return h.db, nil
}

// TestConnection runs a minimal round trip (select a constant) against the
// namespace. Connectivity failures are reported in the result, never as an
// error, so health sweeps across many namespaces are resilient. Running the
// test is a legitimate first use: the async engine is initialized if needed.
func (h *Holder) TestConnection(ctx context.Context) *base.TestResult {
	result := &base.TestResult{
		Namespace: h.namespace,
		Timestamp: time.Now(),
	}

	start := time.Now()
	pool, err := h.asyncPool(ctx)
	if err != nil {
		result.Latency = time.Since(start)
		result.Error = err.Error()
		connectionTests.WithLabelValues(h.namespace, statusError).Inc()
		return result
	}

	var one int
	err = pool.QueryRow(ctx, "SELECT 1").Scan(&one)
	result.Latency = time.Since(start)
	testLatency.WithLabelValues(h.namespace).Observe(result.Latency.Seconds())

	if err != nil {
		result.Error = fmt.Sprintf("connection test failed: %v", err)
		connectionTests.WithLabelValues(h.namespace, statusError).Inc()
		return result
	}
	if one != 1 {
		result.Error = fmt.Sprintf("connection test returned %d, want 1", one)
		connectionTests.WithLabelValues(h.namespace, statusError).Inc()
		return result
	}

	result.Healthy = true
	connectionTests.WithLabelValues(h.namespace, statusOK).Inc()
	return result
}

// Info returns a fresh read-only snapshot of the holder's state. Taking a
// snapshot never initializes an engine.
func (h *Holder) Info() *base.ConnectionInfo {
	h.mu.Lock()
	asyncUp := h.pool != nil
	syncUp := h.db != nil
	var stats sql.DBStats
	if syncUp {
		stats = h.db.Stats()
	}
	h.mu.Unlock()

	masked := h.cfg.MaskPassword()
	info := &base.ConnectionInfo{
		Namespace:        h.namespace,
		Host:             masked.Host,
		Port:             masked.Port,
		User:             masked.User,
		MaskedPassword:   masked.Password,
		Database:         masked.Database,
		Schema:           masked.Schema,
		PoolSize:         masked.PoolSize,
		MaxOverflow:      masked.MaxOverflow,
		AsyncInitialized: asyncUp,
		SyncInitialized:  syncUp,
		Connected:        asyncUp || syncUp,
	}
	if syncUp {
		info.Details = map[string]string{
			"sync_open_connections": fmt.Sprintf("%d", stats.OpenConnections),
			"sync_in_use":           fmt.Sprintf("%d", stats.InUse),
			"sync_idle":             fmt.Sprintf("%d", stats.Idle),
		}
	}
	return info
}

// CloseAsync disposes the async pool and returns the async path to the
// unconnected state. Closing an already-closed path is a no-op.
func (h *Holder) CloseAsync() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool == nil {
		return
	}
	h.pool.Close()
	h.pool = nil
	h.logger.Info(h.namespace, "Async engine closed", nil)
}

// CloseSync disposes the sync *sql.DB. Idempotent; a close error is logged
// and the reference is cleared regardless so the holder never wedges in a
// half-closed state.
func (h *Holder) CloseSync() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return
	}
	if err := h.db.Close(); err != nil {
		h.logger.ErrorWithCause(h.namespace, "Error closing sync engine", err, nil)
	} else {
		h.logger.Info(h.namespace, "Sync engine closed", nil)
	}
	h.db = nil
}

// Close disposes both engines. Idempotent.
func (h *Holder) Close() {
	h.CloseAsync()
	h.CloseSync()
}
