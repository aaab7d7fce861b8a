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
	"errors"

	"github.com/jackc/pgx/v5"

	"axonflow/dbmanager/namespaces/base"
)

// WithSession runs fn inside a scoped async session (one pgx transaction).
// On every exit path the session is finished before control returns:
//
//   - fn returns nil: the transaction commits
//   - fn returns an error: the transaction rolls back, fn's error is returned
//   - fn panics: the transaction rolls back, then the panic resumes
//
// The rollback path runs on a non-cancelable copy of ctx so a cancelled
// caller cannot bypass cleanup. The engine is initialized lazily on first
// use.
func (h *Holder) WithSession(ctx context.Context, fn func(tx pgx.Tx) error) error {
	pool, err := h.asyncPool(ctx)
	if err != nil {
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		sessions.WithLabelValues(h.namespace, modeAsync, outcomeFailed).Inc()
		return base.NewConnectionError(h.namespace, "WithSession", "failed to begin transaction", err)
	}

	if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Session begin", nil)
	}

	defer func() {
		if p := recover(); p != nil {
			h.rollbackAsync(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		h.rollbackAsync(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		// Commit can fail on a cancelled context; the rollback below
		// releases the connection either way.
		h.rollbackAsync(ctx, tx)
		return base.NewConnectionError(h.namespace, "WithSession", "failed to commit transaction", err)
	}

	if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Session commit", nil)
	}
	sessions.WithLabelValues(h.namespace, modeAsync, outcomeCommitted).Inc()
	return nil
}

func (h *Holder) rollbackAsync(ctx context.Context, tx pgx.Tx) {
	rbCtx := context.WithoutCancel(ctx)
	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		h.logger.ErrorWithCause(h.namespace, "Session rollback failed", err, nil)
	} else if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Session rollback", nil)
	}
	sessions.WithLabelValues(h.namespace, modeAsync, outcomeRolledBack).Inc()
}

// WithSyncSession runs fn inside a scoped sync session (one database/sql
// transaction) with the same commit-or-rollback-then-release contract as
// WithSession. Intended for blocking callers such as migration tooling and
// worker threads.
func (h *Holder) WithSyncSession(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := h.syncDB(ctx)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		sessions.WithLabelValues(h.namespace, modeSync, outcomeFailed).Inc()
		return base.NewConnectionError(h.namespace, "WithSyncSession", "failed to begin transaction", err)
	}

	if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Sync session begin", nil)
	}

	defer func() {
		if p := recover(); p != nil {
			h.rollbackSync(tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		h.rollbackSync(tx)
		return err
	}

	if err := tx.Commit(); err != nil {
		h.rollbackSync(tx)
		return base.NewConnectionError(h.namespace, "WithSyncSession", "failed to commit transaction", err)
	}

	if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Sync session commit", nil)
	}
	sessions.WithLabelValues(h.namespace, modeSync, outcomeCommitted).Inc()
	return nil
}

func (h *Holder) rollbackSync(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		h.logger.ErrorWithCause(h.namespace, "Sync session rollback failed", err, nil)
	} else if h.cfg.Echo {
		h.logger.Debug(h.namespace, "Sync session rollback", nil)
	}
	sessions.WithLabelValues(h.namespace, modeSync, outcomeRolledBack).Inc()
}
