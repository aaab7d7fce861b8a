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

/*
Package postgres implements the per-namespace connection holder.

# Overview

A Holder owns the engine resources for exactly one namespace: an async
pgxpool.Pool for request-scoped handlers and a database/sql DB (lib/pq) for
blocking callers. Both start unconnected and are created lazily on first
use, or eagerly via InitAsync/InitSync. Initialization is guarded by a
mutex so concurrent first access cannot construct two pools.

# Scoped sessions

WithSession and WithSyncSession run a caller closure inside one
transaction and guarantee, on every exit path:

  - success: commit
  - error or panic: rollback
  - always: the session is released before control returns

Rollback runs on a non-cancelable context, so task cancellation cannot
leak a connection.

	holder := postgres.NewHolder("app_db", cfg)
	err := holder.WithSession(ctx, func(tx pgx.Tx) error {
	    _, err := tx.Exec(ctx, "INSERT INTO events (kind) VALUES ($1)", "signup")
	    return err
	})

# Pool tuning

Pool sizing follows the Config: the async DSN carries pool_max_conns and
pool_max_conn_lifetime; the sync path applies SetMaxOpenConns,
SetMaxIdleConns, and SetConnMaxLifetime. When pool_pre_ping is enabled,
initialization verifies the connection with a ping and fails cleanly
(reference stays nil, next call retries) if the server is unreachable.
*/
package postgres
