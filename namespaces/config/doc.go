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
Package config defines the immutable connection configuration for one
database namespace and the loaders that produce it.

# Config value object

Config is stored and passed by value. The two derived DSNs are pure
functions of the fields:

  - AsyncDSN: pgx pool DSN carrying pool sizing and recycling parameters
  - SyncDSN: lib/pq-compatible DSN for database/sql

Both are built from the same credentials, host, and database, so the async
and sync paths of a namespace can never drift apart.

# Sources

Three loaders produce Configs:

  - FromEnv: the unprefixed POSTGRES_* / DB_* variables (the default
    namespace). Missing host/user/password/database is a hard failure
    listing every missing variable.
  - FromEnvNamespace: POSTGRES_<NAME>_* variables with unprefixed fallback.
  - LoadNamespacesFile: a YAML file mapping namespace names to connection
    fields, with ${ENV_VAR} expansion for secrets.

# Environment variables

	POSTGRES_HOST         required
	POSTGRES_PORT         default 5432
	POSTGRES_USER         required
	POSTGRES_PASSWORD     required
	POSTGRES_DB           required
	POSTGRES_SCHEMA       default "public"
	DB_POOL_SIZE          default 10
	DB_MAX_OVERFLOW       default 0
	DB_POOL_PRE_PING      default true
	DB_POOL_RECYCLE       default 3600 (seconds)
	DB_ECHO               default false
	DB_DEFAULT_NAMESPACE  default "app_db"

# Masking

MaskPassword returns a copy safe for display and audit payloads: the
password is reduced to a first-2/last-2 preview and never more than four
real characters are exposed.
*/
package config
