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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"axonflow/dbmanager/namespaces/base"
)

// DefaultNamespaceName is used when DB_DEFAULT_NAMESPACE is not set.
const DefaultNamespaceName = "app_db"

// FromEnv loads a Config from the unprefixed POSTGRES_* / DB_* environment
// variables. Missing host, user, password, or database is a hard
// configuration failure listing every missing field; it never falls back to
// empty strings.
func FromEnv() (Config, error) {
	return fromEnvPrefix("")
}

// FromEnvNamespace loads a Config for the given namespace from
// POSTGRES_<NAME>_* variables, falling back to the unprefixed variables for
// any field the prefixed form does not set. Pool tuning always comes from
// the shared DB_* variables.
func FromEnvNamespace(name string) (Config, error) {
	prefix := "POSTGRES_" + strings.ToUpper(name) + "_"
	return fromEnvPrefix(prefix)
}

func fromEnvPrefix(prefix string) (Config, error) {
	lookup := func(field string) string {
		if prefix != "" {
			if v := os.Getenv(prefix + field); v != "" {
				return v
			}
		}
		return os.Getenv("POSTGRES_" + field)
	}

	cfg := Config{
		Host:     lookup("HOST"),
		User:     lookup("USER"),
		Password: lookup("PASSWORD"),
		Database: lookup("DB"),
		Schema:   getEnvOrDefault("POSTGRES_SCHEMA", DefaultSchema),
	}
	if prefix != "" {
		if v := os.Getenv(prefix + "SCHEMA"); v != "" {
			cfg.Schema = v
		}
	}

	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Database == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if len(missing) > 0 {
		return Config{}, &base.ConfigurationError{
			Message:       "required connection fields are not set",
			MissingFields: missing,
		}
	}

	port, err := intEnv(lookup("PORT"), 5432)
	if err != nil {
		return Config{}, &base.ConfigurationError{
			Message: fmt.Sprintf("invalid POSTGRES_PORT: %v", err),
		}
	}
	cfg.Port = port

	if cfg.PoolSize, err = intEnv(os.Getenv("DB_POOL_SIZE"), DefaultPoolSize); err != nil {
		return Config{}, &base.ConfigurationError{Message: fmt.Sprintf("invalid DB_POOL_SIZE: %v", err)}
	}
	if cfg.MaxOverflow, err = intEnv(os.Getenv("DB_MAX_OVERFLOW"), DefaultMaxOverflow); err != nil {
		return Config{}, &base.ConfigurationError{Message: fmt.Sprintf("invalid DB_MAX_OVERFLOW: %v", err)}
	}
	if cfg.PoolRecycle, err = intEnv(os.Getenv("DB_POOL_RECYCLE"), DefaultPoolRecycle); err != nil {
		return Config{}, &base.ConfigurationError{Message: fmt.Sprintf("invalid DB_POOL_RECYCLE: %v", err)}
	}
	cfg.PoolPrePing = boolEnv(os.Getenv("DB_POOL_PRE_PING"), true)
	cfg.Echo = boolEnv(os.Getenv("DB_ECHO"), false)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DefaultNamespace resolves the process-wide default namespace name from
// DB_DEFAULT_NAMESPACE.
func DefaultNamespace() string {
	return getEnvOrDefault("DB_DEFAULT_NAMESPACE", DefaultNamespaceName)
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func boolEnv(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
