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
	"net/url"

	"axonflow/dbmanager/namespaces/base"
)

// Default pool tuning applied when the environment does not override them.
const (
	DefaultSchema      = "public"
	DefaultPoolSize    = 10
	DefaultMaxOverflow = 0
	DefaultPoolRecycle = 3600 // seconds
)

// Config holds the connection parameters for one namespace. It is a value
// object: passed and stored by value, so a Config handed to a holder cannot
// be mutated behind its back. Derived DSNs are computed on demand from the
// fields and are never cached.
type Config struct {
	Host        string `json:"host" yaml:"host"`
	Port        int    `json:"port" yaml:"port"`
	User        string `json:"user" yaml:"user"`
	Password    string `json:"-" yaml:"password"`
	Database    string `json:"database" yaml:"database"`
	Schema      string `json:"schema" yaml:"schema"`
	PoolSize    int    `json:"pool_size" yaml:"pool_size"`
	MaxOverflow int    `json:"max_overflow" yaml:"max_overflow"`
	PoolPrePing bool   `json:"pool_pre_ping" yaml:"pool_pre_ping"`
	PoolRecycle int    `json:"pool_recycle" yaml:"pool_recycle"`
	Echo        bool   `json:"echo" yaml:"echo"`
}

// New builds a Config with defaults applied and the port validated.
// Host, credentials, and database are accepted as-is (including empty
// strings); reachability is a driver concern, not a construction concern.
func New(host string, port int, user, password, database string) (Config, error) {
	cfg := Config{
		Host:        host,
		Port:        port,
		User:        user,
		Password:    password,
		Database:    database,
		Schema:      DefaultSchema,
		PoolSize:    DefaultPoolSize,
		MaxOverflow: DefaultMaxOverflow,
		PoolPrePing: true,
		PoolRecycle: DefaultPoolRecycle,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the structural invariants of the Config. Only the port
// range is enforced here; empty host/credentials fail downstream when the
// driver connects.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return &base.ConfigurationError{
			Message: fmt.Sprintf("port %d is out of range [1, 65535]", c.Port),
		}
	}
	return nil
}

// MaxConns returns the total connection budget for the namespace's pool.
func (c Config) MaxConns() int {
	return c.PoolSize + c.MaxOverflow
}

// AsyncDSN returns the pgx pool DSN for the namespace. Pool sizing and
// recycling travel in the DSN so the pool is fully described by the Config.
func (c Config) AsyncDSN() string {
	q := url.Values{}
	q.Set("pool_max_conns", fmt.Sprintf("%d", c.MaxConns()))
	q.Set("pool_max_conn_lifetime", fmt.Sprintf("%ds", c.PoolRecycle))
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	return c.baseURL() + "?" + q.Encode()
}

// SyncDSN returns the lib/pq-compatible DSN for the namespace. Credentials,
// host, and database are identical to AsyncDSN; only driver-specific
// parameters differ.
func (c Config) SyncDSN() string {
	q := url.Values{}
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u := c.baseURL()
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c Config) baseURL() string {
	// url.QueryEscape is for query parameters, not userinfo: it turns a
	// space into "+", which is literal there and corrupts the password.
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	return u.String()
}

// MaskPassword returns a copy of the Config with the password replaced by a
// display-safe preview: first two and last two characters around "***", or
// the literal "***" when the password has four or fewer characters. The
// transform is pure and idempotent in visible content.
func (c Config) MaskPassword() Config {
	masked := c
	masked.Password = maskSecret(c.Password)
	return masked
}

func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "***"
	}
	return secret[:2] + "***" + secret[len(secret)-2:]
}
