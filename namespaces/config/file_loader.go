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
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"axonflow/dbmanager/namespaces/base"
)

// NamespacesFile is the root structure of a namespaces configuration file.
type NamespacesFile struct {
	Version    string                    `yaml:"version"`
	Namespaces map[string]NamespaceEntry `yaml:"namespaces"`
}

// NamespaceEntry is one namespace's configuration in the file. Zero-valued
// pool fields fall back to the process defaults.
type NamespaceEntry struct {
	Enabled     *bool  `yaml:"enabled,omitempty"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port,omitempty"`
	User        string `yaml:"user"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	Schema      string `yaml:"schema,omitempty"`
	PoolSize    int    `yaml:"pool_size,omitempty"`
	MaxOverflow int    `yaml:"max_overflow,omitempty"`
	PoolPrePing *bool  `yaml:"pool_pre_ping,omitempty"`
	PoolRecycle int    `yaml:"pool_recycle,omitempty"`
	Echo        bool   `yaml:"echo,omitempty"`
}

// LoadNamespacesFile reads a YAML namespaces file, expands ${ENV_VAR}
// references in its content, and returns a validated Config per enabled
// namespace.
func LoadNamespacesFile(path string) (map[string]Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read namespaces file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var file NamespacesFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("failed to parse namespaces file: %w", err)
	}

	configs := make(map[string]Config, len(file.Namespaces))
	for name, entry := range file.Namespaces {
		if entry.Enabled != nil && !*entry.Enabled {
			continue
		}

		// Missing required fields never silently become empty strings.
		var missing []string
		if entry.Host == "" {
			missing = append(missing, "host")
		}
		if entry.User == "" {
			missing = append(missing, "user")
		}
		if entry.Password == "" {
			missing = append(missing, "password")
		}
		if entry.Database == "" {
			missing = append(missing, "database")
		}
		if len(missing) > 0 {
			return nil, &base.ConfigurationError{
				Message:       fmt.Sprintf("namespace %q is missing required fields", name),
				MissingFields: missing,
			}
		}

		cfg := Config{
			Host:        entry.Host,
			Port:        entry.Port,
			User:        entry.User,
			Password:    entry.Password,
			Database:    entry.Database,
			Schema:      entry.Schema,
			PoolSize:    entry.PoolSize,
			MaxOverflow: entry.MaxOverflow,
			PoolPrePing: true,
			PoolRecycle: entry.PoolRecycle,
			Echo:        entry.Echo,
		}
		if cfg.Port == 0 {
			cfg.Port = 5432
		}
		if cfg.Schema == "" {
			cfg.Schema = DefaultSchema
		}
		if cfg.PoolSize == 0 {
			cfg.PoolSize = DefaultPoolSize
		}
		if cfg.PoolRecycle == 0 {
			cfg.PoolRecycle = DefaultPoolRecycle
		}
		if entry.PoolPrePing != nil {
			cfg.PoolPrePing = *entry.PoolPrePing
		}

		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("namespace %q: %w", name, err)
		}
		configs[name] = cfg
	}

	return configs, nil
}

// envVarRegex matches ${VAR_NAME} or $VAR_NAME patterns
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands environment variable references in the string.
// Supports ${VAR_NAME}, $VAR_NAME, and ${VAR_NAME:-default} syntax; undefined
// variables expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		defaultVal := ""
		if idx := strings.Index(varName, ":-"); idx != -1 {
			defaultVal = varName[idx+2:]
			varName = varName[:idx]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultVal
	})
}
