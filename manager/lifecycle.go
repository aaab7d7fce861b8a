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

package manager

import (
	"context"
	"errors"
	"os"
	"sort"

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
	"axonflow/dbmanager/namespaces/registry"
	"axonflow/dbmanager/shared/logger"
)

// NamespaceSpec pairs a namespace name with its resolved configuration.
type NamespaceSpec struct {
	Name   string
	Config config.Config
}

// CollectSpecs resolves the namespace set for this process: the default
// namespace from the POSTGRES_* environment plus, when DB_NAMESPACES_FILE
// is set, every enabled namespace from the YAML file. A file entry for the
// default namespace overrides the environment one.
func CollectSpecs() ([]NamespaceSpec, error) {
	log := logger.New("manager")
	byName := make(map[string]config.Config)

	envCfg, envErr := config.FromEnv()
	if envErr == nil {
		byName[config.DefaultNamespace()] = envCfg
	} else {
		var cfgErr *base.ConfigurationError
		if !errors.As(envErr, &cfgErr) || len(cfgErr.MissingFields) == 0 {
			// The fields were supplied but invalid (a malformed port, for
			// instance). A file cannot make that right; fail loudly.
			return nil, envErr
		}
		log.Warn("", "Default namespace not configured from environment", map[string]interface{}{
			"missing": cfgErr.MissingFields,
		})
	}

	path := os.Getenv("DB_NAMESPACES_FILE")
	if path != "" {
		fileCfgs, err := config.LoadNamespacesFile(path)
		if err != nil {
			return nil, err
		}
		for name, cfg := range fileCfgs {
			byName[name] = cfg
		}
	}

	// No file and no usable environment: surface the configuration error
	// rather than starting with zero namespaces.
	if len(byName) == 0 {
		if envErr != nil {
			return nil, envErr
		}
		return nil, nil
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]NamespaceSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, NamespaceSpec{Name: name, Config: byName[name]})
	}
	return specs, nil
}

// Bootstrap populates the registry from the given specs. Each namespace is
// registered with replace=true so a stale prior registration from a reload
// is disposed rather than leaked. When eager is set, the async engine is
// initialized immediately instead of on first use.
//
// If any namespace fails, every namespace registered so far is closed
// before the failure propagates: half-open pools must not survive a failed
// startup.
func Bootstrap(ctx context.Context, reg *registry.Registry, specs []NamespaceSpec, eager bool) error {
	log := logger.New("manager")

	for _, spec := range specs {
		if err := reg.Register(spec.Name, spec.Config, true); err != nil {
			log.ErrorWithCause(spec.Name, "Namespace registration failed; rolling back startup", err, nil)
			reg.CloseAll()
			return err
		}

		if !eager {
			continue
		}

		holder, err := reg.Connection(spec.Name)
		if err == nil {
			err = holder.InitAsync(ctx)
		}
		if err != nil {
			log.ErrorWithCause(spec.Name, "Eager initialization failed; rolling back startup", err, nil)
			reg.CloseAll()
			return err
		}
	}

	log.Info("", "Bootstrap complete", map[string]interface{}{
		"namespaces": reg.List(),
		"eager":      eager,
	})
	return nil
}

// Shutdown disposes every namespace. It never fails: holder disposal is
// log-and-continue, and shutting down an already-clean registry is a no-op.
func Shutdown(reg *registry.Registry) {
	log := logger.New("manager")
	count := reg.Count()
	reg.CloseAll()
	log.Info("", "Shutdown complete", map[string]interface{}{
		"namespaces_closed": count,
	})
}
