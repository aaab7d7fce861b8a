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

package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
	"axonflow/dbmanager/namespaces/postgres"
	"axonflow/dbmanager/shared/logger"
)

// HolderFactory creates a connection holder for a namespace. The default
// builds a real postgres.Holder; tests substitute fakes.
type HolderFactory func(namespace string, cfg config.Config) *postgres.Holder

var namespacesRegistered = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "dbmanager_namespaces_registered",
		Help: "Number of namespaces currently registered",
	},
)

func init() {
	prometheus.MustRegister(namespacesRegistered)
}

// Registry is the process-wide map of namespace name to connection holder.
// It is constructed once at startup and passed by reference to every
// component that needs it; there is no ambient global. Thread-safe for
// concurrent access.
type Registry struct {
	mu               sync.RWMutex
	holders          map[string]*postgres.Holder
	defaultNamespace string
	factory          HolderFactory
	logger           *logger.Logger
}

// New creates an empty registry. defaultNamespace is the name resolved when
// callers ask for the empty-string namespace; pass
// config.DefaultNamespace() to read it from the environment.
func New(defaultNamespace string) *Registry {
	if defaultNamespace == "" {
		defaultNamespace = config.DefaultNamespaceName
	}
	return &Registry{
		holders:          make(map[string]*postgres.Holder),
		defaultNamespace: defaultNamespace,
		factory:          postgres.NewHolder,
		logger:           logger.New("registry"),
	}
}

// SetFactory overrides holder construction. Must be called before any
// Register; used by tests.
func (r *Registry) SetFactory(factory HolderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = factory
}

// DefaultNamespace returns the configured default namespace name.
func (r *Registry) DefaultNamespace() string {
	return r.defaultNamespace
}

// Register inserts a fresh, unconnected holder for the namespace.
// Registering never connects. A duplicate name fails with AlreadyExistsError
// unless replace is set; replacing first closes the old holder so an
// already-connected pool is not silently abandoned.
func (r *Registry) Register(name string, cfg config.Config, replace bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	old, exists := r.holders[name]
	if exists && !replace {
		return &base.AlreadyExistsError{Namespace: name}
	}
	if exists {
		old.Close()
		r.logger.Info(name, "Replacing namespace; previous holder closed", nil)
	}

	r.holders[name] = r.factory(name, cfg)
	namespacesRegistered.Set(float64(len(r.holders)))

	masked := cfg.MaskPassword()
	r.logger.Info(name, "Namespace registered", map[string]interface{}{
		"host":     masked.Host,
		"port":     masked.Port,
		"database": masked.Database,
		"replaced": exists,
	})
	return nil
}

// Connection resolves name to its holder. The empty string resolves to the
// default namespace. Unknown names fail with NotFoundError carrying the
// sorted list of registered names.
func (r *Registry) Connection(name string) (*postgres.Holder, error) {
	if name == "" {
		name = r.defaultNamespace
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	holder, ok := r.holders[name]
	if !ok {
		return nil, &base.NotFoundError{Namespace: name, Known: r.namesLocked()}
	}
	return holder, nil
}

// List returns the currently registered namespace names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// namesLocked returns sorted names; callers must hold at least a read lock.
func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.holders))
	for name := range r.holders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered namespaces.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.holders)
}

// Info returns a masked snapshot for one namespace. Inspection never
// triggers engine initialization.
func (r *Registry) Info(name string) (*base.ConnectionInfo, error) {
	holder, err := r.Connection(name)
	if err != nil {
		return nil, err
	}
	return holder.Info(), nil
}

// AllInfo returns masked snapshots for every registered namespace.
func (r *Registry) AllInfo() []*base.ConnectionInfo {
	r.mu.RLock()
	holders := make([]*postgres.Holder, 0, len(r.holders))
	for _, h := range r.holders {
		holders = append(holders, h)
	}
	r.mu.RUnlock()

	infos := make([]*base.ConnectionInfo, 0, len(holders))
	for _, h := range holders {
		infos = append(infos, h.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Namespace < infos[j].Namespace })
	return infos
}

// TestConnection runs a connectivity round trip against one namespace.
// An unknown name is a registry-shape error and is returned as such;
// connectivity failures land in the TestResult instead.
func (r *Registry) TestConnection(ctx context.Context, name string) (*base.TestResult, error) {
	holder, err := r.Connection(name)
	if err != nil {
		return nil, err
	}
	return holder.TestConnection(ctx), nil
}

// TestAll health-checks every namespace. One unreachable namespace never
// aborts the sweep.
func (r *Registry) TestAll(ctx context.Context) map[string]*base.TestResult {
	r.mu.RLock()
	holders := make(map[string]*postgres.Holder, len(r.holders))
	for name, h := range r.holders {
		holders[name] = h
	}
	r.mu.RUnlock()

	results := make(map[string]*base.TestResult, len(holders))
	for name, h := range holders {
		results[name] = h.TestConnection(ctx)
	}
	return results
}

// Close disposes one namespace's holder and removes it from the registry.
func (r *Registry) Close(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	holder, ok := r.holders[name]
	if !ok {
		return &base.NotFoundError{Namespace: name, Known: r.namesLocked()}
	}

	holder.Close()
	delete(r.holders, name)
	namespacesRegistered.Set(float64(len(r.holders)))
	r.logger.Info(name, "Namespace closed", nil)
	return nil
}

// CloseAll disposes every holder and empties the registry. Best-effort:
// holder disposal is idempotent and never raises, so one misbehaving
// namespace cannot prevent the others from releasing their sockets.
// Idempotent; calling it on an empty registry is a no-op.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, holder := range r.holders {
		holder.Close()
		r.logger.Info(name, "Namespace closed", nil)
	}
	r.holders = make(map[string]*postgres.Holder)
	namespacesRegistered.Set(0)
}
