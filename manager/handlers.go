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
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"axonflow/dbmanager/namespaces/base"
	"axonflow/dbmanager/namespaces/config"
	"axonflow/dbmanager/namespaces/registry"
	"axonflow/dbmanager/shared/logger"
)

// API exposes the diagnostics and administration surface over the registry.
type API struct {
	registry *registry.Registry
	logger   *logger.Logger
	started  time.Time
}

// NewAPI creates the handler set bound to reg.
func NewAPI(reg *registry.Registry) *API {
	return &API{
		registry: reg,
		logger:   logger.New("manager"),
		started:  time.Now(),
	}
}

// errorBody is the JSON error payload. Namespaces is populated for
// not-found responses so callers see what is available.
type errorBody struct {
	Error      string   `json:"error"`
	Namespaces []string `json:"namespaces,omitempty"`
}

// registerRequest is the POST /api/v1/namespaces body. The raw password
// lands here and nowhere else; every response path is masked.
type registerRequest struct {
	Name        string `json:"name"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	User        string `json:"user"`
	Password    string `json:"password"`
	Database    string `json:"database"`
	Schema      string `json:"schema"`
	PoolSize    int    `json:"pool_size"`
	MaxOverflow int    `json:"max_overflow"`
	PoolPrePing *bool  `json:"pool_pre_ping"`
	PoolRecycle int    `json:"pool_recycle"`
	Echo        bool   `json:"echo"`
	Replace     bool   `json:"replace"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP status codes. Credentials
// never appear in error bodies; the taxonomy messages carry only namespace
// names and causes.
func (a *API) writeError(w http.ResponseWriter, err error) {
	var notFound *base.NotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Namespaces: notFound.Known})
		return
	}
	var exists *base.AlreadyExistsError
	if errors.As(err, &exists) {
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		return
	}
	var cfgErr *base.ConfigurationError
	if errors.As(err, &cfgErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	var connErr *base.ConnectionError
	if errors.As(err, &connErr) {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
}

// healthHandler reports process liveness and the namespace count. It never
// touches the database.
func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"namespaces":     a.registry.Count(),
		"uptime_seconds": int(time.Since(a.started).Seconds()),
	})
}

// listNamespacesHandler returns the registered namespace names.
func (a *API) listNamespacesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"namespaces": a.registry.List(),
		"default":    a.registry.DefaultNamespace(),
	})
}

// registerNamespaceHandler registers a namespace from a JSON body.
// Registration never connects; the response is the masked snapshot.
func (a *API) registerNamespaceHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "namespace name is required"})
		return
	}

	cfg, err := config.New(req.Host, req.Port, req.User, req.Password, req.Database)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if req.Schema != "" {
		cfg.Schema = req.Schema
	}
	if req.PoolSize > 0 {
		cfg.PoolSize = req.PoolSize
	}
	if req.MaxOverflow > 0 {
		cfg.MaxOverflow = req.MaxOverflow
	}
	if req.PoolPrePing != nil {
		cfg.PoolPrePing = *req.PoolPrePing
	}
	if req.PoolRecycle > 0 {
		cfg.PoolRecycle = req.PoolRecycle
	}
	cfg.Echo = req.Echo

	if err := a.registry.Register(req.Name, cfg, req.Replace); err != nil {
		a.writeError(w, err)
		return
	}

	info, err := a.registry.Info(req.Name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// allInfoHandler returns masked snapshots for every namespace.
func (a *API) allInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connections": a.registry.AllInfo(),
	})
}

// namespaceInfoHandler returns one namespace's masked snapshot.
func (a *API) namespaceInfoHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	info, err := a.registry.Info(name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// testNamespaceHandler runs a connectivity round trip. An unreachable
// database is a 200 with healthy=false: the test itself succeeded, the
// verdict is the payload.
func (a *API) testNamespaceHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	result, err := a.registry.TestConnection(r.Context(), name)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// testAllHandler sweeps every namespace; one unreachable host never aborts
// the rest.
func (a *API) testAllHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.registry.TestAll(r.Context()))
}

// closeNamespaceHandler disposes a namespace and removes it.
func (a *API) closeNamespaceHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := a.registry.Close(name); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed", "namespace": name})
}
