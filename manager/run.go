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
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"axonflow/dbmanager/namespaces/config"
	"axonflow/dbmanager/namespaces/registry"
)

// Prometheus metrics
var (
	promHTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbmanager_http_requests_total",
			Help: "Total number of HTTP requests handled by the admin API",
		},
		[]string{"method", "status"},
	)
	promHTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbmanager_http_request_duration_milliseconds",
			Help:    "Admin API request duration in milliseconds",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(promHTTPRequests)
	prometheus.MustRegister(promHTTPDuration)
}

// NewRouter wires the admin API routes onto a gorilla/mux router. Exposed
// separately from Run so tests can exercise the full middleware chain.
func NewRouter(api *API) *mux.Router {
	r := mux.NewRouter()

	auth := authMiddleware(api.logger)

	// Health and metrics
	r.HandleFunc("/health", api.healthHandler).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	// Namespace listing and diagnostics (read-only)
	r.HandleFunc("/api/v1/namespaces", api.listNamespacesHandler).Methods("GET")
	r.HandleFunc("/api/v1/connections", api.allInfoHandler).Methods("GET")
	r.HandleFunc("/api/v1/namespaces/{name}", api.namespaceInfoHandler).Methods("GET")

	// Connectivity tests
	r.HandleFunc("/api/v1/namespaces/{name}/test", api.testNamespaceHandler).Methods("POST")
	r.HandleFunc("/api/v1/test", api.testAllHandler).Methods("POST")

	// Mutations require auth when ADMIN_JWT_SECRET is configured
	r.Handle("/api/v1/namespaces", auth(http.HandlerFunc(api.registerNamespaceHandler))).Methods("POST")
	r.Handle("/api/v1/namespaces/{name}", auth(http.HandlerFunc(api.closeNamespaceHandler))).Methods("DELETE")

	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(api.logger))

	return r
}

// Run boots the connection manager: resolve the namespace set, populate the
// registry (rolling back cleanly on partial failure), serve the admin API,
// and dispose every namespace on shutdown.
func Run() {
	log.Println("Starting AxonFlow DB Manager...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	specs, err := CollectSpecs()
	if err != nil {
		log.Fatalf("Failed to resolve namespace configuration: %v", err)
	}

	reg := registry.New(config.DefaultNamespace())

	eager, _ := strconv.ParseBool(os.Getenv("DB_EAGER_INIT"))
	if err := Bootstrap(ctx, reg, specs, eager); err != nil {
		log.Fatalf("Bootstrap failed: %v", err)
	}
	defer Shutdown(reg)

	api := NewAPI(reg)
	router := NewRouter(api)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	port := getEnv("PORT", "8084")
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      c.Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("AxonFlow DB Manager listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, draining...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
