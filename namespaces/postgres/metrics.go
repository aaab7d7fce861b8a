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

import "github.com/prometheus/client_golang/prometheus"

const (
	modeAsync = "async"
	modeSync  = "sync"

	statusOK    = "ok"
	statusError = "error"

	outcomeCommitted  = "committed"
	outcomeRolledBack = "rolled_back"
	outcomeFailed     = "failed"
)

// Prometheus metrics
var (
	sessions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbmanager_sessions_total",
			Help: "Total number of scoped sessions by namespace, mode, and outcome",
		},
		[]string{"namespace", "mode", "outcome"},
	)
	engineInits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbmanager_engine_inits_total",
			Help: "Total number of engine initialization attempts",
		},
		[]string{"namespace", "mode", "status"},
	)
	connectionTests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dbmanager_connection_tests_total",
			Help: "Total number of namespace connectivity tests",
		},
		[]string{"namespace", "status"},
	)
	testLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dbmanager_connection_test_duration_seconds",
			Help:    "Connectivity test round-trip latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"namespace"},
	)
)

func init() {
	prometheus.MustRegister(sessions)
	prometheus.MustRegister(engineInits)
	prometheus.MustRegister(connectionTests)
	prometheus.MustRegister(testLatency)
}
