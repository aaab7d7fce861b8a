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

package base

import "time"

// ConnectionInfo is a read-only snapshot of one namespace's connection
// state. It is computed fresh on every request and never mutated; taking a
// snapshot must not initialize any engine as a side effect.
type ConnectionInfo struct {
	Namespace        string            `json:"namespace"`
	Host             string            `json:"host"`
	Port             int               `json:"port"`
	User             string            `json:"user"`
	MaskedPassword   string            `json:"masked_password"`
	Database         string            `json:"database"`
	Schema           string            `json:"schema"`
	PoolSize         int               `json:"pool_size"`
	MaxOverflow      int               `json:"max_overflow"`
	AsyncInitialized bool              `json:"async_initialized"`
	SyncInitialized  bool              `json:"sync_initialized"`
	Connected        bool              `json:"connected"`
	Details          map[string]string `json:"details,omitempty"`
}

// TestResult is the outcome of a connectivity round trip against one
// namespace. Connectivity failures are captured in Error rather than
// returned as Go errors, so a sweep over many namespaces is never aborted
// by a single unreachable host.
type TestResult struct {
	Namespace string        `json:"namespace"`
	Healthy   bool          `json:"healthy"`
	Latency   time.Duration `json:"latency"`
	Timestamp time.Time     `json:"timestamp"`
	Error     string        `json:"error,omitempty"`
}
