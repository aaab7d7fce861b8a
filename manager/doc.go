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
Package manager drives the connection-manager lifecycle and serves its
administration API.

# Lifecycle

CollectSpecs resolves the namespace set (POSTGRES_* environment for the
default namespace, plus an optional DB_NAMESPACES_FILE YAML file).
Bootstrap registers each namespace, optionally eager-initializing its async
engine; if any namespace fails, every namespace registered so far is closed
before the error propagates, so a failed startup never leaks half-open
pools. Shutdown unconditionally disposes all namespaces and never fails on
an already-clean registry.

# Admin API

	GET    /health                          process liveness
	GET    /prometheus                      Prometheus metrics
	GET    /api/v1/namespaces               registered names + default
	POST   /api/v1/namespaces               register (auth)
	GET    /api/v1/connections              masked snapshots, all namespaces
	GET    /api/v1/namespaces/{name}        masked snapshot
	POST   /api/v1/namespaces/{name}/test   connectivity round trip
	POST   /api/v1/test                     sweep all namespaces
	DELETE /api/v1/namespaces/{name}        close and remove (auth)

Unknown namespaces map to 404 responses carrying the available names;
connection failures during session work map to 503. Diagnostic payloads
are always masked; raw credentials only ever travel inbound.

Mutating routes require a bearer JWT signed with ADMIN_JWT_SECRET when that
variable is set; without it the API runs open for self-hosted zero-config
deployments.

# Environment Variables

	PORT                 HTTP server port (default: 8084)
	DB_EAGER_INIT        eagerly initialize async engines at startup
	DB_NAMESPACES_FILE   YAML file with additional namespaces
	ADMIN_JWT_SECRET     HS256 secret for admin API auth (optional)
*/
package manager
