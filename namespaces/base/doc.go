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
Package base defines the shared types and the error taxonomy for the
multi-namespace connection manager.

# Error taxonomy

Four concrete error types cover every failure the manager can signal:

  - NotFoundError: a namespace name could not be resolved; carries the
    list of registered names for caller-facing messages.
  - AlreadyExistsError: duplicate registration without replace.
  - ConfigurationError: missing or invalid required fields; carries the
    full missing-field list.
  - ConnectionError: engine construction or live-connection failure;
    carries the namespace and the underlying cause.

All four satisfy a common marker so callers that only care about "did the
connection manager fail" can use IsManagerError as a catch-all:

	if base.IsManagerError(err) {
	    // registry-shape or connectivity failure
	}

Registry-shape errors (not-found, already-exists, configuration) are always
surfaced synchronously and never retried internally. Connectivity failures
during health sweeps are converted into TestResult values instead of errors;
connectivity failures during ordinary session acquisition propagate.
*/
package base
