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
Package registry maps namespace names to their connection holders.

# Overview

The Registry is the single process-wide table of database namespaces. It is
constructed once at startup and handed to every component that needs it;
mutation (register, close) happens only from startup/shutdown orchestration
and explicit administrative calls, while session acquisition goes through
the read path. A sync.RWMutex guards the map so a session acquired just
before a namespace closes either completes against its holder or fails with
a typed error, never corrupting registry state.

# Contracts

  - Register never connects; holders stay lazy until first use.
  - Duplicate registration without replace fails with AlreadyExistsError.
    With replace, the previous holder is closed before being overwritten.
  - Connection("") resolves to the default namespace.
  - Unknown names fail with NotFoundError carrying the registered names.
  - Info/AllInfo are inspection-only and never initialize engines.
  - TestConnection/TestAll report connectivity failures in the result, so a
    sweep over many namespaces survives unreachable hosts.
  - CloseAll is idempotent and leaves the registry empty.
*/
package registry
