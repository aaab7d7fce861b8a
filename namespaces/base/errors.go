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

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when a namespace name cannot be resolved.
// Known carries the currently registered names so callers can build a
// helpful error message without a second registry round-trip.
type NotFoundError struct {
	Namespace string
	Known     []string
}

func (e *NotFoundError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("namespace %q not found (no namespaces registered)", e.Namespace)
	}
	return fmt.Sprintf("namespace %q not found (registered: %s)", e.Namespace, strings.Join(e.Known, ", "))
}

func (e *NotFoundError) managerError() {}

// AlreadyExistsError is returned when registering a namespace name that is
// already taken and replace was not requested.
type AlreadyExistsError struct {
	Namespace string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("namespace %q is already registered (use replace to overwrite)", e.Namespace)
}

func (e *AlreadyExistsError) managerError() {}

// ConfigurationError is returned when required configuration fields are
// missing or invalid. MissingFields lists every offending field, not just
// the first one found.
type ConfigurationError struct {
	Message       string
	MissingFields []string
}

func (e *ConfigurationError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("invalid database configuration: %s (missing: %s)",
			e.Message, strings.Join(e.MissingFields, ", "))
	}
	return "invalid database configuration: " + e.Message
}

func (e *ConfigurationError) managerError() {}

// ConnectionError is returned when engine construction or a live connection
// fails for a namespace.
type ConnectionError struct {
	Namespace string
	Operation string
	Message   string
	Cause     error
}

func (e *ConnectionError) Error() string {
	msg := fmt.Sprintf("namespace %q: %s: %s", e.Namespace, e.Operation, e.Message)
	if e.Cause != nil {
		msg += " (cause: " + e.Cause.Error() + ")"
	}
	return msg
}

func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

func (e *ConnectionError) managerError() {}

// NewConnectionError creates a ConnectionError for the given namespace and
// operation.
func NewConnectionError(namespace, operation, message string, cause error) *ConnectionError {
	return &ConnectionError{
		Namespace: namespace,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// managerError is the marker shared by every error in the taxonomy. Callers
// that want a single catch-all use IsManagerError instead of matching each
// concrete type.
type managerError interface {
	error
	managerError()
}

// IsManagerError reports whether err (or anything it wraps) belongs to the
// connection-manager error taxonomy.
func IsManagerError(err error) bool {
	var me managerError
	return errors.As(err, &me)
}
