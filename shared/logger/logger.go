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

package logger

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	DEBUG LogLevel = "DEBUG"
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
)

// Logger provides structured logging for the connection manager. Entries
// carry the component name and, where relevant, the database namespace the
// entry refers to, so log aggregation can slice by namespace.
type Logger struct {
	Component string
	Container string
	out       *log.Logger
}

// LogEntry is the JSON shape written for every log line.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Component string                 `json:"component"`
	Container string                 `json:"container"`
	Namespace string                 `json:"namespace,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// New creates a new Logger for the specified component.
func New(component string) *Logger {
	container, err := os.Hostname()
	if err != nil {
		container = "unknown"
	}

	return &Logger{
		Component: component,
		Container: container,
		out:       log.New(os.Stdout, "", 0),
	}
}

// NewWithWriter creates a Logger that writes to w. Used by tests to capture
// output.
func NewWithWriter(component string, w io.Writer) *Logger {
	l := New(component)
	l.out = log.New(w, "", 0)
	return l
}

// Log creates a structured log entry and writes it as a single JSON line.
func (l *Logger) Log(level LogLevel, namespace, requestID, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Component: l.Component,
		Container: l.Container,
		Namespace: namespace,
		RequestID: requestID,
		Message:   message,
		Fields:    fields,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		log.Printf("ERROR: Failed to marshal log entry: %v", err)
		return
	}

	l.out.Println(string(jsonBytes))
}

// Info logs an informational message.
func (l *Logger) Info(namespace, message string, fields map[string]interface{}) {
	l.Log(INFO, namespace, "", message, fields)
}

// Error logs an error message.
func (l *Logger) Error(namespace, message string, fields map[string]interface{}) {
	l.Log(ERROR, namespace, "", message, fields)
}

// Warn logs a warning message.
func (l *Logger) Warn(namespace, message string, fields map[string]interface{}) {
	l.Log(WARN, namespace, "", message, fields)
}

// Debug logs a debug message.
func (l *Logger) Debug(namespace, message string, fields map[string]interface{}) {
	l.Log(DEBUG, namespace, "", message, fields)
}

// ErrorWithCause logs an error with the underlying cause attached as a field.
func (l *Logger) ErrorWithCause(namespace, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	l.Error(namespace, message, fields)
}

// Request logs an HTTP-request-scoped entry carrying the request ID.
func (l *Logger) Request(level LogLevel, requestID, message string, fields map[string]interface{}) {
	l.Log(level, "", requestID, message, fields)
}

// InfoWithDuration logs an info message with a duration_ms field.
func (l *Logger) InfoWithDuration(namespace, message string, durationMS float64, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["duration_ms"] = durationMS
	l.Info(namespace, message, fields)
}
