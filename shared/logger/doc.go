// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package logger provides structured JSON logging for the connection manager.

# Overview

The logger outputs single-line JSON to stdout, making logs easily consumable
by CloudWatch, ELK stack, or other log aggregation systems.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (registry, holder, manager)
  - Container name (auto-detected hostname)
  - Database namespace the entry refers to, when applicable
  - Request ID (for HTTP request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("registry")

Log messages scoped to a namespace:

	log.Info("app_db", "Namespace registered", map[string]interface{}{
	    "host": "db.internal",
	})

Log errors with the underlying cause:

	log.ErrorWithCause("app_db", "Engine construction failed", err, nil)

Log with duration tracking:

	start := time.Now()
	// ... do work ...
	log.InfoWithDuration("app_db", "Connection test completed",
	    float64(time.Since(start).Milliseconds()), nil)

# Output Format

	{"timestamp":"2025-01-15T10:30:00.123456789Z","level":"INFO",
	 "component":"registry","container":"dbmanager-xyz",
	 "namespace":"app_db","message":"Namespace registered",
	 "fields":{"host":"db.internal"}}

Secrets never appear in log output: configuration is masked before any
diagnostic field is attached.

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
