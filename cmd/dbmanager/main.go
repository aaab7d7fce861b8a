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

// Package main is the entry point for the AxonFlow DB Manager service.
//
// The DB Manager holds the process-wide registry of PostgreSQL namespaces:
// - Registers independently configured database connections per namespace
// - Lazily creates async (pgx) and sync (database/sql) engines on first use
// - Yields leak-free scoped sessions (commit on success, rollback otherwise)
// - Health-checks namespaces without aborting on a single unreachable host
// - Serves a masked diagnostics and administration HTTP API
//
// Usage:
//
//	./dbmanager
//
// Environment Variables:
//
//	PORT - HTTP server port (default: 8084)
//	POSTGRES_HOST, POSTGRES_PORT, POSTGRES_USER, POSTGRES_PASSWORD,
//	POSTGRES_DB, POSTGRES_SCHEMA - default namespace connection
//	DB_POOL_SIZE, DB_MAX_OVERFLOW, DB_POOL_PRE_PING, DB_POOL_RECYCLE,
//	DB_ECHO - pool tuning
//	DB_DEFAULT_NAMESPACE - default namespace name (default: app_db)
//	DB_NAMESPACES_FILE - YAML file with additional namespaces (optional)
//	DB_EAGER_INIT - initialize async engines at startup (default: false)
//	ADMIN_JWT_SECRET - HS256 secret for admin API auth (optional)
package main

import (
	"axonflow/dbmanager/manager"
)

func main() {
	manager.Run()
}
