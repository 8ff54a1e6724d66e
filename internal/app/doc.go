// Package app provides the Application Composition Layer for the social layer.
//
// # Architecture Role
//
// The app package wires storage implementations into the domain services and
// hands the resulting Application to the HTTP layer. It holds no business
// rules of its own; those live in internal/app/services.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct and wiring
//	├── domain/             # Domain models (pure data structures)
//	│   ├── account/        # Account model and validation tags
//	│   └── message/        # Message model and validation tags
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # AccountStore, MessageStore, Pinger, sentinel errors
//	│   ├── memory/         # In-memory implementation for tests and local runs
//	│   └── sqlstore/       # PostgreSQL / SQLite implementation via sqlx
//	├── services/           # Domain rules (accounts, messages)
//	├── httpapi/            # HTTP routing, handlers and middleware
//	├── metrics/            # Prometheus collectors
//	└── runtime/            # Config, database and HTTP server lifecycle
//
// # Dependency Direction
//
//	cmd/appserver/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/platform/{database,migrations}
//	      │
//	      ▼
//	internal/app/httpapi ──► internal/app (composition)
//	                               │
//	                               ├──► internal/app/services
//	                               │           │
//	                               │           ▼
//	                               └──► internal/app/storage
//
// # Example: Adding a New Domain
//
//  1. Create the model in internal/app/domain/<name>/
//  2. Add its store interface to internal/app/storage/interfaces.go
//  3. Implement it in internal/app/storage/sqlstore/ and memory/
//  4. Add the schema to internal/platform/migrations
//  5. Create the service in internal/app/services/<name>/
//  6. Wire it in internal/app/application.go and add routes in httpapi
package app
