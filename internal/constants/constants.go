package constants

import (
	"net/http"
	"time"
)

// Tool identity, written into generated script headers
const (
	ToolName    = "shgrate"
	ToolVersion = "1.0.0"
)

// Database Constants
const (
	// PostgreSQL defaults
	DefaultPostgresPort    = 5432
	DefaultPostgresSSLMode = "disable"

	// Connection pool settings
	DefaultPostgresMaxConnections = 25
	DefaultPostgresMaxIdleConns   = 5
	DefaultSQLiteMaxConnections   = 1 // SQLite allows only one writer
	DefaultSQLiteMaxIdleConns     = 1

	// Default table name for SQL-backed ledgers
	DefaultLedgerTable = "shgrate_ledger"

	// Default database client binary for the shell executor
	DefaultClientBinary = "mysql"
)

// Time and Duration Constants
const (
	// Connection pool lifetimes
	DefaultMaxConnLifetime = 5 * time.Minute
	DefaultMaxIdleTime     = 1 * time.Minute
	DefaultSQLiteLifetime  = 10 * time.Minute
	DefaultSQLiteIdleTime  = 5 * time.Minute
)

// Wait Configuration Constants
const (
	DefaultWaitTimeout  = 60 * time.Second
	DefaultWaitInterval = 2 * time.Second
	DefaultWaitStatus   = http.StatusOK // Use standard library constant
	DefaultWaitMethod   = "GET"
)

// Migration file layout defaults
const (
	DefaultMigrationsDir = "migrations"
	DefaultRollbackDir   = "rollback"
	DefaultLedgerRoot    = "migrated"
	DefaultEnvironment   = "production"
	DefaultScriptSuffix  = "sql"
)
