// Package shgrate is a minimal schema-migration runner: it applies pending
// SQL migration files in chronological filename order, records applied state
// per environment in a ledger that snapshots each rollback script, and rolls
// back the most recently applied migration on request.
package shgrate

import (
	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/executor"
	"github.com/astasoft/shgrate/internal/ledger"
	lfs "github.com/astasoft/shgrate/internal/ledger/fs"
	lpg "github.com/astasoft/shgrate/internal/ledger/postgresql"
	lsq "github.com/astasoft/shgrate/internal/ledger/sqlite"
	imig "github.com/astasoft/shgrate/internal/migration"
)

// Version is the tool version written into generated script headers.
const Version = constants.ToolVersion

// Re-export commonly used types for public API

// Config is the immutable per-invocation input bundle for the controllers.
type Config = imig.Config

// Migrator orchestrates migration and rollback runs.
type Migrator = imig.Migrator

// ConfigError marks a precondition failure (exit status 2 in the CLI).
type ConfigError = imig.ConfigError

// CreateOptions configures scaffolding of a migration/rollback pair.
type CreateOptions = imig.CreateOptions

// CreatedPair holds the generated pair's paths.
type CreatedPair = imig.CreatedPair

// CreateMigration scaffolds a timestamped migration/rollback pair.
func CreateMigration(opts CreateOptions) (CreatedPair, error) {
	return imig.CreateMigration(opts)
}

// LedgerStore persists applied-migration state per environment.
type LedgerStore = ledger.Store

// LedgerConfig selects and configures a ledger backend.
type LedgerConfig = ledger.Config

// Ledger driver names.
const (
	LedgerDriverFs         = ledger.DriverFs
	LedgerDriverSqlite     = ledger.DriverSqlite
	LedgerDriverPostgresql = ledger.DriverPostgresql
)

// Typed driver configs for the built-in ledger backends.
type (
	FsLedgerConfig         = lfs.Config
	SqliteLedgerConfig     = lsq.Config
	PostgresqlLedgerConfig = lpg.Config
)

// OpenLedger constructs and initializes the configured ledger backend.
func OpenLedger(cfg *LedgerConfig) (LedgerStore, error) {
	return cfg.Open()
}

// Executor applies a script batch against the target database.
type Executor = executor.Executor

// ExecError reports a failed script execution (exit status 3 in the CLI).
type ExecError = executor.ExecError

// ClientExecutor shells out to an external database client binary.
type ClientExecutor = executor.Client

// SQLExecutor runs scripts through a native database/sql driver.
type SQLExecutor = executor.SQL

// OpenSQLExecutor connects a native driver executor ("sqlite" or "pgx").
func OpenSQLExecutor(driver, dsn string) (*SQLExecutor, error) {
	return executor.OpenSQL(driver, dsn)
}

// Logging re-exports so embedders configure output the same way the CLI does.
type (
	Logger   = common.Logger
	LogLevel = common.LogLevel
)

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

var (
	NewLogger               = common.NewLogger
	NewLoggerWithWriter     = common.NewLoggerWithWriter
	NewJSONLogger           = common.NewJSONLogger
	NewJSONLoggerWithWriter = common.NewJSONLoggerWithWriter
	SetDefaultLogger        = common.SetDefaultLogger
	GetLogger               = common.GetLogger
)
