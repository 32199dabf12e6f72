package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/util"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Native driver names accepted by OpenSQL.
const (
	SQLDriverSqlite     = "sqlite"
	SQLDriverPostgresql = "pgx"
)

// SQL executes scripts through a database/sql driver instead of an external
// client process. Driver errors carry no exit status, so ExitCode is -1.
type SQL struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects a native driver executor. driver is "sqlite" or "pgx".
func OpenSQL(driver, dsn string) (*SQL, error) {
	d := util.TrimAndLower(driver)
	switch d {
	case SQLDriverSqlite, SQLDriverPostgresql:
	default:
		return nil, fmt.Errorf("unknown executor driver: %s", driver)
	}
	db, err := sql.Open(d, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", d, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d, err)
	}
	common.GetLogger().WithComponent("executor").WithDriver(d).Debug("database connection established")
	return &SQL{db: db, driver: d}, nil
}

// Apply executes the script as a single batch. Whatever the database
// guarantees about multi-statement scripts failing partway is what the caller
// gets; no savepoints are attempted.
func (e *SQL) Apply(ctx context.Context, script string) error {
	if _, err := e.db.ExecContext(ctx, script); err != nil {
		return &ExecError{ExitCode: -1, Diagnostic: err.Error()}
	}
	return nil
}

// DB exposes the underlying handle for tests.
func (e *SQL) DB() *sql.DB {
	return e.db
}

func (e *SQL) Close() error {
	if e.db != nil {
		return e.db.Close()
	}
	return nil
}
