package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/ledger"

	_ "modernc.org/sqlite"
)

func init() {
	ledger.Register(ledger.DriverSqlite, func(config map[string]interface{}, tableName string) (ledger.Store, error) {
		s := NewStore()
		if err := s.Load(config); err != nil {
			return nil, err
		}
		// A configured sqlite ledger must be durable; without this guard an
		// empty section would silently fall back to :memory: and every run
		// would re-apply everything.
		if s.DSN == "" {
			return nil, fmt.Errorf("sqlite ledger: path or dsn not configured")
		}
		if tableName != "" {
			s.Table = tableName
		}
		if _, err := s.Connect(); err != nil {
			return nil, err
		}
		if err := s.EnsureSchema(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	})
}

type Store struct {
	db    *sql.DB
	DSN   string
	Table string
}

// NewStore creates a new SQLite ledger store
func NewStore() *Store {
	return &Store{Table: constants.DefaultLedgerTable}
}

// Load loads configuration into the SQLite store
func (s *Store) Load(config map[string]interface{}) error {
	if dsn, ok := config["dsn"].(string); ok && dsn != "" {
		s.DSN = dsn
		return nil
	}
	if path, ok := config["path"].(string); ok && path != "" {
		s.DSN = fmt.Sprintf("file:%s?_busy_timeout=%d&%s", path, busyTimeoutMS, foreignKeysParam)
	}
	return nil
}

// Connect establishes a connection to SQLite
func (s *Store) Connect() (*sql.DB, error) {
	if s.DSN == "" {
		// Default to in-memory database for testing
		s.DSN = ":memory:"
	}

	db, err := sql.Open("sqlite", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// SQLite allows only one writer
	db.SetMaxOpenConns(constants.DefaultSQLiteMaxConnections)
	db.SetMaxIdleConns(constants.DefaultSQLiteMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultSQLiteLifetime)
	db.SetConnMaxIdleTime(constants.DefaultSQLiteIdleTime)

	s.db = db
	common.GetLogger().WithDriver("sqlite").Debug("ledger database connection established")
	return db, nil
}

// EnsureSchema creates the ledger table when missing. The (environment, name)
// primary key makes at-most-once recording a schema invariant.
func (s *Store) EnsureSchema() error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		environment TEXT NOT NULL,
		name TEXT NOT NULL,
		rollback_sql TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		PRIMARY KEY(environment, name)
	)`, s.Table)
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

// Ensure is satisfied by EnsureSchema at open time; the table is shared across
// environments, so there is no per-environment namespace to create.
func (s *Store) Ensure(_ string) error {
	return nil
}

// ListApplied returns applied names sorted descending.
func (s *Store) ListApplied(environment string) ([]string, error) {
	q := fmt.Sprintf("SELECT name FROM %s WHERE environment = ? ORDER BY name DESC", s.Table)
	rows, err := s.db.Query(q, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return names, nil
}

// IsApplied checks whether an entry exists for (environment, name).
func (s *Store) IsApplied(environment, name string) (bool, error) {
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE environment = ? AND name = ?", s.Table)
	var one int
	err := s.db.QueryRow(q, environment, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry %s: %w", name, err)
	}
	return true, nil
}

// RecordApplied inserts the rollback snapshot; re-recording the same name
// replaces the snapshot rather than duplicating the entry.
func (s *Store) RecordApplied(environment, name, content string) error {
	logger := common.GetLogger().WithDriver("sqlite").WithEnvironment(environment).WithMigration(name)

	q := fmt.Sprintf("INSERT OR REPLACE INTO %s(environment, name, rollback_sql, applied_at) VALUES(?,?,?,?)", s.Table)
	_, err := s.db.Exec(q, environment, name, content, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		logger.Error("failed to record ledger entry", "error", err)
		return fmt.Errorf("failed to record ledger entry %s: %w", name, err)
	}

	logger.Debug("ledger entry recorded")
	return nil
}

// Content returns the stored rollback snapshot for name.
func (s *Store) Content(environment, name string) (string, error) {
	q := fmt.Sprintf("SELECT rollback_sql FROM %s WHERE environment = ? AND name = ?", s.Table)
	var content string
	err := s.db.QueryRow(q, environment, name).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("ledger entry %s not found", name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read ledger entry %s: %w", name, err)
	}
	return content, nil
}

// RemoveApplied deletes the entry for (environment, name).
func (s *Store) RemoveApplied(environment, name string) error {
	q := fmt.Sprintf("DELETE FROM %s WHERE environment = ? AND name = ?", s.Table)
	if _, err := s.db.Exec(q, environment, name); err != nil {
		return fmt.Errorf("failed to remove ledger entry %s: %w", name, err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
