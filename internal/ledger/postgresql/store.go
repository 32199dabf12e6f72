package postgresql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/ledger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func init() {
	ledger.Register(ledger.DriverPostgresql, func(config map[string]interface{}, tableName string) (ledger.Store, error) {
		s := NewStore()
		if err := s.Load(config); err != nil {
			return nil, err
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

// NewStore creates a new PostgreSQL ledger store
func NewStore() *Store {
	return &Store{Table: constants.DefaultLedgerTable}
}

// Load loads configuration into the PostgreSQL store
func (s *Store) Load(config map[string]interface{}) error {
	if dsn, ok := config["dsn"].(string); ok && dsn != "" {
		s.DSN = dsn
		return nil
	}
	return fmt.Errorf("postgresql ledger: dsn not configured")
}

// Connect establishes a connection via the pgx stdlib driver.
func (s *Store) Connect() (*sql.DB, error) {
	db, err := sql.Open("pgx", s.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	db.SetMaxOpenConns(constants.DefaultPostgresMaxConnections)
	db.SetMaxIdleConns(constants.DefaultPostgresMaxIdleConns)
	db.SetConnMaxLifetime(constants.DefaultMaxConnLifetime)
	db.SetConnMaxIdleTime(constants.DefaultMaxIdleTime)

	s.db = db
	common.GetLogger().WithDriver("postgresql").Debug("ledger database connection established")
	return db, nil
}

// EnsureSchema creates the ledger table when missing.
func (s *Store) EnsureSchema() error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		environment TEXT NOT NULL,
		name TEXT NOT NULL,
		rollback_sql TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY(environment, name)
	)`, s.Table)
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("failed to ensure ledger schema: %w", err)
	}
	return nil
}

// Ensure is satisfied by EnsureSchema at open time.
func (s *Store) Ensure(_ string) error {
	return nil
}

// ListApplied returns applied names sorted descending.
func (s *Store) ListApplied(environment string) ([]string, error) {
	q := fmt.Sprintf("SELECT name FROM %s WHERE environment = $1 ORDER BY name DESC", s.Table)
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
	q := fmt.Sprintf("SELECT 1 FROM %s WHERE environment = $1 AND name = $2", s.Table)
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

// RecordApplied upserts the rollback snapshot for (environment, name).
func (s *Store) RecordApplied(environment, name, content string) error {
	logger := common.GetLogger().WithDriver("postgresql").WithEnvironment(environment).WithMigration(name)

	q := fmt.Sprintf(`INSERT INTO %s(environment, name, rollback_sql, applied_at) VALUES($1,$2,$3,$4)
		ON CONFLICT (environment, name) DO UPDATE SET rollback_sql = EXCLUDED.rollback_sql, applied_at = EXCLUDED.applied_at`, s.Table)
	if _, err := s.db.Exec(q, environment, name, content, time.Now().UTC()); err != nil {
		logger.Error("failed to record ledger entry", "error", err)
		return fmt.Errorf("failed to record ledger entry %s: %w", name, err)
	}

	logger.Debug("ledger entry recorded")
	return nil
}

// Content returns the stored rollback snapshot for name.
func (s *Store) Content(environment, name string) (string, error) {
	q := fmt.Sprintf("SELECT rollback_sql FROM %s WHERE environment = $1 AND name = $2", s.Table)
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
	q := fmt.Sprintf("DELETE FROM %s WHERE environment = $1 AND name = $2", s.Table)
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
