package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/executor"
	"github.com/astasoft/shgrate/internal/ledger"
)

// Migrator orchestrates migrations and rollbacks for one environment. It is
// single-threaded: one invocation processes one pending set, strictly in
// order, and suspends on each executor call until it returns. Nothing guards
// two concurrent invocations against the same (database, environment); run
// serially.
type Migrator struct {
	Config   Config
	Ledger   ledger.Store
	Executor executor.Executor
	// Out receives user-facing output: dry-run previews and the
	// "nothing to migrate"/"nothing to rollback" notices. Defaults to stdout.
	Out io.Writer
}

type validator interface {
	Validate() error
}

func (m *Migrator) out() io.Writer {
	if m.Out != nil {
		return m.Out
	}
	return os.Stdout
}

// validate normalizes the configuration and checks every precondition before
// any side effect occurs.
func (m *Migrator) validate() (Config, error) {
	cfg := m.Config.Normalized()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if m.Ledger == nil {
		return cfg, NewConfigError("ledger store is not configured")
	}
	if m.Executor == nil {
		return cfg, NewConfigError("executor is not configured")
	}
	if v, ok := m.Executor.(validator); ok {
		if err := v.Validate(); err != nil {
			return cfg, NewConfigError("%v", err)
		}
	}
	return cfg, nil
}

// MigrateUp applies every pending migration in ascending filename order and
// returns the names applied. The ledger is only advanced after a successful
// execution, so the first failure halts the run with earlier entries already
// committed; re-running after a fix resumes at the file that failed.
func (m *Migrator) MigrateUp(ctx context.Context) ([]string, error) {
	cfg, err := m.validate()
	if err != nil {
		return nil, err
	}
	logger := common.GetLogger().WithComponent("migrator").WithEnvironment(cfg.Environment)

	// Namespace creation failure is a warning, not a halt: the first
	// successful RecordApplied creates it anyway.
	if err := m.Ledger.Ensure(cfg.Environment); err != nil {
		logger.Warn("could not pre-create ledger namespace", "error", err)
	}

	applied, err := m.Ledger.ListApplied(cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	files, err := listMigrationFiles(cfg.MigrationsDir, cfg.ScriptSuffix)
	if err != nil {
		return nil, fmt.Errorf("list migration files: %w", err)
	}

	plan := pending(files, applied)
	if len(plan) == 0 {
		logger.Info("nothing to migrate")
		_, _ = fmt.Fprintln(m.out(), "nothing to migrate")
		return nil, nil
	}

	done := make([]string, 0, len(plan))
	for _, f := range plan {
		// The rollback pair is required before the migration runs: its
		// content becomes the ledger snapshot on success.
		rollbackPath := rollbackPathFor(cfg, f.name)
		rollbackContent, err := readScript(rollbackPath)
		if err != nil {
			return done, NewConfigError("rollback script missing for %s: %v", f.name, err)
		}
		script, err := readScript(f.path)
		if err != nil {
			return done, fmt.Errorf("read migration %s: %w", f.name, err)
		}

		if cfg.DryRun {
			logger.WithMigration(f.name).Info("dry-run: would apply")
			_, _ = fmt.Fprintf(m.out(), "would apply %s:\n%s\n", f.name, script)
			continue
		}

		if err := m.Executor.Apply(ctx, script); err != nil {
			return done, fmt.Errorf("migration %s failed: %w", f.name, err)
		}
		if err := m.Ledger.RecordApplied(cfg.Environment, f.name, rollbackContent); err != nil {
			return done, fmt.Errorf("record apply %s: %w", f.name, err)
		}
		logger.WithMigration(f.name).Info("migration applied")
		done = append(done, f.name)
	}
	return done, nil
}

// Plan reports the applied entry names (descending) and the pending filenames
// (ascending) without touching the database or the ledger.
func (m *Migrator) Plan() (applied, pendingNames []string, err error) {
	cfg, err := m.validate()
	if err != nil {
		return nil, nil, err
	}
	applied, err = m.Ledger.ListApplied(cfg.Environment)
	if err != nil {
		return nil, nil, fmt.Errorf("list applied migrations: %w", err)
	}
	files, err := listMigrationFiles(cfg.MigrationsDir, cfg.ScriptSuffix)
	if err != nil {
		return nil, nil, fmt.Errorf("list migration files: %w", err)
	}
	for _, f := range pending(files, applied) {
		pendingNames = append(pendingNames, f.name)
	}
	return applied, pendingNames, nil
}

// Rollback undoes exactly the most recently applied migration, executing the
// ledger's stored snapshot rather than whatever the rollback directory holds
// now. On success the entry is removed, making the migration pending again;
// on failure the entry stays so the recorded state matches reality. Returns
// the rolled-back name, or "" when the ledger was empty.
func (m *Migrator) Rollback(ctx context.Context) (string, error) {
	cfg, err := m.validate()
	if err != nil {
		return "", err
	}
	logger := common.GetLogger().WithComponent("rollback").WithEnvironment(cfg.Environment)

	applied, err := m.Ledger.ListApplied(cfg.Environment)
	if err != nil {
		return "", fmt.Errorf("list applied migrations: %w", err)
	}
	if len(applied) == 0 {
		logger.Info("nothing to rollback")
		_, _ = fmt.Fprintln(m.out(), "nothing to rollback")
		return "", nil
	}

	// ListApplied is descending, so the head is the newest entry.
	name := applied[0]
	content, err := m.Ledger.Content(cfg.Environment, name)
	if err != nil {
		return "", fmt.Errorf("read ledger entry %s: %w", name, err)
	}

	if cfg.DryRun {
		logger.WithMigration(name).Info("dry-run: would rollback")
		_, _ = fmt.Fprintf(m.out(), "would rollback %s:\n%s\n", name, content)
		return name, nil
	}

	if err := m.Executor.Apply(ctx, content); err != nil {
		return "", fmt.Errorf("rollback %s failed: %w", name, err)
	}
	if err := m.Ledger.RemoveApplied(cfg.Environment, name); err != nil {
		return "", fmt.Errorf("remove ledger entry %s: %w", name, err)
	}
	logger.WithMigration(name).Info("migration rolled back")
	return name, nil
}

func rollbackPathFor(cfg Config, name string) string {
	return filepath.Join(cfg.RollbackDir, name)
}

func readScript(path string) (string, error) {
	// #nosec G304 -- path comes from a controlled directory listing of migration files
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
