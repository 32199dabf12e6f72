package status

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/astasoft/shgrate/internal/ledger/fs"
	"github.com/astasoft/shgrate/internal/migration"
)

type noopExecutor struct{}

func (noopExecutor) Apply(context.Context, string) error { return nil }

func newMigrator(t *testing.T) (*migration.Migrator, string) {
	t.Helper()
	base := t.TempDir()
	migrationsDir := filepath.Join(base, "migrations")
	rollbackDir := filepath.Join(base, "rollback")
	for _, d := range []string{migrationsDir, rollbackDir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	m := &migration.Migrator{
		Config: migration.Config{
			Database:      "appdb",
			MigrationsDir: migrationsDir,
			RollbackDir:   rollbackDir,
		},
		Ledger:   &fs.Store{Root: filepath.Join(base, "migrated")},
		Executor: noopExecutor{},
	}
	return m, migrationsDir
}

func TestFromMigrator(t *testing.T) {
	m, migrationsDir := newMigrator(t)

	applied := "2024_01_01_00_00_00_a.sql"
	pending := "2024_02_01_00_00_00_b.sql"
	for _, n := range []string{applied, pending} {
		if err := os.WriteFile(filepath.Join(migrationsDir, n), []byte("--"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := m.Ledger.RecordApplied("production", applied, "-- undo"); err != nil {
		t.Fatalf("RecordApplied: %v", err)
	}

	info, err := FromMigrator(m)
	if err != nil {
		t.Fatalf("FromMigrator: %v", err)
	}
	if info.Environment != "production" {
		t.Fatalf("unexpected environment: %s", info.Environment)
	}
	if len(info.Applied) != 1 || info.Applied[0] != applied {
		t.Fatalf("unexpected applied: %v", info.Applied)
	}
	if len(info.Pending) != 1 || info.Pending[0] != pending {
		t.Fatalf("unexpected pending: %v", info.Pending)
	}
	if info.Latest() != applied {
		t.Fatalf("unexpected latest: %s", info.Latest())
	}
}

func TestFormatHuman(t *testing.T) {
	info := Info{
		Environment: "staging",
		Applied:     []string{"2024_01_01_00_00_00_a.sql"},
		Pending:     []string{"2024_02_01_00_00_00_b.sql"},
	}
	out := info.FormatHuman()
	for _, must := range []string{
		"environment: staging",
		"latest: 2024_01_01_00_00_00_a.sql",
		"applied: 1",
		"pending: 1",
		"2024_02_01_00_00_00_b.sql",
	} {
		if !strings.Contains(out, must) {
			t.Fatalf("output missing %q:\n%s", must, out)
		}
	}
}

func TestFormatHuman_Empty(t *testing.T) {
	out := Info{Environment: "production"}.FormatHuman()
	if !strings.Contains(out, "latest: (none)") {
		t.Fatalf("expected none marker:\n%s", out)
	}
}
