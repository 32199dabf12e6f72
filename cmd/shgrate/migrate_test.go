package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "modernc.org/sqlite"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

// cliFixture lays out migrations/, rollback/ and a config file pointing the
// executor at a throwaway sqlite database and the ledger at a local directory.
type cliFixture struct {
	dir        string
	dbPath     string
	ledgerRoot string
	configPath string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	tdir := t.TempDir()
	mdir := filepath.Join(tdir, "migrations")
	rdir := filepath.Join(tdir, "rollback")
	for _, d := range []string{mdir, rdir} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	f := &cliFixture{
		dir:        tdir,
		dbPath:     filepath.Join(tdir, "app.db"),
		ledgerRoot: filepath.Join(tdir, "migrated"),
	}
	cfg := fmt.Sprintf(`---
database:
  name: appdb
client:
  driver: sqlite
  dsn: file:%s
migrations_dir: %s
rollback_dir: %s
ledger:
  fs:
    root: %s
`, f.dbPath, mdir, rdir, f.ledgerRoot)
	f.configPath = writeFile(t, tdir, "shgrate.yaml", cfg)
	return f
}

func (f *cliFixture) addPair(t *testing.T, name, up, down string) {
	t.Helper()
	writeFile(t, filepath.Join(f.dir, "migrations"), name, up)
	writeFile(t, filepath.Join(f.dir, "rollback"), name, down)
}

func (f *cliFixture) openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+f.dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func (f *cliFixture) tableCount(t *testing.T, table string) int {
	t.Helper()
	db := f.openDB(t)
	row := db.QueryRow("SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name=?", table)
	var n int
	if err := row.Scan(&n); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return n
}

func setCLIInputs(t *testing.T, configPath string) {
	t.Helper()
	v := viper.GetViper()
	v.Set("config", configPath)
	v.Set("environment", "")
	t.Cleanup(func() {
		v.Set("config", "")
		v.Set("environment", "")
	})
}

// setDryRunFlag flips a command's own dry-run flag; it is not viper-backed.
func setDryRunFlag(t *testing.T, cmd *cobra.Command) {
	t.Helper()
	if err := cmd.Flags().Set("dry-run", "true"); err != nil {
		t.Fatalf("set dry-run: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Flags().Set("dry-run", "false") })
}

func TestCLI_Migrate_AppliesAndRecordsSnapshot(t *testing.T) {
	f := newCLIFixture(t)
	name := "2024_01_02_03_04_05_create_users.sql"
	f.addPair(t, name, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	setCLIInputs(t, f.configPath)

	if err := migrateCmd.RunE(migrateCmd, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if got := f.tableCount(t, "users"); got != 1 {
		t.Fatalf("expected users table after migrate, count=%d", got)
	}
	b, err := os.ReadFile(filepath.Join(f.ledgerRoot, "production", name))
	if err != nil {
		t.Fatalf("ledger entry missing: %v", err)
	}
	if string(b) != "DROP TABLE users;" {
		t.Fatalf("ledger entry should hold the rollback snapshot, got %q", string(b))
	}
}

func TestCLI_Migrate_DryRun_NoMutations(t *testing.T) {
	f := newCLIFixture(t)
	name := "2024_01_02_03_04_05_create_users.sql"
	f.addPair(t, name, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	setCLIInputs(t, f.configPath)
	setDryRunFlag(t, migrateCmd)

	if err := migrateCmd.RunE(migrateCmd, nil); err != nil {
		t.Fatalf("migrate dry-run: %v", err)
	}
	if got := f.tableCount(t, "users"); got != 0 {
		t.Fatalf("dry-run must not execute scripts, users count=%d", got)
	}
	if _, err := os.Stat(filepath.Join(f.ledgerRoot, "production", name)); !os.IsNotExist(err) {
		t.Fatalf("dry-run must not record ledger entries, stat err=%v", err)
	}
}

// Drives the full cobra flag parse, not RunE directly: --dry-run must reach
// the migrator even though both migrate and rollback define the flag.
func TestCLI_Migrate_DryRunFlagParsed_NoMutations(t *testing.T) {
	f := newCLIFixture(t)
	name := "2024_01_02_03_04_05_create_users.sql"
	f.addPair(t, name, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	setCLIInputs(t, f.configPath)

	rootCmd.SetArgs([]string{"migrate", "--dry-run"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = migrateCmd.Flags().Set("dry-run", "false")
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("migrate --dry-run: %v", err)
	}

	if got := f.tableCount(t, "users"); got != 0 {
		t.Fatalf("--dry-run must not execute scripts, users count=%d", got)
	}
	entries, err := os.ReadDir(filepath.Join(f.ledgerRoot, "production"))
	if err == nil && len(entries) > 0 {
		t.Fatalf("--dry-run must not record ledger entries, found %d", len(entries))
	}
}

func TestCLI_Rollback_DryRunFlagParsed_KeepsEntry(t *testing.T) {
	f := newCLIFixture(t)
	name := "2024_01_02_03_04_05_create_users.sql"
	f.addPair(t, name, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	setCLIInputs(t, f.configPath)

	if err := migrateCmd.RunE(migrateCmd, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rootCmd.SetArgs([]string{"rollback", "--dry-run"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		_ = rollbackCmd.Flags().Set("dry-run", "false")
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("rollback --dry-run: %v", err)
	}

	if got := f.tableCount(t, "users"); got != 1 {
		t.Fatalf("--dry-run rollback must not execute the snapshot, users count=%d", got)
	}
	if _, err := os.Stat(filepath.Join(f.ledgerRoot, "production", name)); err != nil {
		t.Fatalf("--dry-run rollback must keep the ledger entry: %v", err)
	}
}

func TestCLI_Rollback_RemovesNewestEntry(t *testing.T) {
	f := newCLIFixture(t)
	older := "2024_01_02_03_04_05_create_users.sql"
	newer := "2024_06_07_08_09_10_create_orders.sql"
	f.addPair(t, older, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	f.addPair(t, newer, "CREATE TABLE orders (id INTEGER);", "DROP TABLE orders;")
	setCLIInputs(t, f.configPath)

	if err := migrateCmd.RunE(migrateCmd, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := rollbackCmd.RunE(rollbackCmd, nil); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if got := f.tableCount(t, "orders"); got != 0 {
		t.Fatalf("rollback should have dropped orders, count=%d", got)
	}
	if got := f.tableCount(t, "users"); got != 1 {
		t.Fatalf("rollback must only undo the newest migration, users count=%d", got)
	}
	if _, err := os.Stat(filepath.Join(f.ledgerRoot, "production", newer)); !os.IsNotExist(err) {
		t.Fatalf("rolled-back entry should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(f.ledgerRoot, "production", older)); err != nil {
		t.Fatalf("older entry should remain: %v", err)
	}
}

func TestCLI_Status_ReportsAppliedAndPending(t *testing.T) {
	f := newCLIFixture(t)
	applied := "2024_01_02_03_04_05_create_users.sql"
	pending := "2024_06_07_08_09_10_create_orders.sql"
	f.addPair(t, applied, "CREATE TABLE users (id INTEGER);", "DROP TABLE users;")
	setCLIInputs(t, f.configPath)

	if err := migrateCmd.RunE(migrateCmd, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	f.addPair(t, pending, "CREATE TABLE orders (id INTEGER);", "DROP TABLE orders;")

	if err := statusCmd.RunE(statusCmd, nil); err != nil {
		t.Fatalf("status: %v", err)
	}
}
