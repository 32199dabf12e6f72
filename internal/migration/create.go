package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/util"
)

// CreateOptions configures scaffolding of a new migration/rollback pair.
type CreateOptions struct {
	// Name is the free-form migration name; it is slugified into the filename.
	Name          string
	MigrationsDir string
	RollbackDir   string
	// Suffix defaults to "sql".
	Suffix string
	// Now overrides the generation timestamp (used by tests).
	Now time.Time
}

// CreatedPair holds the paths of a scaffolded migration and its rollback.
type CreatedPair struct {
	Migration string
	Rollback  string
}

// CreateMigration writes a timestamped migration script and its equally named
// rollback script, each holding the generated header and a placeholder line.
// Both files must not exist yet; the pair shares one filename by construction.
func CreateMigration(opts CreateOptions) (CreatedPair, error) {
	slug := util.Slugify(opts.Name)
	if slug == "" {
		return CreatedPair{}, fmt.Errorf("migration name is required")
	}
	migrationsDir, ok := util.TrimEmptyCheck(opts.MigrationsDir)
	if !ok {
		return CreatedPair{}, fmt.Errorf("migrations directory is required")
	}
	rollbackDir, ok := util.TrimEmptyCheck(opts.RollbackDir)
	if !ok {
		return CreatedPair{}, fmt.Errorf("rollback directory is required")
	}
	suffix := util.TrimAndLower(util.TrimWithDefault(opts.Suffix, constants.DefaultScriptSuffix))

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	name := fmt.Sprintf("%s_%s.%s", now.Format(TimestampLayout), slug, suffix)

	pair := CreatedPair{
		Migration: filepath.Join(migrationsDir, name),
		Rollback:  filepath.Join(rollbackDir, name),
	}

	if err := writeScaffold(pair.Migration, name, now, "write your migration statements below"); err != nil {
		return CreatedPair{}, err
	}
	if err := writeScaffold(pair.Rollback, name, now, "write your rollback statements below"); err != nil {
		// Do not leave a half-created pair behind.
		_ = os.Remove(pair.Migration)
		return CreatedPair{}, err
	}
	return pair, nil
}

func writeScaffold(path, name string, now time.Time, placeholder string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", name, err)
	}
	content := fmt.Sprintf("-- %s v%s\n-- name: %s\n-- generated: %s\n\n-- %s\n",
		constants.ToolName, constants.ToolVersion, name, now.Format(time.RFC1123Z), placeholder)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304 -- path built from operator-configured directories
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
