package migration

import (
	"fmt"
	"os"

	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/util"
)

// ConfigError marks a precondition failure detected before any side effect.
// The CLI maps it to its own configuration-error exit status.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string {
	return e.msg
}

// NewConfigError builds a ConfigError with a formatted message.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Config is the immutable input bundle for one controller invocation. The CLI
// constructs it once; the engine only reads it.
type Config struct {
	// Database is the target database name; required.
	Database string
	// MigrationsDir holds the forward scripts.
	MigrationsDir string
	// RollbackDir holds the paired inverse scripts, named identically.
	RollbackDir string
	// Environment namespaces the ledger; defaults to "production".
	Environment string
	// ScriptSuffix is the migration filename suffix without the dot;
	// defaults to "sql".
	ScriptSuffix string
	// DryRun previews pending work without touching the database or ledger.
	DryRun bool
}

// Normalized returns a copy with whitespace trimmed and defaults filled in.
func (c Config) Normalized() Config {
	c.Database = util.TrimWithDefault(c.Database, "")
	c.MigrationsDir = util.TrimWithDefault(c.MigrationsDir, "")
	c.RollbackDir = util.TrimWithDefault(c.RollbackDir, "")
	c.Environment = util.TrimAndLower(util.TrimWithDefault(c.Environment, constants.DefaultEnvironment))
	c.ScriptSuffix = util.TrimAndLower(util.TrimWithDefault(c.ScriptSuffix, constants.DefaultScriptSuffix))
	return c
}

// Validate checks completeness: the database name must be set and both script
// directories must exist. Runs before any side effect.
func (c Config) Validate() error {
	if _, ok := util.TrimEmptyCheck(c.Database); !ok {
		return NewConfigError("database name is required")
	}
	for _, d := range []struct {
		label string
		path  string
	}{
		{"migrations directory", c.MigrationsDir},
		{"rollback directory", c.RollbackDir},
	} {
		path, ok := util.TrimEmptyCheck(d.path)
		if !ok {
			return NewConfigError("%s is required", d.label)
		}
		info, err := os.Stat(path)
		if err != nil {
			return NewConfigError("%s does not exist: %s", d.label, path)
		}
		if !info.IsDir() {
			return NewConfigError("%s is not a directory: %s", d.label, path)
		}
	}
	return nil
}
