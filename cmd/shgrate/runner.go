package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/astasoft/shgrate"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/spf13/viper"
)

// runOptions carries the per-invocation CLI inputs that override the config
// document: flags and SHGRATE_* environment variables resolved through viper,
// plus the command's own dry-run flag.
type runOptions struct {
	configPath  string
	environment string
	database    string
	logFile     string
	dryRun      bool
}

// optionsFromViper resolves the shared CLI inputs. dryRun comes from the
// invoking command's flag set: migrate and rollback each define their own
// dry-run flag, so it cannot live under a single viper key.
func optionsFromViper(dryRun bool) runOptions {
	v := viper.GetViper()
	return runOptions{
		configPath:  v.GetString("config"),
		environment: v.GetString("environment"),
		database:    v.GetString("database"),
		logFile:     v.GetString("log_file"),
		dryRun:      dryRun,
	}
}

// runContext bundles everything one command invocation needs: the parsed
// config document, the opened ledger, and the script executor.
type runContext struct {
	doc       ConfigDoc
	migrator  *shgrate.Migrator
	closeExec func() error
}

// newRunContext loads the config file, configures logging, optionally waits
// for the database endpoint, and wires up a ready-to-run Migrator. Flag
// overrides in opts win over the config document.
func newRunContext(ctx context.Context, opts runOptions) (*runContext, error) {
	rc := &runContext{}
	if strings.TrimSpace(opts.configPath) != "" {
		if err := rc.doc.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(opts.logFile) != "" {
		rc.doc.Logging.File = opts.logFile
	}
	if err := rc.doc.SetupLogging(); err != nil {
		return nil, err
	}
	if err := doWait(ctx, rc.doc.Wait); err != nil {
		return nil, err
	}

	cfg := shgrate.Config{
		Database:      rc.doc.Database.Name,
		MigrationsDir: dirOrDefault(rc.doc.MigrationsDir, constants.DefaultMigrationsDir),
		RollbackDir:   dirOrDefault(rc.doc.RollbackDir, constants.DefaultRollbackDir),
		Environment:   rc.doc.Environment,
		ScriptSuffix:  rc.doc.ScriptSuffix,
		DryRun:        opts.dryRun,
	}
	if strings.TrimSpace(opts.environment) != "" {
		cfg.Environment = opts.environment
	}
	if strings.TrimSpace(opts.database) != "" {
		cfg.Database = opts.database
		rc.doc.Database.Name = opts.database
	}

	led, err := shgrate.OpenLedger(rc.doc.ToLedgerConfig())
	if err != nil {
		return nil, err
	}
	exec, closeExec, err := rc.doc.ToExecutor()
	if err != nil {
		_ = led.Close()
		return nil, err
	}
	rc.closeExec = closeExec
	rc.migrator = &shgrate.Migrator{Config: cfg, Ledger: led, Executor: exec}
	return rc, nil
}

func (rc *runContext) Close() {
	if rc.migrator != nil && rc.migrator.Ledger != nil {
		_ = rc.migrator.Ledger.Close()
	}
	if rc.closeExec != nil {
		_ = rc.closeExec()
	}
}

// dirOrDefault resolves a script directory to an absolute path, falling back
// to the default when unset. Normalizing avoids working-directory surprises.
func dirOrDefault(dir, def string) string {
	d := strings.TrimSpace(dir)
	if d == "" {
		d = def
	}
	if abs, err := filepath.Abs(d); err == nil {
		d = abs
	}
	return d
}
