package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/astasoft/shgrate"
	"github.com/astasoft/shgrate/internal/constants"
	"github.com/astasoft/shgrate/internal/util"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
}

// ClientConfig selects how scripts reach the database: shell out to a client
// binary (default) or run through a native driver when driver/dsn are set.
type ClientConfig struct {
	Binary            string `mapstructure:"binary" yaml:"binary"`
	DefaultsFile      string `mapstructure:"defaults_file" yaml:"defaults_file"`
	StrictCredentials bool   `mapstructure:"strict_credentials" yaml:"strict_credentials"`
	Driver            string `mapstructure:"driver" yaml:"driver"`
	DSN               string `mapstructure:"dsn" yaml:"dsn"`
}

type FsLedgerConfig struct {
	Root string `mapstructure:"root" yaml:"root"`
}

type LedgerConfig struct {
	Driver     string                         `mapstructure:"driver" yaml:"driver"`
	TableName  string                         `mapstructure:"table_name" yaml:"table_name"`
	Fs         FsLedgerConfig                 `mapstructure:"fs" yaml:"fs"`
	Sqlite     shgrate.SqliteLedgerConfig     `mapstructure:"sqlite" yaml:"sqlite"`
	Postgresql shgrate.PostgresqlLedgerConfig `mapstructure:"postgresql" yaml:"postgresql"`
}

type WaitConfig struct {
	URL           string `mapstructure:"url" yaml:"url"`
	Method        string `mapstructure:"method" yaml:"method"`
	Status        int    `mapstructure:"status" yaml:"status"`
	Timeout       string `mapstructure:"timeout" yaml:"timeout"`
	Interval      string `mapstructure:"interval" yaml:"interval"`
	Insecure      bool   `mapstructure:"insecure" yaml:"insecure"`
	MinTLSVersion string `mapstructure:"min_tls_version" yaml:"min_tls_version"`
	MaxTLSVersion string `mapstructure:"max_tls_version" yaml:"max_tls_version"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // error, warn, info, debug
	Format string `mapstructure:"format" yaml:"format"` // text, json
	// File, when set, receives log output (appended) instead of stderr.
	File string `mapstructure:"file" yaml:"file"`
}

type ConfigDoc struct {
	Database      DatabaseConfig `mapstructure:"database" yaml:"database"`
	Client        ClientConfig   `mapstructure:"client" yaml:"client"`
	MigrationsDir string         `mapstructure:"migrations_dir" yaml:"migrations_dir"`
	RollbackDir   string         `mapstructure:"rollback_dir" yaml:"rollback_dir"`
	Environment   string         `mapstructure:"environment" yaml:"environment"`
	ScriptSuffix  string         `mapstructure:"script_suffix" yaml:"script_suffix"`
	Ledger        LedgerConfig   `mapstructure:"ledger" yaml:"ledger"`
	Wait          WaitConfig     `mapstructure:"wait" yaml:"wait"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
}

func (c *ConfigDoc) Load(path string) error {
	clean := filepath.Clean(path)
	// Ensure path points to a regular file to avoid opening directories/special files
	if info, statErr := os.Stat(clean); statErr != nil || !info.Mode().IsRegular() {
		if statErr != nil {
			return statErr
		}
		return fmt.Errorf("not a regular file: %s", clean)
	}
	// #nosec G304 -- config path is provided intentionally by the user/CI; cleaned and validated above
	f, err := os.Open(clean)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	dec := yaml.NewDecoder(f)
	return dec.Decode(c)
}

// ToLedgerConfig maps the ledger section onto the library's driver selection.
// The filesystem ledger is the default when no driver is named.
func (c *ConfigDoc) ToLedgerConfig() *shgrate.LedgerConfig {
	lc := &shgrate.LedgerConfig{TableName: c.Ledger.TableName}
	switch util.TrimAndLower(c.Ledger.Driver) {
	case shgrate.LedgerDriverSqlite:
		lc.Driver = shgrate.LedgerDriverSqlite
		cfg := c.Ledger.Sqlite
		lc.DriverConfig = &cfg
	case shgrate.LedgerDriverPostgresql:
		lc.Driver = shgrate.LedgerDriverPostgresql
		cfg := c.Ledger.Postgresql
		lc.DriverConfig = &cfg
	default:
		lc.Driver = shgrate.LedgerDriverFs
		root := util.TrimWithDefault(c.Ledger.Fs.Root, constants.DefaultLedgerRoot)
		lc.DriverConfig = &shgrate.FsLedgerConfig{Root: root}
	}
	return lc
}

// ToExecutor builds the script executor for the client section. Native driver
// executors hold a connection; callers close them via the returned closer.
func (c *ConfigDoc) ToExecutor() (shgrate.Executor, func() error, error) {
	driver, hasDriver := util.TrimEmptyCheck(c.Client.Driver)
	if !hasDriver {
		ex := &shgrate.ClientExecutor{
			Binary:            c.Client.Binary,
			Database:          c.Database.Name,
			CredentialsFile:   c.Client.DefaultsFile,
			StrictCredentials: c.Client.StrictCredentials,
		}
		return ex, func() error { return nil }, nil
	}
	dsn, hasDSN := util.TrimEmptyCheck(c.Client.DSN)
	if !hasDSN {
		return nil, nil, fmt.Errorf("client: driver %q requires a dsn", driver)
	}
	ex, err := shgrate.OpenSQLExecutor(util.TrimAndLower(driver), dsn)
	if err != nil {
		return nil, nil, err
	}
	return ex, ex.Close, nil
}

func (c *ConfigDoc) parseLogLevel() (shgrate.LogLevel, error) {
	level := util.TrimAndLower(c.Logging.Level)
	switch level {
	case "error":
		return shgrate.LogLevelError, nil
	case "warn", "warning":
		return shgrate.LogLevelWarn, nil
	case "info", "":
		return shgrate.LogLevelInfo, nil
	case "debug":
		return shgrate.LogLevelDebug, nil
	default:
		return shgrate.LogLevelInfo, fmt.Errorf("invalid logging level: %s (valid: error, warn, info, debug)", c.Logging.Level)
	}
}

// SetupLogging configures the global logger based on config settings
func (c *ConfigDoc) SetupLogging() error {
	level, err := c.parseLogLevel()
	if err != nil {
		return err
	}

	format := util.TrimAndLower(c.Logging.Format)
	switch format {
	case "json", "text", "":
	default:
		return fmt.Errorf("invalid logging format: %s (valid: text, json)", c.Logging.Format)
	}

	// Destination: stderr by default, an append-only file when configured.
	// The file stays open for the process lifetime.
	var w io.Writer = os.Stderr
	if file, ok := util.TrimEmptyCheck(c.Logging.File); ok {
		// #nosec G304 -- log file path is operator-configured
		f, err := os.OpenFile(filepath.Clean(file), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	}

	var logger *shgrate.Logger
	if format == "json" {
		logger = shgrate.NewJSONLoggerWithWriter(level, w)
	} else {
		logger = shgrate.NewLoggerWithWriter(level, w)
	}

	shgrate.SetDefaultLogger(logger)

	logger.Debug("logging configured",
		"level", util.TrimWithDefault(util.TrimAndLower(c.Logging.Level), "info"),
		"format", util.TrimWithDefault(format, "text"))
	return nil
}
