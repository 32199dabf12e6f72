package ledger

import (
	"fmt"

	"github.com/astasoft/shgrate/internal/util"
	"github.com/go-viper/mapstructure/v2"
)

// Supported ledger driver names.
const (
	DriverFs         = "fs"
	DriverSqlite     = "sqlite"
	DriverPostgresql = "postgresql"
)

// Store persists which migrations have been applied, namespaced by environment.
// An entry's content is the rollback script snapshot taken when the migration
// was applied; rollback executes that snapshot, never the live rollback file.
//
// Invariant: an entry exists for (environment, name) if and only if the
// migration has been applied in that environment and not yet rolled back.
type Store interface {
	// Ensure prepares the per-environment namespace. Callers treat a failure
	// here as a warning, not a fatal error.
	Ensure(environment string) error
	// ListApplied returns applied entry names sorted lexicographically
	// descending, so the first element is the most recently applied.
	ListApplied(environment string) ([]string, error)
	IsApplied(environment, name string) (bool, error)
	// RecordApplied stores content (the rollback snapshot) under name.
	// Recording the same name twice must not duplicate the entry.
	RecordApplied(environment, name, content string) error
	// Content returns the stored rollback snapshot for name.
	Content(environment, name string) (string, error)
	RemoveApplied(environment, name string) error
	Close() error
}

// DriverConfig carries driver-specific settings as a loose map so the ledger
// registry can decode it without the CLI knowing each backend's fields.
type DriverConfig interface {
	ToMap() map[string]interface{}
}

// Config selects and configures a ledger backend.
type Config struct {
	Driver       string
	DriverConfig DriverConfig
	// TableName customizes the table used by SQL-backed drivers.
	TableName string
}

// Factory constructs a Store from a loose driver-config map. Registered per
// driver name by the backend packages via Register.
type Factory func(config map[string]interface{}, tableName string) (Store, error)

var registry = map[string]Factory{}

// Register makes a ledger driver available under the given name.
func Register(driver string, f Factory) {
	registry[driver] = f
}

// Open constructs and initializes the configured backend. An empty driver
// defaults to the filesystem ledger.
func (c *Config) Open() (Store, error) {
	driver := util.TrimWithDefault(util.TrimAndLower(c.Driver), DriverFs)
	f, ok := registry[driver]
	if !ok {
		return nil, fmt.Errorf("unknown ledger driver: %s", driver)
	}
	cfg := map[string]interface{}{}
	if c.DriverConfig != nil {
		cfg = c.DriverConfig.ToMap()
	}
	return f(cfg, c.TableName)
}

// DecodeDriverConfig decodes a loose config map (e.g. from a YAML document)
// into the typed config for the given driver.
func DecodeDriverConfig(driver string, raw map[string]interface{}, out interface{}) error {
	if err := mapstructure.Decode(raw, out); err != nil {
		return fmt.Errorf("ledger driver %s: invalid config: %w", driver, err)
	}
	return nil
}
