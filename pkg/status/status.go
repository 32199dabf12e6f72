// Package status aggregates migration state for display: which migrations the
// ledger records as applied in an environment and which source files are
// still pending.
package status

import (
	"fmt"

	"github.com/astasoft/shgrate/internal/migration"
)

// Info aggregates status information for one environment.
type Info struct {
	Environment string
	// Applied is sorted descending: the newest entry first.
	Applied []string
	// Pending is sorted ascending: the next migration to run first.
	Pending []string
}

// Latest returns the most recently applied migration name, or "" when the
// ledger is empty.
func (i Info) Latest() string {
	if len(i.Applied) == 0 {
		return ""
	}
	return i.Applied[0]
}

// FromMigrator collects status using the migrator's configuration, ledger and
// source directory. It performs no database contact and no ledger mutation.
func FromMigrator(m *migration.Migrator) (Info, error) {
	applied, pending, err := m.Plan()
	if err != nil {
		return Info{}, err
	}
	env := m.Config.Normalized().Environment
	return Info{Environment: env, Applied: applied, Pending: pending}, nil
}

// FormatHuman returns a human-friendly multiline string for CLI output.
func (i Info) FormatHuman() string {
	out := fmt.Sprintf("environment: %s\n", i.Environment)
	if latest := i.Latest(); latest != "" {
		out += fmt.Sprintf("latest: %s\n", latest)
	} else {
		out += "latest: (none)\n"
	}
	out += fmt.Sprintf("applied: %d\n", len(i.Applied))
	for _, name := range i.Applied {
		out += fmt.Sprintf("  %s\n", name)
	}
	out += fmt.Sprintf("pending: %d\n", len(i.Pending))
	for _, name := range i.Pending {
		out += fmt.Sprintf("  %s\n", name)
	}
	return out
}
