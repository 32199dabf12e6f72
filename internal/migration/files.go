package migration

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// TimestampLayout is the filename timestamp prefix. Lexicographic order on
// the resulting names is chronological order by construction.
const TimestampLayout = "2006_01_02_15_04_05"

var migrationFileRegex = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}_\d{2}_\d{2}_\d{2}_[a-z0-9_]+\.([a-z0-9]+)$`)

type mfile struct {
	name string
	path string
}

// IsMigrationName reports whether name follows the
// YYYY_MM_DD_HH_MM_SS_<slug>.<suffix> convention with the given suffix.
func IsMigrationName(name, suffix string) bool {
	m := migrationFileRegex.FindStringSubmatch(name)
	if len(m) == 0 {
		return false
	}
	return m[1] == suffix
}

// listMigrationFiles returns the migration scripts in dir sorted ascending by
// name. Files not matching the naming convention are ignored.
func listMigrationFiles(dir, suffix string) ([]mfile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []mfile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !IsMigrationName(name, suffix) {
			continue
		}
		files = append(files, mfile{name: name, path: filepath.Join(dir, name)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })
	return files, nil
}
