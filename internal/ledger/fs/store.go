// Package fs implements the default ledger backend: a directory tree where an
// entry is a file named after the migration, containing the rollback snapshot.
// Layout: <root>/<environment>/<migration filename>.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/astasoft/shgrate/internal/common"
	"github.com/astasoft/shgrate/internal/ledger"
)

func init() {
	ledger.Register(ledger.DriverFs, func(config map[string]interface{}, _ string) (ledger.Store, error) {
		s := NewStore()
		if err := s.Load(config); err != nil {
			return nil, err
		}
		if s.Root == "" {
			return nil, fmt.Errorf("fs ledger: root directory not configured")
		}
		return s, nil
	})
}

type Store struct {
	Root string
}

// NewStore creates a new filesystem ledger store
func NewStore() *Store {
	return &Store{}
}

// Load loads configuration into the filesystem store
func (s *Store) Load(config map[string]interface{}) error {
	if root, ok := config["root"].(string); ok && root != "" {
		s.Root = root
	}
	return nil
}

func (s *Store) envDir(environment string) string {
	return filepath.Join(s.Root, environment)
}

// Ensure creates the per-environment directory if it does not exist yet.
func (s *Store) Ensure(environment string) error {
	dir := s.envDir(environment)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create ledger namespace %s: %w", dir, err)
	}
	return nil
}

// ListApplied returns entry names sorted descending; a missing namespace
// directory yields an empty list, not an error. Dot-prefixed files are
// skipped: an interrupted RecordApplied leaves only a hidden temp file
// behind, which must never surface as an applied entry.
func (s *Store) ListApplied(environment string) ([]string, error) {
	entries, err := os.ReadDir(s.envDir(environment))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// IsApplied reports whether an entry file exists for name.
func (s *Store) IsApplied(environment, name string) (bool, error) {
	info, err := os.Stat(filepath.Join(s.envDir(environment), name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// RecordApplied writes the rollback snapshot as a whole file. The write goes
// through a temp file and rename so a crash mid-write cannot leave a corrupt
// entry behind.
func (s *Store) RecordApplied(environment, name, content string) error {
	logger := common.GetLogger().WithDriver("fs").WithEnvironment(environment).WithMigration(name)

	dir := s.envDir(environment)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create ledger namespace %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp*")
	if err != nil {
		return fmt.Errorf("record ledger entry %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("record ledger entry %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("record ledger entry %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("record ledger entry %s: %w", name, err)
	}

	logger.Debug("ledger entry recorded")
	return nil
}

// Content returns the stored rollback snapshot for name.
func (s *Store) Content(environment, name string) (string, error) {
	p := filepath.Join(s.envDir(environment), name)
	// #nosec G304 -- path is derived from the configured ledger root and a listed entry name
	b, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read ledger entry %s: %w", name, err)
	}
	return string(b), nil
}

// RemoveApplied deletes the entry file for name.
func (s *Store) RemoveApplied(environment, name string) error {
	if err := os.Remove(filepath.Join(s.envDir(environment), name)); err != nil {
		return fmt.Errorf("remove ledger entry %s: %w", name, err)
	}
	return nil
}

// Close is a no-op for the filesystem backend.
func (s *Store) Close() error {
	return nil
}
