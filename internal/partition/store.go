// Package partition manages the local on-disk hourly partition files.
package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/newthinker/ampsync/internal/core"
	"go.uber.org/zap"
)

// Ext is the partition file extension, including the dot.
const Ext = ".jsonl"

// Store owns the local partition directory. One file per hour,
// named <key>.jsonl, append-only.
type Store struct {
	dir string
	log *zap.Logger
}

// New creates a partition store rooted at dir. The directory is created
// lazily on first append.
func New(dir string, log *zap.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Path returns the partition file path for an hour key.
func (s *Store) Path(hourKey string) string {
	return filepath.Join(s.dir, hourKey+Ext)
}

// List returns the set of hour keys with a partition file on disk.
// A missing data directory means an empty set, not an error.
func (s *Store) List() (map[string]struct{}, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, core.WrapError(core.ErrStore, fmt.Errorf("listing %s: %w", s.dir, err))
	}

	keys := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		keys[strings.TrimSuffix(e.Name(), Ext)] = struct{}{}
	}
	s.log.Info("listed local partitions", zap.Int("count", len(keys)), zap.String("dir", s.dir))
	return keys, nil
}

// Append writes content to the end of the hour's partition file, creating
// it if absent. Overlapping archive members for the same hour concatenate;
// the store never overwrites and never deduplicates lines.
func (s *Store) Append(hourKey string, content []byte) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("creating %s: %w", s.dir, err))
	}

	f, err := os.OpenFile(s.Path(hourKey), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("opening partition %s: %w", hourKey, err))
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return core.WrapError(core.ErrStore, fmt.Errorf("appending to partition %s: %w", hourKey, err))
	}
	return nil
}

// Delete removes the partition files for the given keys. Missing files are
// tolerated; delete is idempotent.
func (s *Store) Delete(hourKeys map[string]struct{}) error {
	deleted := 0
	for key := range hourKeys {
		err := os.Remove(s.Path(key))
		if os.IsNotExist(err) {
			s.log.Info("partition already gone", zap.String("key", key))
			continue
		}
		if err != nil {
			return core.WrapError(core.ErrStore, fmt.Errorf("deleting partition %s: %w", key, err))
		}
		deleted++
	}
	s.log.Info("deleted local partitions", zap.Int("count", deleted))
	return nil
}

// DeleteAll removes every partition file currently on disk.
func (s *Store) DeleteAll() error {
	keys, err := s.List()
	if err != nil {
		return err
	}
	return s.Delete(keys)
}
