// Package seen persists the set of listing identifiers that have already
// been reported. The set only ever grows; a listing whose id is recorded
// here is never notified again, even across restarts.
package seen

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Set holds listing identifiers.
type Set map[string]struct{}

// NewSet builds a Set from ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Contains reports whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// IDs returns the ids in sorted order, for stable serialization.
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store reads and writes the identifier set as a JSON array in a single
// file. The file is the only durable state in the system.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path: path,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		s.log = l
	}
}

// Load reads the identifier set. A missing or unreadable file yields an
// empty set: the worst outcome of losing state is re-notifying old
// listings once, which beats refusing to start.
func (s *Store) Load() Set {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("could not read state file, starting fresh", "path", s.path, "error", err)
		}
		return Set{}
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.log.Warn("could not parse state file, starting fresh", "path", s.path, "error", err)
		return Set{}
	}

	s.log.Debug("loaded seen listings", "path", s.path, "count", len(ids))
	return NewSet(ids...)
}

// Save atomically replaces the state file with the given set. Either the
// full updated set becomes visible or the prior file is left intact.
func (s *Store) Save(set Set) error {
	data, err := json.MarshalIndent(set.IDs(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seen listings: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}

	if err := writeAndClose(tmp, data); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing state file: %w", err)
	}

	s.log.Debug("saved seen listings", "path", s.path, "count", len(set))
	return nil
}

func writeAndClose(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
