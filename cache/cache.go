// Package cache persists fetched third-party payloads as JSON files grouped
// by calendar day: one file per external id plus one listing file per day.
// Presence of a file is treated as permanently valid for that day — there is
// no invalidation; a new date simply opens a new namespace.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// Store is a read-through/write-through JSON cache rooted at a directory.
type Store struct {
	root string
}

// NewStore creates (if needed) and returns a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cache: create root: %w", err)
	}
	return &Store{root: dir}, nil
}

// DayKey renders the directory name for a calendar day.
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// Load reads the cached value for (day, key) into v. The second return is
// false when no cache entry exists. A corrupt entry is an error: the file was
// written whole, so a decode failure means something external happened to it.
func (s *Store) Load(day, key string, v any) (bool, error) {
	raw, err := os.ReadFile(s.path(day, key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read %s/%s: %w", day, key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("cache: decode %s/%s: %w", day, key, err)
	}
	return true, nil
}

// Save writes v as the cache entry for (day, key). Files are written whole,
// never partially updated.
func (s *Store) Save(day, key string, v any) error {
	dir := filepath.Join(s.root, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create day dir: %w", err)
	}
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: encode %s/%s: %w", day, key, err)
	}
	if err := os.WriteFile(s.path(day, key), raw, 0o644); err != nil {
		return fmt.Errorf("cache: write %s/%s: %w", day, key, err)
	}
	return nil
}

func (s *Store) path(day, key string) string {
	return filepath.Join(s.root, day, key+".json")
}
