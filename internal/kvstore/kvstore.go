// Package kvstore implements the synchronous key-value persistence primitive
// used for the small structured collections. Each key maps to one JSON file;
// writes are whole-value overwrites followed by a bus publication.
package kvstore

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/hack-pad/hackpadfs"

	"github.com/hpungsan/profreach/internal/notify"
)

// Store reads and writes JSON values keyed by string. A nil FS means no
// persistence medium is available (e.g. before the base directory exists):
// reads return the fallback and writes only notify. Neither path errors,
// matching the expectation that this state is transient and survivable.
type Store struct {
	fs  hackpadfs.FS
	bus *notify.Bus
}

// New creates a store over fs, publishing changes on bus.
// fs may be nil for the storage-unavailable mode.
func New(fs hackpadfs.FS, bus *notify.Bus) *Store {
	return &Store{fs: fs, bus: bus}
}

// Available reports whether a persistence medium is attached.
func (s *Store) Available() bool {
	return s.fs != nil
}

// Filename maps a storage key to its backing filename. Keys must not contain
// dashes, or Key cannot recover them.
func Filename(key string) string {
	return strings.ReplaceAll(key, ":", "-") + ".json"
}

// Key is the inverse of Filename. Returns "" for names this store would not
// have written.
func Key(filename string) string {
	base, ok := strings.CutSuffix(filename, ".json")
	if !ok {
		return ""
	}
	return strings.ReplaceAll(base, "-", ":")
}

// Get decodes the value stored under key into out. On any failure (no FS,
// missing file, malformed JSON) out is left untouched and false is returned;
// callers pass a pre-populated fallback in out.
func Get(s *Store, key string, out any) bool {
	if s.fs == nil {
		return false
	}
	data, err := hackpadfs.ReadFile(s.fs, Filename(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false
	}
	return true
}

// Set encodes value as JSON, overwrites the key's file, and publishes the
// key. With no FS attached it publishes without persisting. A genuine write
// failure is returned and no notification is raised.
func Set(s *Store, key string, value any) error {
	if s.fs == nil {
		s.bus.Publish(key)
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := hackpadfs.WriteFullFile(s.fs, Filename(key), data, 0600); err != nil {
		return err
	}
	s.bus.Publish(key)
	return nil
}

// Delete removes the key's file and publishes the key. Missing files and a
// nil FS are not errors.
func Delete(s *Store, key string) error {
	if s.fs != nil {
		if err := hackpadfs.Remove(s.fs, Filename(key)); err != nil && !errors.Is(err, hackpadfs.ErrNotExist) {
			return err
		}
	}
	s.bus.Publish(key)
	return nil
}

// Has reports whether the key currently has a persisted value.
func Has(s *Store, key string) bool {
	if s.fs == nil {
		return false
	}
	_, err := hackpadfs.Stat(s.fs, Filename(key))
	return err == nil
}
