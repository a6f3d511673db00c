// Package metacache persists resolved metadata records keyed by normalized
// folder title, so repeat runs never hit the network for known series.
package metacache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/comicmeta/cmi/pkg/anilist"
)

// Store is an explicit-lifecycle cache: Load once at startup, Put on every
// resolution, Flush at checkpoints and shutdown. The cache is an
// optimization, never a source of truth, so callers treat Load and Flush
// errors as warnings.
type Store struct {
	path string
	log  *logrus.Entry

	mu      sync.Mutex
	entries map[string]anilist.Media
}

func New(path string, log *logrus.Entry) *Store {
	return &Store{
		path:    path,
		log:     log,
		entries: make(map[string]anilist.Media),
	}
}

// Load reads the persisted mapping. A missing or unparsable file leaves the
// store empty and usable; the error is returned only so callers can log it.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read cache file: %s", s.path)
	}

	entries := make(map[string]anilist.Media)
	if err := json.Unmarshal(data, &entries); err != nil {
		return errors.Wrapf(err, "parse cache file: %s", s.path)
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return nil
}

func (s *Store) Get(key string) (anilist.Media, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.entries[key]
	return m, ok
}

// Put inserts a record. Entries are only ever inserted whole, never
// partially updated.
func (s *Store) Put(key string, m anilist.Media) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = m
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Flush persists the mapping atomically (temp file + rename), so a failed
// write can never corrupt the previous cache file.
func (s *Store) Flush() error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return errors.Wrap(err, "marshal cache")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cache-*")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "write temp cache file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "close temp cache file")
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replace cache file: %s", s.path)
	}

	s.log.Debugf("Flushed %d cache entries to %s", s.Len(), s.path)
	return nil
}
