package store

import (
	"log"
	"slices"

	"github.com/frudas24/screenoff/internal/display"
)

// Store owns the in-memory config and its state file.
// It is not safe for concurrent use; the session goroutine is its only caller.
type Store struct {
	path string
	cfg  Config
}

// Open loads path into a new store. Load problems are logged and yield an empty config.
func Open(path string) *Store {
	cfg, err := Load(path)
	if err != nil {
		log.Printf("store: ignoring unreadable state file: %v", err)
	}
	return &Store{path: path, cfg: cfg}
}

// New returns a store over an existing config without reading disk.
func New(path string, cfg Config) *Store {
	return &Store{path: path, cfg: cfg.Clone()}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Config returns a copy of the current config.
func (s *Store) Config() Config {
	return s.cfg.Clone()
}

// Secondaries returns a copy of the secondary output list.
func (s *Store) Secondaries() []string {
	return slices.Clone(s.cfg.SecondaryMonitors)
}

// SetSecondaries replaces the secondary output list.
func (s *Store) SetSecondaries(ids []string) {
	s.cfg.SecondaryMonitors = append([]string{}, ids...)
}

// SavedMode returns the saved mode for id.
func (s *Store) SavedMode(id string) (display.Mode, bool) {
	m, ok := s.cfg.SavedModes[id]
	return m, ok
}

// SetSavedMode records the mode an output had before it was disabled.
func (s *Store) SetSavedMode(id string, m display.Mode) {
	s.cfg.SavedModes[id] = m
}

// ClearSavedModes drops every saved mode.
func (s *Store) ClearSavedModes() {
	clear(s.cfg.SavedModes)
}

// SavedCount returns the number of saved modes.
func (s *Store) SavedCount() int {
	return len(s.cfg.SavedModes)
}

// Save persists the full snapshot.
func (s *Store) Save() error {
	return Save(s.path, s.cfg)
}
