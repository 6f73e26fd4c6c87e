// Package store persists the secondary monitor list and saved display modes.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/frudas24/screenoff/internal/display"
)

// FileName is the state file name inside the data directory.
const FileName = "screenoff_config.json"

// Config is the persisted aggregate of secondary outputs and saved modes.
type Config struct {
	SecondaryMonitors []string
	SavedModes        map[string]display.Mode
}

// fileConfig is the on-disk JSON layout; modes are [width, height, x, y].
type fileConfig struct {
	SecondaryMonitors []string            `json:"secondary_monitors"`
	SavedModes        map[string][4]int64 `json:"saved_modes"`
}

// Empty returns a config with non-nil, empty collections.
func Empty() Config {
	return Config{
		SecondaryMonitors: []string{},
		SavedModes:        map[string]display.Mode{},
	}
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	out := Empty()
	out.SecondaryMonitors = append(out.SecondaryMonitors, c.SecondaryMonitors...)
	for id, m := range c.SavedModes {
		out.SavedModes[id] = m
	}
	return out
}

// Load reads the state file. Missing files return an empty config and no error;
// unparsable files return an empty config and the parse error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Empty(), nil
		}
		return Empty(), err
	}
	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return Empty(), fmt.Errorf("parsing %s: %w", path, err)
	}
	c, err := fromFile(raw)
	if err != nil {
		return Empty(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return c, nil
}

// Save writes the whole config atomically, creating parent directories as needed.
func Save(path string, c Config) error {
	data, err := json.MarshalIndent(toFile(c), "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}

// fromFile converts and validates the on-disk layout.
func fromFile(raw fileConfig) (Config, error) {
	c := Empty()
	for _, id := range raw.SecondaryMonitors {
		if id != "" && !slices.Contains(c.SecondaryMonitors, id) {
			c.SecondaryMonitors = append(c.SecondaryMonitors, id)
		}
	}
	for id, v := range raw.SavedModes {
		if v[0] < 0 || v[1] < 0 || v[0] > int64(^uint32(0)) || v[1] > int64(^uint32(0)) {
			return Empty(), fmt.Errorf("saved mode for %s has invalid size %dx%d", id, v[0], v[1])
		}
		c.SavedModes[id] = display.Mode{
			Width:  uint32(v[0]),
			Height: uint32(v[1]),
			X:      int32(v[2]),
			Y:      int32(v[3]),
		}
	}
	return c, nil
}

// toFile converts a config to the on-disk layout.
func toFile(c Config) fileConfig {
	raw := fileConfig{
		SecondaryMonitors: c.SecondaryMonitors,
		SavedModes:        make(map[string][4]int64, len(c.SavedModes)),
	}
	if raw.SecondaryMonitors == nil {
		raw.SecondaryMonitors = []string{}
	}
	for id, m := range c.SavedModes {
		raw.SavedModes[id] = [4]int64{int64(m.Width), int64(m.Height), int64(m.X), int64(m.Y)}
	}
	return raw
}

// writeFileAtomic writes data to a temp file in the same directory and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
