//go:build windows

// Package autostart toggles the per-user launch-at-login entry.
package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// Registry stores the autostart entry as a value under the Run key.
type Registry struct {
	name string
	exe  string
}

// New returns an autostart entry named name that launches exe.
func New(name, exe string) *Registry {
	return &Registry{name: name, exe: exe}
}

// Enabled reports whether the Run value exists and points at this executable.
func (r *Registry) Enabled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, RunKey, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("opening run key: %w", err)
	}
	defer k.Close()

	value, _, err := k.GetStringValue(r.name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading run value %s: %w", r.name, err)
	}
	return Matches(value, r.exe), nil
}

// Enable writes the quoted executable path under the Run key.
func (r *Registry) Enable() error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(r.name, Quote(r.exe)); err != nil {
		return fmt.Errorf("writing run value %s: %w", r.name, err)
	}
	return nil
}

// Disable removes the Run value. A missing value is not an error.
func (r *Registry) Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(r.name); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting run value %s: %w", r.name, err)
	}
	return nil
}
