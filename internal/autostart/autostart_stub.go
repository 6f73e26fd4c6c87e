//go:build !windows

// Package autostart toggles the per-user launch-at-login entry.
package autostart

// Registry is a placeholder autostart entry for non-Windows builds.
type Registry struct{}

// New returns a non-functional autostart entry on non-Windows platforms.
func New(name, exe string) *Registry {
	_ = name
	_ = exe
	return &Registry{}
}

// Enabled returns ErrUnsupported.
func (r *Registry) Enabled() (bool, error) {
	return false, ErrUnsupported
}

// Enable returns ErrUnsupported.
func (r *Registry) Enable() error {
	return ErrUnsupported
}

// Disable returns ErrUnsupported.
func (r *Registry) Disable() error {
	return ErrUnsupported
}
