//go:build !windows

// Package display enumerates display outputs and reconfigures their modes.
package display

// StubSystem is a placeholder display system for non-Windows builds.
type StubSystem struct{}

// NewSystem returns a non-functional display system on non-Windows platforms.
func NewSystem() System {
	return StubSystem{}
}

// Devices returns ErrUnsupported.
func (StubSystem) Devices() ([]Device, error) {
	return nil, ErrUnsupported
}

// CurrentMode returns ErrUnsupported.
func (StubSystem) CurrentMode(id string) (Mode, error) {
	_ = id
	return Mode{}, ErrUnsupported
}

// ApplyDisabled returns ErrUnsupported.
func (StubSystem) ApplyDisabled(id string, saved Mode) error {
	_ = id
	_ = saved
	return ErrUnsupported
}

// ResetAll returns ErrUnsupported.
func (StubSystem) ResetAll() error {
	return ErrUnsupported
}

// stubNames reports the identity provider as unavailable.
type stubNames struct{}

// NewNameProvider returns a provider that always reports ErrEnumerationUnavailable.
func NewNameProvider() NameProvider {
	return stubNames{}
}

// FriendlyNames returns ErrEnumerationUnavailable.
func (stubNames) FriendlyNames() (map[string]string, error) {
	return nil, ErrEnumerationUnavailable
}
