package testutil

// FakeAutostart records launch-at-login changes in memory.
type FakeAutostart struct {
	On      bool
	Err     error
	Changes int
}

// Enabled returns the current flag or the injected error.
func (f *FakeAutostart) Enabled() (bool, error) {
	if f.Err != nil {
		return false, f.Err
	}
	return f.On, nil
}

// Enable sets the flag unless an error is injected.
func (f *FakeAutostart) Enable() error {
	return f.set(true)
}

// Disable clears the flag unless an error is injected.
func (f *FakeAutostart) Disable() error {
	return f.set(false)
}

// set applies on and counts the change.
func (f *FakeAutostart) set(on bool) error {
	if f.Err != nil {
		return f.Err
	}
	f.On = on
	f.Changes++
	return nil
}
