// Package display enumerates display outputs and reconfigures their modes.
package display

import (
	"errors"
	"fmt"
)

// ErrUnsupported indicates display reconfiguration is not available on this platform.
var ErrUnsupported = errors.New("display control is only supported on Windows")

// ErrEnumerationUnavailable indicates the friendly-name provider could not be reached.
var ErrEnumerationUnavailable = errors.New("monitor identity provider unavailable")

// Mode is the active resolution and virtual-desktop position of one output.
type Mode struct {
	Width  uint32
	Height uint32
	X      int32
	Y      int32
}

// String formats the mode for logs.
func (m Mode) String() string {
	return fmt.Sprintf("%dx%d at (%d, %d)", m.Width, m.Height, m.X, m.Y)
}

// Detached reports whether the mode has a zero resolution.
func (m Mode) Detached() bool {
	return m.Width == 0 && m.Height == 0
}

// Device is one display adapter output as reported by the OS.
type Device struct {
	Index int
	// Name is the OS device path, e.g. \\.\DISPLAY1.
	Name    string
	Primary bool
	// MonitorID is the hardware id of the attached monitor, e.g. MONITOR\DEL4107\{...}\0001.
	MonitorID string
	// MonitorString is the driver-supplied monitor description.
	MonitorString string
}

// Output is an actively driven display with its resolved friendly name.
type Output struct {
	ID      string
	Name    string
	Primary bool
	Mode    Mode
}

// System is the OS display surface used by the enumerator and the power engine.
type System interface {
	Devices() ([]Device, error)
	CurrentMode(id string) (Mode, error)
	ApplyDisabled(id string, saved Mode) error
	ResetAll() error
}

// NameProvider resolves monitor model fragments to friendly names.
type NameProvider interface {
	FriendlyNames() (map[string]string, error)
}

// FindOutput returns the output with the given id.
func FindOutput(list []Output, id string) (Output, bool) {
	for _, o := range list {
		if o.ID == id {
			return o, true
		}
	}
	return Output{}, false
}
