// Package testutil provides fakes for the display and registry boundaries.
package testutil

import (
	"errors"
	"fmt"

	"github.com/frudas24/screenoff/internal/display"
)

// ErrFake is returned by injected failures.
var ErrFake = errors.New("fake failure")

// Call records a single display system call.
type Call struct {
	Name string
	ID   string
	Mode display.Mode
}

// FakeDisplay is an output known to FakeSystem.
type FakeDisplay struct {
	Name          string
	Primary       bool
	MonitorID     string
	MonitorString string
	Mode          display.Mode
	// Inactive devices are enumerated but report no current mode.
	Inactive bool
}

// FakeSystem implements display.System over an in-memory device list.
type FakeSystem struct {
	Displays []FakeDisplay
	Calls    []Call

	DevicesErr error
	ModeErr    map[string]error
	ApplyErr   map[string]error
	ResetErr   error

	detached map[string]display.Mode
}

// Ensure FakeSystem implements the interface.
var _ display.System = (*FakeSystem)(nil)

// NewFakeSystem returns a fake system with the given displays.
func NewFakeSystem(displays ...FakeDisplay) *FakeSystem {
	return &FakeSystem{
		Displays: displays,
		ModeErr:  map[string]error{},
		ApplyErr: map[string]error{},
		detached: map[string]display.Mode{},
	}
}

// Devices returns the configured displays in order.
func (f *FakeSystem) Devices() ([]display.Device, error) {
	f.Calls = append(f.Calls, Call{Name: "Devices"})
	if f.DevicesErr != nil {
		return nil, f.DevicesErr
	}
	out := make([]display.Device, 0, len(f.Displays))
	for i, d := range f.Displays {
		out = append(out, display.Device{
			Index:         i,
			Name:          d.Name,
			Primary:       d.Primary,
			MonitorID:     d.MonitorID,
			MonitorString: d.MonitorString,
		})
	}
	return out, nil
}

// CurrentMode returns the display's mode unless a failure is injected.
func (f *FakeSystem) CurrentMode(id string) (display.Mode, error) {
	f.Calls = append(f.Calls, Call{Name: "CurrentMode", ID: id})
	if err := f.ModeErr[id]; err != nil {
		return display.Mode{}, err
	}
	d := f.find(id)
	if d == nil || d.Inactive || d.Mode.Detached() {
		return display.Mode{}, fmt.Errorf("no current mode for %s", id)
	}
	return d.Mode, nil
}

// ApplyDisabled records the call and zeroes the display's resolution.
func (f *FakeSystem) ApplyDisabled(id string, saved display.Mode) error {
	f.Calls = append(f.Calls, Call{Name: "ApplyDisabled", ID: id, Mode: saved})
	if err := f.ApplyErr[id]; err != nil {
		return err
	}
	if d := f.find(id); d != nil {
		f.detached[id] = d.Mode
		d.Mode = display.Mode{X: saved.X, Y: saved.Y}
	}
	return nil
}

// ResetAll records the call and brings detached displays back to their previous mode.
func (f *FakeSystem) ResetAll() error {
	f.Calls = append(f.Calls, Call{Name: "ResetAll"})
	if f.ResetErr != nil {
		return f.ResetErr
	}
	for id, m := range f.detached {
		if d := f.find(id); d != nil {
			d.Mode = m
		}
	}
	clear(f.detached)
	return nil
}

// Count returns how many calls with the given name were recorded.
func (f *FakeSystem) Count(name string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Applied returns the ids passed to ApplyDisabled, in order.
func (f *FakeSystem) Applied() []string {
	var ids []string
	for _, c := range f.Calls {
		if c.Name == "ApplyDisabled" {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// find returns the display with the given name.
func (f *FakeSystem) find(id string) *FakeDisplay {
	for i := range f.Displays {
		if f.Displays[i].Name == id {
			return &f.Displays[i]
		}
	}
	return nil
}

// FakeNames implements display.NameProvider.
type FakeNames struct {
	Names map[string]string
	Err   error
	Calls int
}

// Ensure FakeNames implements the interface.
var _ display.NameProvider = (*FakeNames)(nil)

// FriendlyNames returns the configured names or error.
func (f *FakeNames) FriendlyNames() (map[string]string, error) {
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Names, nil
}

// TwoDisplays returns the DISPLAY1 primary / DISPLAY2 secondary layout.
func TwoDisplays() *FakeSystem {
	return NewFakeSystem(
		FakeDisplay{
			Name:          "DISPLAY1",
			Primary:       true,
			MonitorID:     `MONITOR\DEL4107\{4d36e96e-e325-11ce-bfc1-08002be10318}\0000`,
			MonitorString: "Generic PnP Monitor",
			Mode:          display.Mode{Width: 1920, Height: 1080},
		},
		FakeDisplay{
			Name:          "DISPLAY2",
			MonitorID:     `MONITOR\GSM5B08\{4d36e96e-e325-11ce-bfc1-08002be10318}\0001`,
			MonitorString: "LG ULTRAWIDE",
			Mode:          display.Mode{Width: 1920, Height: 1080, X: 1920},
		},
	)
}
