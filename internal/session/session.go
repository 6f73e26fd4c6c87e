// Package session owns the configuration and serializes every state change.
package session

import (
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/frudas24/screenoff/internal/display"
	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/power"
	"github.com/frudas24/screenoff/internal/store"
)

// ErrAllSecondary rejects an edit that would mark every output secondary.
var ErrAllSecondary = errors.New("at least one monitor must stay enabled")

// ErrUnknownOutput rejects an edit naming an output that is not enumerated.
var ErrUnknownOutput = errors.New("unknown monitor")

// Enumerator lists outputs and the primary output.
type Enumerator interface {
	Outputs() ([]display.Output, error)
	Primary() (string, bool)
	SetGenericNames(generic []string)
}

// Autostart reads and toggles the launch-at-login entry.
type Autostart interface {
	Enabled() (bool, error)
	Enable() error
	Disable() error
}

// Snapshot is a read-only view of the session for the UI and control layers.
type Snapshot struct {
	State       power.State
	Secondaries []string
	Outputs     []display.Output
	Autostart   bool
	// SaveFailed is set while the last state file write failed.
	SaveFailed bool
}

// Disabled reports whether any output mode is saved.
func (s Snapshot) Disabled() bool {
	return s.State == power.StateDisabled
}

// IsSecondary reports whether id is in the secondary list.
func (s Snapshot) IsSecondary(id string) bool {
	return slices.Contains(s.Secondaries, id)
}

// Controller owns the store and engine. It is not safe for concurrent use;
// Run serializes access through an event channel.
type Controller struct {
	enum       Enumerator
	store      *store.Store
	engine     *power.Engine
	auto       Autostart
	outputs    []display.Output
	saveFailed bool
}

// New returns a controller. auto may be nil when autostart is unavailable.
func New(enum Enumerator, st *store.Store, engine *power.Engine, auto Autostart) *Controller {
	return &Controller{
		enum:   enum,
		store:  st,
		engine: engine,
		auto:   auto,
	}
}

// Startup applies the startup protocol and returns the initial snapshot.
// An enabled session re-derives the secondary set; a disabled one is resumed untouched.
func (c *Controller) Startup() Snapshot {
	c.refresh()

	if c.engine.State() == power.StateEnabled {
		primary, ok := c.enum.Primary()
		if !ok {
			log.Printf("session: no primary monitor reported")
		}
		c.store.SetSecondaries(display.Secondaries(c.outputs, primary, ok))
		c.persist()
	} else {
		log.Printf("session: resuming disabled session, keeping secondaries %v", c.store.Secondaries())
	}

	log.Printf("=== Detected Monitors ===")
	for _, o := range c.outputs {
		log.Printf("%s -> %s", o.ID, o.Name)
	}
	log.Printf("=========================")

	return c.Snapshot()
}

// Toggle disables the secondaries when enabled, otherwise enables every output.
func (c *Controller) Toggle() error {
	state, err := c.engine.Toggle()
	c.notePersist(err)
	log.Printf("session: state is now %s", state)
	return err
}

// Disable disables the secondaries. It does nothing when already disabled.
func (c *Controller) Disable() error {
	if c.engine.State() == power.StateDisabled {
		return nil
	}
	rep := c.engine.Disable(c.store.Secondaries())
	err := rep.Err()
	c.notePersist(err)
	return err
}

// EnableAll resets every output.
func (c *Controller) EnableAll() error {
	err := c.engine.EnableAll()
	c.notePersist(err)
	return err
}

// ToggleSecondary adds or removes id from the secondary list and persists it.
func (c *Controller) ToggleSecondary(id string) error {
	if len(c.outputs) == 0 {
		c.refresh()
	}
	if _, ok := display.FindOutput(c.outputs, id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOutput, id)
	}

	secondaries := c.store.Secondaries()
	if i := slices.Index(secondaries, id); i >= 0 {
		c.store.SetSecondaries(slices.Delete(secondaries, i, i+1))
		c.persist()
		return nil
	}

	next := append(secondaries, id)
	if coversAll(c.outputs, next) {
		return ErrAllSecondary
	}
	c.store.SetSecondaries(next)
	c.persist()
	return nil
}

// SetAutostart enables or disables launch at login.
func (c *Controller) SetAutostart(enabled bool) error {
	if c.auto == nil {
		return errors.New("autostart unavailable")
	}
	if enabled {
		return c.auto.Enable()
	}
	return c.auto.Disable()
}

// Refresh re-enumerates outputs.
func (c *Controller) Refresh() {
	c.refresh()
}

// SetGenericNames forwards placeholder names to the enumerator.
func (c *Controller) SetGenericNames(names []string) {
	c.enum.SetGenericNames(names)
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		State:       c.engine.State(),
		Secondaries: c.store.Secondaries(),
		Outputs:     slices.Clone(c.outputs),
		SaveFailed:  c.saveFailed,
	}
	if c.auto != nil {
		enabled, err := c.auto.Enabled()
		if err != nil {
			logx.Debugf("session: reading autostart: %v", err)
		}
		snap.Autostart = enabled
	}
	return snap
}

// refresh re-enumerates outputs, keeping the previous list on failure.
func (c *Controller) refresh() {
	outputs, err := c.enum.Outputs()
	if err != nil {
		log.Printf("session: enumerating monitors: %v", err)
		return
	}
	c.outputs = outputs
}

// persist saves the store, logging and remembering failures.
func (c *Controller) persist() {
	err := c.store.Save()
	if err != nil {
		log.Printf("session: saving state to %s: %v", c.store.Path(), err)
	}
	c.saveFailed = err != nil
}

// notePersist records whether err carries a state file write failure.
func (c *Controller) notePersist(err error) {
	var perr *power.PersistError
	c.saveFailed = errors.As(err, &perr)
}

// coversAll reports whether ids include every enumerated output.
func coversAll(outputs []display.Output, ids []string) bool {
	for _, o := range outputs {
		if !slices.Contains(ids, o.ID) {
			return false
		}
	}
	return len(outputs) > 0
}
