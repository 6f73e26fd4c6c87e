// Package power disables secondary outputs and restores every output.
package power

import (
	"errors"
	"log"

	"github.com/frudas24/screenoff/internal/display"
)

// State is the enabled/disabled discriminant of the saved mode set.
type State int

const (
	// StateEnabled means no modes are saved and every output is driven.
	StateEnabled State = iota
	// StateDisabled means at least one output mode is saved for restore.
	StateDisabled
)

// String returns the lowercase state name.
func (s State) String() string {
	if s == StateDisabled {
		return "disabled"
	}
	return "enabled"
}

// StateOf derives the state from the number of saved modes.
func StateOf(saved int) State {
	if saved > 0 {
		return StateDisabled
	}
	return StateEnabled
}

// Backend is the OS surface the engine reconfigures.
type Backend interface {
	CurrentMode(id string) (display.Mode, error)
	ApplyDisabled(id string, saved display.Mode) error
	ResetAll() error
}

// ModeStore holds the saved mode set and the secondary list.
type ModeStore interface {
	Secondaries() []string
	SetSavedMode(id string, m display.Mode)
	ClearSavedModes()
	SavedCount() int
	Save() error
	Path() string
}

// Report summarizes a disable pass.
type Report struct {
	// Saved lists outputs whose mode was recorded.
	Saved []string
	// Disabled lists outputs the OS accepted a 0x0 mode for.
	Disabled []string
	// Failures holds ModeReadError and ReconfigError values, in output order.
	Failures []error
	// Persist is a PersistError when the state file write failed.
	Persist error
}

// Err joins every failure of the pass, or returns nil.
func (r Report) Err() error {
	errs := append([]error{}, r.Failures...)
	if r.Persist != nil {
		errs = append(errs, r.Persist)
	}
	return errors.Join(errs...)
}

// Engine runs the enabled/disabled state machine.
type Engine struct {
	backend Backend
	store   ModeStore
}

// New returns an engine over backend and store.
func New(backend Backend, store ModeStore) *Engine {
	return &Engine{backend: backend, store: store}
}

// State returns the current state.
func (e *Engine) State() State {
	return StateOf(e.store.SavedCount())
}

// Disable saves and detaches each output in order, best effort, then persists once.
func (e *Engine) Disable(ids []string) Report {
	var rep Report
	for _, id := range ids {
		mode, err := e.backend.CurrentMode(id)
		if err != nil {
			log.Printf("power: skipping %s: %v", id, err)
			rep.Failures = append(rep.Failures, &ModeReadError{ID: id, Err: err})
			continue
		}
		e.store.SetSavedMode(id, mode)
		rep.Saved = append(rep.Saved, id)
		log.Printf("power: disabling %s (was %s)", id, mode)

		if err := e.backend.ApplyDisabled(id, mode); err != nil {
			log.Printf("power: disable %s failed, mode kept for restore: %v", id, err)
			rep.Failures = append(rep.Failures, &ReconfigError{ID: id, Err: err})
			continue
		}
		rep.Disabled = append(rep.Disabled, id)
	}

	if err := e.store.Save(); err != nil {
		rep.Persist = &PersistError{Path: e.store.Path(), Err: err}
		log.Printf("power: %v", rep.Persist)
	}
	return rep
}

// EnableAll resets every display to its registry settings and clears saved modes.
// On reset failure the saved modes are kept so the user can retry.
func (e *Engine) EnableAll() error {
	log.Printf("power: re-enabling all monitors")
	if err := e.backend.ResetAll(); err != nil {
		rerr := &ReconfigError{Err: err}
		log.Printf("power: %v", rerr)
		return rerr
	}
	e.store.ClearSavedModes()
	if err := e.store.Save(); err != nil {
		perr := &PersistError{Path: e.store.Path(), Err: err}
		log.Printf("power: %v", perr)
		return perr
	}
	return nil
}

// Toggle disables the current secondaries when enabled, otherwise enables all.
func (e *Engine) Toggle() (State, error) {
	if e.State() == StateEnabled {
		ids := e.store.Secondaries()
		log.Printf("power: toggle: disabling %v", ids)
		rep := e.Disable(ids)
		return e.State(), rep.Err()
	}
	log.Printf("power: toggle: enabling all")
	err := e.EnableAll()
	return e.State(), err
}
