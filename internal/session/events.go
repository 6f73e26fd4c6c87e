package session

import (
	"context"
	"fmt"
	"log"
)

// EventKind names a user or system request handled by the controller.
type EventKind string

const (
	// EventToggle flips between enabled and disabled (tray left click).
	EventToggle EventKind = "toggle"
	// EventEnable resets every output.
	EventEnable EventKind = "enable"
	// EventDisable disables the secondaries when enabled.
	EventDisable EventKind = "disable"
	// EventToggleSecondary adds or removes Event.ID from the secondaries (menu select).
	EventToggleSecondary EventKind = "secondary"
	// EventSetAutostart sets launch at login to Event.Enabled.
	EventSetAutostart EventKind = "autostart"
	// EventRefresh re-enumerates outputs (menu open).
	EventRefresh EventKind = "refresh"
	// EventState only reports the current snapshot.
	EventState EventKind = "state"
	// EventReload applies Event.Names as the generic monitor names.
	EventReload EventKind = "reload"
)

// Event is one serialized request. Reply, when set, receives exactly one Result
// and must have room for it.
type Event struct {
	Kind    EventKind
	ID      string
	Enabled bool
	Names   []string
	Reply   chan<- Result
}

// Result is the outcome of one event.
type Result struct {
	Snapshot Snapshot
	Err      error
}

// Dispatch handles one event synchronously and returns the resulting snapshot.
func (c *Controller) Dispatch(ev Event) Result {
	var err error
	switch ev.Kind {
	case EventToggle:
		err = c.Toggle()
	case EventEnable:
		err = c.EnableAll()
	case EventDisable:
		err = c.Disable()
	case EventToggleSecondary:
		err = c.ToggleSecondary(ev.ID)
	case EventSetAutostart:
		err = c.SetAutostart(ev.Enabled)
	case EventRefresh:
		c.Refresh()
	case EventState:
	case EventReload:
		c.SetGenericNames(ev.Names)
		c.Refresh()
	default:
		err = fmt.Errorf("unknown event %q", ev.Kind)
	}
	if err != nil {
		log.Printf("session: %s: %v", ev.Kind, err)
	}
	return Result{Snapshot: c.Snapshot(), Err: err}
}

// Run dispatches events one at a time until ctx is done or events is closed.
// It is the only goroutine that touches the controller after Startup.
func (c *Controller) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			res := c.Dispatch(ev)
			if ev.Reply != nil {
				ev.Reply <- res
			}
		}
	}
}

// Post sends ev and waits for its result.
func Post(ctx context.Context, events chan<- Event, ev Event) (Result, error) {
	reply := make(chan Result, 1)
	ev.Reply = reply
	select {
	case events <- ev:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
