// Package tray shows the notification area icon and its popup menu.
package tray

import (
	"context"
	"errors"
	"sync"

	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/session"
)

// ErrUnsupported is returned on platforms without a notification area.
var ErrUnsupported = errors.New("tray: unsupported platform")

// Tooltip is the hover text of the tray icon.
const Tooltip = "Screen Off"

// Menu command ids. Output items start at cmdOutputBase in enumeration order.
const (
	cmdHeader     uint32 = 1
	cmdAutostart  uint32 = 2
	cmdExit       uint32 = 3
	cmdOutputBase uint32 = 100
)

// ItemKind classifies popup menu entries.
type ItemKind int

const (
	// ItemHeader is the disabled "Secondary Monitors:" label.
	ItemHeader ItemKind = iota
	// ItemOutput is one checkable monitor entry.
	ItemOutput
	// ItemAutostart toggles launch at login.
	ItemAutostart
	// ItemSeparator is a horizontal rule.
	ItemSeparator
	// ItemExit quits the application.
	ItemExit
)

// Item is one entry of the popup menu.
type Item struct {
	Cmd      uint32
	Kind     ItemKind
	Label    string
	Checked  bool
	Disabled bool
	OutputID string
}

// Action is what the tray does after a menu command.
type Action struct {
	Event session.Event
	Quit  bool
}

// BuildMenu lays out the popup menu for snap.
func BuildMenu(snap session.Snapshot) []Item {
	items := []Item{{Cmd: cmdHeader, Kind: ItemHeader, Label: "Secondary Monitors:", Disabled: true}}
	for i, o := range snap.Outputs {
		items = append(items, Item{
			Cmd:      cmdOutputBase + uint32(i),
			Kind:     ItemOutput,
			Label:    o.Name,
			Checked:  snap.IsSecondary(o.ID),
			OutputID: o.ID,
		})
	}
	items = append(items,
		Item{Cmd: cmdAutostart, Kind: ItemAutostart, Label: "Launch at login", Checked: snap.Autostart},
		Item{Kind: ItemSeparator},
		Item{Cmd: cmdExit, Kind: ItemExit, Label: "Exit"},
	)
	return items
}

// ActionFor resolves a selected command against the menu it came from.
// ok is false for cancelled menus and inert entries.
func ActionFor(items []Item, cmd uint32) (Action, bool) {
	if cmd == 0 {
		return Action{}, false
	}
	for _, it := range items {
		if it.Cmd != cmd || it.Disabled {
			continue
		}
		switch it.Kind {
		case ItemOutput:
			return Action{Event: session.Event{Kind: session.EventToggleSecondary, ID: it.OutputID}}, true
		case ItemAutostart:
			return Action{Event: session.Event{Kind: session.EventSetAutostart, Enabled: !it.Checked}}, true
		case ItemExit:
			return Action{Quit: true}, true
		}
	}
	return Action{}, false
}

// TooltipFor returns the hover text for snap.
func TooltipFor(snap session.Snapshot) string {
	if snap.SaveFailed {
		return Tooltip + " (settings not saved)"
	}
	return Tooltip
}

// snapshotCell holds the latest snapshot shared between the UI thread and reply goroutines.
type snapshotCell struct {
	mu   sync.Mutex
	snap session.Snapshot
}

// load returns the stored snapshot.
func (c *snapshotCell) load() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// store replaces the stored snapshot.
func (c *snapshotCell) store(snap session.Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()
}

// post sends ev without blocking the caller and hands the result to done.
func post(ctx context.Context, events chan<- session.Event, ev session.Event, done func(session.Result)) {
	go func() {
		res, err := session.Post(ctx, events, ev)
		if err != nil {
			return
		}
		if res.Err != nil {
			logx.Debugf("tray: %s: %v", ev.Kind, res.Err)
		}
		done(res)
	}()
}
