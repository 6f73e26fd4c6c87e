package tray

import (
	"context"
	"testing"
	"time"

	"github.com/frudas24/screenoff/internal/display"
	"github.com/frudas24/screenoff/internal/power"
	"github.com/frudas24/screenoff/internal/session"
)

// twoOutputs returns a snapshot with DISPLAY2 secondary.
func twoOutputs() session.Snapshot {
	return session.Snapshot{
		State:       power.StateEnabled,
		Secondaries: []string{"DISPLAY2"},
		Outputs: []display.Output{
			{ID: "DISPLAY1", Name: "Dell U2720Q", Primary: true},
			{ID: "DISPLAY2", Name: "LG ULTRAWIDE"},
		},
		Autostart: true,
	}
}

// TestBuildMenu_Layout verifies header, outputs, autostart, separator and exit order.
func TestBuildMenu_Layout(t *testing.T) {
	items := BuildMenu(twoOutputs())
	kinds := []ItemKind{ItemHeader, ItemOutput, ItemOutput, ItemAutostart, ItemSeparator, ItemExit}
	if len(items) != len(kinds) {
		t.Fatalf("unexpected item count %d", len(items))
	}
	for i, k := range kinds {
		if items[i].Kind != k {
			t.Fatalf("item %d: expected kind %d, got %d", i, k, items[i].Kind)
		}
	}
	if items[0].Label != "Secondary Monitors:" || !items[0].Disabled {
		t.Fatalf("unexpected header: %+v", items[0])
	}
	if items[1].Checked || !items[2].Checked || items[2].Label != "LG ULTRAWIDE" {
		t.Fatalf("unexpected output items: %+v %+v", items[1], items[2])
	}
	if !items[3].Checked || items[5].Label != "Exit" {
		t.Fatalf("unexpected tail: %+v %+v", items[3], items[5])
	}
}

// TestActionFor_Output verifies selecting an output toggles its membership.
func TestActionFor_Output(t *testing.T) {
	items := BuildMenu(twoOutputs())
	action, ok := ActionFor(items, items[1].Cmd)
	if !ok || action.Event.Kind != session.EventToggleSecondary || action.Event.ID != "DISPLAY1" {
		t.Fatalf("unexpected action: %+v ok=%v", action, ok)
	}
}

// TestActionFor_Autostart verifies the autostart item requests the opposite state.
func TestActionFor_Autostart(t *testing.T) {
	items := BuildMenu(twoOutputs())
	action, ok := ActionFor(items, cmdAutostart)
	if !ok || action.Event.Kind != session.EventSetAutostart || action.Event.Enabled {
		t.Fatalf("unexpected action: %+v ok=%v", action, ok)
	}
}

// TestActionFor_Inert verifies cancel, header and unknown commands do nothing.
func TestActionFor_Inert(t *testing.T) {
	items := BuildMenu(twoOutputs())
	for _, cmd := range []uint32{0, cmdHeader, 999} {
		if _, ok := ActionFor(items, cmd); ok {
			t.Fatalf("expected command %d to be inert", cmd)
		}
	}
	action, ok := ActionFor(items, cmdExit)
	if !ok || !action.Quit {
		t.Fatalf("expected exit to quit")
	}
}

// TestTooltipFor verifies the save failure note.
func TestTooltipFor(t *testing.T) {
	if got := TooltipFor(session.Snapshot{}); got != "Screen Off" {
		t.Fatalf("unexpected tooltip %q", got)
	}
	if got := TooltipFor(session.Snapshot{SaveFailed: true}); got == "Screen Off" {
		t.Fatalf("expected save failure in tooltip")
	}
}

// TestPost_DeliversReply verifies post hands the session reply to the callback.
func TestPost_DeliversReply(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := make(chan session.Event)
	go func() {
		ev := <-events
		ev.Reply <- session.Result{Snapshot: session.Snapshot{State: power.StateDisabled}}
	}()

	var cell snapshotCell
	done := make(chan struct{})
	post(ctx, events, session.Event{Kind: session.EventToggle}, func(res session.Result) {
		cell.store(res.Snapshot)
		close(done)
	})

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("callback not called")
	}
	if !cell.load().Disabled() {
		t.Fatalf("expected stored disabled snapshot")
	}
}
