package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/frudas24/screenoff/internal/display"
	"github.com/frudas24/screenoff/internal/power"
	"github.com/frudas24/screenoff/internal/session"
	"github.com/frudas24/screenoff/internal/store"
	"github.com/frudas24/screenoff/internal/testutil"
)

// newController wires a controller over sys and a state file in a temp dir.
func newController(t *testing.T, sys *testutil.FakeSystem, cfg store.Config) (*session.Controller, *store.Store, *testutil.FakeAutostart) {
	t.Helper()
	path := filepath.Join(t.TempDir(), store.FileName)
	if len(cfg.SecondaryMonitors) > 0 || len(cfg.SavedModes) > 0 {
		if err := store.Save(path, cfg); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	st := store.Open(path)
	auto := &testutil.FakeAutostart{}
	enum := display.NewEnumerator(sys, &testutil.FakeNames{Names: map[string]string{}}, nil)
	return session.New(enum, st, power.New(sys, st), auto), st, auto
}

// TestStartup_EnabledRescansSecondaries verifies an enabled session re-derives the secondary set.
func TestStartup_EnabledRescansSecondaries(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, st, _ := newController(t, sys, store.Config{SecondaryMonitors: []string{"DISPLAY9"}})

	snap := c.Startup()
	if !reflect.DeepEqual(snap.Secondaries, []string{"DISPLAY2"}) {
		t.Fatalf("unexpected secondaries: %v", snap.Secondaries)
	}
	if snap.State != power.StateEnabled || len(snap.Outputs) != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	persisted, err := store.Load(st.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(persisted.SecondaryMonitors, []string{"DISPLAY2"}) {
		t.Fatalf("expected rescanned secondaries on disk, got %v", persisted.SecondaryMonitors)
	}
}

// TestStartup_DisabledResumes verifies a disabled session keeps its secondaries and modes.
func TestStartup_DisabledResumes(t *testing.T) {
	sys := testutil.TwoDisplays()
	cfg := store.Config{
		SecondaryMonitors: []string{"DISPLAY1"},
		SavedModes:        map[string]display.Mode{"DISPLAY1": {Width: 1920, Height: 1080}},
	}
	c, _, _ := newController(t, sys, cfg)

	snap := c.Startup()
	if !reflect.DeepEqual(snap.Secondaries, []string{"DISPLAY1"}) {
		t.Fatalf("expected secondaries kept, got %v", snap.Secondaries)
	}
	if !snap.Disabled() {
		t.Fatalf("expected disabled state")
	}
	if sys.Count("ApplyDisabled") != 0 || sys.Count("ResetAll") != 0 {
		t.Fatalf("expected no OS changes at startup: %+v", sys.Calls)
	}
}

// TestStartup_NoPrimaryKeepsFirst verifies the first output stays on without a primary.
func TestStartup_NoPrimaryKeepsFirst(t *testing.T) {
	sys := testutil.TwoDisplays()
	sys.Displays[0].Primary = false
	c, _, _ := newController(t, sys, store.Config{})

	snap := c.Startup()
	if !reflect.DeepEqual(snap.Secondaries, []string{"DISPLAY2"}) {
		t.Fatalf("unexpected secondaries: %v", snap.Secondaries)
	}
}

// TestScenario_TwoDisplays verifies the toggle round trip from a fresh start.
func TestScenario_TwoDisplays(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, st, _ := newController(t, sys, store.Config{})
	c.Startup()

	if err := c.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	snap := c.Snapshot()
	if !snap.Disabled() {
		t.Fatalf("expected disabled after first toggle")
	}
	if m, ok := st.SavedMode("DISPLAY2"); !ok || m != (display.Mode{Width: 1920, Height: 1080, X: 1920}) {
		t.Fatalf("unexpected saved mode %+v ok=%v", m, ok)
	}
	if !reflect.DeepEqual(sys.Applied(), []string{"DISPLAY2"}) {
		t.Fatalf("unexpected applied ids: %v", sys.Applied())
	}

	if err := c.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if c.Snapshot().Disabled() || st.SavedCount() != 0 {
		t.Fatalf("expected enabled after second toggle")
	}
	if sys.Count("ResetAll") != 1 {
		t.Fatalf("expected one reset, got %d", sys.Count("ResetAll"))
	}
}

// TestDisable_NoopWhenDisabled verifies a second disable leaves the OS alone.
func TestDisable_NoopWhenDisabled(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, _, _ := newController(t, sys, store.Config{})
	c.Startup()

	if err := c.Disable(); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	if err := c.Disable(); err != nil {
		t.Fatalf("second Disable failed: %v", err)
	}
	if sys.Count("ApplyDisabled") != 1 {
		t.Fatalf("expected a single disable call, got %d", sys.Count("ApplyDisabled"))
	}
}

// TestToggleSecondary_RejectsAll verifies the last non-secondary output cannot be added.
func TestToggleSecondary_RejectsAll(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, _, _ := newController(t, sys, store.Config{})
	c.Startup()

	if err := c.ToggleSecondary("DISPLAY1"); !errors.Is(err, session.ErrAllSecondary) {
		t.Fatalf("expected ErrAllSecondary, got %v", err)
	}
	if got := c.Snapshot().Secondaries; !reflect.DeepEqual(got, []string{"DISPLAY2"}) {
		t.Fatalf("expected secondaries unchanged, got %v", got)
	}
}

// TestToggleSecondary_AddRemove verifies membership flips and persists.
func TestToggleSecondary_AddRemove(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, st, _ := newController(t, sys, store.Config{})
	c.Startup()

	if err := c.ToggleSecondary("DISPLAY2"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if c.Snapshot().IsSecondary("DISPLAY2") {
		t.Fatalf("expected DISPLAY2 removed")
	}
	if err := c.ToggleSecondary("DISPLAY1"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	persisted, err := store.Load(st.Path())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(persisted.SecondaryMonitors, []string{"DISPLAY1"}) {
		t.Fatalf("unexpected persisted secondaries: %v", persisted.SecondaryMonitors)
	}
}

// TestToggleSecondary_Unknown verifies unknown ids are rejected.
func TestToggleSecondary_Unknown(t *testing.T) {
	c, _, _ := newController(t, testutil.TwoDisplays(), store.Config{})
	c.Startup()

	if err := c.ToggleSecondary("DISPLAY7"); !errors.Is(err, session.ErrUnknownOutput) {
		t.Fatalf("expected ErrUnknownOutput, got %v", err)
	}
}

// TestSetAutostart verifies the autostart flag reaches the snapshot.
func TestSetAutostart(t *testing.T) {
	c, _, auto := newController(t, testutil.TwoDisplays(), store.Config{})
	c.Startup()

	if err := c.SetAutostart(true); err != nil {
		t.Fatalf("SetAutostart failed: %v", err)
	}
	if !auto.On || !c.Snapshot().Autostart {
		t.Fatalf("expected autostart enabled")
	}
	auto.Err = testutil.ErrFake
	if err := c.SetAutostart(false); !errors.Is(err, testutil.ErrFake) {
		t.Fatalf("expected fake error, got %v", err)
	}
	if c.Snapshot().Autostart {
		t.Fatalf("expected unreadable autostart to report off")
	}
}

// TestDispatch_Events verifies events map onto controller operations.
func TestDispatch_Events(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, _, _ := newController(t, sys, store.Config{})
	c.Startup()

	res := c.Dispatch(session.Event{Kind: session.EventDisable})
	if res.Err != nil || !res.Snapshot.Disabled() {
		t.Fatalf("unexpected disable result: %+v", res)
	}
	res = c.Dispatch(session.Event{Kind: session.EventState})
	if !res.Snapshot.Disabled() {
		t.Fatalf("expected state to report disabled")
	}
	res = c.Dispatch(session.Event{Kind: session.EventEnable})
	if res.Err != nil || res.Snapshot.Disabled() {
		t.Fatalf("unexpected enable result: %+v", res)
	}
	res = c.Dispatch(session.Event{Kind: session.EventKind("bogus")})
	if res.Err == nil {
		t.Fatalf("expected unknown event error")
	}
}

// TestDispatch_ReloadRenames verifies reloaded generic names change friendly names.
func TestDispatch_ReloadRenames(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, _, _ := newController(t, sys, store.Config{})
	c.Startup()

	res := c.Dispatch(session.Event{Kind: session.EventReload, Names: []string{"LG ULTRAWIDE"}})
	o, ok := display.FindOutput(res.Snapshot.Outputs, "DISPLAY1")
	if !ok || o.Name != "Generic PnP Monitor" {
		t.Fatalf("expected DISPLAY1 description once no longer generic, got %+v", o)
	}
	o, _ = display.FindOutput(res.Snapshot.Outputs, "DISPLAY2")
	if o.Name != "Display 2" {
		t.Fatalf("expected DISPLAY2 fallback name, got %q", o.Name)
	}
}

// TestRun_SerializesPosts verifies concurrent posts are handled one at a time.
func TestRun_SerializesPosts(t *testing.T) {
	sys := testutil.TwoDisplays()
	c, _, _ := newController(t, sys, store.Config{})
	c.Startup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	events := make(chan session.Event)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, events) }()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := session.Post(ctx, events, session.Event{Kind: session.EventToggle}); err != nil {
				t.Errorf("Post failed: %v", err)
			}
		}()
	}
	wg.Wait()

	res, err := session.Post(ctx, events, session.Event{Kind: session.EventState})
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if res.Snapshot.Disabled() {
		t.Fatalf("expected enabled after an even number of toggles")
	}
	if sys.Count("ApplyDisabled") != 2 || sys.Count("ResetAll") != 2 {
		t.Fatalf("unexpected calls: disable=%d reset=%d", sys.Count("ApplyDisabled"), sys.Count("ResetAll"))
	}

	close(events)
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

// TestPost_ContextCanceled verifies Post gives up when nobody is listening.
func TestPost_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := session.Post(ctx, make(chan session.Event), session.Event{Kind: session.EventState}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
