package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/frudas24/screenoff/internal/display"
)

// TestSaveLoad_RoundTrip verifies saving and loading preserves the config.
func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	in := Empty()
	in.SecondaryMonitors = []string{`\\.\DISPLAY2`, `\\.\DISPLAY3`}
	in.SavedModes[`\\.\DISPLAY2`] = display.Mode{Width: 1920, Height: 1080, X: 1920}
	in.SavedModes[`\\.\DISPLAY3`] = display.Mode{Width: 1280, Height: 1024, X: -1280, Y: -56}

	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("expected %+v, got %+v", in, out)
	}
}

// TestSave_TupleLayout verifies modes are written as [width, height, x, y].
func TestSave_TupleLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	in := Empty()
	in.SecondaryMonitors = []string{"DISPLAY2"}
	in.SavedModes["DISPLAY2"] = display.Mode{Width: 1920, Height: 1080, X: 1920, Y: 0}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var modes map[string][]int
	if err := json.Unmarshal(raw["saved_modes"], &modes); err != nil {
		t.Fatalf("decode saved_modes: %v", err)
	}
	if !reflect.DeepEqual(modes["DISPLAY2"], []int{1920, 1080, 1920, 0}) {
		t.Fatalf("unexpected tuple: %v", modes["DISPLAY2"])
	}
	var secondaries []string
	if err := json.Unmarshal(raw["secondary_monitors"], &secondaries); err != nil {
		t.Fatalf("decode secondary_monitors: %v", err)
	}
	if !reflect.DeepEqual(secondaries, []string{"DISPLAY2"}) {
		t.Fatalf("unexpected secondaries: %v", secondaries)
	}
}

// TestSave_EmptyWritesCollections verifies empty configs keep both keys.
func TestSave_EmptyWritesCollections(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Save(path, Config{}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(raw["secondary_monitors"]) != "[]" || string(raw["saved_modes"]) != "{}" {
		t.Fatalf("unexpected empty layout: %s", data)
	}
}

// TestLoad_MissingFile_ReturnsEmpty verifies missing files return empty collections.
func TestLoad_MissingFile_ReturnsEmpty(t *testing.T) {
	out, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.SecondaryMonitors == nil || out.SavedModes == nil || len(out.SecondaryMonitors) != 0 || len(out.SavedModes) != 0 {
		t.Fatalf("expected empty config, got %+v", out)
	}
}

// TestLoad_Garbage_ReturnsEmpty verifies unparsable files yield an empty config.
func TestLoad_Garbage_ReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Load(path)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if len(out.SecondaryMonitors) != 0 || len(out.SavedModes) != 0 || out.SavedModes == nil {
		t.Fatalf("expected empty config, got %+v", out)
	}
}

// TestLoad_NegativeSize_ReturnsEmpty verifies impossible saved sizes are rejected.
func TestLoad_NegativeSize_ReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	body := `{"secondary_monitors":["A"],"saved_modes":{"A":[-1,1080,0,0]}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Load(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if len(out.SavedModes) != 0 {
		t.Fatalf("expected empty config, got %+v", out)
	}
}

// TestLoad_MissingFields verifies absent keys become empty collections.
func TestLoad_MissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if out.SecondaryMonitors == nil || out.SavedModes == nil {
		t.Fatalf("expected non-nil collections, got %+v", out)
	}
}

// TestSave_ReplacesExisting verifies a save overwrites the previous snapshot.
func TestSave_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	first := Empty()
	first.SavedModes["A"] = display.Mode{Width: 1, Height: 1}
	if err := Save(path, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := Save(path, Empty()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(out.SavedModes) != 0 {
		t.Fatalf("expected saved modes replaced, got %+v", out.SavedModes)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files cleaned up, got %d entries", len(entries))
	}
}
