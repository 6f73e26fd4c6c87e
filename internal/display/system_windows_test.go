//go:build windows

package display

import (
	"testing"
	"unsafe"
)

// TestDisabledDevMode_KeepsSavedOrigin verifies the detach mode is 0x0 at the saved position.
func TestDisabledDevMode_KeepsSavedOrigin(t *testing.T) {
	dm := disabledDevMode(Mode{Width: 2560, Height: 1440, X: -2560, Y: 120})
	if dm.Fields != dmPelsWidth|dmPelsHeight|dmPosition {
		t.Fatalf("unexpected fields %#x", dm.Fields)
	}
	if dm.PelsWidth != 0 || dm.PelsHeight != 0 {
		t.Fatalf("expected 0x0, got %dx%d", dm.PelsWidth, dm.PelsHeight)
	}
	if dm.Position.X != -2560 || dm.Position.Y != 120 {
		t.Fatalf("unexpected position %+v", dm.Position)
	}
	if dm.Size != uint16(unsafe.Sizeof(dm)) {
		t.Fatalf("unexpected size %d", dm.Size)
	}
}
