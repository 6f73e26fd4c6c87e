//go:build !windows

package tray

import (
	"context"

	"github.com/frudas24/screenoff/internal/session"
)

// Tray is unavailable on this platform.
type Tray struct{}

// New returns a stub tray.
func New() *Tray {
	return &Tray{}
}

// Run returns ErrUnsupported.
func (t *Tray) Run(ctx context.Context, events chan<- session.Event, snap session.Snapshot) error {
	_ = ctx
	_ = events
	_ = snap
	return ErrUnsupported
}
