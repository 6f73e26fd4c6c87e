// Package app wires the session, control channel, settings watcher and tray together.
package app

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/frudas24/screenoff/internal/config"
	"github.com/frudas24/screenoff/internal/control"
	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/session"
	"github.com/frudas24/screenoff/internal/tray"
)

// UI presents the session and turns user input into events.
// Run blocks until the user quits or ctx is done.
type UI interface {
	Run(ctx context.Context, events chan<- session.Event, snap session.Snapshot) error
}

// App coordinates the session goroutine and its event producers.
type App struct {
	cfg    config.Config
	ctrl   *session.Controller
	ui     UI
	events chan session.Event

	mu     sync.Mutex
	runCtx context.Context
}

// New creates a new application with its dependencies wired.
func New(cfg config.Config, ctrl *session.Controller, ui UI) (*App, error) {
	if ctrl == nil {
		return nil, errors.New("session controller is required")
	}
	if ui == nil {
		return nil, errors.New("ui is required")
	}
	return &App{
		cfg:    cfg,
		ctrl:   ctrl,
		ui:     ui,
		events: make(chan session.Event),
	}, nil
}

// Run claims the control address, applies the startup protocol and blocks
// until the UI exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	var ln net.Listener
	if a.cfg.ControlEnabled {
		l, err := control.Listen(a.cfg.ControlAddr)
		if err != nil {
			return err
		}
		ln = l
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	a.runCtx = ctx
	a.mu.Unlock()

	snap := a.ctrl.Startup()
	log.Printf("app: session %s, secondaries %v", snap.State, snap.Secondaries)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.ctrl.Run(ctx, a.events); err != nil {
			log.Printf("app: session loop: %v", err)
		}
	}()

	if ln != nil {
		srv := control.NewServer(a.dispatch)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Serve(ctx, ln); err != nil {
				log.Printf("app: control server: %v", err)
			}
		}()
	}

	if a.cfg.SettingsPath != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := config.Watch(ctx, a.cfg.SettingsPath, a.applySettings); err != nil {
				log.Printf("app: settings watcher stopped: %v", err)
			}
		}()
	}

	err := a.ui.Run(ctx, a.events, snap)
	if errors.Is(err, tray.ErrUnsupported) {
		log.Printf("app: no tray on this platform, running headless until interrupted")
		<-ctx.Done()
		err = nil
	}

	cancel()
	wg.Wait()
	log.Printf("app: stopped")
	return err
}

// dispatch posts ev to the session goroutine, giving up when either ctx or the run ends.
func (a *App) dispatch(ctx context.Context, ev session.Event) (session.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.mu.Lock()
	runCtx := a.runCtx
	a.mu.Unlock()
	if runCtx != nil {
		stop := context.AfterFunc(runCtx, cancel)
		defer stop()
	}
	return session.Post(ctx, a.events, ev)
}

// applySettings re-applies hot-reloadable settings.
func (a *App) applySettings(s config.Settings) {
	cfg := a.cfg
	cfg.Apply(s)
	logx.SetDebug(cfg.Debug)
	if _, err := a.dispatch(context.Background(), session.Event{Kind: session.EventReload, Names: cfg.GenericNames}); err != nil {
		logx.Debugf("app: reload not applied: %v", err)
	}
}
