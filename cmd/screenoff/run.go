// Package main starts the ScreenOff tray application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/frudas24/screenoff/internal/app"
	"github.com/frudas24/screenoff/internal/autostart"
	"github.com/frudas24/screenoff/internal/config"
	"github.com/frudas24/screenoff/internal/control"
	"github.com/frudas24/screenoff/internal/display"
	"github.com/frudas24/screenoff/internal/logx"
	"github.com/frudas24/screenoff/internal/power"
	"github.com/frudas24/screenoff/internal/session"
	"github.com/frudas24/screenoff/internal/store"
	"github.com/frudas24/screenoff/internal/tray"
)

// sendTimeout bounds a -send round trip.
const sendTimeout = 5 * time.Second

// run wires the application and blocks until shutdown.
func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.debug {
		cfg.Debug = true
	}
	logx.SetDebug(cfg.Debug)

	switch {
	case opts.send != "":
		return runSend(os.Stdout, cfg, opts.send, opts.id)
	case opts.list:
		return runList(os.Stdout, cfg)
	}

	logFile, err := logx.Setup(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Printf("closing log file: %v", err)
		}
	}()
	if cfg.Debug {
		log.Printf("debug: enabled")
	}
	logStartup(cfg)

	sys := display.NewSystem()
	enum := display.NewEnumerator(sys, display.NewNameProvider(), cfg.GenericNames)
	st := store.Open(cfg.StatePath)
	ctrl := session.New(enum, st, power.New(sys, st), newAutostart())

	appInstance, err := app.New(cfg, ctrl, tray.New())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return appInstance.Run(ctx)
}

// runList prints the detected monitors without touching the state file.
func runList(w io.Writer, cfg config.Config) error {
	enum := display.NewEnumerator(display.NewSystem(), display.NewNameProvider(), cfg.GenericNames)
	outputs, err := enum.Outputs()
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		return errors.New("no monitors detected")
	}
	for _, o := range outputs {
		marker := ""
		if o.Primary {
			marker = " (primary)"
		}
		fmt.Fprintf(w, "%s -> %s%s  %s\n", o.ID, o.Name, marker, o.Mode)
	}
	return nil
}

// runSend forwards one command to the running instance and prints its state.
func runSend(w io.Writer, cfg config.Config, cmd, id string) error {
	if !cfg.ControlEnabled {
		return errors.New("control channel is disabled (CONTROL_ENABLED=false)")
	}
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	reply, err := control.Send(ctx, cfg.ControlAddr, control.Message{T: strings.ToLower(cmd), ID: id})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "state: %s\n", reply.State)
	for _, o := range reply.Outputs {
		mark := " "
		if o.Secondary {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s -> %s  %s\n", mark, o.ID, o.Name, o.Mode)
	}
	if reply.Error != "" {
		return errors.New(reply.Error)
	}
	return nil
}

// newAutostart returns the launch-at-login entry for this executable, or nil.
func newAutostart() session.Autostart {
	exe, err := os.Executable()
	if err != nil {
		log.Printf("autostart unavailable: %v", err)
		return nil
	}
	return autostart.New(config.AppName, exe)
}

// logFatal prints and exits for startup failures.
func logFatal(err error) {
	log.Printf("fatal: %v", err)
	os.Exit(1)
}

// logStartup prints startup checks and file locations.
func logStartup(cfg config.Config) {
	log.Printf("%s starting", config.AppName)
	logEnvStatus(cfg)
	log.Printf("state file: %s", cfg.StatePath)
	if fileExists(cfg.SettingsPath) {
		log.Printf("settings: %s", cfg.SettingsPath)
	} else {
		log.Printf("settings: defaults (%s not found)", cfg.SettingsPath)
	}
	if cfg.ControlEnabled {
		log.Printf("control addr: %s", cfg.ControlAddr)
	} else {
		log.Printf("control channel: disabled")
	}
	if cfg.LogFile != "" {
		log.Printf("log file: %s", cfg.LogFile)
	}
}

// logEnvStatus reports whether a .env file was found.
func logEnvStatus(cfg config.Config) {
	envPath := filepath.Join(cfg.DataDir, ".env")
	if fileExists(envPath) {
		log.Printf("env check: ok (%s)", envPath)
	} else {
		log.Printf("env check: none (%s)", envPath)
	}
}

// fileExists reports whether a path exists and is a file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
