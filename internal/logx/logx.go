// Package logx configures process logging and verbose debug output.
package logx

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
)

// debugEnabled controls whether Debugf emits anything.
var debugEnabled atomic.Bool

// SetDebug enables/disables verbose debug logs.
func SetDebug(enabled bool) {
	debugEnabled.Store(enabled)
}

// DebugEnabled reports whether verbose debug logs are enabled.
func DebugEnabled() bool {
	return debugEnabled.Load()
}

// Debugf logs with a "debug: " prefix when debug logging is enabled.
func Debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	log.Printf("debug: "+format, args...)
}

// Setup mirrors the standard logger to path in addition to stderr.
// An empty path leaves the logger on stderr. The returned closer is never nil.
func Setup(path string) (io.Closer, error) {
	if path == "" {
		return nopCloser{}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nopCloser{}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nopCloser{}, err
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return restoreCloser{f: f}, nil
}

type nopCloser struct{}

// Close does nothing.
func (nopCloser) Close() error { return nil }

type restoreCloser struct {
	f *os.File
}

// Close points the logger back at stderr and closes the log file.
func (r restoreCloser) Close() error {
	log.SetOutput(os.Stderr)
	return r.f.Close()
}
