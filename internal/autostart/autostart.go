// Package autostart toggles the per-user launch-at-login entry.
package autostart

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsupported indicates autostart registration is not available on this platform.
var ErrUnsupported = errors.New("autostart is only supported on Windows")

// RunKey is the per-user autostart registry path under HKEY_CURRENT_USER.
const RunKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// Quote wraps an executable path in double quotes for the Run value.
func Quote(exe string) string {
	return `"` + strings.Trim(exe, `"`) + `"`
}

// Matches reports whether a stored Run value launches exe.
func Matches(value, exe string) bool {
	v := strings.TrimSpace(value)
	if strings.HasPrefix(v, `"`) {
		if end := strings.Index(v[1:], `"`); end >= 0 {
			v = v[1 : end+1]
		}
	}
	return strings.EqualFold(filepath.Clean(v), filepath.Clean(strings.Trim(exe, `"`)))
}
