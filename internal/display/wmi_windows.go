//go:build windows

// Package display enumerates display outputs and reconfigures their modes.
package display

import (
	"fmt"

	"github.com/yusufpapurcu/wmi"
)

const (
	wmiNamespace = `root\wmi`
	wmiQuery     = "SELECT InstanceName, UserFriendlyName FROM WmiMonitorID"
)

// wmiMonitorID mirrors the WmiMonitorID class fields we read.
type wmiMonitorID struct {
	InstanceName     string
	UserFriendlyName []int32
}

// WMINames resolves monitor friendly names through WMI.
type WMINames struct{}

// NewNameProvider returns the WMI-backed friendly-name provider.
func NewNameProvider() NameProvider {
	return WMINames{}
}

// FriendlyNames maps monitor model fragments to their EDID friendly names.
func (WMINames) FriendlyNames() (names map[string]string, err error) {
	// The wmi package panics on unexpected column types.
	defer func() {
		if r := recover(); r != nil {
			names, err = nil, fmt.Errorf("%w: WmiMonitorID query panicked: %v", ErrEnumerationUnavailable, r)
		}
	}()

	var rows []wmiMonitorID
	if err := wmi.QueryNamespace(wmiQuery, &rows, wmiNamespace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumerationUnavailable, err)
	}
	names = make(map[string]string, len(rows))
	for _, row := range rows {
		model := ModelFragment(row.InstanceName)
		name := DecodeFriendlyName(row.UserFriendlyName)
		if model == "" || name == "" {
			continue
		}
		names[model] = name
	}
	return names, nil
}
