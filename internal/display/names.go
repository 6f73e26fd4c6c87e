package display

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// devicePrefix is the OS prefix shared by display adapter device names.
const devicePrefix = `\\.\DISPLAY`

// DefaultGenericNames lists driver descriptions that carry no model information.
var DefaultGenericNames = []string{"Generic PnP Monitor"}

// ModelFragment extracts the model segment from a monitor hardware id.
// MONITOR\DEL4107\{4d36e96e-...}\0001 yields DEL4107; ids without two separators yield "".
func ModelFragment(hardwareID string) string {
	_, rest, ok := strings.Cut(hardwareID, `\`)
	if !ok {
		return ""
	}
	model, _, ok := strings.Cut(rest, `\`)
	if !ok {
		return ""
	}
	return model
}

// FriendlyName picks the best human-readable label for a device.
func FriendlyName(dev Device, names map[string]string, generic []string) string {
	if model := ModelFragment(dev.MonitorID); model != "" {
		if name, ok := names[model]; ok && name != "" {
			return name
		}
	}
	desc := strings.TrimSpace(dev.MonitorString)
	if desc != "" && !isGeneric(desc, generic) {
		return desc
	}
	return fmt.Sprintf("Display %d", displayNumber(dev))
}

// displayNumber returns the numeric suffix of the device name, or the 1-based index.
func displayNumber(dev Device) int {
	if suffix, ok := strings.CutPrefix(dev.Name, devicePrefix); ok {
		if n, err := strconv.Atoi(suffix); err == nil {
			return n
		}
	}
	return dev.Index + 1
}

// isGeneric reports whether desc matches one of the placeholder descriptions.
func isGeneric(desc string, generic []string) bool {
	for _, g := range generic {
		if strings.EqualFold(desc, strings.TrimSpace(g)) {
			return true
		}
	}
	return false
}

// DecodeFriendlyName converts a zero-padded array of UTF-16 code units into a string.
// WMI reports the units as 32-bit integers; surrogate pairs are joined.
func DecodeFriendlyName(units []int32) string {
	buf := make([]uint16, 0, len(units))
	for _, u := range units {
		if u == 0 {
			break
		}
		buf = append(buf, uint16(u))
	}
	return strings.TrimSpace(string(utf16.Decode(buf)))
}
