package display

import (
	"fmt"
	"log"
	"slices"
	"sync"

	"github.com/frudas24/screenoff/internal/logx"
)

// Enumerator lists actively driven outputs with friendly names.
type Enumerator struct {
	sys   System
	names NameProvider

	mu      sync.RWMutex
	generic []string
}

// NewEnumerator returns an enumerator over sys. names may be nil.
func NewEnumerator(sys System, names NameProvider, generic []string) *Enumerator {
	e := &Enumerator{sys: sys, names: names}
	e.SetGenericNames(generic)
	return e
}

// SetGenericNames replaces the placeholder descriptions skipped during naming.
func (e *Enumerator) SetGenericNames(generic []string) {
	if len(generic) == 0 {
		generic = DefaultGenericNames
	}
	e.mu.Lock()
	e.generic = slices.Clone(generic)
	e.mu.Unlock()
}

// Outputs returns every named device that reports a current mode, in OS order.
func (e *Enumerator) Outputs() ([]Output, error) {
	devices, err := e.sys.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating display devices: %w", err)
	}

	names := e.friendlyNames()
	e.mu.RLock()
	generic := e.generic
	e.mu.RUnlock()

	out := make([]Output, 0, len(devices))
	for _, dev := range devices {
		if dev.Name == "" {
			continue
		}
		mode, err := e.sys.CurrentMode(dev.Name)
		if err != nil {
			logx.Debugf("display: skipping %s: %v", dev.Name, err)
			continue
		}
		out = append(out, Output{
			ID:      dev.Name,
			Name:    FriendlyName(dev, names, generic),
			Primary: dev.Primary,
			Mode:    mode,
		})
	}
	return out, nil
}

// Primary returns the first device flagged as primary.
func (e *Enumerator) Primary() (string, bool) {
	devices, err := e.sys.Devices()
	if err != nil {
		log.Printf("display: primary lookup failed: %v", err)
		return "", false
	}
	for _, dev := range devices {
		if dev.Primary && dev.Name != "" {
			return dev.Name, true
		}
	}
	return "", false
}

// friendlyNames queries the identity provider, degrading to an empty map.
func (e *Enumerator) friendlyNames() map[string]string {
	if e.names == nil {
		return map[string]string{}
	}
	names, err := e.names.FriendlyNames()
	if err != nil {
		log.Printf("display: friendly names unavailable: %v", err)
		return map[string]string{}
	}
	return names
}

// Secondaries returns every output except the primary, in enumeration order.
// Without a primary the first output is kept out so at least one display stays on.
func Secondaries(outputs []Output, primary string, hasPrimary bool) []string {
	ids := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if hasPrimary && o.ID == primary {
			continue
		}
		ids = append(ids, o.ID)
	}
	if len(outputs) > 0 && len(ids) == len(outputs) {
		ids = ids[1:]
	}
	return ids
}
