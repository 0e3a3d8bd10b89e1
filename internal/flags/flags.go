// Package flags holds feature switches for editor behavior that is still
// settling. Flags are read-only after initialization; unknown flags are off.
package flags

import (
	"fmt"
	"maps"
	"slices"

	"github.com/usekona/kona/internal/log"
)

const (
	// FlagQuitConfirm asks before quitting with unsaved changes.
	FlagQuitConfirm = "quit-confirm"

	// FlagSidebar shows plugin UI, such as the table of contents, beside
	// the document on wide terminals.
	FlagSidebar = "sidebar"

	// FlagLogOverlay enables the in-editor log viewer (f12). Needs debug.
	FlagLogOverlay = "log-overlay"
)

// Defaults returns the flag values used when the config sets none.
func Defaults() map[string]bool {
	return map[string]bool{
		FlagQuitConfirm: true,
		FlagSidebar:     true,
		FlagLogOverlay:  false,
	}
}

// Validate rejects flag names kona does not know.
func Validate(flags map[string]bool) error {
	known := Defaults()
	for name := range flags {
		if _, ok := known[name]; !ok {
			names := slices.Sorted(maps.Keys(known))
			return fmt.Errorf("unknown flag %q (known: %v)", name, names)
		}
	}
	return nil
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from Defaults() overridden by flags.
func New(flags map[string]bool) *Registry {
	merged := Defaults()
	maps.Copy(merged, flags)
	r := &Registry{flags: merged}
	log.Debug(log.CatConfig, "Feature flags initialized", "count", len(merged), "flags", r.All())
	return r
}

// Enabled returns true if the named flag is enabled.
// Returns false for unknown flags and on a nil registry.
func (r *Registry) Enabled(name string) bool {
	if r == nil || r.flags == nil {
		return false
	}
	value, exists := r.flags[name]
	if !exists {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name, "result", false)
		return false
	}
	return value
}

// All returns a copy of all flags.
func (r *Registry) All() map[string]bool {
	if r == nil || r.flags == nil {
		return make(map[string]bool)
	}
	return maps.Clone(r.flags)
}
