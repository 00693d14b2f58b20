package config

import (
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/overworld/internal/model"
)

// Provider is a read-only typed lookup of tunables.
// ok=false means the provider has no value for the key.
type Provider interface {
	Int(key Key) (int, bool)
	Bool(key Key) (bool, bool)
}

// defaultCeiling applies when neither MaxEncounters nor MaxPerMap yields a value.
const defaultCeiling = 5

// Tunables resolves every key through an ordered provider chain, then the
// base Encounters, then the compiled defaults. Int values are clamped to the
// key's spec bounds. Safe for concurrent use if the providers are.
type Tunables struct {
	providers []Provider
	base      Encounters
	defaults  Encounters
}

// NewTunables creates a resolver. Providers are consulted in order before base.
func NewTunables(base Encounters, providers ...Provider) *Tunables {
	return &Tunables{
		providers: providers,
		base:      base,
		defaults:  DefaultEncounters(),
	}
}

// Int resolves an int key.
func (t *Tunables) Int(key Key) int {
	spec, hasSpec := Lookup(key)
	for _, p := range t.providers {
		if v, ok := safeInt(p, key); ok {
			if hasSpec {
				return spec.Clamp(v)
			}
			return v
		}
	}
	if v, ok := t.base.Int(key); ok && (!hasSpec || (v >= spec.Min && v <= spec.Max)) {
		return v
	}
	v, _ := t.defaults.Int(key)
	return v
}

// Bool resolves a bool key.
func (t *Tunables) Bool(key Key) bool {
	for _, p := range t.providers {
		if v, ok := safeBool(p, key); ok {
			return v
		}
	}
	if v, ok := t.base.Bool(key); ok {
		return v
	}
	v, _ := t.defaults.Bool(key)
	return v
}

func safeInt(p Provider, key Key) (v int, ok bool) {
	if p == nil {
		return 0, false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("config provider panicked", "key", key, "panic", r)
			v, ok = 0, false
		}
	}()
	return p.Int(key)
}

func safeBool(p Provider, key Key) (v bool, ok bool) {
	if p == nil {
		return false, false
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("config provider panicked", "key", key, "panic", r)
			v, ok = false, false
		}
	}()
	return p.Bool(key)
}

// Ceiling returns the population ceiling for a map outside of outbreaks.
func (t *Tunables) Ceiling(mapID model.MapID) int {
	if n := t.Int(KeyMaxEncounters); n > 0 {
		return n
	}
	perMap := t.base.MaxPerMap
	if len(perMap) == 0 {
		perMap = t.defaults.MaxPerMap
	}
	if n, ok := perMap[mapID]; ok {
		return n
	}
	if n, ok := perMap[0]; ok {
		return n
	}
	return defaultCeiling
}

// Blacklisted reports whether encounters are disabled on mapID.
// Map ids below 2 are always blacklisted.
func (t *Tunables) Blacklisted(mapID model.MapID) bool {
	if mapID < 2 {
		return true
	}
	return slices.Contains(t.base.BlacklistMaps, mapID)
}

// WaterBlacklisted reports whether water spawns are forbidden on mapID.
func (t *Tunables) WaterBlacklisted(mapID model.MapID) bool {
	return slices.Contains(t.base.BlacklistWaterMaps, mapID)
}

// DefaultSpecies is the last-resort land species for outbreaks.
func (t *Tunables) DefaultSpecies() model.Species {
	if t.base.DefaultSpecies != "" {
		return t.base.DefaultSpecies
	}
	return t.defaults.DefaultSpecies
}

// RevisitCooldown is the window in which re-entering a map skips the burst.
func (t *Tunables) RevisitCooldown() time.Duration {
	return time.Duration(t.Int(KeyRevisitCooldown)) * time.Second
}

// OutbreakDuration is how long an outbreak stays active.
func (t *Tunables) OutbreakDuration() time.Duration {
	return time.Duration(t.Int(KeyOutbreakDuration)) * time.Minute
}

// OutbreakStartDelay is the delay between scheduling and starting.
func (t *Tunables) OutbreakStartDelay() time.Duration {
	return time.Duration(t.Int(KeyOutbreakStartDelay)) * time.Second
}

// OutbreakCooldown returns the [min, max) cooldown window.
// A max below min collapses the window to min.
func (t *Tunables) OutbreakCooldown() (time.Duration, time.Duration) {
	lo := time.Duration(t.Int(KeyOutbreakCooldownMin)) * time.Minute
	hi := time.Duration(t.Int(KeyOutbreakCooldownMax)) * time.Minute
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// PanicDuration is how long a shiny panic lasts.
func (t *Tunables) PanicDuration() time.Duration {
	return time.Duration(t.Int(KeyShinyPanicDuration)) * time.Second
}

// NearRadius is the half-size of the near-player search square.
func (t *Tunables) NearRadius(outbreak bool) int {
	if outbreak {
		return t.Int(KeyOutbreakRadius)
	}
	// round(0.75 * max_distance)
	return (t.Int(KeyMaxDistance)*3 + 2) / 4
}
