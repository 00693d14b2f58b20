// Package world defines the engine collaborators the encounter controller
// consumes and provides in-memory implementations used by the simulator
// and tests.
package world

import (
	"errors"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/model"
)

// ErrUnknownMap is returned when a map id has no loaded data.
var ErrUnknownMap = errors.New("unknown map")

// ErrUnknownEntity is returned when an entity id is not registered.
var ErrUnknownEntity = errors.New("unknown entity")

// TerrainQuery answers tile questions for any loaded map.
// Out-of-bounds tiles report CategoryOther and are impassable.
type TerrainQuery interface {
	Dimensions(mapID model.MapID) (w, h int32, ok bool)
	Category(mapID model.MapID, pos model.Position) model.Category
	IsPassable(mapID model.MapID, pos model.Position) bool
	IsOccupied(mapID model.MapID, pos model.Position) bool
}

// EncounterTable is the wild encounter lookup.
type EncounterTable interface {
	// Lookup picks a weighted species and base level for the map.
	Lookup(mapID model.MapID, cat model.Category, tod model.TimeOfDay) (model.Species, int, bool)
	// HasCategory reports whether the map has any table for cat.
	HasCategory(mapID model.MapID, cat model.Category) bool
	// RandomSpeciesForCategory samples across every map.
	RandomSpeciesForCategory(cat model.Category) (model.Species, bool)
}

// SpeciesCatalog answers species facts.
type SpeciesCatalog interface {
	// IsBase reports whether species is a plain (non-fusion) species.
	IsBase(species model.Species) bool
	// Legal reports whether species may appear on cat terrain.
	Legal(species model.Species, cat model.Category) bool
}

// EntityFactory materializes encounter entities in the engine.
type EntityFactory interface {
	Create(mapID model.MapID, pos model.Position, enc model.Encounter) (model.EntityID, error)
	Destroy(id model.EntityID) error
	Move(id model.EntityID, pos model.Position) error
	SetBehaviorProfile(id model.EntityID, species model.Species, profile behavior.Profile) error
}

// Effects are fire-and-forget presentation hooks (sparkles, sounds, sprite swaps).
// Callers must tolerate implementations that panic.
type Effects interface {
	Spawned(enc model.Encounter)
	ShinyRevealed(enc model.Encounter)
	Despawned(enc model.Encounter)
}

// PlayerState is the read-only view of the player.
type PlayerState interface {
	Position() model.Position
	IsMoving() bool
	ActiveMapID() model.MapID
	IsSurfing() bool
	InMenu() bool
}

// TrainerSight reports whether any trainer on the map can see pos.
type TrainerSight interface {
	CanSee(mapID model.MapID, pos model.Position) bool
}

// NopEffects discards every effect.
type NopEffects struct{}

func (NopEffects) Spawned(model.Encounter)       {}
func (NopEffects) ShinyRevealed(model.Encounter) {}
func (NopEffects) Despawned(model.Encounter)     {}

// NoTrainers never sees anything.
type NoTrainers struct{}

func (NoTrainers) CanSee(model.MapID, model.Position) bool { return false }
