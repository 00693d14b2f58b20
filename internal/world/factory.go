package world

import (
	"fmt"
	"sync"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/model"
)

// Placed is an entity materialized by Factory.
type Placed struct {
	ID              model.EntityID
	MapID           model.MapID
	Pos             model.Position
	Species         model.Species
	Sprite          model.Species
	Shiny           bool
	BehaviorSpecies model.Species
	Profile         behavior.Profile
}

// Factory is an in-memory EntityFactory that keeps Atlas occupancy in sync.
type Factory struct {
	atlas *Atlas
	ids   *ObjectIDGenerator

	mu       sync.Mutex
	entities map[model.EntityID]*Placed
}

// NewFactory creates a factory placing entities on atlas.
func NewFactory(atlas *Atlas, ids *ObjectIDGenerator) *Factory {
	if ids == nil {
		ids = atlas.ids
	}
	return &Factory{
		atlas:    atlas,
		ids:      ids,
		entities: make(map[model.EntityID]*Placed),
	}
}

// Create implements EntityFactory.
func (f *Factory) Create(mapID model.MapID, pos model.Position, enc model.Encounter) (model.EntityID, error) {
	id := f.ids.NextEncounterID()
	if err := f.atlas.Occupy(mapID, pos, id); err != nil {
		return 0, fmt.Errorf("creating %s: %w", enc.Species, err)
	}

	f.mu.Lock()
	f.entities[id] = &Placed{
		ID:      id,
		MapID:   mapID,
		Pos:     pos,
		Species: enc.Species,
		Sprite:  enc.VisualSpecies(),
		Shiny:   enc.Shiny,
	}
	f.mu.Unlock()
	return id, nil
}

// Destroy implements EntityFactory.
func (f *Factory) Destroy(id model.EntityID) error {
	f.mu.Lock()
	p, ok := f.entities[id]
	if ok {
		delete(f.entities, id)
	}
	f.mu.Unlock()

	if !ok {
		return fmt.Errorf("destroying %d: %w", id, ErrUnknownEntity)
	}
	f.atlas.Vacate(p.MapID, p.Pos, id)
	return nil
}

// Move implements EntityFactory. Entities may walk onto passable tiles or
// swim within the category they stand on.
func (f *Factory) Move(id model.EntityID, pos model.Position) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.entities[id]
	if !ok {
		return fmt.Errorf("moving %d: %w", id, ErrUnknownEntity)
	}
	if pos == p.Pos {
		return nil
	}

	from := f.atlas.Category(p.MapID, p.Pos)
	to := f.atlas.Category(p.MapID, pos)
	if !f.atlas.IsPassable(p.MapID, pos) && !(from == model.CategoryWater && to == model.CategoryWater) {
		return fmt.Errorf("moving %d to (%d,%d): blocked", id, pos.X, pos.Y)
	}
	if err := f.atlas.Occupy(p.MapID, pos, id); err != nil {
		return fmt.Errorf("moving %d: %w", id, err)
	}
	f.atlas.Vacate(p.MapID, p.Pos, id)
	p.Pos = pos
	return nil
}

// SetBehaviorProfile implements EntityFactory.
func (f *Factory) SetBehaviorProfile(id model.EntityID, species model.Species, profile behavior.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.entities[id]
	if !ok {
		return fmt.Errorf("setting profile on %d: %w", id, ErrUnknownEntity)
	}
	p.BehaviorSpecies = species
	p.Profile = profile
	return nil
}

// Get returns a copy of the placed entity.
func (f *Factory) Get(id model.EntityID) (Placed, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.entities[id]
	if !ok {
		return Placed{}, false
	}
	return *p, true
}

// Count returns the number of entities placed on mapID.
func (f *Factory) Count(mapID model.MapID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.entities {
		if p.MapID == mapID {
			n++
		}
	}
	return n
}
