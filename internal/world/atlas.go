package world

import (
	"fmt"
	"slices"
	"sync"

	"github.com/udisondev/overworld/internal/model"
)

// Direction is the facing of a map event.
type Direction uint8

const (
	Down Direction = iota
	Left
	Right
	Up
)

// Delta returns the unit step for the direction.
func (d Direction) Delta() (int32, int32) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	default:
		return 0, 1
	}
}

// Trainer is a map event with a line of sight.
type Trainer struct {
	ID     model.EntityID
	Pos    model.Position
	Facing Direction
	Sight  int // tiles
}

type mapData struct {
	grid      *GridMap
	occupants map[model.Position]model.EntityID
	trainers  []Trainer
}

// Atlas holds every loaded map plus tile occupancy.
// Implements TerrainQuery and TrainerSight. Thread-safe.
type Atlas struct {
	mu   sync.RWMutex
	maps map[model.MapID]*mapData
	ids  *ObjectIDGenerator
}

// NewAtlas creates an empty atlas.
func NewAtlas(ids *ObjectIDGenerator) *Atlas {
	if ids == nil {
		ids = NewObjectIDGenerator()
	}
	return &Atlas{
		maps: make(map[model.MapID]*mapData),
		ids:  ids,
	}
}

// Add registers a map, replacing any map with the same id.
func (a *Atlas) Add(m *GridMap) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.maps[m.ID] = &mapData{
		grid:      m,
		occupants: make(map[model.Position]model.EntityID),
	}
}

// Map returns the grid for mapID.
func (a *Atlas) Map(mapID model.MapID) (*GridMap, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	md, ok := a.maps[mapID]
	if !ok {
		return nil, false
	}
	return md.grid, true
}

// MapIDs returns loaded map ids in ascending order.
func (a *Atlas) MapIDs() []model.MapID {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]model.MapID, 0, len(a.maps))
	for id := range a.maps {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Dimensions implements TerrainQuery.
func (a *Atlas) Dimensions(mapID model.MapID) (int32, int32, bool) {
	g, ok := a.Map(mapID)
	if !ok {
		return 0, 0, false
	}
	return g.Width, g.Height, true
}

// Category implements TerrainQuery.
func (a *Atlas) Category(mapID model.MapID, pos model.Position) model.Category {
	g, ok := a.Map(mapID)
	if !ok {
		return model.CategoryOther
	}
	t, _ := g.At(pos)
	return t.Category
}

// IsPassable implements TerrainQuery.
func (a *Atlas) IsPassable(mapID model.MapID, pos model.Position) bool {
	g, ok := a.Map(mapID)
	if !ok {
		return false
	}
	t, ok := g.At(pos)
	return ok && t.Passable
}

// IsOccupied implements TerrainQuery.
func (a *Atlas) IsOccupied(mapID model.MapID, pos model.Position) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	md, ok := a.maps[mapID]
	if !ok {
		return false
	}
	_, taken := md.occupants[pos]
	return taken
}

// OccupantAt returns the entity standing on pos.
func (a *Atlas) OccupantAt(mapID model.MapID, pos model.Position) (model.EntityID, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	md, ok := a.maps[mapID]
	if !ok {
		return 0, false
	}
	id, taken := md.occupants[pos]
	return id, taken
}

// Occupy places id on pos. Fails if the tile is taken by another entity.
func (a *Atlas) Occupy(mapID model.MapID, pos model.Position, id model.EntityID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	md, ok := a.maps[mapID]
	if !ok {
		return fmt.Errorf("occupy on map %d: %w", mapID, ErrUnknownMap)
	}
	if !md.grid.InBounds(pos) {
		return fmt.Errorf("occupy (%d,%d) on map %d: out of bounds", pos.X, pos.Y, mapID)
	}
	if cur, taken := md.occupants[pos]; taken && cur != id {
		return fmt.Errorf("tile (%d,%d) on map %d occupied by %d", pos.X, pos.Y, mapID, cur)
	}
	md.occupants[pos] = id
	return nil
}

// Vacate frees pos if id stands on it.
func (a *Atlas) Vacate(mapID model.MapID, pos model.Position, id model.EntityID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	md, ok := a.maps[mapID]
	if !ok {
		return
	}
	if cur, taken := md.occupants[pos]; taken && cur == id {
		delete(md.occupants, pos)
	}
}

// AddTrainer places a trainer on a map and returns its id.
func (a *Atlas) AddTrainer(mapID model.MapID, t Trainer) (model.EntityID, error) {
	if t.ID == 0 {
		t.ID = a.ids.NextEventID()
	}
	if err := a.Occupy(mapID, t.Pos, t.ID); err != nil {
		return 0, fmt.Errorf("adding trainer: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	md := a.maps[mapID]
	md.trainers = append(md.trainers, t)
	return t.ID, nil
}

// CanSee implements TrainerSight. A trainer sees tiles straight ahead up to
// its sight range; walls and other events block the line.
func (a *Atlas) CanSee(mapID model.MapID, pos model.Position) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	md, ok := a.maps[mapID]
	if !ok {
		return false
	}

	for _, t := range md.trainers {
		dx, dy := t.Facing.Delta()
		cur := t.Pos
		for range t.Sight {
			cur = cur.Offset(dx, dy)
			if cur == pos {
				return true
			}
			tile, ok := md.grid.At(cur)
			if !ok || !tile.Passable {
				break
			}
			if _, taken := md.occupants[cur]; taken {
				break
			}
		}
	}
	return false
}
