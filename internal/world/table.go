package world

import (
	"slices"
	"strings"
	"sync"

	"github.com/udisondev/overworld/internal/model"
)

// Rand is the random source used by world collaborators.
type Rand interface {
	IntN(n int) int
}

// Slot is one weighted entry of an encounter table.
// Empty Times means the slot is valid at any time of day.
type Slot struct {
	Species  model.Species     `yaml:"species"`
	Weight   int               `yaml:"weight"`
	MinLevel int               `yaml:"min_level"`
	MaxLevel int               `yaml:"max_level"`
	Times    []model.TimeOfDay `yaml:"times,omitempty"`
}

func (s Slot) validAt(tod model.TimeOfDay) bool {
	return len(s.Times) == 0 || slices.Contains(s.Times, tod)
}

// StaticTable is an in-memory EncounterTable. Thread-safe.
type StaticTable struct {
	mu     sync.Mutex
	rng    Rand
	tables map[model.MapID]map[model.Category][]Slot
}

// NewStaticTable creates an empty table drawing from rng.
func NewStaticTable(rng Rand) *StaticTable {
	return &StaticTable{
		rng:    rng,
		tables: make(map[model.MapID]map[model.Category][]Slot),
	}
}

// Set replaces the slots for (mapID, cat). Slots with non-positive weight are dropped.
func (t *StaticTable) Set(mapID model.MapID, cat model.Category, slots ...Slot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.Weight <= 0 || s.Species == "" {
			continue
		}
		if s.MaxLevel < s.MinLevel {
			s.MaxLevel = s.MinLevel
		}
		kept = append(kept, s)
	}

	byCat, ok := t.tables[mapID]
	if !ok {
		byCat = make(map[model.Category][]Slot)
		t.tables[mapID] = byCat
	}
	if len(kept) == 0 {
		delete(byCat, cat)
		return
	}
	byCat[cat] = kept
}

// Lookup implements EncounterTable. Picks a slot by weight, then a level
// uniformly in [MinLevel, MaxLevel].
func (t *StaticTable) Lookup(mapID model.MapID, cat model.Category, tod model.TimeOfDay) (model.Species, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var candidates []Slot
	total := 0
	for _, s := range t.tables[mapID][cat] {
		if s.validAt(tod) {
			candidates = append(candidates, s)
			total += s.Weight
		}
	}
	if total == 0 {
		return "", 0, false
	}

	roll := t.rng.IntN(total)
	for _, s := range candidates {
		roll -= s.Weight
		if roll >= 0 {
			continue
		}
		level := s.MinLevel + t.rng.IntN(s.MaxLevel-s.MinLevel+1)
		return s.Species, level, true
	}
	return "", 0, false
}

// HasCategory implements EncounterTable.
func (t *StaticTable) HasCategory(mapID model.MapID, cat model.Category) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tables[mapID][cat]) > 0
}

// RandomSpeciesForCategory implements EncounterTable. Samples a random map
// that has cat, then a random slot regardless of weight.
func (t *StaticTable) RandomSpeciesForCategory(cat model.Category) (model.Species, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var maps []model.MapID
	for id, byCat := range t.tables {
		if len(byCat[cat]) > 0 {
			maps = append(maps, id)
		}
	}
	if len(maps) == 0 {
		return "", false
	}
	// map iteration order is random; sort for reproducible draws
	slices.Sort(maps)

	slots := t.tables[maps[t.rng.IntN(len(maps))]][cat]
	return slots[t.rng.IntN(len(slots))].Species, true
}

// Catalog is an in-memory SpeciesCatalog keyed by elemental types.
type Catalog struct {
	types map[model.Species][]string
}

// NewCatalog creates a catalog from species → types.
func NewCatalog(types map[model.Species][]string) *Catalog {
	c := &Catalog{types: make(map[model.Species][]string, len(types))}
	for sp, ts := range types {
		norm := make([]string, len(ts))
		for i, tp := range ts {
			norm[i] = strings.ToUpper(tp)
		}
		c.types[sp] = norm
	}
	return c
}

// IsBase implements SpeciesCatalog. Fusion ids contain a slash.
func (c *Catalog) IsBase(species model.Species) bool {
	return species != "" && !strings.Contains(string(species), "/")
}

// Legal implements SpeciesCatalog. Pure Water and Water/Ice species may
// only appear on water. Unknown species are allowed everywhere.
func (c *Catalog) Legal(species model.Species, cat model.Category) bool {
	if cat == model.CategoryWater {
		return true
	}
	types, ok := c.types[species]
	if !ok || !slices.Contains(types, "WATER") {
		return true
	}
	for _, tp := range types {
		if tp != "WATER" && tp != "ICE" {
			return true
		}
	}
	return false
}
