package world

import (
	"github.com/udisondev/overworld/internal/model"
)

var (
	routeGrass = []Slot{
		{Species: "PIDGEY", Weight: 30, MinLevel: 3, MaxLevel: 6},
		{Species: "RATTATA", Weight: 30, MinLevel: 3, MaxLevel: 5},
		{Species: "CATERPIE", Weight: 15, MinLevel: 3, MaxLevel: 5, Times: []model.TimeOfDay{model.Morning, model.Day}},
		{Species: "HOOTHOOT", Weight: 15, MinLevel: 3, MaxLevel: 5, Times: []model.TimeOfDay{model.Evening, model.Night}},
		{Species: "ODDISH", Weight: 15, MinLevel: 4, MaxLevel: 7},
		{Species: "PIKACHU", Weight: 5, MinLevel: 4, MaxLevel: 6},
		{Species: "WOOPER", Weight: 5, MinLevel: 4, MaxLevel: 6},
	}
	routeWater = []Slot{
		{Species: "MAGIKARP", Weight: 40, MinLevel: 5, MaxLevel: 15},
		{Species: "TENTACOOL", Weight: 30, MinLevel: 10, MaxLevel: 20},
		{Species: "PSYDUCK", Weight: 20, MinLevel: 10, MaxLevel: 20},
		{Species: "WIMPOD", Weight: 5, MinLevel: 15, MaxLevel: 20},
		{Species: "VELUZA", Weight: 5, MinLevel: 15, MaxLevel: 20},
	}
	caveFloor = []Slot{
		{Species: "ZUBAT", Weight: 50, MinLevel: 6, MaxLevel: 10},
		{Species: "GEODUDE", Weight: 35, MinLevel: 7, MaxLevel: 11},
		{Species: "ONIX", Weight: 10, MinLevel: 10, MaxLevel: 13},
		{Species: "SEEL", Weight: 5, MinLevel: 10, MaxLevel: 12},
	}

	demoTypes = map[model.Species][]string{
		"PIDGEY":    {"NORMAL", "FLYING"},
		"RATTATA":   {"NORMAL"},
		"CATERPIE":  {"BUG"},
		"HOOTHOOT":  {"NORMAL", "FLYING"},
		"ODDISH":    {"GRASS", "POISON"},
		"PIKACHU":   {"ELECTRIC"},
		"WOOPER":    {"WATER", "GROUND"},
		"MAGIKARP":  {"WATER"},
		"TENTACOOL": {"WATER", "POISON"},
		"PSYDUCK":   {"WATER"},
		"WIMPOD":    {"BUG", "WATER"},
		"VELUZA":    {"WATER", "PSYCHIC"},
		"ZUBAT":     {"POISON", "FLYING"},
		"GEODUDE":   {"ROCK", "GROUND"},
		"ONIX":      {"ROCK", "GROUND"},
		"SEEL":      {"WATER", "ICE"},
	}
)

// DemoCatalog returns the catalog covering the demo encounter tables.
func DemoCatalog() *Catalog {
	return NewCatalog(demoTypes)
}

// PopulateDemo fills table with demo slots for every map in atlas.
// Maps with cave floor get cave slots, others get grass slots; every map
// with water gets water slots.
func PopulateDemo(table *StaticTable, atlas *Atlas) {
	for _, id := range atlas.MapIDs() {
		g, _ := atlas.Map(id)
		if g.Count(model.CategoryCave) > 0 {
			table.Set(id, model.CategoryCave, caveFloor...)
		} else {
			table.Set(id, model.CategoryGrass, routeGrass...)
		}
		if g.Count(model.CategoryWater) > 0 {
			table.Set(id, model.CategoryWater, routeWater...)
		}
	}
}
