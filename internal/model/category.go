package model

import "time"

// Category is the terrain category of a tile and the encounter table it draws from.
type Category uint8

const (
	CategoryOther Category = iota
	CategoryGrass
	CategoryWater
	CategoryCave
	CategoryRock
)

// String returns category name.
func (c Category) String() string {
	switch c {
	case CategoryGrass:
		return "grass"
	case CategoryWater:
		return "water"
	case CategoryCave:
		return "cave"
	case CategoryRock:
		return "rock"
	default:
		return "other"
	}
}

// EncounterCategories are the categories an encounter table is keyed by.
// Grass doubles as the generic land category.
var EncounterCategories = []Category{CategoryGrass, CategoryWater, CategoryCave}

// TimeOfDay selects time-specific encounter table variants.
type TimeOfDay uint8

const (
	Morning TimeOfDay = iota
	Day
	Evening
	Night
)

// String returns time of day name.
func (t TimeOfDay) String() string {
	switch t {
	case Morning:
		return "morning"
	case Day:
		return "day"
	case Evening:
		return "evening"
	default:
		return "night"
	}
}

// TimeOfDayAt maps wall clock hour onto TimeOfDay.
//
//	05:00-09:59 morning, 10:00-16:59 day, 17:00-19:59 evening, otherwise night.
func TimeOfDayAt(t time.Time) TimeOfDay {
	h := t.Hour()
	switch {
	case h >= 5 && h < 10:
		return Morning
	case h >= 10 && h < 17:
		return Day
	case h >= 17 && h < 20:
		return Evening
	default:
		return Night
	}
}
