package model

import "time"

// EntityID is the engine-assigned id of a spawned encounter entity.
type EntityID uint32

// MapID identifies a game map.
type MapID int32

// Species is a species identifier, e.g. "PIDGEY".
type Species string

// Fusion describes a composite species. Body drives the overworld visual,
// Head drives behavior.
type Fusion struct {
	Body Species
	Head Species
}

// Species returns the composite species id ("BODY/HEAD").
func (f Fusion) Species() Species {
	return f.Body + "/" + f.Head
}

// State is the lifecycle state of an encounter entity.
type State uint8

const (
	StateActive State = iota
	StateLocked
	StateDestroyed
)

// String returns state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateLocked:
		return "locked"
	default:
		return "destroyed"
	}
}

// Tag is a bit set of encounter markers.
type Tag uint8

const (
	TagFusion Tag = 1 << iota
	TagHorde
	TagOutbreak
	TagPanicShiny
)

// Has reports whether all bits of flag are set.
func (t Tag) Has(flag Tag) bool {
	return t&flag == flag
}

// Kind is the primary classification derived from tags.
type Kind uint8

const (
	KindNormal Kind = iota
	KindFusion
	KindHordeMember
	KindOutbreak
	KindOutbreakShinyPanic
)

// String returns kind name.
func (k Kind) String() string {
	switch k {
	case KindFusion:
		return "fusion"
	case KindHordeMember:
		return "horde-member"
	case KindOutbreak:
		return "outbreak"
	case KindOutbreakShinyPanic:
		return "outbreak-shiny-panic"
	default:
		return "normal"
	}
}

// Kind returns the most specific kind the tags describe.
func (t Tag) Kind() Kind {
	switch {
	case t.Has(TagPanicShiny):
		return KindOutbreakShinyPanic
	case t.Has(TagOutbreak):
		return KindOutbreak
	case t.Has(TagHorde):
		return KindHordeMember
	case t.Has(TagFusion):
		return KindFusion
	default:
		return KindNormal
	}
}

// Encounter is a spawned wild-creature entity placed on a map.
// Owned and mutated exclusively by spawn.Population; everyone else gets copies.
type Encounter struct {
	ID        EntityID
	MapID     MapID
	Pos       Position
	Species   Species
	Fusion    *Fusion
	Nature    string
	Level     int
	Shiny     bool
	Tags      Tag
	CreatedAt time.Time
	State     State

	// Revision increments on every mutation; used to detect changes between scan and claim.
	Revision uint64
	// Claim is the interaction token holding the lock, 0 when unclaimed.
	Claim uint64
}

// Kind returns encounter kind.
func (e *Encounter) Kind() Kind {
	return e.Tags.Kind()
}

// Live reports whether the entity still counts toward population.
func (e *Encounter) Live() bool {
	return e.State == StateActive || e.State == StateLocked
}

// Interactable reports whether player input may target this entity.
func (e *Encounter) Interactable() bool {
	return e.State == StateActive
}

// BehaviorSpecies returns the species that drives movement behavior.
func (e *Encounter) BehaviorSpecies() Species {
	if e.Fusion != nil {
		return e.Fusion.Head
	}
	return e.Species
}

// VisualSpecies returns the species shown on the map. Fusions show their body
// species until revealed as shiny.
func (e *Encounter) VisualSpecies() Species {
	if e.Fusion != nil && !e.Shiny {
		return e.Fusion.Body
	}
	return e.Species
}

// Touch bumps revision after a mutation.
func (e *Encounter) Touch() {
	e.Revision++
}
