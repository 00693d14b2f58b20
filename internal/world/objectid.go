package world

import (
	"sync/atomic"

	"github.com/udisondev/overworld/internal/model"
)

// ObjectIDGenerator hands out entity ids for everything placed on a map.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Map events (trainers, signs, warps)
//	0x20000000 - 0x2FFFFFFF: Encounter entities
//	0x30000000 - 0xFFFFFFFF: Reserved
type ObjectIDGenerator struct {
	nextEventID     atomic.Uint32
	nextEncounterID atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextEventID.Store(0x10000000)
	gen.nextEncounterID.Store(0x20000000)
	return gen
}

// NextEventID generates next map event id.
func (g *ObjectIDGenerator) NextEventID() model.EntityID {
	return model.EntityID(g.nextEventID.Add(1))
}

// NextEncounterID generates next encounter entity id.
// Thread-safe via atomic increment.
func (g *ObjectIDGenerator) NextEncounterID() model.EntityID {
	return model.EntityID(g.nextEncounterID.Add(1))
}

// IsEncounterID reports whether id falls in the encounter range.
func IsEncounterID(id model.EntityID) bool {
	return id > 0x20000000 && id < 0x30000000
}
