package spawn

import (
	"github.com/google/uuid"

	"github.com/udisondev/overworld/internal/model"
)

// OutbreakView is a snapshot of outbreak parameters consulted while
// planning and despawning. The zero value means no outbreak.
type OutbreakView struct {
	Active            bool
	MapID             model.MapID
	Episode           uuid.UUID
	ShinyRate         int
	Panic             bool
	BlockShinyDespawn bool
	SpeciesLock       map[model.Category]model.Species
	// SpawnInterval is the idle sweep threshold in frames.
	SpawnInterval int
}

// ActiveOn reports whether the outbreak is active and bound to mapID.
func (v OutbreakView) ActiveOn(mapID model.MapID) bool {
	return v.Active && v.MapID == mapID
}

// LockedSpecies returns the locked species for cat. Water and cave fall
// back to the land species.
func (v OutbreakView) LockedSpecies(cat model.Category) (model.Species, bool) {
	if len(v.SpeciesLock) == 0 {
		return "", false
	}
	if sp, ok := v.SpeciesLock[cat]; ok && sp != "" {
		return sp, true
	}
	sp, ok := v.SpeciesLock[model.CategoryGrass]
	return sp, ok && sp != ""
}

// OutbreakSource supplies the current outbreak view.
type OutbreakSource interface {
	View() OutbreakView
}

// NoOutbreak is an OutbreakSource that never has an outbreak.
type NoOutbreak struct{}

// View implements OutbreakSource.
func (NoOutbreak) View() OutbreakView { return OutbreakView{} }
