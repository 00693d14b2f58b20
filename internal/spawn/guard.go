package spawn

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/world"
)

// safeFactory turns a panicking entity factory into an error so the
// caller's bookkeeping runs to completion.
type safeFactory struct {
	f world.EntityFactory
}

func recoverInto(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("entity factory %s panicked: %v", op, r)
	}
}

func (s safeFactory) Create(mapID model.MapID, pos model.Position, enc model.Encounter) (id model.EntityID, err error) {
	defer recoverInto("create", &err)
	return s.f.Create(mapID, pos, enc)
}

func (s safeFactory) Destroy(id model.EntityID) (err error) {
	defer recoverInto("destroy", &err)
	return s.f.Destroy(id)
}

func (s safeFactory) Move(id model.EntityID, pos model.Position) (err error) {
	defer recoverInto("move", &err)
	return s.f.Move(id, pos)
}

func (s safeFactory) SetBehaviorProfile(id model.EntityID, species model.Species, profile behavior.Profile) (err error) {
	defer recoverInto("set behavior profile", &err)
	return s.f.SetBehaviorProfile(id, species, profile)
}

// locked runs fn under the population lock. The lock is released even if a
// collaborator queried inside fn (terrain, table, sight, player) panics; the
// panic is logged and the operation reports whatever fn completed.
func (p *Population) locked(op string, fn func()) {
	p.mu.Lock()
	defer func() {
		p.mu.Unlock()
		if r := recover(); r != nil {
			slog.Warn("population operation aborted by collaborator panic", "op", op, "panic", r)
		}
	}()
	fn()
}
