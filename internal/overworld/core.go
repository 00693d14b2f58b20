// Package overworld wires the encounter population, spawn planner,
// outbreak controller and frame scheduler together and subscribes them to
// the engine lifecycle hooks.
//
// Hook listeners and the debug/interaction entry points must be called
// from the engine goroutine: the frame scheduler is single-threaded.
package overworld

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/hooks"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/outbreak"
	"github.com/udisondev/overworld/internal/scheduler"
	"github.com/udisondev/overworld/internal/spawn"
	"github.com/udisondev/overworld/internal/world"
)

// Rand is a random source. Population and controller each get their own.
type Rand interface {
	IntN(n int) int
}

// globalRand draws from the goroutine-safe math/rand/v2 top-level source.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Deps are the engine collaborators of a Core.
type Deps struct {
	Bus       *hooks.Bus
	Terrain   world.TerrainQuery
	Table     world.EncounterTable
	Catalog   world.SpeciesCatalog
	Factory   world.EntityFactory
	Effects   world.Effects
	Player    world.PlayerState
	Sight     world.TrainerSight
	Behaviors *behavior.Registry
	Tunables  *config.Tunables
	Journal   journal.Recorder

	// Optional. Nil means the process-wide source.
	SpawnRand    Rand
	OutbreakRand Rand
	// Optional. Nil means time.Now.
	Now func() time.Time
}

type debugRequests struct {
	outbreak bool
	panic    bool
	end      bool
}

// Core is the overworld encounter system.
type Core struct {
	player world.PlayerState
	tun    *config.Tunables

	pop   *spawn.Population
	ctrl  *outbreak.Controller
	sched *scheduler.FrameScheduler

	mu       sync.Mutex
	debug    debugRequests
	disabled bool
}

// New builds a Core and subscribes it to d.Bus.
func New(d Deps) *Core {
	if d.SpawnRand == nil {
		d.SpawnRand = globalRand{}
	}
	if d.OutbreakRand == nil {
		d.OutbreakRand = globalRand{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	planner := spawn.NewPlanner(d.Terrain, d.Table, d.Catalog, d.Sight, d.Tunables)
	pop := spawn.NewPopulation(spawn.Deps{
		Planner:   planner,
		Factory:   d.Factory,
		Effects:   d.Effects,
		Player:    d.Player,
		Sight:     d.Sight,
		Behaviors: d.Behaviors,
		Tunables:  d.Tunables,
		Journal:   d.Journal,
		Rand:      d.SpawnRand,
		Now:       d.Now,
	})
	ctrl := outbreak.New(outbreak.Deps{
		Population: pop,
		Player:     d.Player,
		Table:      d.Table,
		Catalog:    d.Catalog,
		Tunables:   d.Tunables,
		Journal:    d.Journal,
		Rand:       d.OutbreakRand,
		Now:        d.Now,
	})
	sched := scheduler.New(pop, d.Player, ctrl, d.Tunables)

	// The controller and population reference each other through
	// interfaces; close the loop after construction.
	pop.SetOutbreakSource(ctrl)
	ctrl.SetBurster(sched)

	c := &Core{
		player:   d.Player,
		tun:      d.Tunables,
		pop:      pop,
		ctrl:     ctrl,
		sched:    sched,
		disabled: d.Tunables.Bool(config.KeyDisabled),
	}
	if d.Bus != nil {
		c.Subscribe(d.Bus)
	}
	return c
}

// Subscribe registers the core's listeners on bus.
func (c *Core) Subscribe(bus *hooks.Bus) {
	bus.OnMapActivated(c.onMapActivated)
	bus.OnFrameTick(c.onFrameTick)
	bus.OnStep(c.onStep)
	bus.OnMenuClosed(c.onMenuClosed)
}

func (c *Core) enabled() bool {
	return !c.tun.Bool(config.KeyDisabled)
}

func (c *Core) onMapActivated(mapID model.MapID) {
	if !c.enabled() {
		return
	}
	recent := c.pop.OnMapActivated(mapID)
	c.ctrl.OnMapActivated(mapID)
	c.sched.OnMapChanged(mapID)
	if recent {
		// A revisit inside the cooldown leaves the population as it is and
		// drops any burst still filling it.
		c.sched.CancelBurst()
		return
	}

	if !c.tun.Bool(config.KeySpawnOnLoad) || c.tun.Blacklisted(mapID) {
		return
	}
	if c.pop.LiveCount(mapID) > 0 {
		return
	}
	count := min(c.tun.Int(config.KeyInitialSpawnCount), c.pop.Ceiling(mapID))
	c.sched.QueueBurst(mapID, count, spawn.FullMap)
}

func (c *Core) onFrameTick() {
	if !c.enabled() {
		return
	}
	c.ctrl.Tick()
	c.sched.Tick()
}

func (c *Core) onStep() {
	if !c.enabled() {
		return
	}
	c.pop.OnStep()
}

// onMenuClosed applies the disable toggle and pending debug requests.
func (c *Core) onMenuClosed() {
	disabled := c.tun.Bool(config.KeyDisabled)
	c.mu.Lock()
	wasDisabled := c.disabled
	c.disabled = disabled
	req := c.debug
	c.debug = debugRequests{}
	c.mu.Unlock()

	if disabled {
		if !wasDisabled {
			c.shutdown()
		}
		return
	}

	if req.end {
		if c.ctrl.Phase() != outbreak.Idle {
			c.ctrl.End()
		}
	}
	if req.outbreak {
		if !c.ctrl.ForceStart() {
			slog.Warn("forced outbreak rejected",
				"mapID", c.player.ActiveMapID(),
				"phase", c.ctrl.Phase())
		}
	}
	if req.panic {
		if !c.ctrl.StartPanic() {
			slog.Warn("forced shiny panic rejected", "phase", c.ctrl.Phase())
		}
	}
}

// shutdown tears down everything on the active map after encounters are
// switched off.
func (c *Core) shutdown() {
	mapID := c.player.ActiveMapID()
	if c.ctrl.Phase() != outbreak.Idle {
		c.ctrl.End()
	}
	c.sched.CancelBurst()
	n := c.pop.DestroyAllOnMap(mapID)
	slog.Info("encounters disabled", "mapID", mapID, "destroyed", n)
}

// ForceOutbreak requests an outbreak on the player's map when the menu closes.
func (c *Core) ForceOutbreak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug.outbreak = true
}

// ForcePanic requests a shiny panic when the menu closes.
func (c *Core) ForcePanic() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug.panic = true
}

// ForceEndOutbreak requests the current outbreak to end when the menu closes.
func (c *Core) ForceEndOutbreak() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debug.end = true
}

// Interact begins an interaction with id, composing a horde when enabled.
func (c *Core) Interact(id model.EntityID) (spawn.Interaction, bool) {
	if !c.enabled() {
		return spawn.Interaction{}, false
	}
	return c.pop.BeginInteraction(id)
}

// Release abandons an interaction without consuming its entities.
func (c *Core) Release(in spawn.Interaction) {
	c.pop.ReleaseInteraction(in)
}

// ReportOutcome retires ids after a battle or cancelled interaction.
func (c *Core) ReportOutcome(ids []model.EntityID, outcome model.Outcome) int {
	return c.pop.ReportOutcome(ids, outcome)
}

// Status returns the outbreak status snapshot.
func (c *Core) Status() outbreak.Status {
	return c.ctrl.Status()
}

// Snapshot describes the population of one map.
type Snapshot struct {
	MapID    model.MapID
	Live     int
	Ceiling  int
	Shiny    int
	Entities []model.Encounter
	Outbreak outbreak.Status
}

// Snapshot returns the population of mapID.
func (c *Core) Snapshot(mapID model.MapID) Snapshot {
	ents := c.pop.Entities(mapID)
	s := Snapshot{
		MapID:    mapID,
		Live:     c.pop.LiveCount(mapID),
		Ceiling:  c.pop.Ceiling(mapID),
		Entities: ents,
		Outbreak: c.ctrl.Status(),
	}
	for _, e := range ents {
		if e.Shiny {
			s.Shiny++
		}
	}
	return s
}

// PendingBurst reports the burst the scheduler is working through.
func (c *Core) PendingBurst() (model.MapID, int, bool) {
	return c.sched.Pending()
}
