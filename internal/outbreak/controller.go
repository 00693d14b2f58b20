// Package outbreak implements the mass outbreak state machine.
//
// Idle -> Scheduled (delay) -> Active (duration) -> Idle (cooldown), with
// an orthogonal shiny panic sub-state inside Active. The controller owns
// its state exclusively; population side effects are executed after its
// lock is released because the population reads View() under its own lock.
package outbreak

import (
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/spawn"
	"github.com/udisondev/overworld/internal/world"
)

const (
	// speciesTries bounds the global species search per category.
	speciesTries = 50
	// ambientRetry pushes the ambient trigger back while the player is on an invalid map.
	ambientRetry      = time.Minute
	panicRollInterval = time.Second
)

// Phase is the top-level outbreak state.
type Phase uint8

const (
	Idle Phase = iota
	Scheduled
	Active
)

// String returns phase name.
func (p Phase) String() string {
	switch p {
	case Scheduled:
		return "scheduled"
	case Active:
		return "active"
	default:
		return "idle"
	}
}

// Rand is the random source used for trigger, cooldown and panic rolls.
type Rand interface {
	IntN(n int) int
}

// Population is the subset of spawn.Population the controller drives.
type Population interface {
	SweepTagged(mapID model.MapID, tags model.Tag, forced bool) int
	UpgradeToShiny(mapID model.MapID) []model.EntityID
	SetCeilingOverride(mapID model.MapID, n int)
	ClearCeilingOverride(mapID model.MapID)
	Recount(mapID model.MapID) int
}

// Burster queues time-sliced spawns. Implemented by the frame scheduler.
type Burster interface {
	QueueBurst(mapID model.MapID, count int, mode spawn.Mode)
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Population Population
	Burster    Burster
	Player     world.PlayerState
	Table      world.EncounterTable
	Catalog    world.SpeciesCatalog
	Tunables   *config.Tunables
	Journal    journal.Recorder
	Rand       Rand
	Now        func() time.Time
}

// Controller is the outbreak state machine. Safe for concurrent use.
type Controller struct {
	pop     Population
	burster Burster
	player  world.PlayerState
	table   world.EncounterTable
	catalog world.SpeciesCatalog
	tun     *config.Tunables
	journal journal.Recorder
	rng     Rand
	now     func() time.Time

	mu          sync.Mutex
	phase       Phase
	mapID       model.MapID
	episode     uuid.UUID
	startAt     time.Time // Scheduled: when to start
	startedAt   time.Time
	endsAt      time.Time
	species     map[model.Category]model.Species
	nextAllowed time.Time // cooldown after the last outbreak
	nextAmbient time.Time // zero until the first idle tick

	panic        bool
	panicEndsAt  time.Time
	panicCleaned bool
	lastRoll     time.Time
}

// New creates an idle controller.
func New(d Deps) *Controller {
	c := &Controller{
		pop:     d.Population,
		burster: d.Burster,
		player:  d.Player,
		table:   d.Table,
		catalog: d.Catalog,
		tun:     d.Tunables,
		journal: d.Journal,
		rng:     d.Rand,
		now:     d.Now,
	}
	if c.journal == nil {
		c.journal = journal.Nop{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// SetBurster wires the burst queue after construction.
func (c *Controller) SetBurster(b Burster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.burster = b
}

// actions are population and journal calls collected under c.mu.
type actions struct {
	calls   []func()
	entries []journal.Entry
}

func (a *actions) do(f func()) { a.calls = append(a.calls, f) }

func (a *actions) record(e journal.Entry) { a.entries = append(a.entries, e) }

func (c *Controller) run(a *actions) {
	for _, f := range a.calls {
		callAction(f)
	}
	for _, e := range a.entries {
		journal.Safe(c.journal, e)
	}
}

func callAction(f func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("outbreak action panicked", "panic", r)
		}
	}()
	f()
}

// locked runs fn under the controller lock, releasing it even when a
// collaborator consulted inside fn panics.
func (c *Controller) locked(op string, fn func()) {
	c.mu.Lock()
	defer func() {
		c.mu.Unlock()
		if r := recover(); r != nil {
			slog.Warn("outbreak operation aborted by collaborator panic", "op", op, "panic", r)
		}
	}()
	fn()
}

// OnMapActivated interrupts an outbreak bound to another map and rolls the
// map-entry trigger.
func (c *Controller) OnMapActivated(mapID model.MapID) {
	var a actions
	c.locked("map activated", func() {
		now := c.now()
		if c.phase != Idle && c.mapID != mapID {
			c.stopLocked(now, "player left map", &a)
		}
		if c.phase == Idle {
			c.maybeScheduleLocked(now, mapID, &a)
		}
	})
	c.run(&a)
}

func (c *Controller) maybeScheduleLocked(now time.Time, mapID model.MapID, a *actions) {
	if !c.tun.Bool(config.KeyOutbreakEnabled) || c.tun.Blacklisted(mapID) {
		return
	}
	if now.Before(c.nextAllowed) {
		return
	}
	if c.rng.IntN(100) >= c.tun.Int(config.KeyOutbreakTriggerChance) {
		return
	}

	c.phase = Scheduled
	c.mapID = mapID
	c.startAt = now.Add(c.tun.OutbreakStartDelay())

	slog.Info("outbreak scheduled", "mapID", mapID, "startsIn", c.tun.OutbreakStartDelay())
	a.record(journal.Entry{At: now, Kind: journal.KindOutbreakScheduled, MapID: mapID})
}

// Tick advances every timer. Called once per frame.
func (c *Controller) Tick() {
	var a actions
	c.locked("tick", func() {
		c.tickLocked(c.now(), &a)
	})
	c.run(&a)
}

func (c *Controller) tickLocked(now time.Time, a *actions) {
	current := c.player.ActiveMapID()

	switch c.phase {
	case Scheduled:
		if current != c.mapID || c.tun.Blacklisted(c.mapID) {
			c.stopLocked(now, "scheduled map no longer valid", a)
			return
		}
		if !now.Before(c.startAt) {
			c.startLocked(now, c.mapID, a)
		}

	case Idle:
		if !c.tun.Bool(config.KeyOutbreakEnabled) || !c.tun.Bool(config.KeyOutbreakAmbientTrigger) {
			return
		}
		if c.nextAmbient.IsZero() {
			c.nextAmbient = now.Add(c.cooldownLocked())
			return
		}
		if now.Before(c.nextAmbient) || now.Before(c.nextAllowed) {
			return
		}
		if c.tun.Blacklisted(current) {
			c.nextAmbient = now.Add(ambientRetry)
			return
		}
		c.startLocked(now, current, a)

	case Active:
		if c.tun.Blacklisted(c.mapID) || current != c.mapID {
			c.stopLocked(now, "outbreak map no longer valid", a)
			return
		}
		if !now.Before(c.endsAt) {
			c.stopLocked(now, "expired", a)
			return
		}
		c.tickPanicLocked(now, a)
	}
}

func (c *Controller) tickPanicLocked(now time.Time, a *actions) {
	if c.panic {
		if !now.Before(c.panicEndsAt) {
			c.endPanicLocked(now, a)
		}
		return
	}
	if !c.tun.Bool(config.KeyShinyPanicEnabled) || now.Sub(c.lastRoll) < panicRollInterval {
		return
	}
	c.lastRoll = now
	if c.rng.IntN(c.tun.Int(config.KeyShinyPanicChance)) == 0 {
		c.startPanicLocked(now, a)
	}
}

// Start begins an outbreak on mapID immediately. Fails on blacklisted maps
// or while another outbreak is active.
func (c *Controller) Start(mapID model.MapID) bool {
	var (
		a  actions
		ok bool
	)
	c.locked("start", func() {
		ok = c.phase != Active && !c.tun.Blacklisted(mapID)
		if ok {
			c.startLocked(c.now(), mapID, &a)
		}
	})
	c.run(&a)
	return ok
}

// ForceStart starts an outbreak on the player's map, ignoring the trigger
// roll and cooldown.
func (c *Controller) ForceStart() bool {
	return c.Start(c.player.ActiveMapID())
}

func (c *Controller) startLocked(now time.Time, mapID model.MapID, a *actions) {
	c.phase = Active
	c.mapID = mapID
	c.episode = uuid.New()
	c.startedAt = now
	c.endsAt = now.Add(c.tun.OutbreakDuration())
	c.startAt = time.Time{}
	c.nextAmbient = time.Time{}
	c.panic = false
	c.panicCleaned = false
	c.lastRoll = now
	c.species = nil
	if c.tun.Bool(config.KeyOutbreakSameSpecies) {
		c.species = c.chooseSpeciesLocked(mapID, now)
	}

	ceiling := c.tun.Int(config.KeyOutbreakMaxOverride)
	count := c.tun.Int(config.KeyOutbreakSpawnCount)
	pop, burster := c.pop, c.burster
	a.do(func() {
		pop.SetCeilingOverride(mapID, ceiling)
		if burster != nil {
			burster.QueueBurst(mapID, count, spawn.NearPlayer)
		}
	})

	slog.Info("outbreak started",
		"mapID", mapID,
		"episode", c.episode,
		"duration", c.tun.OutbreakDuration(),
		"species", c.species,
		"ceiling", ceiling)
	a.record(journal.Entry{
		At:      now,
		Kind:    journal.KindOutbreakStarted,
		MapID:   mapID,
		Species: c.species[model.CategoryGrass],
		Episode: c.episode,
		Count:   count,
	})
}

// End stops an active or scheduled outbreak. Ending while idle is a
// logged no-op.
func (c *Controller) End() {
	var a actions
	c.locked("end", func() {
		if c.phase == Idle {
			slog.Warn("end requested with no outbreak")
			return
		}
		c.stopLocked(c.now(), "ended", &a)
	})
	c.run(&a)
}

// stopLocked returns to Idle. A scheduled outbreak is cancelled without
// side effects; an active one sweeps its map and starts the cooldown.
func (c *Controller) stopLocked(now time.Time, reason string, a *actions) {
	mapID, episode := c.mapID, c.episode
	wasActive := c.phase == Active

	c.phase = Idle
	c.mapID = 0
	c.episode = uuid.Nil
	c.startAt = time.Time{}
	c.endsAt = time.Time{}
	c.species = nil
	c.panic = false
	c.panicCleaned = false

	if !wasActive {
		slog.Debug("scheduled outbreak cancelled", "mapID", mapID, "reason", reason)
		return
	}

	cooldown := c.cooldownLocked()
	c.nextAllowed = now.Add(cooldown)

	pop := c.pop
	entry := journal.Entry{At: now, Kind: journal.KindOutbreakEnded, MapID: mapID, Episode: episode}
	a.do(func() {
		entry.Count = pop.SweepTagged(mapID, model.TagOutbreak, true)
		pop.ClearCeilingOverride(mapID)
		pop.Recount(mapID)
		journal.Safe(c.journal, entry)
	})

	slog.Info("outbreak ended",
		"mapID", mapID,
		"episode", episode,
		"reason", reason,
		"cooldown", cooldown)
}

// cooldownLocked draws a cooldown in [min, max).
func (c *Controller) cooldownLocked() time.Duration {
	lo, hi := c.tun.OutbreakCooldown()
	span := int((hi - lo) / time.Second)
	if span <= 0 {
		return lo
	}
	return lo + time.Duration(c.rng.IntN(span))*time.Second
}

// StartPanic enters shiny panic. Only valid while active and not already
// panicking.
func (c *Controller) StartPanic() bool {
	var (
		a  actions
		ok bool
	)
	c.locked("start panic", func() {
		ok = c.phase == Active && !c.panic
		if ok {
			c.startPanicLocked(c.now(), &a)
		}
	})
	c.run(&a)
	return ok
}

func (c *Controller) startPanicLocked(now time.Time, a *actions) {
	c.panic = true
	c.panicCleaned = false
	c.panicEndsAt = now.Add(c.tun.PanicDuration())

	pop, mapID := c.pop, c.mapID
	entry := journal.Entry{At: now, Kind: journal.KindPanicStarted, MapID: mapID, Episode: c.episode}
	a.do(func() {
		entry.Count = len(pop.UpgradeToShiny(mapID))
		journal.Safe(c.journal, entry)
	})

	slog.Info("shiny panic started",
		"mapID", mapID,
		"episode", c.episode,
		"duration", c.tun.PanicDuration())
}

func (c *Controller) endPanicLocked(now time.Time, a *actions) {
	c.panic = false
	if c.panicCleaned {
		return
	}
	c.panicCleaned = true

	cleanup := c.tun.Bool(config.KeyDeleteShiny)
	pop, mapID := c.pop, c.mapID
	entry := journal.Entry{At: now, Kind: journal.KindPanicEnded, MapID: mapID, Episode: c.episode}
	a.do(func() {
		if cleanup {
			entry.Count = pop.SweepTagged(mapID, model.TagOutbreak|model.TagPanicShiny, true)
		}
		journal.Safe(c.journal, entry)
	})

	slog.Info("shiny panic ended", "mapID", mapID, "cleanup", cleanup)
}

// chooseSpeciesLocked picks one species per encounter category from the
// global tables. Land falls back to the map's own table, then the default
// species; water and cave fall back to land at spawn time.
func (c *Controller) chooseSpeciesLocked(mapID model.MapID, now time.Time) map[model.Category]model.Species {
	out := make(map[model.Category]model.Species, len(model.EncounterCategories))
	for _, cat := range model.EncounterCategories {
		if sp, ok := c.randomSpecies(cat); ok {
			out[cat] = sp
			continue
		}
		if sp, _, ok := c.table.Lookup(mapID, cat, model.TimeOfDayAt(now)); ok {
			out[cat] = sp
			continue
		}
		if cat == model.CategoryGrass {
			out[cat] = c.tun.DefaultSpecies()
		}
	}
	return out
}

func (c *Controller) randomSpecies(cat model.Category) (model.Species, bool) {
	for range speciesTries {
		sp, ok := c.table.RandomSpeciesForCategory(cat)
		if !ok {
			return "", false
		}
		if c.catalog.IsBase(sp) && c.catalog.Legal(sp, cat) {
			return sp, true
		}
	}
	return "", false
}

// View implements spawn.OutbreakSource.
func (c *Controller) View() spawn.OutbreakView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := spawn.OutbreakView{SpawnInterval: c.tun.Int(config.KeyIdleIntervalFrames)}
	if c.phase != Active {
		return v
	}
	v.Active = true
	v.MapID = c.mapID
	v.Episode = c.episode
	v.ShinyRate = c.tun.Int(config.KeyOutbreakShinyRate)
	v.Panic = c.panic
	// Panic shinies must stay removable by the post-panic sweep.
	v.BlockShinyDespawn = !c.panic && c.tun.Bool(config.KeyOutbreakNoShinyDespawn)
	v.SpeciesLock = maps.Clone(c.species)
	v.SpawnInterval = c.tun.Int(config.KeyOutbreakSpawnRate)
	return v
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}
