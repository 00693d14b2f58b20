package spawn

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/world"
)

// Deps are the collaborators of a Population.
type Deps struct {
	Planner   *Planner
	Factory   world.EntityFactory
	Effects   world.Effects
	Player    world.PlayerState
	Sight     world.TrainerSight
	Behaviors *behavior.Registry
	Outbreak  OutbreakSource
	Tunables  *config.Tunables
	Journal   journal.Recorder
	Rand      Rand
	Now       func() time.Time
}

type mapState struct {
	live      int
	override  int // ceiling override, 0 = none
	lastVisit time.Time
}

// Population owns every live encounter entity and the per-map population
// state. All mutation goes through one mutex; the planner runs under it so
// a ceiling check and the create that follows are atomic.
type Population struct {
	planner   *Planner
	factory   world.EntityFactory
	effects   world.Effects
	player    world.PlayerState
	sight     world.TrainerSight
	behaviors *behavior.Registry
	outbreak  OutbreakSource
	tun       *config.Tunables
	journal   journal.Recorder
	rng       Rand
	now       func() time.Time

	mu        sync.Mutex
	entities  map[model.EntityID]*model.Encounter
	maps      map[model.MapID]*mapState
	lastClaim uint64
}

// NewPopulation creates a population. Nil optional collaborators are
// replaced with no-op implementations.
func NewPopulation(d Deps) *Population {
	p := &Population{
		planner:   d.Planner,
		factory:   safeFactory{f: d.Factory},
		effects:   d.Effects,
		player:    d.Player,
		sight:     d.Sight,
		behaviors: d.Behaviors,
		outbreak:  d.Outbreak,
		tun:       d.Tunables,
		journal:   d.Journal,
		rng:       d.Rand,
		now:       d.Now,
		entities:  make(map[model.EntityID]*model.Encounter),
		maps:      make(map[model.MapID]*mapState),
	}
	if p.effects == nil {
		p.effects = world.NopEffects{}
	}
	if p.sight == nil {
		p.sight = world.NoTrainers{}
	}
	if p.behaviors == nil {
		p.behaviors = behavior.NewRegistry()
	}
	if p.outbreak == nil {
		p.outbreak = NoOutbreak{}
	}
	if p.journal == nil {
		p.journal = journal.Nop{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// SetOutbreakSource replaces the outbreak source. Used to break the
// construction cycle with the outbreak controller.
func (p *Population) SetOutbreakSource(src OutbreakSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if src == nil {
		src = NoOutbreak{}
	}
	p.outbreak = src
}

func (p *Population) state(mapID model.MapID) *mapState {
	st, ok := p.maps[mapID]
	if !ok {
		st = &mapState{}
		p.maps[mapID] = st
	}
	return st
}

// OnMapActivated recounts the map and records the visit. Returns whether
// the previous visit happened within the revisit cooldown.
func (p *Population) OnMapActivated(mapID model.MapID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	st := p.state(mapID)
	recent := !st.lastVisit.IsZero() && now.Sub(st.lastVisit) < p.tun.RevisitCooldown()
	st.lastVisit = now
	p.recountLocked(mapID)

	slog.Debug("map activated",
		"mapID", mapID,
		"live", st.live,
		"recentlyVisited", recent)
	return recent
}

// Recount resets the live count of mapID to the number of live entities.
func (p *Population) Recount(mapID model.MapID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recountLocked(mapID)
}

func (p *Population) recountLocked(mapID model.MapID) int {
	n := 0
	for _, e := range p.entities {
		if e.MapID == mapID && e.Live() {
			n++
		}
	}
	p.state(mapID).live = n
	return n
}

// LiveCount returns the live count of mapID.
func (p *Population) LiveCount(mapID model.MapID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state(mapID).live
}

// Ceiling returns the population ceiling of mapID.
func (p *Population) Ceiling(mapID model.MapID) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ceilingLocked(mapID)
}

func (p *Population) ceilingLocked(mapID model.MapID) int {
	if o := p.state(mapID).override; o > 0 {
		return o
	}
	return p.tun.Ceiling(mapID)
}

// SetCeilingOverride raises or lowers the ceiling of mapID until cleared.
func (p *Population) SetCeilingOverride(mapID model.MapID, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state(mapID).override = max(n, 0)
}

// ClearCeilingOverride restores the configured ceiling of mapID.
func (p *Population) ClearCeilingOverride(mapID model.MapID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state(mapID).override = 0
}

// Spawn plans and creates one encounter on the active map.
func (p *Population) Spawn(mode Mode) (model.EntityID, bool) {
	var (
		out pending
		id  model.EntityID
		ok  bool
	)
	p.locked("spawn", func() {
		id, ok = p.spawnLocked(mode, &out)
	})
	out.fire(p)
	return id, ok
}

func (p *Population) spawnLocked(mode Mode, out *pending) (model.EntityID, bool) {
	mapID := p.player.ActiveMapID()
	if p.tun.Bool(config.KeyDisabled) || p.tun.Blacklisted(mapID) {
		return 0, false
	}
	if p.state(mapID).live >= p.ceilingLocked(mapID) {
		return 0, false
	}

	view := p.outbreak.View()
	d, ok := p.planner.Plan(p.rng, Request{
		MapID:    mapID,
		Player:   p.player.Position(),
		Surfing:  p.player.IsSurfing(),
		Mode:     mode,
		Outbreak: view,
		Time:     p.now(),
	})
	if !ok {
		if p.tun.Bool(config.KeyLogSpawns) {
			slog.Debug("no spawn planned", "mapID", mapID, "mode", mode)
		}
		return 0, false
	}
	return p.createLocked(d, view, out)
}

// SpawnDecision creates an encounter from an existing plan. Fails if the
// target map is at its ceiling or the factory rejects the entity.
func (p *Population) SpawnDecision(d Decision) (model.EntityID, bool) {
	var (
		out pending
		id  model.EntityID
		ok  bool
	)
	p.locked("spawn decision", func() {
		if p.state(d.MapID).live < p.ceilingLocked(d.MapID) {
			id, ok = p.createLocked(d, p.outbreak.View(), &out)
		}
	})
	out.fire(p)
	return id, ok
}

func (p *Population) createLocked(d Decision, view OutbreakView, out *pending) (model.EntityID, bool) {
	enc := &model.Encounter{
		MapID:     d.MapID,
		Pos:       d.Pos,
		Species:   d.Species,
		Fusion:    d.Fusion,
		Nature:    d.Nature,
		Level:     d.Level,
		Shiny:     d.Shiny,
		Tags:      d.Tags,
		CreatedAt: p.now(),
		State:     model.StateActive,
	}

	id, err := p.factory.Create(d.MapID, d.Pos, *enc)
	if err != nil {
		slog.Warn("entity factory rejected encounter",
			"mapID", d.MapID,
			"species", d.Species,
			"error", err)
		return 0, false
	}
	enc.ID = id

	profile := p.behaviors.Resolve(enc.BehaviorSpecies(), enc.Nature)
	if err := p.factory.SetBehaviorProfile(id, enc.BehaviorSpecies(), profile); err != nil {
		slog.Warn("setting behavior profile", "entityID", id, "error", err)
	}

	p.entities[id] = enc
	p.state(d.MapID).live++

	if p.tun.Bool(config.KeyLogSpawns) {
		slog.Debug("encounter spawned",
			"mapID", d.MapID,
			"entityID", id,
			"species", enc.Species,
			"level", enc.Level,
			"shiny", enc.Shiny,
			"kind", enc.Kind(),
			"behavior", profile.Name)
	}

	entry := journal.EncounterEntry(enc.CreatedAt, journal.KindSpawned, enc)
	if view.ActiveOn(d.MapID) {
		entry.Episode = view.Episode
	}
	out.spawned(*enc, entry)
	return id, true
}

// Destroy removes an entity. Idempotent: unknown ids are a logged no-op.
// A non-forced destroy of a shiny is refused when the never-delete-shiny
// policy is on or the outbreak blocks shiny despawn; a non-forced destroy
// of a locked entity is always refused.
func (p *Population) Destroy(id model.EntityID, playEffects, forced bool) bool {
	var (
		out pending
		ok  bool
	)
	p.locked("destroy", func() {
		ok = p.destroyLocked(id, playEffects, forced, "", &out)
	})
	out.fire(p)
	return ok
}

func (p *Population) destroyLocked(id model.EntityID, playEffects, forced bool, outcome string, out *pending) bool {
	enc, ok := p.entities[id]
	if !ok {
		slog.Warn("destroy of unknown encounter", "entityID", id)
		return false
	}

	if !forced {
		if enc.State == model.StateLocked {
			return false
		}
		if enc.Shiny && !p.shinyMayDespawnLocked(enc) {
			return false
		}
	}

	if err := p.factory.Destroy(id); err != nil {
		slog.Warn("entity factory destroy failed", "entityID", id, "error", err)
	}

	enc.State = model.StateDestroyed
	enc.Touch()
	delete(p.entities, id)

	st := p.state(enc.MapID)
	if st.live > 0 {
		st.live--
	} else {
		slog.Warn("live count underflow clamped", "mapID", enc.MapID, "entityID", id)
	}

	if p.tun.Bool(config.KeyLogSpawns) {
		slog.Debug("encounter despawned",
			"mapID", enc.MapID,
			"entityID", id,
			"species", enc.Species,
			"forced", forced)
	}

	entry := journal.EncounterEntry(p.now(), journal.KindDespawned, enc)
	entry.Outcome = outcome
	out.despawned(*enc, playEffects, entry)
	return true
}

func (p *Population) shinyMayDespawnLocked(enc *model.Encounter) bool {
	if !p.tun.Bool(config.KeyDeleteShiny) {
		return false
	}
	view := p.outbreak.View()
	return !(view.BlockShinyDespawn && view.ActiveOn(enc.MapID))
}

// IdleSweep runs the idle tick for every entity on the active map.
func (p *Population) IdleSweep() {
	var out pending
	p.locked("idle sweep", func() {
		mapID := p.player.ActiveMapID()
		for _, enc := range p.onMapLocked(mapID) {
			p.idleTickLocked(enc, &out)
		}
	})
	out.fire(p)
}

// IdleTick runs the idle behavior of one entity.
func (p *Population) IdleTick(id model.EntityID) {
	var out pending
	p.locked("idle tick", func() {
		if enc, ok := p.entities[id]; ok {
			p.idleTickLocked(enc, &out)
		}
	})
	out.fire(p)
}

var idleSteps = [4]struct{ dx, dy int32 }{{0, 1}, {-1, 0}, {1, 0}, {0, -1}}

func (p *Population) idleTickLocked(enc *model.Encounter, out *pending) {
	if p.rng.IntN(p.tun.Int(config.KeyIdleSkipChance)) == 0 {
		return
	}
	if enc.State != model.StateActive {
		return
	}

	if p.rng.IntN(p.tun.Int(config.KeyIdleDespawnChance)) == 0 && !enc.Shiny {
		p.destroyLocked(enc.ID, true, false, "", out)
		return
	}

	step := idleSteps[p.rng.IntN(len(idleSteps))]
	next := enc.Pos.Offset(step.dx, step.dy)
	if err := p.factory.Move(enc.ID, next); err == nil {
		enc.Pos = next
		enc.Touch()
	}

	if p.tun.Bool(config.KeyDeleteFarEvents) && enc.MapID == p.player.ActiveMapID() {
		if enc.Pos.Distance(p.player.Position()) > p.tun.Int(config.KeyMaxDistance) {
			p.destroyLocked(enc.ID, true, false, "", out)
		}
	}
}

// SweepTagged destroys every entity on mapID carrying all bits of tags.
// Works for any map, active or not. Returns the number destroyed.
func (p *Population) SweepTagged(mapID model.MapID, tags model.Tag, forced bool) int {
	var out pending
	n := 0
	p.locked("sweep tagged", func() {
		for _, enc := range p.onMapLocked(mapID) {
			if enc.Tags.Has(tags) && p.destroyLocked(enc.ID, true, forced, "", &out) {
				n++
			}
		}
	})
	out.fire(p)
	return n
}

// DestroyAllOnMap force-destroys every entity on mapID.
func (p *Population) DestroyAllOnMap(mapID model.MapID) int {
	var out pending
	n := 0
	p.locked("destroy all", func() {
		for _, enc := range p.onMapLocked(mapID) {
			if p.destroyLocked(enc.ID, true, true, "", &out) {
				n++
			}
		}
	})
	out.fire(p)
	return n
}

// UpgradeToShiny turns every live, non-shiny outbreak entity on mapID
// shiny in place and tags it as a panic shiny. Returns the upgraded ids.
func (p *Population) UpgradeToShiny(mapID model.MapID) []model.EntityID {
	var (
		out pending
		ids []model.EntityID
	)
	p.locked("upgrade to shiny", func() {
		view := p.outbreak.View()
		for _, enc := range p.onMapLocked(mapID) {
			if !enc.Tags.Has(model.TagOutbreak) || enc.Shiny {
				continue
			}
			enc.Shiny = true
			enc.Tags |= model.TagPanicShiny
			enc.Touch()
			ids = append(ids, enc.ID)

			entry := journal.EncounterEntry(p.now(), journal.KindShinyRevealed, enc)
			entry.Episode = view.Episode
			out.revealed(*enc, entry)
		}
	})
	out.fire(p)
	return ids
}

// OnStep destroys encounters on the active map that a trainer can see.
// Shiny protection applies.
func (p *Population) OnStep() int {
	var out pending
	n := 0
	p.locked("step", func() {
		mapID := p.player.ActiveMapID()
		for _, enc := range p.onMapLocked(mapID) {
			if p.sight.CanSee(mapID, enc.Pos) && p.destroyLocked(enc.ID, true, false, "", &out) {
				n++
			}
		}
	})
	out.fire(p)
	return n
}

// ReportOutcome retires every listed entity after an interaction. Always
// forced: battle outcomes consume the encounter regardless of rarity.
func (p *Population) ReportOutcome(ids []model.EntityID, outcome model.Outcome) int {
	var out pending
	n := 0
	p.locked("report outcome", func() {
		for _, id := range ids {
			if p.destroyLocked(id, true, true, outcome.String(), &out) {
				n++
			}
		}
	})
	out.fire(p)
	return n
}

// Entity returns a copy of a live entity.
func (p *Population) Entity(id model.EntityID) (model.Encounter, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	enc, ok := p.entities[id]
	if !ok {
		return model.Encounter{}, false
	}
	return *enc, true
}

// Entities returns copies of every live entity on mapID ordered by id.
func (p *Population) Entities(mapID model.MapID) []model.Encounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	list := p.onMapLocked(mapID)
	out := make([]model.Encounter, len(list))
	for i, enc := range list {
		out[i] = *enc
	}
	return out
}

// onMapLocked returns live entities of mapID ordered by id so that random
// draws consumed per entity are reproducible.
func (p *Population) onMapLocked(mapID model.MapID) []*model.Encounter {
	var list []*model.Encounter
	for _, enc := range p.entities {
		if enc.MapID == mapID && enc.Live() {
			list = append(list, enc)
		}
	}
	slices.SortFunc(list, func(a, b *model.Encounter) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return list
}
