package spawn

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/world"
)

const testMap model.MapID = 10

type fakePlayer struct {
	pos     model.Position
	mapID   model.MapID
	moving  bool
	surfing bool
	menu    bool
}

func (p *fakePlayer) Position() model.Position { return p.pos }
func (p *fakePlayer) IsMoving() bool           { return p.moving }
func (p *fakePlayer) ActiveMapID() model.MapID { return p.mapID }
func (p *fakePlayer) IsSurfing() bool          { return p.surfing }
func (p *fakePlayer) InMenu() bool             { return p.menu }

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedOutbreak struct {
	view OutbreakView
}

func (f *fixedOutbreak) View() OutbreakView { return f.view }

type recordingEffects struct {
	spawned, revealed, despawned []model.EntityID
}

func (e *recordingEffects) Spawned(enc model.Encounter) { e.spawned = append(e.spawned, enc.ID) }
func (e *recordingEffects) ShinyRevealed(enc model.Encounter) {
	e.revealed = append(e.revealed, enc.ID)
}
func (e *recordingEffects) Despawned(enc model.Encounter) { e.despawned = append(e.despawned, enc.ID) }

type panickingEffects struct{}

func (panickingEffects) Spawned(model.Encounter)       { panic("sparkle failed") }
func (panickingEffects) ShinyRevealed(model.Encounter) { panic("sparkle failed") }
func (panickingEffects) Despawned(model.Encounter)     { panic("sparkle failed") }

type testEnv struct {
	atlas    *world.Atlas
	factory  *world.Factory
	table    *world.StaticTable
	catalog  *world.Catalog
	player   *fakePlayer
	clock    *fakeClock
	outbreak *fixedOutbreak
	effects  *recordingEffects
	journal  *journal.Memory
	tun      *config.Tunables
	planner  *Planner
	pop      *Population
	rng      *rand.Rand
}

// newTestEnv builds a 24x24 all-grass map 10 with the player in the middle.
func newTestEnv(t *testing.T, tweak func(*config.Encounters)) *testEnv {
	t.Helper()

	cfg := config.DefaultEncounters()
	cfg.FusionEnabled = false
	cfg.HordeEnabled = true
	if tweak != nil {
		tweak(&cfg)
	}

	ids := world.NewObjectIDGenerator()
	atlas := world.NewAtlas(ids)
	atlas.Add(world.NewGridMap(testMap, 24, 24, world.TileGrass))

	rng := rand.New(rand.NewPCG(1, 2))
	table := world.NewStaticTable(rng)
	table.Set(testMap, model.CategoryGrass,
		world.Slot{Species: "PIDGEY", Weight: 50, MinLevel: 10, MaxLevel: 10},
		world.Slot{Species: "RATTATA", Weight: 50, MinLevel: 20, MaxLevel: 20},
	)
	table.Set(testMap, model.CategoryWater,
		world.Slot{Species: "MAGIKARP", Weight: 1, MinLevel: 5, MaxLevel: 5},
	)

	env := &testEnv{
		atlas:    atlas,
		factory:  world.NewFactory(atlas, ids),
		table:    table,
		catalog:  world.DemoCatalog(),
		player:   &fakePlayer{pos: model.NewPosition(12, 12), mapID: testMap},
		clock:    &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		outbreak: &fixedOutbreak{},
		effects:  &recordingEffects{},
		journal:  journal.NewMemory(),
		tun:      config.NewTunables(cfg),
		rng:      rng,
	}
	env.planner = NewPlanner(atlas, table, env.catalog, atlas, env.tun)
	env.pop = NewPopulation(Deps{
		Planner:   env.planner,
		Factory:   env.factory,
		Effects:   env.effects,
		Player:    env.player,
		Sight:     atlas,
		Behaviors: behavior.NewRegistry(),
		Outbreak:  env.outbreak,
		Tunables:  env.tun,
		Journal:   env.journal,
		Rand:      rng,
		Now:       env.clock.Now,
	})
	return env
}

// place creates an entity at an exact tile, bypassing tile selection.
func (e *testEnv) place(t *testing.T, pos model.Position, species model.Species, shiny bool, tags model.Tag) model.EntityID {
	t.Helper()
	id, ok := e.pop.SpawnDecision(Decision{
		MapID:     testMap,
		Pos:       pos,
		Category:  model.CategoryGrass,
		Candidate: Candidate{Species: species, Level: 5},
		Nature:    "HARDY",
		Shiny:     shiny,
		Tags:      tags,
	})
	if !ok {
		t.Fatalf("placing %s at %v failed", species, pos)
	}
	return id
}

// faultyFactory panics in the configured operations and otherwise delegates.
type faultyFactory struct {
	world.EntityFactory
	create, destroy, move bool
}

func (f faultyFactory) Create(mapID model.MapID, pos model.Position, enc model.Encounter) (model.EntityID, error) {
	if f.create {
		panic("sprite bank exhausted")
	}
	return f.EntityFactory.Create(mapID, pos, enc)
}

func (f faultyFactory) Destroy(id model.EntityID) error {
	if f.destroy {
		panic("entity already freed")
	}
	return f.EntityFactory.Destroy(id)
}

func (f faultyFactory) Move(id model.EntityID, pos model.Position) error {
	if f.move {
		panic("movement script crashed")
	}
	return f.EntityFactory.Move(id, pos)
}

// faultyTerrain panics on every category lookup.
type faultyTerrain struct {
	world.TerrainQuery
}

func (faultyTerrain) Category(model.MapID, model.Position) model.Category {
	panic("tile data corrupt")
}
