package outbreak

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/spawn"
	"github.com/udisondev/overworld/internal/world"
)

type sweep struct {
	mapID  model.MapID
	tags   model.Tag
	forced bool
}

type burst struct {
	mapID model.MapID
	count int
	mode  spawn.Mode
}

// mockPopulation records every call made by the controller.
type mockPopulation struct {
	sweeps    []sweep
	upgrades  []model.MapID
	overrides map[model.MapID]int
	recounts  []model.MapID
	upgraded  int
	swept     int
	broken    bool
}

func newMockPopulation() *mockPopulation {
	return &mockPopulation{overrides: make(map[model.MapID]int)}
}

func (m *mockPopulation) SweepTagged(mapID model.MapID, tags model.Tag, forced bool) int {
	if m.broken {
		panic("population sweep failed")
	}
	m.sweeps = append(m.sweeps, sweep{mapID, tags, forced})
	return m.swept
}

func (m *mockPopulation) UpgradeToShiny(mapID model.MapID) []model.EntityID {
	m.upgrades = append(m.upgrades, mapID)
	return make([]model.EntityID, m.upgraded)
}

func (m *mockPopulation) SetCeilingOverride(mapID model.MapID, n int) { m.overrides[mapID] = n }
func (m *mockPopulation) ClearCeilingOverride(mapID model.MapID)      { delete(m.overrides, mapID) }
func (m *mockPopulation) Recount(mapID model.MapID) int {
	m.recounts = append(m.recounts, mapID)
	return 0
}

type mockBurster struct {
	bursts []burst
}

func (m *mockBurster) QueueBurst(mapID model.MapID, count int, mode spawn.Mode) {
	m.bursts = append(m.bursts, burst{mapID, count, mode})
}

type stubPlayer struct {
	mapID model.MapID
}

func (p *stubPlayer) Position() model.Position { return model.Position{} }
func (p *stubPlayer) IsMoving() bool           { return false }
func (p *stubPlayer) ActiveMapID() model.MapID { return p.mapID }
func (p *stubPlayer) IsSurfing() bool          { return false }
func (p *stubPlayer) InMenu() bool             { return false }

type fixture struct {
	ctrl    *Controller
	pop     *mockPopulation
	burster *mockBurster
	player  *stubPlayer
	table   *world.StaticTable
	journal *journal.Memory
	now     time.Time
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T, tweak func(*config.Encounters)) *fixture {
	t.Helper()
	cfg := config.DefaultEncounters()
	cfg.Outbreak.AmbientTrigger = false
	cfg.Outbreak.PanicEnabled = false
	if tweak != nil {
		tweak(&cfg)
	}

	rng := rand.New(rand.NewPCG(3, 4))
	table := world.NewStaticTable(rng)
	f := &fixture{
		pop:     newMockPopulation(),
		burster: &mockBurster{},
		player:  &stubPlayer{mapID: 10},
		table:   table,
		journal: journal.NewMemory(),
		now:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.ctrl = New(Deps{
		Population: f.pop,
		Burster:    f.burster,
		Player:     f.player,
		Table:      table,
		Catalog:    world.DemoCatalog(),
		Tunables:   config.NewTunables(cfg),
		Journal:    f.journal,
		Rand:       rng,
		Now:        func() time.Time { return f.now },
	})
	return f
}

func TestController_MapEntryTrigger(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.TriggerChance = 100
	})

	f.ctrl.OnMapActivated(10)
	require.Equal(t, Scheduled, f.ctrl.Phase())
	assert.False(t, f.ctrl.View().Active, "scheduled outbreaks do not affect spawns")

	f.advance(4 * time.Second)
	f.ctrl.Tick()
	assert.Equal(t, Scheduled, f.ctrl.Phase())

	f.advance(time.Second)
	f.ctrl.Tick()
	require.Equal(t, Active, f.ctrl.Phase())

	assert.Equal(t, []burst{{10, 6, spawn.NearPlayer}}, f.burster.bursts)
	assert.Equal(t, 12, f.pop.overrides[10])

	v := f.ctrl.View()
	assert.True(t, v.ActiveOn(10))
	assert.NotEqual(t, uuid.Nil, v.Episode)
	assert.Equal(t, 1, v.ShinyRate)
	assert.True(t, v.BlockShinyDespawn)
	assert.Equal(t, 200, v.SpawnInterval)
	assert.Equal(t, 1, f.journal.Count(journal.KindOutbreakScheduled))
	assert.Equal(t, 1, f.journal.Count(journal.KindOutbreakStarted))
}

func TestController_NoTrigger(t *testing.T) {
	tests := []struct {
		name  string
		mapID model.MapID
		tweak func(*config.Encounters)
	}{
		{name: "roll fails", mapID: 10, tweak: func(c *config.Encounters) { c.Outbreak.TriggerChance = 0 }},
		{name: "blacklisted map", mapID: 1, tweak: func(c *config.Encounters) { c.Outbreak.TriggerChance = 100 }},
		{name: "disabled", mapID: 10, tweak: func(c *config.Encounters) {
			c.Outbreak.TriggerChance = 100
			c.Outbreak.Enabled = false
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.tweak)
			f.player.mapID = tt.mapID
			f.ctrl.OnMapActivated(tt.mapID)
			assert.Equal(t, Idle, f.ctrl.Phase())
		})
	}
}

func TestController_ScheduledCancelledWhenPlayerLeaves(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.TriggerChance = 100
	})
	f.ctrl.OnMapActivated(10)
	require.Equal(t, Scheduled, f.ctrl.Phase())

	f.player.mapID = 12
	f.advance(10 * time.Second)
	f.ctrl.Tick()

	assert.Equal(t, Idle, f.ctrl.Phase())
	assert.Empty(t, f.pop.sweeps)
	assert.Empty(t, f.pop.overrides)
	assert.Empty(t, f.burster.bursts)
	assert.Zero(t, f.ctrl.Status().Cooldown, "a cancelled schedule does not start the cooldown")
	entries := f.journal.Entries()
	require.Len(t, entries, 1, "cancelling a schedule leaves no trace beyond the schedule itself")
	assert.Equal(t, journal.KindOutbreakScheduled, entries[0].Kind)
}

func TestController_ExpirySweepsBoundMap(t *testing.T) {
	f := newFixture(t, nil)
	f.pop.swept = 7
	require.True(t, f.ctrl.Start(10))

	f.advance(601 * time.Second)
	f.player.mapID = 12
	f.ctrl.Tick()

	assert.Equal(t, Idle, f.ctrl.Phase())
	assert.Equal(t, []sweep{{10, model.TagOutbreak, true}}, f.pop.sweeps)
	assert.NotContains(t, f.pop.overrides, model.MapID(10))
	assert.Equal(t, []model.MapID{10}, f.pop.recounts)

	cd := f.ctrl.Status().Cooldown
	assert.GreaterOrEqual(t, cd, 20*time.Minute)
	assert.Less(t, cd, 60*time.Minute)

	entries := f.journal.Entries()
	last := entries[len(entries)-1]
	assert.Equal(t, journal.KindOutbreakEnded, last.Kind)
	assert.Equal(t, 7, last.Count)
}

func TestController_ExpiryWithoutLeaving(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.ctrl.Start(10))

	f.advance(599 * time.Second)
	f.ctrl.Tick()
	assert.Equal(t, Active, f.ctrl.Phase())

	f.advance(2 * time.Second)
	f.ctrl.Tick()
	assert.Equal(t, Idle, f.ctrl.Phase())
	assert.Len(t, f.pop.sweeps, 1)
}

func TestController_CooldownBlocksRetrigger(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.TriggerChance = 100
	})
	require.True(t, f.ctrl.Start(10))
	f.ctrl.End()
	require.Equal(t, Idle, f.ctrl.Phase())

	f.advance(19 * time.Minute)
	f.ctrl.OnMapActivated(10)
	assert.Equal(t, Idle, f.ctrl.Phase())

	f.advance(41 * time.Minute)
	f.ctrl.OnMapActivated(10)
	assert.Equal(t, Scheduled, f.ctrl.Phase())
}

func TestController_EndIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	f.ctrl.End()
	assert.Empty(t, f.pop.sweeps)

	require.True(t, f.ctrl.Start(10))
	f.ctrl.End()
	f.ctrl.End()
	assert.Len(t, f.pop.sweeps, 1)
	assert.Equal(t, 1, f.journal.Count(journal.KindOutbreakEnded))
}

// panickingTable fails every species lookup.
type panickingTable struct {
	*world.StaticTable
}

func (panickingTable) RandomSpeciesForCategory(model.Category) (model.Species, bool) {
	panic("encounter table missing")
}

func returnsWithin(t *testing.T, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("controller lock was not released")
	}
}

func TestController_PopulationPanicReleasesLock(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.ctrl.Start(10))

	f.pop.broken = true
	returnsWithin(t, f.ctrl.End)
	returnsWithin(t, func() {
		assert.Equal(t, Idle, f.ctrl.Phase())
	})

	f.pop.broken = false
	assert.True(t, f.ctrl.Start(10))
	f.ctrl.End()
	assert.Len(t, f.pop.sweeps, 1)
	assert.Equal(t, 1, f.journal.Count(journal.KindOutbreakEnded))
}

func TestController_TablePanicReleasesLock(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.SameSpecies = true
	})
	f.ctrl.table = panickingTable{StaticTable: f.table}

	returnsWithin(t, func() { f.ctrl.Start(10) })
	returnsWithin(t, func() {
		f.ctrl.Phase()
		f.ctrl.View()
	})
}

func TestController_StartRules(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.ctrl.Start(1), "blacklisted")
	assert.True(t, f.ctrl.Start(10))
	assert.False(t, f.ctrl.Start(10), "already active")
}

func TestController_MapChangeEndsActive(t *testing.T) {
	f := newFixture(t, nil)
	require.True(t, f.ctrl.Start(10))

	f.player.mapID = 12
	f.ctrl.OnMapActivated(12)
	assert.Equal(t, Idle, f.ctrl.Phase())
	assert.Equal(t, []sweep{{10, model.TagOutbreak, true}}, f.pop.sweeps)
}

func TestController_Panic(t *testing.T) {
	tests := []struct {
		name        string
		deleteShiny bool
		wantSweeps  []sweep
	}{
		{name: "cleanup sweeps panic shinies once", deleteShiny: true, wantSweeps: []sweep{{10, model.TagOutbreak | model.TagPanicShiny, true}}},
		{name: "no cleanup when shinies are kept", deleteShiny: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(c *config.Encounters) {
				c.DeleteShiny = tt.deleteShiny
			})
			f.pop.upgraded = 4
			require.True(t, f.ctrl.Start(10))
			require.True(t, f.ctrl.StartPanic())
			assert.False(t, f.ctrl.StartPanic(), "already panicking")

			assert.Equal(t, []model.MapID{10}, f.pop.upgrades)
			v := f.ctrl.View()
			assert.True(t, v.Panic)
			assert.False(t, v.BlockShinyDespawn)

			f.advance(30 * time.Second)
			f.ctrl.Tick()
			assert.True(t, f.ctrl.Status().Panic)

			f.advance(30 * time.Second)
			f.ctrl.Tick()
			f.advance(time.Second)
			f.ctrl.Tick()

			assert.False(t, f.ctrl.View().Panic)
			assert.Equal(t, tt.wantSweeps, f.pop.sweeps)
			assert.Equal(t, 1, f.journal.Count(journal.KindPanicEnded))
		})
	}
}

func TestController_PanicRoll(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.PanicEnabled = true
		c.Outbreak.PanicChance = 1
	})
	require.True(t, f.ctrl.Start(10))

	f.advance(500 * time.Millisecond)
	f.ctrl.Tick()
	assert.False(t, f.ctrl.View().Panic, "rolls once per second")

	f.advance(500 * time.Millisecond)
	f.ctrl.Tick()
	assert.True(t, f.ctrl.View().Panic)
}

func TestController_StartPanicRequiresActive(t *testing.T) {
	f := newFixture(t, nil)
	assert.False(t, f.ctrl.StartPanic())
	assert.Empty(t, f.pop.upgrades)
}

func TestController_AmbientTrigger(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.AmbientTrigger = true
		c.Outbreak.TriggerChance = 0
	})

	f.ctrl.Tick()
	require.Equal(t, Idle, f.ctrl.Phase())

	f.player.mapID = 1
	f.advance(61 * time.Minute)
	f.ctrl.Tick()
	assert.Equal(t, Idle, f.ctrl.Phase(), "invalid map pushes the trigger back")

	f.player.mapID = 10
	f.advance(30 * time.Second)
	f.ctrl.Tick()
	assert.Equal(t, Idle, f.ctrl.Phase())

	f.advance(30 * time.Second)
	f.ctrl.Tick()
	assert.Equal(t, Active, f.ctrl.Phase())
	assert.True(t, f.ctrl.View().ActiveOn(10))
}

func TestController_SpeciesLock(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.SameSpecies = true
	})
	f.table.Set(20, model.CategoryGrass,
		world.Slot{Species: "ODDISH", Weight: 1, MinLevel: 5, MaxLevel: 5},
		world.Slot{Species: "MAGIKARP", Weight: 1, MinLevel: 5, MaxLevel: 5},
	)
	f.table.Set(20, model.CategoryWater, world.Slot{Species: "PSYDUCK", Weight: 1, MinLevel: 5, MaxLevel: 5})

	require.True(t, f.ctrl.Start(10))
	lock := f.ctrl.View().SpeciesLock
	assert.Equal(t, model.Species("ODDISH"), lock[model.CategoryGrass], "pure water species never lock land")
	assert.Equal(t, model.Species("PSYDUCK"), lock[model.CategoryWater])
	_, hasCave := lock[model.CategoryCave]
	assert.False(t, hasCave)

	sp, ok := f.ctrl.View().LockedSpecies(model.CategoryCave)
	require.True(t, ok)
	assert.Equal(t, model.Species("ODDISH"), sp)
}

func TestController_SpeciesLockDefault(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.SameSpecies = true
	})
	require.True(t, f.ctrl.Start(10))
	assert.Equal(t, model.Species("PIDGEY"), f.ctrl.View().SpeciesLock[model.CategoryGrass])
}

func TestController_ViewIdle(t *testing.T) {
	f := newFixture(t, nil)
	v := f.ctrl.View()
	assert.False(t, v.Active)
	assert.Equal(t, 600, v.SpawnInterval)
}

func TestStatus_String(t *testing.T) {
	f := newFixture(t, func(c *config.Encounters) {
		c.Outbreak.SameSpecies = true
	})
	assert.Equal(t, "idle", f.ctrl.Status().String())

	require.True(t, f.ctrl.Start(10))
	require.True(t, f.ctrl.StartPanic())
	s := f.ctrl.Status()
	assert.Equal(t, 10*time.Minute, s.Remaining)
	assert.Equal(t, time.Minute, s.PanicRemaining)

	line := s.String()
	assert.Contains(t, line, "active on map 10")
	assert.Contains(t, line, "variety same (grass=PIDGEY)")
	assert.Contains(t, line, "SHINY PANIC")

	f.ctrl.End()
	assert.Contains(t, f.ctrl.Status().String(), "next outbreak possible")
}
