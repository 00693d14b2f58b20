package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/hooks"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/overworld"
	"github.com/udisondev/overworld/internal/world"
)

var directions = []world.Direction{world.Down, world.Left, world.Right, world.Up}

var outcomes = []model.Outcome{
	model.OutcomeCaptured,
	model.OutcomeFainted,
	model.OutcomeFled,
	model.OutcomeCancelled,
}

// buildWorld generates cfg.Maps maps and drops one trainer on each.
func buildWorld(cfg config.World, ids *world.ObjectIDGenerator) (*world.Atlas, []model.MapID, error) {
	atlas := world.NewAtlas(ids)
	rng := rand.New(rand.NewPCG(uint64(cfg.Seed), 7))

	mapIDs := make([]model.MapID, 0, cfg.Maps)
	for i := range cfg.Maps {
		id := model.MapID(cfg.FirstMap + int32(i))
		gen := world.DefaultGenConfig(id, cfg.Seed+int64(i))
		gen.Width, gen.Height = cfg.Width, cfg.Height
		gen.Cave = cfg.CaveEvery > 0 && (i+1)%cfg.CaveEvery == 0
		grid := world.Generate(gen)
		grid.Name = fmt.Sprintf("map-%d", id)
		atlas.Add(grid)
		mapIDs = append(mapIDs, id)

		pos, ok := randomWalkable(atlas, id, rng)
		if !ok {
			continue
		}
		t := world.Trainer{Pos: pos, Facing: directions[rng.IntN(len(directions))], Sight: 4}
		if _, err := atlas.AddTrainer(id, t); err != nil {
			return nil, nil, fmt.Errorf("placing trainer on map %d: %w", id, err)
		}
	}
	return atlas, mapIDs, nil
}

func randomWalkable(atlas *world.Atlas, mapID model.MapID, rng *rand.Rand) (model.Position, bool) {
	w, h, ok := atlas.Dimensions(mapID)
	if !ok {
		return model.Position{}, false
	}
	for range 1000 {
		pos := model.NewPosition(int32(rng.IntN(int(w))), int32(rng.IntN(int(h))))
		if atlas.IsPassable(mapID, pos) && !atlas.IsOccupied(mapID, pos) {
			return pos, true
		}
	}
	return model.Position{}, false
}

// simPlayer wanders the atlas one tile at a time. It implements
// world.PlayerState and emits step and map hooks.
type simPlayer struct {
	cfg    config.Player
	atlas  *world.Atlas
	maps   []model.MapID
	rng    *rand.Rand
	bus    *hooks.Bus
	core   *overworld.Core
	mapIdx int

	mapID     model.MapID
	pos       model.Position
	surfing   bool
	moveLeft  int
	waitLeft  int
	mapSteps  int
	steps     int
	mapVisits int

	interactions int
	hordes       int
	outcomes     map[model.Outcome]int
}

func newSimPlayer(cfg config.Player, atlas *world.Atlas, maps []model.MapID, rng *rand.Rand) *simPlayer {
	p := &simPlayer{
		cfg:      cfg,
		atlas:    atlas,
		maps:     maps,
		rng:      rng,
		outcomes: make(map[model.Outcome]int),
	}
	if len(maps) > 0 {
		p.mapID = maps[0]
	}
	if p.cfg.StepFrames <= 0 {
		p.cfg.StepFrames = 8
	}
	return p
}

func (p *simPlayer) attach(bus *hooks.Bus, core *overworld.Core) {
	p.bus = bus
	p.core = core
}

func (p *simPlayer) Position() model.Position { return p.pos }
func (p *simPlayer) IsMoving() bool           { return p.moveLeft > 0 }
func (p *simPlayer) ActiveMapID() model.MapID { return p.mapID }
func (p *simPlayer) IsSurfing() bool          { return p.surfing }
func (p *simPlayer) InMenu() bool             { return false }

// enter places the player on mapID and activates it.
func (p *simPlayer) enter(mapID model.MapID) {
	p.mapID = mapID
	p.surfing = false
	p.mapSteps = 0
	if pos, ok := randomWalkable(p.atlas, mapID, p.rng); ok {
		p.pos = pos
	}
	p.mapVisits++
	slog.Debug("player entered map", "mapID", mapID, "pos", p.pos)
	p.bus.MapActivated(mapID)
}

// update advances the player by one frame.
func (p *simPlayer) update() {
	if p.moveLeft > 0 {
		p.moveLeft--
		if p.moveLeft == 0 {
			p.finishStep()
		}
		return
	}
	if p.waitLeft > 0 {
		p.waitLeft--
		return
	}

	// Stand still now and then so bursts get their frames.
	if p.rng.IntN(3) == 0 {
		p.waitLeft = p.cfg.StepFrames * (1 + p.rng.IntN(4))
		return
	}

	dir := directions[p.rng.IntN(len(directions))]
	dx, dy := dir.Delta()
	next := p.pos.Offset(dx, dy)
	switch {
	case p.atlas.IsPassable(p.mapID, next) && !p.atlas.IsOccupied(p.mapID, next):
		p.surfing = false
	case p.atlas.Category(p.mapID, next) == model.CategoryWater && !p.atlas.IsOccupied(p.mapID, next) &&
		(p.surfing || p.rng.IntN(100) < p.cfg.SurfChance):
		p.surfing = true
	default:
		return
	}
	p.pos = next
	p.moveLeft = p.cfg.StepFrames
}

func (p *simPlayer) finishStep() {
	p.steps++
	p.mapSteps++
	p.bus.Step()

	if p.cfg.InteractChance > 0 && p.rng.IntN(p.cfg.InteractChance) == 0 {
		p.tryInteract()
	}
	if p.cfg.MapChangeSteps > 0 && p.mapSteps >= p.cfg.MapChangeSteps && len(p.maps) > 1 {
		p.mapIdx = (p.mapIdx + 1) % len(p.maps)
		p.enter(p.maps[p.mapIdx])
	}
}

// tryInteract engages an encounter next to the player and reports a
// random outcome.
func (p *simPlayer) tryInteract() {
	for _, e := range p.core.Snapshot(p.mapID).Entities {
		if e.Pos.Distance(p.pos) > 1 {
			continue
		}
		in, ok := p.core.Interact(e.ID)
		if !ok {
			continue
		}
		p.interactions++
		if in.Horde() {
			p.hordes++
		}
		outcome := outcomes[p.rng.IntN(len(outcomes))]
		p.outcomes[outcome]++
		p.core.ReportOutcome(in.IDs, outcome)
		slog.Debug("interaction",
			"mapID", p.mapID,
			"entityIDs", in.IDs,
			"species", e.Species,
			"shiny", e.Shiny,
			"outcome", outcome)
		return
	}
}
