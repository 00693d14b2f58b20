package spawn

import (
	"log/slog"
	"time"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/world"
)

// Rand is the random source used for every roll. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// Mode selects the tile search strategy.
type Mode uint8

const (
	// NearPlayer enumerates a square around the player.
	NearPlayer Mode = iota
	// FullMap samples random tiles over the whole map.
	FullMap
)

// String returns mode name.
func (m Mode) String() string {
	if m == FullMap {
		return "full_map"
	}
	return "near_player"
}

const (
	minLevel    = 2
	levelJitter = 2
)

// Request carries the per-call inputs of a plan.
type Request struct {
	MapID    model.MapID
	Player   model.Position
	Surfing  bool
	Mode     Mode
	Outbreak OutbreakView
	Time     time.Time
}

// Candidate is a species/level pair, optionally a fusion.
type Candidate struct {
	Species model.Species
	Level   int
	Fusion  *model.Fusion
}

// Decision is a complete spawn plan.
type Decision struct {
	MapID    model.MapID
	Pos      model.Position
	Category model.Category
	Candidate
	Nature string
	Shiny  bool
	Tags   model.Tag
}

// Planner decides where and what to spawn. It holds no mutable state;
// every random draw comes from the Rand passed in.
type Planner struct {
	terrain world.TerrainQuery
	table   world.EncounterTable
	catalog world.SpeciesCatalog
	sight   world.TrainerSight
	tun     *config.Tunables
}

// NewPlanner creates a planner. A nil sight means no trainers.
func NewPlanner(
	terrain world.TerrainQuery,
	table world.EncounterTable,
	catalog world.SpeciesCatalog,
	sight world.TrainerSight,
	tun *config.Tunables,
) *Planner {
	if sight == nil {
		sight = world.NoTrainers{}
	}
	return &Planner{
		terrain: terrain,
		table:   table,
		catalog: catalog,
		sight:   sight,
		tun:     tun,
	}
}

// Plan runs tile, species, fusion, nature and shiny selection.
func (p *Planner) Plan(rng Rand, req Request) (Decision, bool) {
	pos, cat, ok := p.ChooseTile(rng, req)
	if !ok {
		return Decision{}, false
	}

	tod := model.TimeOfDayAt(req.Time)
	cand, ok := p.ChooseSpeciesAndLevel(rng, req.MapID, cat, tod, req.Outbreak)
	if !ok {
		return Decision{}, false
	}

	if p.tun.Bool(config.KeyFusionEnabled) {
		if second, ok := p.ChooseSpeciesAndLevel(rng, req.MapID, cat, tod, req.Outbreak); ok {
			if fused, ok := p.MaybeFuse(rng, cand, second); ok {
				cand = fused
			}
		}
	}

	d := Decision{
		MapID:     req.MapID,
		Pos:       pos,
		Category:  cat,
		Candidate: cand,
		Nature:    behavior.RandomNature(rng),
		Shiny:     RollShiny(rng, p.EffectiveShinyRate(req.MapID, req.Outbreak)),
	}
	if cand.Fusion != nil {
		d.Tags |= model.TagFusion
	}
	if req.Outbreak.ActiveOn(req.MapID) {
		d.Tags |= model.TagOutbreak
		if req.Outbreak.Panic {
			d.Tags |= model.TagPanicShiny
		}
	}
	return d, true
}

// ChooseTile picks a spawn tile and the encounter category it draws from.
func (p *Planner) ChooseTile(rng Rand, req Request) (model.Position, model.Category, bool) {
	w, h, ok := p.terrain.Dimensions(req.MapID)
	if !ok || w <= 0 || h <= 0 {
		return model.Position{}, 0, false
	}
	caveTable := p.table.HasCategory(req.MapID, model.CategoryCave)

	var pos model.Position
	var found bool
	if req.Mode == FullMap {
		pos, found = p.sampleFullMap(rng, req, w, h, caveTable)
	} else {
		pos, found = p.scanNearPlayer(rng, req, w, h, caveTable)
	}
	if !found {
		return model.Position{}, 0, false
	}

	cat, ok := p.encounterCategory(req.MapID, pos)
	if !ok {
		return model.Position{}, 0, false
	}
	return pos, cat, true
}

type tileClass uint8

const (
	tileRejected  tileClass = iota
	tileFallback            // merely passable, used only on cave maps
	tilePreferred           // grass, water or cave floor
)

func (p *Planner) classify(req Request, pos model.Position, caveTable bool) tileClass {
	if pos == req.Player {
		return tileRejected
	}
	cat := p.terrain.Category(req.MapID, pos)
	if cat == model.CategoryRock {
		return tileRejected
	}
	water := cat == model.CategoryWater
	if !water && !p.terrain.IsPassable(req.MapID, pos) {
		return tileRejected
	}
	if water {
		if p.tun.Bool(config.KeyWaterSpawnsOnlySurfing) && !req.Surfing {
			return tileRejected
		}
		if p.tun.WaterBlacklisted(req.MapID) {
			return tileRejected
		}
	}
	if p.terrain.IsOccupied(req.MapID, pos) {
		return tileRejected
	}

	class := tileRejected
	switch {
	case cat == model.CategoryGrass || water:
		class = tilePreferred
	case cat == model.CategoryCave && caveTable:
		class = tilePreferred
	case caveTable:
		class = tileFallback
	}
	if class == tileRejected {
		return class
	}
	if p.sight.CanSee(req.MapID, pos) {
		return tileRejected
	}
	return class
}

func (p *Planner) scanNearPlayer(rng Rand, req Request, w, h int32, caveTable bool) (model.Position, bool) {
	r := int32(p.tun.NearRadius(req.Outbreak.ActiveOn(req.MapID)))

	var preferred, fallback []model.Position
	for x := req.Player.X - r; x <= req.Player.X+r; x++ {
		if x < 0 || x >= w {
			continue
		}
		for y := req.Player.Y - r; y <= req.Player.Y+r; y++ {
			if y < 0 || y >= h {
				continue
			}
			pos := model.NewPosition(x, y)
			switch p.classify(req, pos, caveTable) {
			case tilePreferred:
				preferred = append(preferred, pos)
			case tileFallback:
				fallback = append(fallback, pos)
			}
		}
	}

	if len(preferred) > 0 {
		return preferred[rng.IntN(len(preferred))], true
	}
	if len(fallback) > 0 {
		return fallback[rng.IntN(len(fallback))], true
	}
	return model.Position{}, false
}

func (p *Planner) sampleFullMap(rng Rand, req Request, w, h int32, caveTable bool) (model.Position, bool) {
	maxChecks := p.tun.Int(config.KeyFullMapMaxChecks)

	var fallback model.Position
	haveFallback := false
	for range maxChecks {
		pos := model.NewPosition(int32(rng.IntN(int(w))), int32(rng.IntN(int(h))))
		switch p.classify(req, pos, caveTable) {
		case tilePreferred:
			return pos, true
		case tileFallback:
			if !haveFallback {
				fallback, haveFallback = pos, true
			}
		}
	}
	return fallback, haveFallback
}

// encounterCategory maps a tile onto the table category: water tiles draw
// from water, everything else from land, then cave.
func (p *Planner) encounterCategory(mapID model.MapID, pos model.Position) (model.Category, bool) {
	if p.terrain.Category(mapID, pos) == model.CategoryWater {
		return model.CategoryWater, true
	}
	if p.table.HasCategory(mapID, model.CategoryGrass) {
		return model.CategoryGrass, true
	}
	if p.table.HasCategory(mapID, model.CategoryCave) {
		return model.CategoryCave, true
	}
	return 0, false
}

// ChooseSpeciesAndLevel draws from the map table. During an outbreak with
// a species lock the locked species replaces the drawn one if it is legal
// for the category. Levels are jittered by ±2 and clamped to [2, max_level].
func (p *Planner) ChooseSpeciesAndLevel(
	rng Rand,
	mapID model.MapID,
	cat model.Category,
	tod model.TimeOfDay,
	ob OutbreakView,
) (Candidate, bool) {
	species, level, ok := p.table.Lookup(mapID, cat, tod)
	if !ok {
		return Candidate{}, false
	}

	if ob.ActiveOn(mapID) {
		if locked, ok := ob.LockedSpecies(cat); ok {
			if p.catalog.Legal(locked, cat) {
				species = locked
			} else {
				slog.Warn("locked outbreak species rejected for terrain",
					"mapID", mapID,
					"species", locked,
					"category", cat)
			}
		}
	}

	return Candidate{Species: species, Level: p.jitter(rng, level)}, true
}

func (p *Planner) jitter(rng Rand, level int) int {
	level += rng.IntN(2*levelJitter+1) - levelJitter
	return max(minLevel, min(level, p.tun.Int(config.KeyMaxLevel)))
}

// RollShiny reports whether a spawn is shiny at 1/rate. rate <= 1 always hits.
func RollShiny(rng Rand, rate int) bool {
	if rate <= 1 {
		return true
	}
	return rng.IntN(rate) == 0
}

// EffectiveShinyRate returns the shiny denominator for a spawn on mapID.
// Panic forces 1. An active outbreak's rate replaces the base rate as the
// denominator; it is not applied as a divisor.
func (p *Planner) EffectiveShinyRate(mapID model.MapID, ob OutbreakView) int {
	if ob.ActiveOn(mapID) {
		if ob.Panic {
			return 1
		}
		return ob.ShinyRate
	}
	return p.tun.Int(config.KeyShinyRate)
}

// RollFusion rolls the 1/fusion_rate fusion chance.
func (p *Planner) RollFusion(rng Rand) bool {
	if !p.tun.Bool(config.KeyFusionEnabled) {
		return false
	}
	return rng.IntN(p.tun.Int(config.KeyFusionRate)) == 0
}

// Fuse combines two different base species. a becomes the body, b the head;
// the level is the rounded average.
func (p *Planner) Fuse(a, b Candidate) (Candidate, bool) {
	if a.Fusion != nil || b.Fusion != nil || a.Species == b.Species {
		return Candidate{}, false
	}
	if !p.catalog.IsBase(a.Species) || !p.catalog.IsBase(b.Species) {
		return Candidate{}, false
	}
	f := &model.Fusion{Body: a.Species, Head: b.Species}
	return Candidate{
		Species: f.Species(),
		Level:   (a.Level + b.Level + 1) / 2,
		Fusion:  f,
	}, true
}

// MaybeFuse rolls the fusion chance and fuses on success.
func (p *Planner) MaybeFuse(rng Rand, a, b Candidate) (Candidate, bool) {
	if !p.RollFusion(rng) {
		return Candidate{}, false
	}
	return p.Fuse(a, b)
}
