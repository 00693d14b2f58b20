// Package scheduler time-slices spawning work across engine frames.
//
// The scheduler runs on the frame goroutine only and holds no lock: every
// method must be called from the same goroutine that calls Tick.
package scheduler

import (
	"log/slog"

	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/model"
	"github.com/udisondev/overworld/internal/spawn"
	"github.com/udisondev/overworld/internal/world"
)

// attemptsPerSpawn bounds how many slots a burst may spend per requested
// entity before it gives up on a crowded map.
const attemptsPerSpawn = 4

// Population is the subset of spawn.Population the scheduler drives.
type Population interface {
	Spawn(mode spawn.Mode) (model.EntityID, bool)
	IdleSweep()
	LiveCount(mapID model.MapID) int
	Ceiling(mapID model.MapID) int
}

type burst struct {
	mapID     model.MapID
	mode      spawn.Mode
	remaining int
	budget    int
	wait      int
}

// FrameScheduler owns the per-frame counters: the pending burst and the
// idle sweep counter.
type FrameScheduler struct {
	pop      Population
	player   world.PlayerState
	outbreak spawn.OutbreakSource
	tun      *config.Tunables

	idleFrames int
	burst      *burst
}

// New creates a scheduler. A nil outbreak source means no outbreaks.
func New(pop Population, player world.PlayerState, outbreak spawn.OutbreakSource, tun *config.Tunables) *FrameScheduler {
	if outbreak == nil {
		outbreak = spawn.NoOutbreak{}
	}
	return &FrameScheduler{
		pop:      pop,
		player:   player,
		outbreak: outbreak,
		tun:      tun,
	}
}

// QueueBurst queues count spawns on mapID, one every burst interval.
// A burst for the same map is extended; one for another map is replaced.
// The count is capped at the map's current ceiling.
func (s *FrameScheduler) QueueBurst(mapID model.MapID, count int, mode spawn.Mode) {
	count = min(count, s.pop.Ceiling(mapID))
	if count <= 0 {
		return
	}

	if s.burst != nil && s.burst.mapID == mapID {
		s.burst.remaining += count
		s.burst.budget += count * attemptsPerSpawn
		s.burst.mode = mode
		return
	}

	s.burst = &burst{
		mapID:     mapID,
		mode:      mode,
		remaining: count,
		budget:    count * attemptsPerSpawn,
	}
	slog.Info("burst queued", "mapID", mapID, "count", count, "mode", mode)
}

// CancelBurst drops any pending burst.
func (s *FrameScheduler) CancelBurst() {
	if s.burst != nil {
		slog.Debug("burst cancelled", "mapID", s.burst.mapID, "remaining", s.burst.remaining)
		s.burst = nil
	}
}

// OnMapChanged discards a burst queued for another map.
func (s *FrameScheduler) OnMapChanged(mapID model.MapID) {
	if s.burst != nil && s.burst.mapID != mapID {
		s.CancelBurst()
	}
}

// Pending returns the map and remaining count of the queued burst.
func (s *FrameScheduler) Pending() (model.MapID, int, bool) {
	if s.burst == nil {
		return 0, 0, false
	}
	return s.burst.mapID, s.burst.remaining, true
}

// Tick advances one frame. Work is skipped, not dropped, while the player
// is moving or a menu is open. A pending burst owns the frame: idle sweeps
// and idle spawns wait until it finishes.
func (s *FrameScheduler) Tick() {
	mapID := s.player.ActiveMapID()
	s.OnMapChanged(mapID)

	if s.player.InMenu() {
		return
	}
	if s.burst != nil {
		s.tickBurst(mapID)
		return
	}
	s.tickIdle(mapID)
}

func (s *FrameScheduler) tickBurst(mapID model.MapID) {
	b := s.burst
	if b == nil || s.player.IsMoving() {
		return
	}

	b.wait++
	if b.wait < s.tun.Int(config.KeyBurstIntervalFrames) {
		return
	}
	b.wait = 0

	if s.pop.LiveCount(mapID) >= s.pop.Ceiling(mapID) {
		slog.Debug("burst finished at ceiling", "mapID", mapID, "remaining", b.remaining)
		s.burst = nil
		return
	}

	if _, ok := s.pop.Spawn(b.mode); ok {
		b.remaining--
	}
	b.budget--
	if b.remaining <= 0 || b.budget <= 0 {
		slog.Debug("burst finished", "mapID", mapID, "remaining", b.remaining)
		s.burst = nil
	}
}

func (s *FrameScheduler) tickIdle(mapID model.MapID) {
	s.idleFrames++
	if s.idleFrames < s.idleThreshold(mapID) {
		return
	}
	s.idleFrames = 0
	s.pop.IdleSweep()
	s.pop.Spawn(spawn.NearPlayer)
}

// idleThreshold is the idle interval, shortened by an outbreak on mapID.
func (s *FrameScheduler) idleThreshold(mapID model.MapID) int {
	if v := s.outbreak.View(); v.ActiveOn(mapID) && v.SpawnInterval > 0 {
		return v.SpawnInterval
	}
	return s.tun.Int(config.KeyIdleIntervalFrames)
}
