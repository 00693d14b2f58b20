// Command voesim drives the overworld encounter core against generated maps
// with a simulated player and prints a report at the end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/overworld/internal/behavior"
	"github.com/udisondev/overworld/internal/config"
	"github.com/udisondev/overworld/internal/db"
	"github.com/udisondev/overworld/internal/hooks"
	"github.com/udisondev/overworld/internal/journal"
	"github.com/udisondev/overworld/internal/overworld"
	"github.com/udisondev/overworld/internal/settings"
	"github.com/udisondev/overworld/internal/world"
)

const ConfigPath = "config/voesim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("VOESIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading simulation config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))
	slog.Info("voesim starting", "config", cfgPath, "log_level", cfg.LogLevel, "frames", cfg.Frames)

	var providers []config.Provider
	if cfg.SettingsPath != "" {
		store, err := settings.Open(ctx, cfg.SettingsPath)
		if err != nil {
			return fmt.Errorf("opening settings store: %w", err)
		}
		defer store.Close()
		store.RegisterDefaults(cfg.Encounters)
		store.OnAnyChange(func(key config.Key, old, value int) {
			slog.Info("setting changed", "key", key, "old", old, "new", value)
		})
		providers = append(providers, store)
		slog.Info("settings store opened", "path", cfg.SettingsPath)
	}
	tun := config.NewTunables(cfg.Encounters, providers...)

	behaviors := behavior.NewRegistry()
	if cfg.BehaviorProfile != "" {
		behaviors, err = behavior.LoadProfiles(cfg.BehaviorProfile)
		if err != nil {
			return fmt.Errorf("loading behavior profiles: %w", err)
		}
	}

	ids := world.NewObjectIDGenerator()
	atlas, mapIDs, err := buildWorld(cfg.World, ids)
	if err != nil {
		return fmt.Errorf("building world: %w", err)
	}
	table := world.NewStaticTable(rand.New(rand.NewPCG(cfg.Seed, 3)))
	world.PopulateDemo(table, atlas)
	slog.Info("world generated", "maps", len(mapIDs), "seed", cfg.World.Seed)

	mem := journal.NewMemory()
	var recorder journal.Recorder = mem
	var writer *db.Writer
	if cfg.JournalEnabled {
		database, err := db.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("journal database ready", "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

		writer = db.NewWriter(database.Journal(), db.WithBuffer(cfg.JournalBuffer))
		recorder = journal.Tee{mem, writer}
	}

	clock := newSimClock(time.Now(), cfg.FrameRate)
	bus := hooks.NewBus()
	player := newSimPlayer(cfg.Player, atlas, mapIDs, rand.New(rand.NewPCG(cfg.Seed, 4)))
	core := overworld.New(overworld.Deps{
		Bus:          bus,
		Terrain:      atlas,
		Table:        table,
		Catalog:      world.DemoCatalog(),
		Factory:      world.NewFactory(atlas, ids),
		Player:       player,
		Sight:        atlas,
		Behaviors:    behaviors,
		Tunables:     tun,
		Journal:      recorder,
		SpawnRand:    rand.New(rand.NewPCG(cfg.Seed, 1)),
		OutbreakRand: rand.New(rand.NewPCG(cfg.Seed, 2)),
		Now:          clock.Now,
	})
	player.attach(bus, core)

	g, gctx := errgroup.WithContext(ctx)
	writerCtx, stopWriter := context.WithCancel(gctx)
	defer stopWriter()

	if writer != nil {
		g.Go(func() error {
			return writer.Run(writerCtx)
		})
	}

	sim := &simulation{cfg: cfg, bus: bus, clock: clock, player: player}
	g.Go(func() error {
		defer stopWriter()
		return sim.run(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	printReport(os.Stdout, buildReport(sim, core, mapIDs, mem, writer))
	return nil
}

// simulation is the fixed-step frame loop.
type simulation struct {
	cfg    config.Simulation
	bus    *hooks.Bus
	clock  *simClock
	player *simPlayer
	frames int
}

func (s *simulation) run(ctx context.Context) error {
	var tick <-chan time.Time
	if s.cfg.Realtime {
		ticker := time.NewTicker(s.clock.step)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.player.enter(s.player.mapID)
	slog.Info("simulation started", "mapID", s.player.mapID, "realtime", s.cfg.Realtime)

	for s.cfg.Frames == 0 || s.frames < s.cfg.Frames {
		select {
		case <-ctx.Done():
			slog.Info("simulation interrupted", "frames", s.frames)
			return nil
		default:
		}

		s.clock.advance()
		s.player.update()
		s.bus.FrameTick()
		s.frames++

		if tick != nil {
			select {
			case <-ctx.Done():
			case <-tick:
			}
		}
	}
	slog.Info("simulation finished", "frames", s.frames, "elapsed", s.clock.elapsed())
	return nil
}

// simClock advances by one frame per tick regardless of wall time.
type simClock struct {
	start time.Time
	now   time.Time
	step  time.Duration
}

func newSimClock(start time.Time, frameRate int) *simClock {
	if frameRate <= 0 {
		frameRate = 40
	}
	return &simClock{start: start, now: start, step: time.Second / time.Duration(frameRate)}
}

func (c *simClock) Now() time.Time         { return c.now }
func (c *simClock) advance()               { c.now = c.now.Add(c.step) }
func (c *simClock) elapsed() time.Duration { return c.now.Sub(c.start) }

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
