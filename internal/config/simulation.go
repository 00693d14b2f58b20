package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// World describes the generated maps the simulator runs on.
type World struct {
	Seed      int64 `yaml:"seed"`
	Maps      int   `yaml:"maps"`
	FirstMap  int32 `yaml:"first_map"`
	Width     int32 `yaml:"width"`
	Height    int32 `yaml:"height"`
	CaveEvery int   `yaml:"cave_every"` // every Nth map is a cave, 0 = none
}

// Player drives the simulated player.
type Player struct {
	StepFrames     int `yaml:"step_frames"`      // frames per tile step
	MapChangeSteps int `yaml:"map_change_steps"` // steps before moving to another map, 0 = never
	InteractChance int `yaml:"interact_chance"`  // 1/N per step of engaging an adjacent encounter
	SurfChance     int `yaml:"surf_chance"`      // percent of steps spent surfing
}

// Simulation holds all configuration for the headless simulator.
type Simulation struct {
	LogLevel string `yaml:"log_level"`

	// Run loop
	Seed      uint64 `yaml:"seed"`
	Frames    int    `yaml:"frames"`     // 0 = run until interrupted
	FrameRate int    `yaml:"frame_rate"` // frames per simulated second
	Realtime  bool   `yaml:"realtime"`   // sleep between frames

	World  World  `yaml:"world"`
	Player Player `yaml:"player"`

	// Optional persistence
	SettingsPath    string         `yaml:"settings_path"` // empty = no settings store
	JournalEnabled  bool           `yaml:"journal_enabled"`
	JournalBuffer   int            `yaml:"journal_buffer"`
	Database        DatabaseConfig `yaml:"database"`
	BehaviorProfile string         `yaml:"behavior_profiles"` // optional YAML override

	Encounters Encounters `yaml:"encounters"`
}

// DefaultSimulation returns Simulation config with sensible defaults.
func DefaultSimulation() Simulation {
	return Simulation{
		LogLevel:  "info",
		Seed:      1,
		Frames:    40 * 60 * 60,
		FrameRate: 40,
		World: World{
			Seed:      42,
			Maps:      4,
			FirstMap:  10,
			Width:     48,
			Height:    36,
			CaveEvery: 4,
		},
		Player: Player{
			StepFrames:     8,
			MapChangeSteps: 600,
			InteractChance: 4,
			SurfChance:     10,
		},
		JournalBuffer: 1024,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "overworld",
			Password: "overworld",
			DBName:   "overworld",
			SSLMode:  "disable",
			MaxConns: 4,
		},
		Encounters: DefaultEncounters(),
	}
}

// LoadSimulation loads simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSimulation(path string) (Simulation, error) {
	cfg := DefaultSimulation()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
