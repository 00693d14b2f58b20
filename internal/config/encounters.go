package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/overworld/internal/model"
)

// Outbreak holds outbreak and shiny panic tunables.
type Outbreak struct {
	Enabled         bool `yaml:"enabled"`
	DurationMinutes int  `yaml:"duration_minutes"`
	SameSpecies     bool `yaml:"same_species"`
	// ShinyRate replaces the base shiny denominator while an outbreak is active.
	ShinyRate      int  `yaml:"shiny_rate"`
	NoShinyDespawn bool `yaml:"no_shiny_despawn"`
	SpawnCount     int  `yaml:"spawn_count"`
	MaxOverride    int  `yaml:"max_override"`
	SpawnRate      int  `yaml:"spawn_rate"`     // frames
	Radius         int  `yaml:"radius"`         // tiles
	TriggerChance  int  `yaml:"trigger_chance"` // percent
	StartDelay     int  `yaml:"start_delay"`    // seconds
	CooldownMin    int  `yaml:"cooldown_min"`   // minutes
	CooldownMax    int  `yaml:"cooldown_max"`   // minutes
	AmbientTrigger bool `yaml:"ambient_trigger"`

	// Shiny panic
	PanicEnabled  bool `yaml:"panic_enabled"`
	PanicChance   int  `yaml:"panic_chance"`   // 1/N per second
	PanicDuration int  `yaml:"panic_duration"` // seconds
}

// Encounters holds every tunable of the overworld encounter controller.
type Encounters struct {
	Disabled  bool `yaml:"disabled"`
	LogSpawns bool `yaml:"log_spawns"`

	// Spawning
	ShinyRate              int                 `yaml:"shiny_rate"`
	MaxDistance            int                 `yaml:"max_distance"`
	DeleteFarEvents        bool                `yaml:"delete_far_events"`
	DeleteShiny            bool                `yaml:"delete_shiny"`
	WaterSpawnsOnlySurfing bool                `yaml:"water_spawns_only_surfing"`
	MaxEncounters          int                 `yaml:"max_encounters"` // 0 = use MaxPerMap
	MaxPerMap              map[model.MapID]int `yaml:"max_per_map"`
	MaxLevel               int                 `yaml:"max_level"`

	// Composite encounters
	FusionEnabled bool `yaml:"fusion_enabled"`
	FusionRate    int  `yaml:"fusion_rate"`
	HordeEnabled  bool `yaml:"horde_enabled"`
	HordeDistance int  `yaml:"horde_distance"`

	// Scheduling
	SpawnOnLoad         bool `yaml:"spawn_on_load"`
	InitialSpawnCount   int  `yaml:"initial_spawn_count"`
	RevisitCooldown     int  `yaml:"revisit_cooldown"` // seconds
	BurstIntervalFrames int  `yaml:"burst_interval_frames"`
	IdleIntervalFrames  int  `yaml:"idle_interval_frames"`
	FullMapMaxChecks    int  `yaml:"full_map_max_checks"`
	IdleSkipChance      int  `yaml:"idle_skip_chance"`    // 1/N
	IdleDespawnChance   int  `yaml:"idle_despawn_chance"` // 1/N

	Outbreak Outbreak `yaml:"outbreak"`

	BlacklistMaps      []model.MapID `yaml:"blacklist_maps"`
	BlacklistWaterMaps []model.MapID `yaml:"blacklist_water_maps"`
	DefaultSpecies     model.Species `yaml:"default_species"`
}

// DefaultEncounters returns the tunables the mod ships with.
func DefaultEncounters() Encounters {
	return Encounters{
		ShinyRate:              8192,
		MaxDistance:            8,
		DeleteFarEvents:        true,
		WaterSpawnsOnlySurfing: true,
		MaxEncounters:          5,
		MaxPerMap:              map[model.MapID]int{0: 5},
		MaxLevel:               100,
		FusionEnabled:          true,
		FusionRate:             10,
		HordeEnabled:           true,
		HordeDistance:          2,
		InitialSpawnCount:      6,
		RevisitCooldown:        20,
		BurstIntervalFrames:    30,
		IdleIntervalFrames:     600,
		FullMapMaxChecks:       500,
		IdleSkipChance:         3,
		IdleDespawnChance:      1000,
		Outbreak: Outbreak{
			Enabled:         true,
			DurationMinutes: 10,
			ShinyRate:       1,
			NoShinyDespawn:  true,
			SpawnCount:      6,
			MaxOverride:     12,
			SpawnRate:       200,
			Radius:          15,
			TriggerChance:   15,
			StartDelay:      5,
			CooldownMin:     20,
			CooldownMax:     60,
			AmbientTrigger:  true,
			PanicEnabled:    true,
			PanicChance:     8096,
			PanicDuration:   60,
		},
		BlacklistMaps:      defaultBlacklist(),
		BlacklistWaterMaps: []model.MapID{96},
		DefaultSpecies:     "PIDGEY",
	}
}

// LoadEncounters loads encounter tunables from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadEncounters(path string) (Encounters, error) {
	cfg := DefaultEncounters()

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

// Int implements Provider.
func (e Encounters) Int(key Key) (int, bool) {
	o := e.Outbreak
	switch key {
	case KeyShinyRate:
		return e.ShinyRate, true
	case KeyMaxDistance:
		return e.MaxDistance, true
	case KeyMaxEncounters:
		return e.MaxEncounters, true
	case KeyMaxLevel:
		return e.MaxLevel, true
	case KeyFusionRate:
		return e.FusionRate, true
	case KeyHordeDistance:
		return e.HordeDistance, true
	case KeyInitialSpawnCount:
		return e.InitialSpawnCount, true
	case KeyRevisitCooldown:
		return e.RevisitCooldown, true
	case KeyBurstIntervalFrames:
		return e.BurstIntervalFrames, true
	case KeyIdleIntervalFrames:
		return e.IdleIntervalFrames, true
	case KeyFullMapMaxChecks:
		return e.FullMapMaxChecks, true
	case KeyIdleSkipChance:
		return e.IdleSkipChance, true
	case KeyIdleDespawnChance:
		return e.IdleDespawnChance, true
	case KeyOutbreakDuration:
		return o.DurationMinutes, true
	case KeyOutbreakShinyRate:
		return o.ShinyRate, true
	case KeyOutbreakSpawnCount:
		return o.SpawnCount, true
	case KeyOutbreakMaxOverride:
		return o.MaxOverride, true
	case KeyOutbreakSpawnRate:
		return o.SpawnRate, true
	case KeyOutbreakRadius:
		return o.Radius, true
	case KeyOutbreakTriggerChance:
		return o.TriggerChance, true
	case KeyOutbreakStartDelay:
		return o.StartDelay, true
	case KeyOutbreakCooldownMin:
		return o.CooldownMin, true
	case KeyOutbreakCooldownMax:
		return o.CooldownMax, true
	case KeyShinyPanicChance:
		return o.PanicChance, true
	case KeyShinyPanicDuration:
		return o.PanicDuration, true
	}
	if b, ok := e.Bool(key); ok {
		return boolToInt(b), true
	}
	return 0, false
}

// Bool implements Provider.
func (e Encounters) Bool(key Key) (bool, bool) {
	o := e.Outbreak
	switch key {
	case KeyDisabled:
		return e.Disabled, true
	case KeyLogSpawns:
		return e.LogSpawns, true
	case KeyDeleteFarEvents:
		return e.DeleteFarEvents, true
	case KeyDeleteShiny:
		return e.DeleteShiny, true
	case KeyWaterSpawnsOnlySurfing:
		return e.WaterSpawnsOnlySurfing, true
	case KeyFusionEnabled:
		return e.FusionEnabled, true
	case KeyHordeEnabled:
		return e.HordeEnabled, true
	case KeySpawnOnLoad:
		return e.SpawnOnLoad, true
	case KeyOutbreakEnabled:
		return o.Enabled, true
	case KeyOutbreakSameSpecies:
		return o.SameSpecies, true
	case KeyOutbreakNoShinyDespawn:
		return o.NoShinyDespawn, true
	case KeyOutbreakAmbientTrigger:
		return o.AmbientTrigger, true
	case KeyShinyPanicEnabled:
		return o.PanicEnabled, true
	}
	return false, false
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func defaultBlacklist() []model.MapID {
	return []model.MapID{
		1, 2, 3, 4, 5, 19, 20, 21, 22, 23, 24, 25, 37, 42, 43, 44, 48, 49, 50,
		60, 61, 62, 63, 64, 65, 67, 68, 69, 70, 71, 73, 76, 77, 79, 80, 81,
		83, 84, 85, 87, 91, 93, 95, 98, 100, 108, 109, 110, 111, 119, 120,
		121, 122, 125, 130, 131, 134, 135, 136, 137, 138, 141, 149, 152,
		153, 156, 167, 168, 169, 170, 173, 174, 176, 177, 180, 181, 182,
		183, 184, 187, 188, 189, 190, 191, 194, 196, 199, 200, 204, 205,
		206, 207, 208, 209, 212, 215, 219, 221, 226, 230, 237, 239, 241,
		242, 243, 244, 245, 246, 247, 249, 250, 251, 257, 264, 268, 269,
		270, 272, 273, 274, 275, 278, 280, 281, 282, 289, 292, 293, 294,
		296, 297, 298, 305, 309, 310, 325, 326, 327, 329, 330, 331, 332,
		334, 337, 338, 357, 359, 360, 363, 366, 367, 368, 370, 371, 377,
		379, 380, 386, 387, 388, 389, 391, 392, 393, 394, 395, 405, 408,
		414, 416, 419, 420, 421, 426, 430, 447, 448, 450, 451, 452, 453,
		454, 458, 459, 460, 461, 462, 463, 464, 465, 466, 470, 472, 476,
		477, 478, 479, 481, 482, 498, 499, 500, 501, 502, 503, 504, 510,
		514, 519, 520, 521, 524, 530, 532, 541, 551, 552, 553, 567, 568,
		571, 572, 574, 575, 576, 577, 579, 582, 583, 584, 611, 613, 621,
		622, 623, 625, 631, 632, 643, 644, 647, 648, 649, 650, 651, 652,
		653, 660, 661, 662, 663, 665, 666, 667, 668, 671, 672, 673, 674,
		675, 676, 677, 696, 697, 701, 702, 703, 704, 709, 710, 711, 712,
		713, 714, 716, 720, 721, 722, 723, 730, 734, 735, 736, 737, 738,
		740, 744, 745, 747, 757, 758, 770, 771, 772, 786, 787, 789, 795,
		807, 810, 811, 812, 813, 814, 815, 816, 820, 833, 834, 838, 839,
		840, 841, 842, 843, 844, 845, 846, 847, 848, 849,
	}
}
