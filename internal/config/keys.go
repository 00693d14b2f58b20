package config

// Key names a scalar tunable. Keys double as the persistent settings keys.
type Key string

const (
	KeyDisabled               Key = "voe_disable_settings"
	KeyLogSpawns              Key = "voe_log_spawns"
	KeyShinyRate              Key = "voe_shiny_rate"
	KeyMaxDistance            Key = "voe_max_distance"
	KeyDeleteFarEvents        Key = "voe_delete_events"
	KeyDeleteShiny            Key = "voe_delete_shiny"
	KeyWaterSpawnsOnlySurfing Key = "voe_water_surf_only"
	KeyMaxEncounters          Key = "voe_max_encounters"
	KeyMaxLevel               Key = "voe_max_level"
	KeyFusionEnabled          Key = "voe_fusion_encounters"
	KeyFusionRate             Key = "voe_fusion_rate"
	KeyHordeEnabled           Key = "voe_horde_battles"
	KeyHordeDistance          Key = "voe_horde_distance"
	KeySpawnOnLoad            Key = "voe_spawn_on_load"
	KeyInitialSpawnCount      Key = "voe_initial_spawn_count"
	KeyRevisitCooldown        Key = "voe_revisit_cooldown"
	KeyBurstIntervalFrames    Key = "voe_burst_interval"
	KeyIdleIntervalFrames     Key = "voe_idle_interval"
	KeyFullMapMaxChecks       Key = "voe_full_map_checks"
	KeyIdleSkipChance         Key = "voe_idle_skip_chance"
	KeyIdleDespawnChance      Key = "voe_idle_despawn_chance"

	KeyOutbreakEnabled        Key = "voe_outbreak_enabled"
	KeyOutbreakDuration       Key = "voe_outbreak_duration"
	KeyOutbreakSameSpecies    Key = "voe_outbreak_type"
	KeyOutbreakShinyRate      Key = "voe_outbreak_shiny_mult"
	KeyOutbreakNoShinyDespawn Key = "voe_outbreak_no_shiny_despawn"
	KeyOutbreakSpawnCount     Key = "voe_outbreak_spawn_count"
	KeyOutbreakMaxOverride    Key = "voe_outbreak_max_override"
	KeyOutbreakSpawnRate      Key = "voe_outbreak_spawn_rate"
	KeyOutbreakRadius         Key = "voe_outbreak_radius"
	KeyOutbreakTriggerChance  Key = "voe_outbreak_trigger_chance"
	KeyOutbreakStartDelay     Key = "voe_outbreak_start_delay"
	KeyOutbreakCooldownMin    Key = "voe_outbreak_cooldown_min"
	KeyOutbreakCooldownMax    Key = "voe_outbreak_cooldown_max"
	KeyOutbreakAmbientTrigger Key = "voe_outbreak_ambient"
	KeyShinyPanicEnabled      Key = "voe_outbreak_shiny_panic"
	KeyShinyPanicChance       Key = "voe_outbreak_panic_chance"
	KeyShinyPanicDuration     Key = "voe_outbreak_panic_duration"
)

// ValueKind is the storage type of a key.
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindBool
)

// Spec describes a key: type, bounds and menu text.
// Bool keys are stored as 0/1 with bounds [0,1].
type Spec struct {
	Key         Key
	Kind        ValueKind
	Min, Max    int
	Name        string
	Description string
}

var specs = []Spec{
	{KeyDisabled, KindBool, 0, 1, "Disable Encounters", "Disable overworld encounters."},
	{KeyLogSpawns, KindBool, 0, 1, "Log Spawns", "Log encounter spawns to console."},
	{KeyShinyRate, KindInt, 1, 65536, "Shiny Rate (1/X)", "Chance denominator for shiny spawns."},
	{KeyMaxDistance, KindInt, 1, 20, "Spawn Distance", "Maximum distance from player before despawn."},
	{KeyDeleteFarEvents, KindBool, 0, 1, "Despawn Far Events", "Remove events that are too far away."},
	{KeyDeleteShiny, KindBool, 0, 1, "Despawn Shinies", "Allow shiny Pokemon to despawn."},
	{KeyWaterSpawnsOnlySurfing, KindBool, 0, 1, "Water Spawns (Surf)", "Only spawn water Pokemon when surfing."},
	{KeyMaxEncounters, KindInt, 0, 20, "Max Encounters", "Maximum Pokemon spawned on each map (0 = per-map table)."},
	{KeyMaxLevel, KindInt, 2, 1000, "Max Level", "Upper clamp for spawned levels."},
	{KeyFusionEnabled, KindBool, 0, 1, "Fusion Encounters", "Enable wild fusion encounters."},
	{KeyFusionRate, KindInt, 1, 100, "Fusion Rate (1/X)", "Chance for encounter to be a fusion."},
	{KeyHordeEnabled, KindBool, 0, 1, "Horde Battles", "Nearby encounters team up against you."},
	{KeyHordeDistance, KindInt, 1, 5, "Horde Distance", "Max tiles apart for horde battle."},
	{KeySpawnOnLoad, KindBool, 0, 1, "Spawn on Map Load", "Spawn multiple encounters when entering a map."},
	{KeyInitialSpawnCount, KindInt, 1, 15, "Initial Spawn Count", "Encounters spawned when entering a map."},
	{KeyRevisitCooldown, KindInt, 0, 600, "Revisit Cooldown (s)", "Seconds before re-entering a map triggers a new burst."},
	{KeyBurstIntervalFrames, KindInt, 1, 600, "Burst Interval", "Frames between burst spawns."},
	{KeyIdleIntervalFrames, KindInt, 1, 6000, "Idle Interval", "Frames between idle sweeps."},
	{KeyFullMapMaxChecks, KindInt, 1, 10000, "Full Map Checks", "Tile samples per full-map search."},
	{KeyIdleSkipChance, KindInt, 1, 1000, "Idle Skip (1/X)", "Chance an entity skips its idle turn."},
	{KeyIdleDespawnChance, KindInt, 1, 100000, "Idle Despawn (1/X)", "Chance of a random idle despawn."},

	{KeyOutbreakEnabled, KindBool, 0, 1, "Outbreak Events", "Enable random outbreak events on maps."},
	{KeyOutbreakDuration, KindInt, 1, 120, "Outbreak Duration (min)", "How long outbreak events last."},
	{KeyOutbreakSameSpecies, KindBool, 0, 1, "Outbreak Variety", "0 = mixed species, 1 = same species."},
	{KeyOutbreakShinyRate, KindInt, 1, 65536, "Outbreak Shiny Rate", "Shiny denominator used during outbreaks."},
	{KeyOutbreakNoShinyDespawn, KindBool, 0, 1, "No Shiny Despawn (Outbreak)", "Prevent shiny despawn during outbreaks."},
	{KeyOutbreakSpawnCount, KindInt, 3, 12, "Outbreak Initial Spawns", "Pokemon spawned when outbreak starts."},
	{KeyOutbreakMaxOverride, KindInt, 5, 20, "Outbreak Max Pokemon", "Max encounters during an outbreak."},
	{KeyOutbreakSpawnRate, KindInt, 50, 500, "Outbreak Spawn Rate", "Frames between spawns during outbreaks."},
	{KeyOutbreakRadius, KindInt, 5, 30, "Outbreak Radius", "Radius around the player where outbreak Pokemon appear."},
	{KeyOutbreakTriggerChance, KindInt, 0, 100, "Outbreak Chance (%)", "Chance an outbreak is scheduled on map entry."},
	{KeyOutbreakStartDelay, KindInt, 0, 600, "Outbreak Delay (s)", "Seconds between map entry and outbreak start."},
	{KeyOutbreakCooldownMin, KindInt, 0, 1440, "Outbreak Cooldown Min (min)", "Minimum minutes between outbreaks."},
	{KeyOutbreakCooldownMax, KindInt, 0, 1440, "Outbreak Cooldown Max (min)", "Maximum minutes between outbreaks."},
	{KeyOutbreakAmbientTrigger, KindBool, 0, 1, "Ambient Outbreaks", "Start outbreaks when the cooldown elapses."},
	{KeyShinyPanicEnabled, KindBool, 0, 1, "Outbreak Shiny Panic", "Rare chance to turn all spawns shiny for a while."},
	{KeyShinyPanicChance, KindInt, 1, 1000000, "Shiny Panic (1/X)", "Per-second chance of a shiny panic."},
	{KeyShinyPanicDuration, KindInt, 1, 600, "Shiny Panic Duration (s)", "How long a shiny panic lasts."},
}

var specIndex = func() map[Key]Spec {
	m := make(map[Key]Spec, len(specs))
	for _, s := range specs {
		m[s.Key] = s
	}
	return m
}()

// Specs returns all known key specs in menu order.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec for key.
func Lookup(key Key) (Spec, bool) {
	s, ok := specIndex[key]
	return s, ok
}

// Clamp bounds v to the spec range.
func (s Spec) Clamp(v int) int {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}
