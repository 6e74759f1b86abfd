// Package config provides the YAML game rules: per-item statistics,
// terrain difficulty per movement class and the simulation tunables.
package config

// Rules is the complete rule set a world is created with.
type Rules struct {
	Game    GameRules                     `yaml:"game"`
	Terrain map[string]map[string]float64 `yaml:"terrain"` // movement class -> terrain -> difficulty
	Items   map[string]ItemRules          `yaml:"items"`
}

// GameRules holds the global tunables. Durations are in ticks.
type GameRules struct {
	FogTimeout            int     `yaml:"fog_timeout"`
	HarvestSpeed          float64 `yaml:"harvest_speed"`
	HarvesterCapacity     float64 `yaml:"harvester_capacity"`
	HarvesterUnloadSpeed  float64 `yaml:"harvester_unload_speed"`
	SpiceMin              int     `yaml:"spice_min"`
	SpiceMax              int     `yaml:"spice_max"`
	ThickSpiceMin         int     `yaml:"thick_spice_min"`
	ThickSpiceMax         int     `yaml:"thick_spice_max"`
	ThickSpiceThreshold   float64 `yaml:"thick_spice_threshold"`
	SpiceFieldRadius      int     `yaml:"spice_field_radius"`
	BuildRange            int     `yaml:"build_range"`
	MaxAreaGuardRange     int     `yaml:"max_area_guard_range"`
	RepathDelay           int     `yaml:"repath_delay"`
	MaxPathNodes          int     `yaml:"max_path_nodes"`
	DeviationTime         int     `yaml:"deviation_time"`
	CaptureHealthRatio    float64 `yaml:"capture_health_ratio"`
	DamagedSpeedRatio     float64 `yaml:"damaged_speed_ratio"`
	DamagedSpeedFactor    float64 `yaml:"damaged_speed_factor"`
	InfantryPerCell       int     `yaml:"infantry_per_cell"`
	WormKillLimit         int     `yaml:"worm_kill_limit"`
	PalaceRechargeTime    int     `yaml:"palace_recharge_time"`
	DeathHandFlightTime   int     `yaml:"death_hand_flight_time"`
	RepairSpeed           float64 `yaml:"repair_speed"`
	RepairCostPerHP       float64 `yaml:"repair_cost_per_hp"`
	CarryallDropDistance  int     `yaml:"carryall_drop_distance"`
	CommandDelay          int     `yaml:"command_delay"`
	SyncInterval          int     `yaml:"sync_interval"`
	SyncHistory           int     `yaml:"sync_history"`
	UnderAttackCooldown   int     `yaml:"under_attack_cooldown"`
	DefaultStartingCredit int     `yaml:"default_starting_credits"`
}

// ItemRules are the statistics of one unit or structure type.
type ItemRules struct {
	Kind         string   `yaml:"kind"`     // structure, ground, infantry, air, worm
	Movement     string   `yaml:"movement"` // wheeled, tracked, infantry, flying, worm
	HitPoints    int      `yaml:"hit_points"`
	Price        int      `yaml:"price"`
	BuildTime    int      `yaml:"build_time"`
	Speed        float64  `yaml:"speed"`      // world units per tick
	TurnSpeed    float64  `yaml:"turn_speed"` // angle steps per tick
	ViewRange    int      `yaml:"view_range"`
	WeaponRange  int      `yaml:"weapon_range"`
	WeaponDamage int      `yaml:"weapon_damage"`
	ReloadTime   int      `yaml:"reload_time"`
	Bullet       string   `yaml:"bullet"`
	Size         [2]int   `yaml:"size"`
	Builds       []string `yaml:"builds,omitempty"`
	Upgrades     int      `yaml:"upgrades,omitempty"`
}
