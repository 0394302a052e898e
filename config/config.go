// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig       `yaml:"screen"`
	Arena        ArenaConfig        `yaml:"arena"`
	Creature     CreatureConfig     `yaml:"creature"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Evolution    EvolutionConfig    `yaml:"evolution"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Combat       CombatConfig       `yaml:"combat"`
	Powerups     PowerupsConfig     `yaml:"powerups"`
	Obstacles    ObstaclesConfig    `yaml:"obstacles"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
	Feed         FeedConfig         `yaml:"feed"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the physical world dimensions and boundary parameters.
type ArenaConfig struct {
	Width          float64 `yaml:"width"`
	Height         float64 `yaml:"height"`
	WallThickness  float64 `yaml:"wall_thickness"`  // Thick walls prevent tunneling at high speed
	WallElasticity float64 `yaml:"wall_elasticity"` // High restitution bounces creatures back
	Damping        float64 `yaml:"damping"`         // Global velocity damping (water-like drag)
}

// CreatureConfig holds per-creature runtime parameters. Pool maxima are
// not here: the kill reward fixes both pools at exactly 200, so those
// are constants in the creature package.
type CreatureConfig struct {
	FoodPerHour     float64 `yaml:"food_per_hour"`    // Food drained per simulated hour
	DeathHoldSec    float64 `yaml:"death_hold_sec"`   // Corpse holds fully opaque this long
	DeathFadeSec    float64 `yaml:"death_fade_sec"`   // Then fades linearly over this long
	MemoryLeakRate  float64 `yaml:"memory_leak_rate"` // Leaky integrator rate for sensor memory
	GripHoldRate    float64 `yaml:"grip_hold_rate"`   // Velocity damping rate for the sticking foot
	GripSlideRate   float64 `yaml:"grip_slide_rate"`  // Velocity damping rate for the sliding foot
	SpringStiffness float64 `yaml:"spring_stiffness"` // Physical stiffness per genome stiffness unit
	SpringDamping   float64 `yaml:"spring_damping"`   // Damping on joint springs
	GripperRange    float64 `yaml:"gripper_range"`    // Attraction reach of gripper segments
	GripperStrength float64 `yaml:"gripper_strength"` // Attraction force of gripper segments
}

// MutationConfig holds genetic operator rates.
type MutationConfig struct {
	Rate          float64 `yaml:"rate"`           // Base per-field mutation probability
	OffspringRate float64 `yaml:"offspring_rate"` // Rate applied to every evolved offspring
	ImportRate    float64 `yaml:"import_rate"`    // Rate applied to imported genome copies
	ReproRate     float64 `yaml:"repro_rate"`     // Rate applied to mid-generation children
}

// EvolutionConfig holds population-level evolution parameters.
type EvolutionConfig struct {
	PopulationSize int     `yaml:"population_size"`
	MinPopulation  int     `yaml:"min_population"` // Lower bound for the population slider
	MaxPopulation  int     `yaml:"max_population"` // Upper bound for the population slider
	EliteCount     int     `yaml:"elite_count"`
	TournamentSize int     `yaml:"tournament_size"`
	CrossoverRate  float64 `yaml:"crossover_rate"`
	TurnoverAlive  int     `yaml:"turnover_alive"` // Generation ends when this few remain alive
}

// ReproductionConfig holds mid-generation reproduction parameters.
type ReproductionConfig struct {
	MinAge      float64 `yaml:"min_age"` // Seconds before a creature may reproduce
	MinFood     float64 `yaml:"min_food"`
	MinHealth   float64 `yaml:"min_health"`
	MaxDistance float64 `yaml:"max_distance"` // Pair must be within this many units
	CooldownSec float64 `yaml:"cooldown_sec"`
	HardCap     int     `yaml:"hard_cap"`     // No births above this total population
	SpawnJitter float64 `yaml:"spawn_jitter"` // Midpoint spawn jitter radius
}

// CombatConfig holds collision damage parameters.
type CombatConfig struct {
	ImpactThreshold  float64 `yaml:"impact_threshold"`   // Relative speed below this does no damage
	InstantKillRange float64 `yaml:"instant_kill_range"` // Mouth-to-heart distance for an instant kill
	AgeBonusCapSec   float64 `yaml:"age_bonus_cap_sec"`  // Age at which combat scaling saturates
}

// PowerupsConfig holds power-up spawning parameters.
type PowerupsConfig struct {
	Count      int     `yaml:"count"`
	Radius     float64 `yaml:"radius"`
	Restore    float64 `yaml:"restore"`     // Food+health restored on collection
	RespawnSec float64 `yaml:"respawn_sec"` // Delay before a collected power-up reappears
}

// ObstaclesConfig holds static obstacle parameters.
type ObstaclesConfig struct {
	Count     int     `yaml:"count"`
	MinRadius float64 `yaml:"min_radius"`
	MaxRadius float64 `yaml:"max_radius"`
	NoiseFreq float64 `yaml:"noise_freq"` // Frequency of the placement noise field
	Threshold float64 `yaml:"threshold"`  // Noise value above which a cell may hold an obstacle
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindowSec float64 `yaml:"stats_window_sec"`
}

// FeedConfig holds the live websocket feed parameters.
type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ArenaW32     float32 // Arena width as float32 for rendering
	ArenaH32     float32
	FoodPerSec   float64 // FoodPerHour / 3600
	SpawnMarginX float64 // Inset from the walls for spawn positions
	SpawnMarginY float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Compute derived values
	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ArenaW32 = float32(c.Arena.Width)
	c.Derived.ArenaH32 = float32(c.Arena.Height)
	c.Derived.FoodPerSec = c.Creature.FoodPerHour / 3600.0
	c.Derived.SpawnMarginX = c.Arena.WallThickness + 60
	c.Derived.SpawnMarginY = c.Arena.WallThickness + 60
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
