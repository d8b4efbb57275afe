// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Arena      ArenaConfig      `yaml:"arena"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Population PopulationConfig `yaml:"population"`
	Organism   OrganismConfig   `yaml:"organism"`
	Nutrient   NutrientConfig   `yaml:"nutrient"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Safety     SafetyConfig     `yaml:"safety"`
	Seeding    SeedingConfig    `yaml:"seeding"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Store      StoreConfig      `yaml:"store"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for graphical mode.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the arena dimensions in world units.
type ArenaConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds integrator and force field constants.
type PhysicsConfig struct {
	Friction        float64 `yaml:"friction"`         // Velocity damping per tick (<1)
	MaxForce        float64 `yaml:"max_force"`        // Cap on a single pairwise force magnitude
	ForceMultiplier float64 `yaml:"force_multiplier"` // Scales affinity / d^2
}

// PopulationConfig holds population caps and the initial mix.
type PopulationConfig struct {
	MaxOrganisms     int      `yaml:"max_organisms"`
	MaxNutrients     int      `yaml:"max_nutrients"`
	InitialOrganisms int      `yaml:"initial_organisms"`
	InitialNutrients int      `yaml:"initial_nutrients"`
	Founders         []string `yaml:"founders"` // Genome templates cycled over initial organisms
}

// OrganismConfig holds organism behavior constants.
type OrganismConfig struct {
	MaxAge             int     `yaml:"max_age"`
	MaturityAge        int     `yaml:"maturity_age"`        // Must be older than this to reproduce
	WorkingMemorySize  int     `yaml:"working_memory_size"` // Engrams kept after truncation
	MinEatingDistance  float64 `yaml:"min_eating_distance"`
	MaxBiteSize        float64 `yaml:"max_bite_size"`
	LowEnergyThreshold float64 `yaml:"low_energy_threshold"` // At or below, no force is exerted
	BaselineCost       float64 `yaml:"baseline_cost"`        // Added to |force|^2 every tick
	DefaultEnergy      float64 `yaml:"default_energy"`       // Energy of an organism created without a parent
	Size               float64 `yaml:"size"`
	InitialForceJitter float64 `yaml:"initial_force_jitter"`
	HistoryLimit       int     `yaml:"history_limit"` // 0 = unbounded action journal
	MutationRate       float64 `yaml:"mutation_rate"`
}

// NutrientConfig holds nutrient lifecycle constants.
type NutrientConfig struct {
	Energy          float64 `yaml:"energy"`
	Size            float64 `yaml:"size"`
	MaturityAge     int     `yaml:"maturity_age"`
	ReproduceChance float64 `yaml:"reproduce_chance"`
	SurvivalAge     int     `yaml:"survival_age"`    // Survival chance starts decaying after this age
	SurvivalChance  float64 `yaml:"survival_chance"` // Per-tick survival before SurvivalAge
	SurvivalDecay   float64 `yaml:"survival_decay"`  // Multiplied in once per tick past SurvivalAge
	SpawnRadius     float64 `yaml:"spawn_radius"`
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Magnitude    float64 `yaml:"magnitude"`
	CopyGeneRate float64 `yaml:"copy_gene_rate"`
}

// SafetyConfig holds the bounds enforced by the end-of-tick repair pass.
type SafetyConfig struct {
	MinPosition   float64 `yaml:"min_position"`
	MaxPosition   float64 `yaml:"max_position"`
	MaxSpeed      float64 `yaml:"max_speed"` // Velocity and force magnitudes above this are scaled down
	RespawnRadius float64 `yaml:"respawn_radius"`
}

// SeedingConfig holds the noise field used to place initial nutrients.
type SeedingConfig struct {
	NoiseScale     float64 `yaml:"noise_scale"`
	NoiseThreshold float64 `yaml:"noise_threshold"` // Normalized noise below this rejects a site
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow  int `yaml:"perf_window"`  // Ticks in the rolling performance window
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

// StoreConfig holds persistence parameters.
type StoreConfig struct {
	SaveRetryLimit int           `yaml:"save_retry_limit"`
	SaveBackoff    time.Duration `yaml:"save_backoff"`
	QueueSize      int           `yaml:"queue_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Bounds r2.Box // Arena rectangle, origin at (0, 0)
	Center r2.Vec
	Scale  float64 // Screen pixels per world unit, fitted to the screen
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Parse builds a configuration from YAML bytes layered over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Arena.Width <= 0 || c.Arena.Height <= 0:
		return fmt.Errorf("config: arena must have positive size, got %vx%v", c.Arena.Width, c.Arena.Height)
	case c.Physics.Friction < 0 || c.Physics.Friction > 1:
		return fmt.Errorf("config: friction must be in [0, 1], got %v", c.Physics.Friction)
	case c.Organism.WorkingMemorySize < 0:
		return fmt.Errorf("config: working_memory_size must be >= 0")
	case c.Safety.MinPosition >= c.Safety.MaxPosition:
		return fmt.Errorf("config: safety.min_position must be below max_position")
	case c.Safety.MinPosition >= 0:
		return fmt.Errorf("config: safety.min_position must be below the arena origin, got %v", c.Safety.MinPosition)
	case c.Safety.MaxPosition < c.Arena.Width || c.Safety.MaxPosition < c.Arena.Height:
		return fmt.Errorf("config: safety.max_position must contain the arena")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Bounds = r2.Box{
		Min: r2.Vec{},
		Max: r2.Vec{X: c.Arena.Width, Y: c.Arena.Height},
	}
	c.Derived.Center = r2.Scale(0.5, c.Derived.Bounds.Max)

	c.Derived.Scale = 1
	if c.Screen.Width > 0 && c.Screen.Height > 0 {
		sx := float64(c.Screen.Width) / c.Arena.Width
		sy := float64(c.Screen.Height) / c.Arena.Height
		c.Derived.Scale = min(sx, sy)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.MarshalYAMLBytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// MarshalYAMLBytes renders the configuration as YAML.
func (c *Config) MarshalYAMLBytes() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
