package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a YAML-friendly wrapper around time.Duration that accepts human
// readable strings such as "33ms" in configuration files while still allowing
// numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalYAML encodes the duration using the canonical string representation.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var s string
	if err := node.Decode(&s); err == nil {
		if s == "" {
			*d = 0
			return nil
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration: parse %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	return fmt.Errorf("duration: invalid value %q", node.Value)
}

// Config captures the tunable parameters needed to bootstrap the terrain engine.
type Config struct {
	Engine  EngineConfig  `yaml:"engine"`
	World   WorldConfig   `yaml:"world"`
	Tiers   TiersConfig   `yaml:"tiers"`
	Storage StorageConfig `yaml:"storage"`
	Feed    FeedConfig    `yaml:"feed"`
}

type EngineConfig struct {
	TickRate       Duration `yaml:"tickRate"`       // streaming/movement tick interval, e.g. "33ms"
	GenerationJobs int      `yaml:"generationJobs"` // simultaneous chunk generation workers
}

type WorldConfig struct {
	ChunkEdge  int `yaml:"chunkEdge"`  // edge length of a cubic chunk in voxels
	TreeHeight int `yaml:"treeHeight"` // trunk height above ground level
}

// TiersConfig mirrors the shape of the world configuration file: one
// high-detail tier surrounded by any number of low-detail shells.
type TiersConfig struct {
	HighDetail Tier   `yaml:"highDetail"`
	LowDetail  []Tier `yaml:"lowDetail"`
}

// Tier configures one detail tier of the streaming pipeline. Immutable after
// construction; generation tasks receive copies.
type Tier struct {
	Name                string          `yaml:"name"`
	Scale               float64         `yaml:"scale"`
	HeightScale         float64         `yaml:"heightScale"`
	HeightMinus         float64         `yaml:"heightMinus"`
	SpawningMinDistance int             `yaml:"spawningMinDistance"`
	SpawningMaxDistance int             `yaml:"spawningMaxDistance"`
	SpawnStrategy       SpawnStrategy   `yaml:"spawnStrategy"`
	DespawnStrategy     DespawnStrategy `yaml:"despawnStrategy"`
	MaxChunks           int             `yaml:"maxChunks"` // upper bound on the tier's alive set
	DebugDraw           bool            `yaml:"debugDraw"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // "memory", "disk" or "sqlite"
	Path    string `yaml:"path"`    // base directory (disk) or database file (sqlite)
}

type FeedConfig struct {
	Listen string `yaml:"listen"` // websocket listen address; empty disables the feed
}

// All returns every configured tier, high-detail first.
func (t TiersConfig) All() []Tier {
	tiers := make([]Tier, 0, len(t.LowDetail)+1)
	tiers = append(tiers, t.HighDetail)
	tiers = append(tiers, t.LowDetail...)
	return tiers
}

// Load reads configuration from a YAML file if provided. An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TickRate:       Duration(33 * time.Millisecond),
			GenerationJobs: 4,
		},
		World: WorldConfig{
			ChunkEdge:  32,
			TreeHeight: 5,
		},
		Tiers: TiersConfig{
			HighDetail: Tier{
				Name:                "high-detail",
				Scale:               1.0,
				HeightScale:         0.5,
				HeightMinus:         0,
				SpawningMinDistance: 0,
				SpawningMaxDistance: 11,
				SpawnStrategy:       SpawnCloseAndInView(),
				DespawnStrategy:     DespawnFarAway(),
				MaxChunks:           4096,
				DebugDraw:           true,
			},
			LowDetail: []Tier{
				{
					Name:                "low-detail-1",
					Scale:               2.0,
					HeightScale:         0.1,
					HeightMinus:         0,
					SpawningMinDistance: 11,
					SpawningMaxDistance: 20,
					SpawnStrategy:       SpawnCloseAndInView(),
					DespawnStrategy:     DespawnFarAway(),
					MaxChunks:           4096,
				},
				{
					Name:                "low-detail-2",
					Scale:               4.0,
					HeightScale:         0.1,
					HeightMinus:         0,
					SpawningMinDistance: 20,
					SpawningMaxDistance: 30,
					SpawnStrategy:       SpawnDistance(25),
					DespawnStrategy:     DespawnDistance(32),
					MaxChunks:           4096,
				},
				{
					Name:                "low-detail-3",
					Scale:               8.0,
					HeightScale:         0.1,
					HeightMinus:         0,
					SpawningMinDistance: 30,
					SpawningMaxDistance: 40,
					SpawnStrategy:       SpawnDistance(35),
					DespawnStrategy:     DespawnDistance(42),
					MaxChunks:           4096,
				},
				{
					Name:                "low-detail-4",
					Scale:               16.0,
					HeightScale:         0.1,
					HeightMinus:         0,
					SpawningMinDistance: 40,
					SpawningMaxDistance: 50,
					SpawnStrategy:       SpawnDistance(45),
					DespawnStrategy:     DespawnFarAway(),
					MaxChunks:           4096,
				},
			},
		},
		Storage: StorageConfig{
			Backend: "memory",
		},
		Feed: FeedConfig{
			Listen: "",
		},
	}
}

func (c *Config) Validate() error {
	if c.Engine.TickRate <= 0 {
		return errors.New("engine.tickRate must be positive")
	}
	if c.Engine.GenerationJobs < 0 {
		return errors.New("engine.generationJobs cannot be negative")
	}
	if c.World.ChunkEdge <= 0 {
		return errors.New("world.chunkEdge must be positive")
	}
	if c.World.TreeHeight < 0 {
		return errors.New("world.treeHeight cannot be negative")
	}
	switch c.Storage.Backend {
	case "", "memory":
	case "disk", "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path must be set for %s backend", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	for i, tier := range c.Tiers.All() {
		if err := tier.validate(); err != nil {
			return fmt.Errorf("tiers[%d] (%s): %w", i, tier.Name, err)
		}
	}
	return nil
}

func (t Tier) validate() error {
	if t.Name == "" {
		return errors.New("name must be set")
	}
	if t.Scale <= 0 {
		return errors.New("scale must be positive")
	}
	if t.SpawningMinDistance < 0 || t.SpawningMaxDistance < 0 {
		return errors.New("spawning distances cannot be negative")
	}
	if t.SpawningMaxDistance < t.SpawningMinDistance {
		return errors.New("spawningMaxDistance must be >= spawningMinDistance")
	}
	if t.MaxChunks < 0 {
		return errors.New("maxChunks cannot be negative")
	}
	if err := t.SpawnStrategy.validate(); err != nil {
		return fmt.Errorf("spawnStrategy: %w", err)
	}
	if err := t.DespawnStrategy.validate(); err != nil {
		return fmt.Errorf("despawnStrategy: %w", err)
	}
	return nil
}
