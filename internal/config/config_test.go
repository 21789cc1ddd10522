package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "non positive tick rate",
			mutate: func(cfg *Config) {
				cfg.Engine.TickRate = 0
			},
			wantErr: "engine.tickRate must be positive",
		},
		{
			name: "negative generation jobs",
			mutate: func(cfg *Config) {
				cfg.Engine.GenerationJobs = -1
			},
			wantErr: "engine.generationJobs cannot be negative",
		},
		{
			name: "non positive chunk edge",
			mutate: func(cfg *Config) {
				cfg.World.ChunkEdge = 0
			},
			wantErr: "world.chunkEdge must be positive",
		},
		{
			name: "negative tree height",
			mutate: func(cfg *Config) {
				cfg.World.TreeHeight = -1
			},
			wantErr: "world.treeHeight cannot be negative",
		},
		{
			name: "unknown storage backend",
			mutate: func(cfg *Config) {
				cfg.Storage.Backend = "etcd"
			},
			wantErr: `storage.backend "etcd" is not supported`,
		},
		{
			name: "disk backend without path",
			mutate: func(cfg *Config) {
				cfg.Storage.Backend = "disk"
				cfg.Storage.Path = ""
			},
			wantErr: "storage.path must be set for disk backend",
		},
		{
			name: "missing tier name",
			mutate: func(cfg *Config) {
				cfg.Tiers.HighDetail.Name = ""
			},
			wantErr: "tiers[0] (): name must be set",
		},
		{
			name: "non positive tier scale",
			mutate: func(cfg *Config) {
				cfg.Tiers.LowDetail[0].Scale = 0
			},
			wantErr: "tiers[1] (low-detail-1): scale must be positive",
		},
		{
			name: "inverted spawn distances",
			mutate: func(cfg *Config) {
				cfg.Tiers.HighDetail.SpawningMinDistance = 12
				cfg.Tiers.HighDetail.SpawningMaxDistance = 11
			},
			wantErr: "tiers[0] (high-detail): spawningMaxDistance must be >= spawningMinDistance",
		},
		{
			name: "negative spawn distance threshold",
			mutate: func(cfg *Config) {
				cfg.Tiers.LowDetail[1].SpawnStrategy = SpawnDistance(-1)
			},
			wantErr: "tiers[2] (low-detail-2): spawnStrategy: distance cannot be negative",
		},
		{
			name: "negative max chunks",
			mutate: func(cfg *Config) {
				cfg.Tiers.HighDetail.MaxChunks = -1
			},
			wantErr: "tiers[0] (high-detail): maxChunks cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Engine.TickRate = Duration(50 * time.Millisecond)
	cfg.Feed.Listen = ":9999"
	cfg.Tiers.HighDetail.SpawnStrategy = SpawnDistance(9)

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.World.ChunkEdge = 0

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: world.chunkEdge must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurationAcceptsStringAndNanoseconds(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"250ms"`), &d); err != nil {
		t.Fatalf("unmarshal string duration: %v", err)
	}
	if d.Duration() != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", d.Duration())
	}

	if err := yaml.Unmarshal([]byte(`33000000`), &d); err != nil {
		t.Fatalf("unmarshal numeric duration: %v", err)
	}
	if d.Duration() != 33*time.Millisecond {
		t.Fatalf("expected 33ms, got %v", d.Duration())
	}

	if err := yaml.Unmarshal([]byte(`"not-a-duration"`), &d); err == nil {
		t.Fatalf("expected parse error")
	}
}
