package config

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSpawnStrategyYAMLRoundTrip(t *testing.T) {
	tests := []struct {
		strategy SpawnStrategy
		wire     string
	}{
		{SpawnDistance(25), "distance(25)"},
		{SpawnDistance(0), "distance(0)"},
		{SpawnCloseAndInView(), "close_and_in_view"},
	}

	for _, tt := range tests {
		data, err := yaml.Marshal(tt.strategy)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.strategy, err)
		}
		var raw string
		if err := yaml.Unmarshal(data, &raw); err != nil {
			t.Fatalf("unmarshal wire form: %v", err)
		}
		if raw != tt.wire {
			t.Fatalf("wire form mismatch: got %q want %q", raw, tt.wire)
		}

		var got SpawnStrategy
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %q: %v", data, err)
		}
		if got != tt.strategy {
			t.Fatalf("round trip mismatch: got %v want %v", got, tt.strategy)
		}
	}
}

func TestDespawnStrategyYAMLRoundTrip(t *testing.T) {
	tests := []struct {
		strategy DespawnStrategy
		wire     string
	}{
		{DespawnDistance(32), "distance(32)"},
		{DespawnFarAway(), "far_away"},
	}

	for _, tt := range tests {
		data, err := yaml.Marshal(tt.strategy)
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.strategy, err)
		}
		var got DespawnStrategy
		if err := yaml.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal %q: %v", data, err)
		}
		if got != tt.strategy {
			t.Fatalf("round trip mismatch: got %v want %v", got, tt.strategy)
		}
	}
}

func TestStrategyUnmarshalRejectsUnknownVariants(t *testing.T) {
	var spawn SpawnStrategy
	if err := yaml.Unmarshal([]byte(`"teleport"`), &spawn); err == nil {
		t.Fatalf("expected error for unknown spawn variant")
	}
	if err := yaml.Unmarshal([]byte(`"distance(abc)"`), &spawn); err == nil {
		t.Fatalf("expected error for malformed distance argument")
	}

	var despawn DespawnStrategy
	if err := yaml.Unmarshal([]byte(`"never"`), &despawn); err == nil {
		t.Fatalf("expected error for unknown despawn variant")
	}
}
