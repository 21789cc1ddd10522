package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SpawnKind enumerates the closed set of chunk spawn policies.
type SpawnKind uint8

const (
	// SpawnKindDistance spawns any candidate within a fixed chunk-grid ring.
	SpawnKindDistance SpawnKind = iota
	// SpawnKindCloseAndInView additionally requires the candidate to intersect
	// the observer's view volume, a check delegated to the external renderer.
	SpawnKindCloseAndInView
)

// DespawnKind enumerates the closed set of chunk despawn policies.
type DespawnKind uint8

const (
	// DespawnKindDistance removes alive chunks past a fixed ring threshold.
	DespawnKindDistance DespawnKind = iota
	// DespawnKindFarAway removes chunks only past a much larger global cutoff,
	// letting them outlive the spawn ring to avoid thrash at its boundary.
	DespawnKindFarAway
)

// SpawnStrategy is a declarative spawn policy: a tagged variant evaluated
// uniformly by the streaming manager.
type SpawnStrategy struct {
	Kind     SpawnKind
	Distance int // ring threshold for SpawnKindDistance
}

// DespawnStrategy is a declarative despawn policy.
type DespawnStrategy struct {
	Kind     DespawnKind
	Distance int // ring threshold for DespawnKindDistance
}

func SpawnDistance(n int) SpawnStrategy {
	return SpawnStrategy{Kind: SpawnKindDistance, Distance: n}
}

func SpawnCloseAndInView() SpawnStrategy {
	return SpawnStrategy{Kind: SpawnKindCloseAndInView}
}

func DespawnDistance(n int) DespawnStrategy {
	return DespawnStrategy{Kind: DespawnKindDistance, Distance: n}
}

func DespawnFarAway() DespawnStrategy {
	return DespawnStrategy{Kind: DespawnKindFarAway}
}

func (s SpawnStrategy) String() string {
	switch s.Kind {
	case SpawnKindCloseAndInView:
		return "close_and_in_view"
	default:
		return fmt.Sprintf("distance(%d)", s.Distance)
	}
}

func (s DespawnStrategy) String() string {
	switch s.Kind {
	case DespawnKindFarAway:
		return "far_away"
	default:
		return fmt.Sprintf("distance(%d)", s.Distance)
	}
}

func (s SpawnStrategy) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *SpawnStrategy) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("spawn strategy: %w", err)
	}
	switch {
	case raw == "close_and_in_view":
		*s = SpawnCloseAndInView()
		return nil
	case strings.HasPrefix(raw, "distance"):
		n, err := parseDistanceArg(raw)
		if err != nil {
			return fmt.Errorf("spawn strategy: %w", err)
		}
		*s = SpawnDistance(n)
		return nil
	}
	return fmt.Errorf("spawn strategy: unknown variant %q", raw)
}

func (s DespawnStrategy) MarshalYAML() (any, error) {
	return s.String(), nil
}

func (s *DespawnStrategy) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("despawn strategy: %w", err)
	}
	switch {
	case raw == "far_away":
		*s = DespawnFarAway()
		return nil
	case strings.HasPrefix(raw, "distance"):
		n, err := parseDistanceArg(raw)
		if err != nil {
			return fmt.Errorf("despawn strategy: %w", err)
		}
		*s = DespawnDistance(n)
		return nil
	}
	return fmt.Errorf("despawn strategy: unknown variant %q", raw)
}

// parseDistanceArg extracts n from "distance(n)".
func parseDistanceArg(raw string) (int, error) {
	open := strings.IndexByte(raw, '(')
	close := strings.LastIndexByte(raw, ')')
	if open < 0 || close < open {
		return 0, fmt.Errorf("malformed distance variant %q", raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw[open+1 : close]))
	if err != nil {
		return 0, fmt.Errorf("distance argument in %q: %w", raw, err)
	}
	return n, nil
}

func (s SpawnStrategy) validate() error {
	if s.Kind == SpawnKindDistance && s.Distance < 0 {
		return errors.New("distance cannot be negative")
	}
	return nil
}

func (s DespawnStrategy) validate() error {
	if s.Kind == DespawnKindDistance && s.Distance < 0 {
		return errors.New("distance cannot be negative")
	}
	return nil
}
