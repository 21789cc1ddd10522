// Package stream decides which chunks of a detail tier should exist based on
// where the observer is. One Manager runs per tier; tiers with disjoint
// distance rings form concentric LOD shells around the observer.
package stream

import (
	"sort"

	"voxelfield/internal/config"
	"voxelfield/internal/world"
)

// ViewVolume is the delegated visibility test used by the close_and_in_view
// spawn strategy. The renderer owns the actual frustum; the manager only asks.
type ViewVolume interface {
	ChunkInView(coord world.ChunkCoord) bool
}

// acceptAllView is the default when no renderer has registered a volume.
type acceptAllView struct{}

func (acceptAllView) ChunkInView(world.ChunkCoord) bool { return true }

// farAwayFactor scales the tier's max spawn distance into the far_away
// despawn cutoff, letting chunks persist well past the spawn ring.
const farAwayFactor = 2

// UpdateResult lists the alive-set changes produced by one Update call.
type UpdateResult struct {
	Spawned   []world.ChunkCoord
	Despawned []world.ChunkCoord
}

// Manager tracks the alive chunk set for one tier. It is driven from a single
// goroutine (the engine tick); only that goroutine may call Update.
type Manager struct {
	tier  config.Tier
	view  ViewVolume
	alive map[world.ChunkCoord]struct{}
}

func NewManager(tier config.Tier) *Manager {
	return &Manager{
		tier:  tier,
		view:  acceptAllView{},
		alive: make(map[world.ChunkCoord]struct{}),
	}
}

// SetViewVolume installs the renderer's visibility test. Passing nil restores
// the accept-all default.
func (m *Manager) SetViewVolume(view ViewVolume) {
	if view == nil {
		view = acceptAllView{}
	}
	m.view = view
}

func (m *Manager) Tier() config.Tier { return m.tier }

// Update recomputes the alive set around the observer's chunk and returns the
// coordinates that entered and left it. Degenerate distance configuration
// (min >= max, or non-positive max) yields an empty spawn set; the tier is
// effectively disabled, not in error.
func (m *Manager) Update(observer world.ChunkCoord) UpdateResult {
	var result UpdateResult

	for _, candidate := range m.candidates(observer) {
		if _, ok := m.alive[candidate]; ok {
			continue
		}
		if m.tier.MaxChunks > 0 && len(m.alive) >= m.tier.MaxChunks {
			break
		}
		if !m.shouldSpawn(observer, candidate) {
			continue
		}
		m.alive[candidate] = struct{}{}
		result.Spawned = append(result.Spawned, candidate)
	}

	for coord := range m.alive {
		if m.shouldDespawn(observer, coord) {
			delete(m.alive, coord)
			result.Despawned = append(result.Despawned, coord)
		}
	}
	sortCoords(result.Despawned)

	return result
}

// candidates returns every chunk whose Chebyshev distance from the observer
// lies in [min, max), nearest first. The ordering is total so that a capped
// alive set fills deterministically.
func (m *Manager) candidates(observer world.ChunkCoord) []world.ChunkCoord {
	min := m.tier.SpawningMinDistance
	max := m.tier.SpawningMaxDistance
	if max <= 0 || min >= max {
		return nil
	}

	coords := make([]world.ChunkCoord, 0)
	r := max - 1
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				coord := world.ChunkCoord{
					X: observer.X + dx,
					Y: observer.Y + dy,
					Z: observer.Z + dz,
				}
				d := coord.ChebyshevDistance(observer)
				if d < min || d >= max {
					continue
				}
				coords = append(coords, coord)
			}
		}
	}
	sort.Slice(coords, func(i, j int) bool {
		di := coords[i].ChebyshevDistance(observer)
		dj := coords[j].ChebyshevDistance(observer)
		if di != dj {
			return di < dj
		}
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].Z < coords[j].Z
	})
	return coords
}

func (m *Manager) shouldSpawn(observer, candidate world.ChunkCoord) bool {
	switch m.tier.SpawnStrategy.Kind {
	case config.SpawnKindCloseAndInView:
		return m.view.ChunkInView(candidate)
	case config.SpawnKindDistance:
		d := candidate.ChebyshevDistance(observer)
		return d <= m.tier.SpawnStrategy.Distance
	default:
		return true
	}
}

func (m *Manager) shouldDespawn(observer, coord world.ChunkCoord) bool {
	d := coord.ChebyshevDistance(observer)
	switch m.tier.DespawnStrategy.Kind {
	case config.DespawnKindFarAway:
		return d > farAwayFactor*m.tier.SpawningMaxDistance
	case config.DespawnKindDistance:
		return d > m.tier.DespawnStrategy.Distance
	default:
		return false
	}
}

// MarkAlive force-adds a chunk to the alive set, bypassing spawn strategy.
// Used when a chunk enters the tier by an external cause (e.g. persistence
// restore); the despawn strategy still governs its removal.
func (m *Manager) MarkAlive(coord world.ChunkCoord) {
	m.alive[coord] = struct{}{}
}

// Forget drops a chunk from the alive set without going through the despawn
// strategy, so a later Update may spawn it again.
func (m *Manager) Forget(coord world.ChunkCoord) {
	delete(m.alive, coord)
}

// Contains reports whether the tier currently owns the chunk.
func (m *Manager) Contains(coord world.ChunkCoord) bool {
	_, ok := m.alive[coord]
	return ok
}

func (m *Manager) AliveCount() int { return len(m.alive) }

// Alive returns a sorted snapshot of the alive set.
func (m *Manager) Alive() []world.ChunkCoord {
	coords := make([]world.ChunkCoord, 0, len(m.alive))
	for coord := range m.alive {
		coords = append(coords, coord)
	}
	sortCoords(coords)
	return coords
}

func sortCoords(coords []world.ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].Z < coords[j].Z
	})
}
