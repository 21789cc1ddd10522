// Package engine drives the terrain pipeline: it ticks the per-tier streaming
// managers with the observer's position, generates chunks on a worker pool,
// and exposes the voxel lookup and collision probe surfaces.
package engine

import (
	"context"
	"log"
	"math"
	"sync"

	"voxelfield/internal/config"
	"voxelfield/internal/stream"
	"voxelfield/internal/voxel"
	"voxelfield/internal/world"
)

// EventKind tags chunk lifecycle notifications.
type EventKind uint8

const (
	EventSpawned EventKind = iota
	EventDespawned
)

// Event notifies subscribers of a chunk entering or leaving a tier.
type Event struct {
	Kind      EventKind
	Tier      string
	Coord     world.ChunkCoord
	DebugDraw bool
	Solid     int // solid voxel count, spawn events only
}

// tierState is the mutable per-tier bookkeeping shared between the tick
// goroutine and generation workers. The stream.Manager itself is tick-only;
// the chunks map and alive set are guarded by mu.
type tierState struct {
	cfg     config.Tier
	manager *stream.Manager

	mu     sync.RWMutex
	chunks map[world.ChunkCoord]*world.Chunk
	alive  map[world.ChunkCoord]struct{}
}

// Engine owns all tiers and the generation worker pool.
type Engine struct {
	cfg   *config.Config
	grid  world.Grid
	tiers []*tierState

	ticker *streamTicker
	tasks  chan genTask
	wg     sync.WaitGroup

	observerMu sync.RWMutex
	observer   Vec3

	subMu sync.Mutex
	subs  []chan Event
}

// Vec3 is a continuous world-space position, Y up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Voxel returns the integer voxel position containing the point.
func (v Vec3) Voxel() voxel.Position {
	return voxel.Position{
		X: int(math.Floor(v.X)),
		Y: int(math.Floor(v.Y)),
		Z: int(math.Floor(v.Z)),
	}
}

func New(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:  cfg,
		grid: world.NewGrid(cfg.World.ChunkEdge),
	}
	for _, tier := range cfg.Tiers.All() {
		e.tiers = append(e.tiers, &tierState{
			cfg:     tier,
			manager: stream.NewManager(tier),
			chunks:  make(map[world.ChunkCoord]*world.Chunk),
			alive:   make(map[world.ChunkCoord]struct{}),
		})
	}
	e.ticker = newStreamTicker(e, cfg.Engine.TickRate.Duration())
	return e
}

// SetObserver records the observer's world position. The next tick recomputes
// every tier's alive set around it.
func (e *Engine) SetObserver(pos Vec3) {
	e.observerMu.Lock()
	e.observer = pos
	e.observerMu.Unlock()
}

func (e *Engine) Observer() Vec3 {
	e.observerMu.RLock()
	defer e.observerMu.RUnlock()
	return e.observer
}

// SetViewVolume installs the renderer's visibility test on every tier that
// spawns with close_and_in_view.
func (e *Engine) SetViewVolume(view stream.ViewVolume) {
	for _, t := range e.tiers {
		t.manager.SetViewVolume(view)
	}
}

// Subscribe returns a channel of chunk lifecycle events. Slow subscribers
// drop events rather than stalling the tick.
func (e *Engine) Subscribe() <-chan Event {
	ch := make(chan Event, 256)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()
	return ch
}

// Unsubscribe removes a channel obtained from Subscribe.
func (e *Engine) Unsubscribe(ch <-chan Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for i, sub := range e.subs {
		if (<-chan Event)(sub) == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			return
		}
	}
}

func (e *Engine) publish(ev Event) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Run starts the generation workers and the streaming tick, then blocks until
// ctx is cancelled and all workers have drained.
func (e *Engine) Run(ctx context.Context) error {
	workers := e.cfg.Engine.GenerationJobs
	if workers <= 0 {
		workers = 1
	}
	e.tasks = make(chan genTask, workers*8)
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.generationWorker(ctx)
	}

	e.ticker.Start(ctx)
	e.ticker.Wait()

	close(e.tasks)
	e.wg.Wait()
	e.closeAll()
	return ctx.Err()
}

func (e *Engine) closeAll() {
	for _, t := range e.tiers {
		t.mu.Lock()
		for coord, ch := range t.chunks {
			if err := ch.Close(); err != nil {
				log.Printf("close chunk %v: %v", coord, err)
			}
			delete(t.chunks, coord)
		}
		t.mu.Unlock()
	}
}

// tickWorld is invoked by the stream ticker. It feeds the observer's chunk to
// every tier manager and applies the resulting spawn/despawn decisions.
func (e *Engine) tickWorld(_ float64) {
	observerChunk := e.grid.Locate(e.Observer().Voxel())

	for _, t := range e.tiers {
		result := t.manager.Update(observerChunk)

		for _, coord := range result.Spawned {
			t.mu.Lock()
			t.alive[coord] = struct{}{}
			t.mu.Unlock()
			select {
			case e.tasks <- genTask{tier: t, coord: coord}:
			default:
				// Pool saturated. Undo so a later tick retries the spawn.
				t.mu.Lock()
				delete(t.alive, coord)
				t.mu.Unlock()
				t.manager.Forget(coord)
			}
		}

		for _, coord := range result.Despawned {
			t.mu.Lock()
			delete(t.alive, coord)
			ch := t.chunks[coord]
			delete(t.chunks, coord)
			t.mu.Unlock()
			if ch != nil {
				if err := ch.Close(); err != nil {
					log.Printf("close chunk %v: %v", coord, err)
				}
			}
			e.publish(Event{
				Kind:      EventDespawned,
				Tier:      t.cfg.Name,
				Coord:     coord,
				DebugDraw: t.cfg.DebugDraw,
			})
		}
	}
}

// ChunkEdge returns the configured edge length of a cubic chunk.
func (e *Engine) ChunkEdge() int { return e.grid.Edge }

// TierNames returns the configured tier names, high-detail first.
func (e *Engine) TierNames() []string {
	names := make([]string, len(e.tiers))
	for i, t := range e.tiers {
		names[i] = t.cfg.Name
	}
	return names
}

// ChunkCounts returns the number of generated chunks per tier, keyed by name.
func (e *Engine) ChunkCounts() map[string]int {
	counts := make(map[string]int, len(e.tiers))
	for _, t := range e.tiers {
		t.mu.RLock()
		counts[t.cfg.Name] = len(t.chunks)
		t.mu.RUnlock()
	}
	return counts
}
