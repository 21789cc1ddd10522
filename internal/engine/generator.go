package engine

import (
	"context"

	"voxelfield/internal/config"
	"voxelfield/internal/voxel"
	"voxelfield/internal/world"
)

type genTask struct {
	tier  *tierState
	coord world.ChunkCoord
}

func (e *Engine) generationWorker(ctx context.Context) {
	defer e.wg.Done()
	for task := range e.tasks {
		select {
		case <-ctx.Done():
			continue
		default:
		}
		e.generate(task)
	}
}

// generate materializes one chunk with a classifier owned by this task alone.
// The result is committed only if the chunk is still wanted when generation
// finishes; a chunk despawned mid-flight is discarded along with its storage.
func (e *Engine) generate(task genTask) {
	classify := e.classifierFor(task.tier.cfg)
	chunk := world.NewChunk(task.coord, e.grid)

	bounds := chunk.Bounds
	height := bounds.Max.Y - bounds.Min.Y + 1
	column := make([]voxel.Voxel, height)

	// Fixed traversal order: columns x then z, voxels bottom-up. Canopy
	// placement reads trunk tops recorded earlier in this same order, so the
	// order is part of the chunk's observable content.
	for localX := 0; localX < e.grid.Edge; localX++ {
		for localZ := 0; localZ < e.grid.Edge; localZ++ {
			x := bounds.Min.X + localX
			z := bounds.Min.Z + localZ
			for localY := 0; localY < height; localY++ {
				column[localY] = classify(voxel.Position{X: x, Y: bounds.Min.Y + localY, Z: z})
			}
			chunk.SetColumn(localX, localZ, column)
		}
	}

	task.tier.mu.Lock()
	_, wanted := task.tier.alive[task.coord]
	if wanted {
		task.tier.chunks[task.coord] = chunk
	}
	task.tier.mu.Unlock()

	if !wanted {
		chunk.Close()
		return
	}

	e.publish(Event{
		Kind:      EventSpawned,
		Tier:      task.tier.cfg.Name,
		Coord:     task.coord,
		DebugDraw: task.tier.cfg.DebugDraw,
		Solid:     chunk.SolidCount(),
	})
}

// classifierFor builds a fresh classification function for one generation
// task: its height cache and canopy registry are private to the returned
// closure, so concurrent tasks share nothing.
func (e *Engine) classifierFor(tier config.Tier) func(voxel.Position) voxel.Voxel {
	sampler := voxel.NewHeightSampler(tier.Scale, tier.HeightScale, tier.HeightMinus)
	classifier := voxel.NewClassifier(sampler, e.cfg.World.TreeHeight)
	return classifier.Classify
}

// ChunkLookup is the export surface toward the mesher: given a chunk
// coordinate, it returns a per-position classification function backed by a
// classifier created fresh for that chunk. Positions outside the chunk's
// bounds read as air. tierName selects the tier whose scale parameters apply;
// an unknown name falls back to the high-detail tier.
func (e *Engine) ChunkLookup(tierName string, coord world.ChunkCoord) func(voxel.Position) voxel.Voxel {
	tier := e.tiers[0].cfg
	for _, t := range e.tiers {
		if t.cfg.Name == tierName {
			tier = t.cfg
			break
		}
	}
	classify := e.classifierFor(tier)
	bounds := e.grid.ChunkBounds(coord)
	return func(pos voxel.Position) voxel.Voxel {
		if !bounds.Contains(pos) {
			return voxel.Air
		}
		return classify(pos)
	}
}
