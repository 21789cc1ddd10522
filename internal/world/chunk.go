package world

import (
	"log"
	"sync"

	"voxelfield/internal/voxel"
)

// Chunk holds the materialized classification of one cubic region of the
// field. Voxels are stored as sparse vertical columns behind a pluggable
// ColumnStorage.
type Chunk struct {
	Key    ChunkCoord
	Bounds Bounds

	mu    sync.RWMutex
	store ColumnStorage
	edge  int
}

// NewChunk allocates a chunk backed by the configured storage provider. A
// provider failure falls back to in-memory storage so generation can proceed.
func NewChunk(key ChunkCoord, grid Grid) *Chunk {
	store, err := getStorageProvider().NewStorage(key, grid.Edge)
	if err != nil {
		log.Printf("chunk storage unavailable for %v: %v", key, err)
		store, _ = NewMemoryStorageProvider().NewStorage(key, grid.Edge)
	}
	return &Chunk{
		Key:    key,
		Bounds: grid.ChunkBounds(key),
		store:  store,
		edge:   grid.Edge,
	}
}

func (c *Chunk) columnIndex(localX, localZ int) int {
	return localZ*c.edge + localX
}

func trimColumn(column []voxel.Voxel) []voxel.Voxel {
	end := len(column)
	for end > 0 && !column[end-1].Solid {
		end--
	}
	return column[:end]
}

// Voxel returns the classified value at a global position. The second return
// is false when pos lies outside this chunk.
func (c *Chunk) Voxel(pos voxel.Position) (voxel.Voxel, bool) {
	if !c.Bounds.Contains(pos) {
		return voxel.Air, false
	}
	localX := pos.X - c.Bounds.Min.X
	localY := pos.Y - c.Bounds.Min.Y
	localZ := pos.Z - c.Bounds.Min.Z

	c.mu.RLock()
	store := c.store
	c.mu.RUnlock()
	if store == nil {
		return voxel.Air, true
	}
	idx := c.columnIndex(localX, localZ)
	column, ok, err := store.LoadColumn(idx)
	if err != nil {
		log.Printf("chunk %v load column %d: %v", c.Key, idx, err)
		return voxel.Air, true
	}
	if !ok || localY >= len(column) {
		return voxel.Air, true
	}
	return column[localY], true
}

// SetColumn replaces the vertical column at the given local coordinates.
func (c *Chunk) SetColumn(localX, localZ int, column []voxel.Voxel) bool {
	if localX < 0 || localZ < 0 || localX >= c.edge || localZ >= c.edge {
		return false
	}
	dup := make([]voxel.Voxel, len(column))
	copy(dup, column)
	dup = trimColumn(dup)

	c.mu.Lock()
	store := c.store
	c.mu.Unlock()
	if store == nil {
		return false
	}
	idx := c.columnIndex(localX, localZ)
	var err error
	if len(dup) == 0 {
		err = store.Delete(idx)
	} else {
		err = store.SaveColumn(idx, dup)
	}
	if err != nil {
		log.Printf("chunk %v persist column %d: %v", c.Key, idx, err)
		return false
	}
	return true
}

// ForEachSolid iterates over solid voxels, invoking fn with global positions.
func (c *Chunk) ForEachSolid(fn func(pos voxel.Position, v voxel.Voxel) bool) {
	c.mu.RLock()
	store := c.store
	bounds := c.Bounds
	edge := c.edge
	c.mu.RUnlock()
	if store == nil {
		return
	}

	if err := store.ForEach(func(idx int, column []voxel.Voxel) bool {
		localX := idx % edge
		localZ := idx / edge
		for localY, v := range column {
			if !v.Solid {
				continue
			}
			pos := voxel.Position{
				X: bounds.Min.X + localX,
				Y: bounds.Min.Y + localY,
				Z: bounds.Min.Z + localZ,
			}
			if !fn(pos, v) {
				return false
			}
		}
		return true
	}); err != nil {
		log.Printf("chunk %v iterate voxels: %v", c.Key, err)
	}
}

// SolidCount returns the number of solid voxels currently stored.
func (c *Chunk) SolidCount() int {
	count := 0
	c.ForEachSolid(func(voxel.Position, voxel.Voxel) bool {
		count++
		return true
	})
	return count
}

// Close releases the chunk's underlying storage.
func (c *Chunk) Close() error {
	c.mu.Lock()
	store := c.store
	c.store = nil
	c.mu.Unlock()
	if store == nil {
		return nil
	}
	return store.Close()
}
