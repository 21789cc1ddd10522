package world

import "voxelfield/internal/voxel"

// ChunkCoord identifies a cubic chunk in global chunk space.
type ChunkCoord struct {
	X int
	Y int
	Z int
}

// ChebyshevDistance returns the chunk-grid Chebyshev distance between two
// coordinates. This is the distance metric used for all spawn/despawn ring
// decisions: shells are cubes around the observer's chunk.
func (c ChunkCoord) ChebyshevDistance(other ChunkCoord) int {
	d := absInt(c.X - other.X)
	if dy := absInt(c.Y - other.Y); dy > d {
		d = dy
	}
	if dz := absInt(c.Z - other.Z); dz > d {
		d = dz
	}
	return d
}

// Bounds is an axis-aligned box of voxel positions, inclusive on both corners.
type Bounds struct {
	Min voxel.Position
	Max voxel.Position
}

// Contains reports whether pos lies inside the bounds.
func (b Bounds) Contains(pos voxel.Position) bool {
	return pos.X >= b.Min.X && pos.X <= b.Max.X &&
		pos.Y >= b.Min.Y && pos.Y <= b.Max.Y &&
		pos.Z >= b.Min.Z && pos.Z <= b.Max.Z
}

// Grid maps between the unbounded voxel field and its partition into cubic
// chunks of a fixed edge length.
type Grid struct {
	Edge int
}

func NewGrid(edge int) Grid {
	if edge <= 0 {
		edge = 32
	}
	return Grid{Edge: edge}
}

// Locate returns the coordinate of the chunk containing pos.
func (g Grid) Locate(pos voxel.Position) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(pos.X, g.Edge),
		Y: floorDiv(pos.Y, g.Edge),
		Z: floorDiv(pos.Z, g.Edge),
	}
}

// ChunkBounds returns the inclusive voxel bounds of a chunk.
func (g Grid) ChunkBounds(coord ChunkCoord) Bounds {
	min := voxel.Position{
		X: coord.X * g.Edge,
		Y: coord.Y * g.Edge,
		Z: coord.Z * g.Edge,
	}
	return Bounds{
		Min: min,
		Max: voxel.Position{
			X: min.X + g.Edge - 1,
			Y: min.Y + g.Edge - 1,
			Z: min.Z + g.Edge - 1,
		},
	}
}

func floorDiv(value, size int) int {
	if size <= 0 {
		return 0
	}
	if value >= 0 {
		return value / size
	}
	return -((-value - 1) / size) - 1
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
