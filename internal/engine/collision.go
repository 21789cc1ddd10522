package engine

import "voxelfield/internal/voxel"

// SolidProber answers point-in-solid queries for movement resolution. The
// engine implements it over the high-detail tier; tests substitute stubs.
type SolidProber interface {
	IsSolid(pos Vec3) bool
}

// IsSolid reports whether the voxel containing pos is solid in the
// high-detail tier. Positions whose chunk has not been generated yet read as
// air: a body can legitimately outrun generation, and falling through
// ungenerated terrain is preferable to undefined behavior.
func (e *Engine) IsSolid(pos Vec3) bool {
	v, _ := e.VoxelAt(pos.Voxel())
	return v.Solid
}

// VoxelAt returns the classified voxel at an integer position in the
// high-detail tier. The second return is false when the containing chunk has
// not been generated.
func (e *Engine) VoxelAt(pos voxel.Position) (voxel.Voxel, bool) {
	t := e.tiers[0]
	coord := e.grid.Locate(pos)

	t.mu.RLock()
	chunk := t.chunks[coord]
	t.mu.RUnlock()
	if chunk == nil {
		return voxel.Air, false
	}
	v, _ := chunk.Voxel(pos)
	return v, true
}
