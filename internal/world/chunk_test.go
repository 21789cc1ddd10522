package world

import (
	"errors"
	"testing"

	"voxelfield/internal/voxel"
)

func TestChunkVoxelLookup(t *testing.T) {
	grid := NewGrid(8)
	chunk := NewChunk(ChunkCoord{X: 1, Y: 0, Z: -1}, grid)
	defer chunk.Close()

	column := []voxel.Voxel{
		voxel.Solid(voxel.MaterialGround),
		voxel.Solid(voxel.MaterialGround),
		voxel.Solid(voxel.MaterialTrunk),
	}
	if !chunk.SetColumn(2, 3, column) {
		t.Fatalf("SetColumn failed")
	}

	// Global position of local (2, 0, 3) in chunk (1, 0, -1) with edge 8.
	base := voxel.Position{X: 10, Y: 0, Z: -5}
	for i, want := range column {
		pos := voxel.Position{X: base.X, Y: base.Y + i, Z: base.Z}
		got, ok := chunk.Voxel(pos)
		if !ok {
			t.Fatalf("position %v reported outside chunk", pos)
		}
		if got != want {
			t.Fatalf("voxel at %v = %v, want %v", pos, got, want)
		}
	}

	// Above the stored column is air.
	if got, ok := chunk.Voxel(voxel.Position{X: base.X, Y: 5, Z: base.Z}); !ok || got.Solid {
		t.Fatalf("expected air above column, got %v ok=%v", got, ok)
	}

	// Outside the chunk bounds entirely.
	if _, ok := chunk.Voxel(voxel.Position{X: 100, Y: 0, Z: 0}); ok {
		t.Fatalf("position outside bounds must report false")
	}
}

func TestChunkSetColumnTrimsTrailingAir(t *testing.T) {
	grid := NewGrid(8)
	chunk := NewChunk(ChunkCoord{}, grid)
	defer chunk.Close()

	column := []voxel.Voxel{
		voxel.Solid(voxel.MaterialGround),
		voxel.Air,
		voxel.Solid(voxel.MaterialGround),
		voxel.Air,
		voxel.Air,
	}
	chunk.SetColumn(0, 0, column)

	if got := chunk.SolidCount(); got != 2 {
		t.Fatalf("expected 2 solid voxels, got %d", got)
	}

	// An all-air column deletes the stored entry.
	chunk.SetColumn(0, 0, []voxel.Voxel{voxel.Air, voxel.Air})
	if got := chunk.SolidCount(); got != 0 {
		t.Fatalf("expected empty chunk after air overwrite, got %d", got)
	}
}

func TestChunkSetColumnRejectsOutOfRange(t *testing.T) {
	grid := NewGrid(4)
	chunk := NewChunk(ChunkCoord{}, grid)
	defer chunk.Close()

	column := []voxel.Voxel{voxel.Solid(voxel.MaterialGround)}
	for _, c := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if chunk.SetColumn(c[0], c[1], column) {
			t.Fatalf("SetColumn(%d,%d) should fail", c[0], c[1])
		}
	}
}

func TestChunkForEachSolidYieldsGlobalPositions(t *testing.T) {
	grid := NewGrid(4)
	chunk := NewChunk(ChunkCoord{X: 0, Y: 1, Z: 0}, grid)
	defer chunk.Close()

	chunk.SetColumn(1, 2, []voxel.Voxel{
		voxel.Air,
		voxel.Solid(voxel.MaterialCanopy),
	})

	var positions []voxel.Position
	chunk.ForEachSolid(func(pos voxel.Position, v voxel.Voxel) bool {
		if v.Material != voxel.MaterialCanopy {
			t.Fatalf("unexpected material %v", v.Material)
		}
		positions = append(positions, pos)
		return true
	})

	want := voxel.Position{X: 1, Y: 5, Z: 2}
	if len(positions) != 1 || positions[0] != want {
		t.Fatalf("expected single solid at %v, got %v", want, positions)
	}
}

// fallbackProvider always fails, forcing NewChunk onto the memory fallback.
type fallbackProvider struct{}

func (fallbackProvider) NewStorage(ChunkCoord, int) (ColumnStorage, error) {
	return nil, errors.New("provider unavailable")
}

func TestNewChunkFallsBackToMemoryStorage(t *testing.T) {
	SetStorageProvider(fallbackProvider{})
	defer SetStorageProvider(NewMemoryStorageProvider())

	grid := NewGrid(4)
	chunk := NewChunk(ChunkCoord{}, grid)
	defer chunk.Close()

	if !chunk.SetColumn(0, 0, []voxel.Voxel{voxel.Solid(voxel.MaterialGround)}) {
		t.Fatalf("fallback storage must accept writes")
	}
	if got, _ := chunk.Voxel(voxel.Position{}); !got.Solid {
		t.Fatalf("fallback storage lost the column")
	}
}
