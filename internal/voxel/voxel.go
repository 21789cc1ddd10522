package voxel

// Material identifies what a solid voxel is made of. Small unsigned values keep
// the classified field compact for storage and transmission.
type Material uint8

const (
	MaterialGround   Material = 0
	MaterialCanopy   Material = 1
	MaterialTrunk    Material = 2
	MaterialSeaLevel Material = 3
)

// Position is an integer position in the unbounded voxel grid. Y is up.
type Position struct {
	X int
	Y int
	Z int
}

// ColumnKey identifies a vertical column of the field.
type ColumnKey struct {
	X int
	Z int
}

// Column returns the key of the column containing this position.
func (p Position) Column() ColumnKey {
	return ColumnKey{X: p.X, Z: p.Z}
}

// Voxel is the classified value of one grid position: air, or solid with a
// material.
type Voxel struct {
	Solid    bool
	Material Material
}

// Air is the empty voxel value.
var Air = Voxel{}

// Solid builds a solid voxel of the given material.
func Solid(m Material) Voxel {
	return Voxel{Solid: true, Material: m}
}
