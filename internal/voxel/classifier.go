package voxel

// canopyOffsets are checked in this fixed order: the trunk column itself, then
// the 8 lateral neighbors. First match wins.
var canopyOffsets = [9]struct{ dx, dz int }{
	{0, 0},
	{1, 0},
	{-1, 0},
	{0, 1},
	{0, -1},
	{1, 1},
	{-1, 1},
	{1, -1},
	{-1, -1},
}

// trunkSpacing is the placement grid period for tree trunks on both horizontal
// axes, guaranteeing trunks are never closer than this on either axis.
const trunkSpacing = 5

// canopyDepth is the vertical extent of a canopy above its trunk top,
// inclusive: y in [trunkTop, trunkTop+canopyDepth].
const canopyDepth = 3

// Classifier turns positions into voxels for one chunk-generation task. It
// owns a height source and a canopy registry; both are created with the
// classifier and die with it, so concurrent tasks never share state.
//
// Classification is NOT purely functional: classifying a trunk voxel records
// the column's trunk top in the registry, and later queries at neighboring
// columns observe it. Traversal order over the space is therefore an input to
// the result, not an implementation detail. Callers that need reproducible
// chunks must classify in a fixed order.
type Classifier struct {
	heights    HeightSource
	canopy     map[ColumnKey]int // column -> trunk-top y
	treeHeight int
}

// NewClassifier builds a classifier over the given height source. treeHeight
// is the trunk extent above ground; values <= 0 fall back to the default of 5.
func NewClassifier(heights HeightSource, treeHeight int) *Classifier {
	if treeHeight <= 0 {
		treeHeight = 5
	}
	return &Classifier{
		heights:    heights,
		canopy:     make(map[ColumnKey]int),
		treeHeight: treeHeight,
	}
}

// Classify returns the voxel at pos. Rules apply in order, first match wins:
// sea-level floor, canopy, ground, trunk, air.
func (c *Classifier) Classify(pos Position) Voxel {
	if pos.Y < 1 {
		return Solid(MaterialSeaLevel)
	}

	ground := c.heights.Height(pos.X, pos.Z)
	y := float64(pos.Y)

	for _, off := range canopyOffsets {
		top, ok := c.canopy[ColumnKey{X: pos.X + off.dx, Z: pos.Z + off.dz}]
		if ok && pos.Y >= top && pos.Y <= top+canopyDepth {
			return Solid(MaterialCanopy)
		}
	}

	if y < ground {
		return Solid(MaterialGround)
	}

	if y < ground+float64(c.treeHeight) && ground > 5 && y > 5 {
		if pos.X%trunkSpacing == 0 && pos.Z%trunkSpacing == 0 {
			// Record this level as the provisional trunk top; ascending
			// traversal leaves the true top (last trunk voxel + 1) in place.
			c.canopy[pos.Column()] = pos.Y + 1
			return Solid(MaterialTrunk)
		}
	}

	return Air
}

// TrunkTop reports the registered trunk-top height for a column, if any trunk
// voxel of that column has been classified yet.
func (c *Classifier) TrunkTop(key ColumnKey) (int, bool) {
	top, ok := c.canopy[key]
	return top, ok
}
