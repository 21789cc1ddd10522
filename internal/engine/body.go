package engine

import "math"

const (
	walkSpeed   = 50.0
	gravity     = -9.8
	jumpSpeed   = 15.0
	probeRadius = 0.3
)

// MoveInput is one tick's worth of control input: a horizontal direction in
// the XZ plane (not required to be normalized beyond unit length) and the
// jump intent.
type MoveInput struct {
	X    float64
	Z    float64
	Jump bool
}

// WalkingBody integrates gravity and input against the voxel field. Its
// position is the eye point, one unit above the feet probe and one below the
// head probe.
type WalkingBody struct {
	Position Vec3
	VelY     float64
	Grounded bool
}

func NewWalkingBody(pos Vec3) *WalkingBody {
	return &WalkingBody{Position: pos}
}

// Step advances the body by dt seconds. Resolution is conservative: the
// vertical axis snaps out of solids, and a horizontal step into a wall is
// reverted whole rather than slid along it.
func (b *WalkingBody) Step(probe SolidProber, input MoveInput, dt float64) {
	if input.Jump && b.Grounded {
		b.VelY = jumpSpeed
		b.Grounded = false
	}
	if !b.Grounded {
		b.VelY += gravity * dt
	}

	prev := b.Position
	candidate := Vec3{
		X: prev.X + input.X*walkSpeed*dt,
		Y: prev.Y + b.VelY*dt,
		Z: prev.Z + input.Z*walkSpeed*dt,
	}

	// Vertical resolution first, at the candidate's horizontal position.
	feet := Vec3{X: candidate.X, Y: candidate.Y - 1, Z: candidate.Z}
	head := Vec3{X: candidate.X, Y: candidate.Y + 1, Z: candidate.Z}
	switch {
	case probe.IsSolid(feet):
		candidate.Y = math.Ceil(feet.Y) + 1
		b.VelY = 0
		b.Grounded = true
	case probe.IsSolid(head):
		candidate.Y = math.Floor(head.Y) - 1
		b.VelY = 0
		b.Grounded = false
	default:
		b.Grounded = false
	}

	// Horizontal resolution at the resolved height: any blocked lateral probe
	// reverts the whole horizontal displacement for this tick.
	blocked := false
	for _, off := range [4]struct{ dx, dz float64 }{
		{probeRadius, 0},
		{-probeRadius, 0},
		{0, probeRadius},
		{0, -probeRadius},
	} {
		p := Vec3{X: candidate.X + off.dx, Y: candidate.Y, Z: candidate.Z + off.dz}
		if probe.IsSolid(p) {
			blocked = true
			break
		}
	}
	if blocked {
		candidate.X = prev.X
		candidate.Z = prev.Z
	}

	b.Position = candidate
}
