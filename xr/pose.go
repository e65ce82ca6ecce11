package xr

// Pose is a rigid transform relative to a reference space. Poses are
// values: a new one is produced for every frame and never mutated.
type Pose struct {
	Position    Vec3
	Orientation Quat
	Space       SpaceKind
}

// NewPose returns a pose with the given position and orientation in space.
func NewPose(space SpaceKind, position Vec3, orientation Quat) Pose {
	return Pose{Position: position, Orientation: orientation, Space: space}
}

// Matrix returns the pose as a unit-scale transform.
func (p Pose) Matrix() Mat4 {
	return Compose(p.Position, p.Orientation, Vec3{X: 1, Y: 1, Z: 1})
}

// Inverse returns the transform that maps points from the pose's frame back
// into its reference space origin, assuming a unit orientation.
func (p Pose) Inverse() Pose {
	inv := p.Orientation.Conjugate()
	return Pose{
		Position:    inv.Rotate(p.Position).Mul(-1),
		Orientation: inv,
		Space:       p.Space,
	}
}

// Equal reports whether two poses are exactly equal, including the space.
func (p Pose) Equal(q Pose) bool {
	return p == q
}
