package geometry

// Pose describes the rigid placement of a volume in world space: ZYX Euler
// rotation angles and a translation, both about a fixed center of rotation
// (the isocenter). A registration optimizer mutates the pose between
// projection batches; every mutation bumps a modification counter so that
// downstream caches can detect staleness.
//
// Pose is not safe for concurrent mutation. The caller serializes updates
// against geometry recomputation, which is the same discipline the
// projection composer requires anyway.
type Pose struct {
	rx, ry, rz  float64
	translation Vec
	center      Vec
	mtime       uint64
}

// NewPose returns an identity pose (no rotation, no translation) centered
// at the given isocenter.
func NewPose(center Vec) *Pose {
	return &Pose{center: center, mtime: 1}
}

// SetRotation sets the ZYX Euler rotation angles in radians.
func (p *Pose) SetRotation(rx, ry, rz float64) {
	p.rx, p.ry, p.rz = rx, ry, rz
	p.mtime++
}

// SetTranslation sets the translation component in millimeters.
func (p *Pose) SetTranslation(t Vec) {
	p.translation = t
	p.mtime++
}

// SetCenter sets the center of rotation (the isocenter).
func (p *Pose) SetCenter(c Vec) {
	p.center = c
	p.mtime++
}

// Rotation returns the ZYX Euler rotation angles in radians.
func (p *Pose) Rotation() (rx, ry, rz float64) {
	return p.rx, p.ry, p.rz
}

// Translation returns the translation component.
func (p *Pose) Translation() Vec {
	return p.translation
}

// Center returns the center of rotation.
func (p *Pose) Center() Vec {
	return p.center
}

// MTime returns the modification counter. It increases monotonically with
// every setter call and never resets.
func (p *Pose) MTime() uint64 {
	return p.mtime
}

// Transform returns the pose as a rigid transform.
func (p *Pose) Transform() Rigid {
	return NewEuler(p.rx, p.ry, p.rz, p.translation, p.center)
}
