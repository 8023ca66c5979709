// Package geometry provides the small 3D vector and rigid-transform toolkit
// used by the projection geometry and the ray caster. Transforms are stored
// as a rotation matrix plus an offset, which keeps composition and inversion
// cheap and exact for rigid motions.
package geometry

import "math"

// Vec is a point or direction in 3D space. Coordinates are in millimeters
// when the vector describes a physical position.
type Vec struct {
	X, Y, Z float64
}

// Add returns the component-wise sum v + w.
func (v Vec) Add(w Vec) Vec {
	return Vec{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Sub returns the component-wise difference v - w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{v.X - w.X, v.Y - w.Y, v.Z - w.Z}
}

// Scale returns v scaled by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{s * v.X, s * v.Y, s * v.Z}
}

// Dot returns the dot product of v and w.
func (v Vec) Dot(w Vec) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Norm returns the Euclidean length of v.
func (v Vec) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}
