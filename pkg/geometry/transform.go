package geometry

import "math"

// Matrix3 is a 3x3 matrix stored in row-major order.
type Matrix3 [3][3]float64

// IdentityMatrix returns the 3x3 identity matrix.
func IdentityMatrix() Matrix3 {
	return Matrix3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Mul returns the matrix product m * n.
func (m Matrix3) Mul(n Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*n[0][j] + m[i][1]*n[1][j] + m[i][2]*n[2][j]
		}
	}
	return out
}

// MulVec returns the matrix-vector product m * v.
func (m Matrix3) MulVec(v Vec) Vec {
	return Vec{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transpose returns the transpose of m. For a rotation matrix this is
// also its inverse.
func (m Matrix3) Transpose() Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// RotationX returns the rotation matrix for an angle theta (radians)
// about the x axis.
func RotationX(theta float64) Matrix3 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix3{
		{1, 0, 0},
		{0, c, -s},
		{0, s, c},
	}
}

// RotationY returns the rotation matrix for an angle theta (radians)
// about the y axis.
func RotationY(theta float64) Matrix3 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix3{
		{c, 0, s},
		{0, 1, 0},
		{-s, 0, c},
	}
}

// RotationZ returns the rotation matrix for an angle theta (radians)
// about the z axis.
func RotationZ(theta float64) Matrix3 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Matrix3{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}
}

// EulerZYX returns the rotation matrix Rz(rz) * Ry(ry) * Rx(rx), the
// ZYX Euler-angle convention used throughout the projection geometry.
func EulerZYX(rx, ry, rz float64) Matrix3 {
	return RotationZ(rz).Mul(RotationY(ry)).Mul(RotationX(rx))
}

// Rigid is a rigid transform y = M*x + Offset, with M a rotation matrix.
// The zero value is not a valid transform; use IdentityRigid or one of
// the constructors.
type Rigid struct {
	M      Matrix3
	Offset Vec
}

// IdentityRigid returns the identity rigid transform.
func IdentityRigid() Rigid {
	return Rigid{M: IdentityMatrix()}
}

// NewEuler builds a rigid transform from ZYX Euler angles (radians), a
// translation, and a center of rotation:
//
//	y = R*(x - center) + center + translation
//
// which flattens to matrix-plus-offset form with
// Offset = center + translation - R*center.
func NewEuler(rx, ry, rz float64, translation, center Vec) Rigid {
	r := EulerZYX(rx, ry, rz)
	offset := center.Add(translation).Sub(r.MulVec(center))
	return Rigid{M: r, Offset: offset}
}

// NewTranslation builds a rigid transform that translates by t.
func NewTranslation(t Vec) Rigid {
	return Rigid{M: IdentityMatrix(), Offset: t}
}

// Apply maps the point p through the transform.
func (r Rigid) Apply(p Vec) Vec {
	return r.M.MulVec(p).Add(r.Offset)
}

// Then returns the composition that applies r first and next second:
// (r.Then(next)).Apply(p) == next.Apply(r.Apply(p)).
func (r Rigid) Then(next Rigid) Rigid {
	return Rigid{
		M:      next.M.Mul(r.M),
		Offset: next.M.MulVec(r.Offset).Add(next.Offset),
	}
}

// Inverse returns the inverse rigid transform. Since M is a rotation,
// the inverse matrix is the transpose.
func (r Rigid) Inverse() Rigid {
	mt := r.M.Transpose()
	return Rigid{
		M:      mt,
		Offset: mt.MulVec(r.Offset).Scale(-1),
	}
}
