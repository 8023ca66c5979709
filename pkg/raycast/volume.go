// Package raycast computes divergent-beam path integrals through a 3D
// scalar volume using the incremental Siddon-Jacobs voxel traversal. It is
// the computational core of the DRR (digitally reconstructed radiograph)
// generator: one Sample call per detector pixel, each walking a ray from
// the X-ray source through the volume's voxel grid exactly once.
package raycast

import (
	"fmt"

	"drrcast/pkg/geometry"
)

// Volume is a regular 3D grid of scalar intensities. The native frame has
// the grid corner at the origin; the physical extent along each axis is
// count * spacing. Intensities are stored flat in z-major order
// (idx = z*nx*ny + y*nx + x), the same layout the renderer uses for its
// 2D projections.
//
// A Volume must not be mutated while rays are being traversed through it.
type Volume struct {
	data       []float64
	nx, ny, nz int
	spacing    geometry.Vec
}

// NewVolume allocates a zero-filled volume with the given voxel counts and
// per-axis spacing in millimeters.
func NewVolume(nx, ny, nz int, spacing geometry.Vec) (*Volume, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("volume dimensions must be positive, got %dx%dx%d", nx, ny, nz)
	}
	if spacing.X <= 0 || spacing.Y <= 0 || spacing.Z <= 0 {
		return nil, fmt.Errorf("voxel spacing must be positive, got %+v", spacing)
	}
	return &Volume{
		data:    make([]float64, nx*ny*nz),
		nx:      nx,
		ny:      ny,
		nz:      nz,
		spacing: spacing,
	}, nil
}

// NewVolumeFromData wraps an existing flat intensity buffer in z-major
// order. The buffer length must equal nx*ny*nz.
func NewVolumeFromData(data []float64, nx, ny, nz int, spacing geometry.Vec) (*Volume, error) {
	v, err := NewVolume(nx, ny, nz, spacing)
	if err != nil {
		return nil, err
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("buffer length %d does not match dimensions %dx%dx%d",
			len(data), nx, ny, nz)
	}
	v.data = data
	return v, nil
}

// Dims returns the per-axis voxel counts.
func (v *Volume) Dims() (nx, ny, nz int) {
	return v.nx, v.ny, v.nz
}

// Spacing returns the per-axis voxel spacing in millimeters.
func (v *Volume) Spacing() geometry.Vec {
	return v.spacing
}

// Extent returns the physical size of the volume along each axis in
// millimeters (count * spacing).
func (v *Volume) Extent() geometry.Vec {
	return geometry.Vec{
		X: float64(v.nx) * v.spacing.X,
		Y: float64(v.ny) * v.spacing.Y,
		Z: float64(v.nz) * v.spacing.Z,
	}
}

// Center returns the physical center of the volume in its native frame.
// This is the conventional isocenter for the projection geometry.
func (v *Volume) Center() geometry.Vec {
	return v.Extent().Scale(0.5)
}

// At returns the intensity of voxel (i, j, k). Indices must be in range;
// the traversal performs its own bounds checks before calling At.
func (v *Volume) At(i, j, k int) float64 {
	return v.data[(k*v.ny+j)*v.nx+i]
}

// Set stores an intensity at voxel (i, j, k).
func (v *Volume) Set(i, j, k int, value float64) {
	v.data[(k*v.ny+j)*v.nx+i] = value
}

// Fill sets every voxel to the given intensity.
func (v *Volume) Fill(value float64) {
	for i := range v.data {
		v.data[i] = value
	}
}
