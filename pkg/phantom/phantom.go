// Package phantom builds synthetic test volumes: simple intensity
// patterns with known geometry, used by the CLI demo and the tests in
// place of real CT data.
package phantom

import (
	"fmt"

	"drrcast/pkg/geometry"
	"drrcast/pkg/raycast"
)

// Uniform returns a volume filled with a single constant intensity. A ray
// crossing it integrates to pathLength * (intensity - threshold), which
// makes it the reference phantom for geometry checks.
func Uniform(nx, ny, nz int, spacing geometry.Vec, intensity float64) (*raycast.Volume, error) {
	v, err := raycast.NewVolume(nx, ny, nz, spacing)
	if err != nil {
		return nil, err
	}
	v.Fill(intensity)
	return v, nil
}

// Shells returns a volume with a centered ellipsoid of soft-tissue
// intensity wrapped in a denser shell, mimicking the bone-over-tissue
// contrast of a skull CT. Intensities: 0 outside, 100 inside the
// ellipsoid, 400 in the outer shell.
func Shells(nx, ny, nz int, spacing geometry.Vec) (*raycast.Volume, error) {
	v, err := raycast.NewVolume(nx, ny, nz, spacing)
	if err != nil {
		return nil, err
	}

	center := v.Center()
	ext := v.Extent()
	// Semi-axes of the outer ellipsoid; the inner one is 85% of it.
	ax, ay, az := 0.45*ext.X, 0.45*ext.Y, 0.45*ext.Z
	for k := 0; k < nz; k++ {
		z := (float64(k) + 0.5) * spacing.Z
		for j := 0; j < ny; j++ {
			y := (float64(j) + 0.5) * spacing.Y
			for i := 0; i < nx; i++ {
				x := (float64(i) + 0.5) * spacing.X
				dx := (x - center.X) / ax
				dy := (y - center.Y) / ay
				dz := (z - center.Z) / az
				r2 := dx*dx + dy*dy + dz*dz
				switch {
				case r2 <= 0.85*0.85:
					v.Set(i, j, k, 100)
				case r2 <= 1:
					v.Set(i, j, k, 400)
				}
			}
		}
	}
	return v, nil
}

// CornerBlock returns a mostly empty volume with a dense cube in the low
// corner. The phantom has no reflective symmetry about its center, which
// makes it useful for verifying projection orientation.
func CornerBlock(nx, ny, nz int, spacing geometry.Vec) (*raycast.Volume, error) {
	v, err := raycast.NewVolume(nx, ny, nz, spacing)
	if err != nil {
		return nil, err
	}
	for k := 0; k < nz/3; k++ {
		for j := 0; j < ny/3; j++ {
			for i := 0; i < nx/3; i++ {
				v.Set(i, j, k, 500)
			}
		}
	}
	return v, nil
}

// New builds a phantom by name: "uniform", "shells" or "corner".
func New(kind string, nx, ny, nz int, spacing geometry.Vec, intensity float64) (*raycast.Volume, error) {
	switch kind {
	case "uniform":
		return Uniform(nx, ny, nz, spacing, intensity)
	case "shells":
		return Shells(nx, ny, nz, spacing)
	case "corner":
		return CornerBlock(nx, ny, nz, spacing)
	default:
		return nil, fmt.Errorf("unknown phantom kind %q", kind)
	}
}
