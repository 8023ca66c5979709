package raycast

import (
	"errors"
	"fmt"
	"math"

	"drrcast/pkg/geometry"
	"drrcast/pkg/projection"
)

// ErrMissingVolume is returned by InitializeGeometry when the caster has
// no volume to traverse.
var ErrMissingVolume = errors.New("raycast: volume is not set")

// Output clamp bounds. The accumulated path integral is deterministically
// clamped into this range instead of overflowing.
const (
	minOutputValue = -math.MaxFloat64
	maxOutputValue = math.MaxFloat64
)

// Caster evaluates divergent-beam path integrals through a volume. The
// protocol is two-phase: InitializeGeometry recomputes the projection
// transform under exclusive access, after which any number of goroutines
// may call Sample concurrently. Sample itself never mutates the caster.
type Caster struct {
	volume    *Volume
	threshold float64
	composer  *projection.Composer

	// Snapshot of the composed geometry, taken at InitializeGeometry.
	inverse     geometry.Rigid
	sourceWorld geometry.Vec
	ready       bool
}

// NewCaster returns a caster over the given volume with a zero intensity
// threshold.
func NewCaster(volume *Volume) *Caster {
	return &Caster{volume: volume}
}

// SetThreshold sets the intensity threshold. Voxels at or below the
// threshold contribute nothing to the path integral.
func (c *Caster) SetThreshold(t float64) {
	c.threshold = t
}

// Threshold returns the current intensity threshold.
func (c *Caster) Threshold() float64 {
	return c.threshold
}

// InitializeGeometry composes the projection transform for the given pose,
// gantry angle (radians) and focal-point-to-isocenter distance (mm), and
// caches its inverse together with the source position in the volume's
// native frame. It must be called whenever any of these inputs changes,
// before a batch of Sample calls, and never concurrently with them.
func (c *Caster) InitializeGeometry(pose *geometry.Pose, projectionAngle, focalDistance float64) error {
	if c.volume == nil {
		return ErrMissingVolume
	}
	if c.composer == nil {
		c.composer = projection.NewComposer(pose, projectionAngle, focalDistance)
	} else {
		c.composer.SetPose(pose)
		c.composer.SetProjectionAngle(projectionAngle)
		c.composer.SetFocalDistance(focalDistance)
	}
	if err := c.composer.Initialize(); err != nil {
		return fmt.Errorf("raycast: initializing projection geometry: %w", err)
	}
	c.inverse = c.composer.InverseTransform()
	c.sourceWorld = c.composer.SourceWorld()
	c.ready = true
	return nil
}

// Ready reports whether InitializeGeometry has completed successfully.
func (c *Caster) Ready() bool {
	return c.ready
}

// Sample computes the path integral of thresholded intensity along the ray
// from the X-ray source to the given detector point (world coordinates).
// The result is in world units: each voxel whose intensity exceeds the
// threshold contributes its intersection length in millimeters times
// (intensity - threshold). Rays that miss the volume yield 0.
//
// Sample is a pure function of its inputs and the geometry snapshot taken
// at InitializeGeometry; it is safe to call concurrently from many
// goroutines. It must only be called after a successful
// InitializeGeometry.
func (c *Caster) Sample(targetWorld geometry.Vec) float64 {
	source := c.sourceWorld
	target := c.inverse.Apply(targetWorld)
	ray := target.Sub(source)

	src := [3]float64{source.X, source.Y, source.Z}
	dir := [3]float64{ray.X, ray.Y, ray.Z}
	spacing := [3]float64{c.volume.spacing.X, c.volume.spacing.Y, c.volume.spacing.Z}
	count := [3]int{c.volume.nx, c.volume.ny, c.volume.nz}

	// Parametric values at which the ray crosses the two bounding planes
	// of each axis. An axis with zero ray component does not constrain the
	// intersection; the -2/+2 sentinels sit outside any real crossing.
	var axisMin, axisMax [3]float64
	for a := 0; a < 3; a++ {
		if dir[a] != 0 {
			a1 := (0 - src[a]) / dir[a]
			aN := (float64(count[a])*spacing[a] - src[a]) / dir[a]
			axisMin[a] = math.Min(a1, aN)
			axisMax[a] = math.Max(a1, aN)
		} else {
			axisMin[a] = -2
			axisMax[a] = 2
		}
	}

	// Entry and exit of the ray through the volume's bounding box.
	alphaMin := math.Max(axisMin[0], math.Max(axisMin[1], axisMin[2]))
	alphaMax := math.Min(axisMax[0], math.Min(axisMax[1], axisMax[2]))
	if alphaMin >= alphaMax {
		// The ray misses the volume entirely.
		return 0
	}

	// Continuous voxel index of the entry point; its floor is the voxel
	// the traversal starts in.
	var index [3]int
	var alphaNext, alphaStep [3]float64
	var indexStep [3]int
	for a := 0; a < 3; a++ {
		entry := (src[a] + alphaMin*dir[a]) / spacing[a]
		index[a] = int(math.Floor(entry))
		if dir[a] == 0 {
			// Axis never triggers a crossing.
			alphaNext[a] = math.Inf(1)
			alphaStep[a] = math.Inf(1)
			indexStep[a] = 0
			continue
		}
		// First crossing ahead of the entry point: of the two planes
		// bracketing the entry index, the one crossed later.
		up := (math.Ceil(entry)*spacing[a] - src[a]) / dir[a]
		down := (math.Floor(entry)*spacing[a] - src[a]) / dir[a]
		alphaNext[a] = math.Max(up, down)
		alphaStep[a] = spacing[a] / math.Abs(dir[a])
		if dir[a] > 0 {
			indexStep[a] = 1
		} else {
			indexStep[a] = -1
		}
	}

	// Walk the grid one plane crossing at a time. Each iteration closes
	// the segment [alphaCur, next crossing] inside the current voxel,
	// accumulates it if the voxel is in bounds and above threshold, then
	// steps across the crossing. Ties between axes resolve x, then y,
	// then z. Out-of-bounds voxels are skipped without ending the walk.
	sum := 0.0
	alphaCur := alphaMin
	for {
		axis := 0
		if alphaNext[1] < alphaNext[axis] {
			axis = 1
		}
		if alphaNext[2] < alphaNext[axis] {
			axis = 2
		}
		if alphaNext[axis] >= alphaMax {
			break
		}
		sum += c.segment(index, alphaNext[axis]-alphaCur)
		alphaCur = alphaNext[axis]
		alphaNext[axis] += alphaStep[axis]
		index[axis] += indexStep[axis]
	}
	// Partial segment between the last crossing and the exit point.
	if alphaMax > alphaCur {
		sum += c.segment(index, alphaMax-alphaCur)
	}

	// Alpha is normalized to the source-target segment; scale by its
	// length to express the integral in world units, then clamp.
	return clampOutput(sum * ray.Norm())
}

// segment returns the contribution of one in-voxel ray segment of the
// given alpha length, or 0 if the voxel is outside the grid or at or
// below the threshold.
func (c *Caster) segment(index [3]int, alphaLen float64) float64 {
	i, j, k := index[0], index[1], index[2]
	if i < 0 || i >= c.volume.nx || j < 0 || j >= c.volume.ny || k < 0 || k >= c.volume.nz {
		return 0
	}
	value := c.volume.At(i, j, k)
	if value <= c.threshold {
		return 0
	}
	return alphaLen * (value - c.threshold)
}

// clampOutput bounds the accumulated sum to the representable output
// range. Overflow is a deterministic clamp, never an error.
func clampOutput(v float64) float64 {
	if v < minOutputValue {
		return minOutputValue
	}
	if v > maxOutputValue {
		return maxOutputValue
	}
	return v
}
