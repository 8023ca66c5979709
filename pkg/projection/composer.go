// Package projection derives the composed rigid transform that maps
// detector-pixel world coordinates back into a volume's native frame for
// divergent (cone-beam) X-ray simulation. The composition models the
// physical setup of a rotating gantry: the volume's pose, the gantry
// rotation about the isocenter, a shift placing the X-ray source at the
// origin, and a fixed camera orientation looking down the negative z axis.
package projection

import (
	"errors"
	"math"

	"drrcast/pkg/geometry"
)

// ErrMissingPose is returned when the composer is asked to recompute
// without a pose.
var ErrMissingPose = errors.New("projection: pose is not set")

// SourcePoint is the X-ray source position in the imaging frame before
// geometry composition: the coordinate origin by convention.
var SourcePoint = geometry.Vec{}

// Composer owns the composed projection transform and its inverse,
// recomputing them lazily whenever the pose's modification counter moves
// past the counter recorded at the previous recomputation.
//
// Recomputation mutates the cached transforms and must not run
// concurrently with readers. The intended protocol is one Initialize call
// under exclusive access, then any number of concurrent read-only
// accesses to InverseTransform and SourceWorld.
type Composer struct {
	pose            *geometry.Pose
	projectionAngle float64
	focalDistance   float64

	// Fixed -90 degree rotation about x establishing the standard
	// negative-z projection convention: the source sits at the origin
	// looking down -z with +y as up.
	camRot geometry.Rigid

	forward     geometry.Rigid
	inverse     geometry.Rigid
	sourceWorld geometry.Vec
	poseMTime   uint64
	valid       bool
}

// NewComposer returns a composer for the given pose, gantry projection
// angle (radians), and focal-point-to-isocenter distance (mm). Any finite
// angle and distance are accepted; no domain validation is applied.
func NewComposer(pose *geometry.Pose, projectionAngle, focalDistance float64) *Composer {
	return &Composer{
		pose:            pose,
		projectionAngle: projectionAngle,
		focalDistance:   focalDistance,
		camRot:          geometry.NewEuler(-math.Pi/2, 0, 0, geometry.Vec{}, geometry.Vec{}),
	}
}

// SetPose replaces the pose and invalidates the cached transforms.
func (c *Composer) SetPose(pose *geometry.Pose) {
	c.pose = pose
	c.valid = false
}

// SetProjectionAngle sets the gantry angle in radians and invalidates the
// cached transforms.
func (c *Composer) SetProjectionAngle(angle float64) {
	c.projectionAngle = angle
	c.valid = false
}

// SetFocalDistance sets the focal-point-to-isocenter distance in
// millimeters and invalidates the cached transforms.
func (c *Composer) SetFocalDistance(d float64) {
	c.focalDistance = d
	c.valid = false
}

// ProjectionAngle returns the gantry angle in radians.
func (c *Composer) ProjectionAngle() float64 {
	return c.projectionAngle
}

// FocalDistance returns the focal-point-to-isocenter distance in
// millimeters.
func (c *Composer) FocalDistance() float64 {
	return c.focalDistance
}

// stale reports whether the cached transforms are missing or older than
// the pose's modification counter.
func (c *Composer) stale() bool {
	return !c.valid || (c.pose != nil && c.pose.MTime() > c.poseMTime)
}

// Recompute rebuilds the composed transform and its inverse if the cache
// is stale; otherwise it reuses the cached transforms unchanged. It fails
// with ErrMissingPose when no pose is set.
func (c *Composer) Recompute() error {
	if c.pose == nil {
		return ErrMissingPose
	}
	if !c.stale() {
		return nil
	}

	iso := c.pose.Center()

	// Place the ray-casting frame at the volume's world pose.
	composed := c.pose.Transform()

	// Rotate about the isocenter to simulate the gantry rotation. The
	// rotation is about z; afterwards the beam projects towards +y.
	gantry := geometry.NewEuler(0, 0, -c.projectionAngle, geometry.Vec{}, iso)
	composed = composed.Then(gantry)

	// Shift the origin to the X-ray source position.
	shift := geometry.NewTranslation(geometry.Vec{
		X: -iso.X,
		Y: c.focalDistance - iso.Y,
		Z: -iso.Z,
	})
	composed = composed.Then(shift)

	// Establish the standard negative-z projection convention.
	composed = composed.Then(c.camRot)

	c.forward = composed
	c.inverse = composed.Inverse()
	c.poseMTime = c.pose.MTime()
	c.valid = true
	return nil
}

// Initialize forces one recomputation regardless of the cache state and
// additionally caches the source position in the volume's native frame,
// which is invariant for a given geometry state and would otherwise be
// recomputed once per ray.
func (c *Composer) Initialize() error {
	c.valid = false
	if err := c.Recompute(); err != nil {
		return err
	}
	c.sourceWorld = c.inverse.Apply(SourcePoint)
	return nil
}

// ForwardTransform returns the composed transform mapping points from the
// volume's native frame into the imaging frame.
func (c *Composer) ForwardTransform() geometry.Rigid {
	return c.forward
}

// InverseTransform returns the transform mapping detector-pixel world
// coordinates back into the volume's native frame.
func (c *Composer) InverseTransform() geometry.Rigid {
	return c.inverse
}

// SourceWorld returns the X-ray source position in the volume's native
// frame, cached by Initialize.
func (c *Composer) SourceWorld() geometry.Vec {
	return c.sourceWorld
}
