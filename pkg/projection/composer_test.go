package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"drrcast/pkg/geometry"
)

func vecApproxEqual(a, b geometry.Vec, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps && math.Abs(a.Z-b.Z) <= eps
}

// TestInitializeMissingPose verifies the failure mode when no pose is set.
func TestInitializeMissingPose(t *testing.T) {
	c := NewComposer(nil, 0, 1000)
	if err := c.Initialize(); !errors.Is(err, ErrMissingPose) {
		t.Fatalf("Initialize with nil pose: got %v, want ErrMissingPose", err)
	}
}

// TestSourceWorldIdentityPose verifies the source position in the volume
// frame for an identity pose centered at (5,5,5) with a 1000mm focal
// distance at gantry angle 0: the source sits 1000mm before the isocenter
// along -y.
func TestSourceWorldIdentityPose(t *testing.T) {
	pose := geometry.NewPose(geometry.Vec{X: 5, Y: 5, Z: 5})
	c := NewComposer(pose, 0, 1000)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	want := geometry.Vec{X: 5, Y: -995, Z: 5}
	if got := c.SourceWorld(); !vecApproxEqual(got, want, 1e-9) {
		t.Errorf("SourceWorld = %+v, want %+v", got, want)
	}

	// A detector point on the central axis maps onto the same column.
	got := c.InverseTransform().Apply(geometry.Vec{Z: -1400})
	wantTarget := geometry.Vec{X: 5, Y: 405, Z: 5}
	if !vecApproxEqual(got, wantTarget, 1e-9) {
		t.Errorf("inverse of detector center = %+v, want %+v", got, wantTarget)
	}
}

// TestSourceWorldQuarterRotation verifies that a 90 degree gantry angle
// moves the source onto the +x axis of the volume frame.
func TestSourceWorldQuarterRotation(t *testing.T) {
	pose := geometry.NewPose(geometry.Vec{})
	c := NewComposer(pose, math.Pi/2, 1000)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	want := geometry.Vec{X: 1000}
	if got := c.SourceWorld(); !vecApproxEqual(got, want, 1e-9) {
		t.Errorf("SourceWorld at 90 deg = %+v, want %+v", got, want)
	}
}

// TestInitializeIdempotent verifies that initializing twice with identical
// inputs yields identical transforms.
func TestInitializeIdempotent(t *testing.T) {
	pose := geometry.NewPose(geometry.Vec{X: 5, Y: 5, Z: 5})
	pose.SetRotation(0.1, -0.2, 0.3)
	pose.SetTranslation(geometry.Vec{X: 2, Y: -1, Z: 4})

	c := NewComposer(pose, 0.7, 1000)
	if err := c.Initialize(); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	first := c.InverseTransform()
	firstSource := c.SourceWorld()

	if err := c.Initialize(); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}
	if diff := cmp.Diff(first, c.InverseTransform()); diff != "" {
		t.Errorf("inverse transform changed across identical initializations:\n%s", diff)
	}
	if diff := cmp.Diff(firstSource, c.SourceWorld()); diff != "" {
		t.Errorf("source position changed across identical initializations:\n%s", diff)
	}
}

// TestRecomputeTracksPoseCounter verifies the lazy cache: Recompute reuses
// the cached transform until the pose's counter moves, and rebuilds it
// afterwards.
func TestRecomputeTracksPoseCounter(t *testing.T) {
	pose := geometry.NewPose(geometry.Vec{X: 5, Y: 5, Z: 5})
	c := NewComposer(pose, 0, 1000)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	cached := c.InverseTransform()

	// No pose change: the cached transform must be reused unchanged.
	if err := c.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if diff := cmp.Diff(cached, c.InverseTransform()); diff != "" {
		t.Errorf("Recompute rebuilt an up-to-date cache:\n%s", diff)
	}

	// Pose change: the counter moves and Recompute must rebuild.
	pose.SetRotation(0, 0, 0.5)
	if err := c.Recompute(); err != nil {
		t.Fatalf("Recompute after pose change failed: %v", err)
	}
	if diff := cmp.Diff(cached, c.InverseTransform()); diff == "" {
		t.Error("Recompute did not rebuild after the pose changed")
	}
}

// TestSettersInvalidateCache verifies that changing the projection angle
// or focal distance forces a rebuild on the next recompute.
func TestSettersInvalidateCache(t *testing.T) {
	pose := geometry.NewPose(geometry.Vec{})
	c := NewComposer(pose, 0, 1000)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	cached := c.InverseTransform()

	c.SetProjectionAngle(math.Pi / 4)
	if err := c.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if diff := cmp.Diff(cached, c.InverseTransform()); diff == "" {
		t.Error("changing the projection angle did not invalidate the cache")
	}

	cached = c.InverseTransform()
	c.SetFocalDistance(1500)
	if err := c.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if diff := cmp.Diff(cached, c.InverseTransform()); diff == "" {
		t.Error("changing the focal distance did not invalidate the cache")
	}
}
