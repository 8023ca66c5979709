package phantom

import (
	"testing"

	"drrcast/pkg/geometry"
)

var spacing = geometry.Vec{X: 1, Y: 1, Z: 1}

// TestUniform verifies the constant fill.
func TestUniform(t *testing.T) {
	v, err := Uniform(4, 4, 4, spacing, 123)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}
	for _, idx := range [][3]int{{0, 0, 0}, {3, 3, 3}, {1, 2, 3}} {
		if got := v.At(idx[0], idx[1], idx[2]); got != 123 {
			t.Errorf("At(%v) = %v, want 123", idx, got)
		}
	}
}

// TestShells verifies the layered intensities: empty corners, soft
// tissue at the center, dense shell in between.
func TestShells(t *testing.T) {
	v, err := Shells(32, 32, 32, spacing)
	if err != nil {
		t.Fatalf("Shells failed: %v", err)
	}

	if got := v.At(0, 0, 0); got != 0 {
		t.Errorf("corner = %v, want 0 (outside the ellipsoid)", got)
	}
	if got := v.At(16, 16, 16); got != 100 {
		t.Errorf("center = %v, want 100 (soft tissue)", got)
	}
	// Just inside the outer ellipsoid boundary along x: semi-axis is
	// 0.45*32 = 14.4 voxels around the center, so index 16+13 sits in
	// the dense shell (relative radius between 0.85 and 1).
	if got := v.At(16+13, 16, 16); got != 400 {
		t.Errorf("shell sample = %v, want 400 (dense shell)", got)
	}
}

// TestCornerBlock verifies the asymmetric phantom.
func TestCornerBlock(t *testing.T) {
	v, err := CornerBlock(12, 12, 12, spacing)
	if err != nil {
		t.Fatalf("CornerBlock failed: %v", err)
	}
	if got := v.At(0, 0, 0); got != 500 {
		t.Errorf("block corner = %v, want 500", got)
	}
	if got := v.At(11, 11, 11); got != 0 {
		t.Errorf("opposite corner = %v, want 0", got)
	}
}

// TestNewByName verifies the kind dispatch and the unknown-kind error.
func TestNewByName(t *testing.T) {
	for _, kind := range []string{"uniform", "shells", "corner"} {
		if _, err := New(kind, 8, 8, 8, spacing, 100); err != nil {
			t.Errorf("New(%q) failed: %v", kind, err)
		}
	}
	if _, err := New("swisscheese", 8, 8, 8, spacing, 100); err == nil {
		t.Error("expected error for unknown phantom kind")
	}
}
