// Package render drives the ray caster across a full detector grid to
// synthesize DRR projection images, parallelizing across image rows.
package render

import (
	"fmt"
	"runtime"
	"sync"

	"drrcast/internal/models"
	"drrcast/pkg/geometry"
	"drrcast/pkg/raycast"
)

// Detector describes the flat-panel detector geometry. The detector plane
// sits at z = -Distance in the imaging frame, so that the X-ray source at
// the origin looks through the isocenter onto the panel. Pixel (0, 0) is
// the top-left corner; world coordinates are centered on the panel with
// an optional 2D offset.
type Detector struct {
	// Width and Height are the panel dimensions in pixels.
	Width  int
	Height int

	// PixelSpacing is the physical pixel size in mm.
	PixelSpacing float64

	// OffsetU and OffsetV shift the panel center in mm.
	OffsetU float64
	OffsetV float64

	// Distance is the source-to-detector distance in mm.
	Distance float64
}

// PixelWorld returns the world coordinate of the center of pixel (i, j)
// on the detector plane. Rows count downward in image space, so the
// vertical world coordinate is flipped to keep +v pointing up.
func (d Detector) PixelWorld(i, j int) geometry.Vec {
	u := (float64(i)-float64(d.Width-1)/2)*d.PixelSpacing + d.OffsetU
	v := (float64(d.Height-1)/2-float64(j))*d.PixelSpacing + d.OffsetV
	return geometry.Vec{X: u, Y: v, Z: -d.Distance}
}

// Renderer synthesizes projections by sampling one ray per detector
// pixel. Geometry initialization happens once per projection under
// exclusive access; the per-pixel sampling then fans out across worker
// goroutines, one image row at a time.
type Renderer struct {
	caster   *raycast.Caster
	detector Detector
	workers  int
}

// NewRenderer returns a renderer over the given caster and detector.
// workers bounds the number of concurrent row workers; values below 1
// fall back to the number of CPUs.
func NewRenderer(caster *raycast.Caster, detector Detector, workers int) *Renderer {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Renderer{caster: caster, detector: detector, workers: workers}
}

// Render synthesizes one projection at the given gantry angle (radians)
// and focal-point-to-isocenter distance (mm) for the current pose.
func (r *Renderer) Render(pose *geometry.Pose, angle, focalDistance float64) (*models.Projection, error) {
	if r.detector.Width <= 0 || r.detector.Height <= 0 {
		return nil, fmt.Errorf("render: invalid detector size %dx%d", r.detector.Width, r.detector.Height)
	}

	// Phase one: recompute the projection geometry exclusively.
	if err := r.caster.InitializeGeometry(pose, angle, focalDistance); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	proj := models.NewProjection(r.detector.Width, r.detector.Height, r.detector.PixelSpacing, angle)

	// Phase two: fan out read-only Sample calls across rows. Workers
	// write disjoint rows of the shared buffer, so no locking is needed.
	rows := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range rows {
				base := j * r.detector.Width
				for i := 0; i < r.detector.Width; i++ {
					proj.Data[base+i] = r.caster.Sample(r.detector.PixelWorld(i, j))
				}
			}
		}()
	}
	for j := 0; j < r.detector.Height; j++ {
		rows <- j
	}
	close(rows)
	wg.Wait()

	return proj, nil
}
