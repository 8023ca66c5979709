package models

// Projection is a 2D detector image synthesized by casting one ray per
// pixel. Pixel values are path-integral scalars in world units; the
// buffer is stored flat in row-major order (idx = row*Width + col).
type Projection struct {
	// Data holds the per-pixel path-integral values.
	Data []float64

	// Width and Height are the detector dimensions in pixels.
	Width  int
	Height int

	// PixelSpacing is the physical size of a detector pixel in mm.
	PixelSpacing float64

	// Angle is the gantry projection angle in radians at which this
	// projection was synthesized.
	Angle float64
}

// NewProjection allocates a zero-filled projection image.
func NewProjection(width, height int, pixelSpacing, angle float64) *Projection {
	return &Projection{
		Data:         make([]float64, width*height),
		Width:        width,
		Height:       height,
		PixelSpacing: pixelSpacing,
		Angle:        angle,
	}
}

// At returns the pixel value at column i, row j.
func (p *Projection) At(i, j int) float64 {
	return p.Data[j*p.Width+i]
}

// Set stores a pixel value at column i, row j.
func (p *Projection) Set(i, j int, value float64) {
	p.Data[j*p.Width+i] = value
}
