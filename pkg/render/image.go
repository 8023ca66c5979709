package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"drrcast/internal/models"
)

// SavePNG writes a projection as a 16-bit grayscale PNG, scaling pixel
// values linearly so the brightest path integral maps to white. A
// projection that is zero everywhere produces an all-black image.
func SavePNG(proj *models.Projection, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	maxVal := floats.Max(proj.Data)
	scale := 0.0
	if maxVal > 0 {
		scale = 65535.0 / maxVal
	}

	img := image.NewGray16(image.Rect(0, 0, proj.Width, proj.Height))
	for j := 0; j < proj.Height; j++ {
		for i := 0; i < proj.Width; i++ {
			v := proj.At(i, j) * scale
			if v < 0 {
				v = 0
			} else if v > 65535 {
				v = 65535
			}
			img.SetGray16(i, j, color.Gray16{Y: uint16(v)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
