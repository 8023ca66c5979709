// Package metric scores the similarity between reference projection
// images and synthesized DRRs. Registration optimizers drive the volume
// pose to maximize this score across two simultaneous projection views.
package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"drrcast/internal/models"
)

// TwoProjectionCorrelation computes the normalized cross-correlation
// between two fixed (reference) projections and two synthesized (moving)
// projections, combined as the mean of the per-view measures. A value of
// 1 means both views match perfectly up to a positive scale factor.
type TwoProjectionCorrelation struct {
	// SubtractMean removes the sample mean from each image before
	// correlating. This typically narrows the valleys of the cost
	// function around the registered pose.
	SubtractMean bool
}

// Value returns the combined correlation measure for the two view pairs.
// Each fixed image must have the same dimensions as its moving
// counterpart.
func (m *TwoProjectionCorrelation) Value(fixed1, fixed2, moving1, moving2 *models.Projection) (float64, error) {
	c1, err := m.correlate(fixed1, moving1)
	if err != nil {
		return 0, fmt.Errorf("metric: view 1: %w", err)
	}
	c2, err := m.correlate(fixed2, moving2)
	if err != nil {
		return 0, fmt.Errorf("metric: view 2: %w", err)
	}
	return 0.5 * (c1 + c2), nil
}

// correlate computes the normalized cross-correlation of one image pair:
// sum(f*m) / sqrt(sum(f^2) * sum(m^2)), optionally after subtracting the
// sample means. A pair with zero energy correlates to 0.
func (m *TwoProjectionCorrelation) correlate(fixed, moving *models.Projection) (float64, error) {
	if fixed == nil || moving == nil {
		return 0, fmt.Errorf("nil projection")
	}
	if fixed.Width != moving.Width || fixed.Height != moving.Height {
		return 0, fmt.Errorf("dimension mismatch: fixed %dx%d vs moving %dx%d",
			fixed.Width, fixed.Height, moving.Width, moving.Height)
	}

	f := fixed.Data
	g := moving.Data
	if m.SubtractMean {
		fm := stat.Mean(f, nil)
		gm := stat.Mean(g, nil)
		f = make([]float64, len(fixed.Data))
		g = make([]float64, len(moving.Data))
		for i := range fixed.Data {
			f[i] = fixed.Data[i] - fm
			g[i] = moving.Data[i] - gm
		}
	}

	sfg := floats.Dot(f, g)
	sff := floats.Dot(f, f)
	sgg := floats.Dot(g, g)
	denom := math.Sqrt(sff * sgg)
	if denom == 0 {
		return 0, nil
	}
	return sfg / denom, nil
}
