// Package film accumulates filtered radiance samples into a per-pixel
// running estimate, and converts that estimate to displayable or
// persistable forms.
//
// A Film is not safe for concurrent use; the renderer serializes access.
package film

import (
	"fmt"

	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec2"
)

// Film is indexed by (col, row) with row 0 at the bottom of the image
// plane.
type Film struct {
	Cols, Rows int

	Sums    []spectrum.T
	Weights []float64
	Means   []spectrum.T

	TotalSamples int64
}

func New(cols, rows int) (*Film, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("film must have positive dimensions, got %dx%d", cols, rows)
	}
	n := cols * rows
	return &Film{
		Cols:    cols,
		Rows:    rows,
		Sums:    make([]spectrum.T, n),
		Weights: make([]float64, n),
		Means:   make([]spectrum.T, n),
	}, nil
}

func (f *Film) index(col, row int) int {
	return row*f.Cols + col
}

// AddSample accumulates radiance l observed at offset within pixel (col,
// row), where offset is in [0, 1)^2.
func (f *Film) AddSample(col, row int, offset vec2.T, l spectrum.T, filter Filter) {
	i := f.index(col, row)
	w := filter.Weight(vec2.T{offset[0] - 0.5, offset[1] - 0.5})
	f.Sums[i] = spectrum.AddSS(f.Sums[i], spectrum.MulSF(l, w))
	f.Weights[i] += w
	if f.Weights[i] > 0 {
		f.Means[i] = spectrum.DivSF(f.Sums[i], f.Weights[i])
	}
	f.TotalSamples++
}

// Pixel is the current estimate for (col, row).
func (f *Film) Pixel(col, row int) spectrum.T {
	return f.Means[f.index(col, row)]
}

// SamplesPerPixel is the integer average sample count.
func (f *Film) SamplesPerPixel() int64 {
	return f.TotalSamples / int64(f.Cols*f.Rows)
}

// Clone makes a deep copy.
func (f *Film) Clone() *Film {
	c := &Film{
		Cols:         f.Cols,
		Rows:         f.Rows,
		Sums:         append([]spectrum.T(nil), f.Sums...),
		Weights:      append([]float64(nil), f.Weights...),
		Means:        append([]spectrum.T(nil), f.Means...),
		TotalSamples: f.TotalSamples,
	}
	return c
}

// recomputeMeans rebuilds Means from Sums and Weights.
func (f *Film) recomputeMeans() {
	for i := range f.Sums {
		if f.Weights[i] > 0 {
			f.Means[i] = spectrum.DivSF(f.Sums[i], f.Weights[i])
		} else {
			f.Means[i] = spectrum.Black
		}
	}
}
