package film

import (
	"image"
	"image/color"
	"math"

	"row-major.net/harpoon/spectrum"
)

// clampMax sits just above 1 so that a fully saturated channel maps to 255
// after flooring.
const clampMax = 1.0039

func to8(x float64) uint8 {
	v := math.Floor(255 * spectrum.SRGB(math.Min(clampMax, math.Max(0, x))))
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

// ToRGBA renders the current estimate into a width x height 8-bit image,
// resampling by nearest neighbor.  Raster row 0 is the top of the image.
func (f *Film) ToRGBA(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := f.Rows - 1 - y*f.Rows/height
		for x := 0; x < width; x++ {
			col := x * f.Cols / width
			p := f.Means[f.index(col, row)]
			img.SetRGBA(x, y, color.RGBA{R: to8(p[0]), G: to8(p[1]), B: to8(p[2]), A: 255})
		}
	}
	return img
}
