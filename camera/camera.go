// Package camera maps image-plane positions to primary rays.
package camera

import (
	"fmt"

	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

// ImagePlane is a pinhole camera at Origin looking along +z through a
// rectangle of the given Width and Width/Aspect height, placed Distance in
// front of it and shifted up by VerticalOffset.
//
// Image-plane y increases upward.
type ImagePlane struct {
	Origin         vec3.T
	Aspect         float64
	Width          float64
	Distance       float64
	VerticalOffset float64
}

func (c *ImagePlane) Validate() error {
	if c.Aspect <= 0 || c.Width <= 0 || c.Distance <= 0 {
		return fmt.Errorf("image plane needs positive aspect, width and distance; got %v, %v, %v", c.Aspect, c.Width, c.Distance)
	}
	return nil
}

func (c *ImagePlane) Height() float64 {
	return c.Width / c.Aspect
}

// PixelRows is the raster height that matches the aspect ratio for a raster
// cols pixels wide.
func (c *ImagePlane) PixelRows(cols int) int {
	rows := int(float64(cols)/c.Aspect + 0.5)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// PixelToPlane maps a position within pixel (col, row), offset by jitter in
// [0, 1)^2, to image-plane coordinates.  Row 0 is the bottom of the plane.
func (c *ImagePlane) PixelToPlane(col, row, cols, rows int, jitter vec2.T) vec2.T {
	return vec2.T{
		(jitter[0] + float64(col)) * c.Width / float64(cols),
		(jitter[1] + float64(row)) * c.Height() / float64(rows),
	}
}

// ImageToRay builds the primary ray through image-plane point p.
func (c *ImagePlane) ImageToRay(p vec2.T) ray.Ray {
	d := vec3.T{
		p[0] - c.Width/2,
		p[1] - c.Height()/2 + c.VerticalOffset,
		c.Distance,
	}
	return ray.New(c.Origin, d)
}
