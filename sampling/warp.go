package sampling

import (
	"math"

	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

// UniformSquare maps u onto [-0.5, 0.5)^2.
func UniformSquare(u vec2.T) vec2.T {
	return vec2.T{u[0] - 0.5, u[1] - 0.5}
}

// UniformDisk maps u onto the unit disk with uniform area density.
func UniformDisk(u vec2.T) vec2.T {
	r := math.Sqrt(u[0])
	s, c := math.Sincos(2 * math.Pi * u[1])
	return vec2.T{r * c, r * s}
}

// CosineHemisphere projects a uniform disk sample up onto the +z hemisphere,
// giving density cos(theta)/pi.
func CosineHemisphere(u vec2.T) vec3.T {
	d := UniformDisk(u)
	z := math.Sqrt(math.Max(0, 1-d[0]*d[0]-d[1]*d[1]))
	return vec3.T{d[0], d[1], z}
}

// UniformSphere maps u onto the unit sphere with density 1/(4*pi).
func UniformSphere(u vec2.T) vec3.T {
	z := 1 - 2*u[0]
	r := math.Sqrt(math.Max(0, 1-z*z))
	s, c := math.Sincos(2 * math.Pi * u[1])
	return vec3.T{r * c, r * s, z}
}

// PowerHeuristic weights a sample from strategy f against strategy g with
// exponent 2.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f == 0 && g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// Uniform2 draws a 2D sample from r.
func Uniform2(r *RNG) vec2.T {
	return vec2.T{r.Float64(), r.Float64()}
}
