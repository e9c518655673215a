// Package ray defines half-lines through world or object space.
package ray

import (
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec3"
)

// Epsilon is the minimum parametric distance accepted as a hit, and the
// tolerance used for degenerate-geometry checks throughout the renderer.
const Epsilon = 1e-4

// Ray is the half-line O + t*D for t > 0.  D is unit length.
type Ray struct {
	O vec3.T
	D vec3.T
}

// New builds a ray, normalizing d.
func New(o, d vec3.T) Ray {
	return Ray{O: o, D: vec3.Normalize(d)}
}

func (r Ray) At(t float64) vec3.T {
	return vec3.AddVV(r.O, vec3.MulVS(r.D, t))
}

// Toward builds a ray from p1 aimed at p2.
func Toward(p1, p2 vec3.T) Ray {
	return New(p1, vec3.SubVV(p2, p1))
}

// Transform maps the ray through xf.  The direction is renormalized, so
// parametric distances are not preserved under scaling; callers that need
// world distances recompute them from transformed points.
func (r Ray) Transform(xf transform.Transform) Ray {
	return New(xf.ApplyPoint(r.O), xf.ApplyVector(r.D))
}
