// Package geometry holds the renderable primitives: analytic shapes placed in
// the world by a transform, carrying a material and optionally emission.
package geometry

import (
	"fmt"
	"math"

	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

type ShapeKind int

const (
	Disk ShapeKind = iota
	Quad
	Sphere
)

func (k ShapeKind) String() string {
	switch k {
	case Disk:
		return "disk"
	case Quad:
		return "quad"
	case Sphere:
		return "sphere"
	}
	return "unknown"
}

// Shape is an object-space surface.  Which fields are meaningful depends on
// Kind:
//
//   - Disk: Radius, and Z, the height of the disk's plane.  Normal +z.
//   - Quad: Width (along x) and Height (along y), centered at the origin in
//     the z=0 plane.  Normal +z.
//   - Sphere: Radius, centered at the origin.  Normal points outward.
type Shape struct {
	Kind   ShapeKind
	Radius float64
	Z      float64
	Width  float64
	Height float64
}

func NewDisk(radius, z float64) Shape {
	return Shape{Kind: Disk, Radius: radius, Z: z}
}

func NewQuad(width, height float64) Shape {
	return Shape{Kind: Quad, Width: width, Height: height}
}

func NewSphere(radius float64) Shape {
	return Shape{Kind: Sphere, Radius: radius}
}

// Validate rejects shapes with non-positive extents, which would give a
// non-positive area.
func (s Shape) Validate() error {
	switch s.Kind {
	case Disk, Sphere:
		if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
			return fmt.Errorf("%v radius must be positive, got %v", s.Kind, s.Radius)
		}
	case Quad:
		if !(s.Width > 0) || !(s.Height > 0) || math.IsInf(s.Width, 0) || math.IsInf(s.Height, 0) {
			return fmt.Errorf("quad extents must be positive, got %vx%v", s.Width, s.Height)
		}
	default:
		return fmt.Errorf("unknown shape kind %v", s.Kind)
	}
	return nil
}

// Area is the object-space surface area.
func (s Shape) Area() float64 {
	switch s.Kind {
	case Disk:
		return math.Pi * s.Radius * s.Radius
	case Quad:
		return s.Width * s.Height
	case Sphere:
		return 4 * math.Pi * s.Radius * s.Radius
	}
	return 0
}

// IsPlanar reports whether the shape lies in a z=const plane.
func (s Shape) IsPlanar() bool {
	return s.Kind == Disk || s.Kind == Quad
}

// hit is an object-space intersection before the frame is built.
type hit struct {
	t    float64
	p    vec3.T
	n    vec3.T
	dpdu vec3.T
}

// intersect finds the nearest hit with t > ray.Epsilon along r, in object
// space.
func (s Shape) intersect(r ray.Ray) (hit, bool) {
	switch s.Kind {
	case Disk:
		return s.intersectDisk(r)
	case Quad:
		return s.intersectQuad(r)
	case Sphere:
		return s.intersectSphere(r)
	}
	return hit{}, false
}

func (s Shape) intersectDisk(r ray.Ray) (hit, bool) {
	if r.D[2] == 0 {
		return hit{}, false
	}
	t := (s.Z - r.O[2]) / r.D[2]
	if t <= ray.Epsilon || math.IsInf(t, 0) {
		return hit{}, false
	}
	p := r.At(t)
	if p[0]*p[0]+p[1]*p[1] > s.Radius*s.Radius+ray.Epsilon {
		return hit{}, false
	}
	p[2] = s.Z
	return hit{
		t:    t,
		p:    p,
		n:    vec3.T{0, 0, 1},
		dpdu: vec3.T{-p[1], p[0], 0},
	}, true
}

func (s Shape) intersectQuad(r ray.Ray) (hit, bool) {
	if r.D[2] == 0 {
		return hit{}, false
	}
	t := -r.O[2] / r.D[2]
	if t <= ray.Epsilon || math.IsInf(t, 0) {
		return hit{}, false
	}
	p := r.At(t)
	if math.Abs(p[0]) > s.Width/2 || math.Abs(p[1]) > s.Height/2 {
		return hit{}, false
	}
	p[2] = 0
	return hit{
		t:    t,
		p:    p,
		n:    vec3.T{0, 0, 1},
		dpdu: vec3.T{1, 0, 0},
	}, true
}

func (s Shape) intersectSphere(r ray.Ray) (hit, bool) {
	a := r.D.NormSquared()
	b := 2 * vec3.IProd(r.O, r.D)
	c := r.O.NormSquared() - s.Radius*s.Radius

	t0, t1, ok := quadratic(a, b, c)
	if !ok {
		return hit{}, false
	}
	t := t0
	if t <= ray.Epsilon {
		t = t1
		if t <= ray.Epsilon {
			return hit{}, false
		}
	}

	// Pull the hit point back onto the surface.
	p := r.At(t)
	p = vec3.MulVS(p, s.Radius/p.Norm())
	return hit{
		t:    t,
		p:    p,
		n:    vec3.DivVS(p, s.Radius),
		dpdu: vec3.T{-p[1], p[0], 0},
	}, true
}

// quadratic solves a*t^2 + b*t + c = 0, returning the roots in ascending
// order.  It avoids the cancellation of the textbook formula.
func quadratic(a, b, c float64) (t0, t1 float64, ok bool) {
	discrim := b*b - 4*a*c
	if discrim < 0 || a == 0 {
		return 0, 0, false
	}
	root := math.Sqrt(discrim)

	var q float64
	if b < 0 {
		q = -0.5 * (b - root)
	} else {
		q = -0.5 * (b + root)
	}
	if q == 0 {
		// b and the discriminant are both zero: a double root at zero.
		return 0, 0, c == 0
	}
	t0, t1 = q/a, c/q
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	return t0, t1, true
}

// sample draws a point uniformly by area, returning it with its outward
// normal.
func (s Shape) sample(u vec2.T) (p, n vec3.T) {
	switch s.Kind {
	case Disk:
		d := sampling.UniformDisk(u)
		return vec3.T{d[0] * s.Radius, d[1] * s.Radius, s.Z}, vec3.T{0, 0, 1}
	case Quad:
		q := sampling.UniformSquare(u)
		return vec3.T{q[0] * s.Width, q[1] * s.Height, 0}, vec3.T{0, 0, 1}
	case Sphere:
		n = sampling.UniformSphere(u)
		return vec3.MulVS(n, s.Radius), n
	}
	return vec3.Zero, vec3.Zero
}
