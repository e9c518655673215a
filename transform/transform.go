// Package transform implements invertible affine maps between object space
// and world space.
package transform

import (
	"errors"
	"math"

	"row-major.net/harpoon/vmath/mat44"
	"row-major.net/harpoon/vmath/vec3"
)

// ErrSingular is returned when a transform would be built from a matrix that
// has no inverse.
var ErrSingular = errors.New("transform matrix is not invertible")

// Transform is a 4x4 homogeneous matrix together with its cached inverse.
type Transform struct {
	m, mInv mat44.T
}

// New builds a Transform from m, computing its inverse once.
func New(m mat44.T) (Transform, error) {
	inv, ok := mat44.Inverse(m)
	if !ok {
		return Transform{}, ErrSingular
	}
	return Transform{m: m, mInv: inv}, nil
}

func Identity() Transform {
	return Transform{m: mat44.Identity(), mInv: mat44.Identity()}
}

func Translate(d vec3.T) Transform {
	m := mat44.Identity()
	m[3], m[7], m[11] = d[0], d[1], d[2]
	inv := mat44.Identity()
	inv[3], inv[7], inv[11] = -d[0], -d[1], -d[2]
	return Transform{m: m, mInv: inv}
}

// Scale scales each axis independently.  A zero factor collapses space and
// yields ErrSingular.
func Scale(x, y, z float64) (Transform, error) {
	if x == 0 || y == 0 || z == 0 {
		return Transform{}, ErrSingular
	}
	m := mat44.Identity()
	m[0], m[5], m[10] = x, y, z
	inv := mat44.Identity()
	inv[0], inv[5], inv[10] = 1/x, 1/y, 1/z
	return Transform{m: m, mInv: inv}, nil
}

// RotateX rotates by deg degrees about the X axis.
func RotateX(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := mat44.T{
		1, 0, 0, 0,
		0, c, -s, 0,
		0, s, c, 0,
		0, 0, 0, 1,
	}
	return Transform{m: m, mInv: mat44.Transpose(m)}
}

// RotateY rotates by deg degrees about the Y axis.
func RotateY(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := mat44.T{
		c, 0, s, 0,
		0, 1, 0, 0,
		-s, 0, c, 0,
		0, 0, 0, 1,
	}
	return Transform{m: m, mInv: mat44.Transpose(m)}
}

// RotateZ rotates by deg degrees about the Z axis.
func RotateZ(deg float64) Transform {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := mat44.T{
		c, -s, 0, 0,
		s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
	return Transform{m: m, mInv: mat44.Transpose(m)}
}

// Compose returns the transform that applies b first and then a (the matrix
// a*b).  The inverse is composed in the opposite order, not recomputed.
func Compose(a, b Transform) Transform {
	return Transform{
		m:    mat44.MulMM(a.m, b.m),
		mInv: mat44.MulMM(b.mInv, a.mInv),
	}
}

// Inverse swaps the forward and inverse matrices.
func (t Transform) Inverse() Transform {
	return Transform{m: t.mInv, mInv: t.m}
}

func (t Transform) Matrix() mat44.T {
	return t.m
}

// ApplyPoint applies the full transform, including the perspective divide.
func (t Transform) ApplyPoint(p vec3.T) vec3.T {
	m := &t.m
	x := m[0]*p[0] + m[1]*p[1] + m[2]*p[2] + m[3]
	y := m[4]*p[0] + m[5]*p[1] + m[6]*p[2] + m[7]
	z := m[8]*p[0] + m[9]*p[1] + m[10]*p[2] + m[11]
	w := m[12]*p[0] + m[13]*p[1] + m[14]*p[2] + m[15]
	if w == 1 {
		return vec3.T{x, y, z}
	}
	return vec3.T{x / w, y / w, z / w}
}

// ApplyVector applies only the linear part.
func (t Transform) ApplyVector(v vec3.T) vec3.T {
	m := &t.m
	return vec3.T{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2],
	}
}

// ApplyNormal applies the inverse transpose of the linear part, which keeps
// normals perpendicular to transformed tangents.  The result is not
// renormalized.
func (t Transform) ApplyNormal(n vec3.T) vec3.T {
	mi := &t.mInv
	return vec3.T{
		mi[0]*n[0] + mi[4]*n[1] + mi[8]*n[2],
		mi[1]*n[0] + mi[5]*n[1] + mi[9]*n[2],
		mi[2]*n[0] + mi[6]*n[1] + mi[10]*n[2],
	}
}
