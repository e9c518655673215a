package vec2

import "math"

// T is a point in a two-dimensional sample domain (unit square or unit disk).
type T [2]float64

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1])
}

func MulVS(a T, s float64) T {
	return T{a[0] * s, a[1] * s}
}

func SubVV(a, b T) T {
	return T{a[0] - b[0], a[1] - b[1]}
}
