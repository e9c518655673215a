// Package spectrum is a three-channel (linear RGB) stand-in for spectral
// radiance.
package spectrum

import "math"

// BlackThreshold is the per-channel magnitude under which a spectrum is
// considered black.
const BlackThreshold = 1e-4

type T [3]float64

var Black = T{0, 0, 0}

// Gray returns a spectrum with every channel set to v.
func Gray(v float64) T {
	return T{v, v, v}
}

// FromRGB8 maps 8-bit channel values onto [0, 1].
func FromRGB8(r, g, b uint8) T {
	return T{float64(r) / 255, float64(g) / 255, float64(b) / 255}
}

func AddSS(a, b T) T {
	return T{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func MulSS(a, b T) T {
	return T{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func MulSF(a T, f float64) T {
	return T{a[0] * f, a[1] * f, a[2] * f}
}

func DivSF(a T, f float64) T {
	return T{a[0] / f, a[1] / f, a[2] / f}
}

// Max is the largest channel value.
func (s T) Max() float64 {
	return math.Max(s[0], math.Max(s[1], s[2]))
}

func (s T) IsBlack() bool {
	for _, c := range s {
		if math.Abs(c) >= BlackThreshold {
			return false
		}
	}
	return true
}

func (s T) IsFinite() bool {
	for _, c := range s {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// SRGB applies the sRGB transfer curve to a linear value in [0, 1].
func SRGB(x float64) float64 {
	if x <= 0.0031308 {
		return 12.92 * x
	}
	return 1.055*math.Pow(x, 1/2.4) - 0.055
}
