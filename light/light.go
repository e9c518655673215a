// Package light implements next-event estimation against the emissive
// primitives of a scene.
package light

import (
	"math"

	"row-major.net/harpoon/geometry"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

// Sample is incident radiance from one point on a light.
type Sample struct {
	Li  spectrum.T
	Wi  vec3.T
	Pdf float64
	P   vec3.T
}

// L is the radiance a light emits from a point with surface normal n in
// direction w.  Only the front face emits.
func L(light *geometry.Primitive, n, w vec3.T) spectrum.T {
	if light.Emission == nil || vec3.IProd(n, w) <= 0 {
		return spectrum.Black
	}
	return light.Emission.Radiance()
}

// SampleLi samples a point on light as seen from ref.  ok is false for
// degenerate samples, which carry no contribution.
func SampleLi(light *geometry.Primitive, ref vec3.T, u vec2.T) (Sample, bool) {
	ps := light.SampleFrom(ref, u)
	if ps.Pdf == 0 {
		return Sample{}, false
	}
	d := vec3.SubVV(ps.P, ref)
	distSq := d.NormSquared()
	if distSq < ray.Epsilon {
		return Sample{}, false
	}
	wi := vec3.DivVS(d, math.Sqrt(distSq))
	return Sample{
		Li:  L(light, ps.N, vec3.Neg(wi)),
		Wi:  wi,
		Pdf: ps.Pdf,
		P:   ps.P,
	}, true
}

// PdfLi is the solid-angle density of SampleLi choosing direction wi from
// ref.
func PdfLi(light *geometry.Primitive, ref, wi vec3.T) float64 {
	return light.Pdf(ref, wi)
}

// EstimateLWithIS estimates direct lighting at si from one sample of light,
// weighting by the surface's BSDF and the cosine at si.
func EstimateLWithIS(si *geometry.SurfaceInteraction, light *geometry.Primitive, s *scene.Scene, rng *sampling.RNG) spectrum.T {
	ls, ok := SampleLi(light, si.P, sampling.Uniform2(rng))
	if !ok || ls.Li.IsBlack() {
		return spectrum.Black
	}

	f := si.Primitive.BSDF.F(si.Wo, ls.Wi, &si.Contact)
	f = spectrum.MulSF(f, vec3.AbsIProd(ls.Wi, si.N))
	if f.IsBlack() {
		return spectrum.Black
	}
	if !s.Unoccluded(si.P, ls.P) {
		return spectrum.Black
	}
	return spectrum.DivSF(spectrum.MulSS(f, ls.Li), ls.Pdf)
}

// UniformSampleOneLight picks one light uniformly and scales its estimate by
// the number of lights, giving an unbiased estimate of the sum over all of
// them.
func UniformSampleOneLight(si *geometry.SurfaceInteraction, s *scene.Scene, rng *sampling.RNG) spectrum.T {
	n := len(s.Lights)
	if n == 0 {
		return spectrum.Black
	}
	l := s.Lights[rng.Intn(n)]
	return spectrum.MulSF(EstimateLWithIS(si, l, s, rng), float64(n))
}
