// Package material implements surface scattering: BxDF terms and the BSDF
// that aggregates them.
//
// All BxDF methods work in the local shading frame, where the surface normal
// is +z.
package material

import (
	"math"

	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

type Kind int

const (
	Lambertian Kind = iota
	SpecularReflection
)

func (k Kind) String() string {
	switch k {
	case Lambertian:
		return "lambertian"
	case SpecularReflection:
		return "specular"
	}
	return "unknown"
}

// BxDF is one additive scattering term.  Fresnel is only consulted by
// specular terms.
type BxDF struct {
	Kind    Kind
	R       spectrum.T
	Fresnel Fresnel
}

func NewLambertian(albedo spectrum.T) BxDF {
	return BxDF{Kind: Lambertian, R: albedo}
}

func NewSpecularReflection(r spectrum.T, fr Fresnel) BxDF {
	return BxDF{Kind: SpecularReflection, R: r, Fresnel: fr}
}

// Sample is the result of importance-sampling a scattering direction.
type Sample struct {
	F        spectrum.T
	Wi       vec3.T
	Pdf      float64
	Specular bool
}

func (b *BxDF) IsSpecular() bool {
	return b.Kind == SpecularReflection
}

func sameHemisphere(a, b vec3.T) bool {
	return a[2]*b[2] > 0
}

// F evaluates the term for the pair (wo, wi).  Delta distributions are zero
// everywhere they can be evaluated.
func (b *BxDF) F(wo, wi vec3.T) spectrum.T {
	switch b.Kind {
	case Lambertian:
		if !sameHemisphere(wo, wi) {
			return spectrum.Black
		}
		return spectrum.MulSF(b.R, 1/math.Pi)
	}
	return spectrum.Black
}

// Pdf is the density with which SampleF would choose wi given wo.
func (b *BxDF) Pdf(wo, wi vec3.T) float64 {
	switch b.Kind {
	case Lambertian:
		if !sameHemisphere(wo, wi) {
			return 0
		}
		return math.Abs(wi[2]) / math.Pi
	}
	return 0
}

// SampleF picks wi given wo using the two uniforms in u.
func (b *BxDF) SampleF(wo vec3.T, u vec2.T) Sample {
	switch b.Kind {
	case Lambertian:
		// theta = asin(sqrt(u0)) gives a cosine-weighted polar angle.
		sinTheta := math.Sqrt(u[0])
		cosTheta := math.Sqrt(math.Max(0, 1-u[0]))
		s, c := math.Sincos(2 * math.Pi * u[1])
		wi := vec3.T{sinTheta * c, sinTheta * s, cosTheta}
		if wo[2] < 0 {
			wi[2] = -wi[2]
		}
		return Sample{
			F:   b.F(wo, wi),
			Wi:  wi,
			Pdf: b.Pdf(wo, wi),
		}
	case SpecularReflection:
		wi := vec3.T{-wo[0], -wo[1], wo[2]}
		cosI := wi[2]
		if cosI == 0 {
			return Sample{Wi: wi, Specular: true}
		}
		f := spectrum.MulSF(b.R, b.Fresnel.Evaluate(cosI)/math.Abs(cosI))
		return Sample{
			F:        f,
			Wi:       wi,
			Pdf:      1,
			Specular: true,
		}
	}
	return Sample{}
}
