package material

import (
	"errors"
	"math"

	"row-major.net/harpoon/contact"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec3"
)

// MaxTerms bounds how many BxDFs one BSDF can hold.
const MaxTerms = 4

var ErrTooManyTerms = errors.New("bsdf has no room for another term")

// BSDF is the sum of up to MaxTerms BxDFs.
type BSDF struct {
	terms [MaxTerms]BxDF
	n     int
}

// NewBSDF builds a BSDF from terms.
func NewBSDF(terms ...BxDF) (BSDF, error) {
	b := BSDF{}
	for _, t := range terms {
		if err := b.Add(t); err != nil {
			return BSDF{}, err
		}
	}
	return b, nil
}

func (b *BSDF) Add(t BxDF) error {
	if b.n == MaxTerms {
		return ErrTooManyTerms
	}
	b.terms[b.n] = t
	b.n++
	return nil
}

func (b *BSDF) Len() int {
	return b.n
}

func (b *BSDF) Terms() []BxDF {
	return b.terms[:b.n]
}

// F sums every term's reflectance for world directions wo and wi at c.
func (b *BSDF) F(woWorld, wiWorld vec3.T, c *contact.Contact) spectrum.T {
	wo := c.ToLocal(woWorld)
	if math.Abs(wo[2]) < ray.Epsilon {
		return spectrum.Black
	}
	wi := c.ToLocal(wiWorld)

	f := spectrum.Black
	for i := 0; i < b.n; i++ {
		f = spectrum.AddSS(f, b.terms[i].F(wo, wi))
	}
	return f
}

// Pdf is the mean of the terms' densities, matching the uniform term
// selection in SampleF.
func (b *BSDF) Pdf(woWorld, wiWorld vec3.T, c *contact.Contact) float64 {
	if b.n == 0 {
		return 0
	}
	wo := c.ToLocal(woWorld)
	if wo[2] == 0 {
		return 0
	}
	wi := c.ToLocal(wiWorld)

	pdf := 0.0
	for i := 0; i < b.n; i++ {
		pdf += b.terms[i].Pdf(wo, wi)
	}
	return pdf / float64(b.n)
}

// SampleF chooses one term uniformly, samples it, and folds in the other
// terms' f and pdf at the chosen direction.  The returned Wi is in world
// space.  ok is false when no usable direction was produced.
func (b *BSDF) SampleF(woWorld vec3.T, c *contact.Contact, rng *sampling.RNG) (s Sample, ok bool) {
	if b.n == 0 {
		return Sample{}, false
	}
	wo := c.ToLocal(woWorld)
	if math.Abs(wo[2]) < ray.Epsilon {
		return Sample{}, false
	}

	pick := rng.Intn(b.n)
	chosen := &b.terms[pick]
	s = chosen.SampleF(wo, sampling.Uniform2(rng))
	if s.Pdf < ray.Epsilon {
		return Sample{}, false
	}

	if b.n > 1 {
		for i := 0; i < b.n; i++ {
			if i == pick {
				continue
			}
			s.Pdf += b.terms[i].Pdf(wo, s.Wi)
			s.F = spectrum.AddSS(s.F, b.terms[i].F(wo, s.Wi))
		}
		s.Pdf /= float64(b.n)
	}

	s.Wi = c.ToWorld(s.Wi)
	return s, true
}
