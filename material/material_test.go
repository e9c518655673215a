package material

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"row-major.net/harpoon/contact"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec3"
)

func TestLambertianEnergyConservation(t *testing.T) {
	albedo := spectrum.T{0.8, 0.5, 0.2}
	b := NewLambertian(albedo)
	rng := sampling.NewRNGFromSeed(1)
	wo := vec3.Normalize(vec3.T{0.3, 0.1, 0.9})

	// Integrate f*cos over the upper hemisphere with uniform sphere samples.
	const n = 400000
	sum := spectrum.Black
	for i := 0; i < n; i++ {
		wi := sampling.UniformSphere(sampling.Uniform2(rng))
		sum = spectrum.AddSS(sum, spectrum.MulSF(b.F(wo, wi), math.Abs(wi[2])*4*math.Pi))
	}
	got := spectrum.DivSF(sum, n)
	if diff := cmp.Diff(got, albedo, cmpopts.EquateApprox(0.02, 0)); diff != "" {
		t.Errorf("hemispherical reflectance; diff (-got +want)\n%s", diff)
	}
}

func TestLambertianFIndependentOfWo(t *testing.T) {
	b := NewLambertian(spectrum.Gray(0.5))
	wi := vec3.T{0, 0, 1}
	a := b.F(vec3.Normalize(vec3.T{1, 0, 0.1}), wi)
	c := b.F(vec3.T{0, 0, 1}, wi)
	if diff := cmp.Diff(a, c); diff != "" {
		t.Errorf("f depends on wo; diff (-grazing +normal)\n%s", diff)
	}
}

func TestLambertianPdfNormalized(t *testing.T) {
	b := NewLambertian(spectrum.Gray(1))
	rng := sampling.NewRNGFromSeed(2)
	wo := vec3.T{0, 0, 1}

	const n = 400000
	sum := 0.0
	for i := 0; i < n; i++ {
		wi := sampling.UniformSphere(sampling.Uniform2(rng))
		sum += b.Pdf(wo, wi) * 4 * math.Pi
	}
	if got := sum / n; math.Abs(got-1) > 0.01 {
		t.Errorf("integral of pdf = %v, want 1", got)
	}
}

func TestLambertianSampleMatchesPdf(t *testing.T) {
	b := NewLambertian(spectrum.Gray(1))
	rng := sampling.NewRNGFromSeed(5)
	for _, wo := range []vec3.T{{0, 0, 1}, vec3.Normalize(vec3.T{0.2, 0, -1})} {
		for i := 0; i < 1000; i++ {
			s := b.SampleF(wo, sampling.Uniform2(rng))
			if !sameHemisphere(wo, s.Wi) && s.Wi[2] != 0 {
				t.Fatalf("sampled wi %v not in hemisphere of wo %v", s.Wi, wo)
			}
			if want := b.Pdf(wo, s.Wi); s.Pdf != want {
				t.Fatalf("sample pdf %v, Pdf() %v", s.Pdf, want)
			}
		}
	}
}

func TestSpecularReflection(t *testing.T) {
	b := NewSpecularReflection(spectrum.Gray(1), Fresnel{})
	rng := sampling.NewRNGFromSeed(3)
	for i := 0; i < 1000; i++ {
		wo := sampling.UniformSphere(sampling.Uniform2(rng))
		if math.Abs(wo[2]) < 1e-6 {
			continue
		}
		s := b.SampleF(wo, sampling.Uniform2(rng))
		if !s.Specular || s.Pdf != 1 {
			t.Fatalf("SampleF(%v) = %+v, want specular sample with pdf 1", wo, s)
		}
		if s.Wi[2] != wo[2] || s.Wi[0] != -wo[0] || s.Wi[1] != -wo[1] {
			t.Fatalf("SampleF(%v).Wi = %v, want mirror direction", wo, s.Wi)
		}
		// A mirror with unit reflectance returns exactly one after the cosine.
		if got := s.F[0] * math.Abs(s.Wi[2]); math.Abs(got-1) > 1e-9 {
			t.Fatalf("f*|cos| = %v, want 1", got)
		}

		other := sampling.UniformSphere(sampling.Uniform2(rng))
		if !b.F(wo, other).IsBlack() || b.Pdf(wo, other) != 0 {
			t.Fatalf("delta term evaluated to non-zero for (%v, %v)", wo, other)
		}
	}
}

func TestFresnelDielectric(t *testing.T) {
	testCases := []struct {
		desc       string
		cos        float64
		etaI, etaT float64
		want       float64
	}{
		{"normal incidence air to glass", 1, 1, 1.5, 0.04},
		{"normal incidence glass to air", -1, 1, 1.5, 0.04},
		{"grazing", 0, 1, 1.5, 1},
		{"total internal reflection", -0.1, 1, 1.5, 1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := FresnelDielectric(tc.cos, tc.etaI, tc.etaT)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("FresnelDielectric(%v, %v, %v) = %v, want %v", tc.cos, tc.etaI, tc.etaT, got, tc.want)
			}
		})
	}

	if got := (Fresnel{}).Evaluate(0.3); got != 1 {
		t.Errorf("mirror Fresnel = %v, want 1", got)
	}
}

func TestBSDFCapacity(t *testing.T) {
	terms := make([]BxDF, MaxTerms+1)
	for i := range terms {
		terms[i] = NewLambertian(spectrum.Gray(0.1))
	}
	if _, err := NewBSDF(terms...); !errors.Is(err, ErrTooManyTerms) {
		t.Errorf("NewBSDF with %d terms: error = %v, want %v", len(terms), err, ErrTooManyTerms)
	}
}

func TestBSDFSampleWorldSpace(t *testing.T) {
	bsdf, err := NewBSDF(NewLambertian(spectrum.Gray(0.5)), NewSpecularReflection(spectrum.Gray(1), Fresnel{}))
	if err != nil {
		t.Fatalf("NewBSDF: %v", err)
	}

	n := vec3.Normalize(vec3.T{1, 1, 0})
	wo := vec3.Normalize(vec3.T{1, 0, 0})
	c := contact.New(1, vec3.Zero, n, vec3.T{0, 0, 1}, wo)
	rng := sampling.NewRNGFromSeed(9)

	sawSpecular, sawDiffuse := false, false
	for i := 0; i < 200; i++ {
		s, ok := bsdf.SampleF(wo, &c, rng)
		if !ok {
			t.Fatalf("SampleF failed for a well-posed wo")
		}
		if vec3.IProd(s.Wi, n) <= 0 {
			t.Fatalf("wi %v is below the surface with normal %v", s.Wi, n)
		}
		if s.Specular {
			sawSpecular = true
			mirror := vec3.Reflect(vec3.Neg(wo), n)
			if diff := cmp.Diff(s.Wi, mirror, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Fatalf("specular wi; diff (-got +want)\n%s", diff)
			}
		} else {
			sawDiffuse = true
			if want := bsdf.Pdf(wo, s.Wi, &c); math.Abs(s.Pdf-want) > 1e-9 {
				t.Fatalf("diffuse pick pdf = %v, want mean pdf %v", s.Pdf, want)
			}
		}
	}
	if !sawSpecular || !sawDiffuse {
		t.Errorf("uniform term selection never picked one of the terms: specular %v diffuse %v", sawSpecular, sawDiffuse)
	}
}

func TestBSDFGrazing(t *testing.T) {
	bsdf, err := NewBSDF(NewLambertian(spectrum.Gray(0.5)))
	if err != nil {
		t.Fatalf("NewBSDF: %v", err)
	}
	c := contact.New(1, vec3.Zero, vec3.T{0, 0, 1}, vec3.T{1, 0, 0}, vec3.T{1, 0, 0})
	wo := vec3.T{1, 0, 0}
	if f := bsdf.F(wo, vec3.T{0, 0, 1}, &c); !f.IsBlack() {
		t.Errorf("F at grazing wo = %v, want black", f)
	}
	if _, ok := bsdf.SampleF(wo, &c, sampling.NewRNGFromSeed(1)); ok {
		t.Errorf("SampleF at grazing wo succeeded, want failure")
	}
}
