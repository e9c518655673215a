// Package integrator estimates the radiance carried along camera rays by
// unidirectional path tracing with next-event estimation.
package integrator

import (
	"math"

	"row-major.net/harpoon/light"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec3"
)

type Options struct {
	// MaxBounces caps the number of scattering events on a path.
	MaxBounces int

	// Russian roulette starts after RouletteStartBounce scattering events.
	// The termination probability never drops below RouletteFloor.
	RussianRoulette     bool
	RouletteStartBounce int
	RouletteFloor       float64
}

func DefaultOptions() Options {
	return Options{
		MaxBounces:          20,
		RussianRoulette:     true,
		RouletteStartBounce: 3,
		RouletteFloor:       0.05,
	}
}

type PathTracer struct {
	scene *scene.Scene
	opts  Options
}

func New(s *scene.Scene, opts Options) *PathTracer {
	return &PathTracer{scene: s, opts: opts}
}

// Li returns a single-sample estimate of the radiance arriving at r's
// origin from direction -r.D.
func (p *PathTracer) Li(r ray.Ray, rng *sampling.RNG) spectrum.T {
	l := spectrum.Black
	beta := spectrum.Gray(1)

	for bounces := 0; bounces < p.opts.MaxBounces; bounces++ {
		si, ok := p.scene.Intersect(r)
		if !ok {
			break
		}

		// Emitters end the path.  Beyond the camera ray, light reaching an
		// emitter was already counted by next-event estimation.
		if si.IsLight() {
			if bounces == 0 {
				le := light.L(si.Primitive, si.N, si.Wo)
				l = spectrum.AddSS(l, spectrum.MulSS(beta, le))
			}
			break
		}

		direct := light.UniformSampleOneLight(&si, p.scene, rng)
		l = spectrum.AddSS(l, spectrum.MulSS(beta, direct))

		bs, ok := si.Primitive.BSDF.SampleF(si.Wo, &si.Contact, rng)
		if !ok || bs.F.IsBlack() || bs.Pdf == 0 {
			break
		}
		beta = spectrum.MulSS(beta, spectrum.MulSF(bs.F, vec3.AbsIProd(bs.Wi, si.N)/bs.Pdf))
		r = si.Spawn(bs.Wi)

		if p.opts.RussianRoulette && bounces > p.opts.RouletteStartBounce {
			q := math.Max(p.opts.RouletteFloor, 1-beta.Max())
			if rng.Float64() < q {
				break
			}
			beta = spectrum.DivSF(beta, 1-q)
		}
	}
	return l
}
