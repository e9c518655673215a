package integrator

import (
	"math"
	"testing"

	"row-major.net/harpoon/camera"
	"row-major.net/harpoon/geometry"
	"row-major.net/harpoon/material"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec3"
)

func lambert(t *testing.T, albedo float64) material.BSDF {
	t.Helper()
	b, err := material.NewBSDF(material.NewLambertian(spectrum.Gray(albedo)))
	if err != nil {
		t.Fatalf("NewBSDF: %v", err)
	}
	return b
}

// slab is a pair of large facing white planes with a small light hanging
// between them, so paths bounce many times before escaping.
func slab(t *testing.T) *scene.Scene {
	s := scene.New(camera.ImagePlane{Aspect: 1, Width: 1, Distance: 1})
	s.Add(geometry.NewPrimitive("floor", geometry.NewQuad(50, 50), transform.Identity(), lambert(t, 0.8)))
	s.Add(geometry.NewPrimitive("ceiling", geometry.NewQuad(50, 50),
		transform.Compose(transform.Translate(vec3.T{0, 0, 2}), transform.RotateX(180)), lambert(t, 0.8)))
	s.Add(geometry.NewLight("lamp", geometry.NewSphere(0.25), transform.Translate(vec3.T{1, 0, 1}), material.BSDF{},
		geometry.Emission{L: spectrum.Gray(1), Intensity: 5}))
	return s
}

func meanLi(pt *PathTracer, r ray.Ray, seed int64, n int) float64 {
	rng := sampling.NewRNGFromSeed(seed)
	sum := 0.0
	for i := 0; i < n; i++ {
		l := pt.Li(r, rng)
		sum += l[0]
	}
	return sum / float64(n)
}

func TestMissIsBlack(t *testing.T) {
	pt := New(slab(t), DefaultOptions())
	if got := pt.Li(ray.New(vec3.T{100, 100, 1}, vec3.T{1, 0, 0}), sampling.NewRNGFromSeed(1)); !got.IsBlack() {
		t.Errorf("escaping ray gave %v, want black", got)
	}
}

func TestCameraRaySeesEmitter(t *testing.T) {
	pt := New(slab(t), DefaultOptions())
	got := pt.Li(ray.Toward(vec3.T{-3, 0, 1}, vec3.T{1, 0, 1}), sampling.NewRNGFromSeed(2))
	if got != spectrum.Gray(5) {
		t.Errorf("Li looking straight at the lamp = %v, want 5", got)
	}
}

func TestEstimatesAreFinite(t *testing.T) {
	pt := New(slab(t), DefaultOptions())
	rng := sampling.NewRNGFromSeed(3)
	r := ray.Toward(vec3.T{0, 0, 1.5}, vec3.T{0.1, 0.2, 0})
	for i := 0; i < 10000; i++ {
		l := pt.Li(r, rng)
		if !l.IsFinite() || l[0] < 0 {
			t.Fatalf("sample %d: Li = %v", i, l)
		}
	}
}

func TestRussianRouletteUnbiased(t *testing.T) {
	s := slab(t)
	r := ray.Toward(vec3.T{-1, 0, 1.5}, vec3.T{-1.2, 0.3, 0})

	withRR := DefaultOptions()
	withoutRR := DefaultOptions()
	withoutRR.RussianRoulette = false

	const n = 100000
	got := meanLi(New(s, withRR), r, 4, n)
	want := meanLi(New(s, withoutRR), r, 5, n)
	if math.Abs(got-want) > 0.03*want {
		t.Errorf("mean Li with roulette = %v, without = %v", got, want)
	}
}

func TestMaxBouncesLimitsDepth(t *testing.T) {
	s := slab(t)
	r := ray.Toward(vec3.T{-1, 0, 1.5}, vec3.T{-1.2, 0.3, 0})

	oneBounce := Options{MaxBounces: 1}
	manyBounces := Options{MaxBounces: 20}

	const n = 50000
	direct := meanLi(New(s, oneBounce), r, 6, n)
	global := meanLi(New(s, manyBounces), r, 6, n)
	if direct <= 0 {
		t.Fatalf("direct-only estimate = %v, want positive", direct)
	}
	if global <= direct*1.2 {
		t.Errorf("interreflection did not add light: 1 bounce %v, 20 bounces %v", direct, global)
	}
}
