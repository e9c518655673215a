package sampling

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRNGDeterministicAcrossRefills(t *testing.T) {
	a := NewRNGFromSeed(7)
	b := NewRNGFromSeed(7)
	for i := 0; i < 3*BufferSize+5; i++ {
		x, y := a.Float64(), b.Float64()
		if x != y {
			t.Fatalf("draw %d: streams diverged: %v != %v", i, x, y)
		}
		if x < 0 || x >= 1 {
			t.Fatalf("draw %d: %v out of [0, 1)", i, x)
		}
	}
}

func TestSeedSourceConcurrent(t *testing.T) {
	seeds := NewSeedSource(12)

	var mu sync.Mutex
	got := map[int64]bool{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s := seeds.Next()
				mu.Lock()
				got[s] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(got) != 1600 {
		t.Errorf("got %d distinct seeds, want 1600", len(got))
	}
}

func TestIntnRange(t *testing.T) {
	r := NewRNGFromSeed(1)
	counts := make([]int, 3)
	for i := 0; i < 30000; i++ {
		counts[r.Intn(3)]++
	}
	for i, c := range counts {
		if c < 9000 || c > 11000 {
			t.Errorf("bucket %d has %d draws, want about 10000", i, c)
		}
	}
}

func TestCosineHemisphereMean(t *testing.T) {
	// E[cos] under the cos/pi density is 2/3.
	r := NewRNGFromSeed(3)
	const n = 200000
	sum := 0.0
	for i := 0; i < n; i++ {
		w := CosineHemisphere(Uniform2(r))
		if w[2] < 0 {
			t.Fatalf("sample %v below the hemisphere", w)
		}
		if l := w.Norm(); math.Abs(l-1) > 1e-9 {
			t.Fatalf("sample %v has length %v", w, l)
		}
		sum += w[2]
	}
	if got := sum / n; math.Abs(got-2.0/3) > 0.005 {
		t.Errorf("mean cos = %v, want about 2/3", got)
	}
}

func TestUniformDiskInside(t *testing.T) {
	r := NewRNGFromSeed(4)
	inner := 0
	const n = 100000
	for i := 0; i < n; i++ {
		d := UniformDisk(Uniform2(r))
		if d.Norm() > 1 {
			t.Fatalf("sample %v outside the unit disk", d)
		}
		if d.Norm() < 0.5 {
			inner++
		}
	}
	// A quarter of the area lies within radius 1/2.
	if frac := float64(inner) / n; math.Abs(frac-0.25) > 0.01 {
		t.Errorf("fraction within r=0.5 is %v, want about 0.25", frac)
	}
}

func TestPowerHeuristic(t *testing.T) {
	got := []float64{
		PowerHeuristic(1, 1, 1, 1),
		PowerHeuristic(1, 3, 1, 1),
		PowerHeuristic(1, 0, 1, 0),
	}
	want := []float64{0.5, 0.9, 0}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("PowerHeuristic; diff (-got +want)\n%s", diff)
	}
}
