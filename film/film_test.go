package film

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec2"
)

func mustFilm(t *testing.T, cols, rows int) *Film {
	t.Helper()
	f, err := New(cols, rows)
	if err != nil {
		t.Fatalf("New(%d, %d): %v", cols, rows, err)
	}
	return f
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(0, 4); err == nil {
		t.Errorf("New(0, 4) succeeded, want error")
	}
}

func TestBoxFilterIsPlainAverage(t *testing.T) {
	f := mustFilm(t, 2, 1)
	f.AddSample(1, 0, vec2.T{0.1, 0.9}, spectrum.Gray(1), Box)
	f.AddSample(1, 0, vec2.T{0.5, 0.5}, spectrum.Gray(3), Box)

	if diff := cmp.Diff(f.Pixel(1, 0), spectrum.Gray(2)); diff != "" {
		t.Errorf("mean; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(f.Pixel(0, 0), spectrum.Black); diff != "" {
		t.Errorf("untouched pixel; diff (-got +want)\n%s", diff)
	}
	if f.TotalSamples != 2 || f.SamplesPerPixel() != 1 {
		t.Errorf("TotalSamples = %d, SamplesPerPixel = %d, want 2 and 1", f.TotalSamples, f.SamplesPerPixel())
	}
}

func TestTriangleFilterWeights(t *testing.T) {
	testCases := []struct {
		d    vec2.T
		want float64
	}{
		{vec2.T{0, 0}, 1},
		{vec2.T{0.5, 0}, 0.5},
		{vec2.T{-0.5, -0.5}, 0.25},
		{vec2.T{1.5, 0}, 0},
	}
	for _, tc := range testCases {
		if got := Triangle.Weight(tc.d); got != tc.want {
			t.Errorf("Triangle.Weight(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}

	f := mustFilm(t, 1, 1)
	f.AddSample(0, 0, vec2.T{0.5, 0.5}, spectrum.Gray(1), Triangle)
	f.AddSample(0, 0, vec2.T{0, 0.5}, spectrum.Gray(4), Triangle)
	// Weights 1 and 0.5: (1 + 2) / 1.5.
	if diff := cmp.Diff(f.Pixel(0, 0), spectrum.Gray(2), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("weighted mean; diff (-got +want)\n%s", diff)
	}
}

func TestParseFilter(t *testing.T) {
	for _, want := range []Filter{Box, Triangle} {
		got, err := ParseFilter(want.String())
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q) = %v, %v", want.String(), got, err)
		}
	}
	if _, err := ParseFilter("gaussian"); err == nil {
		t.Errorf("ParseFilter accepted an unknown filter")
	}
}

func TestToRGBAFlipsAndTonemaps(t *testing.T) {
	f := mustFilm(t, 1, 2)
	f.AddSample(0, 0, vec2.T{0.5, 0.5}, spectrum.T{5, 0, -1}, Box)
	f.AddSample(0, 1, vec2.T{0.5, 0.5}, spectrum.Gray(0.5), Box)

	img := f.ToRGBA(2, 4)
	if got := img.Bounds().Dx()*1000 + img.Bounds().Dy(); got != 2004 {
		t.Fatalf("image is %v, want 2x4", img.Bounds())
	}

	// Film row 0 is the bottom, so it lands in the last raster rows.
	bottom := img.RGBAAt(1, 3)
	if diff := cmp.Diff(bottom, color.RGBA{R: 255, G: 0, B: 0, A: 255}); diff != "" {
		t.Errorf("bottom pixel; diff (-got +want)\n%s", diff)
	}
	top := img.RGBAAt(0, 0)
	// sRGB(0.5) = 0.7354, times 255 floors to 187.
	if diff := cmp.Diff(top, color.RGBA{R: 187, G: 187, B: 187, A: 255}); diff != "" {
		t.Errorf("top pixel; diff (-got +want)\n%s", diff)
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	f := mustFilm(t, 3, 2)
	f.AddSample(0, 0, vec2.T{0.2, 0.7}, spectrum.T{1, 2, 3}, Triangle)
	f.AddSample(2, 1, vec2.T{0.5, 0.5}, spectrum.T{0.25, 0, 9}, Box)
	f.AddSample(2, 1, vec2.T{0.5, 0.5}, spectrum.T{0.75, 1, 1}, Box)

	buf := &bytes.Buffer{}
	if err := Write(f, buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(got, f); diff != "" {
		t.Errorf("checkpoint round trip; diff (-got +want)\n%s", diff)
	}
}

func TestCheckpointFile(t *testing.T) {
	f := mustFilm(t, 2, 2)
	f.AddSample(1, 1, vec2.T{0.5, 0.5}, spectrum.Gray(0.5), Box)

	name := filepath.Join(t.TempDir(), "film.ckpt")
	if err := WriteFile(f, name); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(name)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if diff := cmp.Diff(got, f); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte{1, 2, 3})); err == nil {
		t.Errorf("Read accepted a truncated stream")
	}
}

func TestClone(t *testing.T) {
	f := mustFilm(t, 1, 1)
	f.AddSample(0, 0, vec2.T{0.5, 0.5}, spectrum.Gray(1), Box)
	c := f.Clone()
	f.AddSample(0, 0, vec2.T{0.5, 0.5}, spectrum.Gray(3), Box)
	if diff := cmp.Diff(c.Pixel(0, 0), spectrum.Gray(1)); diff != "" {
		t.Errorf("clone changed along with its source; diff (-got +want)\n%s", diff)
	}
}

// headerOnly encodes a checkpoint header with no body.
func headerOnly(t *testing.T, fields map[string]interface{}) []byte {
	t.Helper()
	hdr, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	hdrBytes, err := proto.Marshal(hdr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	out := make([]byte, 8, 8+len(hdrBytes))
	binary.LittleEndian.PutUint64(out, uint64(len(hdrBytes)))
	return append(out, hdrBytes...)
}

func TestReadRejectsImplausibleHeader(t *testing.T) {
	testCases := []struct {
		desc             string
		cols, rows, spls float64
	}{
		{"huge film", 1 << 20, 1 << 20, 0},
		{"overflowing dimensions", 1 << 40, 1 << 40, 0},
		{"zero columns", 0, 4, 0},
		{"negative rows", 4, -4, 0},
		{"negative samples", 4, 4, -1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			b := headerOnly(t, map[string]interface{}{
				"cols":                tc.cols,
				"rows":                tc.rows,
				"total_samples":       tc.spls,
				"data_layout_version": dataLayoutVersion,
			})
			if _, err := Read(bytes.NewReader(b)); err == nil {
				t.Errorf("Read accepted a %vx%v film with %v samples", tc.cols, tc.rows, tc.spls)
			}
		})
	}
}
