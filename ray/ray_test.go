package ray

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec3"
)

func TestNewNormalizes(t *testing.T) {
	r := New(vec3.T{1, 2, 3}, vec3.T{0, 0, 10})
	if diff := cmp.Diff(r.At(2), vec3.T{1, 2, 5}); diff != "" {
		t.Errorf("At(2); diff (-got +want)\n%s", diff)
	}
}

func TestTransformRenormalizes(t *testing.T) {
	s, err := transform.Scale(3, 3, 3)
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	got := New(vec3.T{1, 0, 0}, vec3.T{0, 1, 0}).Transform(s)
	want := Ray{O: vec3.T{3, 0, 0}, D: vec3.T{0, 1, 0}}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("Transform; diff (-got +want)\n%s", diff)
	}
}
