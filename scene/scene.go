// Package scene holds the set of primitives being rendered and answers
// nearest-hit and visibility queries by scanning all of them.
package scene

import (
	"fmt"

	"row-major.net/harpoon/camera"
	"row-major.net/harpoon/geometry"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/vmath/vec3"
)

type Scene struct {
	Camera camera.ImagePlane

	// Primitives is in insertion order.  Lights is the subset that emit.
	Primitives []*geometry.Primitive
	Lights     []*geometry.Primitive
}

func New(cam camera.ImagePlane) *Scene {
	return &Scene{Camera: cam}
}

// Add registers p, and records it as a light if it emits.
func (s *Scene) Add(p *geometry.Primitive) {
	s.Primitives = append(s.Primitives, p)
	if p.IsLight() {
		s.Lights = append(s.Lights, p)
	}
}

// Validate checks that the scene can be rendered.
func (s *Scene) Validate() error {
	if err := s.Camera.Validate(); err != nil {
		return fmt.Errorf("while validating camera: %w", err)
	}
	if len(s.Primitives) == 0 {
		return fmt.Errorf("scene has no primitives")
	}
	for i, p := range s.Primitives {
		if err := p.Shape.Validate(); err != nil {
			return fmt.Errorf("while validating primitive %d (%q): %w", i, p.Name, err)
		}
	}
	return nil
}

// Intersect returns the closest hit along r with t > ray.Epsilon.
func (s *Scene) Intersect(r ray.Ray) (geometry.SurfaceInteraction, bool) {
	var best geometry.SurfaceInteraction
	found := false
	for _, p := range s.Primitives {
		si, ok := p.Intersect(r)
		if !ok {
			continue
		}
		if !found || si.T < best.T {
			best = si
			found = true
		}
	}
	return best, found
}

// Unoccluded reports whether nothing lies strictly between p1 and p2.  A hit
// on the surface at p2 itself does not count as occlusion.
func (s *Scene) Unoccluded(p1, p2 vec3.T) bool {
	dist := vec3.Distance(p1, p2)
	if dist < ray.Epsilon {
		return true
	}
	si, ok := s.Intersect(ray.Toward(p1, p2))
	if !ok {
		return true
	}
	if si.T >= dist-ray.Epsilon {
		return true
	}
	return vec3.Distance(si.P, p2) < ray.Epsilon
}
