package scenepack

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"row-major.net/harpoon/camera"
	"row-major.net/harpoon/geometry"
	"row-major.net/harpoon/material"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec3"
)

// A scene file is a JSON object:
//
//	{
//	  "camera": {"origin": [x, y, z], "aspect": 1, "width": 5.5,
//	             "distance": 8, "vertical_offset": 0},
//	  "primitives": [{
//	    "name": "floor",
//	    "shape": "quad", "width": 10, "height": 10,
//	    "transform": [{"translate": [0, 0, 3]}, {"rotate_x": -90}],
//	    "bxdfs": [{"type": "lambertian", "rgb": [255, 255, 255]}],
//	    "emission": {"color": [1, 1, 1], "intensity": 20}
//	  }]
//	}
//
// Disks take "radius" and "z", spheres "radius".  Colors are given either as
// "rgb" (0-255) or "color" (linear, 0-1).  Transform steps multiply left to
// right, so the last step listed is applied to the shape first.  Specular
// terms take optional "eta_i" and "eta_t"; leaving both out makes a mirror.

// LoadFile reads a scene description from a JSON file.
func LoadFile(name string) (*scene.Scene, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("while reading scene file: %w", err)
	}
	return Load(b)
}

// Load parses a JSON scene description.
func Load(b []byte) (*scene.Scene, error) {
	root := &structpb.Struct{}
	if err := protojson.Unmarshal(b, root); err != nil {
		return nil, fmt.Errorf("while parsing scene JSON: %w", err)
	}
	doc := object{root}

	camObj, err := doc.object("camera")
	if err != nil {
		return nil, err
	}
	cam, err := parseCamera(camObj)
	if err != nil {
		return nil, fmt.Errorf("while parsing camera: %w", err)
	}
	s := scene.New(cam)

	prims, err := doc.list("primitives")
	if err != nil {
		return nil, err
	}
	for i, v := range prims {
		st := v.GetStructValue()
		if st == nil {
			return nil, fmt.Errorf("primitive %d is not an object", i)
		}
		p, err := parsePrimitive(object{st})
		if err != nil {
			return nil, fmt.Errorf("while parsing primitive %d: %w", i, err)
		}
		s.Add(p)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// object wraps a JSON object with typed accessors.
type object struct {
	s *structpb.Struct
}

func (o object) has(key string) bool {
	_, ok := o.s.GetFields()[key]
	return ok
}

func (o object) number(key string) (float64, error) {
	v, ok := o.s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("missing %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%q is not a number", key)
	}
	return n.NumberValue, nil
}

func (o object) numberOr(key string, def float64) (float64, error) {
	if !o.has(key) {
		return def, nil
	}
	return o.number(key)
}

func (o object) str(key string) (string, error) {
	v, ok := o.s.GetFields()[key]
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%q is not a string", key)
	}
	return str.StringValue, nil
}

func (o object) list(key string) ([]*structpb.Value, error) {
	v, ok := o.s.GetFields()[key]
	if !ok {
		return nil, fmt.Errorf("missing %q", key)
	}
	l := v.GetListValue()
	if l == nil {
		return nil, fmt.Errorf("%q is not a list", key)
	}
	return l.GetValues(), nil
}

func (o object) object(key string) (object, error) {
	v, ok := o.s.GetFields()[key]
	if !ok {
		return object{}, fmt.Errorf("missing %q", key)
	}
	st := v.GetStructValue()
	if st == nil {
		return object{}, fmt.Errorf("%q is not an object", key)
	}
	return object{st}, nil
}

func (o object) triple(key string) ([3]float64, error) {
	vals, err := o.list(key)
	if err != nil {
		return [3]float64{}, err
	}
	if len(vals) != 3 {
		return [3]float64{}, fmt.Errorf("%q has %d elements, want 3", key, len(vals))
	}
	var out [3]float64
	for i, v := range vals {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return [3]float64{}, fmt.Errorf("%q element %d is not a number", key, i)
		}
		out[i] = n.NumberValue
	}
	return out, nil
}

// color reads "rgb" (8-bit) or "color" (linear).
func (o object) color() (spectrum.T, error) {
	if o.has("rgb") {
		c, err := o.triple("rgb")
		if err != nil {
			return spectrum.T{}, err
		}
		return spectrum.DivSF(spectrum.T(c), 255), nil
	}
	c, err := o.triple("color")
	if err != nil {
		return spectrum.T{}, err
	}
	return spectrum.T(c), nil
}

func parseCamera(o object) (camera.ImagePlane, error) {
	origin, err := o.triple("origin")
	if err != nil {
		return camera.ImagePlane{}, err
	}
	cam := camera.ImagePlane{Origin: vec3.T(origin)}
	if cam.Aspect, err = o.number("aspect"); err != nil {
		return camera.ImagePlane{}, err
	}
	if cam.Width, err = o.number("width"); err != nil {
		return camera.ImagePlane{}, err
	}
	if cam.Distance, err = o.number("distance"); err != nil {
		return camera.ImagePlane{}, err
	}
	if cam.VerticalOffset, err = o.numberOr("vertical_offset", 0); err != nil {
		return camera.ImagePlane{}, err
	}
	return cam, cam.Validate()
}

func parseShape(o object) (geometry.Shape, error) {
	shape, err := parseShapeParams(o)
	if err != nil {
		return geometry.Shape{}, err
	}
	return shape, shape.Validate()
}

func parseShapeParams(o object) (geometry.Shape, error) {
	kind, err := o.str("shape")
	if err != nil {
		return geometry.Shape{}, err
	}
	switch kind {
	case "disk":
		r, err := o.number("radius")
		if err != nil {
			return geometry.Shape{}, err
		}
		z, err := o.numberOr("z", 0)
		if err != nil {
			return geometry.Shape{}, err
		}
		return geometry.NewDisk(r, z), nil
	case "quad":
		w, err := o.number("width")
		if err != nil {
			return geometry.Shape{}, err
		}
		h, err := o.number("height")
		if err != nil {
			return geometry.Shape{}, err
		}
		return geometry.NewQuad(w, h), nil
	case "sphere":
		r, err := o.number("radius")
		if err != nil {
			return geometry.Shape{}, err
		}
		return geometry.NewSphere(r), nil
	}
	return geometry.Shape{}, fmt.Errorf("unknown shape %q", kind)
}

func parseTransformStep(o object) (transform.Transform, error) {
	switch {
	case o.has("translate"):
		d, err := o.triple("translate")
		if err != nil {
			return transform.Transform{}, err
		}
		return transform.Translate(vec3.T(d)), nil
	case o.has("scale"):
		s, err := o.triple("scale")
		if err != nil {
			return transform.Transform{}, err
		}
		return transform.Scale(s[0], s[1], s[2])
	case o.has("rotate_x"):
		deg, err := o.number("rotate_x")
		return transform.RotateX(deg), err
	case o.has("rotate_y"):
		deg, err := o.number("rotate_y")
		return transform.RotateY(deg), err
	case o.has("rotate_z"):
		deg, err := o.number("rotate_z")
		return transform.RotateZ(deg), err
	}
	return transform.Transform{}, fmt.Errorf("transform step has no recognized operation")
}

func parseTransform(o object) (transform.Transform, error) {
	xf := transform.Identity()
	if !o.has("transform") {
		return xf, nil
	}
	steps, err := o.list("transform")
	if err != nil {
		return transform.Transform{}, err
	}
	for i, v := range steps {
		st := v.GetStructValue()
		if st == nil {
			return transform.Transform{}, fmt.Errorf("transform step %d is not an object", i)
		}
		step, err := parseTransformStep(object{st})
		if err != nil {
			return transform.Transform{}, fmt.Errorf("while parsing transform step %d: %w", i, err)
		}
		xf = transform.Compose(xf, step)
	}
	return xf, nil
}

func parseBxDF(o object) (material.BxDF, error) {
	kind, err := o.str("type")
	if err != nil {
		return material.BxDF{}, err
	}
	r, err := o.color()
	if err != nil {
		return material.BxDF{}, err
	}
	switch kind {
	case "lambertian":
		return material.NewLambertian(r), nil
	case "specular":
		fr := material.Fresnel{}
		if fr.EtaI, err = o.numberOr("eta_i", 0); err != nil {
			return material.BxDF{}, err
		}
		if fr.EtaT, err = o.numberOr("eta_t", 0); err != nil {
			return material.BxDF{}, err
		}
		return material.NewSpecularReflection(r, fr), nil
	}
	return material.BxDF{}, fmt.Errorf("unknown bxdf type %q", kind)
}

func parsePrimitive(o object) (*geometry.Primitive, error) {
	name := ""
	if o.has("name") {
		var err error
		if name, err = o.str("name"); err != nil {
			return nil, err
		}
	}

	shape, err := parseShape(o)
	if err != nil {
		return nil, err
	}
	xf, err := parseTransform(o)
	if err != nil {
		return nil, err
	}

	bsdf := material.BSDF{}
	if o.has("bxdfs") {
		terms, err := o.list("bxdfs")
		if err != nil {
			return nil, err
		}
		for i, v := range terms {
			st := v.GetStructValue()
			if st == nil {
				return nil, fmt.Errorf("bxdf %d is not an object", i)
			}
			b, err := parseBxDF(object{st})
			if err != nil {
				return nil, fmt.Errorf("while parsing bxdf %d: %w", i, err)
			}
			if err := bsdf.Add(b); err != nil {
				return nil, err
			}
		}
	}

	if !o.has("emission") {
		return geometry.NewPrimitive(name, shape, xf, bsdf), nil
	}
	em, err := o.object("emission")
	if err != nil {
		return nil, err
	}
	l, err := em.color()
	if err != nil {
		return nil, fmt.Errorf("while parsing emission: %w", err)
	}
	intensity, err := em.numberOr("intensity", 1)
	if err != nil {
		return nil, fmt.Errorf("while parsing emission: %w", err)
	}
	return geometry.NewLight(name, shape, xf, bsdf, geometry.Emission{L: l, Intensity: intensity}), nil
}
