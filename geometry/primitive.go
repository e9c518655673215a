package geometry

import (
	"math"

	"row-major.net/harpoon/contact"
	"row-major.net/harpoon/material"
	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec2"
	"row-major.net/harpoon/vmath/vec3"
)

// Emission makes a primitive a diffuse area light.
type Emission struct {
	L         spectrum.T
	Intensity float64
}

// Radiance is the emitted radiance leaving the front face.
func (e Emission) Radiance() spectrum.T {
	return spectrum.MulSF(e.L, e.Intensity)
}

// Primitive is a shape placed in the world, with its material.
type Primitive struct {
	Name string

	Shape         Shape
	ObjectToWorld transform.Transform
	WorldToObject transform.Transform
	BSDF          material.BSDF

	// Emission is nil for primitives that only reflect.
	Emission *Emission

	area float64
}

// NewPrimitive places shape in the world with objectToWorld.
func NewPrimitive(name string, shape Shape, objectToWorld transform.Transform, bsdf material.BSDF) *Primitive {
	p := &Primitive{
		Name:          name,
		Shape:         shape,
		ObjectToWorld: objectToWorld,
		WorldToObject: objectToWorld.Inverse(),
		BSDF:          bsdf,
	}
	p.area = p.worldArea()
	return p
}

// NewLight is NewPrimitive plus an emission capability.
func NewLight(name string, shape Shape, objectToWorld transform.Transform, bsdf material.BSDF, e Emission) *Primitive {
	p := NewPrimitive(name, shape, objectToWorld, bsdf)
	p.Emission = &e
	return p
}

func (p *Primitive) IsLight() bool {
	return p.Emission != nil
}

// Area is the world-space surface area.
func (p *Primitive) Area() float64 {
	return p.area
}

// worldArea scales the object-space area by how the transform stretches the
// surface.  For planar shapes this is exact.  For spheres it assumes a
// similarity transform, using the geometric mean of the axis scalings.
func (p *Primitive) worldArea() float64 {
	xf := p.ObjectToWorld
	if p.Shape.IsPlanar() {
		ex := xf.ApplyVector(vec3.T{1, 0, 0})
		ey := xf.ApplyVector(vec3.T{0, 1, 0})
		return p.Shape.Area() * vec3.CProd(ex, ey).Norm()
	}
	ex := xf.ApplyVector(vec3.T{1, 0, 0})
	ey := xf.ApplyVector(vec3.T{0, 1, 0})
	ez := xf.ApplyVector(vec3.T{0, 0, 1})
	det := math.Abs(vec3.IProd(ex, vec3.CProd(ey, ez)))
	return p.Shape.Area() * math.Pow(det, 2.0/3.0)
}

// Intersect finds the nearest hit of r on p with t > ray.Epsilon.  The
// returned T is a world-space distance along r.
func (p *Primitive) Intersect(r ray.Ray) (SurfaceInteraction, bool) {
	objRay := r.Transform(p.WorldToObject)
	h, ok := p.Shape.intersect(objRay)
	if !ok {
		return SurfaceInteraction{}, false
	}

	c := contact.New(h.t, h.p, h.n, h.dpdu, vec3.Neg(objRay.D)).Transform(p.ObjectToWorld)
	c.T = vec3.IProd(vec3.SubVV(c.P, r.O), r.D)
	if c.T <= ray.Epsilon {
		return SurfaceInteraction{}, false
	}
	return SurfaceInteraction{Contact: c, Primitive: p}, true
}

// PointSample is a point on a primitive's surface and the density it was
// drawn with.  Pdf is in area measure from Sample and in solid-angle measure
// from SampleFrom.
type PointSample struct {
	P   vec3.T
	N   vec3.T
	Pdf float64
}

// Sample draws a world-space point uniformly by area.
func (p *Primitive) Sample(u vec2.T) PointSample {
	op, on := p.Shape.sample(u)
	return PointSample{
		P:   p.ObjectToWorld.ApplyPoint(op),
		N:   vec3.Normalize(p.ObjectToWorld.ApplyNormal(on)),
		Pdf: 1 / p.area,
	}
}

// SampleFrom draws a point as Sample does and converts its density to solid
// angle as seen from ref.  Pdf is zero for degenerate configurations.
func (p *Primitive) SampleFrom(ref vec3.T, u vec2.T) PointSample {
	s := p.Sample(u)
	wi := vec3.SubVV(s.P, ref)
	distSq := wi.NormSquared()
	if distSq < ray.Epsilon {
		s.Pdf = 0
		return s
	}
	wi = vec3.DivVS(wi, math.Sqrt(distSq))
	s.Pdf = solidAnglePdf(s.Pdf, distSq, vec3.AbsIProd(s.N, wi))
	return s
}

// Pdf is the solid-angle density with which SampleFrom(ref) would produce
// the first point of p seen along wi.  It is zero if that ray misses p.
func (p *Primitive) Pdf(ref vec3.T, wi vec3.T) float64 {
	si, ok := p.Intersect(ray.New(ref, wi))
	if !ok {
		return 0
	}
	d := vec3.Normalize(wi)
	distSq := vec3.SubVV(si.P, ref).NormSquared()
	return solidAnglePdf(1/p.area, distSq, vec3.AbsIProd(si.N, d))
}

func solidAnglePdf(areaPdf, distSq, cosLight float64) float64 {
	pdf := areaPdf * distSq / cosLight
	if math.IsInf(pdf, 0) || math.IsNaN(pdf) || pdf < 0 {
		return 0
	}
	return pdf
}
