// Package contact is the geometric record of a ray hitting a surface.
package contact

import (
	"math"

	"row-major.net/harpoon/ray"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/mat33"
	"row-major.net/harpoon/vmath/vec3"
)

// Contact describes a hit point and the orthonormal shading frame there.
// N and Dpdu are unit length and perpendicular; Dpdv = N x Dpdu.
type Contact struct {
	T    float64
	P    vec3.T
	N    vec3.T
	Dpdu vec3.T
	Dpdv vec3.T
	Wo   vec3.T
}

// New builds a contact, orthonormalizing the frame from n and an approximate
// tangent.  If dpdu is (nearly) parallel to n, some other perpendicular
// direction is chosen.
func New(t float64, p, n, dpdu, wo vec3.T) Contact {
	n = vec3.Normalize(n)
	dpdu = vec3.SubVV(dpdu, vec3.MulVS(n, vec3.IProd(n, dpdu)))
	if dpdu.NormSquared() < 1e-12 {
		dpdu = anyPerpendicular(n)
	}
	dpdu = vec3.Normalize(dpdu)
	return Contact{
		T:    t,
		P:    p,
		N:    n,
		Dpdu: dpdu,
		Dpdv: vec3.CProd(n, dpdu),
		Wo:   wo,
	}
}

func anyPerpendicular(n vec3.T) vec3.T {
	if math.Abs(n[0]) > math.Abs(n[1]) {
		return vec3.T{-n[2], 0, n[0]}
	}
	return vec3.T{0, n[2], -n[1]}
}

// Transform maps the contact through xf.  Wo is renormalized; T is left for
// the caller, since it depends on the ray the contact is reported against.
func (c Contact) Transform(xf transform.Transform) Contact {
	return New(
		c.T,
		xf.ApplyPoint(c.P),
		xf.ApplyNormal(c.N),
		xf.ApplyVector(c.Dpdu),
		vec3.Normalize(xf.ApplyVector(c.Wo)),
	)
}

// Frame is the world-to-local change of basis (rows Dpdu, Dpdv, N).
func (c *Contact) Frame() mat33.T {
	return mat33.FromRows(c.Dpdu, c.Dpdv, c.N)
}

// ToLocal expresses world direction v in the shading frame, where the normal
// is +z.
func (c *Contact) ToLocal(v vec3.T) vec3.T {
	return mat33.MulMV(c.Frame(), v)
}

// ToWorld is the inverse of ToLocal.
func (c *Contact) ToWorld(v vec3.T) vec3.T {
	return mat33.MulTV(c.Frame(), v)
}

// Spawn starts a ray at the contact point.  Self-intersection is avoided by
// the Epsilon lower bound on hit distances, not by offsetting the origin.
func (c *Contact) Spawn(d vec3.T) ray.Ray {
	return ray.New(c.P, d)
}
