package geometry

import (
	"row-major.net/harpoon/contact"
)

// SurfaceInteraction is a hit record tied back to the primitive that was
// hit.
type SurfaceInteraction struct {
	contact.Contact
	Primitive *Primitive
}

// IsLight reports whether the hit surface emits.
func (si *SurfaceInteraction) IsLight() bool {
	return si.Primitive != nil && si.Primitive.IsLight()
}
