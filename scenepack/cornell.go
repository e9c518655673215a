// Package scenepack builds scenes: a built-in Cornell box, and scenes
// described in JSON.
package scenepack

import (
	"fmt"

	"row-major.net/harpoon/camera"
	"row-major.net/harpoon/geometry"
	"row-major.net/harpoon/material"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/transform"
	"row-major.net/harpoon/vmath/vec3"
)

var (
	white  = spectrum.FromRGB8(255, 255, 255)
	red    = spectrum.FromRGB8(255, 0, 0)
	green  = spectrum.FromRGB8(0, 128, 0)
	yellow = spectrum.FromRGB8(255, 255, 0)
)

func place(ops ...transform.Transform) transform.Transform {
	xf := transform.Identity()
	for _, op := range ops {
		xf = transform.Compose(xf, op)
	}
	return xf
}

func lambert(albedo spectrum.T) material.BSDF {
	// One term always fits.
	b, _ := material.NewBSDF(material.NewLambertian(albedo))
	return b
}

// CornellBox is the classic box, measured in millimeters, with a spherical
// light near the ceiling, a mirror ball and a yellow diffuse ball.
func CornellBox() (*scene.Scene, error) {
	s := scene.New(camera.ImagePlane{
		Origin:   vec3.T{278, 274.4, -800},
		Aspect:   1,
		Width:    5.5,
		Distance: 8,
	})

	const w, h, d = 556.0, 548.8, 559.2

	s.Add(geometry.NewPrimitive("floor", geometry.NewQuad(w, d),
		place(transform.Translate(vec3.T{w / 2, 0, d / 2}), transform.RotateX(-90)), lambert(white)))
	s.Add(geometry.NewPrimitive("ceiling", geometry.NewQuad(w, d),
		place(transform.Translate(vec3.T{w / 2, h, d / 2}), transform.RotateX(90)), lambert(white)))
	s.Add(geometry.NewPrimitive("back", geometry.NewQuad(w, h),
		place(transform.Translate(vec3.T{w / 2, h / 2, d}), transform.RotateX(180)), lambert(white)))
	s.Add(geometry.NewPrimitive("right", geometry.NewQuad(d, h),
		place(transform.Translate(vec3.T{w, h / 2, d / 2}), transform.RotateY(-90)), lambert(green)))
	s.Add(geometry.NewPrimitive("left", geometry.NewQuad(d, h),
		place(transform.Translate(vec3.T{0, h / 2, d / 2}), transform.RotateY(90)), lambert(red)))

	s.Add(geometry.NewLight("light", geometry.NewSphere(80),
		place(transform.Translate(vec3.T{278, 548, 280}), transform.RotateX(90)), material.BSDF{},
		geometry.Emission{L: spectrum.Gray(1), Intensity: 20}))

	mirror, err := material.NewBSDF(material.NewSpecularReflection(white, material.Fresnel{}))
	if err != nil {
		return nil, fmt.Errorf("while building mirror material: %w", err)
	}
	s.Add(geometry.NewPrimitive("mirror ball", geometry.NewSphere(100),
		transform.Translate(vec3.T{150, 100, 420}), mirror))
	s.Add(geometry.NewPrimitive("yellow ball", geometry.NewSphere(100),
		transform.Translate(vec3.T{400, 100, 230}), lambert(yellow)))

	return s, nil
}
