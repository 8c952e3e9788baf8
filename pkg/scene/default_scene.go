package scene

import (
	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
)

// NewDefaultScene creates the classic scene: one diffuse sphere resting on a huge ground sphere,
// seen from the origin down -z through a 4x2 image plane.
func NewDefaultScene() *Scene {
	samplingConfig := DefaultSamplingConfig()

	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: samplingConfig.AspectRatio(),
	}

	s := mustScene(cameraConfig, samplingConfig)

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	return s
}

// NewMaterialsScene shows all three materials side by side: a diffuse sphere,
// a hollow glass shell (negative inner radius) and a fuzzy metal.
// With depthOfField the camera pulls back and focuses on the center sphere.
func NewMaterialsScene(depthOfField bool) *Scene {
	samplingConfig := SamplingConfig{
		Width:           400,
		Height:          200,
		SamplesPerPixel: 32,
		MaxDepth:        50,
	}

	cameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(-2, 2, 1),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40,
		AspectRatio: samplingConfig.AspectRatio(),
	}
	if depthOfField {
		cameraConfig.LookFrom = core.NewVec3(3, 3, 2)
		cameraConfig.VFov = 20
		cameraConfig.Aperture = 2.0
		cameraConfig.FocusDistance = 0 // Focus on LookAt
	}

	s := mustScene(cameraConfig, samplingConfig)

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := mustDielectric(1.5)
	gold := mustMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)

	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, ground)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, center)
	s.AddSphere(core.NewVec3(1, 0, -1), 0.5, gold)
	s.AddSphere(core.NewVec3(-1, 0, -1), 0.5, glass)
	s.AddSphere(core.NewVec3(-1, 0, -1), -0.45, glass)

	return s
}

func mustScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) *Scene {
	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		panic(err)
	}
	return s
}

func mustMetal(albedo core.Vec3, fuzz float64) *material.Metal {
	m, err := material.NewMetal(albedo, fuzz)
	if err != nil {
		panic(err)
	}
	return m
}

func mustDielectric(refractiveIndex float64) *material.Dielectric {
	d, err := material.NewDielectric(refractiveIndex)
	if err != nil {
		panic(err)
	}
	return d
}
