package scene

import (
	"math/rand"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
)

// NewRandomSpheresScene creates the cover scene: a field of small random spheres
// around three large ones, shot with a shallow depth of field.
// The same seed always produces the same layout.
func NewRandomSpheresScene(seed int64) *Scene {
	samplingConfig := SamplingConfig{
		Width:           600,
		Height:          400,
		SamplesPerPixel: 32,
		MaxDepth:        50,
	}

	cameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		AspectRatio:   samplingConfig.AspectRatio(),
		Aperture:      0.1,
		FocusDistance: 10,
	}

	s := mustScene(cameraConfig, samplingConfig)
	random := rand.New(rand.NewSource(seed))

	s.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	// Keep the small spheres clear of the big metal one
	keepOut := core.NewVec3(4, 0.2, 0)
	glass := mustDielectric(1.5)

	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(keepOut).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.NewVec3(
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
				)
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.NewVec3(
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
					0.5*(1+random.Float64()),
				)
				mat = mustMetal(albedo, 0.5*random.Float64())
			default:
				mat = glass
			}
			s.AddSphere(center, 0.2, mat)
		}
	}

	s.AddSphere(core.NewVec3(0, 1, 0), 1.0, glass)
	s.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	s.AddSphere(core.NewVec3(4, 1, 0), 1.0, mustMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	return s
}
