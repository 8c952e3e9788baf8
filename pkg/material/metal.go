package material

import (
	"errors"
	"fmt"

	"github.com/itarato/pathtracer/pkg/core"
)

// ErrInvalidFuzz is returned when a metal's fuzz lies outside [0, 1]
var ErrInvalidFuzz = errors.New("metal fuzz must be within [0, 1]")

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Vec3 // Metal color
	Fuzz   float64   // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzz float64) (*Metal, error) {
	if !(fuzz >= 0 && fuzz <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFuzz, fuzz)
	}
	return &Metal{Albedo: albedo, Fuzz: fuzz}, nil
}

// Scatter implements the Material interface for metal scattering
func (m *Metal) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := Reflect(rayIn.Direction.Unit(), hit.Normal)

	// Perturb the mirror direction inside a sphere of radius Fuzz
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(sampler).Multiply(m.Fuzz))
	}

	scattered := core.NewRay(hit.Point, reflected)

	// Rays perturbed below the surface are absorbed
	scatters := scattered.Direction.Dot(hit.Normal) > 0

	return ScatterResult{
		Scattered:   scattered,
		Attenuation: m.Albedo,
	}, scatters
}
