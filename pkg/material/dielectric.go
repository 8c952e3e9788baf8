package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/itarato/pathtracer/pkg/core"
)

// ErrInvalidRefractiveIndex is returned for non-positive refractive indices
var ErrInvalidRefractiveIndex = errors.New("refractive index must be positive")

// Dielectric represents a transparent material like glass that can both reflect and refract
type Dielectric struct {
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewDielectric creates a new dielectric material
func NewDielectric(refractiveIndex float64) (*Dielectric, error) {
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidRefractiveIndex, refractiveIndex)
	}
	return &Dielectric{RefractiveIndex: refractiveIndex}, nil
}

// Scatter implements the Material interface for dielectric scattering.
// Glass never absorbs: it picks reflection or refraction with the Schlick probability.
func (d *Dielectric) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Dielectrics always attenuate by 1.0 (no color absorption for clear glass)
	attenuation := core.NewVec3(1.0, 1.0, 1.0)

	reflected := Reflect(rayIn.Direction, hit.Normal)

	// The normal always points out of the sphere, so its sign against the ray
	// tells whether we are leaving (positive) or entering (negative) the medium
	var outwardNormal core.Vec3
	var niOverNt, cosine float64
	incidence := rayIn.Direction.Dot(hit.Normal)
	if incidence > 0 {
		outwardNormal = hit.Normal.Negate()
		niOverNt = d.RefractiveIndex
		cosine = d.RefractiveIndex * incidence / rayIn.Direction.Length()
	} else {
		outwardNormal = hit.Normal
		niOverNt = 1.0 / d.RefractiveIndex
		cosine = -incidence / rayIn.Direction.Length()
	}

	reflectProbability := 1.0
	refracted, canRefract := Refract(rayIn.Direction, outwardNormal, niOverNt)
	if canRefract {
		reflectProbability = Schlick(cosine, d.RefractiveIndex)
	}

	direction := refracted
	if sampler.Get1D() < reflectProbability {
		direction = reflected
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: attenuation,
	}, true
}

// Refract bends v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func Refract(v, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	uv := v.Unit()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1-dt*dt)
	if discriminant > 0 {
		refracted := uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant)))
		return refracted, true
	}
	return core.Vec3{}, false
}

// Schlick approximates the Fresnel reflectance for the given cosine and refractive index
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
