package material

import (
	"github.com/itarato/pathtracer/pkg/core"
)

// Material interface for objects that can scatter rays.
// Implementations are immutable after construction and safe to share between goroutines.
type Material interface {
	// Scatter returns the attenuation and outgoing ray, or false if the ray is absorbed
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point    core.Vec3 // Point of intersection
	Normal   core.Vec3 // Outward surface normal, flipped for negative-radius spheres
	T        float64   // Parameter t along the ray
	Material Material  // Material of the hit object, shared and read-only
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
