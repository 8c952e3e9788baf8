package geometry

import (
	"math"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/material"
)

// Sphere represents a sphere shape.
// A negative radius keeps the same surface but flips the normal inward,
// which is how hollow glass shells are built.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Hit tests if a ray intersects with the sphere strictly inside (tMin, tMax).
// A tangent ray (zero discriminant) counts as a miss.
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients with b halved: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - a*c
	if discriminant <= 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-b - sqrtD) / a
	if !(root > tMin && root < tMax) {
		root = (-b + sqrtD) / a
		if !(root > tMin && root < tMax) {
			return nil, false
		}
	}

	point := ray.At(root)
	return &material.HitRecord{
		T:        root,
		Point:    point,
		Normal:   point.Subtract(s.Center).Divide(s.Radius),
		Material: s.Material,
	}, true
}
