package integrator

import (
	"math"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/scene"
)

// MinHitDistance is the lower bound of every intersection query.
// Hits closer than this are treated as the surface the ray just left.
const MinHitDistance = 0.001

// PathTracingIntegrator implements recursive unidirectional path tracing
// with a hard bounce limit and no light sampling
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3 {
	return pt.rayColor(ray, scene, sampler, 0)
}

func (pt *PathTracingIntegrator) rayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler, depth int) core.Vec3 {
	hit, isHit := scene.Hit(ray, MinHitDistance, math.Inf(1))
	if !isHit {
		return pt.backgroundGradient(ray, scene)
	}

	// Past the bounce limit the path carries no light
	if depth >= pt.config.MaxDepth {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		// Material absorbed the ray
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}

	return scatter.Attenuation.MultiplyVec(pt.rayColor(scatter.Scattered, scene, sampler, depth+1))
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray, scene *scene.Scene) core.Vec3 {
	topColor, bottomColor := scene.GetBackgroundColors()

	unitDirection := r.Direction.Unit()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	t := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-t)*bottom + t*top
	return bottomColor.Multiply(1.0 - t).Add(topColor.Multiply(t))
}
