package renderer

import (
	"time"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/integrator"
	"github.com/itarato/pathtracer/pkg/scene"
)

// DefaultSeed seeds the random stream of a render unless the caller overrides it
const DefaultSeed int64 = 42

// Raytracer is the single-threaded reference renderer.
// Pixels are visited top row first, left to right, drawing from one random stream.
type Raytracer struct {
	scene      *scene.Scene
	width      int
	height     int
	config     scene.SamplingConfig
	integrator integrator.Integrator
	sampler    core.Sampler
}

// NewRaytracer creates a raytracer for the scene's sampling configuration
func NewRaytracer(s *scene.Scene) *Raytracer {
	config := s.GetSamplingConfig()
	return &Raytracer{
		scene:      s,
		width:      config.Width,
		height:     config.Height,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config),
		sampler:    core.NewSeededSampler(DefaultSeed), // Deterministic for testing
	}
}

// SetSampler replaces the random stream
func (rt *Raytracer) SetSampler(sampler core.Sampler) {
	rt.sampler = sampler
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(integratorInst integrator.Integrator) {
	rt.integrator = integratorInst
}

// RenderPass renders the whole image with multi-sampling
func (rt *Raytracer) RenderPass() (*Framebuffer, RenderStats) {
	startTime := time.Now()
	fb := NewFramebuffer(rt.width, rt.height)
	camera := rt.scene.Camera
	stats := newRenderStats(rt.width*rt.height, rt.config.SamplesPerPixel)

	for j := rt.height - 1; j >= 0; j-- {
		for i := 0; i < rt.width; i++ {
			pixelColor := samplePixel(camera, rt.integrator, rt.scene, rt.sampler, i, j, rt.width, rt.height, rt.config.SamplesPerPixel)
			fb.Set(i, rt.height-1-j, pixelColor)
			stats.addPixel(rt.config.SamplesPerPixel)
		}
	}

	stats.finalize()
	stats.Elapsed = time.Since(startTime)
	return fb, stats
}

// cameraRay is the part of the camera the sampling loop needs
type cameraRay interface {
	GetRay(s, t float64, sampler core.Sampler) core.Ray
}

// samplePixel averages jittered samples through pixel (i, j), where j counts up from the bottom row.
// Both renderers use it so they draw random numbers in the same order.
func samplePixel(camera cameraRay, integratorInst integrator.Integrator, s *scene.Scene, sampler core.Sampler,
	i, j, width, height, samplesPerPixel int) core.Vec3 {
	colorAccum := core.Vec3{X: 0, Y: 0, Z: 0}

	for sample := 0; sample < samplesPerPixel; sample++ {
		// Convert pixel coordinates to normalized coordinates with jitter
		u := (float64(i) + sampler.Get1D()) / float64(width)
		v := (float64(j) + sampler.Get1D()) / float64(height)

		ray := camera.GetRay(u, v, sampler)
		colorAccum.AddAssign(integratorInst.RayColor(ray, s, sampler))
	}

	return colorAccum.Divide(float64(samplesPerPixel))
}
