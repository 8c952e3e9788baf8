package integrator

import (
	"math"
	"testing"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
	"github.com/itarato/pathtracer/pkg/scene"
)

// countingMaterial scatters every hit into a fixed ray, or absorbs when absorb is set
type countingMaterial struct {
	attenuation core.Vec3
	next        func(hit material.HitRecord) core.Ray
	absorb      bool
	calls       int
}

func (m *countingMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	m.calls++
	if m.absorb {
		return material.ScatterResult{}, false
	}
	return material.ScatterResult{Scattered: m.next(hit), Attenuation: m.attenuation}, true
}

// createTestScene creates an empty scene with the default sky
func createTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	s, err := scene.NewScene(geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	}, scene.DefaultSamplingConfig())
	if err != nil {
		t.Fatalf("Failed to create scene: %v", err)
	}
	return s
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance && math.Abs(a.Z-b.Z) <= tolerance
}

func TestPathTracingBackgroundGradient(t *testing.T) {
	sc := createTestScene(t)
	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())
	sampler := core.NewSeededSampler(42)

	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -3, 0), core.NewVec3(1, 1, 1)},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), tt.direction), sc, sampler)
			if !vecNear(color, tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestPathTracingCustomBackground(t *testing.T) {
	sc := createTestScene(t)
	sc.TopColor = core.NewVec3(0, 0, 1)
	sc.BottomColor = core.NewVec3(1, 0, 0)
	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())

	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)), sc, core.NewSeededSampler(1))
	if color != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected top color, got %v", color)
	}
}

func TestPathTracingDepthTermination(t *testing.T) {
	tests := []struct {
		name     string
		maxDepth int
	}{
		{"no bounces", 0},
		{"one bounce", 1},
		{"default", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := createTestScene(t)

			// Inside a sphere, every bounce heads back through the center and hits the far wall
			mirror := &countingMaterial{
				attenuation: core.NewVec3(1, 1, 1),
				next: func(hit material.HitRecord) core.Ray {
					return core.NewRay(hit.Point, hit.Point.Negate())
				},
			}
			sc.AddSphere(core.NewVec3(0, 0, 0), 1, mirror)

			integrator := NewPathTracingIntegrator(scene.SamplingConfig{MaxDepth: tt.maxDepth})
			color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)), sc, core.NewSeededSampler(42))

			if color != (core.Vec3{}) {
				t.Errorf("Expected black at the depth limit, got %v", color)
			}
			if mirror.calls != tt.maxDepth {
				t.Errorf("Expected %d scatter calls, got %d", tt.maxDepth, mirror.calls)
			}
		})
	}
}

func TestPathTracingAbsorption(t *testing.T) {
	sc := createTestScene(t)
	absorber := &countingMaterial{absorb: true}
	sc.AddSphere(core.NewVec3(0, 0, -1), 0.5, absorber)

	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())
	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), sc, core.NewSeededSampler(42))

	if color != (core.Vec3{}) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
	if absorber.calls != 1 {
		t.Errorf("Expected one scatter call, got %d", absorber.calls)
	}
}

func TestPathTracingAttenuationMultiplies(t *testing.T) {
	sc := createTestScene(t)

	// Each sphere sends the ray somewhere else: first to the second sphere, then to the sky
	toSky := &countingMaterial{
		attenuation: core.NewVec3(0.5, 0.25, 1.0),
		next: func(hit material.HitRecord) core.Ray {
			return core.NewRay(core.NewVec3(0, 100, 0), core.NewVec3(0, 1, 0))
		},
	}
	toSecond := &countingMaterial{
		attenuation: core.NewVec3(0.5, 0.5, 0.5),
		next: func(hit material.HitRecord) core.Ray {
			return core.NewRay(core.NewVec3(10, 0, 0), core.NewVec3(0, 0, -1))
		},
	}
	sc.AddSphere(core.NewVec3(0, 0, -1), 0.5, toSecond)
	sc.AddSphere(core.NewVec3(10, 0, -1), 0.5, toSky)

	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())
	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), sc, core.NewSeededSampler(42))

	sky := core.NewVec3(0.5, 0.7, 1.0)
	expected := core.NewVec3(0.5*0.5*sky.X, 0.5*0.25*sky.Y, 0.5*1.0*sky.Z)
	if !vecNear(color, expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, color)
	}
	if toSecond.calls != 1 || toSky.calls != 1 {
		t.Errorf("Expected one scatter per sphere, got %d and %d", toSecond.calls, toSky.calls)
	}
}

func TestPathTracingIgnoresHitsBelowMinDistance(t *testing.T) {
	sc := createTestScene(t)
	forbidden := &countingMaterial{absorb: true}
	sc.AddSphere(core.NewVec3(0, 0, -1), 0.5, forbidden)

	// Starts just inside the surface; the exit hit lies closer than MinHitDistance
	ray := core.NewRay(core.NewVec3(0, 0, -0.5005), core.NewVec3(0, 0, 1))
	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())
	color := integrator.RayColor(ray, sc, core.NewSeededSampler(42))

	if forbidden.calls != 0 {
		t.Errorf("Expected the near hit to be ignored, got %d scatter calls", forbidden.calls)
	}
	if !vecNear(color, core.NewVec3(0.75, 0.85, 1.0), 1e-12) {
		t.Errorf("Expected horizon sky, got %v", color)
	}
}

func TestPathTracingDiffuseSceneStaysInRange(t *testing.T) {
	sc := scene.NewDefaultScene()
	integrator := NewPathTracingIntegrator(sc.GetSamplingConfig())
	sampler := core.NewSeededSampler(42)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	for i := 0; i < 200; i++ {
		color := integrator.RayColor(ray, sc, sampler)
		for _, c := range []float64{color.X, color.Y, color.Z} {
			if c < 0 || c > 1 || math.IsNaN(c) {
				t.Fatalf("Color component out of range: %v", color)
			}
		}
	}
}
