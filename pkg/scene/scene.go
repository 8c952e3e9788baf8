package scene

import (
	"fmt"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering.
// Everything in it is read-only once rendering starts.
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.HittableList // Objects in the scene
	TopColor       core.Vec3              // Sky color straight up
	BottomColor    core.Vec3              // Sky color straight down
	SamplingConfig SamplingConfig
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns the settings of the classic two-sphere render
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           200,
		Height:          100,
		SamplesPerPixel: 16,
		MaxDepth:        50,
	}
}

// Validate checks that the configuration can drive a render
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// AspectRatio returns width / height
func (c SamplingConfig) AspectRatio() float64 {
	return float64(c.Width) / float64(c.Height)
}

// NewScene creates an empty scene with the default sky gradient
func NewScene(cameraConfig geometry.CameraConfig, samplingConfig SamplingConfig) (*Scene, error) {
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return nil, err
	}
	return &Scene{
		Camera:         camera,
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(),
		TopColor:       core.NewVec3(0.5, 0.7, 1.0), // Blue sky
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0), // White horizon
		SamplingConfig: samplingConfig,
	}, nil
}

// AddSphere adds a sphere to the scene and returns it
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) *geometry.Sphere {
	sphere := geometry.NewSphere(center, radius, mat)
	s.World.Add(sphere)
	return sphere
}

// Hit returns the nearest intersection with the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.World.Hit(ray, tMin, tMax)
}

// GetBackgroundColors returns the sky gradient endpoints
func (s *Scene) GetBackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.TopColor, s.BottomColor
}

// GetSamplingConfig returns the scene's sampling configuration
func (s *Scene) GetSamplingConfig() SamplingConfig {
	return s.SamplingConfig
}

// GetPrimitiveCount returns the number of objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// SetSamplingConfig replaces the sampling configuration and rebuilds the camera
// so its aspect ratio follows the new image size
func (s *Scene) SetSamplingConfig(config SamplingConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	cameraConfig := s.CameraConfig
	cameraConfig.AspectRatio = config.AspectRatio()
	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = cameraConfig
	s.SamplingConfig = config
	return nil
}
