package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/itarato/pathtracer/pkg/core"
)

// ErrInvalidCamera is returned when a camera configuration cannot form a view
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains all camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter; 0 disables depth of field
	FocusDistance float64   // Distance to the focal plane; 0 focuses on LookAt
}

// Camera generates rays for rendering.
// It is immutable after construction and safe to share between goroutines.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Orthonormal basis; w points from the target back to the eye
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	theta := config.VFov * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := config.AspectRatio * halfHeight

	w := config.LookFrom.Subtract(config.LookAt).Unit()
	u := config.Up.Cross(w).Unit()
	v := w.Cross(u)

	// Without a lens the image plane sits at unit distance
	focus := 1.0
	lensRadius := 0.0
	if config.Aperture > 0 {
		lensRadius = config.Aperture / 2
		focus = config.FocusDistance
		if focus == 0 {
			focus = config.LookFrom.Subtract(config.LookAt).Length()
		}
	}

	origin := config.LookFrom
	lowerLeftCorner := origin.
		Subtract(u.Multiply(halfWidth * focus)).
		Subtract(v.Multiply(halfHeight * focus)).
		Subtract(w.Multiply(focus))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      u.Multiply(2 * halfWidth * focus),
		vertical:        v.Multiply(2 * halfHeight * focus),
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      lensRadius,
	}, nil
}

func (c CameraConfig) validate() error {
	if !(c.VFov > 0 && c.VFov < 180) {
		return fmt.Errorf("%w: vertical fov %v must be within (0, 180)", ErrInvalidCamera, c.VFov)
	}
	if !(c.AspectRatio > 0) {
		return fmt.Errorf("%w: aspect ratio %v must be positive", ErrInvalidCamera, c.AspectRatio)
	}
	if c.Aperture < 0 {
		return fmt.Errorf("%w: aperture %v must not be negative", ErrInvalidCamera, c.Aperture)
	}
	if c.FocusDistance < 0 {
		return fmt.Errorf("%w: focus distance %v must not be negative", ErrInvalidCamera, c.FocusDistance)
	}
	view := c.LookFrom.Subtract(c.LookAt)
	if view.LengthSquared() == 0 {
		return fmt.Errorf("%w: look-from and look-at coincide", ErrInvalidCamera)
	}
	if c.Up.Cross(view).LengthSquared() == 0 {
		return fmt.Errorf("%w: up vector is parallel to the view direction", ErrInvalidCamera)
	}
	return nil
}

// GetRay generates a ray for image-plane coordinates (s, t) where 0 <= s,t <= 1.
// The sampler is only consumed when depth of field is enabled.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	target := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t))

	if c.lensRadius <= 0 {
		return core.NewRay(c.origin, target.Subtract(c.origin))
	}

	// Jitter the origin across the lens, keeping the focal-plane target fixed
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	return core.NewRay(c.origin.Add(offset), target.Subtract(c.origin).Subtract(offset))
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Basis returns the camera's orthonormal basis (right, up, backward)
func (c *Camera) Basis() (u, v, w core.Vec3) {
	return c.u, c.v, c.w
}

// LensRadius returns half the aperture, zero when depth of field is off
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}
