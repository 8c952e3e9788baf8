package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
)

// ErrUnknownMaterial is returned when a sphere references an undeclared material
var ErrUnknownMaterial = errors.New("unknown material")

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// Vec3Cfg is a vector written as [x, y, z]
type Vec3Cfg [3]float64

// Vec3 converts to the core vector type
func (v Vec3Cfg) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// ColorCfg is a linear RGB color written either as [r, g, b] or as a color name like "skyblue"
type ColorCfg core.Vec3

// UnmarshalJSON accepts an array of three numbers or a named color
func (c *ColorCfg) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		color, err := ParseColor(name)
		if err != nil {
			return err
		}
		*c = ColorCfg(color)
		return nil
	}

	var rgb [3]float64
	if err := json.Unmarshal(data, &rgb); err != nil {
		return fmt.Errorf("color must be [r,g,b] or a color name: %w", err)
	}
	*c = ColorCfg(core.NewVec3(rgb[0], rgb[1], rgb[2]))
	return nil
}

// MarshalJSON always writes the array form
func (c ColorCfg) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{c.X, c.Y, c.Z})
}

// ParseColor resolves an SVG 1.1 color name to a color with components in [0, 1]
func ParseColor(name string) (core.Vec3, error) {
	rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return core.Vec3{}, fmt.Errorf("unknown color name %q", name)
	}
	return core.NewVec3(float64(rgba.R)/255, float64(rgba.G)/255, float64(rgba.B)/255), nil
}

// CameraCfg describes the viewpoint
type CameraCfg struct {
	LookFrom      Vec3Cfg  `json:"lookFrom"`
	LookAt        Vec3Cfg  `json:"lookAt"`
	Up            *Vec3Cfg `json:"up,omitempty"` // defaults to +y
	VFov          float64  `json:"vfov"`
	Aperture      float64  `json:"aperture,omitempty"`
	FocusDistance float64  `json:"focusDistance,omitempty"`
}

// MaterialCfg declares a named material shared by any number of spheres
type MaterialCfg struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Albedo          ColorCfg `json:"albedo"`
	Fuzz            float64  `json:"fuzz,omitempty"`
	RefractiveIndex float64  `json:"refractiveIndex,omitempty"`
}

// SphereCfg places a sphere; a negative radius flips its normals
type SphereCfg struct {
	Center   Vec3Cfg `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// BackgroundCfg overrides the sky gradient; a missing side keeps the default sky color
type BackgroundCfg struct {
	Top    *ColorCfg `json:"top,omitempty"`
	Bottom *ColorCfg `json:"bottom,omitempty"`
}

// Config is the on-disk scene description
type Config struct {
	Name            string         `json:"name,omitempty"`
	Description     string         `json:"description,omitempty"`
	Width           int            `json:"width"`
	Height          int            `json:"height"`
	SamplesPerPixel int            `json:"samplesPerPixel,omitempty"`
	MaxDepth        int            `json:"maxDepth,omitempty"`
	Camera          CameraCfg      `json:"camera"`
	Background      *BackgroundCfg `json:"background,omitempty"`
	Materials       []MaterialCfg  `json:"materials"`
	Spheres         []SphereCfg    `json:"spheres"`
}

// LoadConfig reads a scene configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	return DecodeConfig(f)
}

// DecodeConfig reads a scene configuration from JSON, rejecting unknown fields
func DecodeConfig(r io.Reader) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes a scene configuration to a JSON file
func SaveConfig(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close scene: %w", err)
	}
	return nil
}

// Build validates the configuration and constructs the scene
func (c *Config) Build() (*Scene, error) {
	defaults := DefaultSamplingConfig()
	samplingConfig := SamplingConfig{
		Width:           c.Width,
		Height:          c.Height,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
	}
	if samplingConfig.SamplesPerPixel == 0 {
		samplingConfig.SamplesPerPixel = defaults.SamplesPerPixel
	}
	if samplingConfig.MaxDepth == 0 {
		samplingConfig.MaxDepth = defaults.MaxDepth
	}
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}

	up := core.NewVec3(0, 1, 0)
	if c.Camera.Up != nil {
		up = c.Camera.Up.Vec3()
	}
	cameraConfig := geometry.CameraConfig{
		LookFrom:      c.Camera.LookFrom.Vec3(),
		LookAt:        c.Camera.LookAt.Vec3(),
		Up:            up,
		VFov:          c.Camera.VFov,
		AspectRatio:   samplingConfig.AspectRatio(),
		Aperture:      c.Camera.Aperture,
		FocusDistance: c.Camera.FocusDistance,
	}

	s, err := NewScene(cameraConfig, samplingConfig)
	if err != nil {
		return nil, fmt.Errorf("camera: %w", err)
	}
	if c.Background != nil {
		if c.Background.Top != nil {
			s.TopColor = core.Vec3(*c.Background.Top)
		}
		if c.Background.Bottom != nil {
			s.BottomColor = core.Vec3(*c.Background.Bottom)
		}
	}

	materials := make(map[string]material.Material, len(c.Materials))
	for i, mc := range c.Materials {
		if mc.Name == "" {
			return nil, fmt.Errorf("material %d: missing name", i)
		}
		if _, exists := materials[mc.Name]; exists {
			return nil, fmt.Errorf("material %q declared twice", mc.Name)
		}
		mat, err := mc.build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", mc.Name, err)
		}
		materials[mc.Name] = mat
	}

	for i, sc := range c.Spheres {
		mat, ok := materials[sc.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d: %w %q", i, ErrUnknownMaterial, sc.Material)
		}
		if sc.Radius == 0 {
			return nil, fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		s.AddSphere(sc.Center.Vec3(), sc.Radius, mat)
	}

	return s, nil
}

func (mc MaterialCfg) build() (material.Material, error) {
	switch strings.ToLower(mc.Type) {
	case MaterialLambertian:
		return material.NewLambertian(core.Vec3(mc.Albedo)), nil
	case MaterialMetal:
		metal, err := material.NewMetal(core.Vec3(mc.Albedo), mc.Fuzz)
		if err != nil {
			return nil, err
		}
		return metal, nil
	case MaterialDielectric:
		dielectric, err := material.NewDielectric(mc.RefractiveIndex)
		if err != nil {
			return nil, err
		}
		return dielectric, nil
	default:
		return nil, fmt.Errorf("unsupported material type %q", mc.Type)
	}
}
