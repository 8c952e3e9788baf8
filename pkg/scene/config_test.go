package scene

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/geometry"
	"github.com/itarato/pathtracer/pkg/material"
)

const minimalScene = `{
  "width": 40,
  "height": 20,
  "camera": {"lookFrom": [0, 0, 0], "lookAt": [0, 0, -1], "vfov": 90},
  "materials": [
    {"name": "gray", "type": "lambertian", "albedo": [0.5, 0.5, 0.5]}
  ],
  "spheres": [
    {"center": [0, 0, -1], "radius": 0.5, "material": "gray"},
    {"center": [0, -100.5, -1], "radius": 100, "material": "gray"}
  ]
}`

func TestDecodeConfig_Defaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(minimalScene))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}

	s, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	defaults := DefaultSamplingConfig()
	config := s.GetSamplingConfig()
	if config.SamplesPerPixel != defaults.SamplesPerPixel {
		t.Errorf("Expected default samples %d, got %d", defaults.SamplesPerPixel, config.SamplesPerPixel)
	}
	if config.MaxDepth != defaults.MaxDepth {
		t.Errorf("Expected default depth %d, got %d", defaults.MaxDepth, config.MaxDepth)
	}
	if s.CameraConfig.Up != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected default up vector, got %v", s.CameraConfig.Up)
	}
	if s.CameraConfig.AspectRatio != 2 {
		t.Errorf("Expected aspect ratio 2, got %v", s.CameraConfig.AspectRatio)
	}
	if s.GetPrimitiveCount() != 2 {
		t.Errorf("Expected 2 spheres, got %d", s.GetPrimitiveCount())
	}

	top, bottom := s.GetBackgroundColors()
	if top != core.NewVec3(0.5, 0.7, 1.0) || bottom != core.NewVec3(1, 1, 1) {
		t.Errorf("Expected default sky, got top=%v bottom=%v", top, bottom)
	}
}

func TestDecodeConfig_SharedMaterial(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(minimalScene))
	if err != nil {
		t.Fatal(err)
	}
	s, err := cfg.Build()
	if err != nil {
		t.Fatal(err)
	}

	first := s.World.Shapes[0].(*geometry.Sphere)
	second := s.World.Shapes[1].(*geometry.Sphere)
	if first.Material != second.Material {
		t.Error("Spheres naming the same material should share one instance")
	}
}

func TestDecodeConfig_RejectsUnknownFields(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader(`{"width": 10, "height": 10, "bogus": true}`))
	if err == nil {
		t.Error("Expected error for unknown field")
	}
}

func TestColorCfg_Names(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected core.Vec3
	}{
		{"array", `{"name":"m","type":"lambertian","albedo":[0.1,0.2,0.3]}`, core.NewVec3(0.1, 0.2, 0.3)},
		{"white", `{"name":"m","type":"lambertian","albedo":"white"}`, core.NewVec3(1, 1, 1)},
		{"mixed case", `{"name":"m","type":"lambertian","albedo":" Red "}`, core.NewVec3(1, 0, 0)},
		{"gold", `{"name":"m","type":"lambertian","albedo":"gold"}`, core.NewVec3(1, 215.0/255, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"width":2,"height":1,"camera":{"lookFrom":[0,0,0],"lookAt":[0,0,-1],"vfov":90},` +
				`"materials":[` + tt.json + `],"spheres":[]}`
			cfg, err := DecodeConfig(strings.NewReader(doc))
			if err != nil {
				t.Fatalf("DecodeConfig failed: %v", err)
			}
			got := core.Vec3(cfg.Materials[0].Albedo)
			if got.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseColor_Unknown(t *testing.T) {
	if _, err := ParseColor("not-a-color"); err == nil {
		t.Error("Expected error for unknown color name")
	}
}

func TestConfigBuild_Errors(t *testing.T) {
	camera := CameraCfg{LookFrom: Vec3Cfg{0, 0, 0}, LookAt: Vec3Cfg{0, 0, -1}, VFov: 90}
	gray := MaterialCfg{Name: "gray", Type: MaterialLambertian, Albedo: ColorCfg{X: 0.5, Y: 0.5, Z: 0.5}}

	tests := []struct {
		name   string
		config Config
		target error
	}{
		{
			name: "unknown material",
			config: Config{Width: 2, Height: 1, Camera: camera,
				Spheres: []SphereCfg{{Center: Vec3Cfg{0, 0, -1}, Radius: 0.5, Material: "missing"}}},
			target: ErrUnknownMaterial,
		},
		{
			name: "metal fuzz out of range",
			config: Config{Width: 2, Height: 1, Camera: camera,
				Materials: []MaterialCfg{{Name: "m", Type: MaterialMetal, Fuzz: 1.5}}},
			target: material.ErrInvalidFuzz,
		},
		{
			name: "zero refractive index",
			config: Config{Width: 2, Height: 1, Camera: camera,
				Materials: []MaterialCfg{{Name: "g", Type: MaterialDielectric}}},
			target: material.ErrInvalidRefractiveIndex,
		},
		{
			name:   "camera looking at itself",
			config: Config{Width: 2, Height: 1, Camera: CameraCfg{VFov: 90}},
			target: geometry.ErrInvalidCamera,
		},
		{
			name: "duplicate material",
			config: Config{Width: 2, Height: 1, Camera: camera,
				Materials: []MaterialCfg{gray, gray}},
		},
		{
			name: "unsupported material type",
			config: Config{Width: 2, Height: 1, Camera: camera,
				Materials: []MaterialCfg{{Name: "x", Type: "plastic"}}},
		},
		{
			name: "zero radius",
			config: Config{Width: 2, Height: 1, Camera: camera, Materials: []MaterialCfg{gray},
				Spheres: []SphereCfg{{Center: Vec3Cfg{0, 0, -1}, Radius: 0, Material: "gray"}}},
		},
		{
			name:   "empty image",
			config: Config{Width: 0, Height: 1, Camera: camera},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.config.Build()
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("Expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestSaveLoadConfig(t *testing.T) {
	up := Vec3Cfg{0, 1, 0}
	top := ColorCfg{X: 0.2, Y: 0.3, Z: 0.4}
	bottom := ColorCfg{X: 1, Y: 1, Z: 1}
	original := &Config{
		Name:            "Round Trip",
		Width:           64,
		Height:          32,
		SamplesPerPixel: 4,
		MaxDepth:        10,
		Camera: CameraCfg{
			LookFrom: Vec3Cfg{3, 3, 2}, LookAt: Vec3Cfg{0, 0, -1}, Up: &up,
			VFov: 20, Aperture: 2, FocusDistance: 5,
		},
		Background: &BackgroundCfg{Top: &top, Bottom: &bottom},
		Materials: []MaterialCfg{
			{Name: "glass", Type: MaterialDielectric, RefractiveIndex: 1.5},
			{Name: "steel", Type: MaterialMetal, Albedo: ColorCfg{X: 0.7, Y: 0.7, Z: 0.7}, Fuzz: 0.1},
		},
		Spheres: []SphereCfg{
			{Center: Vec3Cfg{-1, 0, -1}, Radius: 0.5, Material: "glass"},
			{Center: Vec3Cfg{-1, 0, -1}, Radius: -0.45, Material: "glass"},
			{Center: Vec3Cfg{1, 0, -1}, Radius: 0.5, Material: "steel"},
		},
	}

	path := filepath.Join(t.TempDir(), "scene.json")
	if err := SaveConfig(path, original); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	s, err := loaded.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.GetPrimitiveCount() != 3 {
		t.Errorf("Expected 3 spheres, got %d", s.GetPrimitiveCount())
	}
	if s.Camera.LensRadius() != 1 {
		t.Errorf("Expected lens radius 1, got %v", s.Camera.LensRadius())
	}
	skyTop, _ := s.GetBackgroundColors()
	if skyTop != core.NewVec3(0.2, 0.3, 0.4) {
		t.Errorf("Expected custom sky top, got %v", skyTop)
	}

	inner := s.World.Shapes[1].(*geometry.Sphere)
	if inner.Radius != -0.45 {
		t.Errorf("Expected negative radius preserved, got %v", inner.Radius)
	}
	metal, ok := s.World.Shapes[2].(*geometry.Sphere).Material.(*material.Metal)
	if !ok {
		t.Fatalf("Expected metal material")
	}
	if math.Abs(metal.Fuzz-0.1) > 1e-12 {
		t.Errorf("Expected fuzz 0.1, got %v", metal.Fuzz)
	}
}

func TestSaveConfig_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "scene.json")
	if err := SaveConfig(path, &Config{}); err == nil {
		t.Error("Expected an error writing into a missing directory")
	}
}

func TestBuild_PartialBackground(t *testing.T) {
	tests := []struct {
		name           string
		background     string
		expectedTop    core.Vec3
		expectedBottom core.Vec3
	}{
		{"top only", `{"top": [0.1, 0.2, 0.3]}`, core.NewVec3(0.1, 0.2, 0.3), core.NewVec3(1, 1, 1)},
		{"bottom only", `{"bottom": "black"}`, core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(0, 0, 0)},
		{"empty block", `{}`, core.NewVec3(0.5, 0.7, 1.0), core.NewVec3(1, 1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(minimalScene, `"width": 40,`, `"width": 40, "background": `+tt.background+`,`, 1)
			cfg, err := DecodeConfig(strings.NewReader(data))
			if err != nil {
				t.Fatalf("DecodeConfig failed: %v", err)
			}
			s, err := cfg.Build()
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}

			top, bottom := s.GetBackgroundColors()
			if top != tt.expectedTop || bottom != tt.expectedBottom {
				t.Errorf("Expected top=%v bottom=%v, got top=%v bottom=%v", tt.expectedTop, tt.expectedBottom, top, bottom)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected not-exist error, got %v", err)
	}
}
