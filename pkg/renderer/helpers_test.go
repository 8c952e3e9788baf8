package renderer

import (
	"testing"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/scene"
)

// scriptedSampler returns fixed values first, then falls back to a seeded stream
type scriptedSampler struct {
	values   []float64
	fallback core.Sampler
}

func newScriptedSampler(values ...float64) *scriptedSampler {
	return &scriptedSampler{values: values, fallback: core.NewSeededSampler(7)}
}

func (s *scriptedSampler) Get1D() float64 {
	if len(s.values) == 0 {
		return s.fallback.Get1D()
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v
}

func (s *scriptedSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func (s *scriptedSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

// smallScene returns a built-in scene resized for fast tests
func smallScene(t *testing.T, s *scene.Scene, width, height, samples int) *scene.Scene {
	t.Helper()
	config := s.GetSamplingConfig()
	config.Width = width
	config.Height = height
	config.SamplesPerPixel = samples
	if err := s.SetSamplingConfig(config); err != nil {
		t.Fatalf("SetSamplingConfig failed: %v", err)
	}
	return s
}

// recordingLogger captures log lines
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, format)
}
