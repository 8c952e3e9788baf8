package material

import (
	"testing"

	"github.com/itarato/pathtracer/pkg/core"
)

// scriptedSampler returns the given values in order, cycling when exhausted
type scriptedSampler struct {
	values []float64
	index  int
}

func (s *scriptedSampler) Get1D() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}

func (s *scriptedSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.Get1D(), s.Get1D())
}

func (s *scriptedSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.Get1D(), s.Get1D(), s.Get1D())
}

// forbiddenSampler fails the test if any randomness is consumed
type forbiddenSampler struct {
	t *testing.T
}

func (f forbiddenSampler) Get1D() float64 {
	f.t.Fatal("sampler must not be used")
	return 0
}

func (f forbiddenSampler) Get2D() core.Vec2 {
	f.t.Fatal("sampler must not be used")
	return core.Vec2{}
}

func (f forbiddenSampler) Get3D() core.Vec3 {
	f.t.Fatal("sampler must not be used")
	return core.Vec3{}
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}
