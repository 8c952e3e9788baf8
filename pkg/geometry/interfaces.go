package geometry

import (
	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/material"
)

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
