package geometry

import (
	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/material"
)

// HittableList is an ordered collection of shapes intersected by linear scan
type HittableList struct {
	Shapes []Shape
}

// NewHittableList creates a list holding the given shapes
func NewHittableList(shapes ...Shape) *HittableList {
	return &HittableList{Shapes: shapes}
}

// Add appends shapes to the list
func (l *HittableList) Add(shapes ...Shape) {
	l.Shapes = append(l.Shapes, shapes...)
}

// Len returns the number of shapes in the list
func (l *HittableList) Len() int {
	return len(l.Shapes)
}

// Hit returns the nearest intersection across all shapes.
// Each accepted hit shrinks the search interval, so order does not matter.
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	closestSoFar := tMax

	for _, shape := range l.Shapes {
		if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}
