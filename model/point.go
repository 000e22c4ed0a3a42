// Package model is the in-memory geometry model: cells, polygons, cell
// references, the layer table, and unit metadata. It is read-only after
// load except for per-layer visibility and color.
package model

import "github.com/kjkrol/gokg/pkg/geom"

// Point is a coordinate in database units (DBU).
type Point = geom.Vec[int32]

// NewPoint constructs a Point from raw DBU coordinates.
func NewPoint(x, y int32) Point {
	return geom.NewVec(x, y)
}

// AABB is an axis-aligned bounding box in DBU, widened to int64 so unions
// across array-expanded references cannot overflow.
type AABB = geom.AABB[int64]

// EmptyAABB returns the canonical empty box (maxX < minX).
func EmptyAABB() AABB {
	return geom.NewAABB(geom.NewVec[int64](0, 0), geom.NewVec[int64](-1, -1))
}

// NewAABB builds a box from corners already in min/max order.
func NewAABB(minX, minY, maxX, maxY int64) AABB {
	return geom.NewAABB(geom.NewVec(minX, minY), geom.NewVec(maxX, maxY))
}

// IsEmpty reports whether the box contains no area, per spec.md §3.
func IsEmpty(b AABB) bool {
	return b.BottomRight.X < b.TopLeft.X || b.BottomRight.Y < b.TopLeft.Y
}

// UnionAABB returns the smallest box containing both a and b. An empty
// operand does not contribute.
func UnionAABB(a, b AABB) AABB {
	if IsEmpty(a) {
		return b
	}
	if IsEmpty(b) {
		return a
	}
	return NewAABB(
		min64(a.TopLeft.X, b.TopLeft.X),
		min64(a.TopLeft.Y, b.TopLeft.Y),
		max64(a.BottomRight.X, b.BottomRight.X),
		max64(a.BottomRight.Y, b.BottomRight.Y),
	)
}

// Intersects reports whether a and b share any area.
func Intersects(a, b AABB) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return false
	}
	return a.TopLeft.X <= b.BottomRight.X && a.BottomRight.X >= b.TopLeft.X &&
		a.TopLeft.Y <= b.BottomRight.Y && a.BottomRight.Y >= b.TopLeft.Y
}

// ContainsPoint reports whether the box contains point (x, y), expanded by
// tolerance on every side (used for hit-testing).
func ContainsPoint(b AABB, x, y float64, tolerance float64) bool {
	if IsEmpty(b) {
		return false
	}
	return x >= float64(b.TopLeft.X)-tolerance && x <= float64(b.BottomRight.X)+tolerance &&
		y >= float64(b.TopLeft.Y)-tolerance && y <= float64(b.BottomRight.Y)+tolerance
}

// AABBOfPoints computes the bounding box of a point set.
func AABBOfPoints(points []Point) AABB {
	if len(points) == 0 {
		return EmptyAABB()
	}
	minX, minY := int64(points[0].X), int64(points[0].Y)
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		x, y := int64(p.X), int64(p.Y)
		minX = min64(minX, x)
		minY = min64(minY, y)
		maxX = max64(maxX, x)
		maxY = max64(maxY, y)
	}
	return NewAABB(minX, minY, maxX, maxY)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
