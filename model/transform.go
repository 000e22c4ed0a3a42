package model

import "math"

// Pointf is a coordinate in world/screen space (DBU cast to float64 once a
// reflection, rotation, magnification, or array step has been applied).
type Pointf struct{ X, Y float64 }

// AABBf is a float axis-aligned box in world/screen space.
type AABBf struct{ MinX, MinY, MaxX, MaxY float64 }

// EmptyAABBf is the canonical empty float box.
func EmptyAABBf() AABBf { return AABBf{MinX: 0, MinY: 0, MaxX: -1, MaxY: -1} }

// IsEmptyf mirrors IsEmpty for float boxes.
func IsEmptyf(b AABBf) bool { return b.MaxX < b.MinX || b.MaxY < b.MinY }

// UnionAABBf is the float analogue of UnionAABB.
func UnionAABBf(a, b AABBf) AABBf {
	if IsEmptyf(a) {
		return b
	}
	if IsEmptyf(b) {
		return a
	}
	return AABBf{
		MinX: math.Min(a.MinX, b.MinX),
		MinY: math.Min(a.MinY, b.MinY),
		MaxX: math.Max(a.MaxX, b.MaxX),
		MaxY: math.Max(a.MaxY, b.MaxY),
	}
}

// Intersectsf is the float analogue of Intersects.
func Intersectsf(a, b AABBf) bool {
	if IsEmptyf(a) || IsEmptyf(b) {
		return false
	}
	return a.MinX <= b.MaxX && a.MaxX >= b.MinX && a.MinY <= b.MaxY && a.MaxY >= b.MinY
}

// AABBToFloat widens an integer DBU box into world space.
func AABBToFloat(b AABB) AABBf {
	if IsEmpty(b) {
		return EmptyAABBf()
	}
	return AABBf{
		MinX: float64(b.TopLeft.X), MinY: float64(b.TopLeft.Y),
		MaxX: float64(b.BottomRight.X), MaxY: float64(b.BottomRight.Y),
	}
}

// Transform is a Cell Reference's instance transform: reflection across X
// is applied first, then rotation, then magnification, then translation —
// per spec.md §3's Cell Reference field order.
type Transform struct {
	X, Y        float64
	RotationDeg float64
	Reflect     bool
	Mag         float64
}

// Identity is the no-op transform.
func Identity() Transform { return Transform{Mag: 1} }

// Apply maps a local point through the transform into the parent's space.
func (t Transform) Apply(p Pointf) Pointf {
	x, y := p.X, p.Y
	if t.Reflect {
		y = -y
	}
	mag := t.Mag
	if mag == 0 {
		mag = 1
	}
	rad := t.RotationDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	rx := (x*cos - y*sin) * mag
	ry := (x*sin + y*cos) * mag
	return Pointf{X: rx + t.X, Y: ry + t.Y}
}

// Compose returns the transform equivalent to applying t first, then outer.
func Compose(outer, t Transform) Transform {
	origin := outer.Apply(Pointf{X: t.X, Y: t.Y})
	rot := outer.RotationDeg + t.RotationDeg
	if outer.Reflect {
		rot = outer.RotationDeg - t.RotationDeg
	}
	reflect := outer.Reflect
	if t.Reflect {
		reflect = !outer.Reflect
	}
	mag := outer.Mag
	if mag == 0 {
		mag = 1
	}
	tMag := t.Mag
	if tMag == 0 {
		tMag = 1
	}
	return Transform{
		X:           origin.X,
		Y:           origin.Y,
		RotationDeg: rot,
		Reflect:     reflect,
		Mag:         mag * tMag,
	}
}

// ApplyAABB maps an axis-aligned box's four corners through the transform
// and returns the bounding box of the result — rotation is not generally
// axis-preserving, so all four corners are needed, not just two.
func (t Transform) ApplyAABB(b AABBf) AABBf {
	if IsEmptyf(b) {
		return EmptyAABBf()
	}
	corners := [4]Pointf{
		{b.MinX, b.MinY}, {b.MaxX, b.MinY}, {b.MaxX, b.MaxY}, {b.MinX, b.MaxY},
	}
	out := EmptyAABBf()
	for _, c := range corners {
		p := t.Apply(c)
		out = UnionAABBf(out, AABBf{p.X, p.Y, p.X, p.Y})
	}
	return out
}
