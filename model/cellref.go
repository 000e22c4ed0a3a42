package model

// CellRef is an oriented, scaled, optionally reflected, optionally arrayed
// instance of another cell, per spec.md §3. Reflection across X is applied
// before rotation; rows/cols == 0 means "omit" and negative steps reverse
// the array direction (spec.md §9, open question "degenerate arrays").
type CellRef struct {
	Target      string
	X, Y        int32
	RotationDeg float64
	Reflect     bool
	Mag         float64
	Rows, Cols  int32
	StepX, StepY int32
	Bounds      AABB
}

// IsArray reports whether the reference expands to more than one instance.
// rows=1,cols=1 is materialized as a single reference per spec.md §4.2.
func (r *CellRef) IsArray() bool {
	return r.Rows > 1 || r.Cols > 1
}

// Instances yields the transform for each array copy (a single transform
// for a non-array reference), skipping rows==0 or cols==0 per spec.md §9.
func (r *CellRef) Instances() []Transform {
	rows, cols := r.Rows, r.Cols
	if rows == 0 || cols == 0 {
		return nil
	}
	if rows == 0 {
		rows = 1
	}
	if cols == 0 {
		cols = 1
	}
	base := Transform{X: float64(r.X), Y: float64(r.Y), RotationDeg: r.RotationDeg, Reflect: r.Reflect, Mag: r.Mag}
	out := make([]Transform, 0, int(rows)*int(cols))
	for row := int32(0); row < rows; row++ {
		for col := int32(0); col < cols; col++ {
			dx := float64(col) * float64(r.StepX)
			dy := float64(row) * float64(r.StepY)
			// The column/row steps are in the referenced cell's local
			// frame: offset before the instance transform is applied so
			// reflection/rotation/magnification carry the array grid with
			// them, matching an SREF-per-cell expansion of an AREF.
			t := base
			t.X = base.X
			t.Y = base.Y
			out = append(out, offsetThenTransform(t, dx, dy))
		}
	}
	return out
}

func offsetThenTransform(t Transform, dx, dy float64) Transform {
	local := Transform{RotationDeg: t.RotationDeg, Reflect: t.Reflect, Mag: t.Mag}
	p := local.Apply(Pointf{X: dx, Y: dy})
	return Transform{X: t.X + p.X, Y: t.Y + p.Y, RotationDeg: t.RotationDeg, Reflect: t.Reflect, Mag: t.Mag}
}
