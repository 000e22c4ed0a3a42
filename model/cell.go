package model

// Cell is a named container of polygons and cell references. Cell names
// are unique within a Document (spec.md §3).
type Cell struct {
	Name          string
	Polygons      []*Polygon
	Refs          []*CellRef
	Bounds        AABB
	SkipInMinimap bool
}

// PolygonCount returns the number of polygons owned directly by the cell
// (not counting referenced cells).
func (c *Cell) PolygonCount() int { return len(c.Polygons) }
