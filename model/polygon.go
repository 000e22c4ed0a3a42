package model

// Polygon is a closed sequence of >= 3 points on a specific layer, with its
// precomputed AABB, per spec.md §3. The last point may or may not repeat
// the first; DegeneratePolygon rejection happens in the Builder, not here.
type Polygon struct {
	Layer  LayerKey
	Points []Point
	Bounds AABB
}

// NewPolygon computes Bounds from Points. Callers are expected to have
// already dropped an explicit closing duplicate and verified len(points) >= 3.
func NewPolygon(layer LayerKey, points []Point) *Polygon {
	return &Polygon{Layer: layer, Points: points, Bounds: AABBOfPoints(points)}
}

// Closed returns the polygon's points with an explicit closing vertex, for
// renderers that need a literally closed ring.
func (p *Polygon) Closed() []Point {
	if len(p.Points) == 0 {
		return nil
	}
	first, last := p.Points[0], p.Points[len(p.Points)-1]
	if first == last {
		return p.Points
	}
	out := make([]Point, len(p.Points)+1)
	copy(out, p.Points)
	out[len(p.Points)] = first
	return out
}
