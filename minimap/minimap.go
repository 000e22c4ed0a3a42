// Package minimap renders a fixed-size, single-pass overview of a
// Document independent of the main viewport's LOD and culling state, per
// spec.md §4.10. It has its own fit/Y-flip transform (it does not use
// package viewport), always renders every non-skipped cell at full
// detail, and draws the main viewport's world AABB as a red outline.
package minimap

import (
	"image/color"

	"github.com/foldscope/gdsview/drawlist"
	"github.com/foldscope/gdsview/model"
)

// DefaultSize is the typical fixed logical-pixel size spec.md §4.10
// names ("typically 200x200").
const DefaultSize = 200

const fitMargin = 0.92

var outlineColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}

// Minimap renders doc into a fixed width x height rectangle.
type Minimap struct {
	doc          *model.Document
	width, height float64
}

// New fits a minimap of the given size to doc's bounds.
func New(doc *model.Document, width, height float64) *Minimap {
	return &Minimap{doc: doc, width: width, height: height}
}

// fitTransform returns the world-to-screen transform that fits the
// document AABB into the minimap rectangle with a small padding and a
// Y-flip, per spec.md §4.10.
func (m *Minimap) fitTransform() (scale float64, tx, ty float64) {
	b := model.AABBToFloat(m.doc.Bounds)
	if model.IsEmptyf(b) {
		return 1, 0, 0
	}
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	s := fitMargin * minFloat(m.width/w, m.height/h)
	cx := (b.MinX + b.MaxX) / 2
	cy := (b.MinY + b.MaxY) / 2
	return s, cx, cy
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func (m *Minimap) worldToScreen(scale, tx, ty, x, y float64) (float64, float64) {
	return (x-tx)*scale + m.width/2, (y-ty)*-scale + m.height/2
}

func (m *Minimap) screenToWorld(scale, tx, ty, sx, sy float64) (float64, float64) {
	return (sx-m.width/2)/scale + tx, (sy-m.height/2)/-scale + ty
}

// Render draws every cell reachable from the document's top-cells that
// is not flagged SkipInMinimap, with no LOD truncation and no viewport
// culling, then overlays viewportWorld as a red outline, per spec.md
// §4.10.
func (m *Minimap) Render(out drawlist.List, viewportWorld model.AABBf, colors model.LayerColors) {
	scale, tx, ty := m.fitTransform()
	for _, name := range m.doc.TopCells {
		cell, ok := m.doc.Cells[name]
		if !ok {
			continue
		}
		m.renderCell(out, cell, model.Identity(), scale, tx, ty, colors)
	}
	m.renderOutline(out, viewportWorld, scale, tx, ty)
}

func (m *Minimap) renderCell(out drawlist.List, cell *model.Cell, transform model.Transform, scale, tx, ty float64, colors model.LayerColors) {
	if cell.SkipInMinimap {
		return
	}
	for _, poly := range cell.Polygons {
		screenPts := make([]model.Pointf, 0, len(poly.Points))
		for _, p := range poly.Points {
			wp := transform.Apply(model.Pointf{X: float64(p.X), Y: float64(p.Y)})
			sx, sy := m.worldToScreen(scale, tx, ty, wp.X, wp.Y)
			screenPts = append(screenPts, model.Pointf{X: sx, Y: sy})
		}
		out.FillPolygon(screenPts, colors.Color(m.doc, poly.Layer))
	}
	for _, ref := range cell.Refs {
		target, ok := m.doc.Cells[ref.Target]
		if !ok {
			continue
		}
		for _, inst := range ref.Instances() {
			composed := model.Compose(transform, inst)
			m.renderCell(out, target, composed, scale, tx, ty, colors)
		}
	}
}

func (m *Minimap) renderOutline(out drawlist.List, viewportWorld model.AABBf, scale, tx, ty float64) {
	if model.IsEmptyf(viewportWorld) {
		return
	}
	corners := [5][2]float64{
		{viewportWorld.MinX, viewportWorld.MinY},
		{viewportWorld.MaxX, viewportWorld.MinY},
		{viewportWorld.MaxX, viewportWorld.MaxY},
		{viewportWorld.MinX, viewportWorld.MaxY},
		{viewportWorld.MinX, viewportWorld.MinY},
	}
	pts := make([]model.Pointf, 0, len(corners))
	for _, c := range corners {
		sx, sy := m.worldToScreen(scale, tx, ty, c[0], c[1])
		pts = append(pts, model.Pointf{X: sx, Y: sy})
	}
	out.Stroke(pts, outlineColor, 1)
}

// HitTest converts a minimap click at screen (sx, sy) into world
// coordinates, for the caller to issue a centerOn(x,y) command, per
// spec.md §4.10.
func (m *Minimap) HitTest(sx, sy float64) (x, y float64) {
	scale, tx, ty := m.fitTransform()
	return m.screenToWorld(scale, tx, ty, sx, sy)
}
