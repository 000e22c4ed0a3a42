package minimap

import (
	"testing"

	"github.com/foldscope/gdsview/drawlist"
	"github.com/foldscope/gdsview/model"
)

func square(layer model.LayerKey, x0, y0, x1, y1 int32) *model.Polygon {
	pts := []model.Point{
		model.NewPoint(x0, y0), model.NewPoint(x1, y0),
		model.NewPoint(x1, y1), model.NewPoint(x0, y1),
	}
	return model.NewPolygon(layer, pts)
}

func buildDoc(t *testing.T) *model.Document {
	t.Helper()
	doc := model.NewDocument("test.gds")
	layer := model.LayerKey{Layer: 1, Datatype: 0}
	top := &model.Cell{Name: "TOP", Polygons: []*model.Polygon{square(layer, 0, 0, 1000, 1000)}}
	doc.Cells["TOP"] = top
	if err := doc.ValidateAcyclic(); err != nil {
		t.Fatalf("ValidateAcyclic: %v", err)
	}
	doc.ComputeBounds()
	return doc
}

func TestRenderEmitsFillsAndOutline(t *testing.T) {
	doc := buildDoc(t)
	m := New(doc, DefaultSize, DefaultSize)
	rec := drawlist.NewRecorder()
	colors := model.LayerColors{}

	m.Render(rec, model.AABBf{MinX: 0, MinY: 0, MaxX: 500, MaxY: 500}, colors)

	if len(rec.Fills) != 1 {
		t.Fatalf("fills = %d, want 1", len(rec.Fills))
	}
	if len(rec.Strokes) != 1 {
		t.Fatalf("strokes = %d, want 1 (viewport outline)", len(rec.Strokes))
	}
}

func TestRenderSkipsFlaggedCells(t *testing.T) {
	doc := buildDoc(t)
	doc.Cells["TOP"].SkipInMinimap = true
	m := New(doc, DefaultSize, DefaultSize)
	rec := drawlist.NewRecorder()

	m.Render(rec, model.AABBf{}, model.LayerColors{})
	if len(rec.Fills) != 0 {
		t.Fatalf("expected no fills for a skipped cell, got %d", len(rec.Fills))
	}
}

func TestHitTestRoundTripsThroughFit(t *testing.T) {
	doc := buildDoc(t)
	m := New(doc, DefaultSize, DefaultSize)
	x, y := m.HitTest(DefaultSize/2, DefaultSize/2)
	if x < -50 || x > 1050 || y < -50 || y > 1050 {
		t.Fatalf("center hit test = (%v, %v), want roughly inside [0,1000]", x, y)
	}
}
