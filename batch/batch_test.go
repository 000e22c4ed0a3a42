package batch

import (
	"testing"

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

	child := &model.Cell{Name: "CHILD", Polygons: []*model.Polygon{square(layer, 0, 0, 10, 10)}}
	doc.Cells["CHILD"] = child

	top := &model.Cell{
		Name:     "TOP",
		Polygons: []*model.Polygon{square(layer, 0, 0, 5, 5)},
		Refs: []*model.CellRef{
			{Target: "CHILD", X: 100, Y: 100, Mag: 1, Rows: 1, Cols: 1},
		},
	}
	doc.Cells["TOP"] = top

	if err := doc.ValidateAcyclic(); err != nil {
		t.Fatalf("ValidateAcyclic: %v", err)
	}
	doc.ComputeBounds()
	return doc
}

func TestRebuildEmitsBatchesAndIndexesThem(t *testing.T) {
	doc := buildDoc(t)
	b := New(doc, 0)
	stats := b.Rebuild(10)

	if stats.BudgetExhausted {
		t.Fatalf("unexpected budget exhaustion: %+v", stats)
	}
	if stats.BatchCount != 2 {
		t.Fatalf("batch count = %d, want 2", stats.BatchCount)
	}
	if stats.TotalPolygons != 2 {
		t.Fatalf("total polygons = %d, want 2", stats.TotalPolygons)
	}

	visible := b.Cull(model.AABBf{MinX: -10, MinY: -10, MaxX: 20, MaxY: 20}, model.LayerVisibility{})
	if len(visible) != 1 {
		t.Fatalf("visible batches in small window = %d, want 1", len(visible))
	}

	all := b.Cull(model.AABBf{MinX: -10, MinY: -10, MaxX: 200, MaxY: 200}, model.LayerVisibility{})
	if len(all) != 2 {
		t.Fatalf("visible batches in large window = %d, want 2", len(all))
	}
}

func TestRebuildRespectsDepth(t *testing.T) {
	doc := buildDoc(t)
	b := New(doc, 0)
	stats := b.Rebuild(0)
	if stats.BatchCount != 1 {
		t.Fatalf("depth-0 batch count = %d, want 1 (top cell only)", stats.BatchCount)
	}
}

func TestRebuildRespectsBudget(t *testing.T) {
	doc := buildDoc(t)
	b := New(doc, 1)
	stats := b.Rebuild(10)
	if !stats.BudgetExhausted {
		t.Fatal("expected budget exhaustion with a budget of 1 polygon")
	}
	if stats.TotalPolygons != 1 {
		t.Fatalf("total polygons = %d, want 1", stats.TotalPolygons)
	}
}

func TestCullExcludesHiddenLayers(t *testing.T) {
	doc := buildDoc(t)
	b := New(doc, 0)
	b.Rebuild(10)

	layer := model.LayerKey{Layer: 1, Datatype: 0}
	vis := model.LayerVisibility{layer: false}
	visible := b.Cull(model.AABBf{MinX: -100, MinY: -100, MaxX: 200, MaxY: 200}, vis)
	if len(visible) != 0 {
		t.Fatalf("expected no visible batches with layer hidden, got %d", len(visible))
	}
}
