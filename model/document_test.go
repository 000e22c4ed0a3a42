package model_test

import (
	"testing"

	"github.com/foldscope/gdsview/model"
)

func square(layer model.LayerKey, x0, y0, x1, y1 int32) *model.Polygon {
	return model.NewPolygon(layer, []model.Point{
		model.NewPoint(x0, y0), model.NewPoint(x1, y0),
		model.NewPoint(x1, y1), model.NewPoint(x0, y1), model.NewPoint(x0, y0),
	})
}

// S1 — single square, spec.md §8 scenario S1.
func TestSingleSquare(t *testing.T) {
	doc := model.NewDocument("single.gds")
	doc.Units = model.Units{DBUInUser: 0.001, UserInMeters: 1e-6}
	layer := model.LayerKey{Layer: 1, Datatype: 0}
	top := &model.Cell{Name: "TOP", Polygons: []*model.Polygon{square(layer, 0, 0, 1000, 1000)}}
	doc.Cells["TOP"] = top
	doc.Layer(layer)

	if err := doc.ValidateAcyclic(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.TopCells) != 1 || doc.TopCells[0] != "TOP" {
		t.Fatalf("top cells = %v, want [TOP]", doc.TopCells)
	}
	doc.ComputeBounds()
	want := model.NewAABB(0, 0, 1000, 1000)
	if doc.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", doc.Bounds, want)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("layers = %d, want 1", len(doc.Layers))
	}
}

// S2 — array expansion, spec.md §8 scenario S2.
func TestArrayReference(t *testing.T) {
	doc := model.NewDocument("array.gds")
	layer := model.LayerKey{Layer: 2, Datatype: 0}
	cellA := &model.Cell{Name: "CELL_A", Polygons: []*model.Polygon{square(layer, 0, 0, 100, 100)}}
	top := &model.Cell{
		Name: "TOP",
		Refs: []*model.CellRef{{
			Target: "CELL_A", Mag: 1,
			Rows: 3, Cols: 4, StepX: 200, StepY: 200,
		}},
	}
	doc.Cells["CELL_A"] = cellA
	doc.Cells["TOP"] = top

	if err := doc.ValidateAcyclic(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.ComputeBounds()
	want := model.NewAABB(0, 0, 700, 500)
	if doc.Bounds != want {
		t.Fatalf("bounds = %+v, want %+v", doc.Bounds, want)
	}
	instances := top.Refs[0].Instances()
	if len(instances) != 12 {
		t.Fatalf("instances = %d, want 12", len(instances))
	}
}

// S3 — cycle detection, spec.md §8 scenario S3.
func TestReferenceCycle(t *testing.T) {
	doc := model.NewDocument("cycle.gds")
	doc.Cells["A"] = &model.Cell{Name: "A", Refs: []*model.CellRef{{Target: "B", Mag: 1, Rows: 1, Cols: 1}}}
	doc.Cells["B"] = &model.Cell{Name: "B", Refs: []*model.CellRef{{Target: "A", Mag: 1, Rows: 1, Cols: 1}}}

	err := doc.ValidateAcyclic()
	var cycleErr *model.ReferenceCycleError
	if err == nil {
		t.Fatal("expected a cycle error, got nil")
	}
	if !asCycleError(err, &cycleErr) {
		t.Fatalf("expected *ReferenceCycleError, got %T", err)
	}
}

func asCycleError(err error, target **model.ReferenceCycleError) bool {
	if ce, ok := err.(*model.ReferenceCycleError); ok {
		*target = ce
		return true
	}
	return false
}

func TestUnresolvedReference(t *testing.T) {
	doc := model.NewDocument("dangling.gds")
	doc.Cells["TOP"] = &model.Cell{Name: "TOP", Refs: []*model.CellRef{{Target: "MISSING", Mag: 1, Rows: 1, Cols: 1}}}

	err := doc.ValidateAcyclic()
	if _, ok := err.(*model.UnresolvedReferenceError); !ok {
		t.Fatalf("expected *UnresolvedReferenceError, got %T (%v)", err, err)
	}
}

// A single empty top-cell loads and reports a degenerate AABB without
// crashing (spec.md §8 boundary behavior 11).
func TestEmptyTopCell(t *testing.T) {
	doc := model.NewDocument("empty.gds")
	doc.Cells["TOP"] = &model.Cell{Name: "TOP"}

	if err := doc.ValidateAcyclic(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc.ComputeBounds()
	if !model.IsEmpty(doc.Bounds) {
		t.Fatalf("expected an empty bounds, got %+v", doc.Bounds)
	}
}
