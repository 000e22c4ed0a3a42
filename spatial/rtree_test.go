package spatial

import (
	"testing"

	"github.com/foldscope/gdsview/model"
)

func box(minX, minY, maxX, maxY float64) model.AABBf {
	return model.AABBf{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func TestBulkLoadAndWindowQuery(t *testing.T) {
	idx := NewIndex()
	items := []Item{
		{ID: 1, Bounds: box(0, 0, 10, 10)},
		{ID: 2, Bounds: box(100, 100, 110, 110)},
		{ID: 3, Bounds: box(5, 5, 15, 15)},
		{ID: 4, Bounds: box(1000, 1000, 1001, 1001)},
	}
	idx.BulkLoad(items)

	got := idx.Query(box(-1, -1, 20, 20))
	want := map[ItemID]bool{1: true, 3: true}
	if len(got) != len(want) {
		t.Fatalf("got %v, want ids %v", got, want)
	}
	for _, id := range got {
		if !want[id] {
			t.Fatalf("unexpected id %d in result %v", id, got)
		}
	}
}

func TestQueryExcludesDisjointItems(t *testing.T) {
	idx := NewIndex()
	idx.BulkLoad([]Item{{ID: 1, Bounds: box(0, 0, 1, 1)}})
	if got := idx.Query(box(100, 100, 200, 200)); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestQueuedMutationAppliesOnFlush(t *testing.T) {
	idx := NewIndex()
	idx.BulkLoad([]Item{{ID: 1, Bounds: box(0, 0, 1, 1)}})
	idx.QueueInsert(Item{ID: 2, Bounds: box(5, 5, 6, 6)})
	idx.QueueRemove(1)

	// Before Flush, the new item is not queryable and the removed item still is.
	if got := idx.Query(box(-1, -1, 20, 20)); len(got) != 1 || got[0] != 1 {
		t.Fatalf("pre-flush query = %v, want [1]", got)
	}

	idx.Flush()
	got := idx.Query(box(-1, -1, 20, 20))
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("post-flush query = %v, want [2]", got)
	}
}

func TestQueryPointTolerance(t *testing.T) {
	idx := NewIndex()
	idx.BulkLoad([]Item{{ID: 1, Bounds: box(10, 10, 20, 20)}})

	if got := idx.QueryPoint(9, 15, 0); len(got) != 0 {
		t.Fatalf("expected no match without tolerance, got %v", got)
	}
	if got := idx.QueryPoint(9, 15, 2); len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected match with tolerance, got %v", got)
	}
}

func TestClearEmptiesIndex(t *testing.T) {
	idx := NewIndex()
	idx.BulkLoad([]Item{{ID: 1, Bounds: box(0, 0, 1, 1)}})
	idx.Clear()
	if idx.Len() != 0 {
		t.Fatalf("expected empty index, len = %d", idx.Len())
	}
	if got := idx.Query(box(-100, -100, 100, 100)); len(got) != 0 {
		t.Fatalf("expected no results after clear, got %v", got)
	}
}

func TestBulkLoadManyItemsFindsAll(t *testing.T) {
	idx := NewIndex()
	var items []Item
	for i := 0; i < 500; i++ {
		x := float64(i)
		items = append(items, Item{ID: ItemID(i), Bounds: box(x, x, x+0.5, x+0.5)})
	}
	idx.BulkLoad(items)

	got := idx.Query(box(-1, -1, 1000, 1000))
	if len(got) != 500 {
		t.Fatalf("got %d results, want 500", len(got))
	}
}
