// Package batch groups a Document's polygons into per-(cell-instance,
// layer) batches placed in world coordinates and publishes their bounds
// into a spatial index, per spec.md §4.5. The wiring into the spatial
// index is adapted from the teacher's (kjkrol-gokx)
// pkg/gridbridge/bridge.go, which turns drawables into spatial-index
// entries; here each batch becomes one spatial.Item, and each Rebuild
// loads all of them with a single spatial.Index.BulkLoad call.
package batch

import (
	"sort"

	"github.com/foldscope/gdsview/model"
	"github.com/foldscope/gdsview/spatial"
)

// Batch is a per-(cell-instance, layer) list of a cell's polygons, per
// spec.md §4.5. Polygons keep their cell-local coordinates; Transform is
// the cumulative instance transform that maps them into world
// coordinates, and Bounds is their world-space AABB.
type Batch struct {
	ID        spatial.ItemID
	Layer     model.LayerKey
	Cell      string
	Transform model.Transform
	Polygons  []*model.Polygon
	Bounds    model.AABBf
	Visible   bool
}

// Stats summarizes one batch pass, per spec.md §4.5/§4.9's telemetry.
type Stats struct {
	Depth            int
	BatchCount       int
	TotalPolygons    int
	BudgetExhausted  bool
	TruncatedAtCell  string
}

// Batcher owns the current set of batches and the spatial index keyed by
// their world bounds. It is rebuilt wholesale by Rebuild, both on a new
// Document and on an LOD depth commit (spec.md §4.5/§4.6); no batches are
// kept across a depth change.
type Batcher struct {
	doc    *model.Document
	index  *spatial.Index
	budget int

	batches map[spatial.ItemID]*Batch
	nextID  spatial.ItemID

	depth int
	stats Stats
}

// New creates a Batcher for doc with the given global polygon budget. A
// budget <= 0 uses spec.md §4.5's default of 100,000.
func New(doc *model.Document, budget int) *Batcher {
	if budget <= 0 {
		budget = 100000
	}
	return &Batcher{doc: doc, index: spatial.NewIndex(), budget: budget, batches: make(map[spatial.ItemID]*Batch)}
}

// Index exposes the underlying spatial index for window/point queries.
func (b *Batcher) Index() *spatial.Index { return b.index }

// Stats reports the outcome of the most recent Rebuild.
func (b *Batcher) Stats() Stats { return b.stats }

// Batches returns every batch currently materialized, in no particular
// order; callers that need determinism should sort by ID.
func (b *Batcher) Batches() []*Batch {
	out := make([]*Batch, 0, len(b.batches))
	for _, batch := range b.batches {
		out = append(out, batch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Batch looks up one batch by ID, e.g. from a spatial.Item payload.
func (b *Batcher) Batch(id spatial.ItemID) (*Batch, bool) {
	batch, ok := b.batches[id]
	return batch, ok
}

// Rebuild discards every existing batch and retraverses the Document from
// its top-cells down to depth, honoring the global polygon budget. It is
// the only rebuild path, used for a new Document and for every LOD
// re-batch (spec.md §4.5).
func (b *Batcher) Rebuild(depth int) Stats {
	b.index.Clear()
	b.batches = make(map[spatial.ItemID]*Batch)
	b.nextID = 0
	b.depth = depth
	b.stats = Stats{Depth: depth}

	remaining := b.budget
	var topCells []string
	topCells = append(topCells, b.doc.TopCells...)
	sort.Strings(topCells)

outer:
	for _, name := range topCells {
		cell, ok := b.doc.Cells[name]
		if !ok {
			continue
		}
		ok2, exhausted := b.traverse(cell, model.Identity(), depth, &remaining)
		if !ok2 {
			b.stats.BudgetExhausted = true
			b.stats.TruncatedAtCell = name
			break outer
		}
		if exhausted {
			break outer
		}
	}

	items := make([]spatial.Item, 0, len(b.batches))
	for id, batch := range b.batches {
		items = append(items, spatial.Item{ID: id, Bounds: batch.Bounds, Kind: spatial.KindPolygonBatch, Payload: batch})
	}
	b.index.BulkLoad(items)

	b.stats.BatchCount = len(b.batches)
	total := 0
	for _, batch := range b.batches {
		total += len(batch.Polygons)
	}
	b.stats.TotalPolygons = total
	return b.stats
}

// traverse emits batches for cell under transform, recursing into
// references while depth and the remaining budget allow. It returns
// false if this cell's traversal must stop because the budget ran out
// partway through (the caller reports this as a partial/truncated
// render, per spec.md §4.5's "stops deterministically in document
// order").
func (b *Batcher) traverse(cell *model.Cell, parent model.Transform, depth int, remaining *int) (ok bool, exhausted bool) {
	byLayer := make(map[model.LayerKey][]*model.Polygon)
	for _, poly := range cell.Polygons {
		byLayer[poly.Layer] = append(byLayer[poly.Layer], poly)
	}
	var layers []model.LayerKey
	for k := range byLayer {
		layers = append(layers, k)
	}
	sort.Slice(layers, func(i, j int) bool {
		if layers[i].Layer != layers[j].Layer {
			return layers[i].Layer < layers[j].Layer
		}
		return layers[i].Datatype < layers[j].Datatype
	})

	for _, layer := range layers {
		polys := byLayer[layer]
		if *remaining <= 0 {
			return false, true
		}
		n := len(polys)
		if n > *remaining {
			n = *remaining
		}
		flattened := make([]*model.Polygon, 0, n)
		bounds := model.EmptyAABBf()
		for _, poly := range polys[:n] {
			flattened = append(flattened, poly)
			bounds = model.UnionAABBf(bounds, parent.ApplyAABB(model.AABBToFloat(poly.Bounds)))
		}
		*remaining -= n
		b.emit(layer, cell.Name, parent, flattened, bounds)
		if n < len(polys) {
			return false, true
		}
	}

	if depth <= 0 {
		return true, false
	}
	for _, ref := range cell.Refs {
		target, ok := b.doc.Cells[ref.Target]
		if !ok {
			continue
		}
		for _, inst := range ref.Instances() {
			composed := model.Compose(parent, inst)
			ok2, exhausted := b.traverse(target, composed, depth-1, remaining)
			if !ok2 {
				return false, exhausted
			}
		}
	}
	return true, false
}

func (b *Batcher) emit(layer model.LayerKey, cell string, transform model.Transform, polys []*model.Polygon, bounds model.AABBf) {
	id := b.nextID
	b.nextID++
	b.batches[id] = &Batch{
		ID:        id,
		Layer:     layer,
		Cell:      cell,
		Transform: transform,
		Polygons:  polys,
		Bounds:    bounds,
		Visible:   true,
	}
}

// Cull queries the spatial index for window and marks every batch's
// Visible flag accordingly, per spec.md §4.7 step 3. It returns the
// visible batches.
func (b *Batcher) Cull(window model.AABBf, visibility model.LayerVisibility) []*Batch {
	for _, batch := range b.batches {
		batch.Visible = false
	}
	ids := b.index.Query(window)
	visible := make([]*Batch, 0, len(ids))
	for _, id := range ids {
		batch, ok := b.batches[id]
		if !ok {
			continue
		}
		if !visibility.Visible(b.doc, batch.Layer) {
			continue
		}
		batch.Visible = true
		visible = append(visible, batch)
	}
	sort.Slice(visible, func(i, j int) bool { return visible[i].ID < visible[j].ID })
	return visible
}

// VisiblePolygonCount sums polygon counts across visible. It does not
// filter by layer itself; passed the result of Cull, which already drops
// hidden layers, the count excludes them, per spec.md §4.6 ("hidden
// layers are excluded from the visible-polygon count").
func VisiblePolygonCount(visible []*Batch) int {
	total := 0
	for _, batch := range visible {
		total += len(batch.Polygons)
	}
	return total
}
