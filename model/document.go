package model

import "sort"

// Document is the top-level, mostly-immutable geometry library produced by
// a load: cells keyed by name, layers keyed by (layer, datatype), the set
// of top-cell names, the overall bounds, unit metadata, and the originating
// file name (spec.md §3).
type Document struct {
	Cells      map[string]*Cell
	Layers     map[LayerKey]*Layer
	TopCells   []string
	Bounds     AABB
	Units      Units
	SourceFile string

	largestExtent float64
}

// NewDocument builds an empty document shell; the Builder populates it.
func NewDocument(filename string) *Document {
	return &Document{
		Cells:      make(map[string]*Cell),
		Layers:     make(map[LayerKey]*Layer),
		Bounds:     EmptyAABB(),
		SourceFile: filename,
	}
}

// Layer returns the layer table entry for key, auto-creating it with the
// deterministic default color if missing (spec.md §3 invariant 5).
func (d *Document) Layer(key LayerKey) *Layer {
	if l, ok := d.Layers[key]; ok {
		return l
	}
	l := NewLayer(key)
	d.Layers[key] = l
	return l
}

// SortedLayerKeys returns the layer table's keys in a stable display order.
func (d *Document) SortedLayerKeys() []LayerKey {
	keys := make([]LayerKey, 0, len(d.Layers))
	for k := range d.Layers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Layer != keys[j].Layer {
			return keys[i].Layer < keys[j].Layer
		}
		return keys[i].Datatype < keys[j].Datatype
	})
	return keys
}

// ComputeBounds recomputes every cell's bounds bottom-up (memoized over the
// reference DAG) and then the document's bounds as the union of top-cell
// bounds, per spec.md §3 invariants 3-4 and §4.3. Call after the full parse
// has resolved every reference; the caller must have already validated the
// graph is acyclic (ValidateAcyclic). A cycle does not recurse forever, but
// a cell on it sees its own bounds as empty, so the result is not
// meaningful.
func (d *Document) ComputeBounds() {
	memo := make(map[string]AABB, len(d.Cells))
	var resolve func(name string) AABB
	resolve = func(name string) AABB {
		if b, ok := memo[name]; ok {
			return b
		}
		cell, ok := d.Cells[name]
		if !ok {
			return EmptyAABB()
		}
		memo[name] = EmptyAABB() // cycle guard; overwritten below
		bounds := EmptyAABB()
		for _, poly := range cell.Polygons {
			bounds = UnionAABB(bounds, poly.Bounds)
		}
		for _, ref := range cell.Refs {
			target := resolve(ref.Target)
			if IsEmpty(target) {
				continue
			}
			targetf := AABBToFloat(target)
			for _, inst := range ref.Instances() {
				bounds = UnionAABB(bounds, floatToAABB(inst.ApplyAABB(targetf)))
			}
		}
		cell.Bounds = bounds
		memo[name] = bounds
		return bounds
	}
	for name := range d.Cells {
		resolve(name)
	}
	docBounds := EmptyAABB()
	largest := 0.0
	for _, name := range d.TopCells {
		cell, ok := d.Cells[name]
		if !ok {
			continue
		}
		docBounds = UnionAABB(docBounds, cell.Bounds)
	}
	d.Bounds = docBounds
	if !IsEmpty(docBounds) {
		w := float64(docBounds.BottomRight.X - docBounds.TopLeft.X)
		h := float64(docBounds.BottomRight.Y - docBounds.TopLeft.Y)
		largest = w
		if h > largest {
			largest = h
		}
	}
	d.largestExtent = largest
	d.markSkipInMinimap()
}

// markSkipInMinimap flags cells whose own AABB is smaller than 1% of the
// document's largest extent in both width and height, per spec.md §4.3;
// advisory, used only by the Minimap's culling policy. The test uses the
// cell's Bounds in its local frame, so an instance's magnification does
// not change the flag. Cells with empty bounds are always flagged.
func (d *Document) markSkipInMinimap() {
	if d.largestExtent <= 0 {
		return
	}
	threshold := d.largestExtent * 0.01
	for _, cell := range d.Cells {
		if IsEmpty(cell.Bounds) {
			cell.SkipInMinimap = true
			continue
		}
		w := float64(cell.Bounds.BottomRight.X - cell.Bounds.TopLeft.X)
		h := float64(cell.Bounds.BottomRight.Y - cell.Bounds.TopLeft.Y)
		cell.SkipInMinimap = w < threshold && h < threshold
	}
}

func floatToAABB(b AABBf) AABB {
	if IsEmptyf(b) {
		return EmptyAABB()
	}
	return NewAABB(int64(b.MinX), int64(b.MinY), int64(b.MaxX), int64(b.MaxY))
}

// ReferenceCycleError reports the exact cycle path, per spec.md §4.2 /
// §7 ReferenceCycle(names).
type ReferenceCycleError struct {
	Path []string
}

func (e *ReferenceCycleError) Error() string {
	s := "reference cycle: "
	for i, name := range e.Path {
		if i > 0 {
			s += " -> "
		}
		s += name
	}
	return s
}

// UnresolvedReferenceError reports a reference whose target does not exist
// in the cell table, per spec.md §4.2 / §7.
type UnresolvedReferenceError struct {
	Name string
}

func (e *UnresolvedReferenceError) Error() string {
	return "unresolved reference: " + e.Name
}

// ValidateAcyclic performs the post-parse topological sort spec.md §4.2
// describes: every reference target must resolve, and the induced graph
// Cell -> [target names] must be a DAG. It also computes TopCells as
// {all cells} minus {cells referenced by some SREF/AREF}.
func (d *Document) ValidateAcyclic() error {
	referenced := make(map[string]bool, len(d.Cells))
	for _, cell := range d.Cells {
		for _, ref := range cell.Refs {
			if _, ok := d.Cells[ref.Target]; !ok {
				return &UnresolvedReferenceError{Name: ref.Target}
			}
			referenced[ref.Target] = true
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(d.Cells))
	var stack []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			path := append(append([]string{}, stack...), name)
			return &ReferenceCycleError{Path: path}
		}
		state[name] = visiting
		stack = append(stack, name)
		cell := d.Cells[name]
		for _, ref := range cell.Refs {
			if err := visit(ref.Target); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	names := make([]string, 0, len(d.Cells))
	for name := range d.Cells {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}

	top := make([]string, 0, len(d.Cells)-len(referenced))
	for _, name := range names {
		if !referenced[name] {
			top = append(top, name)
		}
	}
	d.TopCells = top
	return nil
}
