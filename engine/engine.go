package engine

import (
	"context"
	"image/color"

	"github.com/foldscope/gdsview/batch"
	"github.com/foldscope/gdsview/builder"
	"github.com/foldscope/gdsview/drawlist"
	"github.com/foldscope/gdsview/dxf"
	"github.com/foldscope/gdsview/internal/xerrors"
	"github.com/foldscope/gdsview/lod"
	"github.com/foldscope/gdsview/minimap"
	"github.com/foldscope/gdsview/model"
	"github.com/foldscope/gdsview/overlay"
	"github.com/foldscope/gdsview/spatial"
	"github.com/foldscope/gdsview/viewport"
)

// Statistics summarizes a completed Load, per spec.md §6.
type Statistics struct {
	CellCount    int
	PolygonCount int
	LayerCount   int
	Bounds       model.AABBf
}

// Metrics is the periodically-reported render-time telemetry spec.md
// §4.7 step 4 and §4.8 describe.
type Metrics struct {
	VisiblePolygons  int
	TotalPolygons    int
	Depth            int
	Zoom             float64
	FPS              float64
	BudgetUtilization float64
}

// Engine orchestrates one loaded Document's render-time state: the
// Batcher (and the Spatial Index it owns), the LOD Controller, the
// Viewport, per-session layer overrides, the FPS counter, and the
// Minimap. All mutation happens on the single cooperative thread that
// calls into Engine, per spec.md §5.
type Engine struct {
	doc     *model.Document
	cfg     Config
	logger  Logger
	batcher *batch.Batcher
	lodCtl  *lod.Controller
	clock   *adaptiveClock
	fps     overlay.FPSCounter

	visibility model.LayerVisibility
	colors     model.LayerColors

	minimapOnNavigate func(x, y float64)
	showGrid          bool

	lastMetrics Metrics
}

// Load parses data (GDSII by default; DXF if filename ends in .dxf) into
// a Document and returns it along with load statistics and warnings,
// per spec.md §6's external interface and §5's cooperative contract.
func Load(ctx context.Context, data []byte, filename string, cfg Config, on ProgressFunc) (*model.Document, *Statistics, []xerrors.Warning, error) {
	var doc *model.Document
	var warnings []xerrors.Warning
	var err error

	if isDXF(filename) {
		doc, warnings, err = dxf.Parse(data, filename)
		if err != nil {
			return nil, nil, nil, err
		}
		// dxf.Parse has no internal cancellation support, so this is the
		// only point at which a canceled DXF load can be caught.
		select {
		case <-ctx.Done():
			return nil, nil, nil, &xerrors.LoadCanceled{}
		default:
		}
	} else {
		doc, warnings, err = builder.Build(ctx, data, filename, func(percent int, message string) {
			if on != nil {
				on(percent, message)
			}
		})
		if err != nil {
			return nil, nil, nil, err
		}
	}

	stats := &Statistics{
		CellCount:  len(doc.Cells),
		LayerCount: len(doc.Layers),
		Bounds:     model.AABBToFloat(doc.Bounds),
	}
	for _, cell := range doc.Cells {
		stats.PolygonCount += len(cell.Polygons)
	}
	return doc, stats, warnings, nil
}

func isDXF(filename string) bool {
	n := len(filename)
	return n >= 4 && (filename[n-4:] == ".dxf" || filename[n-4:] == ".DXF")
}

// New builds an Engine around a loaded Document, performing the initial
// Batcher/Spatial Index build at depth 0. If that build exceeds the
// configured polygon budget, the resulting PolygonBudgetExhausted
// condition is surfaced through on as well as logged, per spec.md §7.
func New(doc *model.Document, cfg Config, on ProgressFunc) *Engine {
	e := &Engine{
		doc:        doc,
		cfg:        cfg,
		logger:     NoopLogger(),
		batcher:    batch.New(doc, cfg.PolygonBudget),
		lodCtl:     lod.New(cfg.PolygonBudget),
		clock:      newAdaptiveClock(),
		visibility: make(model.LayerVisibility),
		colors:     make(model.LayerColors),
		showGrid:   true,
	}
	stats := e.batcher.Rebuild(e.lodCtl.Depth())
	e.reportBudgetExhaustion(stats, on)
	return e
}

// reportBudgetExhaustion logs and, if on is non-nil, reports a
// PolygonBudgetExhausted condition through the progress callback, per
// spec.md §7 ("surfaced via progress callback").
func (e *Engine) reportBudgetExhaustion(stats batch.Stats, on ProgressFunc) {
	if !stats.BudgetExhausted {
		return
	}
	e.logger.Warnf("polygon budget exhausted at cell %s", stats.TruncatedAtCell)
	if on != nil {
		err := &xerrors.PolygonBudgetExhausted{Budget: e.cfg.PolygonBudget, Emitted: stats.TotalPolygons}
		on(100, err.Error())
	}
}

// SetLogger installs a structured-logging backend; the default is a
// no-op (SPEC_FULL.md §9).
func (e *Engine) SetLogger(l Logger) {
	if l != nil {
		e.logger = l
	}
}

// Render performs spec.md §4.7's per-change sequence: cull against the
// viewport, update the LOD Controller, possibly commit a depth change
// and rebuild the Batcher, then submit visible batches to a draw list.
func (e *Engine) Render(ctx context.Context, vp *viewport.Viewport, layers model.LayerVisibility, on ProgressFunc) drawlist.List {
	select {
	case <-ctx.Done():
		return drawlist.NewImage(1, 1)
	default:
	}

	window := vp.Bounds()
	visible := e.batcher.Cull(window, layers)
	visiblePolygons := batch.VisiblePolygonCount(visible)

	dt := e.clock.Tick()
	e.lodCtl.Sample(visiblePolygons, vp.Zoom(), dt)
	if newDepth, committed := e.lodCtl.MaybeCommit(vp.Zoom(), func(percent int, message string) {
		if on != nil {
			on(percent, message)
		}
	}); committed {
		e.logger.Debugf("LOD commit: depth=%d", newDepth)
		rebuildStats := e.batcher.Rebuild(newDepth)
		e.reportBudgetExhaustion(rebuildStats, on)
		window = vp.Bounds()
		visible = e.batcher.Cull(window, layers)
		visiblePolygons = batch.VisiblePolygonCount(visible)
	}

	w, h := vp.ScreenSize()
	out := drawlist.NewImage(maxInt(1, int(w)), maxInt(1, int(h)))
	e.submit(out, vp, visible)

	stats := e.batcher.Stats()
	util := 0.0
	if e.cfg.PolygonBudget > 0 {
		// Based on emitted polygons rather than culled-visible count, so
		// that budget_utilization >= 1.0 holds whenever the budget was
		// exhausted even if the current viewport shows only a fraction
		// of them, per spec.md §7.
		util = float64(stats.TotalPolygons) / float64(e.cfg.PolygonBudget)
	}
	e.lastMetrics = Metrics{
		VisiblePolygons:   visiblePolygons,
		TotalPolygons:     stats.TotalPolygons,
		Depth:             e.lodCtl.Depth(),
		Zoom:              vp.Zoom(),
		FPS:               e.fps.Tick(dt),
		BudgetUtilization: util,
	}
	return out
}

// SubmitTo renders the currently-visible batches into a caller-provided
// draw list — e.g. a real GPU-backed drawlist.List — instead of the
// placeholder Render allocates, for hosts that already called Render
// once this frame purely to update culling/LOD state.
func (e *Engine) SubmitTo(out drawlist.List, vp *viewport.Viewport) {
	window := vp.Bounds()
	visible := e.batcher.Cull(window, e.visibility)
	e.submit(out, vp, visible)
}

func (e *Engine) submit(out drawlist.List, vp *viewport.Viewport, visible []*batch.Batch) {
	out.Clear(color.RGBA{A: 255})
	if e.showGrid {
		e.drawGrid(out, vp)
	}
	for _, b := range visible {
		for _, poly := range b.Polygons {
			screen := make([]model.Pointf, len(poly.Points))
			for i, p := range poly.Points {
				w := b.Transform.Apply(model.Pointf{X: float64(p.X), Y: float64(p.Y)})
				screen[i] = vp.WorldToScreen(w)
			}
			out.FillPolygon(screen, e.colors.Color(e.doc, b.Layer))
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (e *Engine) drawGrid(out drawlist.List, vp *viewport.Viewport) {
	bounds := vp.Bounds()
	spacing := overlay.GridSpacing(bounds.MaxX - bounds.MinX)
	if spacing <= 0 {
		return
	}
	gridColor := color.RGBA{R: 128, G: 128, B: 128, A: uint8(overlay.GridAlpha * 255)}
	startX := float64(int64(bounds.MinX/spacing)) * spacing
	for x := startX; x <= bounds.MaxX; x += spacing {
		a := vp.WorldToScreen(model.Pointf{X: x, Y: bounds.MinY})
		b := vp.WorldToScreen(model.Pointf{X: x, Y: bounds.MaxY})
		out.Stroke([]model.Pointf{a, b}, gridColor, 1)
	}
	startY := float64(int64(bounds.MinY/spacing)) * spacing
	for y := startY; y <= bounds.MaxY; y += spacing {
		a := vp.WorldToScreen(model.Pointf{X: bounds.MinX, Y: y})
		b := vp.WorldToScreen(model.Pointf{X: bounds.MaxX, Y: y})
		out.Stroke([]model.Pointf{a, b}, gridColor, 1)
	}
}

// ViewportBounds returns the world-space AABB the viewport currently
// covers, per spec.md §6's external interface.
func (e *Engine) ViewportBounds(vp *viewport.Viewport) model.AABBf { return vp.Bounds() }

// Metrics returns the telemetry from the most recent Render call.
func (e *Engine) Metrics() Metrics { return e.lastMetrics }

// HitTest resolves a world-space click into the batch IDs near it,
// within tolerance DBU, per spec.md §4.4's point query and §6's external
// interface.
func (e *Engine) HitTest(p model.Pointf, tolerance float64) []spatial.ItemID {
	return e.batcher.Index().QueryPoint(p.X, p.Y, tolerance)
}

// Document exposes the loaded, mostly-immutable Document.
func (e *Engine) Document() *model.Document { return e.doc }

// Pan translates vp by (dx, dy) screen pixels, per spec.md §4.9.
func (e *Engine) Pan(vp *viewport.Viewport, dx, dy float64) { vp.Pan(dx, dy) }

// ZoomAt zooms vp by factor about screen point (x, y), per spec.md §4.9.
func (e *Engine) ZoomAt(vp *viewport.Viewport, x, y, factor float64) { vp.ZoomAt(x, y, factor) }

// FitToView fits vp to the Document's bounds, per spec.md §4.9's fit().
func (e *Engine) FitToView(vp *viewport.Viewport) {
	vp.Fit(model.AABBToFloat(e.doc.Bounds))
}

// SetLayerVisible overrides one layer's visibility for this session,
// per spec.md design note 9 ("per-session state is explicit"). The
// override is kept on the Engine for convenience (SubmitTo and the
// Minimap use it); Render takes its own layers argument so a host may
// instead manage visibility itself and pass it in directly.
func (e *Engine) SetLayerVisible(key model.LayerKey, visible bool) {
	e.visibility[key] = visible
}

// Visibility returns the Engine's own session-local visibility
// overrides, suitable for passing straight into Render.
func (e *Engine) Visibility() model.LayerVisibility { return e.visibility }

// SetLayerColor overrides one layer's display color for this session.
func (e *Engine) SetLayerColor(key model.LayerKey, c color.RGBA) {
	e.colors[key] = c
}

// ToggleGrid flips the background grid overlay on or off.
func (e *Engine) ToggleGrid() { e.showGrid = !e.showGrid }

// NewMinimap builds a Minimap for the loaded Document using the
// Engine's configured size.
func (e *Engine) NewMinimap() *minimap.Minimap {
	return minimap.New(e.doc, e.cfg.MinimapSize, e.cfg.MinimapSize)
}

// OnNavigate registers the callback the Minimap's click handler invokes
// with a centerOn(x, y) world point, per spec.md §4.10.
func (e *Engine) OnNavigate(fn func(x, y float64)) { e.minimapOnNavigate = fn }

// NavigateFromMinimapClick converts a minimap click and, if a navigate
// handler is registered, invokes it with the resulting world point.
func (e *Engine) NavigateFromMinimapClick(m *minimap.Minimap, sx, sy float64) {
	x, y := m.HitTest(sx, sy)
	if e.minimapOnNavigate != nil {
		e.minimapOnNavigate(x, y)
	}
}
