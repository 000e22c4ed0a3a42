// Package engine wires the parser, geometry model, spatial index,
// batcher, LOD controller, viewport, and overlays into the handful of
// entry points a host (a UI shell, a CLI demo) calls: Load, Render,
// ViewportBounds, Metrics, HitTest, and the pan/zoom/layer command
// methods, per spec.md §6. Config is the construction-time struct design
// note 9 requires ("Configuration... is a construction-time struct"),
// loadable from the environment via envconfig the way the teacher's own
// config structs are loaded by 17twenty-inamate-style hosts in the
// retrieval pack.
package engine

// Config holds the Engine's construction-time settings. Engine reads
// PolygonBudget (the Batcher's and LOD Controller's global polygon
// budget, §4.5) and MinimapSize. FPSUpdateIntervalMs, GridTargetLines and
// HitTestTolerance are loaded but not read by Engine: the FPS counter and
// the grid use the overlay package's fixed 500 ms interval and 10-line
// target, and HitTest takes its tolerance as an argument. LOD thresholds
// are fixed by spec.md §4.6 and are not exposed here, since changing them
// would change the documented hysteresis behavior.
type Config struct {
	PolygonBudget       int     `envconfig:"POLYGON_BUDGET" default:"100000"`
	FPSUpdateIntervalMs int     `envconfig:"FPS_UPDATE_INTERVAL_MS" default:"500"`
	GridTargetLines     int     `envconfig:"GRID_TARGET_LINES" default:"10"`
	MinimapSize         float64 `envconfig:"MINIMAP_SIZE" default:"200"`
	HitTestTolerance    float64 `envconfig:"HIT_TEST_TOLERANCE_DBU" default:"2"`
}

// DefaultConfig returns spec.md's documented defaults without touching
// the environment; hosts that don't need envconfig can use this.
func DefaultConfig() Config {
	return Config{
		PolygonBudget:       100000,
		FPSUpdateIntervalMs: 500,
		GridTargetLines:     10,
		MinimapSize:         200,
		HitTestTolerance:    2,
	}
}
