// Package overlay computes the small set of auxiliary displays spec.md
// §4.8 describes: background grid spacing, the scale bar's round-number
// selection, periodically-refreshed FPS/memory metrics, and the pointer
// coordinate readout. These are pure functions of viewport state rather
// than stateful teacher drawables, except the FPS counter, which carries
// a running accumulator the way the teacher's frame-rate bookkeeping in
// pkg/gfx/render_updater.go accumulates frame timestamps between reports.
package overlay

import (
	"math"
	"strconv"
)

const gridTargetLines = 10

// GridSpacing returns the world-space spacing between grid lines so that
// roughly gridTargetLines lines span viewportWidth, per spec.md §4.8:
// 10^floor(log10(viewport_width / target_lines)).
func GridSpacing(viewportWidth float64) float64 {
	if viewportWidth <= 0 {
		return 1
	}
	return math.Pow(10, math.Floor(math.Log10(viewportWidth/gridTargetLines)))
}

// GridAlpha is the fixed opacity spec.md §4.8 draws the grid at.
const GridAlpha = 0.3

// roundSteps are the "round number" magnitudes a scale bar may snap to
// within one decade, per spec.md §4.8.
var roundSteps = []float64{1, 2, 5}

// ScaleBarLength chooses a round length in the same units as
// viewportWidthWorld such that the bar is roughly one quarter of the
// viewport width, per spec.md §4.8.
func ScaleBarLength(viewportWidthWorld float64) float64 {
	if viewportWidthWorld <= 0 {
		return 0
	}
	target := viewportWidthWorld / 4
	decade := math.Pow(10, math.Floor(math.Log10(target)))
	best := decade
	bestDiff := math.Abs(target - decade)
	for _, step := range roundSteps {
		candidate := step * decade
		if diff := math.Abs(target - candidate); diff < bestDiff {
			best, bestDiff = candidate, diff
		}
	}
	return best
}

// ScaleBarLabel formats lengthMeters with the nm/µm/mm unit spec.md §4.8
// says to pick based on magnitude.
func ScaleBarLabel(lengthMeters float64) string {
	switch {
	case lengthMeters < 1e-6:
		return formatUnit(lengthMeters*1e9, "nm")
	case lengthMeters < 1e-3:
		return formatUnit(lengthMeters*1e6, "µm")
	default:
		return formatUnit(lengthMeters*1e3, "mm")
	}
}

func formatUnit(value float64, unit string) string {
	return trimTrailingZeros(value) + " " + unit
}

func trimTrailingZeros(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Metrics is the periodically-refreshed overlay data spec.md §4.8/§4.7
// describes: visible/total polygon counts, depth, zoom, FPS, and
// optional memory use.
type Metrics struct {
	VisiblePolygons int
	TotalPolygons   int
	Depth           int
	Zoom            float64
	FPS             float64
	MemoryBytes     uint64
	HaveMemory      bool
}

// FPSCounterUpdateInterval is the refresh cadence spec.md §4.8 names.
const FPSCounterUpdateInterval = 0.5 // seconds

// FPSCounter accumulates frame timestamps and reports a smoothed FPS
// value every FPSCounterUpdateInterval seconds.
type FPSCounter struct {
	framesSinceReport int
	secondsSinceReport float64
	lastFPS           float64
}

// Tick records one rendered frame of duration dt seconds, returning the
// most recently computed FPS value (unchanged until the update interval
// elapses).
func (c *FPSCounter) Tick(dt float64) float64 {
	c.framesSinceReport++
	c.secondsSinceReport += dt
	if c.secondsSinceReport >= FPSCounterUpdateInterval {
		c.lastFPS = float64(c.framesSinceReport) / c.secondsSinceReport
		c.framesSinceReport = 0
		c.secondsSinceReport = 0
	}
	return c.lastFPS
}

// CoordinateReadout converts a world-space DBU point into a microns
// label, per spec.md §4.8's "displays it in µm".
func CoordinateReadout(xDBU, yDBU float64, metersPerDBU float64) string {
	xUm := xDBU * metersPerDBU * 1e6
	yUm := yDBU * metersPerDBU * 1e6
	return "(" + trimTrailingZeros(xUm) + ", " + trimTrailingZeros(yUm) + ") µm"
}
