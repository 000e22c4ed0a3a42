// Package lod implements the Level-of-Detail Controller spec.md §4.6
// describes: it watches recent visible-polygon counts and zoom and
// decides, with hysteresis, when the Batcher should re-traverse the
// Document at a different recursion depth. The exponential-moving-average
// plus minimum-elapsed-time commit gate mirrors the adaptive-timeout
// idiom in the teacher's (kjkrol-gokx) pkg/gfx/render_updater.go, which
// throttles render-loop decisions against a wall-clock budget rather than
// reacting to every single sample.
package lod

const (
	// MaxDepth is D_max from spec.md §4.6.
	MaxDepth = 10

	growThreshold   = 0.30
	shrinkThreshold = 0.90
	emaWeight       = 0.1

	minCommitInterval   = 1.0 // seconds
	zoomOutThresholdMul = 0.2
	zoomInThresholdMul  = 2.0
)

// ProgressFunc reports the "Adjusting level of detail" indicator spec.md
// §4.6 requires on commit.
type ProgressFunc func(percent int, message string)

// Controller owns the current depth and the state needed to decide when
// to change it.
type Controller struct {
	depth             int
	avgVisible        float64
	budget            int
	zoomAtLastCommit  float64
	secondsSinceCommit float64
	haveCommitted     bool
}

// New starts a controller at depth 0 with the given polygon budget
// (matching the Batcher's budget so the utilization ratio is meaningful).
func New(budget int) *Controller {
	if budget <= 0 {
		budget = 100000
	}
	return &Controller{budget: budget}
}

// Depth returns the currently committed depth.
func (c *Controller) Depth() int { return c.depth }

// Sample folds one window-query result into the controller's moving
// average, per spec.md §4.6 ("invoked after each window query"). dt is
// the elapsed time in seconds since the previous Sample call, used to
// advance the minimum-commit-interval clock.
func (c *Controller) Sample(visiblePolygonCount int, zoom float64, dt float64) {
	c.secondsSinceCommit += dt
	c.avgVisible = (1-emaWeight)*c.avgVisible + emaWeight*float64(visiblePolygonCount)
	if !c.haveCommitted {
		c.zoomAtLastCommit = zoom
		c.haveCommitted = true
	}
}

// Candidate computes the depth a commit would move to, without
// committing, per spec.md §4.6's policy step.
func (c *Controller) Candidate() int {
	util := c.utilization()
	switch {
	case util < growThreshold && c.depth < MaxDepth:
		return c.depth + 1
	case util > shrinkThreshold && c.depth > 0:
		return c.depth - 1
	default:
		return c.depth
	}
}

func (c *Controller) utilization() float64 {
	if c.budget <= 0 {
		return 0
	}
	return c.avgVisible / float64(c.budget)
}

// MaybeCommit evaluates the commit gate — at least one second elapsed
// since the last commit AND the zoom has crossed a 0.2x/2x threshold
// relative to the zoom at that commit — and, if both hold and the
// candidate depth differs from the current one, commits it and invokes
// on with the "Adjusting level of detail" message. It returns the
// (possibly unchanged) depth and whether a commit occurred.
func (c *Controller) MaybeCommit(zoom float64, on ProgressFunc) (depth int, committed bool) {
	candidate := c.Candidate()
	if candidate == c.depth {
		return c.depth, false
	}
	if c.secondsSinceCommit < minCommitInterval {
		return c.depth, false
	}
	if !c.zoomCrossedThreshold(zoom) {
		return c.depth, false
	}

	c.depth = candidate
	c.zoomAtLastCommit = zoom
	c.secondsSinceCommit = 0
	if on != nil {
		on(0, "Adjusting level of detail")
	}
	return c.depth, true
}

func (c *Controller) zoomCrossedThreshold(zoom float64) bool {
	if c.zoomAtLastCommit == 0 {
		return true
	}
	return zoom < zoomOutThresholdMul*c.zoomAtLastCommit || zoom > zoomInThresholdMul*c.zoomAtLastCommit
}
