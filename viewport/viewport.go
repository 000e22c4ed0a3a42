// Package viewport holds the world<->screen transform and the small
// command set the Input Controller maps device events into, per spec.md
// §4.7/§4.9. The mutable-state-behind-a-mutex shape, and Version()-style
// change counter, follow the teacher's (kjkrol-gokx) pkg/gfx/viewport.go,
// generalized from its integer pan-and-wrap viewport to the signed,
// Y-flipped, continuously-zoomable one this spec needs.
package viewport

import (
	"math"
	"sync"

	"github.com/foldscope/gdsview/internal/xerrors"
	"github.com/foldscope/gdsview/model"
)

const (
	zoomInFactor  = 1.1
	zoomOutFactor = 0.9

	// Scale-bar range: 1 nm to 1 m expressed in DBU-per-screen-pixel scale
	// bounds, per spec.md §4.7 ("zoom is clamped to a range corresponding
	// to scale-bar labels from 1 nm to 1 m").
	minScale = 1e-6
	maxScale = 1e6
)

// Viewport holds the current world-to-screen transform: p_screen =
// (p_world - T) * S, with S.Y negative (Y-up world, Y-down screen), per
// spec.md §4.7.
type Viewport struct {
	mu sync.RWMutex

	tx, ty   float64
	sx, sy   float64
	screenW  float64
	screenH  float64
	version  uint64

	invalid []*xerrors.InvalidViewport
}

// New creates a viewport over a screenW x screenH canvas, initially at
// the identity scale with Y flipped.
func New(screenW, screenH float64) *Viewport {
	return &Viewport{tx: 0, ty: 0, sx: 1, sy: -1, screenW: screenW, screenH: screenH}
}

// Version increases on every state change; callers can use it to decide
// whether a re-cull is needed.
func (v *Viewport) Version() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.version
}

// ScreenSize returns the canvas dimensions in logical pixels.
func (v *Viewport) ScreenSize() (w, h float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.screenW, v.screenH
}

// Resize updates the screen canvas size (e.g. on a window resize).
func (v *Viewport) Resize(w, h float64) {
	v.mu.Lock()
	v.screenW, v.screenH = w, h
	v.version++
	v.mu.Unlock()
}

// WorldToScreen maps a world point to screen space.
func (v *Viewport) WorldToScreen(p model.Pointf) model.Pointf {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return model.Pointf{X: (p.X - v.tx) * v.sx, Y: (p.Y - v.ty) * v.sy}
}

// ScreenToWorld maps a screen point back to world space.
func (v *Viewport) ScreenToWorld(p model.Pointf) model.Pointf {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return model.Pointf{X: p.X/v.sx + v.tx, Y: p.Y/v.sy + v.ty}
}

// Bounds returns the viewport's AABB in world coordinates (spec.md §4.7
// step 1), used to query the Spatial Index for culling.
func (v *Viewport) Bounds() model.AABBf {
	v.mu.RLock()
	defer v.mu.RUnlock()
	corners := [4]model.Pointf{
		{X: 0, Y: 0}, {X: v.screenW, Y: 0}, {X: 0, Y: v.screenH}, {X: v.screenW, Y: v.screenH},
	}
	out := model.EmptyAABBf()
	for _, c := range corners {
		w := model.Pointf{X: c.X/v.sx + v.tx, Y: c.Y/v.sy + v.ty}
		out = model.UnionAABBf(out, model.AABBf{MinX: w.X, MinY: w.Y, MaxX: w.X, MaxY: w.Y})
	}
	return out
}

// Zoom returns the current absolute magnitude of the horizontal scale,
// used by the LOD Controller's zoom-threshold test.
func (v *Viewport) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.sx < 0 {
		return -v.sx
	}
	return v.sx
}

// Pan translates the viewport by (dx, dy) in screen pixels. A NaN or
// infinite delta leaves the viewport at its last valid state and is
// counted as an InvalidViewport condition, per spec.md §7.
func (v *Viewport) Pan(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !validScalar(dx) || !validScalar(dy) {
		v.recordInvalid("NaN or infinite pan delta")
		return
	}
	v.tx -= dx / v.sx
	v.ty -= dy / v.sy
	v.version++
}

// ZoomAt zooms by factor about the screen point c, per spec.md §4.7:
// S <- S*k (clamped), then T is recomputed so the world point under c
// stays under c. A NaN, infinite, or
// zero factor or cursor position — or a result that would produce a NaN
// or zero scale — leaves the viewport at its last valid state and is
// counted as an InvalidViewport condition, per spec.md §7.
func (v *Viewport) ZoomAt(cx, cy, factor float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !validScalar(cx) || !validScalar(cy) || !validScalar(factor) || factor == 0 {
		v.recordInvalid("NaN, infinite, or zero zoom input")
		return
	}
	worldCX := cx/v.sx + v.tx
	worldCY := cy/v.sy + v.ty
	newSx := clampScale(v.sx * factor)
	newSy := clampScaleSigned(v.sy * factor)
	if !validScalar(newSx) || !validScalar(newSy) || newSx == 0 || newSy == 0 {
		v.recordInvalid("NaN or zero-scale zoom result")
		return
	}
	v.sx = newSx
	v.sy = newSy
	v.tx = worldCX - cx/v.sx
	v.ty = worldCY - cy/v.sy
	v.version++
}

// validScalar reports whether f is usable as viewport state: not NaN and
// not infinite.
func validScalar(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// recordInvalid accumulates an InvalidViewport condition for a host to
// drain via InvalidEvents; callers must hold v.mu.
func (v *Viewport) recordInvalid(reason string) {
	v.invalid = append(v.invalid, &xerrors.InvalidViewport{Reason: reason})
}

// InvalidEvents drains and returns every InvalidViewport condition
// recorded since the last call, per spec.md §7's "counted."
func (v *Viewport) InvalidEvents() []*xerrors.InvalidViewport {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.invalid
	v.invalid = nil
	return out
}

func clampScale(s float64) float64 {
	abs := s
	if abs < 0 {
		abs = -abs
	}
	if abs < minScale {
		abs = minScale
	}
	if abs > maxScale {
		abs = maxScale
	}
	if s < 0 {
		return -abs
	}
	return abs
}

func clampScaleSigned(s float64) float64 {
	// sy is always negative (Y-up world, Y-down screen); preserve sign.
	v := clampScale(s)
	if v > 0 {
		return -v
	}
	return v
}

// ZoomIn/ZoomOut apply the standard 1.1/0.9 wheel factors about the
// screen center, per spec.md §4.9's Enter/Shift+Enter keyboard commands.
func (v *Viewport) ZoomIn()  { v.ZoomAt(v.centerX(), v.centerY(), zoomInFactor) }
func (v *Viewport) ZoomOut() { v.ZoomAt(v.centerX(), v.centerY(), zoomOutFactor) }

func (v *Viewport) centerX() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.screenW / 2
}

func (v *Viewport) centerY() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.screenH / 2
}

// Fit centers and scales the viewport so world AABB b fills the screen
// with a small margin, per spec.md §4.9's `fit()` command. NaN or
// infinite bounds, or a result that would produce a NaN or zero scale,
// leave the viewport at its last valid state and are counted as an
// InvalidViewport condition, per spec.md §7.
func (v *Viewport) Fit(b model.AABBf) {
	if model.IsEmptyf(b) {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if !validScalar(b.MinX) || !validScalar(b.MinY) || !validScalar(b.MaxX) || !validScalar(b.MaxY) {
		v.recordInvalid("NaN or infinite fit bounds")
		return
	}
	const margin = 0.9
	w := b.MaxX - b.MinX
	h := b.MaxY - b.MinY
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	scale := clampScale(margin * minFloat(v.screenW/w, v.screenH/h))
	if !validScalar(scale) || scale == 0 {
		v.recordInvalid("NaN or zero-scale fit result")
		return
	}
	v.sx = scale
	v.sy = -scale
	cx := (b.MinX + b.MaxX) / 2
	cy := (b.MinY + b.MaxY) / 2
	v.tx = cx - v.screenW/2/v.sx
	v.ty = cy - v.screenH/2/v.sy
	v.version++
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
