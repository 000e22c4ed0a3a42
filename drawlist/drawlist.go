// Package drawlist defines the opaque batched draw-list interface the
// core emits to (the GPU device/context itself is out of scope, per
// spec.md §6/§1) and a CPU reference implementation used by tests and by
// headless hosts (e.g. the demo CLI) that have no GPU to hand off to.
// The reference rasterizer's even-odd scanline fill and Bresenham stroke
// are adapted from the teacher's (kjkrol-gokx) pkg/gfx/drawable.go
// fillPolygonSurface/bresenhamLine, generalized from integer
// geom.Vec[int]/image.Point AABB rectangles to arbitrary float polygons
// built from model.Pointf.
package drawlist

import (
	"image"
	"image/color"
	"sort"

	"github.com/foldscope/gdsview/model"
)

// List is the batched draw-list abstraction spec.md §6 describes: a
// sequence of filled polygons and strokes, submitted once per frame.
// Concrete GPU-backed implementations live outside this module; Image is
// the in-module CPU reference used for tests and headless rendering.
type List interface {
	FillPolygon(points []model.Pointf, fill color.RGBA)
	Stroke(points []model.Pointf, stroke color.RGBA, width float64)
	Clear(background color.RGBA)
}

// filledPolygon and strokedPolyline are the two draw-list entry kinds.
type filledPolygon struct {
	points []model.Pointf
	fill   color.RGBA
}

type strokedPolyline struct {
	points []model.Pointf
	stroke color.RGBA
	width  float64
}

// Recorder accumulates draw calls without rasterizing them, for tests
// that only need to assert on submitted entries, and for a GPU backend
// to replay later.
type Recorder struct {
	Fills   []filledPolygon
	Strokes []strokedPolyline
	Cleared bool
	Background color.RGBA
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) FillPolygon(points []model.Pointf, fill color.RGBA) {
	r.Fills = append(r.Fills, filledPolygon{points: append([]model.Pointf(nil), points...), fill: fill})
}

func (r *Recorder) Stroke(points []model.Pointf, stroke color.RGBA, width float64) {
	r.Strokes = append(r.Strokes, strokedPolyline{points: append([]model.Pointf(nil), points...), stroke: stroke, width: width})
}

func (r *Recorder) Clear(background color.RGBA) {
	r.Cleared = true
	r.Background = background
	r.Fills = nil
	r.Strokes = nil
}

// Image is a CPU-rasterized List backed by an image.RGBA, used by
// headless hosts and golden-pixel tests.
type Image struct {
	img *image.RGBA
}

// NewImage allocates a w x h CPU drawlist target.
func NewImage(w, h int) *Image {
	return &Image{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Pixels exposes the backing image for inspection.
func (im *Image) Pixels() *image.RGBA { return im.img }

func (im *Image) Clear(background color.RGBA) {
	bounds := im.img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			im.img.SetRGBA(x, y, background)
		}
	}
}

// FillPolygon rasterizes points with an even-odd scanline fill, the
// float analogue of the teacher's fillPolygonSurface.
func (im *Image) FillPolygon(points []model.Pointf, fill color.RGBA) {
	if len(points) < 3 {
		return
	}
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	bounds := im.img.Bounds()
	startY := maxInt(bounds.Min.Y, int(minY))
	endY := minInt(bounds.Max.Y-1, int(maxY))

	xs := make([]float64, len(points))
	for y := startY; y <= endY; y++ {
		fy := float64(y) + 0.5
		count := 0
		for i := 0; i < len(points); i++ {
			p1 := points[i]
			p2 := points[(i+1)%len(points)]
			if (p1.Y <= fy && p2.Y > fy) || (p1.Y > fy && p2.Y <= fy) {
				x := p1.X + (fy-p1.Y)*(p2.X-p1.X)/(p2.Y-p1.Y)
				xs[count] = x
				count++
			}
		}
		sort.Float64s(xs[:count])
		for i := 0; i+1 < count; i += 2 {
			startX := maxInt(bounds.Min.X, int(xs[i]+0.5))
			endX := minInt(bounds.Max.X-1, int(xs[i+1]-0.5))
			for x := startX; x <= endX; x++ {
				im.img.SetRGBA(x, y, fill)
			}
		}
	}
}

// Stroke draws a polyline (not implicitly closed) as a sequence of
// Bresenham line segments at integer pixel width.
func (im *Image) Stroke(points []model.Pointf, stroke color.RGBA, width float64) {
	for i := 0; i+1 < len(points); i++ {
		drawLine(im.img, points[i], points[i+1], stroke)
	}
}

func drawLine(img *image.RGBA, start, end model.Pointf, col color.RGBA) {
	x0, y0 := int(start.X), int(start.Y)
	x1, y1 := int(end.X), int(end.Y)
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy
	bounds := img.Bounds()
	for {
		if x0 >= bounds.Min.X && x0 < bounds.Max.X && y0 >= bounds.Min.Y && y0 < bounds.Max.Y {
			img.SetRGBA(x0, y0, col)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
