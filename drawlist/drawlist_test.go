package drawlist

import (
	"image/color"
	"testing"

	"github.com/foldscope/gdsview/model"
)

func TestRecorderCapturesSubmittedEntries(t *testing.T) {
	r := NewRecorder()
	sq := []model.Pointf{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	r.FillPolygon(sq, color.RGBA{R: 255, A: 255})
	r.Stroke(sq, color.RGBA{B: 255, A: 255}, 1)

	if len(r.Fills) != 1 || len(r.Strokes) != 1 {
		t.Fatalf("fills=%d strokes=%d, want 1/1", len(r.Fills), len(r.Strokes))
	}
}

func TestImageFillPolygonColorsInterior(t *testing.T) {
	im := NewImage(20, 20)
	im.Clear(color.RGBA{A: 255})
	sq := []model.Pointf{{X: 5, Y: 5}, {X: 15, Y: 5}, {X: 15, Y: 15}, {X: 5, Y: 15}}
	fill := color.RGBA{R: 200, G: 50, B: 50, A: 255}
	im.FillPolygon(sq, fill)

	got := im.Pixels().RGBAAt(10, 10)
	if got != fill {
		t.Fatalf("center pixel = %+v, want %+v", got, fill)
	}
	outside := im.Pixels().RGBAAt(1, 1)
	if outside == fill {
		t.Fatal("pixel outside the polygon should not be filled")
	}
}

func TestImageStrokeDrawsLine(t *testing.T) {
	im := NewImage(20, 20)
	im.Clear(color.RGBA{A: 255})
	stroke := color.RGBA{R: 255, A: 255}
	im.Stroke([]model.Pointf{{X: 0, Y: 0}, {X: 10, Y: 0}}, stroke, 1)

	if got := im.Pixels().RGBAAt(5, 0); got != stroke {
		t.Fatalf("pixel on the line = %+v, want %+v", got, stroke)
	}
}

func TestImageClearFillsBackground(t *testing.T) {
	im := NewImage(4, 4)
	bg := color.RGBA{B: 255, A: 255}
	im.Clear(bg)
	if got := im.Pixels().RGBAAt(2, 2); got != bg {
		t.Fatalf("background pixel = %+v, want %+v", got, bg)
	}
}
