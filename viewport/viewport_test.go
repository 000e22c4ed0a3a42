package viewport

import (
	"math"
	"testing"

	"github.com/foldscope/gdsview/model"
)

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestWorldToScreenRoundTrip(t *testing.T) {
	v := New(800, 600)
	p := model.Pointf{X: 123.5, Y: -45.25}
	screen := v.WorldToScreen(p)
	back := v.ScreenToWorld(screen)
	if !approxEqual(back.X, p.X) || !approxEqual(back.Y, p.Y) {
		t.Fatalf("round trip = %+v, want %+v", back, p)
	}
}

func TestYIsFlipped(t *testing.T) {
	v := New(800, 600)
	a := v.WorldToScreen(model.Pointf{X: 0, Y: 0})
	b := v.WorldToScreen(model.Pointf{X: 0, Y: 10})
	if !(b.Y < a.Y) {
		t.Fatalf("increasing world Y should decrease screen Y: a=%v b=%v", a, b)
	}
}

func TestPanMovesWorldOrigin(t *testing.T) {
	v := New(800, 600)
	before := v.ScreenToWorld(model.Pointf{X: 400, Y: 300})
	v.Pan(10, 0)
	after := v.ScreenToWorld(model.Pointf{X: 400, Y: 300})
	if approxEqual(before.X, after.X) {
		t.Fatal("expected panning to move the world point under the screen center")
	}
}

func TestZoomAtKeepsCursorWorldPointFixed(t *testing.T) {
	v := New(800, 600)
	cursor := model.Pointf{X: 200, Y: 150}
	before := v.ScreenToWorld(cursor)
	v.ZoomAt(cursor.X, cursor.Y, 1.1)
	after := v.ScreenToWorld(cursor)
	if !approxEqual(before.X, after.X) || !approxEqual(before.Y, after.Y) {
		t.Fatalf("zoom-at-cursor should not move the point under the cursor: before=%+v after=%+v", before, after)
	}
}

func TestZoomClampsToScaleBarRange(t *testing.T) {
	v := New(800, 600)
	for i := 0; i < 200; i++ {
		v.ZoomAt(400, 300, 1.1)
	}
	if v.Zoom() > maxScale {
		t.Fatalf("zoom = %v exceeds max scale %v", v.Zoom(), maxScale)
	}
}

func TestFitCentersAndScalesToBounds(t *testing.T) {
	v := New(800, 600)
	b := model.AABBf{MinX: 0, MinY: 0, MaxX: 1000, MaxY: 1000}
	v.Fit(b)
	bounds := v.Bounds()
	if bounds.MinX > 0 || bounds.MaxX < 1000 || bounds.MinY > 0 || bounds.MaxY < 1000 {
		t.Fatalf("fitted viewport bounds %+v do not contain target box %+v", bounds, b)
	}
}

func TestTranslateMouseWheelZoomsAtCursor(t *testing.T) {
	cmd, ok := Translate(MouseWheel{DeltaY: 1, X: 50, Y: 60}, 800, 600)
	if !ok || cmd.Kind != CommandZoomAt || cmd.Factor != wheelZoomIn {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestTranslateKeyboardPanUsesViewportFraction(t *testing.T) {
	cmd, ok := Translate(KeyPress{Key: "ArrowRight"}, 800, 600)
	if !ok || cmd.Kind != CommandPan {
		t.Fatalf("cmd = %+v", cmd)
	}
	if cmd.DX != -keyboardPanFraction*800 {
		t.Fatalf("DX = %v, want %v", cmd.DX, -keyboardPanFraction*800)
	}
}

func TestTranslateShiftEnterZoomsOut(t *testing.T) {
	cmd, ok := Translate(KeyPress{Key: "Enter", Shift: true}, 800, 600)
	if !ok || cmd.Kind != CommandZoomAt || cmd.Factor != wheelZoomOut {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestTranslateFKeyFits(t *testing.T) {
	cmd, ok := Translate(KeyPress{Key: "F"}, 800, 600)
	if !ok || cmd.Kind != CommandFit {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestTranslatePinchZoom(t *testing.T) {
	cmd, ok := Translate(TouchPinch{Factor: 1.5, CX: 10, CY: 20}, 800, 600)
	if !ok || cmd.Kind != CommandZoomAt || cmd.Factor != 1.5 {
		t.Fatalf("cmd = %+v", cmd)
	}
}
