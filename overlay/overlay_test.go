package overlay

import "testing"

func TestGridSpacingTargetsTenLines(t *testing.T) {
	spacing := GridSpacing(1000)
	lines := 1000 / spacing
	if lines < 5 || lines > 20 {
		t.Fatalf("spacing %v gives %v lines, want roughly 10", spacing, lines)
	}
}

func TestScaleBarIsRoughlyQuarterOfViewport(t *testing.T) {
	length := ScaleBarLength(1000)
	if length <= 0 || length > 1000 {
		t.Fatalf("scale bar length %v out of range", length)
	}
	ratio := length / 1000
	if ratio < 0.1 || ratio > 0.5 {
		t.Fatalf("scale bar ratio %v not close to 0.25", ratio)
	}
}

func TestScaleBarLabelPicksUnitByMagnitude(t *testing.T) {
	cases := []struct {
		meters float64
		want   string
	}{
		{5e-9, "nm"},
		{5e-6, "µm"},
		{5e-3, "mm"},
	}
	for _, c := range cases {
		got := ScaleBarLabel(c.meters)
		if !contains(got, c.want) {
			t.Errorf("ScaleBarLabel(%v) = %q, want unit %q", c.meters, got, c.want)
		}
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestFPSCounterReportsAfterInterval(t *testing.T) {
	var c FPSCounter
	for i := 0; i < 30; i++ {
		c.Tick(1.0 / 60)
	}
	fps := c.Tick(FPSCounterUpdateInterval)
	if fps <= 0 {
		t.Fatalf("expected a positive FPS reading, got %v", fps)
	}
}

func TestCoordinateReadoutConvertsToMicrons(t *testing.T) {
	got := CoordinateReadout(1000, 2000, 1e-9)
	if !contains(got, "µm") {
		t.Fatalf("readout %q missing µm unit", got)
	}
}
