package dxf

import (
	"strings"
	"testing"
)

func buildDXF(entities string) []byte {
	doc := "0\nSECTION\n2\nENTITIES\n" + entities + "0\nENDSEC\n0\nEOF\n"
	return []byte(doc)
}

func TestParseLWPolyline(t *testing.T) {
	entity := strings.Join([]string{
		"0", "LWPOLYLINE",
		"8", "OUTLINE",
		"70", "1",
		"10", "0.0", "20", "0.0",
		"10", "1.0", "20", "0.0",
		"10", "1.0", "20", "1.0",
		"10", "0.0", "20", "1.0",
		"",
	}, "\n")
	doc, _, err := Parse(buildDXF(entity), "test.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cell := doc.Cells["MODEL_SPACE"]
	if len(cell.Polygons) != 1 {
		t.Fatalf("polygons = %d, want 1", len(cell.Polygons))
	}
	if len(cell.Polygons[0].Points) != 4 {
		t.Fatalf("points = %d, want 4", len(cell.Polygons[0].Points))
	}
}

func TestParseCircleProducesPolygon(t *testing.T) {
	entity := strings.Join([]string{
		"0", "CIRCLE",
		"8", "0",
		"10", "5.0", "20", "5.0",
		"40", "2.0",
		"",
	}, "\n")
	doc, _, err := Parse(buildDXF(entity), "test.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cell := doc.Cells["MODEL_SPACE"]
	if len(cell.Polygons) != 1 || len(cell.Polygons[0].Points) != circleSegments {
		t.Fatalf("circle polygon = %+v", cell.Polygons)
	}
}

func TestParseLineWidensToStroke(t *testing.T) {
	entity := strings.Join([]string{
		"0", "LINE",
		"8", "0",
		"10", "0.0", "20", "0.0",
		"11", "10.0", "21", "0.0",
		"",
	}, "\n")
	doc, _, err := Parse(buildDXF(entity), "test.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cell := doc.Cells["MODEL_SPACE"]
	if len(cell.Polygons) != 1 || len(cell.Polygons[0].Points) != 4 {
		t.Fatalf("line stroke polygon = %+v", cell.Polygons)
	}
}

func TestParseArcProducesFan(t *testing.T) {
	entity := strings.Join([]string{
		"0", "ARC",
		"8", "0",
		"10", "0.0", "20", "0.0",
		"40", "5.0",
		"50", "0.0",
		"51", "90.0",
		"",
	}, "\n")
	doc, _, err := Parse(buildDXF(entity), "test.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cell := doc.Cells["MODEL_SPACE"]
	if len(cell.Polygons) != 1 || len(cell.Polygons[0].Points) != arcSegments+2 {
		t.Fatalf("arc polygon = %+v", cell.Polygons)
	}
}

func TestParseAssignsDeterministicLayerColor(t *testing.T) {
	entity := strings.Join([]string{
		"0", "CIRCLE",
		"8", "MYLAYER",
		"10", "0.0", "20", "0.0",
		"40", "1.0",
		"",
	}, "\n")
	docA, _, err := Parse(buildDXF(entity), "a.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docB, _, err := Parse(buildDXF(entity), "b.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	keyA := docA.Cells["MODEL_SPACE"].Polygons[0].Layer
	keyB := docB.Cells["MODEL_SPACE"].Polygons[0].Layer
	if keyA != keyB {
		t.Fatalf("layer key for the same DXF layer name differs: %v vs %v", keyA, keyB)
	}
	if docA.Layers[keyA].Color() != docB.Layers[keyB].Color() {
		t.Fatal("same layer name should get the same deterministic color across documents")
	}
}

func TestDefaultUnits(t *testing.T) {
	doc, _, err := Parse(buildDXF(""), "empty.dxf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Units.DBUInUser != defaultDBUInUser || doc.Units.UserInMeters != defaultUserInMeters {
		t.Fatalf("units = %+v", doc.Units)
	}
}
