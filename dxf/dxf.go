// Package dxf is a thin converter from the DXF text format's ENTITIES
// section into a model.Document, per spec.md §6. DXF is a tag/value text
// format (group code on one line, value on the next) rather than
// GDSII's binary records, so it does not reuse gdsii.Reader; it does
// reuse model's geometry and color types, and follows builder's pattern
// of a small per-entity-type switch accumulating into a model.Document.
package dxf

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/foldscope/gdsview/internal/xerrors"
	"github.com/foldscope/gdsview/model"
)

const (
	circleSegments = 32
	arcSegments    = 16

	// Default units per spec.md §6: 1 DBU = 1 nm, 1 user unit = 1 mm.
	defaultDBUInUser    = 1e-6
	defaultUserInMeters = 1e-3

	// dbuPerUserUnit converts DXF coordinates, given in user units, to DBU.
	dbuPerUserUnit = 1e6
)

// tag is one DXF group-code/value pair.
type tag struct {
	code  int
	value string
}

// scan tokenizes a DXF byte stream into (code, value) tags. DXF has no
// escape sequences and no binary payload in the variant this converter
// accepts, so a simple two-line-at-a-time scanner suffices.
func scan(data []byte) ([]tag, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var tags []tag
	for sc.Scan() {
		codeLine := strings.TrimSpace(sc.Text())
		if !sc.Scan() {
			return nil, &xerrors.TruncatedFile{Offset: int64(len(tags))}
		}
		valueLine := strings.TrimRight(sc.Text(), "\r")
		code, err := strconv.Atoi(codeLine)
		if err != nil {
			return nil, fmt.Errorf("dxf: invalid group code %q: %w", codeLine, err)
		}
		tags = append(tags, tag{code: code, value: valueLine})
	}
	return tags, nil
}

// entity accumulates group codes for one ENTITIES-section record until
// the next 0-code tag starts a new one.
type entity struct {
	kind    string
	layer   string
	closed  bool
	xs, ys  []float64 // vertex lists for LWPOLYLINE/POLYLINE
	x1, y1  float64
	x2, y2  float64
	radius  float64
	startDeg, endDeg float64
	corners [4][2]float64
	nCorners int
}

// Parse reads a DXF byte buffer and returns the equivalent model.Document,
// per spec.md §6. Only the ENTITIES section's LWPOLYLINE, POLYLINE, LINE,
// CIRCLE, ARC, SOLID, and 3DFACE entities are recognized; everything else
// is skipped.
func Parse(data []byte, filename string) (*model.Document, []xerrors.Warning, error) {
	tags, err := scan(data)
	if err != nil {
		return nil, nil, err
	}

	doc := model.NewDocument(filename)
	doc.Units = model.Units{DBUInUser: defaultDBUInUser, UserInMeters: defaultUserInMeters}
	top := &model.Cell{Name: "MODEL_SPACE"}
	doc.Cells[top.Name] = top

	var warnings []xerrors.Warning
	var cur *entity
	inEntities := false

	flush := func() {
		if cur == nil {
			return
		}
		poly := entityToPolygon(doc, *cur)
		if poly != nil {
			top.Polygons = append(top.Polygons, poly)
		} else if cur.kind != "" {
			warnings = append(warnings, xerrors.Warning{Kind: "UnsupportedEntity", Message: cur.kind})
		}
		cur = nil
	}

	for i := 0; i < len(tags); i++ {
		tg := tags[i]
		switch tg.code {
		case 0:
			if tg.value == "ENDSEC" {
				flush()
				inEntities = false
				continue
			}
			if tg.value == "SECTION" || tg.value == "EOF" {
				continue
			}
			if !inEntities {
				continue
			}
			flush()
			cur = &entity{kind: tg.value}
		case 2:
			if tg.value == "ENTITIES" {
				inEntities = true
			}
		case 8:
			if cur != nil {
				cur.layer = tg.value
			}
		case 10:
			appendCoord(cur, tg.value, true, 0)
		case 20:
			appendCoord(cur, tg.value, false, 0)
		case 11:
			if cur != nil {
				setFloat(&cur.x2, tg.value)
			}
		case 21:
			if cur != nil {
				setFloat(&cur.y2, tg.value)
			}
		case 40:
			if cur != nil {
				setFloat(&cur.radius, tg.value)
			}
		case 50:
			if cur != nil {
				setFloat(&cur.startDeg, tg.value)
			}
		case 51:
			if cur != nil {
				setFloat(&cur.endDeg, tg.value)
			}
		case 70:
			if cur != nil {
				n, _ := strconv.Atoi(tg.value)
				cur.closed = n&1 != 0
			}
		case 12, 22, 13, 23:
			appendCorner(cur, tg.code, tg.value)
		}
	}
	flush()

	doc.Cells[top.Name] = top
	if err := doc.ValidateAcyclic(); err != nil {
		return nil, nil, err
	}
	doc.ComputeBounds()
	return doc, warnings, nil
}

func setFloat(dst *float64, s string) {
	if dst == nil {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err == nil {
		*dst = v
	}
}

func appendCoord(e *entity, s string, isX bool, _ int) {
	if e == nil {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return
	}
	switch e.kind {
	case "LWPOLYLINE", "POLYLINE":
		if isX {
			e.xs = append(e.xs, v)
		} else {
			e.ys = append(e.ys, v)
		}
	default:
		if isX {
			e.x1 = v
		} else {
			e.y1 = v
		}
	}
}

func appendCorner(e *entity, code int, s string) {
	if e == nil {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return
	}
	idx := map[int]int{11: 1, 21: 1, 12: 2, 22: 2, 13: 3, 23: 3}[code]
	if e.nCorners <= idx {
		e.nCorners = idx + 1
	}
	if code == 11 || code == 12 || code == 13 {
		e.corners[idx][0] = v
	} else {
		e.corners[idx][1] = v
	}
}

// entityToPolygon converts one accumulated DXF entity into a world-space
// polygon on a deterministically-colored (layer,0) LayerKey, per spec.md
// §6. It returns nil for unrecognized entity kinds.
func entityToPolygon(doc *model.Document, e entity) *model.Polygon {
	key := model.LayerKey{Layer: hashLayerName(e.layer), Datatype: 0}
	doc.Layer(key).SetColor(model.DefaultColorForName(e.layer))

	switch e.kind {
	case "LWPOLYLINE", "POLYLINE":
		n := len(e.xs)
		if len(e.ys) < n {
			n = len(e.ys)
		}
		if n < 3 {
			return nil
		}
		pts := make([]model.Point, n)
		for i := 0; i < n; i++ {
			pts[i] = toDBU(e.xs[i], e.ys[i])
		}
		return model.NewPolygon(key, pts)

	case "LINE":
		// Widened to a stroke polygon rather than skipped, per spec.md §6's
		// note that widening is an implementation choice. The polygon
		// extends one user unit (1 mm) to each side of the segment.
		return strokeSegment(key, e.x1, e.y1, e.x2, e.y2, 1)

	case "CIRCLE":
		pts := make([]model.Point, circleSegments)
		for i := 0; i < circleSegments; i++ {
			theta := 2 * math.Pi * float64(i) / float64(circleSegments)
			pts[i] = toDBU(e.x1+e.radius*math.Cos(theta), e.y1+e.radius*math.Sin(theta))
		}
		return model.NewPolygon(key, pts)

	case "ARC":
		span := e.endDeg - e.startDeg
		pts := make([]model.Point, 0, arcSegments+1)
		for i := 0; i <= arcSegments; i++ {
			theta := (e.startDeg + span*float64(i)/float64(arcSegments)) * math.Pi / 180
			pts = append(pts, toDBU(e.x1+e.radius*math.Cos(theta), e.y1+e.radius*math.Sin(theta)))
		}
		pts = append(pts, toDBU(e.x1, e.y1))
		return model.NewPolygon(key, pts)

	case "SOLID", "3DFACE":
		if e.nCorners < 3 {
			return nil
		}
		pts := []model.Point{toDBU(e.x1, e.y1), toDBU(e.x2, e.y2)}
		for i := 2; i < e.nCorners; i++ {
			pts = append(pts, toDBU(e.corners[i][0], e.corners[i][1]))
		}
		return model.NewPolygon(key, pts)

	default:
		return nil
	}
}

func strokeSegment(key model.LayerKey, x1, y1, x2, y2, halfWidth float64) *model.Polygon {
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	nx, ny := -dy/length*halfWidth, dx/length*halfWidth
	pts := []model.Point{
		toDBU(x1+nx, y1+ny), toDBU(x2+nx, y2+ny),
		toDBU(x2-nx, y2-ny), toDBU(x1-nx, y1-ny),
	}
	return model.NewPolygon(key, pts)
}

// toDBU converts DXF user-unit coordinates to DBU, using the default 1
// user unit = 1 mm = 1e6 DBU (1 DBU = 1 nm) per spec.md §6.
func toDBU(x, y float64) model.Point {
	return model.NewPoint(int32(x*dbuPerUserUnit), int32(y*dbuPerUserUnit))
}

// hashLayerName derives a deterministic layer number from a DXF layer
// name, since DXF layers are named rather than numbered; paired with
// DefaultColorForName, two documents with the same layer name always get
// the same layer number and the same default color.
func hashLayerName(name string) uint8 {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return uint8(h)
}
