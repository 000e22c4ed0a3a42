// Package builder folds a gdsii.Record stream into a model.Document using
// the small pushdown state machine spec.md §4.2 describes.
package builder

import (
	"context"

	"github.com/foldscope/gdsview/gdsii"
	"github.com/foldscope/gdsview/internal/xerrors"
	"github.com/foldscope/gdsview/model"
)

type state int

const (
	stateTopLevel state = iota
	stateInLibrary
	stateInCell
	stateInBoundary
	stateInSref
	stateInAref
)

// ProgressFunc reports a monotonic 0-100 value and a human-readable
// message, per spec.md §4.2 ("progress is reported as a monotonic 0-100
// value tied to bytes consumed") and §5's cooperative-yield contract.
type ProgressFunc func(percent int, message string)

// recordsPerYield is the coarse cooperative-yield boundary spec.md §5
// names ("per N records, N≈10,000").
const recordsPerYield = 10000

// Builder assembles a model.Document from a decoded record stream.
type Builder struct {
	doc   *model.Document
	state state

	haveUnits bool

	curCell *model.Cell
	curPoly struct {
		layer  model.LayerKey
		points []model.Point
	}
	curRef *model.CellRef

	warnings []xerrors.Warning
}

// New starts a builder for filename.
func New(filename string) *Builder {
	return &Builder{doc: model.NewDocument(filename), state: stateTopLevel}
}

// Build decodes data end to end, invoking on at each cooperative yield
// point and checking ctx for cancellation at the same boundary, per
// spec.md §5 ("cancellation is checked at every yield point; a canceled
// task discards partial state"). It returns the resolved Document and
// accumulated warnings, or a fatal error per spec.md §7.
func Build(ctx context.Context, data []byte, filename string, on ProgressFunc) (*model.Document, []xerrors.Warning, error) {
	b := New(filename)
	reader := gdsii.NewReader(data)
	total := reader.Len()
	if total == 0 {
		total = 1
	}

	count := 0
	for {
		rec, err := reader.Next()
		if err != nil {
			return nil, nil, err
		}
		if rec == nil {
			break
		}
		if err := b.feed(rec); err != nil {
			return nil, nil, err
		}
		count++
		if count%recordsPerYield == 0 {
			select {
			case <-ctx.Done():
				return nil, nil, &xerrors.LoadCanceled{}
			default:
			}
			if on != nil {
				pct := int(reader.Offset() * 100 / total)
				on(clampPct(pct), "parsing records")
			}
		}
	}

	if err := b.doc.ValidateAcyclic(); err != nil {
		return nil, nil, err
	}
	b.doc.ComputeBounds()
	if on != nil {
		on(100, "parse complete")
	}
	return b.doc, b.warnings, nil
}

func clampPct(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (b *Builder) warn(kind, msg string, offset int64, cell string) {
	b.warnings = append(b.warnings, xerrors.Warning{Kind: kind, Message: msg, Offset: offset, Cell: cell})
}

func (b *Builder) feed(rec *gdsii.Record) error {
	switch b.state {
	case stateTopLevel:
		return b.feedTopLevel(rec)
	case stateInLibrary:
		return b.feedInLibrary(rec)
	case stateInCell:
		return b.feedInCell(rec)
	case stateInBoundary:
		return b.feedInBoundary(rec)
	case stateInSref:
		return b.feedInRef(rec, false)
	case stateInAref:
		return b.feedInRef(rec, true)
	default:
		return nil
	}
}

func (b *Builder) feedTopLevel(rec *gdsii.Record) error {
	if rec.Type == gdsii.HEADER {
		b.state = stateInLibrary
	}
	// Anything else prior to HEADER is tolerated and skipped.
	return nil
}

func (b *Builder) feedInLibrary(rec *gdsii.Record) error {
	switch rec.Type {
	case gdsii.UNITS:
		if len(rec.Reals) >= 2 {
			b.doc.Units = model.Units{DBUInUser: rec.Reals[0], UserInMeters: rec.Reals[1]}
			b.haveUnits = true
		}
	case gdsii.BGNSTR:
		b.curCell = &model.Cell{}
		b.state = stateInCell
	case gdsii.ENDLIB:
		b.state = stateTopLevel
	default:
		if !knownRecord(rec.Type) {
			b.warn(xerrors.KindUnknownRecord, rec.Type.String(), rec.Offset, "")
		}
	}
	return nil
}

func (b *Builder) feedInCell(rec *gdsii.Record) error {
	switch rec.Type {
	case gdsii.STRNAME:
		b.curCell.Name = rec.Text
	case gdsii.BOUNDARY, gdsii.PATH:
		if !b.haveUnits {
			return &xerrors.MissingUnits{Offset: rec.Offset}
		}
		b.curPoly = struct {
			layer  model.LayerKey
			points []model.Point
		}{}
		b.state = stateInBoundary
	case gdsii.SREF:
		b.curRef = &model.CellRef{Mag: 1, Rows: 1, Cols: 1}
		b.state = stateInSref
	case gdsii.AREF:
		b.curRef = &model.CellRef{Mag: 1}
		b.state = stateInAref
	case gdsii.ENDSTR:
		if b.curCell.Name != "" {
			b.doc.Cells[b.curCell.Name] = b.curCell
		}
		b.curCell = nil
		b.state = stateInLibrary
	default:
		if !knownRecord(rec.Type) {
			b.warn(xerrors.KindUnknownRecord, rec.Type.String(), rec.Offset, b.curCell.Name)
		}
	}
	return nil
}

func (b *Builder) feedInBoundary(rec *gdsii.Record) error {
	switch rec.Type {
	case gdsii.LAYER:
		if len(rec.Ints16) > 0 {
			b.curPoly.layer.Layer = uint8(rec.Ints16[0])
		}
	case gdsii.DATATYPE:
		if len(rec.Ints16) > 0 {
			b.curPoly.layer.Datatype = uint8(rec.Ints16[0])
		}
	case gdsii.XY:
		b.curPoly.points = decodeXY(rec.Ints32)
	case gdsii.ENDEL:
		b.finishPolygon(rec.Offset)
		b.state = stateInCell
	default:
		if !knownRecord(rec.Type) {
			b.warn(xerrors.KindUnknownRecord, rec.Type.String(), rec.Offset, b.curCell.Name)
		}
	}
	return nil
}

func (b *Builder) finishPolygon(offset int64) {
	pts := dropClosingDuplicate(b.curPoly.points)
	if len(pts) < 3 {
		b.warn(xerrors.KindDegeneratePolygon, "fewer than 3 distinct points", offset, b.curCell.Name)
		return
	}
	b.doc.Layer(b.curPoly.layer)
	poly := model.NewPolygon(b.curPoly.layer, pts)
	b.curCell.Polygons = append(b.curCell.Polygons, poly)
}

func dropClosingDuplicate(pts []model.Point) []model.Point {
	if len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
		return pts[:len(pts)-1]
	}
	return pts
}

func decodeXY(ints []int32) []model.Point {
	pts := make([]model.Point, 0, len(ints)/2)
	for i := 0; i+1 < len(ints); i += 2 {
		pts = append(pts, model.NewPoint(ints[i], ints[i+1]))
	}
	return pts
}

func (b *Builder) feedInRef(rec *gdsii.Record, isArray bool) error {
	switch rec.Type {
	case gdsii.SNAME:
		b.curRef.Target = rec.Text
	case gdsii.STRANS:
		b.curRef.Reflect = rec.Bits&0x8000 != 0
	case gdsii.MAG:
		if len(rec.Reals) > 0 {
			b.curRef.Mag = rec.Reals[0]
		}
	case gdsii.ANGLE:
		if len(rec.Reals) > 0 {
			b.curRef.RotationDeg = rec.Reals[0]
		}
	case gdsii.COLROW:
		if isArray && len(rec.Ints16) >= 2 {
			b.curRef.Rows = int32(rec.Ints16[1])
			b.curRef.Cols = int32(rec.Ints16[0])
		}
	case gdsii.XY:
		b.applyRefXY(rec.Ints32, isArray)
	case gdsii.ENDEL:
		b.curCell.Refs = append(b.curCell.Refs, b.curRef)
		b.curRef = nil
		b.state = stateInCell
	default:
		if !knownRecord(rec.Type) {
			b.warn(xerrors.KindUnknownRecord, rec.Type.String(), rec.Offset, b.curCell.Name)
		}
	}
	return nil
}

// applyRefXY handles the SREF case (one XY pair: the reference origin) and
// the AREF case (three XY pairs: origin, and the column/row corner points
// whose differences give the step vectors), per spec.md §4.2.
func (b *Builder) applyRefXY(ints []int32, isArray bool) {
	pts := decodeXY(ints)
	if len(pts) == 0 {
		return
	}
	b.curRef.X = pts[0].X
	b.curRef.Y = pts[0].Y
	if !isArray || len(pts) < 3 {
		return
	}
	cols := b.curRef.Cols
	rows := b.curRef.Rows
	if cols == 0 {
		cols = 1
	}
	if rows == 0 {
		rows = 1
	}
	colCorner, rowCorner := pts[1], pts[2]
	b.curRef.StepX = (colCorner.X - pts[0].X) / cols
	b.curRef.StepY = (rowCorner.Y - pts[0].Y) / rows
}

func knownRecord(t gdsii.RecordType) bool {
	switch t {
	case gdsii.HEADER, gdsii.BGNLIB, gdsii.LIBNAME, gdsii.UNITS, gdsii.ENDLIB,
		gdsii.BGNSTR, gdsii.STRNAME, gdsii.ENDSTR, gdsii.BOUNDARY, gdsii.PATH,
		gdsii.SREF, gdsii.AREF, gdsii.TEXT, gdsii.LAYER, gdsii.DATATYPE,
		gdsii.WIDTH, gdsii.XY, gdsii.ENDEL, gdsii.SNAME, gdsii.COLROW,
		gdsii.NODE, gdsii.TEXTTYPE, gdsii.PRESENTATION, gdsii.STRING,
		gdsii.STRANS, gdsii.MAG, gdsii.ANGLE, gdsii.REFLIBS, gdsii.FONTS,
		gdsii.PATHTYPE, gdsii.GENERATIONS, gdsii.ATTRTABLE, gdsii.ELFLAGS,
		gdsii.NODETYPE, gdsii.PROPATTR, gdsii.PROPVALUE, gdsii.BOX,
		gdsii.BOXTYPE, gdsii.PLEX, gdsii.BGNEXTN, gdsii.ENDEXTN, gdsii.FORMAT:
		return true
	default:
		return false
	}
}
