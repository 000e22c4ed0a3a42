// Package gdsii decodes a GDSII binary stream into a lazy sequence of
// typed records (spec.md §4.1). It does not interpret record meaning; that
// is the Document Builder's job.
package gdsii

import "fmt"

// RecordType is the GDSII record-type byte.
type RecordType uint8

// The subset of record types spec.md §4.1/§4.2 names. Unrecognized bytes
// decode as Unknown{type} and are reported, not dropped, by the reader.
const (
	HEADER       RecordType = 0x00
	BGNLIB       RecordType = 0x01
	LIBNAME      RecordType = 0x02
	UNITS        RecordType = 0x03
	ENDLIB       RecordType = 0x04
	BGNSTR       RecordType = 0x05
	STRNAME      RecordType = 0x06
	ENDSTR       RecordType = 0x07
	BOUNDARY     RecordType = 0x08
	PATH         RecordType = 0x09
	SREF         RecordType = 0x0A
	AREF         RecordType = 0x0B
	TEXT         RecordType = 0x0C
	LAYER        RecordType = 0x0D
	DATATYPE     RecordType = 0x0E
	WIDTH        RecordType = 0x0F
	XY           RecordType = 0x10
	ENDEL        RecordType = 0x11
	SNAME        RecordType = 0x12
	COLROW       RecordType = 0x13
	NODE         RecordType = 0x15
	TEXTTYPE     RecordType = 0x16
	PRESENTATION RecordType = 0x17
	STRING       RecordType = 0x19
	STRANS       RecordType = 0x1A
	MAG          RecordType = 0x1B
	ANGLE        RecordType = 0x1C
	REFLIBS      RecordType = 0x1F
	FONTS        RecordType = 0x20
	PATHTYPE     RecordType = 0x21
	GENERATIONS  RecordType = 0x22
	ATTRTABLE    RecordType = 0x23
	ELFLAGS      RecordType = 0x26
	NODETYPE     RecordType = 0x2A
	PROPATTR     RecordType = 0x2B
	PROPVALUE    RecordType = 0x2C
	BOX          RecordType = 0x2D
	BOXTYPE      RecordType = 0x2E
	PLEX         RecordType = 0x2F
	BGNEXTN      RecordType = 0x30
	ENDEXTN      RecordType = 0x31
	FORMAT       RecordType = 0x36
)

// String renders the record type by name for the known subset, or as
// Unknown{type} otherwise, per spec.md §4.1.
func (t RecordType) String() string {
	if name, ok := recordNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown{%#02x}", uint8(t))
}

var recordNames = map[RecordType]string{
	HEADER: "HEADER", BGNLIB: "BGNLIB", LIBNAME: "LIBNAME", UNITS: "UNITS",
	ENDLIB: "ENDLIB", BGNSTR: "BGNSTR", STRNAME: "STRNAME", ENDSTR: "ENDSTR",
	BOUNDARY: "BOUNDARY", PATH: "PATH", SREF: "SREF", AREF: "AREF", TEXT: "TEXT",
	LAYER: "LAYER", DATATYPE: "DATATYPE", WIDTH: "WIDTH", XY: "XY", ENDEL: "ENDEL",
	SNAME: "SNAME", COLROW: "COLROW", NODE: "NODE", TEXTTYPE: "TEXTTYPE",
	PRESENTATION: "PRESENTATION", STRING: "STRING", STRANS: "STRANS", MAG: "MAG",
	ANGLE: "ANGLE", REFLIBS: "REFLIBS", FONTS: "FONTS", PATHTYPE: "PATHTYPE",
	GENERATIONS: "GENERATIONS", ATTRTABLE: "ATTRTABLE", ELFLAGS: "ELFLAGS",
	NODETYPE: "NODETYPE", PROPATTR: "PROPATTR", PROPVALUE: "PROPVALUE", BOX: "BOX",
	BOXTYPE: "BOXTYPE", PLEX: "PLEX", BGNEXTN: "BGNEXTN", ENDEXTN: "ENDEXTN",
	FORMAT: "FORMAT",
}

// DataType is the GDSII data-type byte.
type DataType uint8

const (
	NoData   DataType = 0x00
	BitArray DataType = 0x01
	Int16    DataType = 0x02
	Int32    DataType = 0x03
	Real32   DataType = 0x04 // unused per spec.md §4.1
	Real64   DataType = 0x05
	ASCII    DataType = 0x06
)

// Record is one decoded GDSII record. Exactly one of the typed fields is
// populated according to DataType.
type Record struct {
	Type     RecordType
	DataType DataType
	Offset   int64 // byte offset of the record header, for error context

	Bits    uint16
	Ints16  []int16
	Ints32  []int32
	Reals   []float64
	Text    string
}
