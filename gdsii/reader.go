package gdsii

import (
	"encoding/binary"

	"github.com/foldscope/gdsview/internal/xerrors"
)

// Reader decodes a byte buffer into a pull-style sequence of Records. It is
// restartable from any record boundary but not from mid-record, and it
// does not interpret record meaning (spec.md §4.1). No third-party binary
// codec in the retrieval pack decodes big-endian records or GDSII's
// Excess-64 real; encoding/binary is the natural stdlib fit for a
// length-prefixed binary protocol like this one.
type Reader struct {
	data   []byte
	offset int64
}

// NewReader wraps data for sequential record decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the byte offset of the next record to be read; useful for
// restarting the reader (or reporting progress) at a record boundary.
func (r *Reader) Offset() int64 { return r.offset }

// Seek repositions the reader at a previously observed record boundary.
func (r *Reader) Seek(offset int64) { r.offset = offset }

// Len returns the total buffer length, for progress reporting.
func (r *Reader) Len() int64 { return int64(len(r.data)) }

// Next decodes the record starting at the current offset and advances past
// it. It returns (nil, nil) at end of input.
func (r *Reader) Next() (*Record, error) {
	if r.offset >= int64(len(r.data)) {
		return nil, nil
	}
	start := r.offset
	if r.offset+4 > int64(len(r.data)) {
		return nil, &xerrors.TruncatedFile{Offset: start}
	}
	header := r.data[r.offset : r.offset+4]
	length := binary.BigEndian.Uint16(header[0:2])
	if length < 4 {
		return nil, &xerrors.OddRecordLength{Offset: start, Length: length}
	}
	if length%2 != 0 {
		return nil, &xerrors.OddRecordLength{Offset: start, Length: length}
	}
	if start+int64(length) > int64(len(r.data)) {
		return nil, &xerrors.TruncatedFile{Offset: start}
	}
	recType := RecordType(header[2])
	dataType := DataType(header[3])
	payload := r.data[r.offset+4 : start+int64(length)]

	rec := &Record{Type: recType, DataType: dataType, Offset: start}
	if err := decodePayload(rec, payload, dataType, start); err != nil {
		return nil, err
	}
	r.offset = start + int64(length)
	return rec, nil
}

func decodePayload(rec *Record, payload []byte, dataType DataType, offset int64) error {
	switch dataType {
	case NoData:
		return nil
	case BitArray:
		if len(payload) < 2 {
			return &xerrors.TruncatedFile{Offset: offset}
		}
		rec.Bits = binary.BigEndian.Uint16(payload[0:2])
		return nil
	case Int16:
		if len(payload)%2 != 0 {
			return &xerrors.OddRecordLength{Offset: offset, Length: uint16(len(payload))}
		}
		rec.Ints16 = make([]int16, len(payload)/2)
		for i := range rec.Ints16 {
			rec.Ints16[i] = int16(binary.BigEndian.Uint16(payload[i*2 : i*2+2]))
		}
		return nil
	case Int32:
		if len(payload)%4 != 0 {
			return &xerrors.TruncatedFile{Offset: offset}
		}
		rec.Ints32 = make([]int32, len(payload)/4)
		for i := range rec.Ints32 {
			rec.Ints32[i] = int32(binary.BigEndian.Uint32(payload[i*4 : i*4+4]))
		}
		return nil
	case Real64:
		if len(payload)%8 != 0 {
			return &xerrors.TruncatedFile{Offset: offset}
		}
		rec.Reals = make([]float64, len(payload)/8)
		for i := range rec.Reals {
			var buf [8]byte
			copy(buf[:], payload[i*8:i*8+8])
			rec.Reals[i] = decodeReal64(buf)
		}
		return nil
	case Real32:
		// Real32 is unused by GDSII producers per spec.md §4.1; if it ever
		// appears, treat it like the unknown data types below rather than
		// silently mis-decoding it.
		return &xerrors.UnknownDataType{Offset: offset, DataType: uint8(dataType)}
	case ASCII:
		s := string(payload)
		// GDSII pads ASCII to even length with a trailing NUL, which must
		// be stripped (spec.md §4.1).
		for len(s) > 0 && s[len(s)-1] == 0 {
			s = s[:len(s)-1]
		}
		rec.Text = s
		return nil
	default:
		return &xerrors.UnknownDataType{Offset: offset, DataType: uint8(dataType)}
	}
}
