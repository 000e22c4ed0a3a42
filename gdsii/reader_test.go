package gdsii

import (
	"encoding/binary"
	"math"
	"testing"
)

func appendRecord(buf []byte, typ RecordType, dt DataType, payload []byte) []byte {
	length := 4 + len(payload)
	header := make([]byte, 4)
	binary.BigEndian.PutUint16(header[0:2], uint16(length))
	header[2] = byte(typ)
	header[3] = byte(dt)
	buf = append(buf, header...)
	buf = append(buf, payload...)
	return buf
}

func TestReaderDecodesInt16AndASCII(t *testing.T) {
	var buf []byte
	int16Payload := make([]byte, 4)
	binary.BigEndian.PutUint16(int16Payload[0:2], uint16(int16(1)))
	binary.BigEndian.PutUint16(int16Payload[2:4], uint16(int16(2)))
	buf = appendRecord(buf, LAYER, Int16, int16Payload[:2])
	buf = appendRecord(buf, STRNAME, ASCII, []byte("TOP\x00"))
	buf = appendRecord(buf, ENDLIB, NoData, nil)

	r := NewReader(buf)

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Type != LAYER || len(rec.Ints16) != 1 || rec.Ints16[0] != 1 {
		t.Fatalf("unexpected LAYER record: %+v", rec)
	}

	rec, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Text != "TOP" {
		t.Fatalf("STRNAME text = %q, want TOP", rec.Text)
	}

	rec, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Type != ENDLIB {
		t.Fatalf("expected ENDLIB, got %v", rec.Type)
	}

	rec, err = r.Next()
	if err != nil || rec != nil {
		t.Fatalf("expected end of input, got rec=%v err=%v", rec, err)
	}
}

func TestReaderTruncatedFile(t *testing.T) {
	buf := []byte{0x00, 0x08, byte(LAYER), byte(Int16), 0x00, 0x01}
	r := NewReader(buf)
	_, err := r.Next()
	if err == nil {
		t.Fatal("expected a truncation error")
	}
}

func TestReal64RoundTrip(t *testing.T) {
	cases := []float64{1.0, 0.5, 1e-9, 1e-6, 1000, 0.001, -2.5}
	for _, v := range cases {
		b := encodeReal64(v)
		got := decodeReal64(b)
		if math.Abs(got-v)/math.Max(1, math.Abs(v)) > 1e-9 {
			t.Errorf("round trip %v -> %v, relative error too large", v, got)
		}
	}
}

func TestReal64Zero(t *testing.T) {
	if decodeReal64([8]byte{}) != 0 {
		t.Fatal("expected zero-byte real64 to decode as 0")
	}
}
