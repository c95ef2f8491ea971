package wmf

import (
	"errors"
	"image"
	"io"
	"testing"
)

func TestRecordReader(t *testing.T) {
	m := &metafile{}
	m.rec(FuncMoveTo, 5, 10)
	m.rec(FuncSaveDC)
	data := m.standard()[MetaHeaderSize:]

	rr := NewRecordReader(data, MetaHeaderSize)

	rec, err := rr.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.Function != FuncMoveTo {
		t.Errorf("Expected MOVETO, got %s", rec.Name())
	}
	if rec.Offset != MetaHeaderSize {
		t.Errorf("Expected offset %d, got %d", MetaHeaderSize, rec.Offset)
	}
	if rec.Size != 5 {
		t.Errorf("Expected size 5 words, got %d", rec.Size)
	}
	if len(rec.Data) != 4 {
		t.Errorf("Expected 4 parameter bytes, got %d", len(rec.Data))
	}

	rec, err = rr.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if rec.Function != FuncSaveDC || len(rec.Data) != 0 {
		t.Errorf("Expected empty SAVEDC, got %s with %d bytes", rec.Name(), len(rec.Data))
	}
	if rr.Offset() != MetaHeaderSize+16 {
		t.Errorf("Expected reader offset %d, got %d", MetaHeaderSize+16, rr.Offset())
	}

	rec, err = rr.Read()
	if err != nil || rec.Function != FuncEOF {
		t.Fatalf("Expected EOF record, got %v, %v", rec, err)
	}

	if _, err := rr.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestRecordReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated header", []byte{3, 0, 0}, ErrShortRecord},
		{"size below minimum", []byte{2, 0, 0, 0, 0x13, 0x02}, ErrBrokenRecord},
		{"size past end", []byte{10, 0, 0, 0, 0x13, 0x02, 0, 0}, ErrShortRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecordReader(tt.data, 0).Read()
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParams(t *testing.T) {
	rec := &Record{Data: []byte{
		0xFF, 0xFF, // -1
		0x34, 0x12, 0x78, 0x56, // 0x56781234
		0x32, 0x00, 0x64, 0x00, 0x0A, 0x00, 0x14, 0x00, // bottom, right, top, left
	}}
	p := rec.Params()

	if v := p.I16(); v != -1 {
		t.Errorf("Expected -1, got %d", v)
	}
	if v := p.U32(); v != 0x56781234 {
		t.Errorf("Expected 0x56781234, got 0x%08X", v)
	}
	want := image.Rectangle{Min: image.Pt(20, 10), Max: image.Pt(100, 50)}
	if r := p.Rect(); r != want {
		t.Errorf("Expected %v, got %v", want, r)
	}
	if p.Remaining() != 0 {
		t.Errorf("Expected no remaining bytes, got %d", p.Remaining())
	}
	if p.Err() != nil {
		t.Fatalf("Unexpected error: %v", p.Err())
	}

	// 범위를 넘는 읽기는 오류를 유지한다
	if v := p.U16(); v != 0 {
		t.Errorf("Expected 0 past the end, got %d", v)
	}
	if !errors.Is(p.Err(), ErrShortRecord) {
		t.Errorf("Expected ErrShortRecord, got %v", p.Err())
	}
	if p.Bytes(0) != nil {
		t.Error("Expected reads after an error to return nil")
	}
}

func TestParams_Points(t *testing.T) {
	rec := &Record{Data: []byte{1, 0, 2, 0, 3, 0, 4, 0}}

	pts := rec.Params().Points(2)
	if len(pts) != 2 || pts[0] != image.Pt(1, 2) || pts[1] != image.Pt(3, 4) {
		t.Errorf("Unexpected points %v", pts)
	}

	p := rec.Params()
	if pts := p.Points(3); pts != nil || p.Err() == nil {
		t.Error("Expected an error for a point count past the end")
	}
}

func TestRecordName(t *testing.T) {
	tests := []struct {
		fn   uint16
		want string
	}{
		{FuncEOF, "EOF"},
		{FuncPolyPolygon, "POLYPOLYGON"},
		{FuncDIBStretchBlt, "DIBSTRETCHBLT"},
		{0x0999, "UNKNOWN(0x0999)"},
	}

	for _, tt := range tests {
		if got := RecordName(tt.fn); got != tt.want {
			t.Errorf("RecordName(0x%04X) = %s, want %s", tt.fn, got, tt.want)
		}
	}
	if knownFunction(0x0999) {
		t.Error("Expected 0x0999 to be unknown")
	}
}
