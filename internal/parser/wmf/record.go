package wmf

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
)

// Record는 WMF 레코드 구조체
// 참조: [MS-WMF] 2.3 Records
type Record struct {
	Offset   int    // 파일 내 레코드 시작 위치
	Size     uint32 // 레코드 크기 (16비트 워드 단위, 헤더 포함)
	Function uint16 // 레코드 함수 코드
	Data     []byte // 파라미터 데이터
}

// Name returns the record's function name.
func (rec *Record) Name() string {
	return RecordName(rec.Function)
}

// Params returns a cursor over the record parameters.
func (rec *Record) Params() *Params {
	return &Params{data: rec.Data, offset: rec.Offset + 6}
}

// RecordReader reads records from a metafile body.
type RecordReader struct {
	data   []byte
	offset int
	base   int
}

// NewRecordReader creates a new record reader over data. base is the file
// offset of data[0] and is only used in error messages.
func NewRecordReader(data []byte, base int) *RecordReader {
	return &RecordReader{
		data:   data,
		offset: 0,
		base:   base,
	}
}

// Offset returns the file offset of the next record.
func (r *RecordReader) Offset() int {
	return r.base + r.offset
}

// Read reads the next record. It returns io.EOF when the data is exhausted.
func (r *RecordReader) Read() (*Record, error) {
	if r.offset >= len(r.data) {
		return nil, io.EOF
	}

	// 최소 6바이트(size + function) 필요
	if r.offset+6 > len(r.data) {
		return nil, fmt.Errorf("%w: header at offset %d", ErrShortRecord, r.Offset())
	}

	size := binary.LittleEndian.Uint32(r.data[r.offset:])
	fn := binary.LittleEndian.Uint16(r.data[r.offset+4:])
	if size < minRecordWords {
		return nil, fmt.Errorf("%w: size %d at offset %d", ErrBrokenRecord, size, r.Offset())
	}

	// 크기는 워드 단위
	n := int64(size) * 2
	if int64(r.offset)+n > int64(len(r.data)) {
		return nil, fmt.Errorf("%w: data at offset %d: need %d bytes, have %d",
			ErrShortRecord, r.Offset(), n, len(r.data)-r.offset)
	}

	rec := &Record{
		Offset:   r.Offset(),
		Size:     size,
		Function: fn,
		Data:     r.data[r.offset+6 : r.offset+int(n)],
	}
	r.offset += int(n)

	return rec, nil
}

// ReadAll reads records up to and including the EOF record.
func (r *RecordReader) ReadAll() ([]*Record, error) {
	var records []*Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
		if rec.Function == FuncEOF {
			break
		}
	}
	return records, nil
}

// Params is a bounds-checked little-endian cursor over record parameters.
// The first out-of-range read sets a sticky error and every later read
// returns zero.
type Params struct {
	data   []byte
	pos    int
	offset int
	err    error
}

// Err returns the first read error.
func (p *Params) Err() error {
	return p.err
}

// Remaining returns the number of unread bytes.
func (p *Params) Remaining() int {
	return len(p.data) - p.pos
}

func (p *Params) take(n int) []byte {
	if p.err != nil {
		return nil
	}
	if n < 0 || p.pos+n > len(p.data) {
		p.err = fmt.Errorf("%w: parameter at offset %d: need %d bytes, have %d",
			ErrShortRecord, p.offset+p.pos, n, len(p.data)-p.pos)
		return nil
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b
}

// U16 reads an unsigned 16-bit value.
func (p *Params) U16() uint16 {
	b := p.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// I16 reads a signed 16-bit value.
func (p *Params) I16() int {
	return int(int16(p.U16()))
}

// U32 reads an unsigned 32-bit value.
func (p *Params) U32() uint32 {
	b := p.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Bytes reads n raw bytes.
func (p *Params) Bytes(n int) []byte {
	return p.take(n)
}

// Rest returns all unread bytes.
func (p *Params) Rest() []byte {
	return p.take(p.Remaining())
}

// Skip discards n bytes.
func (p *Params) Skip(n int) {
	p.take(n)
}

// Point reads an (x, y) pair.
func (p *Params) Point() image.Point {
	x := p.I16()
	y := p.I16()
	return image.Pt(x, y)
}

// Rect reads a rectangle stored bottom, right, top, left.
func (p *Params) Rect() image.Rectangle {
	bottom := p.I16()
	right := p.I16()
	top := p.I16()
	left := p.I16()
	return image.Rectangle{Min: image.Pt(left, top), Max: image.Pt(right, bottom)}
}

// Points reads n (x, y) pairs.
func (p *Params) Points(n int) []image.Point {
	if n*4 > p.Remaining() {
		p.take(n * 4)
		return nil
	}
	pts := make([]image.Point, n)
	for i := range pts {
		pts[i] = p.Point()
	}
	return pts
}
