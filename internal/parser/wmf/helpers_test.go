package wmf

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/roboco-io/koimport/internal/ir"
)

// metafile은 테스트용 WMF 바이트열을 조립한다
type metafile struct {
	body    bytes.Buffer
	objects uint16
}

// rec appends a record whose parameters are 16-bit words.
func (m *metafile) rec(fn uint16, words ...int) *metafile {
	data := make([]byte, 2*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(w))
	}
	return m.raw(fn, data)
}

// raw appends a record with the given parameter bytes.
func (m *metafile) raw(fn uint16, data []byte) *metafile {
	if len(data)%2 == 1 {
		data = append(data, 0)
	}
	var hdr [6]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(3+len(data)/2))
	binary.LittleEndian.PutUint16(hdr[4:], fn)
	m.body.Write(hdr[:])
	m.body.Write(data)
	return m
}

// meta returns the META header, the body and a closing EOF record.
func (m *metafile) meta() []byte {
	body := append(append([]byte{}, m.body.Bytes()...), 3, 0, 0, 0, 0, 0)
	hdr := make([]byte, MetaHeaderSize)
	le := binary.LittleEndian
	le.PutUint16(hdr[0:], 1)
	le.PutUint16(hdr[2:], 9)
	le.PutUint16(hdr[4:], 0x0300)
	le.PutUint32(hdr[6:], uint32((MetaHeaderSize+len(body))/2))
	le.PutUint16(hdr[10:], m.objects)
	le.PutUint32(hdr[12:], 0)
	le.PutUint16(hdr[16:], 0)
	return append(hdr, body...)
}

// standard returns a metafile without a placeable header.
func (m *metafile) standard() []byte {
	return m.meta()
}

// placeable returns a metafile with a placeable header and a valid checksum.
func (m *metafile) placeable(left, top, right, bottom int, inch uint16) []byte {
	p := &PlaceableHeader{
		Key:    PlaceableKey,
		Left:   int16(left),
		Top:    int16(top),
		Right:  int16(right),
		Bottom: int16(bottom),
		Inch:   inch,
	}
	p.Checksum = p.CalcChecksum()

	hdr := make([]byte, PlaceableHeaderSize)
	le := binary.LittleEndian
	le.PutUint32(hdr[0:], p.Key)
	le.PutUint16(hdr[4:], p.Handle)
	le.PutUint16(hdr[6:], uint16(p.Left))
	le.PutUint16(hdr[8:], uint16(p.Top))
	le.PutUint16(hdr[10:], uint16(p.Right))
	le.PutUint16(hdr[12:], uint16(p.Bottom))
	le.PutUint16(hdr[14:], p.Inch)
	le.PutUint32(hdr[16:], p.Reserved)
	le.PutUint16(hdr[20:], p.Checksum)
	return append(hdr, m.meta()...)
}

// window appends SetWindowOrg and SetWindowExt records.
func (m *metafile) window(left, top, width, height int) *metafile {
	m.rec(FuncSetWindowOrg, top, left)
	return m.rec(FuncSetWindowExt, height, width)
}

// rect appends a record carrying a rectangle in bottom, right, top, left
// order after the given leading words.
func (m *metafile) rect(fn uint16, left, top, right, bottom int, lead ...int) *metafile {
	return m.rec(fn, append(lead, bottom, right, top, left)...)
}

// colorWords splits a COLORREF into two parameter words.
func colorWords(r, g, b uint8) (int, int) {
	v := uint32(r) | uint32(g)<<8 | uint32(b)<<16
	return int(v & 0xFFFF), int(v >> 16)
}

// dib24 builds a bottom-up 24-bit packed DIB filled with one color.
func dib24(w, h int, r, g, b uint8) []byte {
	stride := (w*3 + 3) &^ 3
	out := make([]byte, 40+stride*h)
	le := binary.LittleEndian
	le.PutUint32(out[0:], 40)
	le.PutUint32(out[4:], uint32(w))
	le.PutUint32(out[8:], uint32(h))
	le.PutUint16(out[12:], 1)
	le.PutUint16(out[14:], 24)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := 40 + y*stride + x*3
			out[o], out[o+1], out[o+2] = b, g, r
		}
	}
	return out
}

// importData plays data into a new document.
func importData(t *testing.T, data []byte) *ir.Document {
	t.Helper()
	r, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	doc := ir.NewDocument()
	if err := NewImporter(r).Play(doc); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	return doc
}

// beginImporter returns an importer that has run Begin against doc, so its
// drawing methods can be called directly.
func beginImporter(t *testing.T, data []byte, doc *ir.Document) *Importer {
	t.Helper()
	r, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	im := NewImporter(r)
	im.sink = doc
	if err := im.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	return im
}
