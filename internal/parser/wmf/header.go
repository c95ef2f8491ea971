package wmf

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
)

// PlaceableHeader는 Aldus placeable 메타파일 헤더 (22바이트)
// 참조: [MS-WMF] 2.3.2.3 META_PLACEABLE
type PlaceableHeader struct {
	Key      uint32 // 시그니처 0x9AC6CDD7
	Handle   uint16 // 항상 0
	Left     int16  // 경계 사각형 (논리 단위)
	Top      int16
	Right    int16
	Bottom   int16
	Inch     uint16 // 인치당 논리 단위 수
	Reserved uint32
	Checksum uint16 // 앞 10개 워드의 XOR
}

// CalcChecksum returns the XOR of the first ten 16-bit words of the header.
func (h *PlaceableHeader) CalcChecksum() uint16 {
	words := []uint16{
		uint16(h.Key), uint16(h.Key >> 16),
		h.Handle,
		uint16(h.Left), uint16(h.Top), uint16(h.Right), uint16(h.Bottom),
		h.Inch,
		uint16(h.Reserved), uint16(h.Reserved >> 16),
	}
	var sum uint16
	for _, w := range words {
		sum ^= w
	}
	return sum
}

// MetaHeader는 표준 META 헤더 (18바이트)
// 참조: [MS-WMF] 2.3.2.2 META_HEADER
type MetaHeader struct {
	FileType      uint16 // 1: 메모리, 2: 디스크
	HeaderSize    uint16 // 워드 단위, 항상 9
	Version       uint16 // 0x0100 또는 0x0300
	FileSize      uint32 // 워드 단위
	NumObjects    uint16 // 오브젝트 테이블 크기
	MaxRecordSize uint32 // 워드 단위
	NumParameters uint16 // 사용하지 않음, 0
}

// Header describes a parsed metafile header.
type Header struct {
	Placeable   *PlaceableHeader // nil for standard metafiles
	Meta        MetaHeader
	Standard    bool
	BBox        image.Rectangle // device units, canonical
	FirstRecord int             // offset of the first record
}

// IsPlaceable returns true if the metafile has a placeable header.
func (h *Header) IsPlaceable() bool {
	return h.Placeable != nil
}

// Inch returns the placeable header's resolution, or 0 if absent.
func (h *Header) Inch() int {
	if h.Placeable == nil {
		return 0
	}
	return int(h.Placeable.Inch)
}

// ParseHeader parses the metafile header and, for standard metafiles,
// derives the bounding box from the window records.
func ParseHeader(data []byte) (*Header, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("%w: file too small: %d bytes", ErrInvalidHeader, len(data))
	}

	h := &Header{}

	if binary.LittleEndian.Uint32(data) == PlaceableKey {
		if len(data) < PlaceableHeaderSize+MetaHeaderSize {
			return nil, fmt.Errorf("%w: placeable header too small: %d bytes", ErrInvalidHeader, len(data))
		}
		p := parsePlaceable(data)
		if sum := p.CalcChecksum(); sum != p.Checksum {
			return nil, fmt.Errorf("%w: got 0x%04X, expected 0x%04X", ErrChecksum, p.Checksum, sum)
		}
		h.Placeable = p
		h.Meta = parseMeta(data[PlaceableHeaderSize:])
		h.BBox = image.Rect(int(p.Left), int(p.Top), int(p.Right), int(p.Bottom))
		h.FirstRecord = PlaceableHeaderSize + MetaHeaderSize
		return h, nil
	}

	// EMF: EMR_HEADER 레코드의 시그니처 확인
	if len(data) >= 44 && binary.LittleEndian.Uint32(data[40:]) == EnhancedSignature {
		return nil, ErrEnhancedMetafile
	}

	if len(data) < MetaHeaderSize {
		return nil, fmt.Errorf("%w: header too small: %d bytes", ErrInvalidHeader, len(data))
	}
	h.Standard = true
	h.Meta = parseMeta(data)
	h.FirstRecord = MetaHeaderSize

	if h.Meta.HeaderSize != 9 || h.Meta.NumParameters != 0 {
		return nil, fmt.Errorf("%w: header size %d, parameters %d",
			ErrInvalidHeader, h.Meta.HeaderSize, h.Meta.NumParameters)
	}

	bbox, err := scanWindow(data[h.FirstRecord:], h.FirstRecord)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bounding box: %w", err)
	}
	h.BBox = bbox

	return h, nil
}

func parsePlaceable(data []byte) *PlaceableHeader {
	le := binary.LittleEndian
	return &PlaceableHeader{
		Key:      le.Uint32(data[0:]),
		Handle:   le.Uint16(data[4:]),
		Left:     int16(le.Uint16(data[6:])),
		Top:      int16(le.Uint16(data[8:])),
		Right:    int16(le.Uint16(data[10:])),
		Bottom:   int16(le.Uint16(data[12:])),
		Inch:     le.Uint16(data[14:]),
		Reserved: le.Uint32(data[16:]),
		Checksum: le.Uint16(data[20:]),
	}
}

func parseMeta(data []byte) MetaHeader {
	le := binary.LittleEndian
	return MetaHeader{
		FileType:      le.Uint16(data[0:]),
		HeaderSize:    le.Uint16(data[2:]),
		Version:       le.Uint16(data[4:]),
		FileSize:      le.Uint32(data[6:]),
		NumObjects:    le.Uint16(data[10:]),
		MaxRecordSize: le.Uint32(data[12:]),
		NumParameters: le.Uint16(data[16:]),
	}
}

// scanWindow derives the bounding box of a standard metafile: the smallest
// window origin and the largest absolute window extent over all records.
func scanWindow(body []byte, base int) (image.Rectangle, error) {
	var (
		left, top, width, height int
		seenOrg, seenExt         bool
	)

	rr := NewRecordReader(body, base)
	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return image.Rectangle{}, err
		}

		switch rec.Function {
		case FuncSetWindowOrg:
			p := rec.Params()
			y, x := p.I16(), p.I16()
			if p.Err() != nil {
				return image.Rectangle{}, p.Err()
			}
			if !seenOrg || x < left {
				left = x
			}
			if !seenOrg || y < top {
				top = y
			}
			seenOrg = true
		case FuncSetWindowExt:
			p := rec.Params()
			h, w := abs(p.I16()), abs(p.I16())
			if p.Err() != nil {
				return image.Rectangle{}, p.Err()
			}
			if !seenExt || w > width {
				width = w
			}
			if !seenExt || h > height {
				height = h
			}
			seenExt = true
		}

		if rec.Function == FuncEOF {
			break
		}
	}

	return image.Rect(left, top, left+width, top+height), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
