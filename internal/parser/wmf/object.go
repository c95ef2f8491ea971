package wmf

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
)

// Pen is a decoded logical pen.
type Pen struct {
	Style PenStyle
	Cap   PenCap
	Join  PenJoin
	Width int // 논리 단위, 0은 1픽셀 펜
	Color color.RGBA
}

// DefaultPen returns the pen in effect before any pen is selected.
func DefaultPen() Pen {
	return Pen{
		Style: PenSolid,
		Cap:   CapRound,
		Join:  JoinRound,
		Width: 0,
		Color: color.RGBA{A: 0xFF},
	}
}

// Brush is a decoded logical brush.
type Brush struct {
	Style   BrushStyle
	Hatch   string      // set for hatched brushes
	Color   color.RGBA
	Pattern image.Image // set for DIB pattern brushes
}

// DefaultBrush returns the brush in effect before any brush is selected.
func DefaultBrush() Brush {
	return Brush{Style: BrushNull, Color: color.RGBA{A: 0xFF}}
}

// Font is a decoded logical font. Text is not rendered, the font is kept
// for diagnostics and for the text callbacks.
type Font struct {
	Height     int
	Width      int
	Escapement int // 1/10도 단위
	Weight     int
	Italic     bool
	Underline  bool
	StrikeOut  bool
	Charset    uint8
	FixedPitch bool
	Name       string
}

// Rotation returns the text rotation in degrees.
func (f Font) Rotation() float64 {
	return -float64(f.Escapement) / 10
}

// colorRef decodes a COLORREF (0x00BBGGRR).
func colorRef(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 0xFF}
}

// object is an entry of the metafile object table.
type object interface {
	apply(p Painter)
}

type penObject struct{ pen Pen }

func (o *penObject) apply(p Painter) { p.SetPen(o.pen) }

type brushObject struct{ brush Brush }

func (o *brushObject) apply(p Painter) { p.SetBrush(o.brush) }

type fontObject struct{ font Font }

func (o *fontObject) apply(p Painter) { p.SetFont(o.font) }

// emptyObject keeps object numbering in sync for palettes, regions and
// bitmaps.
type emptyObject struct{ kind string }

func (o *emptyObject) apply(Painter) {
	slog.Debug("[wmf] selected placeholder object", "kind", o.kind)
}

// objectTable is the handle table sized by the header's object count.
type objectTable struct {
	slots []object
}

func newObjectTable(n int) *objectTable {
	return &objectTable{slots: make([]object, n)}
}

// add stores o in the lowest free slot.
func (t *objectTable) add(o object) error {
	for i, s := range t.slots {
		if s == nil {
			t.slots[i] = o
			return nil
		}
	}
	return fmt.Errorf("%w: %d slots", ErrObjectTableFull, len(t.slots))
}

func (t *objectTable) get(idx int) (object, bool) {
	if idx < 0 || idx >= len(t.slots) || t.slots[idx] == nil {
		return nil, false
	}
	return t.slots[idx], true
}

func (t *objectTable) remove(idx int) bool {
	if _, ok := t.get(idx); !ok {
		return false
	}
	t.slots[idx] = nil
	return true
}

func (t *objectTable) len() int {
	n := 0
	for _, s := range t.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func decodePen(p *Params) Pen {
	style := p.U16()
	width := p.I16()
	p.Skip(2) // y 폭, 사용하지 않음
	c := p.U32()

	pen := DefaultPen()
	if s := PenStyle(style & penStyleMask); s <= PenInsideFrame {
		pen.Style = s
	} else {
		slog.Debug("[wmf] invalid pen style", "style", style)
	}
	if c := PenCap((style & penCapMask) >> 8); c <= CapFlat {
		pen.Cap = c
	} else {
		slog.Debug("[wmf] invalid pen cap style", "style", style)
	}
	if j := PenJoin((style & penJoinMask) >> 12); j <= JoinMiter {
		pen.Join = j
	} else {
		slog.Debug("[wmf] invalid pen join style", "style", style)
	}
	pen.Width = abs(width)
	pen.Color = colorRef(c)
	return pen
}

func decodeBrush(p *Params) Brush {
	style := p.U16()
	c := p.U32()
	hatch := p.U16()

	b := Brush{Style: BrushSolid, Color: colorRef(c)}
	switch {
	case BrushStyle(style) == BrushHatched:
		if name := HatchName(hatch); name != "" {
			b.Style = BrushHatched
			b.Hatch = name
		} else {
			slog.Debug("[wmf] invalid hatched brush", "hatch", hatch)
		}
	case BrushStyle(style) <= BrushDIBPattern8x8:
		b.Style = BrushStyle(style)
	default:
		slog.Debug("[wmf] invalid brush", "style", style)
	}
	return b
}

func decodeFont(p *Params) Font {
	f := Font{}
	f.Height = p.I16()
	f.Width = p.I16()
	f.Escapement = p.I16()
	p.Skip(2) // orientation
	f.Weight = p.I16()
	attrs := p.Bytes(8)
	if attrs != nil {
		f.Italic = attrs[0] != 0
		f.Underline = attrs[1] != 0
		f.StrikeOut = attrs[2] != 0
		f.Charset = attrs[3]
		f.FixedPitch = attrs[7]&0x03 == 0x01
	}
	f.Name = decodeANSI(p.Rest())
	return f
}
