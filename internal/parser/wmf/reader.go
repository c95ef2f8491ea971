package wmf

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/hashicorp/go-metrics"
)

// Reader tokenizes a metafile and plays its records into a Painter.
type Reader struct {
	header     *Header
	data       []byte
	defaultDPI int
}

// Load parses the metafile header in data.
func Load(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidHeader)
	}
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	return &Reader{header: h, data: data, defaultDPI: DefaultDPI}, nil
}

// SetDefaultDPI sets the resolution used when the metafile carries none.
func (r *Reader) SetDefaultDPI(dpi int) {
	if dpi > 0 {
		r.defaultDPI = dpi
	}
}

// Header returns the parsed header.
func (r *Reader) Header() *Header {
	return r.header
}

// BoundingBox returns the metafile's bounding rectangle in device units.
func (r *Reader) BoundingBox() image.Rectangle {
	return r.header.BBox
}

// IsStandard returns true if the metafile has no placeable header.
func (r *Reader) IsStandard() bool {
	return r.header.Standard
}

// IsPlaceable returns true if the metafile has a placeable header.
func (r *Reader) IsPlaceable() bool {
	return r.header.IsPlaceable()
}

// DPI returns the metafile resolution in device units per inch.
func (r *Reader) DPI() int {
	if inch := r.header.Inch(); inch > 0 {
		return inch
	}
	return r.defaultDPI
}

// Records returns all records of the metafile body.
func (r *Reader) Records() ([]*Record, error) {
	return NewRecordReader(r.data[r.header.FirstRecord:], r.header.FirstRecord).ReadAll()
}

// playState is the per-playback state that is not part of the painter.
type playState struct {
	p         Painter
	objects   *objectTable
	winOrg    image.Point
	winExt    image.Point
	winding   bool
	textAlign uint16
	textColor color.RGBA
	font      Font
}

// Play decodes every record and calls the matching Painter methods. It stops
// at the EOF record, at the end of the data, or at the first broken record.
func (r *Reader) Play(p Painter) (err error) {
	start := time.Now()
	labels := labelsFor(r.header)
	metrics.IncrCounterWithLabels(mKeyPlayTotal, 1, labels)
	defer func() {
		metrics.MeasureSinceWithLabels(mKeyPlayDurations, start, labels)
		if err != nil {
			metrics.IncrCounterWithLabels(mKeyPlayErrorsTotal, 1, labels)
		}
	}()

	bbox := r.header.BBox
	st := &playState{
		p:         p,
		objects:   newObjectTable(int(r.header.Meta.NumObjects)),
		winOrg:    bbox.Min,
		winExt:    bbox.Size(),
		textColor: color.RGBA{A: 0xFF},
	}

	slog.Debug("[wmf] play",
		"standard", r.header.Standard,
		"bbox", bbox,
		"dpi", r.DPI(),
		"objects", r.header.Meta.NumObjects)

	if err := p.Begin(); err != nil {
		return fmt.Errorf("failed to begin playback: %w", err)
	}

	rr := NewRecordReader(r.data[r.header.FirstRecord:], r.header.FirstRecord)
	count := 0
	for {
		rec, rerr := rr.Read()
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			err = rerr
			break
		}
		count++
		if rec.Function == FuncEOF {
			break
		}
		if derr := st.dispatch(rec); derr != nil {
			err = fmt.Errorf("record %s at offset %d: %w", rec.Name(), rec.Offset, derr)
			break
		}
	}
	metrics.IncrCounterWithLabels(mKeyRecordsTotal, float32(count), labels)

	if endErr := p.End(); endErr != nil && err == nil {
		err = fmt.Errorf("failed to end playback: %w", endErr)
	}
	return err
}

func (st *playState) dispatch(rec *Record) error {
	if !knownFunction(rec.Function) {
		return ErrUnknownRecord
	}

	p := st.p
	a := rec.Params()

	switch rec.Function {
	// 윈도우
	case FuncSetWindowOrg:
		y, x := a.I16(), a.I16()
		if a.Err() == nil {
			st.winOrg = image.Pt(x, y)
			p.SetWindowOrg(x, y)
		}
	case FuncSetWindowExt:
		h, w := a.I16(), a.I16()
		if a.Err() == nil {
			st.winExt = image.Pt(w, h)
			p.SetWindowExt(w, h)
		}
	case FuncOffsetWindowOrg:
		dy, dx := a.I16(), a.I16()
		if a.Err() == nil {
			st.winOrg = st.winOrg.Add(image.Pt(dx, dy))
			p.SetWindowOrg(st.winOrg.X, st.winOrg.Y)
		}
	case FuncScaleWindowExt:
		yDenom, yNum, xDenom, xNum := a.I16(), a.I16(), a.I16(), a.I16()
		if a.Err() == nil && xDenom != 0 && yDenom != 0 {
			st.winExt = image.Pt(st.winExt.X*xNum/xDenom, st.winExt.Y*yNum/yDenom)
			p.SetWindowExt(st.winExt.X, st.winExt.Y)
		}

	// 도형
	case FuncMoveTo:
		y, x := a.I16(), a.I16()
		if a.Err() == nil {
			p.MoveTo(x, y)
		}
	case FuncLineTo:
		y, x := a.I16(), a.I16()
		if a.Err() == nil {
			p.LineTo(x, y)
		}
	case FuncRectangle:
		r := a.Rect()
		if a.Err() == nil {
			p.DrawRect(r.Min.X, r.Min.Y, r.Max.X-r.Min.X, r.Max.Y-r.Min.Y)
		}
	case FuncEllipse:
		r := a.Rect()
		if a.Err() == nil {
			p.DrawEllipse(r.Min.X, r.Min.Y, r.Max.X-r.Min.X, r.Max.Y-r.Min.Y)
		}
	case FuncRoundRect:
		hCorner, wCorner := int(a.U16()), int(a.U16())
		r := a.Rect()
		if a.Err() == nil {
			w, h := r.Max.X-r.Min.X, r.Max.Y-r.Min.Y
			xRnd, yRnd := 0, 0
			if w != 0 {
				xRnd = wCorner * 100 / w
			}
			if h != 0 {
				yRnd = hCorner * 100 / h
			}
			p.DrawRoundRect(r.Min.X, r.Min.Y, w, h, xRnd, yRnd)
		}
	case FuncArc, FuncPie, FuncChord:
		yEnd, xEnd, yStart, xStart := a.I16(), a.I16(), a.I16(), a.I16()
		r := a.Rect()
		if a.Err() != nil {
			break
		}
		w, h := r.Max.X-r.Min.X, r.Max.Y-r.Min.Y
		xc, yc := r.Min.X+w/2, r.Min.Y+h/2
		ang, alen := xyToAngle(xStart-xc, yc-yStart, xEnd-xc, yc-yEnd)
		switch rec.Function {
		case FuncArc:
			p.DrawArc(r.Min.X, r.Min.Y, w, h, ang, alen)
		case FuncPie:
			p.DrawPie(r.Min.X, r.Min.Y, w, h, ang, alen)
		default:
			p.DrawChord(r.Min.X, r.Min.Y, w, h, ang, alen)
		}
	case FuncPolygon:
		pts := a.Points(int(a.U16()))
		if a.Err() == nil {
			p.DrawPolygon(pts, st.winding)
		}
	case FuncPolyline:
		pts := a.Points(int(a.U16()))
		if a.Err() == nil {
			p.DrawPolyline(pts)
		}
	case FuncPolyPolygon:
		n := int(a.U16())
		sizes := make([]int, 0, n)
		for i := 0; i < n && a.Err() == nil; i++ {
			sizes = append(sizes, int(a.U16()))
		}
		polys := make([][]image.Point, 0, n)
		for _, size := range sizes {
			polys = append(polys, a.Points(size))
		}
		if a.Err() == nil {
			p.DrawPolyPolygon(polys, st.winding)
		}
	case FuncSetPixel:
		c := a.U32()
		y, x := a.I16(), a.I16()
		if a.Err() == nil {
			old := p.Pen()
			pen := old
			pen.Color = colorRef(c)
			p.SetPen(pen)
			p.MoveTo(x, y)
			p.LineTo(x, y)
			p.SetPen(old)
		}

	// 그래픽 상태
	case FuncSetPolyFillMode:
		// ALTERNATE = 1, WINDING = 2
		st.winding = a.U16() == 2
	case FuncSetBkColor:
		c := a.U32()
		if a.Err() == nil {
			p.SetBackgroundColor(colorRef(c))
		}
	case FuncSetBkMode:
		mode := a.U16()
		if a.Err() == nil {
			if mode == BkTransparent {
				p.SetBackgroundMode(BkTransparent)
			} else {
				p.SetBackgroundMode(BkOpaque)
			}
		}
	case FuncSetROP2:
		op := a.U16()
		if a.Err() == nil {
			p.SetRasterOp(op)
		}
	case FuncSaveDC:
		p.Save()
	case FuncRestoreDC:
		n := a.I16()
		for i := 0; i > n; i-- {
			p.Restore()
		}
	case FuncIntersectClipRect, FuncExcludeClipRect:
		r := a.Rect()
		if a.Err() != nil {
			break
		}
		region := p.ClipRegion()
		switch {
		case region.Empty():
			region = RectRegion(r)
		case rec.Function == FuncIntersectClipRect:
			region = region.Intersect(r)
		default:
			region = region.Subtract(r)
		}
		p.SetClipRegion(region)

	// 텍스트
	case FuncSetTextColor:
		c := a.U32()
		if a.Err() == nil {
			st.textColor = colorRef(c)
		}
	case FuncSetTextAlign:
		st.textAlign = a.U16()
	case FuncTextOut:
		n := a.I16()
		raw := a.Bytes(n)
		a.Skip(n % 2)
		y, x := a.I16(), a.I16()
		if a.Err() == nil {
			p.DrawText(st.text(x, y, raw, nil))
		}
	case FuncExtTextOut:
		y, x := a.I16(), a.I16()
		n := a.I16()
		opts := a.U16()
		var clip *image.Rectangle
		if opts&(etoOpaque|etoClipped) != 0 {
			l, t, r, b := a.I16(), a.I16(), a.I16(), a.I16()
			rect := image.Rect(l, t, r, b)
			clip = &rect
		}
		raw := a.Bytes(n)
		if a.Err() == nil {
			p.DrawText(st.text(x, y, raw, clip))
		}

	// 비트맵
	case FuncDIBBitBlt:
		raster := a.U32()
		ySrc, xSrc, h, w := a.I16(), a.I16(), a.I16(), a.I16()
		yDst, xDst := a.I16(), a.I16()
		if a.Err() != nil {
			break
		}
		if a.Remaining() < 40 {
			slog.Debug("[wmf] DIBBITBLT without bitmap not supported")
			metrics.IncrCounter(mKeyUnsupportedTotal, 1)
			break
		}
		st.blit(raster, a.Rest(), xSrc, ySrc, w, h, xDst, yDst, abs(w), abs(h))
	case FuncDIBStretchBlt:
		raster := a.U32()
		hSrc, wSrc, ySrc, xSrc := a.I16(), a.I16(), a.I16(), a.I16()
		hDst, wDst, yDst, xDst := a.I16(), a.I16(), a.I16(), a.I16()
		if a.Err() == nil {
			st.blit(raster, a.Rest(), xSrc, ySrc, wSrc, hSrc, xDst, yDst, wDst, hDst)
		}
	case FuncStretchDIB:
		raster := a.U32()
		a.Skip(2) // ColorUsage
		hSrc, wSrc, ySrc, xSrc := a.I16(), a.I16(), a.I16(), a.I16()
		hDst, wDst, yDst, xDst := a.I16(), a.I16(), a.I16(), a.I16()
		if a.Err() == nil {
			st.blit(raster, a.Rest(), xSrc, ySrc, wSrc, hSrc, xDst, yDst, wDst, hDst)
		}

	// 오브젝트
	case FuncSelectObject:
		idx := int(a.U16())
		if o, ok := st.objects.get(idx); ok {
			o.apply(p)
		} else {
			slog.Debug("[wmf] selection of an empty object", "index", idx)
		}
	case FuncDeleteObject:
		idx := int(a.U16())
		if !st.objects.remove(idx) {
			slog.Debug("[wmf] delete of an empty object", "index", idx)
		}
	case FuncCreatePenIndirect:
		pen := decodePen(a)
		return st.objects.add(&penObject{pen: pen})
	case FuncCreateBrushIndirect:
		brush := decodeBrush(a)
		return st.objects.add(&brushObject{brush: brush})
	case FuncCreateFontIndirect:
		font := decodeFont(a)
		st.font = font
		return st.objects.add(&fontObject{font: font})
	case FuncDIBCreatePatternBrush:
		a.Skip(4) // Style, ColorUsage
		brush := Brush{Style: BrushDIBPattern, Color: color.RGBA{A: 0xFF}}
		if img, err := decodeDIB(a.Rest()); err == nil {
			brush.Pattern = img
		} else {
			slog.Debug("[wmf] incorrect DIB pattern brush", "error", err)
		}
		return st.objects.add(&brushObject{brush: brush})
	case FuncCreatePalette:
		return st.objects.add(&emptyObject{kind: "palette"})
	case FuncCreateRegion:
		return st.objects.add(&emptyObject{kind: "region"})
	case FuncCreateBitmap, FuncCreateBitmapIndirect:
		return st.objects.add(&emptyObject{kind: "bitmap"})
	case FuncCreatePatternBrush:
		return st.objects.add(&emptyObject{kind: "pattern brush"})

	default:
		slog.Debug("[wmf] unsupported record", "function", rec.Name(), "offset", rec.Offset)
		metrics.IncrCounter(mKeyUnsupportedTotal, 1)
	}

	return a.Err()
}

func (st *playState) text(x, y int, raw []byte, clip *image.Rectangle) Text {
	return Text{
		X:        x,
		Y:        y,
		Text:     decodeANSI(raw),
		Align:    st.textAlign,
		Color:    st.textColor,
		Font:     st.font,
		Rotation: st.font.Rotation(),
		Clip:     clip,
	}
}

// blit decodes the DIB of a bitmap record and draws the selected source
// part at the destination. Negative destination extents mirror the image.
func (st *playState) blit(raster uint32, dib []byte, xSrc, ySrc, wSrc, hSrc, xDst, yDst, wDst, hDst int) {
	img, err := decodeDIB(dib)
	if err != nil {
		slog.Debug("[wmf] invalid bitmap", "error", err)
		return
	}
	slog.Debug("[wmf] blit", "raster", fmt.Sprintf("0x%08X", raster))

	out := toRGBA(cropImage(img, xSrc, ySrc, wSrc, hSrc))
	if wDst < 0 || hDst < 0 {
		out = mirror(out, wDst < 0, hDst < 0)
	}
	if wDst < 0 {
		xDst += wDst
	}
	if hDst < 0 {
		yDst += hDst
	}
	st.p.DrawImage(xDst, yDst, out, abs(wDst), abs(hDst))
}

// xyToAngle converts start and end radials, relative to the ellipse
// center with y pointing up, to a start angle and sweep in 1/16 degree.
func xyToAngle(xStart, yStart, xEnd, yEnd int) (start, length int) {
	aStart := math.Atan2(float64(yStart), float64(xStart))
	aLength := math.Atan2(float64(yEnd), float64(xEnd)) - aStart

	start = int(math.Round(aStart * 2880 / math.Pi))
	length = int(math.Round(aLength * 2880 / math.Pi))
	if length < 0 {
		length += 5760
	}
	return start, length
}
