package wmf

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/hashicorp/go-metrics"

	"github.com/roboco-io/koimport/internal/ir"
)

// DefaultLayerName is the layer that receives shapes without a parent.
const DefaultLayerName = "Layer"

// Sink receives the shapes produced by an Importer. *ir.Document implements
// it.
type Sink interface {
	Layers() []*ir.Layer
	InsertLayer(l *ir.Layer)
	Add(s *ir.Shape)
	Shapes() []*ir.Shape
	PageSize() ir.Size
	SetPageSize(s ir.Size)
	SetUnit(u ir.Unit)
	Images() *ir.ImageCollection
}

// graphicsState는 SaveDC/RestoreDC로 저장되는 상태
type graphicsState struct {
	pen      Pen
	brush    Brush
	font     Font
	bgColor  color.RGBA
	bgMode   int
	rasterOp uint16
	clip     Region
	origin   image.Point
	scaleX   float64
	scaleY   float64
}

// Importer is a Painter that converts drawing calls into document shapes
// with the metafile's origin and scale applied.
type Importer struct {
	reader *Reader
	sink   Sink
	labels []metrics.Label

	bbox       image.Rectangle
	isStandard bool
	page       ir.Size
	position   image.Point

	graphicsState
	stack []graphicsState
}

// NewImporter creates an importer for the given reader.
func NewImporter(r *Reader) *Importer {
	return &Importer{
		reader: r,
		labels: labelsFor(r.Header()),
		graphicsState: graphicsState{
			pen:    DefaultPen(),
			brush:  DefaultBrush(),
			bgMode: BkTransparent,
			scaleX: 1,
			scaleY: 1,
		},
	}
}

// Play runs the reader into doc. Shapes without a parent are stacked in
// creation order on a default layer afterwards.
func (im *Importer) Play(doc Sink) error {
	im.sink = doc
	defer func() { im.sink = nil }()

	if err := im.reader.Play(im); err != nil {
		return fmt.Errorf("failed to play metafile: %w", err)
	}

	var layer *ir.Layer
	if layers := doc.Layers(); len(layers) > 0 {
		layer = layers[0]
	} else {
		layer = ir.NewLayer(DefaultLayerName)
		doc.InsertLayer(layer)
	}

	z := 0
	for _, s := range doc.Shapes() {
		if s.HasParent() {
			continue
		}
		z++
		s.ZIndex = z
		layer.Attach(s)
	}
	return nil
}

// Begin implements Painter.
func (im *Importer) Begin() error {
	if im.sink == nil {
		return fmt.Errorf("importer has no sink")
	}
	im.bbox = im.reader.BoundingBox()
	im.isStandard = im.reader.IsStandard()

	w, h := float64(im.bbox.Dx()), float64(im.bbox.Dy())
	if im.isStandard {
		im.sink.SetUnit(ir.UnitPoint)
		im.page = ir.Size{Width: w, Height: h}
	} else {
		// placeable: 인치당 DPI 단위를 포인트로 변환
		dpi := float64(im.reader.DPI())
		im.sink.SetUnit(ir.UnitMillimeter)
		im.page = ir.Size{Width: w / dpi * 72, Height: h / dpi * 72}
	}
	im.sink.SetPageSize(im.page)

	if w != 0 {
		im.scaleX = im.page.Width / w
	}
	if h != 0 {
		im.scaleY = im.page.Height / h
	}
	im.origin = im.bbox.Min

	slog.Debug("[wmf] import begin",
		"standard", im.isStandard,
		"page", im.page,
		"scaleX", im.scaleX,
		"scaleY", im.scaleY)
	return nil
}

// End implements Painter.
func (im *Importer) End() error {
	im.stack = nil
	return nil
}

func (im *Importer) Save() {
	im.stack = append(im.stack, im.graphicsState)
}

func (im *Importer) Restore() {
	if len(im.stack) == 0 {
		slog.Debug("[wmf] restore without save")
		return
	}
	im.graphicsState = im.stack[len(im.stack)-1]
	im.stack = im.stack[:len(im.stack)-1]
}

func (im *Importer) SetPen(pen Pen) { im.pen = pen }
func (im *Importer) Pen() Pen { return im.pen }
func (im *Importer) SetBrush(brush Brush) { im.brush = brush }
func (im *Importer) SetFont(font Font) { im.font = font }
func (im *Importer) SetRasterOp(op uint16) { im.rasterOp = op }

func (im *Importer) SetBackgroundColor(c color.RGBA) { im.bgColor = c }
func (im *Importer) SetBackgroundMode(mode int) { im.bgMode = mode }

// 클립 영역은 기록만 하고 적용하지 않는다
func (im *Importer) SetClipRegion(r Region) { im.clip = r }
func (im *Importer) ClipRegion() Region { return im.clip }

// SetWindowOrg sets the logical origin.
func (im *Importer) SetWindowOrg(left, top int) {
	im.origin = image.Pt(left, top)
}

// SetWindowExt rescales the page onto the new window extent. A zero
// extent leaves the scale unchanged.
func (im *Importer) SetWindowExt(width, height int) {
	if width == 0 || height == 0 {
		slog.Debug("[wmf] ignoring empty window extent", "width", width, "height", height)
		return
	}
	im.scaleX = im.page.Width / float64(width)
	im.scaleY = im.page.Height / float64(height)
}

func (im *Importer) MoveTo(x, y int) {
	im.position = image.Pt(x, y)
}

func (im *Importer) LineTo(x, y int) {
	p := ir.NewPath()
	p.MoveTo(im.coordX(im.position.X), im.coordY(im.position.Y))
	p.LineTo(im.coordX(x), im.coordY(y))

	s := ir.NewPathShape(p)
	im.appendPen(s)
	im.add(s)

	im.position = image.Pt(x, y)
}

func (im *Importer) DrawRect(x, y, w, h int) {
	rx, ry, rw, rh := im.rect(x, y, w, h)
	s := ir.NewRectShape(rx, ry, rw, rh, 0, 0)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

// DrawRoundRect maps the corner percentages onto the rectangle's corner
// radius, expressed as a percentage of the half side.
func (im *Importer) DrawRoundRect(x, y, w, h, roundW, roundH int) {
	rx, ry, rw, rh := im.rect(x, y, w, h)
	s := ir.NewRectShape(rx, ry, rw, rh, float64(2*abs(roundW)), float64(2*abs(roundH)))
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

func (im *Importer) DrawEllipse(x, y, w, h int) {
	rx, ry, rw, rh := im.rect(x, y, w, h)
	s := ir.NewEllipseShape(ir.EllipseFull, rx, ry, rw, rh, 0, 0)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

func (im *Importer) DrawArc(x, y, w, h, a, alen int) {
	s := im.segment(ir.EllipseArc, x, y, w, h, a, alen)
	im.appendPen(s)
	im.add(s)
}

func (im *Importer) DrawPie(x, y, w, h, a, alen int) {
	s := im.segment(ir.EllipsePie, x, y, w, h, a, alen)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

func (im *Importer) DrawChord(x, y, w, h, a, alen int) {
	s := im.segment(ir.EllipseChord, x, y, w, h, a, alen)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

func (im *Importer) DrawPolyline(points []image.Point) {
	p := im.path(points)
	if p == nil {
		return
	}
	s := ir.NewPathShape(p)
	im.appendPen(s)
	im.add(s)
}

func (im *Importer) DrawPolygon(points []image.Point, winding bool) {
	p := im.path(points)
	if p == nil {
		return
	}
	p.Close()
	p.SetFillRule(fillRule(winding))

	s := ir.NewPathShape(p)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

// DrawPolyPolygon combines all polygons into one path.
func (im *Importer) DrawPolyPolygon(polygons [][]image.Point, winding bool) {
	var p *ir.Path
	for _, pts := range polygons {
		sub := im.path(pts)
		if sub == nil {
			continue
		}
		sub.Close()
		if p == nil {
			p = sub
		} else {
			p.Combine(sub)
		}
	}
	if p == nil {
		return
	}
	p.SetFillRule(fillRule(winding))

	s := ir.NewPathShape(p)
	im.appendPen(s)
	im.appendBrush(s)
	im.add(s)
}

// DrawImage stores img in the sink's image collection and places it at the
// transformed position.
func (im *Importer) DrawImage(x, y int, img image.Image, w, h int) {
	block, err := im.sink.Images().Add(img)
	if err != nil {
		slog.Warn("[wmf] failed to store image", "error", err)
		return
	}

	b := img.Bounds()
	if w < 0 {
		w = b.Dx()
	}
	if h < 0 {
		h = b.Dy()
	}
	s := ir.NewImageShape(block.ID, im.coordX(x), im.coordY(y), im.scaleW(w), im.scaleH(h))
	im.add(s)
	metrics.IncrCounterWithLabels(mKeyImagesTotal, 1, im.labels)
}

// DrawText does not produce shapes.
func (im *Importer) DrawText(t Text) {
	slog.Debug("[wmf] text is not imported",
		"text", t.Text,
		"x", t.X,
		"y", t.Y,
		"font", t.Font.Name)
}

func (im *Importer) add(s *ir.Shape) {
	im.sink.Add(s)
	metrics.IncrCounterWithLabels(mKeyShapesTotal, 1, im.labels)
}

func (im *Importer) segment(kind ir.EllipseKind, x, y, w, h, a, alen int) *ir.Shape {
	rx, ry, rw, rh := im.rect(x, y, w, h)
	start := float64(a) * 180 / 2880
	end := start + float64(alen)*180/2880
	return ir.NewEllipseShape(kind, rx, ry, rw, rh, start, end)
}

// path returns the transformed open path through points, or nil when
// there are none.
func (im *Importer) path(points []image.Point) *ir.Path {
	if len(points) == 0 {
		return nil
	}
	p := ir.NewPath()
	p.MoveTo(im.coordX(points[0].X), im.coordY(points[0].Y))
	for _, pt := range points[1:] {
		p.LineTo(im.coordX(pt.X), im.coordY(pt.Y))
	}
	return p
}

// rect transforms and normalizes a device rectangle.
func (im *Importer) rect(x, y, w, h int) (rx, ry, rw, rh float64) {
	rx, ry = im.coordX(x), im.coordY(y)
	rw, rh = im.scaleW(w), im.scaleH(h)
	if rw < 0 {
		rx, rw = rx+rw, -rw
	}
	if rh < 0 {
		ry, rh = ry+rh, -rh
	}
	return rx, ry, rw, rh
}

func (im *Importer) appendPen(s *ir.Shape) {
	if im.pen.Style == PenNull {
		return
	}
	width := float64(im.pen.Width) * im.scaleX
	if width < 0.99 {
		width = 1
	}
	s.Stroke = &ir.Stroke{
		Color: irColor(im.pen.Color),
		Width: width,
		Dash:  dashStyle(im.pen.Style),
		Cap:   lineCap(im.pen.Cap),
		Join:  lineJoin(im.pen.Join),
	}
}

func (im *Importer) appendBrush(s *ir.Shape) {
	switch im.brush.Style {
	case BrushNull:
		return
	case BrushHatched:
		s.Fill = &ir.Fill{Color: irColor(im.brush.Color), Hatch: im.brush.Hatch}
	default:
		if im.brush.Pattern != nil {
			block, err := im.sink.Images().Add(im.brush.Pattern)
			if err == nil {
				s.Fill = &ir.Fill{Color: irColor(im.brush.Color), ImageID: block.ID}
				return
			}
			slog.Warn("[wmf] failed to store pattern brush", "error", err)
		}
		s.Fill = &ir.Fill{Color: irColor(im.brush.Color)}
	}
}

func (im *Importer) coordX(v int) float64 {
	return float64(v-im.origin.X) * im.scaleX
}

func (im *Importer) coordY(v int) float64 {
	return float64(v-im.origin.Y) * im.scaleY
}

func (im *Importer) scaleW(w int) float64 {
	return float64(w) * im.scaleX
}

func (im *Importer) scaleH(h int) float64 {
	return float64(h) * im.scaleY
}

func fillRule(winding bool) ir.FillRule {
	if winding {
		return ir.FillRuleNonZero
	}
	return ir.FillRuleEvenOdd
}

func irColor(c color.RGBA) ir.Color {
	return ir.RGB(c.R, c.G, c.B)
}

func dashStyle(s PenStyle) ir.DashStyle {
	switch s {
	case PenDash:
		return ir.DashDash
	case PenDot:
		return ir.DashDot
	case PenDashDot:
		return ir.DashDashDot
	case PenDashDotDot:
		return ir.DashDashDotDot
	default:
		return ir.DashSolid
	}
}

func lineCap(c PenCap) ir.LineCap {
	switch c {
	case CapSquare:
		return ir.CapSquare
	case CapFlat:
		return ir.CapFlat
	default:
		return ir.CapRound
	}
}

func lineJoin(j PenJoin) ir.LineJoin {
	switch j {
	case JoinBevel:
		return ir.JoinBevel
	case JoinMiter:
		return ir.JoinMiter
	default:
		return ir.JoinRound
	}
}

var _ Painter = (*Importer)(nil)
