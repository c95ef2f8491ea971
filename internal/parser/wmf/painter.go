package wmf

import (
	"image"
	"image/color"
)

// Painter receives the drawing calls decoded by Reader.Play. All
// coordinates are in device (logical metafile) units.
type Painter interface {
	Begin() error
	End() error

	Save()
	Restore()

	SetPen(pen Pen)
	Pen() Pen
	SetBrush(brush Brush)
	SetFont(font Font)
	SetBackgroundColor(c color.RGBA)
	SetBackgroundMode(mode int)
	SetRasterOp(op uint16)

	SetWindowOrg(left, top int)
	SetWindowExt(width, height int)

	SetClipRegion(r Region)
	ClipRegion() Region

	MoveTo(x, y int)
	LineTo(x, y int)
	DrawRect(x, y, w, h int)
	// DrawRoundRect takes the corner size as a percentage of the width and
	// height.
	DrawRoundRect(x, y, w, h, roundW, roundH int)
	DrawEllipse(x, y, w, h int)
	// DrawArc, DrawPie and DrawChord take angles in 1/16 degree.
	DrawArc(x, y, w, h, a, alen int)
	DrawPie(x, y, w, h, a, alen int)
	DrawChord(x, y, w, h, a, alen int)
	DrawPolyline(points []image.Point)
	DrawPolygon(points []image.Point, winding bool)
	DrawPolyPolygon(polygons [][]image.Point, winding bool)

	// DrawImage places img at (x, y). A negative w or h selects the image's
	// own size.
	DrawImage(x, y int, img image.Image, w, h int)
	DrawText(t Text)
}

// Text is a decoded text output record.
type Text struct {
	X, Y     int
	Text     string
	Align    uint16
	Color    color.RGBA
	Font     Font
	Rotation float64          // 도 단위
	Clip     *image.Rectangle // ETO_CLIPPED 사각형
}
