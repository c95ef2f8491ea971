package ir

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// ShapeType represents the kind of a shape.
type ShapeType string

const (
	ShapeTypePath    ShapeType = "path"
	ShapeTypeRect    ShapeType = "rect"
	ShapeTypeEllipse ShapeType = "ellipse"
	ShapeTypeImage   ShapeType = "image"
)

// Shape is a drawable element. Exactly one of Path, Rect, Ellipse or Image
// is set, according to Type.
type Shape struct {
	Type     ShapeType     `json:"type" yaml:"type"`
	ZIndex   int           `json:"z_index" yaml:"z_index"`
	Parent   string        `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position vec.Vec2      `json:"position" yaml:"position"`
	Size     Size          `json:"size" yaml:"size"`
	Stroke   *Stroke       `json:"stroke,omitempty" yaml:"stroke,omitempty"`
	Fill     *Fill         `json:"fill,omitempty" yaml:"fill,omitempty"`
	Path     *Path         `json:"path,omitempty" yaml:"path,omitempty"`
	Rect     *RectShape    `json:"rect,omitempty" yaml:"rect,omitempty"`
	Ellipse  *EllipseShape `json:"ellipse,omitempty" yaml:"ellipse,omitempty"`
	Image    *ImageShape   `json:"image,omitempty" yaml:"image,omitempty"`
}

// HasParent reports whether the shape is attached to a layer.
func (s *Shape) HasParent() bool {
	return s.Parent != ""
}

// String returns a one-line description of the shape.
func (s *Shape) String() string {
	return fmt.Sprintf("%s at (%.2f, %.2f) size %.2fx%.2f",
		s.Type, s.Position.X, s.Position.Y, s.Size.Width, s.Size.Height)
}

// NewPathShape creates a path shape whose position and size are the bounds of p.
func NewPathShape(p *Path) *Shape {
	b := p.Bounds()
	return &Shape{
		Type:     ShapeTypePath,
		Position: vec.Vec2{X: b.LLx, Y: b.LLy},
		Size:     Size{Width: b.Dx(), Height: b.Dy()},
		Path:     p,
	}
}

// NewRectShape creates a rectangle with optional rounded corners.
func NewRectShape(x, y, w, h, rx, ry float64) *Shape {
	return &Shape{
		Type:     ShapeTypeRect,
		Position: vec.Vec2{X: x, Y: y},
		Size:     Size{Width: w, Height: h},
		Rect:     &RectShape{CornerRadiusX: rx, CornerRadiusY: ry},
	}
}

// NewEllipseShape creates an ellipse or an elliptic segment. Angles are in
// degrees.
func NewEllipseShape(kind EllipseKind, x, y, w, h, start, end float64) *Shape {
	return &Shape{
		Type:     ShapeTypeEllipse,
		Position: vec.Vec2{X: x, Y: y},
		Size:     Size{Width: w, Height: h},
		Ellipse:  &EllipseShape{Kind: kind, StartAngle: start, EndAngle: end},
	}
}

// NewImageShape creates an image-backed shape referring to an entry of the
// document's image collection.
func NewImageShape(id string, x, y, w, h float64) *Shape {
	return &Shape{
		Type:     ShapeTypeImage,
		Position: vec.Vec2{X: x, Y: y},
		Size:     Size{Width: w, Height: h},
		Image: &ImageShape{
			ImageID:   id,
			Transform: matrix.Scale(w, h).Mul(matrix.Translate(x, y)),
		},
	}
}

// RectShape holds rectangle specific attributes.
type RectShape struct {
	CornerRadiusX float64 `json:"corner_radius_x,omitempty" yaml:"corner_radius_x,omitempty"`
	CornerRadiusY float64 `json:"corner_radius_y,omitempty" yaml:"corner_radius_y,omitempty"`
}

// EllipseKind selects which part of an ellipse is drawn.
type EllipseKind string

const (
	EllipseFull  EllipseKind = "full"
	EllipseArc   EllipseKind = "arc"
	EllipsePie   EllipseKind = "pie"
	EllipseChord EllipseKind = "chord"
)

// EllipseShape holds ellipse specific attributes.
type EllipseShape struct {
	Kind       EllipseKind `json:"kind" yaml:"kind"`
	StartAngle float64     `json:"start_angle,omitempty" yaml:"start_angle,omitempty"`
	EndAngle   float64     `json:"end_angle,omitempty" yaml:"end_angle,omitempty"`
}

// ImageShape places an image. Transform maps the unit square onto the
// shape's rectangle.
type ImageShape struct {
	ImageID   string        `json:"image_id" yaml:"image_id"`
	Transform matrix.Matrix `json:"transform" yaml:"transform"`
}

// FillRule decides which regions of a self-intersecting path are inside.
type FillRule string

const (
	FillRuleEvenOdd FillRule = "evenodd"
	FillRuleNonZero FillRule = "nonzero"
)

// SegmentOp is a path construction operator.
type SegmentOp string

const (
	OpMoveTo SegmentOp = "M"
	OpLineTo SegmentOp = "L"
	OpClose  SegmentOp = "Z"
)

// Segment is one step of a path.
type Segment struct {
	Op    SegmentOp `json:"op" yaml:"op"`
	Point vec.Vec2  `json:"point,omitempty" yaml:"point,omitempty"`
}

// Path is a sequence of straight line subpaths.
type Path struct {
	Segments []Segment `json:"segments" yaml:"segments"`
	FillRule FillRule  `json:"fill_rule,omitempty" yaml:"fill_rule,omitempty"`
}

// NewPath creates an empty path with the even-odd fill rule.
func NewPath() *Path {
	return &Path{FillRule: FillRuleEvenOdd}
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpMoveTo, Point: vec.Vec2{X: x, Y: y}})
}

// LineTo adds a straight line to the current subpath.
func (p *Path) LineTo(x, y float64) {
	p.Segments = append(p.Segments, Segment{Op: OpLineTo, Point: vec.Vec2{X: x, Y: y}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Segments = append(p.Segments, Segment{Op: OpClose})
}

// SetFillRule sets the fill rule.
func (p *Path) SetFillRule(r FillRule) {
	p.FillRule = r
}

// Combine appends the subpaths of other to p.
func (p *Path) Combine(other *Path) {
	p.Segments = append(p.Segments, other.Segments...)
}

// Bounds returns the bounding box of all points on the path.
func (p *Path) Bounds() rect.Rect {
	b := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	n := 0
	for _, s := range p.Segments {
		if s.Op == OpClose {
			continue
		}
		n++
		b.LLx = math.Min(b.LLx, s.Point.X)
		b.LLy = math.Min(b.LLy, s.Point.Y)
		b.URx = math.Max(b.URx, s.Point.X)
		b.URy = math.Max(b.URy, s.Point.Y)
	}
	if n == 0 {
		return rect.Rect{}
	}
	return b
}

// Points returns the points of all move and line segments.
func (p *Path) Points() []vec.Vec2 {
	pts := make([]vec.Vec2, 0, len(p.Segments))
	for _, s := range p.Segments {
		if s.Op != OpClose {
			pts = append(pts, s.Point)
		}
	}
	return pts
}
