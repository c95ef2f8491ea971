package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// Black is the zero color.
var Black = Color{}

// RGB creates a color from its components.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// Hex returns the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	s := strings.TrimPrefix(string(b), "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid color: %q", string(b))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", string(b), err)
	}
	c.R, c.G, c.B = uint8(v>>16), uint8(v>>8), uint8(v)
	return nil
}

// DashStyle is the dash pattern of a stroke.
type DashStyle string

const (
	DashSolid      DashStyle = "solid"
	DashDash       DashStyle = "dash"
	DashDot        DashStyle = "dot"
	DashDashDot    DashStyle = "dash-dot"
	DashDashDotDot DashStyle = "dash-dot-dot"
)

// LineCap is the shape of open stroke ends.
type LineCap string

const (
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
	CapFlat   LineCap = "flat"
)

// LineJoin is the shape of stroke corners.
type LineJoin string

const (
	JoinRound LineJoin = "round"
	JoinBevel LineJoin = "bevel"
	JoinMiter LineJoin = "miter"
)

// Stroke describes how a shape's outline is drawn.
type Stroke struct {
	Color Color     `json:"color" yaml:"color"`
	Width float64   `json:"width" yaml:"width"`
	Dash  DashStyle `json:"dash" yaml:"dash"`
	Cap   LineCap   `json:"cap" yaml:"cap"`
	Join  LineJoin  `json:"join" yaml:"join"`
}

// Fill describes how a shape's interior is painted. Hatch and ImageID are
// mutually exclusive.
type Fill struct {
	Color   Color  `json:"color" yaml:"color"`
	Hatch   string `json:"hatch,omitempty" yaml:"hatch,omitempty"`
	ImageID string `json:"image_id,omitempty" yaml:"image_id,omitempty"`
}
