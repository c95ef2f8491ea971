package wmf

import "image"

// Region is a clip region made of non-overlapping rectangles in device
// units. The zero value is the empty region.
type Region struct {
	Rects []image.Rectangle
}

// RectRegion returns a region covering r.
func RectRegion(r image.Rectangle) Region {
	r = r.Canon()
	if r.Empty() {
		return Region{}
	}
	return Region{Rects: []image.Rectangle{r}}
}

// Empty reports whether the region covers nothing.
func (g Region) Empty() bool {
	return len(g.Rects) == 0
}

// Bounds returns the smallest rectangle containing the region.
func (g Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, r := range g.Rects {
		b = b.Union(r)
	}
	return b
}

// Intersect returns the part of g inside r.
func (g Region) Intersect(r image.Rectangle) Region {
	r = r.Canon()
	var out Region
	for _, s := range g.Rects {
		if x := s.Intersect(r); !x.Empty() {
			out.Rects = append(out.Rects, x)
		}
	}
	return out
}

// Subtract returns the part of g outside r.
func (g Region) Subtract(r image.Rectangle) Region {
	r = r.Canon()
	var out Region
	for _, s := range g.Rects {
		x := s.Intersect(r)
		if x.Empty() {
			out.Rects = append(out.Rects, s)
			continue
		}
		// 위, 아래, 왼쪽, 오른쪽 조각
		pieces := []image.Rectangle{
			image.Rect(s.Min.X, s.Min.Y, s.Max.X, x.Min.Y),
			image.Rect(s.Min.X, x.Max.Y, s.Max.X, s.Max.Y),
			image.Rect(s.Min.X, x.Min.Y, x.Min.X, x.Max.Y),
			image.Rect(x.Max.X, x.Min.Y, s.Max.X, x.Max.Y),
		}
		for _, p := range pieces {
			if !p.Empty() {
				out.Rects = append(out.Rects, p)
			}
		}
	}
	return out
}

// Area returns the number of device units covered by the region.
func (g Region) Area() int {
	n := 0
	for _, r := range g.Rects {
		n += r.Dx() * r.Dy()
	}
	return n
}
