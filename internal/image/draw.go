package image

import (
	"image"
	"image/color"
	"math"
)

// BrushRect returns the square covered by a brush of the given thickness
// centered on p. Thickness below 1 is treated as 1.
func BrushRect(p image.Point, thickness int) image.Rectangle {
	if thickness < 1 {
		thickness = 1
	}
	tl := image.Pt(p.X-thickness/2, p.Y-thickness/2)
	return image.Rectangle{Min: tl, Max: tl.Add(image.Pt(thickness, thickness))}
}

// DrawSegment strokes a square brush from p0 to p1. With p0 nil it stamps a
// single square on p1. The stroke is clipped to the buffer; the returned
// rectangle covers every pixel written and is empty when nothing was.
func (b *Buffer) DrawSegment(p0 *image.Point, p1 image.Point, c color.NRGBA, thickness int) image.Rectangle {
	if b.IsNull() {
		return image.Rectangle{}
	}
	start := p1
	if p0 != nil {
		start = *p0
	}
	// Points further than a brush width outside the buffer paint nothing.
	start, end, ok := clipSegment(start, p1, b.img.Rect.Inset(-max(thickness, 1)))
	if !ok {
		return image.Rectangle{}
	}

	var dirty image.Rectangle
	bresenham(start, end, func(p image.Point) {
		r := BrushRect(p, thickness).Intersect(b.img.Rect)
		if r.Empty() {
			return
		}
		fillRect(b.img, r, c)
		dirty = dirty.Union(r)
	})
	return dirty
}

// FillRect fills the axis-aligned rectangle spanned by two corners, both
// inclusive, so equal corners fill one pixel. Returns the clipped area.
func (b *Buffer) FillRect(p0, p1 image.Point, c color.NRGBA) image.Rectangle {
	if b.IsNull() {
		return image.Rectangle{}
	}
	bounds := b.img.Rect
	x0 := max(min(p0.X, p1.X), bounds.Min.X)
	y0 := max(min(p0.Y, p1.Y), bounds.Min.Y)
	x1 := min(max(p0.X, p1.X), bounds.Max.X-1)
	y1 := min(max(p0.Y, p1.Y), bounds.Max.Y-1)
	if x0 > x1 || y0 > y1 {
		return image.Rectangle{}
	}
	r := image.Rect(x0, y0, x1+1, y1+1)
	fillRect(b.img, r, c)
	return r
}

// clipSegment clips the segment a-b to the pixels of r using Liang-Barsky.
// Ends already inside r are returned unchanged. It reports false when no part
// of the segment lies in r.
func clipSegment(a, b image.Point, r image.Rectangle) (image.Point, image.Point, bool) {
	if r.Empty() {
		return a, b, false
	}
	x0, y0 := float64(a.X), float64(a.Y)
	dx, dy := float64(b.X)-x0, float64(b.Y)-y0
	t0, t1 := 0.0, 1.0
	for _, e := range [4][2]float64{
		{-dx, x0 - float64(r.Min.X)},
		{dx, float64(r.Max.X-1) - x0},
		{-dy, y0 - float64(r.Min.Y)},
		{dy, float64(r.Max.Y-1) - y0},
	} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = max(t0, t)
		} else {
			t1 = min(t1, t)
		}
		if t0 > t1 {
			return a, b, false
		}
	}

	at := func(t float64) image.Point {
		return image.Pt(int(math.Round(x0+t*dx)), int(math.Round(y0+t*dy)))
	}
	start, end := a, b
	if t0 > 0 {
		start = at(t0)
	}
	if t1 < 1 {
		end = at(t1)
	}
	return start, end, true
}

// bresenham visits every integer point on the line from a to b, ends included.
func bresenham(a, b image.Point, visit func(image.Point)) {
	dx := abs(b.X - a.X)
	dy := abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx - dy

	p := a
	for {
		visit(p)
		if p == b {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			p.X += sx
		}
		if e2 < dx {
			err += dx
			p.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
