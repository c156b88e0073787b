// Package geometry provides the point, segment and affine types shared by the
// view, the editor and the renderers.
package geometry

import (
	"image"
	"math"

	"golang.org/x/image/math/f64"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Pt is shorthand for Point2D{X: x, Y: y}.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// PixelLimit bounds the coordinates returned by Point2D.Pixel.
const PixelLimit = 1 << 30

// Pixel returns the pixel containing p. Coordinates are floored, so
// (-0.5, 2.9) lands on pixel (-1, 2), and clamped to ±PixelLimit. NaN maps
// to -PixelLimit.
func (p Point2D) Pixel() image.Point {
	return image.Pt(pixelCoord(p.X), pixelCoord(p.Y))
}

func pixelCoord(v float64) int {
	if math.IsNaN(v) {
		return -PixelLimit
	}
	return int(max(-PixelLimit, min(math.Floor(v), PixelLimit)))
}

// Segment is a straight line between two points.
type Segment struct {
	A Point2D `json:"a"`
	B Point2D `json:"b"`
}

// AffineTransform represents a 2x3 affine transformation matrix.
// [a b tx]
// [c d ty]
type AffineTransform struct {
	A, B, TX float64
	C, D, TY float64
}

// Translation returns a translation transform.
func Translation(tx, ty float64) AffineTransform {
	return AffineTransform{A: 1, D: 1, TX: tx, TY: ty}
}

// Scale returns a scaling transform.
func Scale(sx, sy float64) AffineTransform {
	return AffineTransform{A: sx, D: sy}
}

// Apply applies the transform to a point.
func (t AffineTransform) Apply(p Point2D) Point2D {
	return Point2D{
		X: t.A*p.X + t.B*p.Y + t.TX,
		Y: t.C*p.X + t.D*p.Y + t.TY,
	}
}

// Compose returns this transform composed with another (this * other).
func (t AffineTransform) Compose(other AffineTransform) AffineTransform {
	return AffineTransform{
		A:  t.A*other.A + t.B*other.C,
		B:  t.A*other.B + t.B*other.D,
		TX: t.A*other.TX + t.B*other.TY + t.TX,
		C:  t.C*other.A + t.D*other.C,
		D:  t.C*other.B + t.D*other.D,
		TY: t.C*other.TX + t.D*other.TY + t.TY,
	}
}

// Aff3 returns the transform in the layout used by x/image/draw.
func (t AffineTransform) Aff3() f64.Aff3 {
	return f64.Aff3{t.A, t.B, t.TX, t.C, t.D, t.TY}
}
