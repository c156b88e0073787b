// Package image provides the editable map bitmap, its codecs, and the pixel
// operations applied by the editor.
package image

import (
	"bytes"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Buffer is a width x height grid of non-premultiplied RGBA8 pixels anchored
// at (0,0). A nil *Buffer, or one with no pixels, is the null image.
type Buffer struct {
	img *image.NRGBA
}

// New creates a buffer filled with transparent black. Non-positive sizes yield
// the null image.
func New(width, height int) *Buffer {
	if width <= 0 || height <= 0 {
		return &Buffer{}
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// NewFilled creates a buffer with every pixel set to c.
func NewFilled(width, height int, c color.NRGBA) *Buffer {
	b := New(width, height)
	b.Fill(c)
	return b
}

// FromImage converts any decoded image into a buffer anchored at the origin.
func FromImage(src image.Image) *Buffer {
	if src == nil || src.Bounds().Empty() {
		return &Buffer{}
	}
	sb := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()))
	draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Src)
	return &Buffer{img: dst}
}

// IsNull reports whether the buffer holds no image.
func (b *Buffer) IsNull() bool {
	return b == nil || b.img == nil || b.img.Rect.Empty()
}

// Width returns the image width in pixels.
func (b *Buffer) Width() int {
	if b.IsNull() {
		return 0
	}
	return b.img.Rect.Dx()
}

// Height returns the image height in pixels.
func (b *Buffer) Height() int {
	if b.IsNull() {
		return 0
	}
	return b.img.Rect.Dy()
}

// Bounds returns the pixel rectangle, empty for the null image.
func (b *Buffer) Bounds() image.Rectangle {
	if b.IsNull() {
		return image.Rectangle{}
	}
	return b.img.Rect
}

// Image exposes the underlying pixels for read-only use by renderers and
// encoders. It returns nil for the null image.
func (b *Buffer) Image() *image.NRGBA {
	if b.IsNull() {
		return nil
	}
	return b.img
}

// At returns the pixel at (x, y). Coordinates must be in range.
func (b *Buffer) At(x, y int) color.NRGBA {
	return b.img.NRGBAAt(x, y)
}

// Set writes the pixel at (x, y). Coordinates must be in range.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	b.img.SetNRGBA(x, y, c)
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c color.NRGBA) {
	if b.IsNull() {
		return
	}
	fillRect(b.img, b.img.Rect, c)
}

// Clone returns a deep copy. Cloning the null image returns nil.
func (b *Buffer) Clone() *Buffer {
	if b.IsNull() {
		return nil
	}
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(b.img.Pix)),
		Stride: b.img.Stride,
		Rect:   b.img.Rect,
	}
	copy(dst.Pix, b.img.Pix)
	return &Buffer{img: dst}
}

// Equal reports whether both buffers have the same size and identical pixels.
// Two null images are equal.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.IsNull() || other.IsNull() {
		return b.IsNull() && other.IsNull()
	}
	if b.img.Rect != other.img.Rect {
		return false
	}
	w := b.img.Rect.Dx() * 4
	for y := 0; y < b.img.Rect.Dy(); y++ {
		r1 := b.img.Pix[y*b.img.Stride : y*b.img.Stride+w]
		r2 := other.img.Pix[y*other.img.Stride : y*other.img.Stride+w]
		if !bytes.Equal(r1, r2) {
			return false
		}
	}
	return true
}

// Find returns every pixel position whose color equals c exactly, in row
// major order.
func (b *Buffer) Find(c color.NRGBA) []image.Point {
	var pts []image.Point
	b.scan(b.Bounds(), c, func(x, y int) {
		pts = append(pts, image.Pt(x, y))
	})
	return pts
}

// Count returns the number of pixels whose color equals c exactly.
func (b *Buffer) Count(c color.NRGBA) int {
	n := 0
	b.scan(b.Bounds(), c, func(int, int) { n++ })
	return n
}

func (b *Buffer) scan(r image.Rectangle, c color.NRGBA, fn func(x, y int)) {
	if b.IsNull() {
		return
	}
	r = r.Intersect(b.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := b.img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, i = x+1, i+4 {
			p := b.img.Pix[i : i+4 : i+4]
			if p[0] == c.R && p[1] == c.G && p[2] == c.B && p[3] == c.A {
				fn(x, y)
			}
		}
	}
}

// fillRect sets every pixel of r (already clipped to img) to c.
func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	if r.Empty() {
		return
	}
	i0 := img.PixOffset(r.Min.X, r.Min.Y)
	row := img.Pix[i0 : i0+r.Dx()*4]
	for i := 0; i < len(row); i += 4 {
		row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		copy(img.Pix[i:i+len(row)], row)
	}
}
