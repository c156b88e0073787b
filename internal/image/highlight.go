package image

import (
	"image"
	"image/color"

	"map-editor/internal/parallel"
)

// Highlight returns a copy of src in which every pixel exactly equal to
// sentinel (all four channels) is replaced by marker. The result depends on
// nothing but its arguments. Highlighting the null image returns nil.
func Highlight(src *Buffer, sentinel, marker color.NRGBA) *Buffer {
	if src.IsNull() {
		return nil
	}
	dst := New(src.Width(), src.Height())
	HighlightInto(dst, src, src.Bounds(), sentinel, marker)
	return dst
}

// HighlightInto recomputes region r of dst from src. dst and src must have the
// same size. Pixels of dst outside r are left alone, so after a local edit to
// src only the edited area needs refreshing.
func HighlightInto(dst, src *Buffer, r image.Rectangle, sentinel, marker color.NRGBA) {
	if src.IsNull() || dst.IsNull() {
		return
	}
	r = r.Intersect(src.img.Rect).Intersect(dst.img.Rect)
	s, d := src.img, dst.img
	parallel.Rows(r, func(band image.Rectangle) {
		n := band.Dx() * 4
		for y := band.Min.Y; y < band.Max.Y; y++ {
			si := s.PixOffset(band.Min.X, y)
			di := d.PixOffset(band.Min.X, y)
			row := d.Pix[di : di+n]
			copy(row, s.Pix[si:si+n])
			for i := 0; i < n; i += 4 {
				p := row[i : i+4 : i+4]
				if p[0] == sentinel.R && p[1] == sentinel.G && p[2] == sentinel.B && p[3] == sentinel.A {
					p[0], p[1], p[2], p[3] = marker.R, marker.G, marker.B, marker.A
				}
			}
		}
	})
}
