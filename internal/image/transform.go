package image

import (
	"fmt"
	"image"
	"runtime"

	"gocv.io/x/gocv"
)

// mat wraps the pixels of b in a four-channel Mat without copying. The Mat
// must be closed, and b kept alive, before b is modified again.
func (b *Buffer) mat() gocv.Mat {
	img := b.img
	m, err := gocv.NewMatFromBytes(img.Rect.Dy(), img.Rect.Dx(), gocv.MatTypeCV8UC4, img.Pix)
	if err != nil {
		// Pix always holds exactly Dy rows of Dx*4 bytes.
		panic(fmt.Sprintf("image: wrap %v buffer: %v", img.Rect, err))
	}
	return m
}

// InvertRGB replaces every channel c of R, G and B with 255-c. Alpha is left
// untouched. Does nothing on the null image.
func (b *Buffer) InvertRGB() {
	if b.IsNull() {
		return
	}
	src := b.mat()
	defer src.Close()

	planes := gocv.Split(src)
	defer func() {
		for _, p := range planes {
			p.Close()
		}
	}()
	for i := range 3 {
		gocv.BitwiseNot(planes[i], &planes[i])
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Merge(planes, &dst)
	copy(b.img.Pix, dst.ToBytes())
	runtime.KeepAlive(b.img.Pix)
}

// Rotate90 returns a new buffer rotated a quarter turn, with width and height
// swapped. Clockwise, source (x, y) lands on (h-1-y, x); counterclockwise it
// lands on (y, w-1-x). Rotating the null image returns nil.
func (b *Buffer) Rotate90(clockwise bool) *Buffer {
	if b.IsNull() {
		return nil
	}
	src := b.mat()
	defer src.Close()

	code := gocv.Rotate90CounterClockwise
	if clockwise {
		code = gocv.Rotate90Clockwise
	}
	dst := gocv.NewMat()
	defer dst.Close()
	gocv.Rotate(src, &dst, code)
	runtime.KeepAlive(b.img.Pix)

	w, h := b.img.Rect.Dx(), b.img.Rect.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, h, w))
	copy(out.Pix, dst.ToBytes())
	return &Buffer{img: out}
}
