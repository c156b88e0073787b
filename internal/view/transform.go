// Package view maps between screen pixels and image pixels for a pan/zoom
// viewport.
package view

import (
	"map-editor/pkg/geometry"
)

// Zoom limits and steps.
const (
	MinScale      = 0.05
	MaxScale      = 50.0
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
	// WheelPanStep is how far one wheel notch pans, in screen pixels.
	WheelPanStep = 50.0
)

// Modifiers is the set of keyboard modifiers held during a wheel event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
)

// Transform is a uniform scale followed by a translation:
// screen = image*scale + translate.
type Transform struct {
	scale float64
	tx    float64
	ty    float64
}

// New returns the identity transform.
func New() *Transform {
	return &Transform{scale: 1}
}

// Scale returns the current zoom factor.
func (t *Transform) Scale() float64 {
	return t.scale
}

// Translate returns the current screen offset of the image origin.
func (t *Transform) Translate() (tx, ty float64) {
	return t.tx, t.ty
}

// SetScale sets the zoom factor, clamped to [MinScale, MaxScale]. The image
// origin stays put on screen.
func (t *Transform) SetScale(s float64) {
	t.scale = clampScale(s)
}

// SetTranslateX sets the horizontal screen offset.
func (t *Transform) SetTranslateX(tx float64) {
	t.tx = tx
}

// SetTranslateY sets the vertical screen offset.
func (t *Transform) SetTranslateY(ty float64) {
	t.ty = ty
}

// Reset returns to the identity transform.
func (t *Transform) Reset() {
	*t = Transform{scale: 1}
}

// ToImage converts a screen position to image coordinates.
func (t *Transform) ToImage(sx, sy float64) (x, y float64) {
	return (sx - t.tx) / t.scale, (sy - t.ty) / t.scale
}

// ToScreen converts image coordinates to a screen position.
func (t *Transform) ToScreen(x, y float64) (sx, sy float64) {
	p := t.Affine().Apply(geometry.Pt(x, y))
	return p.X, p.Y
}

// ZoomAt multiplies the scale by factor, keeping the image point under
// (sx, sy) fixed on screen. When the clamp limits the scale the anchor still
// holds for the clamped value.
func (t *Transform) ZoomAt(sx, sy, factor float64) {
	ax, ay := t.ToImage(sx, sy)
	t.scale = clampScale(t.scale * factor)
	t.tx = sx - t.scale*ax
	t.ty = sy - t.scale*ay
}

// ZoomIn zooms one step in around (sx, sy).
func (t *Transform) ZoomIn(sx, sy float64) {
	t.ZoomAt(sx, sy, ZoomInFactor)
}

// ZoomOut zooms one step out around (sx, sy).
func (t *Transform) ZoomOut(sx, sy float64) {
	t.ZoomAt(sx, sy, ZoomOutFactor)
}

// PanBy moves the image by (dx, dy) screen pixels.
func (t *Transform) PanBy(dx, dy float64) {
	t.tx += dx
	t.ty += dy
}

// Wheel applies one wheel event at (sx, sy). Only the sign of delta matters.
// With Ctrl held it zooms around the pointer; with Shift it pans
// horizontally; otherwise it pans vertically.
func (t *Transform) Wheel(sx, sy, delta float64, mods Modifiers) {
	if delta == 0 {
		return
	}
	step := WheelPanStep
	if delta < 0 {
		step = -step
	}
	switch {
	case mods&ModCtrl != 0:
		if delta > 0 {
			t.ZoomIn(sx, sy)
		} else {
			t.ZoomOut(sx, sy)
		}
	case mods&ModShift != 0:
		t.PanBy(step, 0)
	default:
		t.PanBy(0, step)
	}
}

// Affine returns the image-to-screen transform.
func (t *Transform) Affine() geometry.AffineTransform {
	return geometry.Translation(t.tx, t.ty).Compose(geometry.Scale(t.scale, t.scale))
}

func clampScale(s float64) float64 {
	return max(MinScale, min(s, MaxScale))
}
