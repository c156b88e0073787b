package view

import (
	"testing"

	"map-editor/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats/scalar"
)

const tol = 1e-9

func near(t *testing.T, want, got float64) {
	t.Helper()
	assert.True(t, scalar.EqualWithinAbs(want, got, tol), "want %v got %v", want, got)
}

func TestToImageInvertsToScreen(t *testing.T) {
	tr := New()
	tr.SetScale(2.5)
	tr.SetTranslateX(40)
	tr.SetTranslateY(-12)

	x, y := tr.ToImage(140, 38)
	near(t, 40, x)
	near(t, 20, y)

	sx, sy := tr.ToScreen(x, y)
	near(t, 140, sx)
	near(t, 38, sy)
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	tr := New()
	tr.PanBy(13, -7)

	anchors := [][2]float64{{0, 0}, {100, 50}, {-20, 300}, {512.5, 3.25}}
	factors := []float64{ZoomInFactor, ZoomOutFactor, 3, 0.2, 1}
	for _, a := range anchors {
		for _, f := range factors {
			ix, iy := tr.ToImage(a[0], a[1])
			tr.ZoomAt(a[0], a[1], f)
			jx, jy := tr.ToImage(a[0], a[1])
			near(t, ix, jx)
			near(t, iy, jy)
		}
	}
}

func TestZoomClamps(t *testing.T) {
	tr := New()
	for range 200 {
		tr.ZoomIn(10, 10)
	}
	near(t, MaxScale, tr.Scale())

	for range 400 {
		tr.ZoomOut(10, 10)
	}
	near(t, MinScale, tr.Scale())

	// The anchor still holds once clamped.
	ix, iy := tr.ToImage(77, 33)
	tr.ZoomOut(77, 33)
	jx, jy := tr.ToImage(77, 33)
	near(t, ix, jx)
	near(t, iy, jy)
}

func TestZoomInThenOut(t *testing.T) {
	tr := New()
	tr.ZoomIn(0, 0)
	near(t, 1.1, tr.Scale())
	tr.ZoomOut(0, 0)
	near(t, 0.99, tr.Scale())
}

func TestWheel(t *testing.T) {
	tests := []struct {
		name   string
		delta  float64
		mods   Modifiers
		tx, ty float64
		scale  float64
	}{
		{"vertical down", -1, 0, 0, -50, 1},
		{"vertical up", 2, 0, 0, 50, 1},
		{"horizontal", 1, ModShift, 50, 0, 1},
		{"horizontal back", -1, ModShift, -50, 0, 1},
		{"zoom in", 1, ModCtrl, 0, 0, 1.1},
		{"zoom out", -1, ModCtrl | ModShift, 0, 0, 0.9},
		{"no motion", 0, ModCtrl, 0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			tr.Wheel(0, 0, tt.delta, tt.mods)
			tx, ty := tr.Translate()
			near(t, tt.tx, tx)
			near(t, tt.ty, ty)
			near(t, tt.scale, tr.Scale())
		})
	}
}

func TestAffineMatchesToScreen(t *testing.T) {
	tr := New()
	tr.ZoomAt(30, 40, 3.7)
	tr.PanBy(-5, 9)

	p := geometry.Pt(12.5, -3)
	got := tr.Affine().Apply(p)
	sx, sy := tr.ToScreen(p.X, p.Y)
	near(t, sx, got.X)
	near(t, sy, got.Y)
}

func TestReset(t *testing.T) {
	tr := New()
	tr.ZoomAt(5, 5, 4)
	tr.Reset()
	tx, ty := tr.Translate()
	assert.Zero(t, tx)
	assert.Zero(t, ty)
	assert.Equal(t, 1.0, tr.Scale())
}
