// Package render draws viewport frames on the CPU: the current map image
// under the pan/zoom transform, the gesture preview, and the world origin
// axes.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"map-editor/internal/interaction"
	mapimage "map-editor/internal/image"
	"map-editor/internal/view"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Axes are the world origin axes in image coordinates.
type Axes struct {
	X geometry.Segment
	Y geometry.Segment
}

// Frame is everything that goes into one viewport image.
type Frame struct {
	Image   *mapimage.Buffer
	View    *view.Transform
	Preview interaction.Preview
	// Axes is nil when the origin overlay is hidden.
	Axes *Axes
}

// Renderer holds resources shared across frames.
type Renderer struct {
	face font.Face
}

// New creates a renderer with the built-in monospace label font.
func New() (*Renderer, error) {
	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	return &Renderer{face: face}, nil
}

// Render draws f into a new w x h image.
func (r *Renderer) Render(w, h int, f Frame) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	r.RenderInto(dst, f)
	return dst
}

// RenderInto draws f over the whole of dst.
func (r *Renderer) RenderInto(dst *image.RGBA, f Frame) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(colorutil.Background), image.Point{}, draw.Src)

	v := f.View
	if v == nil {
		v = view.New()
	}
	if src := f.Image.Image(); src != nil {
		draw.NearestNeighbor.Transform(dst, v.Affine().Aff3(), src, src.Bounds(), draw.Over, nil)
	}

	dc := gg.NewContextForRGBA(dst)
	r.drawPreview(dc, v, f.Preview)
	if f.Axes != nil {
		r.drawAxes(dc, v, *f.Axes)
	}
}

func (r *Renderer) drawPreview(dc *gg.Context, v *view.Transform, pv interaction.Preview) {
	dc.Push()
	defer dc.Pop()
	dc.SetColor(colorutil.Preview)
	dc.SetLineWidth(1)

	switch pv.Kind {
	case interaction.PreviewBrush:
		sq := mapimage.BrushRect(pv.To.Pixel(), pv.Thickness)
		x0, y0 := v.ToScreen(float64(sq.Min.X), float64(sq.Min.Y))
		x1, y1 := v.ToScreen(float64(sq.Max.X), float64(sq.Max.Y))
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		dc.Stroke()
	case interaction.PreviewLine:
		p0, p1 := pv.From.Pixel(), pv.To.Pixel()
		x0, y0 := v.ToScreen(float64(p0.X)+0.5, float64(p0.Y)+0.5)
		x1, y1 := v.ToScreen(float64(p1.X)+0.5, float64(p1.Y)+0.5)
		dc.SetLineWidth(math.Max(1, float64(pv.Thickness)*v.Scale()))
		dc.SetLineCapSquare()
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
	case interaction.PreviewRect:
		p0, p1 := pv.From.Pixel(), pv.To.Pixel()
		rect := image.Rect(p0.X, p0.Y, p1.X, p1.Y)
		x0, y0 := v.ToScreen(float64(rect.Min.X), float64(rect.Min.Y))
		x1, y1 := v.ToScreen(float64(rect.Max.X+1), float64(rect.Max.Y+1))
		dc.DrawRectangle(x0, y0, x1-x0, y1-y0)
		dc.Stroke()
	}
}

func (r *Renderer) drawAxes(dc *gg.Context, v *view.Transform, axes Axes) {
	dc.Push()
	defer dc.Pop()
	dc.SetLineWidth(2)
	dc.SetFontFace(r.face)

	axis := func(s geometry.Segment, c color.Color, label string, ax, ay float64) {
		x0, y0 := v.ToScreen(s.A.X, s.A.Y)
		x1, y1 := v.ToScreen(s.B.X, s.B.Y)
		dc.SetColor(c)
		dc.DrawLine(x0, y0, x1, y1)
		dc.Stroke()
		dc.DrawStringAnchored(label, x1, y1, ax, ay)
	}
	axis(axes.X, colorutil.AxisX, "X", -0.2, 0.5)
	axis(axes.Y, colorutil.AxisY, "Y", 0.5, 1.2)
}
