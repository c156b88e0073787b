package main

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"map-editor/internal/editor"
	mapimage "map-editor/internal/image"
	"map-editor/internal/mapmeta"
	"map-editor/internal/render"
	"map-editor/internal/view"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"

	"github.com/alecthomas/kong"
)

// pointArg is an image position given as "x,y".
type pointArg geometry.Point2D

func (p *pointArg) UnmarshalText(text []byte) error {
	xs, ys, ok := strings.Cut(string(text), ",")
	if !ok {
		return fmt.Errorf("point %q: want x,y", text)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return fmt.Errorf("point %q: %w", text, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return fmt.Errorf("point %q: %w", text, err)
	}
	if !isFinite(x) || !isFinite(y) {
		return fmt.Errorf("point %q: coordinates must be finite", text)
	}
	*p = pointArg{X: x, Y: y}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// colorArg is a preset name or a #RRGGBB[AA] color.
type colorArg color.NRGBA

func (c *colorArg) UnmarshalText(text []byte) error {
	v, err := colorutil.Parse(string(text))
	if err != nil {
		return err
	}
	*c = colorArg(v)
	return nil
}

// EditParams are shared by commands that modify an image.
type EditParams struct {
	Input  string `arg:"" help:"Map image to edit, or - for standard input"`
	Output string `short:"o" help:"Destination, or - for PNG on standard output (default: overwrite the input)"`
}

func (p *EditParams) destination() string {
	if p.Output != "" {
		return p.Output
	}
	return p.Input
}

func (p *EditParams) load(g *Globals, e *editor.Engine) error {
	if p.Input == stdio {
		return e.LoadReader(g.Stdin, "stdin")
	}
	return e.Load(p.Input)
}

// DrawParams are shared by the drawing commands.
type DrawParams struct {
	Color     colorArg `default:"Outside" help:"Drawing color: Outside, Inside, Boundary or #RRGGBB"`
	Thickness int      `default:"5" help:"Brush thickness in pixels (1-50)"`
}

func (p *DrawParams) Validate() error {
	if p.Thickness < editor.MinThickness || p.Thickness > editor.MaxThickness {
		return fmt.Errorf("thickness %d outside %d-%d", p.Thickness, editor.MinThickness, editor.MaxThickness)
	}
	return nil
}

func (p *DrawParams) options() []editor.Option {
	return []editor.Option{
		editor.WithDrawColor(color.NRGBA(p.Color)),
		editor.WithThickness(p.Thickness),
	}
}

// stdio names standard input or output in place of a file.
const stdio = "-"

// edit loads the input, applies fn and saves the result.
func edit(g *Globals, p EditParams, fn func(e *editor.Engine), opts ...editor.Option) error {
	e := editor.New(append([]editor.Option{editor.WithLogger(g.Log)}, opts...)...)
	if err := p.load(g, e); err != nil {
		return err
	}
	fn(e)
	dest := p.destination()
	if dest == stdio {
		return e.Encode(g.Stdout, mapimage.FormatPNG)
	}
	if err := e.Save(dest); err != nil {
		return err
	}
	w, h := e.ImageSize()
	fmt.Fprintf(g.Stdout, "%s: %dx%d, %d edit(s)\n", dest, w, h, e.UndoDepth())
	return nil
}

// InfoCmd prints a summary of a map image.
type InfoCmd struct {
	Input string `arg:"" type:"existingfile" help:"Map image"`
	Meta  string `type:"existingfile" help:"Map metadata YAML file"`
}

func (c *InfoCmd) Run(g *Globals) error {
	b, err := mapimage.Load(c.Input)
	if err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "file:     %s\n", c.Input)
	fmt.Fprintf(g.Stdout, "size:     %d x %d\n", b.Width(), b.Height())
	total := b.Width() * b.Height()
	for _, pr := range colorutil.Presets() {
		n := b.Count(pr.Color)
		fmt.Fprintf(g.Stdout, "%-9s %d (%.1f%%)\n", strings.ToLower(pr.Name)+":", n, 100*float64(n)/float64(total))
	}

	if c.Meta == "" {
		return nil
	}
	m, err := mapmeta.Load(c.Meta)
	if err != nil {
		return err
	}
	m.SetImageHeight(b.Height())
	o, _ := m.OriginPixel()
	fmt.Fprintf(g.Stdout, "resolution: %g m/px\n", m.Resolution)
	fmt.Fprintf(g.Stdout, "origin:   (%d, %d) px\n", o.X, o.Y)
	return nil
}

// InvertCmd inverts colors.
type InvertCmd struct {
	EditParams
}

func (c *InvertCmd) Run(g *Globals) error {
	return edit(g, c.EditParams, (*editor.Engine).Invert)
}

// RotateCmd rotates by quarter turns.
type RotateCmd struct {
	EditParams
	CCW   bool `name:"ccw" help:"Rotate counterclockwise"`
	Turns int  `default:"1" help:"Number of quarter turns"`
}

func (c *RotateCmd) Validate() error {
	if c.Turns < 1 {
		return errors.New("turns must be at least 1")
	}
	return nil
}

func (c *RotateCmd) Run(g *Globals) error {
	return edit(g, c.EditParams, func(e *editor.Engine) {
		for range c.Turns % 4 {
			if c.CCW {
				e.RotateCounterclockwise()
			} else {
				e.RotateClockwise()
			}
		}
	})
}

// HighlightCmd saves the highlighted image.
type HighlightCmd struct {
	EditParams
	Sentinel colorArg `default:"Inside" help:"Color to mark"`
	Marker   colorArg `default:"#FF0000" help:"Color to mark it with"`
}

func (c *HighlightCmd) Run(g *Globals) error {
	opt := editor.WithHighlightColors(color.NRGBA(c.Sentinel), color.NRGBA(c.Marker))
	return edit(g, c.EditParams, func(e *editor.Engine) {
		e.SetHighlightEnabled(true)
	}, opt)
}

// BrushCmd paints a stroke through points.
type BrushCmd struct {
	EditParams
	DrawParams
	Points []pointArg `name:"at" required:"" sep:"none" help:"Stroke points as x,y; repeat for a path"`
}

func (c *BrushCmd) Run(g *Globals) error {
	return edit(g, c.EditParams, func(e *editor.Engine) {
		var prev *geometry.Point2D
		for _, p := range c.Points {
			e.DrawBrush(p.X, p.Y, prev)
			pt := geometry.Point2D(p)
			prev = &pt
		}
	}, c.DrawParams.options()...)
}

// LineCmd draws a line.
type LineCmd struct {
	EditParams
	DrawParams
	From pointArg `required:"" help:"Start point as x,y"`
	To   pointArg `required:"" help:"End point as x,y"`
}

func (c *LineCmd) Run(g *Globals) error {
	return edit(g, c.EditParams, func(e *editor.Engine) {
		e.DrawLine(c.From.X, c.From.Y, c.To.X, c.To.Y)
	}, c.DrawParams.options()...)
}

// RectCmd fills a rectangle.
type RectCmd struct {
	EditParams
	Color colorArg `default:"Outside" help:"Fill color: Outside, Inside, Boundary or #RRGGBB"`
	From  pointArg `required:"" help:"First corner as x,y"`
	To    pointArg `required:"" help:"Opposite corner as x,y, included"`
}

func (c *RectCmd) Run(g *Globals) error {
	return edit(g, c.EditParams, func(e *editor.Engine) {
		e.FillRectangle(c.From.X, c.From.Y, c.To.X, c.To.Y)
	}, editor.WithDrawColor(color.NRGBA(c.Color)))
}

// ConvertCmd re-encodes an image.
type ConvertCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Source image"`
	Output string `arg:"" type:"path" help:"Destination; the extension picks the format"`
}

func (c *ConvertCmd) Validate(kctx *kong.Context) error {
	if _, err := mapimage.FormatFromPath(c.Output); err != nil {
		return fmt.Errorf("invalid output %q: %w", c.Output, err)
	}
	return nil
}

func (c *ConvertCmd) Run(g *Globals) error {
	b, err := mapimage.Load(c.Input)
	if err != nil {
		return err
	}
	if err := b.Save(c.Output); err != nil {
		return err
	}
	f, _ := mapimage.FormatFromPath(c.Output)
	fmt.Fprintf(g.Stdout, "%s: %dx%d %s\n", c.Output, b.Width(), b.Height(), f)
	return nil
}

// RenderCmd draws a viewport snapshot.
type RenderCmd struct {
	Input     string  `arg:"" type:"existingfile" help:"Map image"`
	Output    string  `short:"o" required:"" type:"path" help:"Destination image"`
	Meta      string  `type:"existingfile" help:"Map metadata YAML file; draws the origin axes"`
	Scale     float64 `default:"1" help:"Zoom factor"`
	Width     int     `help:"Snapshot width (default: scaled image width)"`
	Height    int     `help:"Snapshot height (default: scaled image height)"`
	Highlight bool    `help:"Show the occupied area"`
	AxisLen   float64 `default:"50" help:"Origin axis length in image pixels"`
}

func (c *RenderCmd) Run(g *Globals) error {
	e := editor.New(editor.WithLogger(g.Log))
	if err := e.Load(c.Input); err != nil {
		return err
	}
	e.SetHighlightEnabled(c.Highlight)

	v := view.New()
	v.SetScale(c.Scale)
	iw, ih := e.ImageSize()
	w, h := c.Width, c.Height
	if w <= 0 {
		w = int(float64(iw) * v.Scale())
	}
	if h <= 0 {
		h = int(float64(ih) * v.Scale())
	}

	frame := render.Frame{Image: e.CurrentImage(), View: v}
	if c.Meta != "" {
		m, err := mapmeta.Load(c.Meta)
		if err != nil {
			return err
		}
		m.SetImageHeight(ih)
		if x, y, ok := m.AxesPixelLines(c.AxisLen); ok {
			frame.Axes = &render.Axes{X: x, Y: y}
		}
	}

	r, err := render.New()
	if err != nil {
		return err
	}
	out := mapimage.FromImage(r.Render(w, h, frame))
	if err := out.Save(c.Output); err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "%s: %dx%d snapshot\n", c.Output, w, h)
	return nil
}
