// Package canvas provides the map viewport widget: it draws the session's
// current frame and feeds pointer, wheel and key input back into it.
package canvas

import (
	"image"

	"map-editor/internal/app"
	"map-editor/internal/interaction"
	"map-editor/internal/render"
	"map-editor/internal/view"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// MapCanvas is the editing viewport.
type MapCanvas struct {
	widget.BaseWidget

	state    *app.State
	renderer *render.Renderer
	raster   *fynecanvas.Raster

	// Interaction state
	mods     view.Modifiers
	pressed  bool
	lastMove fyne.Position

	// Last rendered output
	lastOutput *image.RGBA
}

var (
	_ fyne.Widget       = (*MapCanvas)(nil)
	_ fyne.Focusable    = (*MapCanvas)(nil)
	_ fyne.Scrollable   = (*MapCanvas)(nil)
	_ fyne.Draggable    = (*MapCanvas)(nil)
	_ desktop.Mouseable = (*MapCanvas)(nil)
	_ desktop.Hoverable = (*MapCanvas)(nil)
	_ desktop.Keyable   = (*MapCanvas)(nil)
)

// New creates a viewport for state.
func New(state *app.State, r *render.Renderer) *MapCanvas {
	c := &MapCanvas{state: state, renderer: r}
	c.raster = fynecanvas.NewRaster(c.draw)
	c.raster.ScaleMode = fynecanvas.ImageScalePixels
	c.raster.SetMinSize(fyne.NewSize(400, 300))

	refresh := func(interface{}) { c.Refresh() }
	for _, ev := range []app.EventType{
		app.EventImageChanged,
		app.EventHighlightChanged,
		app.EventMetadataLoaded,
		app.EventOriginToggled,
		app.EventViewChanged,
		app.EventModeChanged,
		app.EventPointerMoved,
	} {
		state.On(ev, refresh)
	}

	c.ExtendBaseWidget(c)
	return c
}

// draw renders the frame at the widget's logical size; the raster scales
// it to device pixels.
func (c *MapCanvas) draw(w, h int) image.Image {
	if size := c.Size(); size.Width >= 1 && size.Height >= 1 {
		w, h = int(size.Width), int(size.Height)
	}
	if c.lastOutput == nil || c.lastOutput.Bounds().Dx() != w || c.lastOutput.Bounds().Dy() != h {
		c.lastOutput = image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	c.renderer.RenderInto(c.lastOutput, c.state.Frame())
	return c.lastOutput
}

// RenderedOutput returns the most recently drawn frame.
func (c *MapCanvas) RenderedOutput() *image.RGBA {
	return c.lastOutput
}

// Refresh redraws the viewport.
func (c *MapCanvas) Refresh() {
	c.raster.Refresh()
}

// MouseDown handles a button press.
func (c *MapCanvas) MouseDown(ev *desktop.MouseEvent) {
	c.mods = modifiers(ev.Modifier)
	c.requestFocus()
	b, ok := button(ev.Button)
	if !ok {
		return
	}
	c.pressed = b == interaction.ButtonPrimary
	c.lastMove = ev.Position
	c.state.PointerDown(float64(ev.Position.X), float64(ev.Position.Y), b)
}

func (c *MapCanvas) requestFocus() {
	a := fyne.CurrentApp()
	if a == nil {
		return
	}
	if cv := a.Driver().CanvasForObject(c); cv != nil {
		cv.Focus(c)
	}
}

// MouseUp handles a button release.
func (c *MapCanvas) MouseUp(ev *desktop.MouseEvent) {
	c.mods = modifiers(ev.Modifier)
	b, ok := button(ev.Button)
	if !ok {
		return
	}
	if b == interaction.ButtonPrimary {
		c.pressed = false
	}
	c.state.PointerUp(float64(ev.Position.X), float64(ev.Position.Y), b)
}

// MouseIn is called when the pointer enters the viewport.
func (c *MapCanvas) MouseIn(ev *desktop.MouseEvent) {
	c.MouseMoved(ev)
}

// MouseMoved handles hover motion.
func (c *MapCanvas) MouseMoved(ev *desktop.MouseEvent) {
	c.mods = modifiers(ev.Modifier)
	c.move(ev.Position)
}

// MouseOut is called when the pointer leaves the viewport.
func (c *MapCanvas) MouseOut() {
	c.state.PointerLeave()
}

// Dragged handles motion with a button held.
func (c *MapCanvas) Dragged(ev *fyne.DragEvent) {
	c.move(ev.Position)
}

// DragEnd ends a drag. Some drivers send it instead of MouseUp.
func (c *MapCanvas) DragEnd() {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.state.PointerUp(float64(c.lastMove.X), float64(c.lastMove.Y), interaction.ButtonPrimary)
}

// move forwards pointer motion once per position; drivers may report the
// same motion as both a hover and a drag.
func (c *MapCanvas) move(pos fyne.Position) {
	if pos == c.lastMove && c.pressed {
		return
	}
	c.lastMove = pos
	c.state.PointerMove(float64(pos.X), float64(pos.Y))
}

// Scrolled zooms with Ctrl held, pans horizontally with Shift held, and pans
// vertically otherwise.
func (c *MapCanvas) Scrolled(ev *fyne.ScrollEvent) {
	delta := ev.Scrolled.DY
	if delta == 0 {
		delta = ev.Scrolled.DX
	}
	c.state.Wheel(float64(ev.Position.X), float64(ev.Position.Y), float64(delta), c.mods)
}

// FocusGained implements fyne.Focusable.
func (c *MapCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable.
func (c *MapCanvas) FocusLost() {
	c.mods = 0
}

// TypedRune implements fyne.Focusable.
func (c *MapCanvas) TypedRune(rune) {}

// TypedKey cancels an armed line or rectangle on Escape.
func (c *MapCanvas) TypedKey(ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		c.state.Controller.Cancel()
		c.Refresh()
	}
}

// KeyDown tracks held modifiers for wheel events.
func (c *MapCanvas) KeyDown(ev *fyne.KeyEvent) {
	c.mods |= keyModifier(ev.Name)
}

// KeyUp tracks released modifiers.
func (c *MapCanvas) KeyUp(ev *fyne.KeyEvent) {
	c.mods &^= keyModifier(ev.Name)
}

func modifiers(m fyne.KeyModifier) view.Modifiers {
	var mods view.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		mods |= view.ModShift
	}
	if m&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0 {
		mods |= view.ModCtrl
	}
	return mods
}

func keyModifier(k fyne.KeyName) view.Modifiers {
	switch k {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		return view.ModShift
	case desktop.KeyControlLeft, desktop.KeyControlRight, desktop.KeySuperLeft, desktop.KeySuperRight:
		return view.ModCtrl
	}
	return 0
}

func button(b desktop.MouseButton) (interaction.Button, bool) {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return interaction.ButtonPrimary, true
	case b&desktop.MouseButtonSecondary != 0:
		return interaction.ButtonSecondary, true
	}
	return 0, false
}

// CreateRenderer implements fyne.Widget.
func (c *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &mapCanvasRenderer{canvas: c}
}

type mapCanvasRenderer struct {
	canvas *MapCanvas
}

func (r *mapCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *mapCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.raster.MinSize()
}

func (r *mapCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *mapCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *mapCanvasRenderer) Destroy() {}
