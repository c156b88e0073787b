// Package interaction turns pointer gestures on the viewport into editor
// operations.
package interaction

import (
	"fmt"
	"strings"

	"map-editor/internal/view"
	"map-editor/pkg/geometry"
)

// Mode is the active drawing tool.
type Mode int

const (
	ModeBrush Mode = iota
	ModeLine
	ModeRectangle
)

func (m Mode) String() string {
	switch m {
	case ModeBrush:
		return "Brush"
	case ModeLine:
		return "Line"
	case ModeRectangle:
		return "Rectangle"
	default:
		return "Unknown"
	}
}

// Modes returns every mode in display order.
func Modes() []Mode {
	return []Mode{ModeBrush, ModeLine, ModeRectangle}
}

// ParseMode accepts a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes() {
		if strings.EqualFold(m.String(), s) {
			return m, nil
		}
	}
	return ModeBrush, fmt.Errorf("unknown mode %q", s)
}

// State is the gesture in progress.
type State int

const (
	StateIdle State = iota
	StateBrushDragging
	StateLineArmed
	StateRectArmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBrushDragging:
		return "BrushDragging"
	case StateLineArmed:
		return "LineArmed"
	case StateRectArmed:
		return "RectArmed"
	default:
		return "Unknown"
	}
}

// Button identifies a pointer button.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Editor is the set of edits a Controller issues. All coordinates are in
// image space.
type Editor interface {
	DrawBrush(x, y float64, prev *geometry.Point2D)
	DrawLine(x1, y1, x2, y2 float64)
	FillRectangle(x1, y1, x2, y2 float64)
	DrawThickness() int
}

// PreviewKind says which outline the viewport should draw over the image.
type PreviewKind int

const (
	PreviewNone PreviewKind = iota
	PreviewBrush
	PreviewLine
	PreviewRect
)

// Preview describes the transient outline for the current gesture, in image
// coordinates. For a brush, From and To are both the pointer position.
type Preview struct {
	Kind      PreviewKind
	From      geometry.Point2D
	To        geometry.Point2D
	Thickness int
}

// Controller is the pointer state machine. Line and rectangle take two
// presses: the first arms the start point, the second commits the shape.
type Controller struct {
	editor Editor
	view   *view.Transform

	mode   Mode
	state  State
	anchor geometry.Point2D

	pointer    geometry.Point2D
	hasPointer bool
}

// New creates a controller in brush mode.
func New(editor Editor, v *view.Transform) *Controller {
	return &Controller{editor: editor, view: v}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// State returns the gesture in progress.
func (c *Controller) State() State {
	return c.state
}

// SetMode switches tools. Any gesture in progress is dropped.
func (c *Controller) SetMode(m Mode) {
	c.mode = m
	c.state = StateIdle
}

// Cancel drops an armed start point or an active brush drag.
func (c *Controller) Cancel() {
	c.state = StateIdle
}

// Armed returns the armed start point of a line or rectangle.
func (c *Controller) Armed() (geometry.Point2D, bool) {
	if c.state == StateLineArmed || c.state == StateRectArmed {
		return c.anchor, true
	}
	return geometry.Point2D{}, false
}

// Pointer returns the last known pointer position in image coordinates.
func (c *Controller) Pointer() (geometry.Point2D, bool) {
	return c.pointer, c.hasPointer
}

func (c *Controller) track(sx, sy float64) geometry.Point2D {
	x, y := c.view.ToImage(sx, sy)
	c.pointer = geometry.Pt(x, y)
	c.hasPointer = true
	return c.pointer
}

// PointerDown handles a button press at screen position (sx, sy).
func (c *Controller) PointerDown(sx, sy float64, b Button) {
	p := c.track(sx, sy)
	if b != ButtonPrimary {
		return
	}

	switch c.mode {
	case ModeBrush:
		c.editor.DrawBrush(p.X, p.Y, nil)
		c.anchor = p
		c.state = StateBrushDragging
	case ModeLine:
		if c.state == StateLineArmed {
			c.editor.DrawLine(c.anchor.X, c.anchor.Y, p.X, p.Y)
			c.state = StateIdle
			return
		}
		c.anchor = p
		c.state = StateLineArmed
	case ModeRectangle:
		if c.state == StateRectArmed {
			c.editor.FillRectangle(c.anchor.X, c.anchor.Y, p.X, p.Y)
			c.state = StateIdle
			return
		}
		c.anchor = p
		c.state = StateRectArmed
	}
}

// PointerMove handles motion to (sx, sy). Only a brush drag edits the image;
// otherwise the move just updates the preview.
func (c *Controller) PointerMove(sx, sy float64) {
	p := c.track(sx, sy)
	if c.state != StateBrushDragging {
		return
	}
	prev := c.anchor
	c.editor.DrawBrush(p.X, p.Y, &prev)
	c.anchor = p
}

// PointerUp handles a button release. It ends a brush drag.
func (c *Controller) PointerUp(sx, sy float64, b Button) {
	c.track(sx, sy)
	if b == ButtonPrimary && c.state == StateBrushDragging {
		c.state = StateIdle
	}
}

// PointerLeave is called when the pointer leaves the viewport.
func (c *Controller) PointerLeave() {
	c.hasPointer = false
}

// Preview returns the outline to draw for the current gesture. Until a shape
// is armed every mode shows the brush square under the pointer.
func (c *Controller) Preview() Preview {
	pv := Preview{Thickness: c.editor.DrawThickness()}
	switch {
	case c.state == StateLineArmed:
		pv.Kind, pv.From, pv.To = PreviewLine, c.anchor, c.anchor
		if c.hasPointer {
			pv.To = c.pointer
		}
	case c.state == StateRectArmed:
		pv.Kind, pv.From, pv.To = PreviewRect, c.anchor, c.anchor
		if c.hasPointer {
			pv.To = c.pointer
		}
	case c.hasPointer:
		pv.Kind, pv.From, pv.To = PreviewBrush, c.pointer, c.pointer
	}
	return pv
}
