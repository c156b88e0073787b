// Package editor owns the map bitmap being edited: the baseline image, its
// undo history, the occupied-area highlight, and the drawing settings.
//
// An Engine is driven from a single goroutine. Every method finishes its work
// before returning; listeners run synchronously on the caller's goroutine.
package editor

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"

	mapimage "map-editor/internal/image"
	"map-editor/internal/undo"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"
)

// Brush thickness limits, in image pixels.
const (
	MinThickness     = 1
	MaxThickness     = 50
	DefaultThickness = 5
)

// EventType identifies engine events.
type EventType int

const (
	// EventImageLoaded carries the source path (string).
	EventImageLoaded EventType = iota
	// EventImageSaved carries the destination path (string).
	EventImageSaved
	// EventImageChanged carries the changed area (image.Rectangle).
	EventImageChanged
	// EventHighlightChanged carries the new toggle state (bool).
	EventHighlightChanged
	// EventUndo carries the remaining undo depth (int).
	EventUndo
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine logs to l. Engines are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithDrawColor sets the initial drawing color.
func WithDrawColor(c color.NRGBA) Option { return func(e *Engine) { e.drawColor = c } }

// WithThickness sets the initial brush thickness.
func WithThickness(t int) Option { return func(e *Engine) { e.thickness = clampThickness(t) } }

// WithHighlightColors overrides which color is highlighted and what it is
// shown as.
func WithHighlightColors(sentinel, marker color.NRGBA) Option {
	return func(e *Engine) {
		e.sentinel = sentinel
		e.marker = marker
	}
}

// Engine holds the editable image and applies edits to it.
type Engine struct {
	baseline *mapimage.Buffer
	history  undo.Stack

	highlightOn    bool
	highlight      *mapimage.Buffer
	highlightValid bool
	sentinel       color.NRGBA
	marker         color.NRGBA

	drawColor color.NRGBA
	thickness int

	path string
	// cleanDepth is the history depth matching the file on disk, or -1 once
	// undo has gone past it.
	cleanDepth int

	log *slog.Logger

	mu        sync.RWMutex
	listeners map[EventType][]EventListener
}

// New creates an engine with no image loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		sentinel:  colorutil.Sentinel,
		marker:    colorutil.Marker,
		drawColor: colorutil.Outside,
		thickness: DefaultThickness,
		log:       slog.New(slog.DiscardHandler),
		listeners: make(map[EventType][]EventListener),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// On registers an event listener for the specified event type.
func (e *Engine) On(event EventType, listener EventListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[event] = append(e.listeners[event], listener)
}

func (e *Engine) emit(event EventType, data interface{}) {
	e.mu.RLock()
	listeners := e.listeners[event]
	e.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// Load replaces the image with the file at path. On failure nothing changes.
func (e *Engine) Load(path string) error {
	b, err := mapimage.Load(path)
	if err != nil {
		return err
	}
	e.replaceDocument(b, path)
	return nil
}

// LoadReader replaces the image with one decoded from r. name is recorded as
// the document path. On failure nothing changes.
func (e *Engine) LoadReader(r io.Reader, name string) error {
	b, _, err := mapimage.Decode(r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	e.replaceDocument(b, name)
	return nil
}

func (e *Engine) replaceDocument(b *mapimage.Buffer, path string) {
	e.history.Clear()
	e.baseline = b
	e.path = path
	e.cleanDepth = 0
	e.refreshHighlight(b.Bounds(), true)

	e.log.Info("image loaded", "path", path, "width", b.Width(), "height", b.Height())
	e.emit(EventImageLoaded, path)
}

// Save writes the current image, highlighted if the highlight is on, to path.
func (e *Engine) Save(path string) error {
	if !e.IsLoaded() {
		return mapimage.ErrNullImage
	}
	if err := e.CurrentImage().Save(path); err != nil {
		return err
	}
	e.path = path
	e.cleanDepth = e.history.Len()

	e.log.Info("image saved", "path", path)
	e.emit(EventImageSaved, path)
	return nil
}

// Encode writes the current image to w in format f.
func (e *Engine) Encode(w io.Writer, f mapimage.Format) error {
	return e.CurrentImage().Encode(w, f)
}

// Invert inverts the RGB channels of every pixel.
func (e *Engine) Invert() {
	if !e.snapshot("invert") {
		return
	}
	e.baseline.InvertRGB()
	e.changed(e.baseline.Bounds(), true)
}

// RotateClockwise turns the image a quarter turn clockwise.
func (e *Engine) RotateClockwise() {
	e.rotate(true)
}

// RotateCounterclockwise turns the image a quarter turn counterclockwise.
func (e *Engine) RotateCounterclockwise() {
	e.rotate(false)
}

func (e *Engine) rotate(clockwise bool) {
	if !e.snapshot("rotate") {
		return
	}
	e.baseline = e.baseline.Rotate90(clockwise)
	e.changed(e.baseline.Bounds(), true)
}

// DrawBrush paints with the brush at (x, y) in image coordinates. With prev
// set it strokes from prev to (x, y); otherwise it stamps a single square.
func (e *Engine) DrawBrush(x, y float64, prev *geometry.Point2D) {
	if !e.snapshot("brush") {
		return
	}
	var p0 *image.Point
	if prev != nil {
		pp := prev.Pixel()
		p0 = &pp
	}
	dirty := e.baseline.DrawSegment(p0, geometry.Pt(x, y).Pixel(), e.drawColor, e.thickness)
	e.changed(dirty, false)
}

// DrawLine strokes a straight line between two image points.
func (e *Engine) DrawLine(x1, y1, x2, y2 float64) {
	if !e.snapshot("line") {
		return
	}
	p0 := geometry.Pt(x1, y1).Pixel()
	dirty := e.baseline.DrawSegment(&p0, geometry.Pt(x2, y2).Pixel(), e.drawColor, e.thickness)
	e.changed(dirty, false)
}

// FillRectangle fills the rectangle spanned by two opposite corners, both
// included.
func (e *Engine) FillRectangle(x1, y1, x2, y2 float64) {
	if !e.snapshot("rectangle") {
		return
	}
	dirty := e.baseline.FillRect(geometry.Pt(x1, y1).Pixel(), geometry.Pt(x2, y2).Pixel(), e.drawColor)
	e.changed(dirty, false)
}

// Undo restores the image as it was before the most recent edit. It does
// nothing when there is no history.
func (e *Engine) Undo() {
	prev, ok := e.history.Pop()
	if !ok {
		return
	}
	e.baseline = prev
	if e.history.Len() < e.cleanDepth {
		e.cleanDepth = -1
	}
	e.refreshHighlight(prev.Bounds(), true)

	e.log.Debug("undo", "remaining", e.history.Len())
	e.emit(EventUndo, e.history.Len())
	e.emit(EventImageChanged, prev.Bounds())
}

// snapshot records the baseline for undo ahead of an edit. It reports false,
// and records nothing, when no image is loaded.
func (e *Engine) snapshot(op string) bool {
	if !e.IsLoaded() {
		return false
	}
	e.history.Push(e.baseline)
	e.log.Debug("edit", "op", op, "depth", e.history.Len())
	return true
}

func (e *Engine) changed(dirty image.Rectangle, full bool) {
	e.refreshHighlight(dirty, full)
	e.emit(EventImageChanged, dirty)
}

// refreshHighlight brings the highlight cache up to date with the baseline.
// While the highlight is off the cache is left stale and rebuilt in full when
// it is next turned on.
func (e *Engine) refreshHighlight(dirty image.Rectangle, full bool) {
	if !e.highlightOn {
		e.highlightValid = false
		return
	}
	if full || !e.highlightValid || e.highlight.Bounds() != e.baseline.Bounds() {
		e.highlight = mapimage.Highlight(e.baseline, e.sentinel, e.marker)
		e.highlightValid = true
		return
	}
	mapimage.HighlightInto(e.highlight, e.baseline, dirty, e.sentinel, e.marker)
}

// SetHighlightEnabled turns the occupied-area view on or off. Turning it on
// rebuilds the highlight immediately.
func (e *Engine) SetHighlightEnabled(on bool) {
	if on == e.highlightOn {
		return
	}
	e.highlightOn = on
	if on && e.IsLoaded() {
		e.refreshHighlight(e.baseline.Bounds(), true)
	}
	e.emit(EventHighlightChanged, on)
}

// HighlightEnabled reports whether the occupied-area view is on.
func (e *Engine) HighlightEnabled() bool {
	return e.highlightOn
}

// CurrentImage returns what should be displayed or saved: the highlighted
// image while the highlight is on, otherwise the baseline. The result must
// not be modified and is nil when nothing is loaded.
func (e *Engine) CurrentImage() *mapimage.Buffer {
	if e.highlightOn && e.highlight != nil {
		return e.highlight
	}
	if e.baseline.IsNull() {
		return nil
	}
	return e.baseline
}

// Baseline returns the unhighlighted image. The result must not be modified.
func (e *Engine) Baseline() *mapimage.Buffer {
	if e.baseline.IsNull() {
		return nil
	}
	return e.baseline
}

// SetDrawColor sets the color used by every drawing operation.
func (e *Engine) SetDrawColor(c color.NRGBA) {
	e.drawColor = c
}

// DrawColor returns the current drawing color.
func (e *Engine) DrawColor() color.NRGBA {
	return e.drawColor
}

// SetDrawThickness sets the brush thickness, clamped to
// [MinThickness, MaxThickness].
func (e *Engine) SetDrawThickness(t int) {
	e.thickness = clampThickness(t)
}

// DrawThickness returns the brush thickness.
func (e *Engine) DrawThickness() int {
	return e.thickness
}

// ImageSize returns the current width and height, zero when nothing is loaded.
func (e *Engine) ImageSize() (width, height int) {
	return e.baseline.Width(), e.baseline.Height()
}

// IsLoaded reports whether an image is loaded.
func (e *Engine) IsLoaded() bool {
	return !e.baseline.IsNull()
}

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool {
	return e.history.Len() > 0
}

// UndoDepth returns the number of edits that can be undone.
func (e *Engine) UndoDepth() int {
	return e.history.Len()
}

// Path returns the file the image was loaded from or last saved to.
func (e *Engine) Path() string {
	return e.path
}

// Modified reports whether the image differs from what was last loaded or
// saved. Undoing back to that point clears it.
func (e *Engine) Modified() bool {
	return e.history.Len() != e.cleanDepth
}

func clampThickness(t int) int {
	return max(MinThickness, min(t, MaxThickness))
}
