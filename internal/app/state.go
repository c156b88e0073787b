// Package app ties the editing engine, the viewport and the map metadata
// together into one editing session and relays their events to the UI.
package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"map-editor/internal/editor"
	mapimage "map-editor/internal/image"
	"map-editor/internal/interaction"
	"map-editor/internal/mapmeta"
	"map-editor/internal/render"
	"map-editor/internal/view"
	"map-editor/pkg/geometry"
)

// AxisLength is the drawn length of each origin axis, in image pixels.
const AxisLength = 50

// State holds one editing session.
type State struct {
	mu sync.RWMutex

	Engine     *editor.Engine
	View       *view.Transform
	Controller *interaction.Controller

	// Metadata is nil until a metadata file is loaded.
	Metadata   *mapmeta.Metadata
	ShowOrigin bool

	// watchSettle is zero while file watching is off.
	watchSettle time.Duration
	watcher     *FileWatcher

	log       *slog.Logger
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	// EventImageLoaded carries the image path (string).
	EventImageLoaded EventType = iota
	// EventImageSaved carries the destination path (string).
	EventImageSaved
	// EventImageChanged carries nothing. Sent after any change to the pixels
	// or the image size.
	EventImageChanged
	// EventHighlightChanged carries the toggle state (bool).
	EventHighlightChanged
	// EventMetadataLoaded carries the metadata path (string).
	EventMetadataLoaded
	// EventOriginToggled carries the toggle state (bool).
	EventOriginToggled
	// EventViewChanged carries nothing. Sent after pan, zoom or reset.
	EventViewChanged
	// EventModeChanged carries the new interaction.Mode.
	EventModeChanged
	// EventPointerMoved carries the pointer position in image coordinates
	// (geometry.Point2D).
	EventPointerMoved
	// EventFileChanged carries the image path (string) after another program
	// rewrote it. Sent from a background goroutine.
	EventFileChanged
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a session with no image. Engine options are passed
// through.
func NewState(log *slog.Logger, opts ...editor.Option) *State {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	eng := editor.New(append([]editor.Option{editor.WithLogger(log)}, opts...)...)
	v := view.New()
	s := &State{
		Engine:     eng,
		View:       v,
		Controller: interaction.New(eng, v),
		log:        log,
		listeners:  make(map[EventType][]EventListener),
	}

	eng.On(editor.EventImageLoaded, func(data interface{}) {
		s.syncImageHeight()
		s.watch(data.(string))
		s.Emit(EventImageLoaded, data)
		s.Emit(EventImageChanged, nil)
	})
	eng.On(editor.EventImageSaved, func(data interface{}) {
		s.watch(data.(string))
		s.Emit(EventImageSaved, data)
	})
	eng.On(editor.EventImageChanged, func(interface{}) {
		s.syncImageHeight()
		s.Emit(EventImageChanged, nil)
	})
	eng.On(editor.EventHighlightChanged, func(data interface{}) {
		s.Emit(EventHighlightChanged, data)
	})
	return s
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// EnableFileWatch reports outside changes to the open image file as
// EventFileChanged. A file must stay quiet for settle before a change is
// reported.
func (s *State) EnableFileWatch(settle time.Duration) {
	s.mu.Lock()
	s.watchSettle = settle
	s.mu.Unlock()
	if s.Engine.IsLoaded() {
		s.watch(s.Engine.Path())
	}
}

// watch points the file watcher at path. Writing the watched file from this
// session only moves the baseline.
func (s *State) watch(path string) {
	s.mu.Lock()
	settle, old := s.watchSettle, s.watcher
	s.mu.Unlock()
	if settle == 0 || path == "" {
		return
	}
	if old != nil {
		if abs, err := filepath.Abs(path); err == nil && sameFile(abs, old.Path()) {
			old.ResetBaseline()
			return
		}
		if err := s.stopWatcher(); err != nil {
			s.log.Warn("failed to stop file watcher", "error", err)
		}
	}

	fw, err := NewFileWatcher(path, settle, s.log)
	if err != nil {
		s.log.Warn("file watching disabled", "path", path, "error", err)
		return
	}
	fw.OnChange(func(p string) { s.Emit(EventFileChanged, p) })
	fw.Start()
	s.mu.Lock()
	s.watcher = fw
	s.mu.Unlock()
}

// stopWatcher stops the file watcher outside the lock, since its callback
// emits events.
func (s *State) stopWatcher() error {
	s.mu.Lock()
	fw := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if fw == nil {
		return nil
	}
	return fw.Stop()
}

func sameFile(a, b string) bool {
	if real, err := filepath.EvalSymlinks(a); err == nil {
		a = real
	}
	return a == b
}

// Close releases background resources.
func (s *State) Close() error {
	return s.stopWatcher()
}

// OpenImage loads an image and drops any gesture in progress.
func (s *State) OpenImage(path string) error {
	if err := s.Engine.Load(path); err != nil {
		s.log.Error("failed to open image", "path", path, "error", err)
		return err
	}
	s.Controller.Cancel()
	return nil
}

// SaveImage writes the current image to path.
func (s *State) SaveImage(path string) error {
	if err := s.Engine.Save(path); err != nil {
		s.log.Error("failed to save image", "path", path, "error", err)
		return err
	}
	return nil
}

// LoadMetadata reads a map metadata file and applies it to the current
// image.
func (s *State) LoadMetadata(path string) error {
	m, err := mapmeta.Load(path)
	if err != nil {
		s.log.Error("failed to load map metadata", "path", path, "error", err)
		return err
	}
	s.mu.Lock()
	s.Metadata = m
	s.mu.Unlock()
	s.syncImageHeight()

	s.log.Info("map metadata loaded", "path", path, "resolution", m.Resolution, "origin", m.Origin)
	s.Emit(EventMetadataLoaded, path)
	return nil
}

// syncImageHeight keeps the metadata's notion of image height in step with
// the engine, which changes on load, rotate and undo.
func (s *State) syncImageHeight() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Metadata == nil || !s.Engine.IsLoaded() {
		return
	}
	_, h := s.Engine.ImageSize()
	s.Metadata.SetImageHeight(h)
}

// SetShowOrigin toggles the origin axes overlay.
func (s *State) SetShowOrigin(on bool) {
	s.mu.Lock()
	changed := s.ShowOrigin != on
	s.ShowOrigin = on
	s.mu.Unlock()
	if changed {
		s.Emit(EventOriginToggled, on)
	}
}

// Axes returns the origin axes to draw, or nil when the overlay is off or
// the origin is unknown.
func (s *State) Axes() *render.Axes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ShowOrigin || s.Metadata == nil {
		return nil
	}
	x, y, ok := s.Metadata.AxesPixelLines(AxisLength)
	if !ok {
		return nil
	}
	return &render.Axes{X: x, Y: y}
}

// Frame collects everything the viewport needs to draw.
func (s *State) Frame() render.Frame {
	return render.Frame{
		Image:   s.Engine.CurrentImage(),
		View:    s.View,
		Preview: s.Controller.Preview(),
		Axes:    s.Axes(),
	}
}

// SetMode switches the drawing tool.
func (s *State) SetMode(m interaction.Mode) {
	s.Controller.SetMode(m)
	s.Emit(EventModeChanged, m)
}

// PointerDown forwards a press at screen position (sx, sy).
func (s *State) PointerDown(sx, sy float64, b interaction.Button) {
	s.Controller.PointerDown(sx, sy, b)
	s.pointerMoved()
}

// PointerMove forwards pointer motion.
func (s *State) PointerMove(sx, sy float64) {
	s.Controller.PointerMove(sx, sy)
	s.pointerMoved()
}

// PointerUp forwards a release.
func (s *State) PointerUp(sx, sy float64, b interaction.Button) {
	s.Controller.PointerUp(sx, sy, b)
	s.pointerMoved()
}

// PointerLeave forwards the pointer leaving the viewport.
func (s *State) PointerLeave() {
	s.Controller.PointerLeave()
	s.Emit(EventViewChanged, nil)
}

func (s *State) pointerMoved() {
	if p, ok := s.Controller.Pointer(); ok {
		s.Emit(EventPointerMoved, p)
	}
}

// Wheel forwards a wheel event at screen position (sx, sy).
func (s *State) Wheel(sx, sy, delta float64, mods view.Modifiers) {
	s.View.Wheel(sx, sy, delta, mods)
	s.Emit(EventViewChanged, nil)
}

// SetTranslate sets the pan offsets directly.
func (s *State) SetTranslate(tx, ty float64) {
	s.View.SetTranslateX(tx)
	s.View.SetTranslateY(ty)
	s.Emit(EventViewChanged, nil)
}

// ResetView restores unit scale and no pan.
func (s *State) ResetView() {
	s.View.Reset()
	s.Emit(EventViewChanged, nil)
}

// Undo reverts the last edit.
func (s *State) Undo() {
	s.Engine.Undo()
}

// HasUnsavedChanges reports whether closing would lose edits.
func (s *State) HasUnsavedChanges() bool {
	return s.Engine.IsLoaded() && s.Engine.Modified()
}

// PointerLabel formats p for the status area.
func PointerLabel(p geometry.Point2D, ok bool) string {
	if !ok {
		return "Pointer: (---, ---)"
	}
	px := p.Pixel()
	return fmt.Sprintf("Pointer: (%d, %d)", px.X, px.Y)
}

// SizeLabel formats the current image size for the status area.
func (s *State) SizeLabel() string {
	w, h := s.Engine.ImageSize()
	return fmt.Sprintf("Image Size: %d x %d", w, h)
}

// WorldLabel formats the world position under p, or "" without metadata.
func (s *State) WorldLabel(p geometry.Point2D) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Metadata == nil {
		return ""
	}
	x, y, ok := s.Metadata.PixelToWorld(p)
	if !ok {
		return ""
	}
	return fmt.Sprintf("World: (%.2f, %.2f) m", x, y)
}

// CurrentImage returns the image to display, nil when nothing is loaded.
func (s *State) CurrentImage() *mapimage.Buffer {
	return s.Engine.CurrentImage()
}
