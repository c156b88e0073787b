package editor

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	mapimage "map-editor/internal/image"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = colorutil.Outside
	white = colorutil.Boundary
)

// loaded returns an engine with b loaded from a PNG in a temp dir.
func loaded(t *testing.T, b *mapimage.Buffer, opts ...Option) *Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, b.Save(path))
	e := New(opts...)
	require.NoError(t, e.Load(path))
	return e
}

func TestNullImageEditsAreNoOps(t *testing.T) {
	e := New()
	changes := 0
	e.On(EventImageChanged, func(interface{}) { changes++ })

	e.Invert()
	e.RotateClockwise()
	e.RotateCounterclockwise()
	e.DrawBrush(1, 1, nil)
	e.DrawBrush(2, 2, &geometry.Point2D{X: 1, Y: 1})
	e.DrawLine(0, 0, 5, 5)
	e.FillRectangle(0, 0, 5, 5)
	e.Undo()
	e.SetHighlightEnabled(true)

	assert.False(t, e.IsLoaded())
	assert.Zero(t, e.UndoDepth())
	assert.Nil(t, e.CurrentImage())
	assert.Zero(t, changes)
	w, h := e.ImageSize()
	assert.Zero(t, w)
	assert.Zero(t, h)
	assert.ErrorIs(t, e.Save(filepath.Join(t.TempDir(), "x.png")), mapimage.ErrNullImage)
}

func TestLoadFailureKeepsState(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 3, black))
	e.Invert()
	before := e.Baseline().Clone()

	err := e.Load(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)

	assert.True(t, e.Baseline().Equal(before))
	assert.Equal(t, 1, e.UndoDepth())
	assert.True(t, e.Modified())
}

func TestLoadClearsHistory(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 4, black))
	e.Invert()
	e.Invert()
	require.Equal(t, 2, e.UndoDepth())

	path := filepath.Join(t.TempDir(), "other.png")
	require.NoError(t, mapimage.NewFilled(2, 2, white).Save(path))
	require.NoError(t, e.Load(path))

	assert.Zero(t, e.UndoDepth())
	assert.False(t, e.Modified())
	assert.Equal(t, path, e.Path())
}

func TestLineScenario(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 4, black))
	e.SetDrawColor(white)
	e.SetDrawThickness(1)

	e.DrawLine(0, 0, 3, 3)

	img := e.CurrentImage()
	assert.Equal(t, white, img.At(0, 0))
	assert.Equal(t, white, img.At(3, 3))
	assert.Equal(t, black, img.At(0, 3))
	assert.Equal(t, 1, e.UndoDepth())

	e.Undo()
	assert.True(t, e.CurrentImage().Equal(mapimage.NewFilled(4, 4, black)))
	assert.Zero(t, e.UndoDepth())
}

func TestRectangleScenario(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(8, 8, black))
	e.SetDrawColor(white)

	e.FillRectangle(5.7, 6.2, 2.1, 2.9)

	img := e.CurrentImage()
	assert.Equal(t, 20, img.Count(white))
	assert.Equal(t, white, img.At(2, 2))
	assert.Equal(t, white, img.At(5, 6))
	assert.Equal(t, black, img.At(6, 6))
}

func TestUndoReplaysSnapshotsInReverse(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(10, 6, black))
	e.SetDrawColor(white)
	e.SetDrawThickness(2)

	var states []*mapimage.Buffer
	ops := []func(){
		func() { e.DrawBrush(2, 2, nil) },
		func() { e.RotateClockwise() },
		func() { e.DrawLine(0, 0, 5, 9) },
		func() { e.Invert() },
		func() { e.FillRectangle(1, 1, 3, 2) },
		func() { e.RotateCounterclockwise() },
		func() { e.DrawBrush(7, 3, &geometry.Point2D{X: 2, Y: 3}) },
	}
	for _, op := range ops {
		states = append(states, e.Baseline().Clone())
		op()
	}
	require.Equal(t, len(ops), e.UndoDepth())

	for i := len(states) - 1; i >= 0; i-- {
		e.Undo()
		assert.True(t, e.Baseline().Equal(states[i]), "undo to state %d", i)
	}
	assert.Zero(t, e.UndoDepth())

	e.Undo()
	assert.True(t, e.Baseline().Equal(states[0]))
}

func TestEveryEditPushesHistory(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 4, black))
	e.SetDrawColor(black)

	e.FillRectangle(0, 0, 3, 3)
	e.DrawBrush(100, 100, nil)

	assert.Equal(t, 2, e.UndoDepth())
	assert.True(t, e.Baseline().Equal(mapimage.NewFilled(4, 4, black)))
}

func TestRotate(t *testing.T) {
	src := mapimage.NewFilled(3, 2, black)
	src.Set(0, 0, white)
	e := loaded(t, src)

	e.RotateClockwise()
	w, h := e.ImageSize()
	assert.Equal(t, []int{2, 3}, []int{w, h})
	assert.Equal(t, white, e.Baseline().At(1, 0))

	e.RotateCounterclockwise()
	e.RotateCounterclockwise()
	assert.Equal(t, white, e.Baseline().At(0, 2))
}

func TestBrushStroke(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(20, 20, black))
	e.SetDrawColor(white)
	e.SetDrawThickness(1)

	e.DrawBrush(2.9, 5.5, nil)
	e.DrawBrush(8.1, 5.0, &geometry.Point2D{X: 2.9, Y: 5.5})

	assert.Equal(t, 7, e.Baseline().Count(white))
	for x := 2; x <= 8; x++ {
		assert.Equal(t, white, e.Baseline().At(x, 5))
	}
}

func TestHighlightScenario(t *testing.T) {
	src := mapimage.NewFilled(2, 2, black)
	src.Set(0, 0, colorutil.Sentinel)
	e := loaded(t, src)

	e.SetHighlightEnabled(true)
	img := e.CurrentImage()
	assert.Equal(t, colorutil.Marker, img.At(0, 0))
	assert.Equal(t, black, img.At(1, 1))
	assert.Equal(t, colorutil.Sentinel, e.Baseline().At(0, 0))

	e.SetHighlightEnabled(false)
	assert.Equal(t, colorutil.Sentinel, e.CurrentImage().At(0, 0))
}

func TestHighlightFollowsEdits(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(30, 20, black))
	e.SetHighlightEnabled(true)
	e.SetDrawColor(colorutil.Sentinel)
	e.SetDrawThickness(3)

	check := func(step string) {
		want := mapimage.Highlight(e.Baseline(), colorutil.Sentinel, colorutil.Marker)
		assert.True(t, e.CurrentImage().Equal(want), step)
	}

	e.DrawBrush(5, 5, nil)
	check("brush")
	e.DrawLine(0, 19, 29, 0)
	check("line")
	e.SetDrawColor(white)
	e.FillRectangle(10, 5, 12, 8)
	check("rect")
	e.RotateClockwise()
	check("rotate")
	e.Invert()
	check("invert")
	e.Undo()
	check("undo invert")
	e.Undo()
	check("undo rotate")
}

func TestHighlightRebuiltWhenReenabled(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(6, 6, black))
	e.SetHighlightEnabled(true)
	e.SetHighlightEnabled(false)

	e.SetDrawColor(colorutil.Sentinel)
	e.FillRectangle(0, 0, 2, 2)
	assert.Zero(t, e.CurrentImage().Count(colorutil.Marker))

	e.SetHighlightEnabled(true)
	assert.Equal(t, 9, e.CurrentImage().Count(colorutil.Marker))
}

func TestSaveWritesCurrentImage(t *testing.T) {
	src := mapimage.NewFilled(3, 3, black)
	src.Set(1, 1, colorutil.Sentinel)
	e := loaded(t, src)
	e.SetHighlightEnabled(true)
	e.Invert()
	e.Invert()
	require.True(t, e.Modified())

	out := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, e.Save(out))
	assert.False(t, e.Modified())
	assert.Equal(t, out, e.Path())

	got, err := mapimage.Load(out)
	require.NoError(t, err)
	assert.Equal(t, colorutil.Marker, got.At(1, 1))
}

func TestUndoToSavedStateIsUnmodified(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 4, black))
	e.Invert()
	require.True(t, e.Modified())
	e.Undo()
	assert.False(t, e.Modified(), "back to the loaded image")

	e.Invert()
	e.Invert()
	require.NoError(t, e.Save(filepath.Join(t.TempDir(), "saved.png")))
	e.Invert()
	e.Undo()
	assert.False(t, e.Modified(), "back to the saved image")

	e.Undo()
	assert.True(t, e.Modified(), "before the save")
	e.Invert()
	assert.True(t, e.Modified(), "same depth as the save, different history")
}

func TestFarStrokeFinishes(t *testing.T) {
	e := loaded(t, mapimage.NewFilled(4, 4, black))
	e.SetDrawColor(white)
	e.SetDrawThickness(1)

	e.DrawLine(0, 0, 1e300, 0)
	e.DrawLine(0, 3, math.NaN(), 3)
	e.FillRectangle(2, 2, math.Inf(1), math.Inf(1))

	img := e.Baseline()
	for x := 0; x < 4; x++ {
		assert.Equal(t, white, img.At(x, 0), "x=%d", x)
	}
	assert.Equal(t, white, img.At(0, 3))
	assert.Equal(t, white, img.At(3, 3))
	assert.Equal(t, 3, e.UndoDepth())
}

func TestLoadReader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, mapimage.NewFilled(5, 2, white).Encode(&buf, mapimage.FormatPNG))

	e := New()
	require.NoError(t, e.LoadReader(&buf, "stdin"))
	w, h := e.ImageSize()
	assert.Equal(t, 5, w)
	assert.Equal(t, 2, h)

	assert.Error(t, e.LoadReader(bytes.NewReader([]byte("junk")), "junk"))
	assert.Equal(t, "stdin", e.Path())
}

func TestThicknessClamp(t *testing.T) {
	e := New(WithThickness(0))
	assert.Equal(t, MinThickness, e.DrawThickness())
	e.SetDrawThickness(500)
	assert.Equal(t, MaxThickness, e.DrawThickness())
	e.SetDrawThickness(7)
	assert.Equal(t, 7, e.DrawThickness())
	assert.Equal(t, DefaultThickness, New().DrawThickness())
	assert.Equal(t, black, New().DrawColor())
}

func TestEvents(t *testing.T) {
	e := New()
	var got []string
	e.On(EventImageLoaded, func(d interface{}) { got = append(got, "loaded:"+filepath.Base(d.(string))) })
	e.On(EventImageChanged, func(d interface{}) {
		r := d.(image.Rectangle)
		got = append(got, "changed:"+r.String())
	})
	e.On(EventUndo, func(d interface{}) { got = append(got, "undo") })
	e.On(EventHighlightChanged, func(d interface{}) {
		if d.(bool) {
			got = append(got, "highlight:on")
		}
	})

	path := filepath.Join(t.TempDir(), "m.png")
	require.NoError(t, mapimage.NewFilled(4, 4, black).Save(path))
	require.NoError(t, e.Load(path))
	e.SetDrawThickness(1)
	e.FillRectangle(1, 1, 2, 2)
	e.SetHighlightEnabled(true)
	e.SetHighlightEnabled(true)
	e.Undo()

	assert.Equal(t, []string{
		"loaded:m.png",
		"changed:(1,1)-(3,3)",
		"highlight:on",
		"undo",
		"changed:(0,0)-(4,4)",
	}, got)
}

func TestWithHighlightColors(t *testing.T) {
	sentinel := color.NRGBA{R: 9, G: 9, B: 9, A: 255}
	src := mapimage.NewFilled(2, 1, black)
	src.Set(1, 0, sentinel)
	e := loaded(t, src, WithHighlightColors(sentinel, white))

	e.SetHighlightEnabled(true)
	assert.Equal(t, white, e.CurrentImage().At(1, 0))
}
