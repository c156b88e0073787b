package interaction

import (
	"fmt"
	"path/filepath"
	"testing"

	"map-editor/internal/editor"
	mapimage "map-editor/internal/image"
	"map-editor/internal/view"
	"map-editor/pkg/colorutil"
	"map-editor/pkg/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs every edit it receives.
type recorder struct {
	calls     []string
	thickness int
}

func (r *recorder) DrawBrush(x, y float64, prev *geometry.Point2D) {
	if prev == nil {
		r.calls = append(r.calls, fmt.Sprintf("brush %g,%g", x, y))
		return
	}
	r.calls = append(r.calls, fmt.Sprintf("brush %g,%g from %g,%g", x, y, prev.X, prev.Y))
}

func (r *recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.calls = append(r.calls, fmt.Sprintf("line %g,%g %g,%g", x1, y1, x2, y2))
}

func (r *recorder) FillRectangle(x1, y1, x2, y2 float64) {
	r.calls = append(r.calls, fmt.Sprintf("rect %g,%g %g,%g", x1, y1, x2, y2))
}

func (r *recorder) DrawThickness() int { return r.thickness }

func newController(scale float64) (*Controller, *recorder) {
	v := view.New()
	v.SetScale(scale)
	rec := &recorder{thickness: 5}
	return New(rec, v), rec
}

func TestBrushDrag(t *testing.T) {
	c, rec := newController(1)

	c.PointerMove(1, 1)
	c.PointerDown(2, 3, ButtonPrimary)
	assert.Equal(t, StateBrushDragging, c.State())
	c.PointerMove(4, 3)
	c.PointerMove(6, 8)
	c.PointerUp(6, 8, ButtonPrimary)
	c.PointerMove(9, 9)

	assert.Equal(t, []string{
		"brush 2,3",
		"brush 4,3 from 2,3",
		"brush 6,8 from 4,3",
	}, rec.calls)
	assert.Equal(t, StateIdle, c.State())
}

func TestLineTwoClicks(t *testing.T) {
	c, rec := newController(2)
	c.SetMode(ModeLine)

	c.PointerDown(10, 20, ButtonPrimary)
	assert.Equal(t, StateLineArmed, c.State())
	c.PointerUp(10, 20, ButtonPrimary)
	c.PointerMove(30, 30)
	assert.Empty(t, rec.calls)

	c.PointerDown(40, 8, ButtonPrimary)
	assert.Equal(t, []string{"line 5,10 20,4"}, rec.calls)
	assert.Equal(t, StateIdle, c.State())
}

func TestRectangleTwoClicks(t *testing.T) {
	c, rec := newController(1)
	c.SetMode(ModeRectangle)

	c.PointerDown(2, 2, ButtonPrimary)
	c.PointerMove(3, 4)
	c.PointerDown(5, 6, ButtonPrimary)

	assert.Equal(t, []string{"rect 2,2 5,6"}, rec.calls)
	assert.Equal(t, StateIdle, c.State())

	c.PointerDown(1, 1, ButtonPrimary)
	assert.Equal(t, StateRectArmed, c.State())
}

func TestCancelDropsArmedPoint(t *testing.T) {
	for _, m := range []Mode{ModeLine, ModeRectangle} {
		t.Run(m.String(), func(t *testing.T) {
			c, rec := newController(1)
			c.SetMode(m)

			c.PointerDown(1, 1, ButtonPrimary)
			c.Cancel()
			assert.Equal(t, StateIdle, c.State())
			_, armed := c.Armed()
			assert.False(t, armed)

			c.PointerDown(7, 7, ButtonPrimary)
			assert.Empty(t, rec.calls)
			p, armed := c.Armed()
			assert.True(t, armed)
			assert.Equal(t, geometry.Pt(7, 7), p)
		})
	}
}

func TestModeChangeResets(t *testing.T) {
	c, rec := newController(1)
	c.SetMode(ModeLine)
	c.PointerDown(1, 1, ButtonPrimary)

	c.SetMode(ModeRectangle)
	assert.Equal(t, StateIdle, c.State())
	c.PointerDown(4, 4, ButtonPrimary)
	assert.Empty(t, rec.calls)

	c.SetMode(ModeLine)
	c.PointerDown(8, 8, ButtonPrimary)
	assert.Empty(t, rec.calls)
	assert.Equal(t, StateLineArmed, c.State())

	c.SetMode(ModeBrush)
	c.PointerDown(2, 2, ButtonPrimary)
	c.SetMode(ModeBrush)
	c.PointerMove(3, 3)
	assert.Equal(t, []string{"brush 2,2"}, rec.calls)
}

func TestSecondaryButtonIgnored(t *testing.T) {
	c, rec := newController(1)
	c.PointerDown(1, 1, ButtonSecondary)
	c.PointerMove(2, 2)
	assert.Empty(t, rec.calls)
	assert.Equal(t, StateIdle, c.State())

	p, ok := c.Pointer()
	assert.True(t, ok)
	assert.Equal(t, geometry.Pt(2, 2), p)
}

func TestPreview(t *testing.T) {
	c, _ := newController(1)
	assert.Equal(t, PreviewNone, c.Preview().Kind)

	c.PointerMove(3, 4)
	pv := c.Preview()
	assert.Equal(t, PreviewBrush, pv.Kind)
	assert.Equal(t, geometry.Pt(3, 4), pv.To)
	assert.Equal(t, 5, pv.Thickness)

	c.PointerLeave()
	assert.Equal(t, PreviewNone, c.Preview().Kind)

	c.SetMode(ModeRectangle)
	c.PointerDown(1, 1, ButtonPrimary)
	c.PointerMove(9, 6)
	pv = c.Preview()
	assert.Equal(t, PreviewRect, pv.Kind)
	assert.Equal(t, geometry.Pt(1, 1), pv.From)
	assert.Equal(t, geometry.Pt(9, 6), pv.To)

	c.SetMode(ModeLine)
	assert.Equal(t, PreviewBrush, c.Preview().Kind)
	c.PointerDown(2, 2, ButtonPrimary)
	assert.Equal(t, PreviewLine, c.Preview().Kind)

	c.PointerLeave()
	pv = c.Preview()
	assert.Equal(t, PreviewLine, pv.Kind)
	assert.Equal(t, pv.From, pv.To)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("rectangle")
	require.NoError(t, err)
	assert.Equal(t, ModeRectangle, m)
	_, err = ParseMode("circle")
	assert.Error(t, err)
}

func TestDrivesEngine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, mapimage.NewFilled(8, 8, colorutil.Outside).Save(path))
	e := editor.New(editor.WithDrawColor(colorutil.Boundary))
	require.NoError(t, e.Load(path))

	v := view.New()
	v.SetScale(2)
	v.PanBy(10, 10)
	c := New(e, v)
	c.SetMode(ModeRectangle)

	c.PointerDown(14, 14, ButtonPrimary)
	c.PointerDown(21, 23, ButtonPrimary)

	img := e.CurrentImage()
	assert.Equal(t, 20, img.Count(colorutil.Boundary))
	assert.Equal(t, colorutil.Boundary, img.At(2, 2))
	assert.Equal(t, colorutil.Boundary, img.At(5, 6))
	assert.Equal(t, 1, e.UndoDepth())
}
