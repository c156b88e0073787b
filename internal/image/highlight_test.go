package image

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sentinel = color.NRGBA{R: 1, G: 1, B: 1, A: 255}
	marker   = color.NRGBA{R: 255, A: 255}
)

func TestHighlightReplacesExactMatchesOnly(t *testing.T) {
	b := NewFilled(3, 1, black)
	b.Set(0, 0, sentinel)
	b.Set(1, 0, color.NRGBA{R: 1, G: 1, B: 1, A: 254})

	h := Highlight(b, sentinel, marker)

	require.NotNil(t, h)
	assert.Equal(t, marker, h.At(0, 0))
	assert.Equal(t, color.NRGBA{R: 1, G: 1, B: 1, A: 254}, h.At(1, 0))
	assert.Equal(t, black, h.At(2, 0))
	assert.Equal(t, sentinel, b.At(0, 0), "source must not change")
}

func TestHighlightIsPure(t *testing.T) {
	b := gradient(64, 48)
	b.FillRect(image.Pt(5, 5), image.Pt(20, 30), sentinel)

	h1 := Highlight(b, sentinel, marker)
	h2 := Highlight(b, sentinel, marker)
	assert.True(t, h1.Equal(h2))
	assert.Zero(t, h1.Count(sentinel))
	assert.Equal(t, 16*26+b.Count(marker), h1.Count(marker))
}

func TestHighlightIntoMatchesFullRebuild(t *testing.T) {
	b := NewFilled(50, 40, black)
	b.FillRect(image.Pt(0, 0), image.Pt(10, 10), sentinel)
	cache := Highlight(b, sentinel, marker)

	p0 := image.Pt(3, 30)
	dirty := b.DrawSegment(&p0, image.Pt(45, 2), sentinel, 5)
	dirty = dirty.Union(b.FillRect(image.Pt(2, 2), image.Pt(4, 4), white))
	HighlightInto(cache, b, dirty, sentinel, marker)

	assert.True(t, cache.Equal(Highlight(b, sentinel, marker)))
}

func TestHighlightNull(t *testing.T) {
	assert.Nil(t, Highlight(nil, sentinel, marker))
	HighlightInto(nil, New(2, 2), image.Rect(0, 0, 2, 2), sentinel, marker)
}
