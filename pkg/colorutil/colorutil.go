// Package colorutil provides shared colors and color parsing for the map editor.
package colorutil

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Map cell colors. Inside is one step above black so that it reads as black
// on screen but can still be told apart by an exact comparison.
var (
	Outside  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	Inside   = color.NRGBA{R: 1, G: 1, B: 1, A: 255}
	Boundary = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// Highlight colors: pixels equal to Sentinel are shown as Marker when the
// occupied-area view is on.
var (
	Sentinel = Inside
	Marker   = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
)

// Overlay colors used by the renderers.
var (
	Background = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	Preview    = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	AxisX      = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	AxisY      = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
)

// Preset is a named drawing color offered in the color picker.
type Preset struct {
	Name  string
	Color color.NRGBA
}

// Presets returns the drawing presets in display order.
func Presets() []Preset {
	return []Preset{
		{Name: "Outside", Color: Outside},
		{Name: "Inside", Color: Inside},
		{Name: "Boundary", Color: Boundary},
	}
}

// PresetByName looks up a preset, ignoring case.
func PresetByName(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Parse accepts a preset name, #RRGGBB or #RRGGBBAA.
func Parse(s string) (color.NRGBA, error) {
	if p, ok := PresetByName(s); ok {
		return p.Color, nil
	}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
