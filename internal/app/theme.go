package app

import (
	"image/color"

	"map-editor/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MapEditorTheme draws panels in gray and takes its accents from the canvas
// marker and preview colors.
type MapEditorTheme struct{}

var _ fyne.Theme = (*MapEditorTheme)(nil)

// Panel grays for the light and dark variants, clear of 0x00 and 0xFF.
var (
	panelLight = color.NRGBA{R: 0xB0, G: 0xB0, B: 0xB0, A: 0xFF}
	panelDark  = color.NRGBA{R: 0x50, G: 0x50, B: 0x50, A: 0xFF}
)

func (t *MapEditorTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return panelDark
		}
		return panelLight
	case theme.ColorNameInputBackground, theme.ColorNameMenuBackground, theme.ColorNameOverlayBackground:
		return colorutil.Background
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.Preview
	case theme.ColorNameSelection:
		m := colorutil.Marker
		m.A = 0x60
		return m
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *MapEditorTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *MapEditorTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *MapEditorTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInlineIcon:
		return 18
	default:
		return theme.DefaultTheme().Size(name)
	}
}
