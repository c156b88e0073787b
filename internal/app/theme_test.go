package app

import (
	"image/color"
	"testing"

	"map-editor/pkg/colorutil"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/stretchr/testify/assert"
)

func TestPanelsContrastWithMapPixels(t *testing.T) {
	th := &MapEditorTheme{}
	for _, v := range []fyne.ThemeVariant{theme.VariantLight, theme.VariantDark} {
		bg := color.NRGBAModel.Convert(th.Color(theme.ColorNameBackground, v)).(color.NRGBA)
		assert.NotEqual(t, colorutil.Outside, bg)
		assert.NotEqual(t, colorutil.Boundary, bg)
		assert.NotEqual(t, colorutil.Inside, bg)
		assert.InDelta(t, 128, int(bg.R), 64, "variant %d", v)
	}
	assert.Equal(t, colorutil.Preview, th.Color(theme.ColorNamePrimary, theme.VariantLight))
	assert.Equal(t, theme.DefaultTheme().Color(theme.ColorNameError, theme.VariantDark),
		th.Color(theme.ColorNameError, theme.VariantDark))
}
