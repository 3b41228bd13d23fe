package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandShorthandMarginFourValues(t *testing.T) {
	got, ok := ExpandShorthand("margin", "1px 2px 3px 4px")
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"margin-top": "1px", "margin-right": "2px", "margin-bottom": "3px", "margin-left": "4px",
	}, got)
}

func TestExpandShorthandMarginOneValue(t *testing.T) {
	got, ok := ExpandShorthand("margin", "10px")
	require.True(t, ok)
	for _, side := range []string{"top", "right", "bottom", "left"} {
		assert.Equal(t, "10px", got["margin-"+side])
	}
}

func TestSynthesizeShorthandMarginMinimalForm(t *testing.T) {
	out, ok := SynthesizeShorthand("margin", map[string]string{
		"margin-top": "1px", "margin-right": "2px", "margin-bottom": "1px", "margin-left": "2px",
	})
	require.True(t, ok)
	assert.Equal(t, "1px 2px", out)
}

func TestExpandBorderClassifiesWidthStyleColor(t *testing.T) {
	got, ok := ExpandShorthand("border", "1px solid red")
	require.True(t, ok)
	assert.Equal(t, "1px", got["border-top-width"])
	assert.Equal(t, "solid", got["border-top-style"])
	assert.Equal(t, "red", got["border-top-color"])
	assert.Equal(t, "1px", got["border-left-width"])
}

func TestShorthandLonghandsBorder(t *testing.T) {
	got, ok := ShorthandLonghands("border")
	require.True(t, ok)
	assert.Len(t, got, 12)
}

func TestExpandFontShorthand(t *testing.T) {
	got, ok := ExpandShorthand("font", "italic bold 12px/1.5 Arial, sans-serif")
	require.True(t, ok)
	assert.Equal(t, "italic", got["font-style"])
	assert.Equal(t, "bold", got["font-weight"])
	assert.Equal(t, "12px", got["font-size"])
	assert.Equal(t, "1.5", got["line-height"])
	assert.Equal(t, "Arial, sans-serif", got["font-family"])
}

func TestSynthesizeFontOmitsNormalDefaults(t *testing.T) {
	out, ok := SynthesizeShorthand("font", map[string]string{
		"font-style": "normal", "font-variant": "normal", "font-weight": "normal",
		"font-size": "12px", "line-height": "normal", "font-family": "Arial",
	})
	require.True(t, ok)
	assert.Equal(t, "12px Arial", out)
}

func TestExpandShorthandUnrecognizedProperty(t *testing.T) {
	_, ok := ExpandShorthand("color", "red")
	assert.False(t, ok)
}

func TestExpandBackgroundShorthand(t *testing.T) {
	got, ok := ExpandShorthand("background", "url(bg.png) no-repeat fixed")
	require.True(t, ok)
	assert.Equal(t, "url(bg.png)", got["background-image"])
	assert.Equal(t, "no-repeat", got["background-repeat"])
	assert.Equal(t, "fixed", got["background-attachment"])
}
