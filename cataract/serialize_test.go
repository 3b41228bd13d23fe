package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCSSCompact(t *testing.T) {
	sheet, err := Parse(`.a { color: red; font-size: 12px; }`)
	require.NoError(t, err)
	assert.Equal(t, ".a{color: red; font-size: 12px;}\n", sheet.ToCSS())
}

func TestToCSSImportantRoundTrips(t *testing.T) {
	sheet, err := Parse(`.a { color: red !important; }`)
	require.NoError(t, err)
	assert.Equal(t, ".a{color: red !important;}\n", sheet.ToCSS())
}

func TestToFormattedCSSIndents(t *testing.T) {
	sheet, err := Parse(`.a { color: red; }`)
	require.NoError(t, err)
	assert.Equal(t, ".a {\n  color: red;\n}\n", sheet.ToFormattedCSS())
}

func TestToCSSMediaFilter(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } @media print { .b { color: blue; } }`)
	require.NoError(t, err)
	out := sheet.ToCSS("print")
	assert.NotContains(t, out, ".a{")
	assert.Contains(t, out, ".b{color: blue;}")
}

func TestToFormattedCSSAlwaysIncludesBaseRules(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } @media print { .b { color: blue; } }`)
	require.NoError(t, err)
	out := sheet.ToFormattedCSS("print")
	assert.Contains(t, out, ".a {")
	assert.Contains(t, out, "@media print {")
}

func TestToCSSGroupedSelectorListPreserved(t *testing.T) {
	sheet, err := Parse(`.a, .b { color: red; }`)
	require.NoError(t, err)
	assert.Equal(t, ".a, .b{color: red;}\n", sheet.ToCSS())
}

func TestToCSSUnresolvedImportEmitted(t *testing.T) {
	sheet, err := Parse(`@import "reset.css"; .a { color: red; }`)
	require.NoError(t, err)
	out := sheet.ToCSS()
	assert.Contains(t, out, `@import "reset.css";`)
}

func TestToCSSCharsetEmittedFirst(t *testing.T) {
	sheet, err := Parse(`@charset "UTF-8"; .a { color: red; }`)
	require.NoError(t, err)
	out := sheet.ToCSS()
	assert.Equal(t, `@charset "UTF-8";`+"\n.a{color: red;}\n", out)
}
