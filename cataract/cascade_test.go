package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenMergesDuplicateSelectorsLastWriteWins(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .a { color: blue; }`)
	require.NoError(t, err)
	flat := sheet.Flatten()
	require.Equal(t, 1, flat.Len())
	assert.Equal(t, []Declaration{{Property: "color", Value: "blue"}}, flat.At(0).Declarations)
}

func TestFlattenImportantBeatsHigherSpecificity(t *testing.T) {
	sheet, err := Parse(`.a { color: red !important; } #id.a { color: blue; }`)
	require.NoError(t, err)
	flat := sheet.Flatten()
	for i := 0; i < flat.Len(); i++ {
		for _, d := range flat.At(i).Declarations {
			if d.Property == "color" && flat.At(i).Selector == ".a" {
				assert.Equal(t, "red", d.Value)
				assert.True(t, d.Important)
			}
		}
	}
}

func TestFlattenHigherSpecificityWins(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } div.a { color: blue; }`)
	require.NoError(t, err)
	flat := sheet.Flatten()
	var sawHigh bool
	for i := 0; i < flat.Len(); i++ {
		r := flat.At(i)
		if r.Selector == "div.a" {
			sawHigh = true
			assert.Equal(t, "blue", r.Declarations[0].Value)
		}
	}
	assert.True(t, sawHigh)
}

func TestFlattenResynthesizesCompleteShorthand(t *testing.T) {
	sheet, err := Parse(`.a { margin-top: 1px; margin-right: 2px; margin-bottom: 1px; margin-left: 2px; }`)
	require.NoError(t, err)
	flat := sheet.Flatten()
	require.Equal(t, 1, flat.Len())
	require.Len(t, flat.At(0).Declarations, 1)
	assert.Equal(t, "margin", flat.At(0).Declarations[0].Property)
	assert.Equal(t, "1px 2px", flat.At(0).Declarations[0].Value)
}

func TestFlattenKeepsSeparateMediaGroups(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } @media print { .a { color: blue; } }`)
	require.NoError(t, err)
	flat := sheet.Flatten()
	require.Equal(t, 2, flat.Len())
}
