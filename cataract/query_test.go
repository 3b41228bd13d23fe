package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryMediaFilter(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } @media print { .b { color: blue; } }`)
	require.NoError(t, err)
	rules := sheet.Query().Media("print").Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".b", rules[0].Selector)
}

func TestQueryBaseOnly(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } @media print { .b { color: blue; } }`)
	require.NoError(t, err)
	rules := sheet.Query().BaseOnly().Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
}

func TestQuerySpecificityRange(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } #id { color: blue; }`)
	require.NoError(t, err)
	rules := sheet.Query().SpecificityRange(0, 50).Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
}

func TestQueryProperty(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .b { font-size: 12px; }`)
	require.NoError(t, err)
	rules := sheet.Query().Property("color", nil, false).Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
}

func TestQueryImportant(t *testing.T) {
	sheet, err := Parse(`.a { color: red !important; } .b { color: blue; }`)
	require.NoError(t, err)
	rules := sheet.Query().Important(nil).Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, ".a", rules[0].Selector)
}

func TestFindBySelector(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .a { font-size: 1px; }`)
	require.NoError(t, err)
	rules := sheet.FindBySelector(".a")
	assert.Len(t, rules, 2)
}

func TestSelectorsDistinctFirstAppearance(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .b { color: blue; } .a { font-size: 1px; }`)
	require.NoError(t, err)
	assert.Equal(t, []string{".a", ".b"}, sheet.Selectors())
}

func TestSemanticEqualAfterShorthandExpansion(t *testing.T) {
	a := Rule{Selector: ".x", Declarations: []Declaration{{Property: "margin", Value: "1px"}}}
	b := Rule{Selector: ".x", Declarations: []Declaration{
		{Property: "margin-top", Value: "1px"}, {Property: "margin-right", Value: "1px"},
		{Property: "margin-bottom", Value: "1px"}, {Property: "margin-left", Value: "1px"},
	}}
	assert.True(t, SemanticEqual(a, b))
}

func TestCustomPropertiesBaseOnly(t *testing.T) {
	sheet, err := Parse(`:root { --main-color: red; } @media print { :root { --main-color: blue; } }`)
	require.NoError(t, err)
	props := sheet.CustomProperties(nil)
	require.Contains(t, props, "--main-color")
	assert.Equal(t, "red", props["--main-color"].Value)
}

func TestAddConcatenatesAndFlattens(t *testing.T) {
	a, err := Parse(`.a { color: red; }`)
	require.NoError(t, err)
	b, err := Parse(`.a { color: blue; }`)
	require.NoError(t, err)
	combined := a.Add(b)
	require.Equal(t, 1, combined.Len())
	assert.Equal(t, "blue", combined.At(0).Declarations[0].Value)
}

func TestSelectorGroupReturnsListMembership(t *testing.T) {
	sheet, err := Parse(`.a, .b { color: red; }`)
	require.NoError(t, err)
	listID := *sheet.At(0).SelectorListID
	assert.Equal(t, []uint32{0, 1}, sheet.SelectorGroup(listID))
}

func TestMediaGroupReturnsListMembership(t *testing.T) {
	sheet, err := Parse(`@media screen, print { .a { color: red; } }`)
	require.NoError(t, err)
	require.Len(t, sheet.MediaQueryLists, 1)
	for listID := range sheet.MediaQueryLists {
		assert.Len(t, sheet.MediaGroup(listID), 2)
	}
}

func TestSubtractRemovesSemanticallyEqualRules(t *testing.T) {
	a, err := Parse(`.a { color: red; } .b { color: blue; }`)
	require.NoError(t, err)
	b, err := Parse(`.a { color: red; }`)
	require.NoError(t, err)
	out := a.Subtract(b)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, ".b", out.At(0).Selector)
}
