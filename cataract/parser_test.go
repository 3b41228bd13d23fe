package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasicRule(t *testing.T) {
	sheet, err := Parse(`.foo { color: red; font-size: 12px; }`)
	require.NoError(t, err)
	require.Equal(t, 1, sheet.Len())
	r := sheet.At(0)
	assert.Equal(t, ".foo", r.Selector)
	assert.Equal(t, []Declaration{
		{Property: "color", Value: "red"},
		{Property: "font-size", Value: "12px"},
	}, r.Declarations)
}

func TestParseImportantDeclaration(t *testing.T) {
	sheet, err := Parse(`.foo { color: red !important; }`)
	require.NoError(t, err)
	decl := sheet.At(0).Declarations[0]
	assert.True(t, decl.Important)
	assert.Equal(t, "red", decl.Value)
}

func TestParseCommaSelectorListGrouped(t *testing.T) {
	sheet, err := Parse(`.a, .b { color: blue; }`, WithSelectorLists(true))
	require.NoError(t, err)
	require.Equal(t, 2, sheet.Len())
	assert.NotNil(t, sheet.At(0).SelectorListID)
	assert.Equal(t, *sheet.At(0).SelectorListID, *sheet.At(1).SelectorListID)
	ids := sheet.SelectorLists[*sheet.At(0).SelectorListID]
	assert.Equal(t, []uint32{0, 1}, ids)
}

func TestParseSelectorListsDisabled(t *testing.T) {
	sheet, err := Parse(`.a, .b { color: blue; }`, WithSelectorLists(false))
	require.NoError(t, err)
	require.Equal(t, 2, sheet.Len())
	assert.Nil(t, sheet.At(0).SelectorListID)
}

func TestParseMediaQuery(t *testing.T) {
	sheet, err := Parse(`@media screen and (max-width: 768px) { .foo { color: red; } }`)
	require.NoError(t, err)
	require.Equal(t, 1, sheet.Len())
	r := sheet.At(0)
	require.NotNil(t, r.MediaQueryID)
	mq := sheet.MediaQueryByID(*r.MediaQueryID)
	require.NotNil(t, mq)
	assert.Equal(t, "screen", mq.Type)
	require.NotNil(t, mq.Conditions)
	assert.Equal(t, "(max-width: 768px)", *mq.Conditions)
	assert.Equal(t, "screen and (max-width: 768px)", mq.Text())
}

func TestParseNestedRuleImplicit(t *testing.T) {
	sheet, err := Parse(`.card { color: red; .title { font-weight: bold; } }`)
	require.NoError(t, err)
	require.True(t, sheet.HasNesting)
	require.Equal(t, 2, sheet.Len())
	assert.Equal(t, ".card .title", sheet.At(1).Selector)
	require.NotNil(t, sheet.At(1).NestingStyle)
	assert.Equal(t, NestingImplicit, *sheet.At(1).NestingStyle)
}

func TestParseNestedRuleExplicitAmpersand(t *testing.T) {
	sheet, err := Parse(`.card { color: red; &:hover { color: blue; } }`)
	require.NoError(t, err)
	require.Equal(t, 2, sheet.Len())
	assert.Equal(t, ".card:hover", sheet.At(1).Selector)
	require.NotNil(t, sheet.At(1).NestingStyle)
	assert.Equal(t, NestingExplicit, *sheet.At(1).NestingStyle)
}

func TestParseCharset(t *testing.T) {
	sheet, err := Parse(`@charset "UTF-8"; .a { color: red; }`)
	require.NoError(t, err)
	require.NotNil(t, sheet.Charset)
	assert.Equal(t, "UTF-8", *sheet.Charset)
}

func TestParseImportStatement(t *testing.T) {
	sheet, err := Parse(`@import "reset.css"; .a { color: red; }`)
	require.NoError(t, err)
	require.Len(t, sheet.Imports, 1)
	assert.Equal(t, "reset.css", sheet.Imports[0].URL)
	assert.False(t, sheet.Imports[0].Resolved)
	assert.Equal(t, uint32(0), sheet.Imports[0].ID)
}

func TestParseMalformedDeclarationSkipsWithoutRaise(t *testing.T) {
	sheet, err := Parse(`.a { color red; font-size: 12px; }`)
	require.NoError(t, err)
	require.Equal(t, 1, sheet.Len())
	assert.Equal(t, []Declaration{{Property: "font-size", Value: "12px"}}, sheet.At(0).Declarations)
}

func TestParseMalformedDeclarationRaisesWhenStrict(t *testing.T) {
	_, err := Parse(`.a { color red; }`, WithRaiseParseErrors(true))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ErrMalformedDeclaration, perr.Tag)
}

func TestParseAbsolutePathsRewritesURL(t *testing.T) {
	sheet, err := Parse(
		`.a { background: url(img/logo.png); }`,
		WithBaseURI("https://example.com/styles/"),
		WithAbsolutePaths(true, nil),
	)
	require.NoError(t, err)
	val := sheet.At(0).Declarations[0].Value
	assert.Contains(t, val, "https://example.com/styles/img/logo.png")
}
