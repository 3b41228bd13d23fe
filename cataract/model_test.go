package cataract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveAtRenumbersRules(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .b { color: blue; } .c { color: green; }`)
	require.NoError(t, err)
	sheet.RemoveAt(1)
	require.Equal(t, 2, sheet.Len())
	assert.Equal(t, ".a", sheet.At(0).Selector)
	assert.Equal(t, uint32(0), sheet.At(0).ID)
	assert.Equal(t, ".c", sheet.At(1).Selector)
	assert.Equal(t, uint32(1), sheet.At(1).ID)
}

func TestInsertRulesAtSplicesAtPosition(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .c { color: green; }`)
	require.NoError(t, err)
	sheet.InsertRulesAt(1, []Rule{{ID: 99, Selector: ".b", Declarations: []Declaration{{Property: "color", Value: "blue"}}}})
	require.Equal(t, 3, sheet.Len())
	assert.Equal(t, ".a", sheet.At(0).Selector)
	assert.Equal(t, ".b", sheet.At(1).Selector)
	assert.Equal(t, ".c", sheet.At(2).Selector)
}

func TestReindexRenumbersAfterInsert(t *testing.T) {
	sheet, err := Parse(`.a { color: red; } .c { color: green; }`)
	require.NoError(t, err)
	sheet.InsertRulesAt(1, []Rule{{ID: 99, Selector: ".b"}})
	sheet.Reindex()
	for i := 0; i < sheet.Len(); i++ {
		assert.Equal(t, uint32(i), sheet.At(i).ID)
	}
}

func TestAppendMediaQueryAlwaysAllocatesFresh(t *testing.T) {
	sheet := NewStylesheet()
	cond := "(max-width: 768px)"
	id1 := sheet.AppendMediaQuery("screen", &cond)
	id2 := sheet.AppendMediaQuery("screen", &cond)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, sheet.MediaQueries, 2)
}

func TestAppendSelectorListRecordsMembership(t *testing.T) {
	sheet := NewStylesheet()
	id := sheet.AppendSelectorList([]uint32{3, 4})
	assert.Equal(t, []uint32{3, 4}, sheet.SelectorLists[id])
}

func TestMediaQueryTextComposition(t *testing.T) {
	cond := "(max-width: 768px)"
	mq := MediaQuery{Type: "screen", Conditions: &cond}
	assert.Equal(t, "screen and (max-width: 768px)", mq.Text())

	allMQ := MediaQuery{Type: "all", Conditions: &cond}
	assert.Equal(t, cond, allMQ.Text())

	bare := MediaQuery{Type: "print"}
	assert.Equal(t, "print", bare.Text())
}

func TestEmptyAndLen(t *testing.T) {
	sheet := NewStylesheet()
	assert.True(t, sheet.Empty())
	assert.Equal(t, 0, sheet.Len())
}

// TestParseRoundTripStructurallyStable reparses a serialized stylesheet and
// compares the two rule slices structurally, ignoring the ID and
// cross-reference fields (ID, ParentRuleID, SelectorListID, MediaQueryID)
// and the unexported memo fields, which are allowed to differ across a
// second parse.
func TestParseRoundTripStructurallyStable(t *testing.T) {
	const src = `.a, .b { color: red; font-size: 12px; } @media print { .c { color: blue !important; } }`
	first, err := Parse(src)
	require.NoError(t, err)
	second, err := Parse(first.ToCSS())
	require.NoError(t, err)

	opts := []cmp.Option{
		cmpopts.IgnoreFields(Rule{}, "ID", "ParentRuleID", "SelectorListID", "MediaQueryID"),
		cmpopts.IgnoreUnexported(Rule{}),
	}
	if diff := cmp.Diff(first.Rules, second.Rules, opts...); diff != "" {
		t.Errorf("re-parsed rules differ from original (-want +got):\n%s", diff)
	}
}
