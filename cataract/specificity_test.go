package cataract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSpecificity(t *testing.T) {
	cases := []struct {
		selector string
		want     uint32
	}{
		{"div", 1},
		{"div.foo", 11},
		{"#id", 100},
		{"div#id.foo", 111},
		{"div > span + a", 3},
		{"a:hover", 11},
		{"a::before", 2},
		{"a[href]", 11},
		{"*", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CalculateSpecificity(c.selector), "selector %q", c.selector)
	}
}

func TestCalculateSpecificityNotRecursesIntoArgument(t *testing.T) {
	// :not(...) contributes the specificity of its argument rather than
	// counting as a bare pseudo-class.
	assert.Equal(t, uint32(101), CalculateSpecificity("div:not(#id)"))
	assert.Equal(t, uint32(11), CalculateSpecificity("div:not(.foo)"))
}
