// Package cataract parses, queries, flattens, and serializes CSS.
//
// It is built as a drop-in high-performance replacement for the regex-driven
// CSS parsers traditionally embedded in HTML-email "inliner" pipelines: a
// single-pass, allocation-conscious tokenizer/parser builds a flat,
// ID-addressed stylesheet model; a cascade/flatten engine resolves
// shorthand expansion and specificity/importance winners per
// (selector, media) group; and a serializer re-emits compact or
// pretty-printed CSS.
//
// Computed-style resolution against a DOM, rendering/layout, CSS custom
// property substitution, and selector matching against element trees are
// explicitly out of scope — see SPEC_FULL.md at the module root.
package cataract
