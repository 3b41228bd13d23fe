package cataract

import "sort"

// RuleQuery is a chainable, read-only view over a subset of a
// Stylesheet's rules (spec.md §4.8 "Query & Set Algebra"). Filters narrow
// the view; nothing is copied until Rules() is called.
type RuleQuery struct {
	sheet *Stylesheet
	ids   []uint32
}

// Query returns a view over every rule, in document order.
func (s *Stylesheet) Query() *RuleQuery {
	ids := make([]uint32, len(s.Rules))
	for i := range ids {
		ids[i] = uint32(i)
	}
	return &RuleQuery{sheet: s, ids: ids}
}

func (q *RuleQuery) filter(keep func(r *Rule) bool) *RuleQuery {
	var ids []uint32
	for _, id := range q.ids {
		if keep(&q.sheet.Rules[id]) {
			ids = append(ids, id)
		}
	}
	return &RuleQuery{sheet: q.sheet, ids: ids}
}

// Media keeps rules belonging to one of the given media types.
func (q *RuleQuery) Media(types ...string) *RuleQuery {
	set := make(map[string]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return q.filter(func(r *Rule) bool {
		if r.MediaQueryID == nil {
			return false
		}
		mq := q.sheet.MediaQueryByID(*r.MediaQueryID)
		return mq != nil && set[mq.Type]
	})
}

// BaseOnly keeps only rules with no media_query_id (spec.md I5).
func (q *RuleQuery) BaseOnly() *RuleQuery {
	return q.filter(func(r *Rule) bool { return r.MediaQueryID == nil })
}

// SpecificityRange keeps rules whose specificity falls within [min, max].
func (q *RuleQuery) SpecificityRange(min, max uint32) *RuleQuery {
	return q.filter(func(r *Rule) bool {
		v := r.Specificity()
		return v >= min && v <= max
	})
}

// Selector keeps rules whose selector matches pred.
func (q *RuleQuery) Selector(pred func(string) bool) *RuleQuery {
	return q.filter(func(r *Rule) bool { return pred(r.Selector) })
}

// SelectorEquals keeps rules with exactly the given selector text.
func (q *RuleQuery) SelectorEquals(sel string) *RuleQuery {
	return q.filter(func(r *Rule) bool { return r.Selector == sel })
}

// Property keeps rules declaring property name. If value is non-nil, the
// declaration's value must equal it (or, with prefixMatch, have it as a
// prefix).
func (q *RuleQuery) Property(name string, value *string, prefixMatch bool) *RuleQuery {
	return q.filter(func(r *Rule) bool {
		for _, d := range r.Declarations {
			if d.Property != name {
				continue
			}
			if value == nil {
				return true
			}
			if prefixMatch {
				if len(d.Value) >= len(*value) && d.Value[:len(*value)] == *value {
					return true
				}
			} else if d.Value == *value {
				return true
			}
		}
		return false
	})
}

// Important keeps rules with at least one !important declaration,
// optionally restricted to a specific property name.
func (q *RuleQuery) Important(property *string) *RuleQuery {
	return q.filter(func(r *Rule) bool {
		for _, d := range r.Declarations {
			if !d.Important {
				continue
			}
			if property == nil || d.Property == *property {
				return true
			}
		}
		return false
	})
}

// AtRuleType keeps rules whose selector begins with the given at-rule
// prelude token (e.g. "@property", "@page") — the form §4.1.1 folds
// declaration-bodied at-rules into.
func (q *RuleQuery) AtRuleType(token string) *RuleQuery {
	return q.filter(func(r *Rule) bool {
		return len(r.Selector) >= len(token) && r.Selector[:len(token)] == token
	})
}

// Rules materializes the current view as a slice, in document order.
func (q *RuleQuery) Rules() []Rule {
	out := make([]Rule, len(q.ids))
	for i, id := range q.ids {
		out[i] = q.sheet.Rules[id]
	}
	return out
}

// Each iterates the current view in document order.
func (q *RuleQuery) Each(fn func(r *Rule)) {
	for _, id := range q.ids {
		fn(&q.sheet.Rules[id])
	}
}

// Len returns the number of rules in the current view.
func (q *RuleQuery) Len() int { return len(q.ids) }

// At returns the rule at position i within the current view.
func (q *RuleQuery) At(i int) *Rule {
	if i < 0 || i >= len(q.ids) {
		return nil
	}
	return &q.sheet.Rules[q.ids[i]]
}

// SelectorGroup returns the rule IDs sharing listID's comma-separated
// selector list, in document order.
func (s *Stylesheet) SelectorGroup(listID uint32) []uint32 {
	return append([]uint32{}, s.SelectorLists[listID]...)
}

// MediaGroup returns the media query IDs sharing listID's comma-separated
// media query list ("@media screen, print"), in declaration order.
func (s *Stylesheet) MediaGroup(listID uint32) []uint32 {
	return append([]uint32{}, s.MediaQueryLists[listID]...)
}

// FindBySelector returns every rule with exactly the given selector.
func (s *Stylesheet) FindBySelector(sel string) []Rule {
	return s.Query().SelectorEquals(sel).Rules()
}

// Selectors returns the distinct selectors appearing in the stylesheet, in
// first-appearance order.
func (s *Stylesheet) Selectors() []string {
	seen := make(map[string]bool, len(s.Rules))
	var out []string
	for _, r := range s.Rules {
		if !seen[r.Selector] {
			seen[r.Selector] = true
			out = append(out, r.Selector)
		}
	}
	return out
}

// FindRuleSets groups rules by selector; each selector's slice keeps its
// rules in document order. The returned map itself is unordered.
func (s *Stylesheet) FindRuleSets() map[string][]Rule {
	out := make(map[string][]Rule)
	for _, r := range s.Rules {
		out[r.Selector] = append(out[r.Selector], r)
	}
	return out
}

// CustomProperties returns, for the requested media type (nil = base
// rules only, matching spec.md §4.8's "per media context"), the
// last-write-wins mapping of "--ident" declarations.
func (s *Stylesheet) CustomProperties(media *string) map[string]Declaration {
	out := make(map[string]Declaration)
	for _, r := range s.Rules {
		if media == nil {
			if r.MediaQueryID != nil {
				continue
			}
		} else {
			if r.MediaQueryID == nil {
				continue
			}
			mq := s.MediaQueryByID(*r.MediaQueryID)
			if mq == nil || mq.Type != *media {
				continue
			}
		}
		for _, d := range r.Declarations {
			if len(d.Property) > 2 && d.Property[:2] == "--" {
				out[d.Property] = d
			}
		}
	}
	return out
}

// expandedSortedDeclarations expands every shorthand in decls to its final
// longhands and returns them stably sorted by (property, value,
// important), for semantic-equality comparison (spec.md §4.8).
func expandedSortedDeclarations(decls []Declaration) []Declaration {
	var out []Declaration
	for _, d := range decls {
		if longhands, ok := ExpandShorthand(d.Property, d.Value); ok {
			for prop, val := range longhands {
				out = append(out, Declaration{Property: prop, Value: val, Important: d.Important})
			}
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Property != out[j].Property {
			return out[i].Property < out[j].Property
		}
		if out[i].Value != out[j].Value {
			return out[i].Value < out[j].Value
		}
		return !out[i].Important && out[j].Important
	})
	return out
}

// SemanticEqual reports whether two rules have the same selector and,
// after shorthand expansion and stable sort, equal declaration sets
// (spec.md §4.8).
func SemanticEqual(a, b Rule) bool {
	if a.Selector != b.Selector {
		return false
	}
	ea := expandedSortedDeclarations(a.Declarations)
	eb := expandedSortedDeclarations(b.Declarations)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two stylesheets have element-wise semantically
// equal rules (in order) and element-wise equal media queries; charset is
// ignored (spec.md §4.8).
func (s *Stylesheet) Equal(other *Stylesheet) bool {
	if len(s.Rules) != len(other.Rules) {
		return false
	}
	for i := range s.Rules {
		if !SemanticEqual(s.Rules[i], other.Rules[i]) {
			return false
		}
	}
	if len(s.MediaQueries) != len(other.MediaQueries) {
		return false
	}
	for i := range s.MediaQueries {
		if !s.MediaQueries[i].Equal(other.MediaQueries[i]) {
			return false
		}
	}
	return true
}

// Concat appends other's rules (and media queries) to s in place, then
// flattens — the in-place form of "+" (spec.md §4.8). Imports of either
// sheet are not carried into the result.
func (s *Stylesheet) Concat(other *Stylesheet) {
	merged := s.concatenated(other).Flatten()
	*s = *merged
}

// Add returns a new, flattened stylesheet that is the document-order
// concatenation of s and other (spec.md §4.8 "+").
func (s *Stylesheet) Add(other *Stylesheet) *Stylesheet {
	return s.concatenated(other).Flatten()
}

func (s *Stylesheet) concatenated(other *Stylesheet) *Stylesheet {
	out := NewStylesheet()
	out.opts = s.opts
	out.Charset = s.Charset
	if out.Charset == nil {
		out.Charset = other.Charset
	}

	mqOffset := make(map[uint32]uint32, len(other.MediaQueries))
	out.MediaQueries = append(out.MediaQueries, s.MediaQueries...)
	for _, mq := range s.MediaQueries {
		key := mq.Type + "\x00"
		if mq.Conditions != nil {
			key += *mq.Conditions
		}
		out.mediaQueryKeys[key] = true
	}
	out.nextMediaQueryID = s.nextMediaQueryID
	for _, mq := range other.MediaQueries {
		newID, _ := out.internMediaQuery(mq.Type, mq.Conditions)
		mqOffset[mq.ID] = newID
	}

	remapMQ := func(id *uint32) *uint32 {
		if id == nil {
			return nil
		}
		nw := mqOffset[*id]
		return &nw
	}

	out.Rules = append(out.Rules, s.Rules...)
	for _, r := range other.Rules {
		r.ID = uint32(len(out.Rules))
		r.MediaQueryID = remapMQ(r.MediaQueryID)
		r.ParentRuleID = nil
		r.SelectorListID = nil
		out.Rules = append(out.Rules, r)
	}
	for i := range out.Rules {
		out.Rules[i].ID = uint32(i)
	}
	out.mediaIndexDirty = true
	return out
}

// Subtract returns a new stylesheet with every rule semantically equal
// (per SemanticEqual) to a rule in other removed; it does not flatten
// (spec.md §4.8 "-").
func (s *Stylesheet) Subtract(other *Stylesheet) *Stylesheet {
	out := NewStylesheet()
	out.opts = s.opts
	out.Charset = s.Charset
	out.MediaQueries = append(out.MediaQueries, s.MediaQueries...)
	out.nextMediaQueryID = s.nextMediaQueryID
	for _, mq := range s.MediaQueries {
		key := mq.Type + "\x00"
		if mq.Conditions != nil {
			key += *mq.Conditions
		}
		out.mediaQueryKeys[key] = true
	}
	for listID, ids := range s.SelectorLists {
		out.SelectorLists[listID] = append([]uint32{}, ids...)
	}
	out.nextSelectorList = s.nextSelectorList
	for _, r := range s.Rules {
		remove := false
		for _, or := range other.Rules {
			if SemanticEqual(r, or) {
				remove = true
				break
			}
		}
		if !remove {
			out.Rules = append(out.Rules, r)
		}
	}
	out.renumber()
	out.rebuildMediaIndex()
	return out
}
