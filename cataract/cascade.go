package cataract

// winner tracks the current cascade champion for one longhand property
// within a (selector, media_query_id) group (spec.md §4.3 step 2).
type winner struct {
	value       string
	important   bool
	specificity uint32
	sourceIndex uint32
}

// groupKey identifies one (selector, media_query_id) cascade group.
type groupKey struct {
	selector string
	hasMQ    bool
	mqID     uint32
}

// synthesisOrder controls which shorthand is attempted first when
// re-synthesizing; "border" is tried before its narrower siblings so a
// fully-uniform border wins over four separate per-side shorthands.
var synthesisOrder = []string{
	"border", "margin", "padding",
	"border-width", "border-style", "border-color",
	"border-top", "border-right", "border-bottom", "border-left",
	"font", "list-style", "background",
}

// Flatten computes the cascade result: one Rule per (selector, media)
// group, with shorthands expanded, merged by (importance, specificity,
// source order), and re-synthesized where a complete set survives
// (spec.md §4.3). It returns a new Stylesheet; the receiver is unchanged.
func (s *Stylesheet) Flatten() *Stylesheet {
	type group struct {
		key     groupKey
		order   []string
		winners map[string]*winner
	}

	var order []groupKey
	groups := make(map[groupKey]*group)

	for i := range s.Rules {
		r := &s.Rules[i]
		key := groupKey{selector: r.Selector}
		if r.MediaQueryID != nil {
			key.hasMQ = true
			key.mqID = *r.MediaQueryID
		}
		g, ok := groups[key]
		if !ok {
			g = &group{key: key, winners: make(map[string]*winner)}
			groups[key] = g
			order = append(order, key)
		}

		for _, decl := range r.Declarations {
			longhands, isShorthand := ExpandShorthand(decl.Property, decl.Value)
			if !isShorthand {
				longhands = map[string]string{decl.Property: decl.Value}
			}
			for prop, val := range longhands {
				cand := &winner{
					value:       val,
					important:   decl.Important,
					specificity: r.Specificity(),
					sourceIndex: r.ID,
				}
				existing, has := g.winners[prop]
				if !has {
					g.winners[prop] = cand
					g.order = append(g.order, prop)
					continue
				}
				if wins(cand, existing) {
					g.winners[prop] = cand
				}
			}
		}
	}

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

	var nextID uint32
	for _, key := range order {
		g := groups[key]
		if len(g.winners) == 0 {
			continue
		}
		synthesizeGroup(g.order, g.winners)
		// order may have been mutated in place by synthesizeGroup; rebuild
		// final order from whatever keys remain, preserving first-seen
		// position.
		decls := make([]Declaration, 0, len(g.order))
		seen := make(map[string]bool, len(g.order))
		for _, prop := range g.order {
			if seen[prop] {
				continue
			}
			w, ok := g.winners[prop]
			if !ok {
				continue
			}
			seen[prop] = true
			decls = append(decls, Declaration{Property: prop, Value: w.value, Important: w.important})
		}
		rule := Rule{ID: nextID, Selector: key.selector, Declarations: decls}
		if key.hasMQ {
			mqID := key.mqID
			rule.MediaQueryID = &mqID
		}
		out.Rules = append(out.Rules, rule)
		nextID++
	}
	out.mediaIndexDirty = true
	return out
}

// wins implements the §4.3 step 2 candidate-vs-existing comparison.
func wins(cand, existing *winner) bool {
	if cand.important != existing.important {
		return cand.important
	}
	if cand.specificity != existing.specificity {
		return cand.specificity > existing.specificity
	}
	return cand.sourceIndex > existing.sourceIndex
}

// synthesizeGroup mutates winners/order in place: wherever a shorthand's
// full longhand set survives with uniform importance, it replaces those
// longhands with one shorthand entry at the position of their earliest
// occurrence.
func synthesizeGroup(order []string, winners map[string]*winner) {
	for _, shorthand := range synthesisOrder {
		longhands, _ := ShorthandLonghands(shorthand)
		values := make(map[string]string, len(longhands))
		important := false
		complete := true
		firstPos := -1
		for _, lh := range longhands {
			w, ok := winners[lh]
			if !ok {
				complete = false
				break
			}
			values[lh] = w.value
		}
		if !complete {
			continue
		}
		for i, lh := range longhands {
			w := winners[lh]
			if i == 0 {
				important = w.important
			} else if w.important != important {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		synthVal, ok := SynthesizeShorthand(shorthand, values)
		if !ok {
			continue
		}
		for i, prop := range order {
			for _, lh := range longhands {
				if prop == lh {
					if firstPos == -1 || i < firstPos {
						firstPos = i
					}
				}
			}
		}
		if firstPos == -1 {
			continue
		}
		var maxSpec uint32
		var maxIdx uint32
		for _, lh := range longhands {
			w := winners[lh]
			if w.specificity > maxSpec {
				maxSpec = w.specificity
			}
			if w.sourceIndex > maxIdx {
				maxIdx = w.sourceIndex
			}
			delete(winners, lh)
		}
		order[firstPos] = shorthand
		for i, prop := range order {
			if i == firstPos {
				continue
			}
			for _, lh := range longhands {
				if prop == lh {
					order[i] = ""
				}
			}
		}
		winners[shorthand] = &winner{value: synthVal, important: important, specificity: maxSpec, sourceIndex: maxIdx}
	}
	// compact out blanked slots left by replaced longhands.
	w := 0
	for _, prop := range order {
		if prop == "" {
			continue
		}
		order[w] = prop
		w++
	}
	for i := w; i < len(order); i++ {
		order[i] = ""
	}
}
