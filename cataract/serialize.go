package cataract

import "strings"

// ToCSS serializes the stylesheet compactly (spec.md §4.7 "to_s"). With no
// media argument every rule is emitted; otherwise only rules belonging to
// one of the requested media types (base rules excluded), unless "all" is
// among them.
func (s *Stylesheet) ToCSS(media ...string) string {
	return s.serialize(false, media)
}

// ToFormattedCSS serializes with 2-space indentation and newlines between
// declarations and blocks (spec.md §4.7 "to_formatted_s"). Base (no-media)
// rules are always additionally emitted regardless of the media filter.
func (s *Stylesheet) ToFormattedCSS(media ...string) string {
	return s.serialize(true, media)
}

func wantsAllMedia(media []string) bool {
	if len(media) == 0 {
		return true
	}
	for _, m := range media {
		if m == "all" {
			return true
		}
	}
	return false
}

// filteredRuleIndices returns rule array positions in document order,
// honoring the media filter and the formatted-mode "base rules always
// included" rule.
func (s *Stylesheet) filteredRuleIndices(media []string, includeBaseAlways bool) []int {
	if wantsAllMedia(media) {
		idx := make([]int, len(s.Rules))
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	s.ensureMediaIndex()
	allowed := make(map[uint32]bool)
	for _, m := range media {
		for _, id := range s.MediaIndex[m] {
			allowed[id] = true
		}
	}
	var out []int
	for i, r := range s.Rules {
		if r.MediaQueryID == nil {
			if includeBaseAlways {
				out = append(out, i)
			}
			continue
		}
		if allowed[r.ID] {
			out = append(out, i)
		}
	}
	return out
}

func (s *Stylesheet) serialize(formatted bool, media []string) string {
	var sb strings.Builder
	if s.Charset != nil {
		sb.WriteString(`@charset "` + *s.Charset + `";` + "\n")
	}
	for _, imp := range s.Imports {
		if imp.Resolved {
			continue
		}
		sb.WriteString(importText(imp))
	}

	indices := s.filteredRuleIndices(media, formatted)
	emittedLists := make(map[uint32]bool)
	i := 0
	for i < len(indices) {
		idx := indices[i]
		r := &s.Rules[idx]
		if r.SelectorListID != nil && emittedLists[*r.SelectorListID] {
			i++
			continue
		}

		if r.MediaQueryID != nil {
			mqID := *r.MediaQueryID
			j := i
			var group []int
			for j < len(indices) {
				r2 := &s.Rules[indices[j]]
				if r2.MediaQueryID == nil || *r2.MediaQueryID != mqID {
					break
				}
				group = append(group, indices[j])
				j++
			}
			mqText := ""
			if mq := s.MediaQueryByID(mqID); mq != nil {
				mqText = mq.Text()
			}
			if formatted {
				sb.WriteString("@media " + mqText + " {\n")
				s.writeGroup(&sb, group, true, 1, emittedLists)
				sb.WriteString("}\n")
			} else {
				sb.WriteString("@media " + mqText + "{")
				s.writeGroup(&sb, group, false, 0, emittedLists)
				sb.WriteString("}\n")
			}
			i = j
			continue
		}

		if r.SelectorListID != nil {
			emittedLists[*r.SelectorListID] = true
		}
		s.writeRule(&sb, idx, formatted, 0)
		i++
	}

	for _, at := range s.AtRules {
		s.writeAtRule(&sb, &at, formatted)
	}
	return sb.String()
}

func (s *Stylesheet) writeGroup(sb *strings.Builder, indices []int, formatted bool, indent int, emittedLists map[uint32]bool) {
	for _, idx := range indices {
		r := &s.Rules[idx]
		if r.SelectorListID != nil {
			if emittedLists[*r.SelectorListID] {
				continue
			}
			emittedLists[*r.SelectorListID] = true
		}
		s.writeRule(sb, idx, formatted, indent)
	}
}

func (s *Stylesheet) selectorText(r *Rule) string {
	if r.SelectorListID == nil {
		return r.Selector
	}
	ids := s.SelectorLists[*r.SelectorListID]
	sels := make([]string, 0, len(ids))
	for _, id := range ids {
		if int(id) < len(s.Rules) {
			sels = append(sels, s.Rules[id].Selector)
		}
	}
	if len(sels) == 0 {
		return r.Selector
	}
	return strings.Join(sels, ", ")
}

func (s *Stylesheet) writeRule(sb *strings.Builder, idx int, formatted bool, indent int) {
	r := &s.Rules[idx]
	pad := ""
	if formatted {
		pad = strings.Repeat("  ", indent)
	}
	sb.WriteString(pad + s.selectorText(r))
	if formatted {
		sb.WriteString(" {\n")
		for _, d := range r.Declarations {
			sb.WriteString(strings.Repeat("  ", indent+1) + declarationText(d) + "\n")
		}
		sb.WriteString(pad + "}\n")
	} else {
		sb.WriteString("{")
		parts := make([]string, len(r.Declarations))
		for i, d := range r.Declarations {
			parts[i] = declarationText(d)
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("}\n")
	}
}

// importText renders an unresolved @import statement. Unresolved imports
// are emitted up front, ahead of the rules they precede in document order;
// once importresolver.Resolve splices an import's content in, Resolved is
// set and it is no longer serialized at all.
func importText(imp ImportStatement) string {
	if imp.Media != nil && *imp.Media != "" {
		return `@import "` + imp.URL + `" ` + *imp.Media + `;` + "\n"
	}
	return `@import "` + imp.URL + `";` + "\n"
}

func declarationText(d Declaration) string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important;"
	}
	return d.Property + ": " + d.Value + ";"
}

func (s *Stylesheet) writeAtRule(sb *strings.Builder, at *AtRule, formatted bool) {
	if at.Rules != nil {
		if formatted {
			sb.WriteString(at.Selector + " {\n")
			for _, kr := range at.Rules {
				sb.WriteString("  " + kr.Selector + " {\n")
				for _, d := range kr.Declarations {
					sb.WriteString("    " + declarationText(d) + "\n")
				}
				sb.WriteString("  }\n")
			}
			sb.WriteString("}\n")
		} else {
			sb.WriteString(at.Selector + "{")
			for _, kr := range at.Rules {
				sb.WriteString(kr.Selector + "{")
				parts := make([]string, len(kr.Declarations))
				for i, d := range kr.Declarations {
					parts[i] = declarationText(d)
				}
				sb.WriteString(strings.Join(parts, " "))
				sb.WriteString("}")
			}
			sb.WriteString("}\n")
		}
		return
	}
	if formatted {
		sb.WriteString(at.Selector + " {\n")
		for _, d := range at.Declarations {
			sb.WriteString("  " + declarationText(d) + "\n")
		}
		sb.WriteString("}\n")
	} else {
		sb.WriteString(at.Selector + "{")
		parts := make([]string, len(at.Declarations))
		for i, d := range at.Declarations {
			parts[i] = declarationText(d)
		}
		sb.WriteString(strings.Join(parts, " "))
		sb.WriteString("}\n")
	}
}
