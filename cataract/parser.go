package cataract

import (
	"strings"

	"go.uber.org/multierr"
)

// parseContext threads nesting depth, the enclosing media context, and
// the enclosing parent rule (for nested-selector resolution) through a
// recursive-descent parse (spec.md §4.1, design note on iterative vs.
// mutual-recursive parsing — this implementation bounds recursion with an
// explicit depth counter rather than an unbounded call stack).
type parseContext struct {
	depth          int
	mediaQueryID   *uint32
	parentRuleID   *uint32
	parentSelector string
	sawStyleRule   *bool // shared with the whole AddBlock call; @import-after-style-rule detection
}

// AddBlock parses css and appends the resulting rules/at-rules/media
// queries/imports to the stylesheet, starting rule IDs at the current
// high-water mark (spec.md §3 "Lifecycle").
func (s *Stylesheet) AddBlock(css string) error {
	css = strings.TrimPrefix(css, "﻿") // strip BOM, spec.md §6
	c := newCursor(css)
	sawStyleRule := false
	ctx := &parseContext{sawStyleRule: &sawStyleRule}
	var softErrs error

	err := s.parseBlockContents(c, ctx, &softErrs)
	if err != nil {
		return err
	}
	if s.opts.RaiseParseErrors && softErrs != nil {
		return softErrs
	}
	return nil
}

// parseBlockContents parses a sequence of rules/at-rules until EOF (top
// level) or an unescaped top-level '}' (nested block, which it consumes).
func (s *Stylesheet) parseBlockContents(c *cursor, ctx *parseContext, softErrs *error) error {
	for {
		c.skipWhitespaceAndComments()
		if c.eof() {
			return nil
		}
		if c.peek() == '}' {
			c.advance()
			return nil
		}
		if c.peek() == '@' {
			if err := s.parseAtRule(c, ctx, softErrs); err != nil {
				return err
			}
			continue
		}
		if err := s.parseStyleRule(c, ctx, softErrs); err != nil {
			return err
		}
	}
}

// parseStyleRule scans one selector (or selector list) and its
// declaration block, appending one Rule per comma-separated selector
// (sharing a selector_list_id), recursing for any nested rules found
// inside the block.
func (s *Stylesheet) parseStyleRule(c *cursor, ctx *parseContext, softErrs *error) error {
	line, col := c.line, c.col
	rawSelector, stop := c.scanUntilTopLevel("{}")
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated rule", line, col))
		return nil
	}
	c.advance() // consume '{'

	selectors := splitTopLevel(rawSelector, ',')
	if len(selectors) == 0 {
		// empty selector text; skip the block contents and move on.
		return s.skipBlock(c, ctx)
	}
	if err := checkBalanced(rawSelector); err != nil {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnbalancedSelector, err.Error(), line, col))
	}

	resolved := make([]string, len(selectors))
	styles := make([]*NestingStyle, len(selectors))
	for i, sel := range selectors {
		resolved[i], styles[i] = resolveNestedSelector(sel, ctx.parentSelector)
	}

	var listID *uint32
	if s.opts.SelectorLists && len(resolved) > 1 {
		id := s.nextSelectorList
		s.nextSelectorList++
		listID = &id
	}

	firstID := uint32(len(s.Rules))
	ruleIDs := make([]uint32, len(resolved))
	for i, sel := range resolved {
		rule := Rule{
			ID:             uint32(len(s.Rules)),
			Selector:       sel,
			ParentRuleID:   ctx.parentRuleID,
			NestingStyle:   styles[i],
			SelectorListID: listID,
			MediaQueryID:   ctx.mediaQueryID,
		}
		ruleIDs[i] = rule.ID
		s.Rules = append(s.Rules, rule)
		if ctx.parentRuleID != nil || styles[i] != nil {
			s.HasNesting = true
		}
	}
	if listID != nil {
		s.SelectorLists[*listID] = append([]uint32{}, ruleIDs...)
	}
	*ctx.sawStyleRule = true
	s.mediaIndexDirty = true

	// Parse the declaration block for the first rule's ID; any nested
	// rule discovered inside is appended after all sibling selectors so
	// document order matches source order of the shared block.
	decls, err := s.parseDeclarationsOrNesting(c, &parseContext{
		depth:          ctx.depth + 1,
		mediaQueryID:   ctx.mediaQueryID,
		parentRuleID:   &firstID,
		parentSelector: resolved[0],
		sawStyleRule:   ctx.sawStyleRule,
	}, softErrs)
	if err != nil {
		return err
	}
	for _, id := range ruleIDs {
		s.Rules[id].Declarations = decls
	}
	return nil
}

// skipBlock discards a malformed block's contents up to its matching '}'.
func (s *Stylesheet) skipBlock(c *cursor, ctx *parseContext) error {
	_, stop := c.scanUntilTopLevel("}")
	if stop == '}' {
		c.advance()
	}
	return nil
}

func checkBalanced(s string) error {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
			if depth < 0 {
				return errUnbalanced
			}
		}
	}
	if depth != 0 || quote != 0 {
		return errUnbalanced
	}
	return nil
}

// resolveNestedSelector implements spec.md §4.1 "Nesting": explicit '&'
// substitution at every occurrence, or implicit "{parent} " prepend.
func resolveNestedSelector(sel, parent string) (string, *NestingStyle) {
	if parent == "" {
		return sel, nil
	}
	if strings.Contains(sel, "&") {
		style := NestingExplicit
		return strings.ReplaceAll(sel, "&", parent), &style
	}
	style := NestingImplicit
	return parent + " " + sel, &style
}

// parseDeclarationsOrNesting scans a declaration-block body (already past
// the opening '{'), returning the direct declarations and recursively
// parsing any nested rule encountered as a sibling top-level rule via ctx.
func (s *Stylesheet) parseDeclarationsOrNesting(c *cursor, ctx *parseContext, softErrs *error) ([]Declaration, error) {
	if ctx.depth > MaxParseDepth {
		return nil, newParseError(ErrDepthExceeded, "exceeded MAX_PARSE_DEPTH", c.line, c.col)
	}
	var decls []Declaration
	for {
		c.skipWhitespaceAndComments()
		if c.eof() {
			*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated declaration block", c.line, c.col))
			return decls, nil
		}
		if c.peek() == '}' {
			c.advance()
			return decls, nil
		}
		if c.peek() == '@' {
			if err := s.parseAtRule(c, ctx, softErrs); err != nil {
				return decls, err
			}
			continue
		}

		line, col := c.line, c.col
		text, stop := c.scanUntilTopLevel(":;{}")
		if stop == ':' {
			// A ':' followed by '{' before any ';' or '}' belongs to a nested
			// selector such as "&:hover", not to a declaration.
			saved := *c
			rest, restStop := c.scanUntilTopLevel(";{}")
			if restStop == '{' {
				text, stop = text+rest, '{'
			} else {
				*c = saved
			}
		}
		switch stop {
		case '{':
			// What looked like a property name is actually a nested selector.
			c.advance()
			nestedSel := strings.TrimSpace(text)
			if nestedSel == "" {
				if err := s.skipBlock(c, ctx); err != nil {
					return decls, err
				}
				continue
			}
			resolvedSel, style := resolveNestedSelector(nestedSel, ctx.parentSelector)
			s.HasNesting = true
			ruleID := uint32(len(s.Rules))
			s.Rules = append(s.Rules, Rule{
				ID:             ruleID,
				Selector:       resolvedSel,
				ParentRuleID:   ctx.parentRuleID,
				NestingStyle:   style,
				MediaQueryID:   ctx.mediaQueryID,
			})
			s.mediaIndexDirty = true
			nestedDecls, err := s.parseDeclarationsOrNesting(c, &parseContext{
				depth:          ctx.depth + 1,
				mediaQueryID:   ctx.mediaQueryID,
				parentRuleID:   &ruleID,
				parentSelector: resolvedSel,
				sawStyleRule:   ctx.sawStyleRule,
			}, softErrs)
			if err != nil {
				return decls, err
			}
			s.Rules[ruleID].Declarations = nestedDecls
		case ':':
			c.advance()
			property := strings.TrimSpace(text)
			valueText, vstop := c.scanUntilTopLevel(";}")
			if vstop == ';' {
				c.advance()
			} else if vstop == '}' {
				c.advance()
			}
			decl, ok, derr := s.buildDeclaration(property, valueText, line, col)
			if derr != nil {
				return decls, derr
			}
			if ok {
				decls = append(decls, decl)
			}
		case ';':
			c.advance()
			*softErrs = multierr.Append(*softErrs, newParseError(ErrMalformedDeclaration, "missing ':'", line, col))
		case '}':
			c.advance()
			trimmed := strings.TrimSpace(text)
			if trimmed != "" {
				*softErrs = multierr.Append(*softErrs, newParseError(ErrMalformedDeclaration, "missing ':'", line, col))
			}
			return decls, nil
		default:
			*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated declaration block", line, col))
			return decls, nil
		}
	}
}

// buildDeclaration post-processes a raw "value" token per spec.md §4.1
// declaration-block steps 1-4: trim, detect/strip "!important", trim
// again, discard if empty, lowercase the property, enforce length caps,
// and rewrite relative url(...) references when enabled.
func (s *Stylesheet) buildDeclaration(property, rawValue string, line, col int) (Declaration, bool, error) {
	property = strings.ToLower(strings.TrimSpace(property))
	if property == "" {
		return Declaration{}, false, nil
	}
	if len(property) > MaxPropertyNameLength {
		return Declaration{}, false, newParseError(ErrPropertyNameTooLong, "property name exceeds MAX_PROPERTY_NAME_LENGTH", line, col)
	}

	value := strings.TrimRight(rawValue, " \t\n\r\f")
	important := false
	if stripped, ok := stripImportant(value); ok {
		value = strings.TrimRight(stripped, " \t\n\r\f")
		important = true
	}
	if value == "" {
		return Declaration{}, false, nil
	}
	if len(value) > MaxPropertyValueLength {
		return Declaration{}, false, newParseError(ErrPropertyValueTooLong, "property value exceeds MAX_PROPERTY_VALUE_LENGTH", line, col)
	}

	if s.opts.AbsolutePaths && strings.Contains(value, "url(") {
		value = rewriteURLs(value, s.opts.BaseURI, s.opts.URIResolver)
	}

	return Declaration{Property: property, Value: value, Important: important}, true, nil
}

// stripImportant scans backwards for optional whitespace, the literal
// "important" (case-sensitive), optional whitespace, then '!'.
func stripImportant(value string) (string, bool) {
	i := len(value)
	skipWS := func() {
		for i > 0 && isSpaceByte(value[i-1]) {
			i--
		}
	}
	skipWS()
	if i < len("important") || value[i-len("important"):i] != "important" {
		return value, false
	}
	i -= len("important")
	skipWS()
	if i < 1 || value[i-1] != '!' {
		return value, false
	}
	i--
	return value[:i], true
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

// rewriteURLs replaces the URL content of every url(...) token in value
// whose target is relative (spec.md §4.1 "URL rewriting").
func rewriteURLs(value, baseURI string, resolver URIResolver) string {
	var out strings.Builder
	i := 0
	for i < len(value) {
		idx := strings.Index(value[i:], "url(")
		if idx < 0 {
			out.WriteString(value[i:])
			break
		}
		idx += i
		out.WriteString(value[i:idx])
		out.WriteString("url(")
		j := idx + len("url(")
		depth := 1
		start := j
		for j < len(value) && depth > 0 {
			switch value[j] {
			case '(':
				depth++
			case ')':
				depth--
			}
			if depth == 0 {
				break
			}
			j++
		}
		inner := value[start:j]
		quote := byte(0)
		content := inner
		if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
			quote = inner[0]
			content = inner[1 : len(inner)-1]
		}
		if isRelativeURL(content) && resolver != nil {
			content = resolver.Resolve(baseURI, content)
		}
		if quote != 0 {
			out.WriteByte(quote)
			out.WriteString(content)
			out.WriteByte(quote)
		} else {
			out.WriteString(content)
		}
		out.WriteByte(')')
		i = j + 1
	}
	return out.String()
}
