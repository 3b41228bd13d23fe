package cataract

import (
	"strings"

	"go.uber.org/multierr"
)

// parseAtRule dispatches on the at-rule name immediately following '@'
// (spec.md §4.1.1).
func (s *Stylesheet) parseAtRule(c *cursor, ctx *parseContext, softErrs *error) error {
	startLine, startCol := c.line, c.col
	c.advance() // consume '@'
	name := scanIdentASCII(c)
	lname := strings.ToLower(name)
	c.skipWhitespaceAndComments()

	switch lname {
	case "charset":
		return s.parseCharset(c)
	case "import":
		return s.parseImport(c, ctx, softErrs)
	case "media":
		return s.parseMedia(c, ctx, softErrs)
	case "supports", "layer", "container", "scope":
		return s.parseTransparentAtRule(c, ctx, softErrs)
	case "keyframes", "-webkit-keyframes", "-moz-keyframes", "-o-keyframes":
		return s.parseKeyframes(c, ctx, name, softErrs)
	case "font-face":
		return s.parseFontFace(c, ctx, softErrs)
	default:
		return s.parseDeclarationAtRule(c, name, ctx, softErrs, startLine, startCol)
	}
}

func scanIdentASCII(c *cursor) string {
	var sb strings.Builder
	for !c.eof() {
		ch := c.peek()
		if ch == '-' || ch == '_' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			sb.WriteByte(c.advance())
			continue
		}
		break
	}
	return sb.String()
}

// parseCharset handles "@charset "utf-8";"; first occurrence wins.
func (s *Stylesheet) parseCharset(c *cursor) error {
	text, stop := c.scanUntilTopLevel(";")
	if stop == ';' {
		c.advance()
	}
	value := strings.TrimSpace(text)
	if len(value) >= 2 && (value[0] == '\'' || value[0] == '"') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	if s.Charset == nil {
		s.Charset = &value
	}
	return nil
}

// parseImport handles "@import url media;" (spec.md §4.1.1, §3 ImportStatement).
func (s *Stylesheet) parseImport(c *cursor, ctx *parseContext, softErrs *error) error {
	line, col := c.line, c.col
	text, stop := c.scanUntilTopLevel(";")
	if stop == ';' {
		c.advance()
	}
	url, rest, ok := extractLeadingURL(text)
	if !ok {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrMalformedDeclaration, "malformed @import", line, col))
		return nil
	}

	if *ctx.sawStyleRule {
		err := newParseError(ErrImportAfterStyleRule, "@import after a style rule", line, col)
		if s.opts.RaiseParseErrors {
			return err
		}
		s.opts.log().Warn(err.Error())
		*softErrs = multierr.Append(*softErrs, err)
		return nil
	}

	mediaText := strings.TrimSpace(rest)
	imp := ImportStatement{ID: uint32(len(s.Rules)), URL: url}
	if mediaText != "" {
		imp.Media = &mediaText
		mqType, conditions := canonicalizeMediaText(mediaText)
		id, err := s.internMediaQuery(mqType, conditions)
		if err != nil {
			return err
		}
		imp.MediaQueryID = &id
	}
	s.Imports = append(s.Imports, imp)
	return nil
}

// extractLeadingURL parses the URL portion of an @import prelude: either
// a quoted string or a url(...) function, returning the unquoted URL and
// whatever text follows it (the media query, if any).
func extractLeadingURL(text string) (url, rest string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", "", false
	}
	if trimmed[0] == '\'' || trimmed[0] == '"' {
		quote := trimmed[0]
		j := 1
		for j < len(trimmed) && trimmed[j] != quote {
			if trimmed[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(trimmed) {
			return "", "", false
		}
		return trimmed[1:j], trimmed[j+1:], true
	}
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "url(") {
		depth := 1
		j := len("url(")
		start := j
		for j < len(trimmed) && depth > 0 {
			switch trimmed[j] {
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
		if j >= len(trimmed) {
			return "", "", false
		}
		inner := trimmed[start:j]
		if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
			inner = inner[1 : len(inner)-1]
		}
		return inner, trimmed[j+1:], true
	}
	return "", "", false
}

// canonicalizeMediaText splits free-form media text into (type, conditions)
// per spec.md §3 MediaQuery: "(max-width: 768px)" -> (all, that text);
// "screen and (max-width: 768px)" -> (screen, "(max-width: 768px)");
// "screen" -> (screen, nil).
func canonicalizeMediaText(text string) (string, *string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "all", nil
	}
	if text[0] == '(' {
		cond := text
		return "all", &cond
	}
	idx := strings.IndexAny(text, " \t\n\r\f")
	if idx < 0 {
		return text, nil
	}
	word := text[:idx]
	rest := strings.TrimSpace(text[idx:])
	rest = strings.TrimPrefix(rest, "and")
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return word, nil
	}
	return word, &rest
}

// combineMediaText implements the §4.1.1 "media composition" rule for a
// nested @media inside an enclosing media context.
func combineMediaText(parent, child string) string {
	if parent == "" {
		return child
	}
	if strings.Contains(child, ":") {
		return parent + " and (" + child + ")"
	}
	return parent + " and " + child
}

// parseMedia handles "@media <text> { ... }", including comma-separated
// media-query lists (spec.md §4.1.1, §3 media_query_lists).
func (s *Stylesheet) parseMedia(c *cursor, ctx *parseContext, softErrs *error) error {
	line, col := c.line, c.col
	preludeText, stop := c.scanUntilTopLevel("{")
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated @media", line, col))
		return nil
	}
	c.advance()

	parts := splitTopLevel(strings.TrimSpace(preludeText), ',')
	if len(parts) == 0 {
		parts = []string{""}
	}

	var parentText string
	if ctx.mediaQueryID != nil {
		if mq := s.MediaQueryByID(*ctx.mediaQueryID); mq != nil {
			parentText = mq.Text()
		}
	}

	ids := make([]uint32, 0, len(parts))
	for _, part := range parts {
		combined := combineMediaText(parentText, part)
		mqType, conditions := canonicalizeMediaText(combined)
		id, err := s.internMediaQuery(mqType, conditions)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	if len(ids) > 1 {
		listID := s.nextMediaQueryListID
		s.nextMediaQueryListID++
		s.MediaQueryLists[listID] = ids
	}

	nestedDepth := ctx.depth + 1
	if nestedDepth > MaxParseDepth {
		return newParseError(ErrDepthExceeded, "exceeded MAX_PARSE_DEPTH", line, col)
	}
	firstID := ids[0]
	nestedCtx := &parseContext{
		depth:          nestedDepth,
		mediaQueryID:   &firstID,
		parentRuleID:   ctx.parentRuleID,
		parentSelector: ctx.parentSelector,
		sawStyleRule:   ctx.sawStyleRule,
	}
	return s.parseBlockContents(c, nestedCtx, softErrs)
}

// parseTransparentAtRule handles @supports/@layer/@container/@scope:
// structurally transparent recursion preserving the enclosing media
// context (spec.md §4.1.1). A semicolon-terminated statement form (e.g.
// "@layer a, b;") is simply discarded.
func (s *Stylesheet) parseTransparentAtRule(c *cursor, ctx *parseContext, softErrs *error) error {
	line, col := c.line, c.col
	_, stop := c.scanUntilTopLevel("{;")
	if stop == ';' {
		c.advance()
		return nil
	}
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated conditional-group at-rule", line, col))
		return nil
	}
	c.advance()
	nestedDepth := ctx.depth + 1
	if nestedDepth > MaxParseDepth {
		return newParseError(ErrDepthExceeded, "exceeded MAX_PARSE_DEPTH", line, col)
	}
	nestedCtx := &parseContext{
		depth:          nestedDepth,
		mediaQueryID:   ctx.mediaQueryID,
		parentRuleID:   ctx.parentRuleID,
		parentSelector: ctx.parentSelector,
		sawStyleRule:   ctx.sawStyleRule,
	}
	return s.parseBlockContents(c, nestedCtx, softErrs)
}

// parseKeyframes handles "@keyframes name { 0% {...} 100% {...} }",
// emitting an AtRule with Rules populated (spec.md §3 AtRule, §4.1.1).
func (s *Stylesheet) parseKeyframes(c *cursor, ctx *parseContext, rawName string, softErrs *error) error {
	line, col := c.line, c.col
	preludeText, stop := c.scanUntilTopLevel("{")
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated @keyframes", line, col))
		return nil
	}
	c.advance()

	selector := "@" + rawName + " " + strings.TrimSpace(preludeText)
	dummySaw := false
	var rules []Rule
	for {
		c.skipWhitespaceAndComments()
		if c.eof() {
			*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated @keyframes body", c.line, c.col))
			break
		}
		if c.peek() == '}' {
			c.advance()
			break
		}
		text, stop2 := c.scanUntilTopLevel("{}")
		if stop2 != '{' {
			*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated keyframe selector", c.line, c.col))
			break
		}
		c.advance()
		sel := strings.TrimSpace(text)
		decls, err := s.parseDeclarationsOrNesting(c, &parseContext{depth: ctx.depth + 1, sawStyleRule: &dummySaw}, softErrs)
		if err != nil {
			return err
		}
		rules = append(rules, Rule{ID: uint32(len(rules)), Selector: sel, Declarations: decls})
	}

	id := s.nextAtRuleID
	s.nextAtRuleID++
	s.AtRules = append(s.AtRules, AtRule{ID: id, Selector: selector, Rules: rules})
	return nil
}

// parseFontFace handles "@font-face { ... }", emitting an AtRule with
// Declarations populated.
func (s *Stylesheet) parseFontFace(c *cursor, ctx *parseContext, softErrs *error) error {
	line, col := c.line, c.col
	_, stop := c.scanUntilTopLevel("{")
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated @font-face", line, col))
		return nil
	}
	c.advance()
	dummySaw := false
	decls, err := s.parseDeclarationsOrNesting(c, &parseContext{depth: ctx.depth + 1, sawStyleRule: &dummySaw}, softErrs)
	if err != nil {
		return err
	}
	id := s.nextAtRuleID
	s.nextAtRuleID++
	s.AtRules = append(s.AtRules, AtRule{ID: id, Selector: "@font-face", Declarations: decls})
	return nil
}

// parseDeclarationAtRule handles @page/@property/@counter-style and any
// other unrecognized at-rule with a declaration body: folded into a
// regular Rule whose selector is the full at-rule prelude (spec.md
// §4.1.1). A semicolon-terminated statement form is discarded.
func (s *Stylesheet) parseDeclarationAtRule(c *cursor, name string, ctx *parseContext, softErrs *error, line, col int) error {
	preludeText, stop := c.scanUntilTopLevel("{;")
	if stop == ';' {
		c.advance()
		return nil
	}
	if stop != '{' {
		*softErrs = multierr.Append(*softErrs, newParseError(ErrUnterminatedBlock, "unterminated at-rule", line, col))
		return nil
	}
	c.advance()

	selector := "@" + name
	if prelude := strings.TrimSpace(preludeText); prelude != "" {
		selector += " " + prelude
	}
	decls, err := s.parseDeclarationsOrNesting(c, &parseContext{depth: ctx.depth + 1, sawStyleRule: ctx.sawStyleRule}, softErrs)
	if err != nil {
		return err
	}
	rule := Rule{ID: uint32(len(s.Rules)), Selector: selector, Declarations: decls, MediaQueryID: ctx.mediaQueryID}
	s.Rules = append(s.Rules, rule)
	s.mediaIndexDirty = true
	*ctx.sawStyleRule = true
	return nil
}
