package cataract

import "strings"

// tokenizeValue splits a declaration value on whitespace, keeping
// parenthesized function arguments (calc(...), rgb(...), url(...)) and
// quoted strings whole (spec.md §4.4).
func tokenizeValue(value string) []string {
	var tokens []string
	var cur strings.Builder
	depth := 0
	var quote byte
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case quote != 0:
			cur.WriteByte(ch)
			if ch == '\\' && i+1 < len(value) {
				i++
				cur.WriteByte(value[i])
				continue
			}
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			quote = ch
			cur.WriteByte(ch)
		case ch == '(':
			depth++
			cur.WriteByte(ch)
		case ch == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(ch)
		case depth > 0:
			cur.WriteByte(ch)
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	flush()
	return tokens
}

var fourSides = []string{"top", "right", "bottom", "left"}

// expandBoxSides implements the 1/2/3/4-token margin/padding expansion
// (spec.md §4.4 table).
func expandBoxSides(prefix, value string) (map[string]string, bool) {
	tokens := tokenizeValue(value)
	var top, right, bottom, left string
	switch len(tokens) {
	case 1:
		top, right, bottom, left = tokens[0], tokens[0], tokens[0], tokens[0]
	case 2:
		top, bottom = tokens[0], tokens[0]
		right, left = tokens[1], tokens[1]
	case 3:
		top = tokens[0]
		right, left = tokens[1], tokens[1]
		bottom = tokens[2]
	case 4:
		top, right, bottom, left = tokens[0], tokens[1], tokens[2], tokens[3]
	default:
		return nil, false
	}
	return map[string]string{
		prefix + "-top":    top,
		prefix + "-right":  right,
		prefix + "-bottom": bottom,
		prefix + "-left":   left,
	}, true
}

// synthesizeBoxSides reverses expandBoxSides, choosing the shortest
// equivalent 1/2/3/4-value form.
func synthesizeBoxSides(prefix string, values map[string]string) (string, bool) {
	top, ok1 := values[prefix+"-top"]
	right, ok2 := values[prefix+"-right"]
	bottom, ok3 := values[prefix+"-bottom"]
	left, ok4 := values[prefix+"-left"]
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", false
	}
	switch {
	case top == right && right == bottom && bottom == left:
		return top, true
	case top == bottom && right == left:
		return top + " " + right, true
	case right == left:
		return top + " " + right + " " + bottom, true
	default:
		return top + " " + right + " " + bottom + " " + left, true
	}
}

var borderStyleKeywords = map[string]bool{
	"none": true, "hidden": true, "dotted": true, "dashed": true, "solid": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

var borderWidthKeywords = map[string]bool{"thin": true, "medium": true, "thick": true}

func looksLikeColor(tok string) bool {
	if tok == "" {
		return false
	}
	if tok[0] == '#' {
		return true
	}
	lower := strings.ToLower(tok)
	for _, fn := range []string{"rgb(", "rgba(", "hsl(", "hsla(", "var("} {
		if strings.HasPrefix(lower, fn) {
			return true
		}
	}
	return true // fallback: anything left unclassified (e.g. named colors) is treated as color
}

func looksLikeWidth(tok string) bool {
	if borderWidthKeywords[strings.ToLower(tok)] {
		return true
	}
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '-' || tok[0] == '+' {
		i++
	}
	sawDigit := false
	for i < len(tok) && (tok[i] >= '0' && tok[i] <= '9' || tok[i] == '.') {
		sawDigit = true
		i++
	}
	return sawDigit
}

// classifyBorderComponents assigns each of 1-3 tokens in a "border"/
// "border-{side}" value to width/style/color by shape (spec.md §4.4).
func classifyBorderComponents(value string) (width, style, color string, ok bool) {
	tokens := tokenizeValue(value)
	if len(tokens) == 0 || len(tokens) > 3 {
		return "", "", "", false
	}
	for _, tok := range tokens {
		switch {
		case borderStyleKeywords[strings.ToLower(tok)]:
			style = tok
		case looksLikeWidth(tok):
			width = tok
		default:
			color = tok
		}
	}
	return width, style, color, true
}

// expandBorderSide expands "border-{side}" into its three longhands.
func expandBorderSide(side, value string) (map[string]string, bool) {
	width, style, color, ok := classifyBorderComponents(value)
	if !ok {
		return nil, false
	}
	out := map[string]string{}
	if width != "" {
		out["border-"+side+"-width"] = width
	}
	if style != "" {
		out["border-"+side+"-style"] = style
	}
	if color != "" {
		out["border-"+side+"-color"] = color
	}
	return out, true
}

func synthesizeBorderSide(side string, values map[string]string) (string, bool) {
	width, hasW := values["border-"+side+"-width"]
	style, hasS := values["border-"+side+"-style"]
	color, hasC := values["border-"+side+"-color"]
	if !hasW && !hasS && !hasC {
		return "", false
	}
	var parts []string
	if hasW {
		parts = append(parts, width)
	}
	if hasS {
		parts = append(parts, style)
	}
	if hasC {
		parts = append(parts, color)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// ShorthandLonghands returns the final (fully decomposed) longhand
// property names a shorthand expands into, or (nil, false) if property is
// not a recognized shorthand.
func ShorthandLonghands(property string) ([]string, bool) {
	switch property {
	case "margin", "padding":
		var out []string
		for _, side := range fourSides {
			out = append(out, property+"-"+side)
		}
		return out, true
	case "border-width", "border-style", "border-color":
		kind := strings.TrimPrefix(property, "border-")
		var out []string
		for _, side := range fourSides {
			out = append(out, "border-"+side+"-"+kind)
		}
		return out, true
	case "border-top", "border-right", "border-bottom", "border-left":
		side := strings.TrimPrefix(property, "border-")
		return []string{"border-" + side + "-width", "border-" + side + "-style", "border-" + side + "-color"}, true
	case "border":
		var out []string
		for _, side := range fourSides {
			out = append(out, "border-"+side+"-width", "border-"+side+"-style", "border-"+side+"-color")
		}
		return out, true
	case "font":
		return []string{"font-style", "font-variant", "font-weight", "font-size", "line-height", "font-family"}, true
	case "list-style":
		return []string{"list-style-type", "list-style-position", "list-style-image"}, true
	case "background":
		return []string{"background-color", "background-image", "background-position", "background-size",
			"background-repeat", "background-attachment", "background-clip", "background-origin"}, true
	default:
		return nil, false
	}
}

// ExpandShorthand expands a shorthand declaration's value into its final
// (non-decomposable) longhand values. Returns (nil, false) if property is
// not a recognized shorthand or the value doesn't fit the expected shape.
func ExpandShorthand(property, value string) (map[string]string, bool) {
	switch property {
	case "margin", "padding":
		return expandBoxSides(property, value)
	case "border-width", "border-style", "border-color":
		kind := strings.TrimPrefix(property, "border-")
		sides, ok := expandBoxSides("border-side-"+kind, value)
		if !ok {
			return nil, false
		}
		out := make(map[string]string, 4)
		for _, side := range fourSides {
			out["border-"+side+"-"+kind] = sides["border-side-"+kind+"-"+side]
		}
		return out, true
	case "border-top", "border-right", "border-bottom", "border-left":
		side := strings.TrimPrefix(property, "border-")
		return expandBorderSide(side, value)
	case "border":
		width, style, color, ok := classifyBorderComponents(value)
		if !ok {
			return nil, false
		}
		out := make(map[string]string, 12)
		for _, side := range fourSides {
			if width != "" {
				out["border-"+side+"-width"] = width
			}
			if style != "" {
				out["border-"+side+"-style"] = style
			}
			if color != "" {
				out["border-"+side+"-color"] = color
			}
		}
		return out, true
	case "font":
		return expandFont(value)
	case "list-style":
		return expandListStyle(value)
	case "background":
		return expandBackground(value)
	default:
		return nil, false
	}
}

// SynthesizeShorthand attempts to recombine a complete longhand value set
// (all sharing one importance flag) back into a shorthand's minimal value.
func SynthesizeShorthand(property string, values map[string]string) (string, bool) {
	switch property {
	case "margin", "padding":
		return synthesizeBoxSides(property, values)
	case "border-width", "border-style", "border-color":
		kind := strings.TrimPrefix(property, "border-")
		remapped := map[string]string{}
		for _, side := range fourSides {
			v, ok := values["border-"+side+"-"+kind]
			if !ok {
				return "", false
			}
			remapped["border-side-"+kind+"-"+side] = v
		}
		return synthesizeBoxSides("border-side-"+kind, remapped)
	case "border-top", "border-right", "border-bottom", "border-left":
		side := strings.TrimPrefix(property, "border-")
		return synthesizeBorderSide(side, values)
	case "border":
		var widths, styles, colors [4]string
		for i, side := range fourSides {
			w, okW := values["border-"+side+"-width"]
			s, okS := values["border-"+side+"-style"]
			c, okC := values["border-"+side+"-color"]
			if !okW || !okS || !okC {
				return "", false
			}
			widths[i], styles[i], colors[i] = w, s, c
		}
		for i := 1; i < 4; i++ {
			if widths[i] != widths[0] || styles[i] != styles[0] || colors[i] != colors[0] {
				return "", false
			}
		}
		return strings.Join([]string{widths[0], styles[0], colors[0]}, " "), true
	case "font":
		return synthesizeFont(values)
	case "list-style":
		return synthesizeListStyle(values)
	case "background":
		return synthesizeBackground(values)
	default:
		return "", false
	}
}

var fontWeightKeywords = map[string]bool{
	"normal": true, "bold": true, "bolder": true, "lighter": true,
	"100": true, "200": true, "300": true, "400": true, "500": true, "600": true, "700": true, "800": true, "900": true,
}
var fontStyleKeywords = map[string]bool{"italic": true, "oblique": true}
var fontVariantKeywords = map[string]bool{"small-caps": true}

// expandFont implements the positional "font" shorthand: optional
// style/variant/weight (any order, any subset), then mandatory size
// (optionally "/line-height"), then mandatory family (comma list, rest of
// the tokens).
func expandFont(value string) (map[string]string, bool) {
	tokens := tokenizeValue(value)
	out := map[string]string{
		"font-style": "normal", "font-variant": "normal", "font-weight": "normal", "line-height": "normal",
	}
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		lower := strings.ToLower(tok)
		switch {
		case fontStyleKeywords[lower]:
			out["font-style"] = tok
		case fontVariantKeywords[lower]:
			out["font-variant"] = tok
		case fontWeightKeywords[lower]:
			out["font-weight"] = tok
		default:
			goto size
		}
		i++
	}
size:
	if i >= len(tokens) {
		return nil, false
	}
	sizeTok := tokens[i]
	if slash := strings.IndexByte(sizeTok, '/'); slash >= 0 {
		out["font-size"] = sizeTok[:slash]
		out["line-height"] = sizeTok[slash+1:]
	} else {
		out["font-size"] = sizeTok
	}
	i++
	if i >= len(tokens) {
		return nil, false
	}
	out["font-family"] = strings.Join(tokens[i:], " ")
	return out, true
}

func synthesizeFont(values map[string]string) (string, bool) {
	size, okSize := values["font-size"]
	family, okFamily := values["font-family"]
	if !okSize || !okFamily {
		return "", false
	}
	var parts []string
	if v, ok := values["font-style"]; ok && v != "normal" {
		parts = append(parts, v)
	}
	if v, ok := values["font-variant"]; ok && v != "normal" {
		parts = append(parts, v)
	}
	if v, ok := values["font-weight"]; ok && v != "normal" {
		parts = append(parts, v)
	}
	sizePart := size
	if v, ok := values["line-height"]; ok && v != "normal" {
		sizePart += "/" + v
	}
	parts = append(parts, sizePart, family)
	return strings.Join(parts, " "), true
}

var listStylePositionKeywords = map[string]bool{"inside": true, "outside": true}

func expandListStyle(value string) (map[string]string, bool) {
	tokens := tokenizeValue(value)
	if len(tokens) == 0 {
		return nil, false
	}
	out := map[string]string{}
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "url("):
			out["list-style-image"] = tok
		case listStylePositionKeywords[lower]:
			out["list-style-position"] = tok
		default:
			out["list-style-type"] = tok
		}
	}
	return out, true
}

func synthesizeListStyle(values map[string]string) (string, bool) {
	var parts []string
	for _, key := range []string{"list-style-type", "list-style-position", "list-style-image"} {
		if v, ok := values[key]; ok && v != "none" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		if v, ok := values["list-style-type"]; ok {
			return v, true
		}
		return "", false
	}
	return strings.Join(parts, " "), true
}

var backgroundRepeatKeywords = map[string]bool{
	"repeat": true, "repeat-x": true, "repeat-y": true, "no-repeat": true, "space": true, "round": true,
}
var backgroundAttachmentKeywords = map[string]bool{"scroll": true, "fixed": true, "local": true}
var backgroundBoxKeywords = map[string]bool{"border-box": true, "padding-box": true, "content-box": true}

// expandBackground classifies whitespace-separated tokens by shape; a
// "/" inside a token separates position from size (spec.md §4.4).
func expandBackground(value string) (map[string]string, bool) {
	tokens := tokenizeValue(value)
	if len(tokens) == 0 {
		return nil, false
	}
	out := map[string]string{}
	var positionParts []string
	boxSeen := 0
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "url("):
			out["background-image"] = tok
		case backgroundRepeatKeywords[lower]:
			out["background-repeat"] = tok
		case backgroundAttachmentKeywords[lower]:
			out["background-attachment"] = tok
		case backgroundBoxKeywords[lower]:
			if boxSeen == 0 {
				out["background-origin"] = tok
			} else {
				out["background-clip"] = tok
			}
			boxSeen++
		case looksLikeColor(tok) && !looksLikeWidth(tok) && tok != "none":
			if strings.Contains(tok, "/") {
				parts := strings.SplitN(tok, "/", 2)
				positionParts = append(positionParts, parts[0])
				out["background-size"] = parts[1]
			} else {
				out["background-color"] = tok
			}
		default:
			positionParts = append(positionParts, tok)
		}
	}
	if len(positionParts) > 0 {
		out["background-position"] = strings.Join(positionParts, " ")
	}
	return out, true
}

func synthesizeBackground(values map[string]string) (string, bool) {
	order := []string{
		"background-color", "background-image", "background-position", "background-size",
		"background-repeat", "background-attachment", "background-origin", "background-clip",
	}
	var parts []string
	for _, key := range order {
		if v, ok := values[key]; ok && v != "" {
			if key == "background-size" {
				if len(parts) == 0 {
					return "", false
				}
				parts[len(parts)-1] = parts[len(parts)-1] + "/" + v
				continue
			}
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}
