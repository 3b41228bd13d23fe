package cataract

import "strings"

// legacyPseudoElements are single-colon pseudo-elements kept for
// compatibility; everything else written with a single colon is a
// pseudo-class (spec.md §4.5).
var legacyPseudoElements = map[string]bool{
	"before":       true,
	"after":        true,
	"first-line":   true,
	"first-letter": true,
	"selection":    true,
}

// CalculateSpecificity computes the W3C specificity triple (a, b, c) for a
// single (already comma-split) selector and encodes it as 100a + 10b + c,
// via one left-to-right byte scan (spec.md §4.5). Unlike the teacher's
// selector.go, the contents of :not(...) are recursed into rather than
// counted as a bare pseudo-class, satisfying P7/S6.
func CalculateSpecificity(selector string) uint32 {
	a, b, c := specificityTriple(selector)
	return 100*a + 10*b + c
}

func specificityTriple(selector string) (a, b, c uint32) {
	s := selector
	i := 0
	n := len(s)
	isIdentByte := func(ch byte) bool {
		return ch == '-' || ch == '_' || ch == '\\' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(ch >= '0' && ch <= '9') || ch >= 0x80
	}
	scanIdent := func(start int) int {
		j := start
		for j < n && isIdentByte(s[j]) {
			j++
		}
		return j
	}
	// scanBalanced returns the index just past the matching close byte,
	// given i currently points at the open byte.
	scanBalanced := func(start int, open, close byte) int {
		depth := 0
		j := start
		for j < n {
			switch s[j] {
			case '\'', '"':
				quote := s[j]
				j++
				for j < n && s[j] != quote {
					if s[j] == '\\' && j+1 < n {
						j++
					}
					j++
				}
			case open:
				depth++
			case close:
				depth--
				if depth == 0 {
					return j + 1
				}
			}
			j++
		}
		return j
	}

	for i < n {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f':
			i++
		case ch == '>' || ch == '+' || ch == '~' || ch == '*' || ch == ',':
			i++
		case ch == '#':
			i++
			start := i
			i = scanIdent(i)
			_ = start
			a++
		case ch == '.':
			i++
			i = scanIdent(i)
			b++
		case ch == '[':
			i = scanBalanced(i, '[', ']')
			b++
		case ch == ':':
			colons := 1
			i++
			if i < n && s[i] == ':' {
				colons = 2
				i++
			}
			nameStart := i
			i = scanIdent(i)
			name := strings.ToLower(s[nameStart:i])
			hasArgs := i < n && s[i] == '('
			if colons == 2 {
				// "::ident" pseudo-element.
				if hasArgs {
					i = scanBalanced(i, '(', ')')
				}
				c++
				continue
			}
			if name == "not" && hasArgs {
				argStart := i + 1
				argEnd := scanBalanced(i, '(', ')') - 1
				inner := s[argStart:argEnd]
				ia, ib, ic := specificityTriple(inner)
				a += ia
				b += ib
				c += ic
				i = argEnd + 1
				continue
			}
			if hasArgs {
				i = scanBalanced(i, '(', ')')
			}
			if legacyPseudoElements[name] && !hasArgs {
				c++
			} else {
				b++
			}
		default:
			if isIdentByte(ch) {
				i = scanIdent(i)
				c++
			} else {
				i++
			}
		}
	}
	return a, b, c
}
