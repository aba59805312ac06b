package pattern

import "strings"

// MaxInvariants bounds how many bodies a single declaration may expand into.
const MaxInvariants = 256

// Invariants expands every parenthesized alternation in body into separate
// bodies, one per alternative. Independent groups yield their cross product
// and nested groups are expanded from the outside in. A group followed by
// '?' also yields the variant without it. Groups that are repeated with
// '*', '+' or '{n}' and lookaround groups are left alone. Dropping an
// optional group between two words keeps a single space between them.
func Invariants(body string) []string {
	out := make([]string, 0, 4)
	expandInto(body, &out)
	return out
}

func expandInto(body string, out *[]string) {
	if len(*out) >= MaxInvariants {
		return
	}
	g, ok := findAlternation(body)
	if !ok {
		*out = append(*out, body)
		return
	}
	for _, v := range splitTopLevel(body[g.inner:g.close]) {
		expandInto(body[:g.open]+v+body[g.end:], out)
		if len(*out) >= MaxInvariants {
			return
		}
	}
	if g.optional {
		expandInto(withoutGroup(body, g), out)
	}
}

// withoutGroup removes g from body together with one of the spaces around
// it, so "I say (a|b)? now" becomes "I say now".
func withoutGroup(body string, g group) string {
	left, right := body[:g.open], body[g.end:]
	switch {
	case strings.HasSuffix(left, " ") && (right == "" || right[0] == ' ' || right[0] == '$'):
		left = left[:len(left)-1]
	case (left == "" || left == "^") && strings.HasPrefix(right, " "):
		right = right[1:]
	}
	return left + right
}

type group struct {
	open     int  // index of '('
	inner    int  // first byte of the alternatives, past any "?:" prefix
	close    int  // index of the matching ')'
	end      int  // first byte after the group and its optional '?'
	optional bool // group was followed by '?'
}

// findAlternation returns the first group, scanning left to right, whose
// top level contains '|'.
func findAlternation(s string) (group, bool) {
	classEnd := classEnds(s)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
			continue
		case '[':
			if end, ok := classEnd[i]; ok {
				i = end
			}
			continue
		case '(':
		default:
			continue
		}
		closeIdx := matchingClose(s, i, classEnd)
		if closeIdx < 0 {
			continue
		}
		inner, ok := groupBody(s, i)
		if !ok || !hasTopLevelBar(s[inner:closeIdx], classEnds(s[inner:closeIdx])) {
			continue
		}
		end := closeIdx + 1
		if end < len(s) && strings.IndexByte("*+{", s[end]) >= 0 {
			continue
		}
		g := group{open: i, inner: inner, close: closeIdx, end: end}
		if end < len(s) && s[end] == '?' {
			g.optional = true
			g.end++
		}
		return g, true
	}
	return group{}, false
}

// groupBody returns where the alternatives of the group opened at i begin.
// Plain, non-capturing and named groups qualify; lookarounds and flag
// groups do not.
func groupBody(s string, i int) (int, bool) {
	rest := s[i+1:]
	switch {
	case !strings.HasPrefix(rest, "?"):
		return i + 1, true
	case strings.HasPrefix(rest, "?:"):
		return i + 3, true
	case strings.HasPrefix(rest, "?<") && !strings.HasPrefix(rest, "?<=") && !strings.HasPrefix(rest, "?<!"):
		if end := strings.IndexByte(rest, '>'); end >= 0 {
			return i + 1 + end + 1, true
		}
	}
	return 0, false
}

func matchingClose(s string, open int, classEnd map[int]int) int {
	depth := 0
	for j := open; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			if end, ok := classEnd[j]; ok {
				j = end
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

func hasTopLevelBar(s string, classEnd map[int]int) bool {
	return len(splitTopLevelWith(s, classEnd)) > 1
}

func splitTopLevel(s string) []string {
	return splitTopLevelWith(s, classEnds(s))
}

func splitTopLevelWith(s string, classEnd map[int]int) []string {
	var parts []string
	depth, start := 0, 0
	for j := 0; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '[':
			if end, ok := classEnd[j]; ok {
				j = end
			}
		case '(':
			depth++
		case ')':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, s[start:j])
				start = j + 1
			}
		}
	}
	return append(parts, s[start:])
}
