package pattern

import (
	"strconv"
	"strings"
)

// Tokens splits compiled regex text on spaces. A parenthesized group or a
// character class is never split, even when it contains spaces, and escaped
// characters are carried through untouched.
func Tokens(text string) []string {
	classEnd := classEnds(text)
	var (
		tokens []string
		cur    strings.Builder
		depth  int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\\' && i+1 < len(text):
			cur.WriteString(text[i : i+2])
			i++
		case c == '[':
			if end, ok := classEnd[i]; ok {
				cur.WriteString(text[i : end+1])
				i = end
			} else {
				cur.WriteByte(c)
			}
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case c == ' ' && depth == 0:
			tokens = append(tokens, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	return append(tokens, cur.String())
}

// PartialText builds a prefix matcher from compiled regex text. The result
// accepts any left-anchored prefix of the step, cut at a token boundary:
// each token may be replaced by end of input, as may each separating space.
func PartialText(regexText string) string {
	tokens := Tokens(regexText)
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = "(?:" + t + "|$)"
	}
	return "^" + strings.Join(parts, "(?: |$)")
}

// Anchor wraps compiled regex text so it must match a whole step. A leading
// '^' and a trailing unescaped '$' written by the author are folded in.
func Anchor(regexText string) string {
	core := strings.TrimPrefix(regexText, "^")
	if strings.HasSuffix(core, "$") && !escapedAt(core, len(core)-1) {
		core = core[:len(core)-1]
	}
	return "^(?:" + core + ")$"
}

// escapedAt reports whether s[i] is preceded by an odd number of backslashes.
func escapedAt(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// Label derives the human-facing step text from a body: \uXXXX escapes are
// decoded, other backslashes are removed, then the leading '^' and trailing
// '$' anchors.
func Label(body string) string {
	s := strings.ReplaceAll(decodeUnicodeEscapes(body), `\`, "")
	s = strings.TrimPrefix(s, "^")
	return strings.TrimSuffix(s, "$")
}

// decodeUnicodeEscapes replaces every unescaped \uXXXX sequence in s with
// the character it names.
func decodeUnicodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		if s[i+1] == 'u' && hexDigits(s[i+2:], 4) {
			r, _ := strconv.ParseUint(s[i+2:i+6], 16, 32)
			b.WriteRune(rune(r))
			i += 5
			continue
		}
		b.WriteString(s[i : i+2])
		i++
	}
	return b.String()
}
