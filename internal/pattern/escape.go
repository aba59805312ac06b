package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

// Step bodies are regex source, so the final pipeline stage keeps every
// well-formed construct and only escapes metacharacters that cannot compile:
// unbalanced parentheses, unterminated classes, stray braces, quantifiers
// with nothing to repeat, and a trailing lone backslash.

type operand int

const (
	noOperand operand = iota
	atom
	quantified
	lazyQuantified
)

var quantifierRe = regexp.MustCompile(`^\{(\d+)(?:,(\d*))?\}`)

const maxRepeat = 1000

// EscapeStray escapes the metacharacters in s that would keep it from
// compiling and leaves every intentional regex construct untouched.
func EscapeStray(s string) string {
	classEnd := classEnds(s)
	matched := matchParens(s, classEnd)

	var b strings.Builder
	b.Grow(len(s) + 8)
	last := noOperand

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			n := copyEscape(&b, s, i)
			if n == 0 {
				continue
			}
			i += n - 1
			last = atom
		case '[':
			if end, ok := classEnd[i]; ok {
				b.WriteString(s[i : end+1])
				i = end
			} else {
				b.WriteString(`\[`)
			}
			last = atom
		case ']', '}':
			b.WriteByte('\\')
			b.WriteByte(c)
			last = atom
		case '(':
			if !matched[i] {
				b.WriteString(`\(`)
				last = atom
				continue
			}
			i += copyGroupOpen(&b, s, i) - 1
			last = noOperand
		case ')':
			if matched[i] {
				b.WriteByte(')')
			} else {
				b.WriteString(`\)`)
			}
			last = atom
		case '|':
			b.WriteByte('|')
			last = noOperand
		case '*', '+', '?':
			switch {
			case last == atom:
				b.WriteByte(c)
				last = quantified
			case last == quantified && c == '?':
				b.WriteByte(c)
				last = lazyQuantified
			default:
				b.WriteByte('\\')
				b.WriteByte(c)
				last = atom
			}
		case '{':
			if q := validQuantifier(s[i:]); q != "" && last == atom {
				b.WriteString(q)
				i += len(q) - 1
				last = quantified
			} else {
				b.WriteString(`\{`)
				last = atom
			}
		default:
			b.WriteByte(c)
			last = atom
		}
	}
	return b.String()
}

// copyEscape writes the escape sequence starting at s[i] and returns how
// many bytes it consumed. Zero means the backslash was dropped and the next
// character should be read as a literal, which is how JavaScript reads an
// escaped letter that has no meaning of its own.
func copyEscape(b *strings.Builder, s string, i int) int {
	if i+1 >= len(s) {
		b.WriteString(`\\`)
		return 1
	}
	c := s[i+1]
	n := 0
	switch {
	case c < 0x80 && isPunct(c):
		n = 2
	case strings.IndexByte("dDsSwWbBfnrtv0123456789", c) >= 0:
		n = 2
	case c == 'c' && i+2 < len(s) && isLetter(s[i+2]):
		n = 3
	case c == 'x' && hexDigits(s[i+2:], 2):
		n = 4
	case c == 'u' && hexDigits(s[i+2:], 4):
		n = 6
	case c == 'k' && strings.HasPrefix(s[i+2:], "<"):
		if end := strings.IndexByte(s[i+2:], '>'); end >= 0 {
			n = 2 + end + 1
		}
	}
	b.WriteString(s[i : i+n])
	return n
}

func hexDigits(s string, n int) bool {
	if len(s) < n {
		return false
	}
	for i := 0; i < n; i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'a' && c <= 'f') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// copyGroupOpen writes an opening parenthesis together with any group
// flags or name and returns the number of bytes consumed. A bare flag group
// such as "(?i)" is consumed whole.
func copyGroupOpen(b *strings.Builder, s string, i int) int {
	if i+1 >= len(s) || s[i+1] != '?' {
		b.WriteByte('(')
		return 1
	}
	j := i + 2
	switch {
	case strings.HasPrefix(s[j:], "<="), strings.HasPrefix(s[j:], "<!"):
		j += 2
	case strings.HasPrefix(s[j:], "<"):
		if end := strings.IndexByte(s[j:], '>'); end >= 0 {
			j += end + 1
		}
	default:
		for j < len(s) && (isLetter(s[j]) || s[j] == '-') {
			j++
		}
		if j < len(s) && (s[j] == ':' || s[j] == '=' || s[j] == '!') {
			j++
		} else if j < len(s) && s[j] == ')' {
			j++
		}
	}
	b.WriteString(s[i:j])
	return j - i
}

func validQuantifier(s string) string {
	m := quantifierRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	lo, err := strconv.Atoi(m[1])
	if err != nil || lo > maxRepeat {
		return ""
	}
	if m[2] != "" {
		hi, err := strconv.Atoi(m[2])
		if err != nil || hi > maxRepeat || hi < lo {
			return ""
		}
	}
	return m[0]
}

// classEnds maps the index of each '[' that opens a well-formed character
// class to the index of its closing ']'.
func classEnds(s string) map[int]int {
	ends := make(map[int]int)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			if end := findClassEnd(s, i); end >= 0 {
				ends[i] = end
				i = end
			}
		}
	}
	return ends
}

func findClassEnd(s string, start int) int {
	j := start + 1
	if j < len(s) && s[j] == '^' {
		j++
	}
	if j < len(s) && s[j] == ']' {
		j++
	}
	for j < len(s) {
		switch s[j] {
		case '\\':
			j += 2
			continue
		case '[':
			if j+1 < len(s) && s[j+1] == ':' {
				if end := strings.Index(s[j+2:], ":]"); end >= 0 {
					j += 2 + end + 2
					continue
				}
			}
		case ']':
			return j
		}
		j++
	}
	return -1
}

// matchParens marks every parenthesis that has a balanced partner, skipping
// escapes and character classes.
func matchParens(s string, classEnd map[int]int) map[int]bool {
	matched := make(map[int]bool)
	var stack []int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[':
			if end, ok := classEnd[i]; ok {
				i = end
			}
		case '(':
			stack = append(stack, i)
		case ')':
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				matched[open] = true
				matched[i] = true
			}
		}
	}
	return matched
}

func isPunct(c byte) bool {
	return (c >= '!' && c <= '/') || (c >= ':' && c <= '@') || (c >= '[' && c <= '`') || (c >= '{' && c <= '~')
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
