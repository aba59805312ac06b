package pattern

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	quotedFragments = []string{StringFragment, StringInDoubleQuotesFragment, `"[^"]*"`}

	// snippetRe finds the regions of insertion text that came from
	// parameters: quoted string fragments first, then the float fragment,
	// then any single quantified atom such as \d+, .* or [^\s]+.
	snippetRe = regexp.MustCompile(strings.Join([]string{
		regexp.QuoteMeta(StringFragment),
		regexp.QuoteMeta(StringInDoubleQuotesFragment),
		regexp.QuoteMeta(`"[^"]*"`),
		regexp.QuoteMeta(FloatFragment),
		`(?:-\?)?\(?(?:\\.|\.|\[[^\]]+\])(?:\*|\+|\{[^}]+\})\)?`,
	}, "|"))
)

// InsertText returns the part of label that still has to be typed after
// typed. The label is tokenized like the partial matcher; the first token
// whose cumulative prefix no longer matches typed starts the insertion.
// When every prefix matches, the whole label is inserted.
func (c *Compiler) InsertText(label, typed string) string {
	res := label
	tokens := Tokens(RegexText(label))
	for i := range tokens {
		prefix := strings.Join(tokens[:i+1], " ")
		if !c.prefixMatcher(prefix).MatchString(typed) {
			res = strings.Join(tokens[i:], " ")
			break
		}
	}
	if c.opts.SmartSnippets {
		return Snippet(res)
	}
	return Plain(res)
}

// Snippet replaces parameter regions with numbered snippet placeholders.
// Quoted string parameters keep their quotes around the placeholder.
func Snippet(text string) string {
	n := 0
	return snippetRe.ReplaceAllStringFunc(text, func(m string) string {
		n++
		ph := "${" + strconv.Itoa(n) + ":}"
		for _, q := range quotedFragments {
			if m == q {
				return `"` + ph + `"`
			}
		}
		return ph
	})
}

// Plain collapses quoted string fragments to an empty pair of quotes and
// leaves everything else as is.
func Plain(text string) string {
	for _, q := range quotedFragments {
		text = strings.ReplaceAll(text, q, `""`)
	}
	return text
}
