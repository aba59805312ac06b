package scanner

import (
	"regexp"
	"strings"

	"github.com/oakwood-commons/stepls/internal/gherkin"
)

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	docOpenRe      = regexp.MustCompile(`^\s*/\*`)
	docCloseRe     = regexp.MustCompile(`^\s*\*/`)
)

// clearComments blanks comments without moving anything else, so positions
// found in the result are valid in the original text. Block comments become
// spaces (one per UTF-16 unit) around their newlines. Whole-line // and #
// comments are emptied; #{...} is interpolation, not a comment.
func clearComments(text string) string {
	text = blockCommentRe.ReplaceAllStringFunc(text, func(m string) string {
		var b strings.Builder
		for _, r := range m {
			if r == '\n' || r == '\r' {
				b.WriteRune(r)
				continue
			}
			b.WriteString(strings.Repeat(" ", gherkin.UTF16Len(string(r))))
		}
		return b.String()
	})
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "//") || (strings.HasPrefix(t, "#") && !strings.HasPrefix(t, "#{")) {
			lines[i] = ""
		}
	}
	return strings.Join(lines, "\n")
}

// docComments maps a line number to the block comment that ends on the line
// just above it. Only comments whose opening and closing markers start their
// lines are collected.
func docComments(text string) map[int]string {
	docs := make(map[int]string)
	var (
		cur     strings.Builder
		inBlock bool
	)
	for i, line := range splitLines(text) {
		switch {
		case docOpenRe.MatchString(line):
			cur.Reset()
			cur.WriteString(line)
			cur.WriteByte('\n')
			inBlock = !strings.Contains(line[strings.Index(line, "/*")+2:], "*/")
			if !inBlock {
				docs[i+1] = cur.String()
			}
		case docCloseRe.MatchString(line) && inBlock:
			cur.WriteString(line)
			cur.WriteByte('\n')
			docs[i+1] = cur.String()
			inBlock = false
		case inBlock:
			cur.WriteString(line)
			cur.WriteByte('\n')
		}
	}
	return docs
}

// ParseDoc extracts documentation from a JSDoc-style comment. The free
// description wins, then an @description tag, then @desc. When none of them
// has text the trimmed raw comment is returned.
func ParseDoc(raw string) string {
	var (
		desc []string
		tags = map[string][]string{}
		tag  string
	)
	for _, line := range strings.Split(unwrapComment(raw), "\n") {
		if strings.HasPrefix(line, "@") {
			name, rest, _ := strings.Cut(line[1:], " ")
			tag = name
			if _, seen := tags[tag]; seen {
				// first occurrence of a tag wins
				tag = ""
				continue
			}
			tags[tag] = []string{rest}
			continue
		}
		switch {
		case tag != "":
			tags[tag] = append(tags[tag], line)
		case len(tags) == 0:
			desc = append(desc, line)
		}
	}
	if d := joinDoc(desc); d != "" {
		return d
	}
	for _, name := range []string{"description", "desc"} {
		if d := joinDoc(tags[name]); d != "" {
			return d
		}
	}
	return strings.TrimSpace(raw)
}

// unwrapComment drops the comment markers and the leading '*' of each line.
func unwrapComment(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		l = strings.TrimPrefix(l, "*")
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

func joinDoc(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
