// Package scanner finds step declarations in source files by matching
// lines of text. It never parses the host language.
package scanner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/pkg/logger"
)

// declarationWords are accepted in front of a declaration body besides the
// Gherkin keywords themselves.
var declarationWords = []string{"defineStep", "Step", "StepDefinition"}

// defaultDelimiters open and close a declaration body unless a custom
// delimiter is configured.
const defaultDelimiters = "/|'|\"|`"

// Options configures how declarations are recognized.
type Options struct {
	// KeywordPattern replaces the keyword alternation. It must compile and is
	// wrapped in a capturing group.
	KeywordPattern string
	// Delimiter is a literal symbol that opens and closes every body. Empty
	// means any of / ' " and backtick.
	Delimiter string
}

// Declaration is one step declaration found in a file. Line and Column are
// zero based; Column counts UTF-16 units up to the keyword.
type Declaration struct {
	Path          string
	Line          int
	Column        int
	Keyword       string
	Category      gherkin.Category
	Delimiter     string
	Body          string
	Description   string
	Documentation string
}

// Match is the structural match of one (possibly joined) line.
type Match struct {
	Before    string
	Keyword   string
	Delimiter string
	Body      string
}

// Scanner extracts declarations from files.
type Scanner struct {
	files Provider
	head  *regexp.Regexp
	log   logr.Logger
}

// New builds a Scanner. It fails only when opts.KeywordPattern does not
// compile.
func New(opts Options, files Provider, lgr logr.Logger) (*Scanner, error) {
	kw := opts.KeywordPattern
	if kw == "" {
		words := make([]string, len(declarationWords))
		for i, w := range declarationWords {
			words[i] = regexp.QuoteMeta(w)
		}
		kw = gherkin.KeywordPattern() + "|" + strings.Join(words, "|")
	}
	delims := defaultDelimiters
	if opts.Delimiter != "" {
		delims = regexp.QuoteMeta(opts.Delimiter)
	}
	expr := `(?i)^((?:[^'"/` + "`" + `]*?[^\w])|)(` + kw + `)[^/'"` + "`" + `\w]*?(` + delims + `)`
	head, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid declaration keyword pattern %q: %w", opts.KeywordPattern, err)
	}
	if files == nil {
		files = OSProvider{Log: lgr}
	}
	return &Scanner{files: files, head: head, log: lgr}, nil
}

// Files returns the provider the scanner reads through.
func (s *Scanner) Files() Provider {
	return s.files
}

// MatchLine matches one line against the declaration structure:
// a prefix that is empty or ends in a non-word character, the keyword,
// filler without delimiters or word characters, then a body enclosed by
// the same delimiter. Backslash escapes inside the body are honored.
func (s *Scanner) MatchLine(line string) (Match, bool) {
	loc := s.head.FindStringSubmatchIndex(line)
	if loc == nil {
		return Match{}, false
	}
	// The keyword group may be an arbitrary user pattern with groups of its
	// own, so the delimiter is always the last group.
	n := len(loc) / 2
	delim := line[loc[2*(n-1)]:loc[2*(n-1)+1]]
	body, ok := scanBody(line[loc[1]:], delim)
	if !ok {
		return Match{}, false
	}
	return Match{
		Before:    line[loc[2]:loc[3]],
		Keyword:   line[loc[4]:loc[5]],
		Delimiter: delim,
		Body:      body,
	}, true
}

// scanBody returns the text up to the first unescaped delim.
func scanBody(rest, delim string) (string, bool) {
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' {
			i++
			continue
		}
		if strings.HasPrefix(rest[i:], delim) {
			return rest[:i], true
		}
	}
	return "", false
}

// ScanFile reads path through the provider and scans it.
func (s *Scanner) ScanFile(path string) []Declaration {
	decls := s.ScanText(path, s.files.ReadFile(path))
	s.log.V(logger.TraceLevel).Info("scanned declaration file", logger.PathKey, path, logger.CountKey, len(decls))
	return decls
}

// ScanText scans text as if it had been read from path.
func (s *Scanner) ScanText(path, text string) []Declaration {
	docs := docComments(text)
	lines := splitLines(clearComments(text))

	var out []Declaration
	for i, line := range lines {
		m, ok := s.MatchLine(line)
		full := line
		if !ok && i+1 < len(lines) && lines[i+1] != "" {
			next := lines[i+1]
			if _, nextOK := s.MatchLine(next); !nextOK {
				m, ok = s.MatchLine(line + next)
				full = line + next
			}
		}
		if !ok {
			continue
		}
		if m.Body == "" {
			s.log.V(logger.TraceLevel).Info("skipping empty step body", logger.PathKey, path, logger.LineKey, i)
			continue
		}
		desc := Description(full)
		doc := desc
		if raw, found := docs[i]; found {
			doc = ParseDoc(raw)
		}
		out = append(out, Declaration{
			Path:          path,
			Line:          i,
			Column:        gherkin.UTF16Len(m.Before),
			Keyword:       m.Keyword,
			Category:      keywordCategory(m.Keyword),
			Delimiter:     m.Delimiter,
			Body:          m.Body,
			Description:   desc,
			Documentation: doc,
		})
	}
	return out
}

// Description is the declaration line cut before any implementation body
// that starts with '{'.
func Description(line string) string {
	if i := strings.IndexByte(line, '{'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

var leadingWord = regexp.MustCompile(`^\pL+`)

// keywordCategory classifies a declaration keyword ignoring case. A custom
// keyword pattern can capture more than the word, so the leading run of
// letters is tried as well.
func keywordCategory(kw string) gherkin.Category {
	if c := gherkin.ClassifyFold(kw); c != gherkin.Other {
		return c
	}
	return gherkin.ClassifyFold(leadingWord.FindString(kw))
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
