package pattern

import (
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single match against a step regex.
const MatchTimeout = 250 * time.Millisecond

// Matcher is a compiled step regex. Step bodies are JavaScript regexes, so
// matchers are compiled in ECMAScript mode: lookarounds, backreferences and
// \uXXXX escapes behave as they do in the declaration file.
type Matcher struct {
	re *regexp2.Regexp
}

// CompileMatcher compiles expr as an ECMAScript regex.
func CompileMatcher(expr string) (*Matcher, error) {
	re, err := regexp2.Compile(expr, regexp2.ECMAScript)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = MatchTimeout
	return &Matcher{re: re}, nil
}

// MustCompileMatcher is like CompileMatcher but panics if expr does not
// compile.
func MustCompileMatcher(expr string) *Matcher {
	m, err := CompileMatcher(expr)
	if err != nil {
		panic(`pattern: CompileMatcher(` + expr + `): ` + err.Error())
	}
	return m
}

// QuoteMatcher returns expr with every metacharacter escaped.
func QuoteMatcher(expr string) string {
	return regexp2.Escape(expr)
}

// MatchString reports whether s contains a match. A match that runs past
// MatchTimeout counts as no match.
func (m *Matcher) MatchString(s string) bool {
	ok, err := m.re.MatchString(s)
	return err == nil && ok
}

// String returns the source text of the matcher.
func (m *Matcher) String() string {
	return m.re.String()
}
