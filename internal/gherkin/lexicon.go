// Package gherkin holds the internationalized step keyword tables and the
// lookups built on them.
package gherkin

import (
	"regexp"
	"strings"
)

// Category is the semantic role of a step keyword.
type Category int

const (
	Given Category = iota
	When
	Then
	And
	But
	Other
)

var categoryNames = [...]string{"Given", "When", "Then", "And", "But", "Other"}

// String returns the English name of the category.
func (c Category) String() string {
	if c < Given || c > Other {
		return "Other"
	}
	return categoryNames[c]
}

// MarshalText renders the category by name for YAML and JSON output.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// IsPrimary reports whether c is Given, When or Then.
func (c Category) IsPrimary() bool {
	return c == Given || c == When || c == Then
}

// ParseCategory maps an English category name (any case) back to a Category.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i), true
		}
	}
	return Other, false
}

type lexicon struct {
	exact   map[string]Category
	folded  map[string]Category
	words   []string
	pattern string
}

var lex = buildLexicon()

func buildLexicon() *lexicon {
	l := &lexicon{
		exact:  make(map[string]Category),
		folded: make(map[string]Category),
	}
	tables := []struct {
		cat   Category
		words []string
	}{
		{Given, givenWords},
		{When, whenWords},
		{Then, thenWords},
		{And, andWords},
		{But, butWords},
	}
	quoted := make([]string, 0, 512)
	for _, t := range tables {
		for _, w := range t.words {
			if _, ok := l.exact[w]; !ok {
				l.exact[w] = t.cat
			}
			lw := strings.ToLower(w)
			if _, ok := l.folded[lw]; !ok {
				l.folded[lw] = t.cat
			}
			l.words = append(l.words, w)
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	for _, w := range otherWords {
		l.words = append(l.words, w)
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	l.pattern = strings.Join(quoted, "|")
	return l
}

// Classify returns the category of word, compared case-sensitively.
// Unknown words, including "*", are Other.
func Classify(word string) Category {
	if c, ok := lex.exact[word]; ok {
		return c
	}
	return Other
}

// ClassifyFold is Classify with case-insensitive comparison, used for
// keywords found in declaration files.
func ClassifyFold(word string) Category {
	if c, ok := lex.folded[strings.ToLower(word)]; ok {
		return c
	}
	return Other
}

// Words returns every recognized keyword in table order.
func Words() []string {
	out := make([]string, len(lex.words))
	copy(out, lex.words)
	return out
}

// KeywordPattern returns an alternation of every keyword, escaped for use
// inside a regular expression group.
func KeywordPattern() string {
	return lex.pattern
}
