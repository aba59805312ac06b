// Package resolver works out what a scenario line refers to: whether it is
// a step line, its text after outline substitution, its effective keyword
// category, and the registered step it matches.
package resolver

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/steps"
)

// Lookup finds registered steps by full match.
type Lookup interface {
	Find(text string) (steps.Record, bool)
	FindCategory(text string, cat gherkin.Category) (steps.Record, bool)
}

// ResolvedLine describes one scenario line. Leading is the byte length of
// the indentation; LeadingUTF16 is the same in editor columns.
type ResolvedLine struct {
	IsStepLine   bool
	Leading      int
	LeadingUTF16 int
	Keyword      string
	Category     gherkin.Category
	StepText     string
}

var (
	stepLineRe    = regexp.MustCompile(`^(\s*)(` + gherkin.KeywordPattern() + `)(\s+)(.*)`)
	placeholderRe = regexp.MustCompile(`<.*?>`)
)

// ParseLine matches line against the keyword lexicon, case-sensitively.
// No outline substitution is done.
func ParseLine(line string) ResolvedLine {
	m := stepLineRe.FindStringSubmatch(line)
	if m == nil {
		return ResolvedLine{}
	}
	return ResolvedLine{
		IsStepLine:   true,
		Leading:      len(m[1]),
		LeadingUTF16: gherkin.UTF16Len(m[1]),
		Keyword:      m[2],
		Category:     gherkin.Classify(m[2]),
		StepText:     m[4],
	}
}

// Resolver resolves lines against a step lookup.
type Resolver struct {
	steps Lookup
}

// New returns a Resolver backed by lookup.
func New(lookup Lookup) *Resolver {
	return &Resolver{steps: lookup}
}

// Resolve parses line n of doc and substitutes outline placeholders. Two
// substitutions are tried: raw values and values wrapped in double quotes.
// The quoted one is used only when it matches a registered step.
func (r *Resolver) Resolve(line string, n int, doc *Document) ResolvedLine {
	res := ParseLine(line)
	if !res.IsStepLine || !placeholderRe.MatchString(res.StepText) {
		return res
	}
	vars := OutlineVars(doc, n)
	if len(vars) == 0 {
		return res
	}
	pure, quoted := res.StepText, res.StepText
	for _, ph := range placeholderRe.FindAllString(res.StepText, -1) {
		val, ok := vars[strings.Trim(ph, "<>")]
		if !ok {
			continue
		}
		pure = strings.Replace(pure, ph, val, 1)
		quoted = strings.Replace(quoted, ph, `"`+val+`"`, 1)
	}
	if _, ok := r.steps.Find(quoted); ok && quoted != pure {
		res.StepText = quoted
	} else {
		res.StepText = pure
	}
	return res
}

// EffectiveCategory returns the category a line should be matched under in
// strict mode. Given, When and Then lines keep their own. And, But and *
// lines take the category of the nearest Given, When or Then line above;
// without one they are Other.
func EffectiveCategory(res ResolvedLine, n int, doc *Document) gherkin.Category {
	if c := gherkin.ClassifyFold(res.Keyword); c.IsPrimary() {
		return c
	}
	for i := n - 1; i >= 0; i-- {
		prev := ParseLine(doc.Line(i))
		if !prev.IsStepLine {
			continue
		}
		if c := gherkin.ClassifyFold(prev.Keyword); c.IsPrimary() {
			return c
		}
	}
	return gherkin.Other
}

// Match resolves line n and looks its step text up. With strict set only
// steps declared under the line's effective category are considered.
func (r *Resolver) Match(line string, n int, doc *Document, strict bool) (steps.Record, ResolvedLine, bool) {
	res := r.Resolve(line, n, doc)
	if !res.IsStepLine {
		return steps.Record{}, res, false
	}
	var (
		rec steps.Record
		ok  bool
	)
	if strict {
		rec, ok = r.steps.FindCategory(res.StepText, EffectiveCategory(res, n, doc))
	} else {
		rec, ok = r.steps.Find(res.StepText)
	}
	return rec, res, ok
}

// DocumentUsage returns the id of the step each step line of text matches,
// one entry per matching line. It feeds usage recomputation.
func (r *Resolver) DocumentUsage(text string) []string {
	doc := NewDocument(text)
	var ids []string
	for i, line := range doc.Lines() {
		if rec, _, ok := r.Match(strings.TrimRightFunc(line, unicode.IsSpace), i, doc, false); ok {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}
