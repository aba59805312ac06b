// Package completion produces ranked step completions for a cursor position
// in a scenario document.
package completion

import (
	"regexp"
	"sort"

	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/pattern"
	"github.com/oakwood-commons/stepls/internal/resolver"
	"github.com/oakwood-commons/stepls/internal/steps"
)

// Source supplies the registered steps to complete from.
type Source interface {
	GetAll() []steps.Record
}

// Candidate is one completion suggestion.
type Candidate struct {
	ID            string // Step id, echoed back when the candidate is accepted
	Label         string // Step label shown in the list
	InsertText    string // Text to insert; may hold ${n:} placeholders
	SortText      string // Usage rank key followed by the label
	Detail        string // Declaration line the step came from
	Documentation string // Doc comment, or the declaration line
	Category      gherkin.Category
	Usage         int
}

// Options configures an Engine.
type Options struct {
	// Strict offers only steps declared under the line's effective category.
	Strict bool
}

// Engine answers completion requests.
type Engine struct {
	steps    Source
	compiler *pattern.Compiler
	resolver *resolver.Resolver
	opts     Options
}

// NewEngine creates a completion engine.
func NewEngine(src Source, c *pattern.Compiler, r *resolver.Resolver, opts Options) *Engine {
	return &Engine{
		steps:    src,
		compiler: c,
		resolver: r,
		opts:     opts,
	}
}

var lastWordRe = regexp.MustCompile(`[^\s]+$`)

// Typed returns the step text the author has committed to: the text up to
// the cursor with the word under construction removed.
func Typed(stepText string) string {
	return lastWordRe.ReplaceAllString(stepText, "")
}

// Complete returns the candidates for line n of doc with the cursor at the
// UTF-16 column col. It returns nil when the line is not a step line and a
// non-nil, possibly empty, slice otherwise.
func (e *Engine) Complete(line string, n, col int, doc *resolver.Document) []Candidate {
	res := e.resolver.Resolve(line[:gherkin.ByteOffset(line, col)], n, doc)
	if !res.IsStepLine {
		return nil
	}
	typed := Typed(res.StepText)

	var cat gherkin.Category
	if e.opts.Strict {
		cat = resolver.EffectiveCategory(res, n, doc)
	}

	out := make([]Candidate, 0)
	for _, rec := range e.steps.GetAll() {
		if e.opts.Strict && rec.Category != cat {
			continue
		}
		if !rec.Partial.MatchString(typed) {
			continue
		}
		out = append(out, Candidate{
			ID:            rec.ID,
			Label:         rec.Label,
			InsertText:    e.compiler.InsertText(rec.Label, typed),
			SortText:      SortPrefix(rec.Usage, SortWidth) + "_" + rec.Label,
			Detail:        rec.Description,
			Documentation: rec.Documentation,
			Category:      rec.Category,
			Usage:         rec.Usage,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortText < out[j].SortText
	})
	return out
}
