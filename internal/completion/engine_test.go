package completion_test

import (
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/stepls/internal/completion"
	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/pattern"
	"github.com/oakwood-commons/stepls/internal/resolver"
	"github.com/oakwood-commons/stepls/internal/scanner"
	"github.com/oakwood-commons/stepls/internal/steps"
)

type fixture struct {
	registry *steps.Registry
	engine   *completion.Engine
}

func newFixture(t *testing.T, strict, smart bool, decls ...scanner.Declaration) fixture {
	t.Helper()
	sc, err := scanner.New(scanner.Options{}, nil, logr.Discard())
	require.NoError(t, err)
	c := pattern.NewCompiler(pattern.Options{Invariants: true, SmartSnippets: smart}, logr.Discard())
	reg := steps.NewRegistry(sc, c, logr.Discard())
	reg.Load(decls)
	return fixture{
		registry: reg,
		engine:   completion.NewEngine(reg, c, resolver.New(reg), completion.Options{Strict: strict}),
	}
}

func labels(cands []completion.Candidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Label
	}
	return out
}

var basicSteps = []scanner.Declaration{
	{Body: "^I do something$", Category: gherkin.When, Description: "this.When(/^I do something$/, function (next)"},
	{Body: "^I do another thing$", Category: gherkin.When},
	{Body: "^I say (a|b)$", Category: gherkin.When},
	{Body: "I have a {int} in my belly", Category: gherkin.Given, Documentation: "fills the belly"},
}

func TestCompleteNotAStepLine(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)
	doc := resolver.NewDocument("Feature: x")
	assert.Nil(t, f.engine.Complete("Feature: x", 0, 10, doc))
}

func TestCompleteEmptyButApplicable(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)
	line := "When nobody matches "
	got := f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCompleteFiltersByTypedPrefix(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)

	line := " When I do"
	got := f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	assert.Len(t, got, 5, "only \"I \" is committed")

	line = " When I do "
	got = f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	assert.ElementsMatch(t, []string{"I do something", "I do another thing"}, labels(got))

	line = " When I do another th"
	got = f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	require.Len(t, got, 1)
	assert.Equal(t, "I do another thing", got[0].Label)
	assert.Equal(t, "thing", got[0].InsertText)
}

func TestCompleteAlternationInvariants(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)
	line := " When I say "
	got := f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	require.Len(t, got, 2)
	inserts := map[string]string{}
	for _, c := range got {
		inserts[c.Label] = c.InsertText
	}
	assert.Equal(t, map[string]string{"I say a": "a", "I say b": "b"}, inserts)
}

func TestCompleteCursorTruncates(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)
	line := "When I say something else entirely"
	got := f.engine.Complete(line, 0, len("When I say "), resolver.NewDocument(line))
	assert.Len(t, got, 2)
}

func TestCompleteCandidateFields(t *testing.T) {
	f := newFixture(t, false, true, basicSteps...)
	line := "Given I have "
	got := f.engine.Complete(line, 0, len(line), resolver.NewDocument(line))
	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, steps.StepID("I have a {int} in my belly"), c.ID)
	assert.Equal(t, "a ${1:} in my belly", c.InsertText)
	assert.Equal(t, "ZZZZZ_I have a {int} in my belly", c.SortText)
	assert.Equal(t, "fills the belly", c.Documentation)
	assert.Equal(t, gherkin.Given, c.Category)
}

func TestCompleteRanksByUsage(t *testing.T) {
	f := newFixture(t, false, false, basicSteps...)
	line := "When I do "
	doc := resolver.NewDocument(line)

	before := f.engine.Complete(line, 0, len(line), doc)
	require.Len(t, before, 2)
	assert.Equal(t, "I do another thing", before[0].Label, "ties order by label")

	f.registry.IncrementUsage(steps.StepID("I do something"))
	after := f.engine.Complete(line, 0, len(line), doc)
	require.Len(t, after, 2)
	assert.Equal(t, "I do something", after[0].Label)
	assert.Equal(t, 1, after[0].Usage)
	assert.Equal(t, "ZZZZY_I do something", after[0].SortText)
}

func TestCompleteStrict(t *testing.T) {
	decls := []scanner.Declaration{
		{Body: "I do X", Category: gherkin.Given},
		{Body: "I do Y", Category: gherkin.Given},
		{Body: "I do Z", Category: gherkin.When},
	}
	text := "Given I do X\n\nAnd I do "
	doc := resolver.NewDocument(text)
	line := doc.Line(2)

	strict := newFixture(t, true, false, decls...)
	got := strict.engine.Complete(line, 2, len(line), doc)
	assert.ElementsMatch(t, []string{"I do X", "I do Y"}, labels(got))

	loose := newFixture(t, false, false, decls...)
	got = loose.engine.Complete(line, 2, len(line), doc)
	assert.Len(t, got, 3)
}

func TestTyped(t *testing.T) {
	assert.Equal(t, "I do ", completion.Typed("I do ano"))
	assert.Equal(t, "I do ", completion.Typed("I do "))
	assert.Equal(t, "", completion.Typed("I"))
}

func TestSortPrefix(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "ZZZZZ"},
		{1, "ZZZZY"},
		{25, "ZZZZA"},
		{26, "ZZZYZ"},
		{676, "ZZYZZ"},
		{727, "ZZYYA"},
		{26*26*26*26*26 - 1, "AAAAA"},
		{26 * 26 * 26 * 26 * 26, "AAAAA"},
		{-3, "ZZZZZ"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, completion.SortPrefix(tt.count, completion.SortWidth), "count %d", tt.count)
	}
	assert.Less(t, completion.SortPrefix(10, 5), completion.SortPrefix(9, 5))
}
