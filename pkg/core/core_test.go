package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/internal/steps"
)

const bellySteps = `Given('I have a {int} in my belly', function (n) {});

When(/^I say (a|b)$/, function () {});
`

const bellyFeature = `Feature: belly
  Scenario: cukes
    Given I have a 1 in my belly
    Given I have a 2 in my belly
    Given I have a 3 in my belly
    Given I have a -4 in my belly
    Given I have a 50 in my belly
    Given I have a 6 in my belly
    Given I have nothing in my belly
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
	return root
}

func mustConfig(t *testing.T, yaml string) *config.Config {
	t.Helper()
	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	return cfg
}

func newBellyEngine(t *testing.T, yaml string) *Engine {
	t.Helper()
	root := writeTree(t, map[string]string{
		"steps/belly.steps.js":   bellySteps,
		"features/belly.feature": bellyFeature,
	})
	e, err := New(root, WithConfig(mustConfig(t, yaml)))
	require.NoError(t, err)
	return e
}

func labels(items []protocol.CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestBellyScenario(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\nsyncFeatures: true\n")
	require.Len(t, e.Steps(), 3)
	assert.Equal(t, 6, e.UsageCount(steps.StepID("I have a {int} in my belly")))

	d := e.ValidateLine("    Given I have nothing in my belly", 8, bellyFeature)
	require.NotNil(t, d)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, d.Severity)
	assert.Equal(t, DiagnosticSource, d.Source)
	assert.Equal(t, `Was unable to find step for "Given I have nothing in my belly"`, d.Message)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 8, Character: 4},
		End:   protocol.Position{Line: 8, Character: 36},
	}, d.Range)

	assert.Nil(t, e.ValidateLine("    Given I have a 3 in my belly", 4, bellyFeature))
	assert.Nil(t, e.ValidateLine("  Scenario: cukes", 1, bellyFeature))
}

func TestValidateDocument(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	diags := e.ValidateDocument(bellyFeature)
	require.Len(t, diags, 1)
	assert.Equal(t, uint32(8), diags[0].Range.Start.Line)

	assert.NotNil(t, e.ValidateDocument("Feature: nothing here"))
	assert.Empty(t, e.ValidateDocument("Feature: nothing here"))
}

func TestValidateLineTrimsTrailingSpace(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	d := e.ValidateLine("\tWhen I shout  \t", 0, "\tWhen I shout  \t")
	require.NotNil(t, d)
	assert.Equal(t, uint32(1), d.Range.Start.Character)
	assert.Equal(t, uint32(13), d.Range.End.Character)
	assert.Equal(t, `Was unable to find step for "When I shout"`, d.Message)
}

func TestStrictValidation(t *testing.T) {
	root := writeTree(t, map[string]string{"steps/s.js": `
Given('I do X', () => {});
When('I do Z', () => {});
`})
	doc := "Given I do X\n\nAnd I do Z"

	loose, err := New(root, WithConfig(mustConfig(t, "steps: steps/*.js\n")))
	require.NoError(t, err)
	assert.Nil(t, loose.ValidateLine("And I do Z", 2, doc))

	strict, err := New(root, WithConfig(mustConfig(t, "steps: steps/*.js\nstrictGherkinValidation: true\n")))
	require.NoError(t, err)
	assert.NotNil(t, strict.ValidateLine("And I do Z", 2, doc))
	assert.Nil(t, strict.ValidateLine("And I do X", 2, doc))
}

func TestGetDefinition(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	loc := e.GetDefinition("    When I say b", 0, "    When I say b")
	require.NotNil(t, loc)
	assert.Equal(t, protocol.DocumentURI(uri.File(filepath.Join(e.Root(), "steps", "belly.steps.js"))), loc.URI)
	assert.Equal(t, uint32(2), loc.Range.Start.Line)
	assert.Equal(t, uint32(0), loc.Range.Start.Character)

	assert.Nil(t, e.GetDefinition("When I whisper", 0, "When I whisper"))
	assert.Nil(t, e.GetDefinition("Feature: x", 0, "Feature: x"))
}

func TestGetCompletionAlternation(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	line := " When I say "
	items := e.GetCompletion(line, protocol.Position{Line: 0, Character: uint32(len(line))}, line)
	require.Len(t, items, 2)

	inserts := map[string]string{}
	for _, it := range items {
		inserts[it.Label] = it.InsertText
		assert.Equal(t, protocol.CompletionItemKindSnippet, it.Kind)
		assert.Equal(t, protocol.InsertTextFormatSnippet, it.InsertTextFormat)
		assert.Equal(t, steps.StepID(it.Label), it.Data)
		assert.NotEmpty(t, it.Documentation)
	}
	assert.Equal(t, map[string]string{"I say a": "a", "I say b": "b"}, inserts)

	assert.Nil(t, e.GetCompletion("Feature: x", protocol.Position{Character: 10}, "Feature: x"))
}

func TestResolveCompletionRanksAcceptedStep(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	line := "When I say "
	pos := protocol.Position{Character: uint32(len(line))}

	before := e.GetCompletion(line, pos, line)
	require.Equal(t, []string{"I say a", "I say b"}, labels(before))

	accepted := e.ResolveCompletion(before[1])
	assert.Equal(t, before[1], accepted)
	assert.Equal(t, 1, e.UsageCount(steps.StepID("I say b")))

	after := e.GetCompletion(line, pos, line)
	assert.Equal(t, []string{"I say b", "I say a"}, labels(after))

	// items without a step id are returned untouched
	e.ResolveCompletion(protocol.CompletionItem{Label: "x"})
}

func TestSetConfigKeepsUsage(t *testing.T) {
	e := newBellyEngine(t, "steps: steps/*.js\n")
	id := steps.StepID("I say a")
	e.registry.IncrementUsage(id)

	require.NoError(t, e.SetConfig(mustConfig(t, "steps: steps/*.js\nstepsInvariants: false\n")))
	assert.Equal(t, 1, e.UsageCount(id))
	assert.Len(t, e.Steps(), 2)
	assert.False(t, e.Config().StepsInvariants)

	bad := mustConfig(t, "steps: steps/*.js\n")
	bad.GherkinDefinitionPart = "(unclosed"
	assert.ErrorIs(t, e.SetConfig(bad), config.ErrInvalidConfig)
	assert.False(t, e.Config().StepsInvariants, "a rejected config leaves the active one in place")
}

func TestValidateConfiguration(t *testing.T) {
	e := newBellyEngine(t, "steps:\n  - steps/*.js\n  - missing/*.js\n")
	diags := e.ValidateConfiguration()
	require.Len(t, diags, 1)
	assert.Equal(t, "No steps files found", diags[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, diags[0].Severity)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 2, Character: 4},
		End:   protocol.Position{Line: 2, Character: 16},
	}, diags[0].Range)
}

func TestNewReportsBadGlobs(t *testing.T) {
	root := writeTree(t, map[string]string{"steps/belly.steps.js": bellySteps})
	cfg := mustConfig(t, "steps: steps/*.js\n")
	cfg.Steps = append(cfg.Steps, "steps/[")
	e, err := New(root, WithConfig(cfg))
	assert.Error(t, err)
	require.NotNil(t, e)
	assert.Len(t, e.Steps(), 3)
}

const regexSteps = `Given(/^I (?!hate )like (\w+)$/, function (fruit) {});
Then(/^I see "(\w)" and "\1"$/, function () {});
When(/^the caf\u00e9 opens$/, function () {});
When(/^I say (a|b)? now$/, function () {});
`

const regexFeature = `Feature: regex
  Scenario: javascript syntax
    Given I like apples
    Then I see "a" and "a"
    When the café opens
    When I say now
    Given I hate like apples
`

func TestJavaScriptRegexSteps(t *testing.T) {
	root := writeTree(t, map[string]string{"steps/regex.steps.js": regexSteps})
	e, err := New(root, WithConfig(mustConfig(t, "steps: steps/*.js\n")))
	require.NoError(t, err)

	var got []string
	for _, rec := range e.Steps() {
		got = append(got, rec.Label)
	}
	assert.ElementsMatch(t, []string{
		`I (?!hate )like (w+)`,
		`I see "(w)" and "1"`,
		"the café opens",
		"I say a now",
		"I say b now",
		"I say now",
	}, got)

	diags := e.ValidateDocument(regexFeature)
	require.Len(t, diags, 1)
	assert.Equal(t, uint32(6), diags[0].Range.Start.Line)
	assert.Equal(t, `Was unable to find step for "Given I hate like apples"`, diags[0].Message)
}
