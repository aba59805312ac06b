package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/stepls/internal/gherkin"
)

func newTestScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	s, err := New(opts, nil, logr.Discard())
	require.NoError(t, err)
	return s
}

func bodies(decls []Declaration) []string {
	out := make([]string, len(decls))
	for i, d := range decls {
		out[i] = d.Body
	}
	return out
}

func TestMatchLine(t *testing.T) {
	s := newTestScanner(t, Options{})
	tests := []struct {
		name    string
		line    string
		ok      bool
		before  string
		keyword string
		delim   string
		body    string
	}{
		{"js regex", "this.When(/^I do something$/, function (next) {", true, "this.", "When", "/", "^I do something$"},
		{"single quotes", "Given('I have a {int} in my belly', () => {})", true, "", "Given", "'", "I have a {int} in my belly"},
		{"backticks", "Then(`it works`, () => {})", true, "", "Then", "`", "it works"},
		{"java annotation", `    @Given("^I have (\\d+) cukes$")`, true, "    @", "Given", `"`, `^I have (\\d+) cukes$`},
		{"escaped delimiter", `When("I see \"x\" here")`, true, "", "When", `"`, `I see \"x\" here`},
		{"lower case", "this.when(/I test lower case/, function(){})", true, "this.", "when", "/", "I test lower case"},
		{"defineStep", "defineStep('I pick {word}', fn)", true, "", "defineStep", "'", "I pick {word}"},
		{"decorator", "@when('I log in')", true, "@", "when", "'", "I log in"},
		{"keyword glued to word", "Whenever('x')", false, "", "", "", ""},
		{"no body", "this.When(", false, "", "", "", ""},
		{"unterminated", "When('never closed", false, "", "", "", ""},
		{"quote before keyword", `x = "When" + When('a')`, false, "", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := s.MatchLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.before, m.Before)
			assert.Equal(t, tt.keyword, m.Keyword)
			assert.Equal(t, tt.delim, m.Delimiter)
			assert.Equal(t, tt.body, m.Body)
		})
	}
}

func TestMatchLineCustomDelimiter(t *testing.T) {
	s := newTestScanner(t, Options{Delimiter: "|"})
	m, ok := s.MatchLine("When |I use pipes| do")
	require.True(t, ok)
	assert.Equal(t, "I use pipes", m.Body)

	_, ok = s.MatchLine("When('quotes are ignored')")
	assert.False(t, ok)
}

func TestMatchLineCustomKeywordPattern(t *testing.T) {
	s := newTestScanner(t, Options{KeywordPattern: `Given|When|Then|step`})
	m, ok := s.MatchLine("step('custom keyword')")
	require.True(t, ok)
	assert.Equal(t, "step", m.Keyword)
	assert.Equal(t, "custom keyword", m.Body)

	_, err := New(Options{KeywordPattern: "(unclosed"}, nil, logr.Discard())
	assert.Error(t, err)
}

func TestScanFileFixture(t *testing.T) {
	s := newTestScanner(t, Options{})
	decls := s.ScanFile(filepath.Join("testdata", "steps", "test.steps.js"))

	want := []string{
		"^I do something$",
		"^I do another thing$",
		"^I do something$",
		"^I say (a|b)$",
		"I do some multi-lines test",
		`^I test outline using "[0-9]*" variable$`,
		"I test lower case step definition",
	}
	if diff := cmp.Diff(want, bodies(decls)); diff != "" {
		t.Fatalf("bodies mismatch (-want +got):\n%s", diff)
	}

	first := decls[0]
	assert.Equal(t, 0, first.Line)
	assert.Equal(t, 5, first.Column)
	assert.Equal(t, gherkin.When, first.Category)
	assert.Equal(t, "this.When(/^I do something$/, function (next)", first.Description)
	assert.Equal(t, first.Description, first.Documentation)

	multi := decls[4]
	assert.Equal(t, 28, multi.Line)
	assert.Equal(t, 5, multi.Column)
	assert.Equal(t, "this.When(    /I do some multi-lines test/,", multi.Description)

	assert.Equal(t, gherkin.When, decls[6].Category)
	assert.Equal(t, "when", decls[6].Keyword)
}

func TestScanDocumentation(t *testing.T) {
	s := newTestScanner(t, Options{})
	decls := s.ScanFile(filepath.Join("testdata", "steps", "documentation.steps.js"))
	require.Len(t, decls, 4)

	got := make([]string, len(decls))
	for i, d := range decls {
		got[i] = d.Documentation
	}
	want := []string{
		"unstructured description",
		"structured description",
		"structured name",
		"Overriding description",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("documentation mismatch (-want +got):\n%s", diff)
	}
}

func TestScanOtherLanguages(t *testing.T) {
	s := newTestScanner(t, Options{})

	java := s.ScanFile(filepath.Join("testdata", "steps", "Steps.java"))
	require.Len(t, java, 2)
	assert.Equal(t, gherkin.Given, java[0].Category)
	assert.Equal(t, `I should see \"quoted\" text`, java[1].Body)
	assert.Equal(t, gherkin.Then, java[1].Category)

	ts := s.ScanFile(filepath.Join("testdata", "steps", "expressions.steps.ts"))
	require.Len(t, ts, 4)
	assert.Equal(t, "I type {string} into the box", ts[1].Body)
	assert.Equal(t, "`", ts[1].Delimiter)
	assert.Equal(t, "defineStep", ts[3].Keyword)
	assert.Equal(t, gherkin.Other, ts[3].Category)
	assert.Equal(t, "defineStep('I pick", ts[3].Description)
}

func TestScanTextMissingFileIsEmpty(t *testing.T) {
	s := newTestScanner(t, Options{})
	assert.Empty(t, s.ScanFile(filepath.Join(t.TempDir(), "missing.js")))
}

func TestScanTextSkipsEmptyBodies(t *testing.T) {
	s := newTestScanner(t, Options{})
	assert.Empty(t, s.ScanText("x.js", "When('', fn)"))
}

func TestScanTextColumnsAreUTF16(t *testing.T) {
	s := newTestScanner(t, Options{})
	decls := s.ScanText("x.js", "/*é😀*/ When('x')\nsomeé😀.When('y')")
	require.Len(t, decls, 2)
	assert.Equal(t, 8, decls[0].Column)
	assert.Equal(t, 8, decls[1].Column)
}

func TestScanTextWithProvider(t *testing.T) {
	files := MapProvider{"mem.js": "When('from memory')"}
	s, err := New(Options{}, files, logr.Discard())
	require.NoError(t, err)
	decls := s.ScanFile("mem.js")
	require.Len(t, decls, 1)
	assert.Equal(t, "from memory", decls[0].Body)
}

func TestClearComments(t *testing.T) {
	in := "a\n/* one\ntwo */b\n  // line\n# hash\n#{interp} When('x')\nc"
	want := "a\n      \n      b\n\n\n#{interp} When('x')\nc"
	assert.Equal(t, want, clearComments(in))
}

func TestDocComments(t *testing.T) {
	text := "/**\n * doc\n */\nWhen('a')\n/* single */\nWhen('b')\nWhen('c')"
	docs := docComments(text)
	assert.Equal(t, "/**\n * doc\n */\n", docs[3])
	assert.Equal(t, "/* single */\n", docs[5])
	_, ok := docs[6]
	assert.False(t, ok)
}

func TestParseDoc(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"free text", "/**\n * Logs the user in\n */", "Logs the user in"},
		{"multi line", "/**\n * first\n * second\n */", "first\nsecond"},
		{"description tag", "/**\n * @description tagged\n */", "tagged"},
		{"desc tag", "/**\n * @desc short\n */", "short"},
		{"description beats desc", "/**\n * @desc short\n * @description long\n */", "long"},
		{"free text beats tags", "/**\n * free\n * @description tagged\n */", "free"},
		{"raw fallback", "/**\n * @param x thing\n */", "/**\n * @param x thing\n */"},
		{"single line", "/* inline */", "inline"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDoc(tt.raw))
		})
	}
}

func TestDescription(t *testing.T) {
	assert.Equal(t, "this.When(/^x$/, function (next)", Description("  this.When(/^x$/, function (next) {  "))
	assert.Equal(t, "When('x')", Description("When('x')\t"))
}

func TestExpandGlobs(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"steps/a.steps.js", "steps/nested/b.steps.js", "features/x.feature"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("When('x')"), 0o600))
	}

	got, err := ExpandGlobs(root, []string{"steps/**/*.js", "./steps/a.steps.js", "missing/*.js"})
	require.NoError(t, err)
	want := []string{
		filepath.Join(root, "steps", "a.steps.js"),
		filepath.Join(root, "steps", "nested", "b.steps.js"),
	}
	assert.ElementsMatch(t, want, got)

	abs, err := ExpandGlob("", filepath.Join(root, "features", "*.feature"))
	require.NoError(t, err)
	assert.Len(t, abs, 1)

	_, err = ExpandGlobs(root, []string{"steps/[", "steps/*.js"})
	assert.Error(t, err)
}
