package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const cliSteps = `/**
 * Fills the belly.
 */
Given('I have a {int} in my belly', function (n) {});

When(/^I say (a|b)$/, function () {});
`

const cliFeature = `Feature: belly
  Scenario: cukes
    Given I have a 3 in my belly
    When I say a
    When I say
    Then I shout
`

func writeWorkspace(t *testing.T, cfg string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"steps/belly.steps.js":   cliSteps,
		"features/belly.feature": cliFeature,
		".stepls.yaml":           cfg,
	}
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
	}
	return root
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCLI executes the command line and returns stdout, stderr and the error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "stepls "), out)
}

func TestStepsTable(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\nsyncFeatures: true\n")
	out, _, err := runCLI(t, "steps", "--root", root, "--no-color", "--width", "200")
	require.NoError(t, err)
	for _, want := range []string{"LABEL", "I have a {int} in my belly", "I say a", "I say b", "steps/belly.steps.js:4"} {
		assert.Contains(t, out, want)
	}
}

func TestStepsWhereAndJSON(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\nsyncFeatures: true\n")
	out, _, err := runCLI(t, "steps", "--root", root, "--where", `step.category == "When" && step.usage > 0`, "-o", "json")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "I say a", got[0]["label"])
	assert.Equal(t, "When", got[0]["category"])
	assert.EqualValues(t, 1, got[0]["usage"])
}

func TestStepsNoMatchesIsEmptyJSONList(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	out, _, err := runCLI(t, "steps", "--root", root, "--where", "false", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestStepsEval(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	out, _, err := runCLI(t, "steps", "--root", root, "--eval", "_.map(s, s.label)", "-o", "json")
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"I have a {int} in my belly", "I say a", "I say b"}, got)
}

func TestStepsLimitAndSort(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\nsyncFeatures: true\n")
	out, stderr, err := runCLI(t, "steps", "--root", root, "--sort", "label", "--limit", "1", "-o", "list", "--no-color")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "1. I have a {int} in my belly\n"), out)
	assert.NotContains(t, out, "I say")
	assert.Contains(t, stderr, "showing 1-1 of 3")

	_, _, err = runCLI(t, "steps", "--root", root, "--limit", "1", "--tail", "1")
	assert.Error(t, err)
	_, _, err = runCLI(t, "steps", "--root", root, "--sort", "sideways")
	assert.Error(t, err)
	_, _, err = runCLI(t, "steps", "--root", root, "-o", "csv")
	assert.Error(t, err)
}

func TestStepsDocumentFormats(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")

	out, _, err := runCLI(t, "steps", "--root", root, "-o", "yaml")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "Fills the belly.", recs[0]["documentation"])

	out, _, err = runCLI(t, "steps", "--root", root, "-o", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "## Given")

	out, _, err = runCLI(t, "steps", "--root", root, "-o", "html")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")

	out, _, err = runCLI(t, "steps", "--root", root, "-o", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "steps/belly.steps.js")

	out, _, err = runCLI(t, "steps", "--root", root, "-o", "mermaid")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"), out)
}

func TestValidate(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	feature := filepath.Join(root, "features", "belly.feature")

	out, stderr, err := runCLI(t, "validate", "--root", root, "--no-color", feature)
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, out, `:5:5: warning: Was unable to find step for "When I say"`)
	assert.Contains(t, out, `:6:5: warning: Was unable to find step for "Then I shout"`)
	assert.Contains(t, stderr, "2 undefined step(s) in 1 file(s)")

	// without arguments the feature glob is used
	out, _, err = runCLI(t, "validate", "--root", root, "--no-color")
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, out, "belly.feature")
}

func TestValidateClean(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	clean := filepath.Join(root, "clean.feature")
	require.NoError(t, os.WriteFile(clean, []byte("Feature: x\n  Scenario: y\n    When I say b\n"), 0o600))

	out, _, err := runCLI(t, "validate", "--root", root, clean)
	require.NoError(t, err)
	assert.Equal(t, "1 file(s) checked, all steps defined\n", out)

	out, _, err = runCLI(t, "validate", "--root", root, "-q", clean)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestComplete(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	feature := filepath.Join(root, "features", "belly.feature")

	out, _, err := runCLI(t, "complete", "--root", root, feature, "5", "-o", "json")
	require.NoError(t, err)
	var items []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.ElementsMatch(t, []any{"I say a", "I say b"}, []any{items[0]["label"], items[1]["label"]})

	out, _, err = runCLI(t, "complete", "--root", root, "--no-color", feature, "1")
	require.NoError(t, err)
	assert.Equal(t, "not a step line\n", out)

	_, _, err = runCLI(t, "complete", "--root", root, feature, "99")
	assert.Error(t, err)
	_, _, err = runCLI(t, "complete", "--root", root, feature, "5", "0")
	assert.Error(t, err)
}

func TestDefinition(t *testing.T) {
	root := writeWorkspace(t, "steps: steps/*.js\n")
	feature := filepath.Join(root, "features", "belly.feature")

	out, _, err := runCLI(t, "definition", "--root", root, "--no-color", feature, "3")
	require.NoError(t, err)
	assert.Contains(t, out, "I have a {int} in my belly")
	assert.Contains(t, out, "steps/belly.steps.js:4")

	out, _, err = runCLI(t, "definition", "--root", root, feature, "4", "-o", "json")
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "I say a", rec["label"])
	assert.EqualValues(t, 5, rec["line"])

	_, _, err = runCLI(t, "definition", "--root", root, feature, "6")
	assert.Error(t, err)
}

func TestConfigCommands(t *testing.T) {
	root := writeWorkspace(t, "steps:\n  - steps/*.js\n  - missing/*.js\nsmartSnippets: true\n")

	out, _, err := runCLI(t, "config", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, out, "smartSnippets: true")
	assert.Contains(t, out, "missing/*.js")

	out, _, err = runCLI(t, "config", "-o", "default")
	require.NoError(t, err)
	assert.Contains(t, out, "stepsInvariants: true")

	out, _, err = runCLI(t, "config", "validate", "--root", root, "--no-color")
	require.ErrorIs(t, err, errProblems)
	assert.Contains(t, out, ".stepls.yaml:3:5: warning: No steps files found")

	good := writeWorkspace(t, "steps: steps/*.js\n")
	out, _, err = runCLI(t, "config", "validate", "--root", good)
	require.NoError(t, err)
	assert.Equal(t, "configuration ok: 3 step(s) from 1 glob(s)\n", out)
}

func TestBadConfigIsReported(t *testing.T) {
	root := writeWorkspace(t, "steps: ['']\n")
	_, _, err := runCLI(t, "steps", "--root", root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "steps[0]")
}
