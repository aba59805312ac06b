package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/oakwood-commons/stepls/internal/formatter"
	"github.com/oakwood-commons/stepls/internal/gherkin"
	"github.com/oakwood-commons/stepls/internal/resolver"
	"github.com/oakwood-commons/stepls/pkg/core"
)

var lookupOutput string

var completeCmd = &cobra.Command{
	Use:   "complete <feature file> <line> [column]",
	Short: "Show the completions offered at a position of a feature file",
	Long: `Show the completion items the language server would offer at a position.
Line and column are 1-based; the column counts UTF-16 code units like editors
do and defaults to the end of the line.`,
	Example: "\n  stepls complete features/belly.feature 3\n  stepls complete features/belly.feature 3 12 -o json\n",
	Args:    cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		line, err := lineArg(args[1], text)
		if err != nil {
			return err
		}
		col := gherkin.UTF16Len(line.text)
		if len(args) == 3 {
			c, err := strconv.Atoi(args[2])
			if err != nil || c < 1 {
				return fmt.Errorf("invalid column %q", args[2])
			}
			col = min(c-1, col)
		}

		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		items := eng.GetCompletion(line.text, protocol.Position{Line: uint32(line.n), Character: uint32(col)}, text)
		return printCompletions(cmd.OutOrStdout(), items, runSettings(cmd).NoColor)
	},
}

var definitionCmd = &cobra.Command{
	Use:     "definition <feature file> <line>",
	Short:   "Show the step definition used on a line of a feature file",
	Example: "\n  stepls definition features/belly.feature 3\n",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, text, err := readDocument(args[0])
		if err != nil {
			return err
		}
		line, err := lineArg(args[1], text)
		if err != nil {
			return err
		}
		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		loc := eng.GetDefinition(line.text, line.n, text)
		if loc == nil {
			return fmt.Errorf("no step definition found for line %d", line.n+1)
		}
		for _, rec := range eng.Steps() {
			if core.Location(rec) != *loc {
				continue
			}
			return printDefinition(cmd.OutOrStdout(), rec, eng.Root(), runSettings(cmd).NoColor)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s:%d:%d\n", uri.URI(loc.URI).Filename(), loc.Range.Start.Line+1, loc.Range.Start.Character+1)
		return err
	},
}

type docLine struct {
	n    int
	text string
}

// lineArg resolves a 1-based line number argument against text.
func lineArg(arg, text string) (docLine, error) {
	n, err := strconv.Atoi(arg)
	doc := resolver.NewDocument(text)
	if err != nil || n < 1 || n > doc.Len() {
		return docLine{}, fmt.Errorf("invalid line %q (document has %d lines)", arg, doc.Len())
	}
	return docLine{n: n - 1, text: doc.Line(n - 1)}, nil
}

func printCompletions(w io.Writer, items []protocol.CompletionItem, plain bool) error {
	if lookupOutput == "json" {
		if items == nil {
			items = []protocol.CompletionItem{}
		}
		text, err := formatter.FormatJSON(items)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	}
	if items == nil {
		_, err := io.WriteString(w, "not a step line\n")
		return err
	}
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{it.Label, it.InsertText, it.SortText})
	}
	text := formatter.RenderColumnarTable([]string{"LABEL", "INSERT", "SORT"}, rows, formatter.ColumnarOptions{
		NoColor:     plain,
		ColumnHints: map[string]formatter.ColumnHint{"LABEL": {Priority: 2}, "INSERT": {Priority: 1}},
	})
	if text == "" {
		text = "no completions\n"
	}
	_, err := io.WriteString(w, text)
	return err
}

func printDefinition(w io.Writer, rec core.Record, root string, plain bool) error {
	var (
		text string
		err  error
	)
	switch lookupOutput {
	case "json":
		text, err = formatter.FormatJSON(rec)
	case "yaml":
		text, err = formatter.FormatYAML(rec, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
	default:
		text = formatter.RenderStep(rec, formatter.StepOptions{Root: root, NoColor: plain})
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

//nolint:gochecknoinits // cobra command wiring
func init() {
	completeCmd.Flags().StringVarP(&lookupOutput, "output", "o", "table", "output format: table|json")
	definitionCmd.Flags().StringVarP(&lookupOutput, "output", "o", "table", "output format: table|yaml|json")
}
