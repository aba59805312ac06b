package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/stepls/internal/cel"
	"github.com/oakwood-commons/stepls/internal/formatter"
	"github.com/oakwood-commons/stepls/internal/limiter"
	"github.com/oakwood-commons/stepls/internal/steps"
)

// Output formats accepted by `stepls steps -o`.
var stepsOutputs = []string{"table", "list", "tree", "mermaid", "yaml", "json", "markdown", "html"}

var (
	stepsOutput    string
	stepsWhere     string
	stepsEval      string
	stepsSort      string
	stepsHide      []string
	stepsWidth     int
	limitRecords   int
	offsetRecords  int
	tailRecords    int
	mermaidDirFlag string
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the registered steps",
	Long: `List every step declared by the configured steps globs.

--where filters with a CEL expression over "step", whose fields are id, label,
body, regex, description, documentation, path, line, column, keyword, category
and usage. --eval evaluates a CEL expression over "_", the list of all steps,
and prints the result.`,
	Example: "\n  stepls steps --where 'step.category == \"Given\"'\n  stepls steps --where 'step.label.contains(\"belly\")' -o json\n  stepls steps --eval '_.filter(s, s.usage == 0).map(s, s.label)'\n  stepls steps --sort usage --limit 10\n  stepls steps -o html > steps.html\n",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		lim := limiter.Config{Limit: limitRecords, Offset: offsetRecords, Tail: tailRecords}
		if err := lim.Validate(); err != nil {
			return err
		}
		if !validOutput(stepsOutput) {
			return fmt.Errorf("invalid output %q (expected %s)", stepsOutput, strings.Join(stepsOutputs, "|"))
		}

		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		recs := eng.Steps()

		if stepsWhere != "" {
			f, err := cel.NewStepFilter(stepsWhere)
			if err != nil {
				return fmt.Errorf("--where: %w", err)
			}
			if recs, err = f.Apply(recs); err != nil {
				return fmt.Errorf("--where: %w", err)
			}
		}
		if err := sortRecords(recs, stepsSort); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if stepsEval != "" {
			return printEval(out, stepsEval, recs)
		}

		total := len(recs)
		recs = limiter.Apply(lim, recs)
		if err := printSteps(out, recs, eng.Root(), runSettings(cmd).NoColor); err != nil {
			return err
		}
		if summary := lim.Summary(total); summary != "" && (stepsOutput == "table" || stepsOutput == "list") {
			fmt.Fprintln(cmd.ErrOrStderr(), summary)
		}
		return nil
	},
}

func validOutput(o string) bool {
	for _, v := range stepsOutputs {
		if o == v {
			return true
		}
	}
	return false
}

func sortRecords(recs []steps.Record, order string) error {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "", "declaration":
	case "usage":
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Usage > recs[j].Usage })
	case "label":
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].Label < recs[j].Label })
	default:
		return fmt.Errorf("invalid sort order %q (expected declaration, usage, or label)", order)
	}
	return nil
}

func printEval(w io.Writer, expr string, recs []steps.Record) error {
	ev, err := cel.NewEvaluator()
	if err != nil {
		return err
	}
	result, err := ev.Evaluate(expr, cel.Records(recs))
	if err != nil {
		return fmt.Errorf("--eval: %w", err)
	}
	var text string
	if stepsOutput == "json" {
		text, err = formatter.FormatJSON(result)
	} else {
		text, err = formatter.FormatYAML(result, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

func printSteps(w io.Writer, recs []steps.Record, root string, plain bool) error {
	var (
		text string
		err  error
	)
	switch stepsOutput {
	case "yaml":
		text, err = formatter.FormatYAML(recs, formatter.YAMLFormatOptions{LiteralBlockStrings: true})
	case "json":
		if recs == nil {
			recs = []steps.Record{}
		}
		text, err = formatter.FormatJSON(recs)
	case "markdown":
		text = formatter.RenderCatalogueMarkdown(recs, formatter.CatalogueOptions{Root: root})
	case "html":
		text = string(formatter.RenderCatalogueHTML(recs, formatter.CatalogueOptions{Root: root}))
	case "tree":
		text = formatter.FormatStepsTree(recs, formatter.TreeOptions{Root: root})
	case "mermaid":
		text = formatter.FormatStepsMermaid(recs, formatter.MermaidOptions{Root: root, Direction: mermaidDirFlag})
	case "list":
		text = formatter.FormatStepsList(recs, formatter.ListOptions{Root: root, NoColor: plain})
	default:
		text = formatter.RenderSteps(recs, formatter.StepOptions{
			Root:          root,
			NoColor:       plain,
			TotalWidth:    stepsWidth,
			HiddenColumns: stepsHide,
		})
		if text == "" {
			text = "no steps found\n"
		}
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}

//nolint:gochecknoinits // cobra command wiring
func init() {
	stepsCmd.Flags().StringVarP(&stepsOutput, "output", "o", "table", "output format: "+strings.Join(stepsOutputs, "|"))
	stepsCmd.Flags().StringVarP(&stepsWhere, "where", "w", "", "CEL filter over 'step', e.g. 'step.usage > 0'")
	stepsCmd.Flags().StringVarP(&stepsEval, "eval", "e", "", "CEL expression over '_', the list of steps; prints the result as YAML (or JSON with -o json)")
	stepsCmd.Flags().StringVar(&stepsSort, "sort", "declaration", "order: declaration|usage|label")
	stepsCmd.Flags().StringSliceVar(&stepsHide, "hide", nil, "table columns to hide, e.g. --hide regex,location")
	stepsCmd.Flags().IntVar(&stepsWidth, "width", 0, "table width in columns (default: terminal width)")
	stepsCmd.Flags().IntVar(&limitRecords, "limit", 0, "Limit total number of steps displayed")
	stepsCmd.Flags().IntVar(&offsetRecords, "offset", 0, "Skip the first N steps")
	stepsCmd.Flags().IntVar(&tailRecords, "tail", 0, "Show the last N steps (mutually exclusive with --limit; ignores --offset)")
	stepsCmd.Flags().StringVar(&mermaidDirFlag, "mermaid-direction", "LR", "Mermaid diagram direction: TD, LR, BT, RL")
}
