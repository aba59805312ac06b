package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/internal/formatter"
	"github.com/oakwood-commons/stepls/internal/scanner"
)

// errProblems is returned when validation found problems. The diagnostics
// have already been printed.
var errProblems = errors.New("validation failed")

var validateCmd = &cobra.Command{
	Use:   "validate [feature files...]",
	Short: "Check that every step in the given feature files has a definition",
	Long: `Check every step line of the given feature files against the registered steps
and print one warning per line that matches none. Without arguments every
file matching the syncFeatures glob, or **/*.feature, under the root is
checked.`,
	Example: "\n  stepls validate features/belly.feature\n  stepls validate --root ./e2e\n",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			glob := eng.Config().FeatureGlob()
			if glob == "" {
				glob = config.DefaultFeatureGlob
			}
			if args, err = scanner.ExpandGlob(eng.Root(), glob); err != nil {
				return err
			}
		}

		run := runSettings(cmd)
		out := cmd.OutOrStdout()
		problems := 0
		for _, path := range args {
			abs, text, err := readDocument(path)
			if err != nil {
				return err
			}
			diags := eng.ValidateDocument(text)
			problems += len(diags)
			fmt.Fprint(out, formatter.RenderDiagnostics(displayPath(abs), diags, run.NoColor))
		}
		if problems > 0 {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d undefined step(s) in %d file(s)\n", problems, len(args))
			return errProblems
		}
		if !run.IsQuiet {
			fmt.Fprintf(out, "%d file(s) checked, all steps defined\n", len(args))
		}
		return nil
	},
}

// displayPath shortens abs relative to the working directory when it is
// below it.
func displayPath(abs string) string {
	wd, err := filepath.Abs(".")
	if err != nil {
		return abs
	}
	if rel, err := filepath.Rel(wd, abs); err == nil && filepath.IsLocal(rel) {
		return rel
	}
	return abs
}
