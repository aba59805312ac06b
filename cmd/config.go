package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/internal/formatter"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the configuration stepls uses for the workspace: the file given with
--config, else <root>/.stepls.yaml, else $XDG_CONFIG_HOME/stepls/config.yaml,
else the built-in defaults. Use -o default to print the annotated defaults as
a starting point for a new config file.`,
	Example: "\n  stepls config\n  stepls config -o default > .stepls.yaml\n  stepls config validate\n",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		if configOutput == "default" {
			_, err := out.Write(config.DefaultConfigYAML())
			return err
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Path != "" && !runSettings(cmd).IsQuiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "# from %s\n", cfg.Path)
		}
		var text string
		switch configOutput {
		case "json":
			text, err = formatter.FormatJSON(cfg)
		case "yaml", "":
			text, err = formatter.FormatYAML(cfg, formatter.YAMLFormatOptions{})
		default:
			return fmt.Errorf("invalid output %q (expected yaml, json, or default)", configOutput)
		}
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, text)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and warn about steps globs that match no file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		run := runSettings(cmd)
		out := cmd.OutOrStdout()
		cfg := eng.Config()
		diags := eng.ValidateConfiguration()
		if len(diags) > 0 {
			source := cfg.Path
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprint(out, formatter.RenderDiagnostics(source, diags, run.NoColor))
			return errProblems
		}
		if !run.IsQuiet {
			fmt.Fprintf(out, "configuration ok: %d step(s) from %d glob(s)\n", len(eng.Steps()), len(cfg.Steps))
		}
		return nil
	},
}

//nolint:gochecknoinits // cobra command wiring
func init() {
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "yaml", "output format: yaml|json|default")
}
