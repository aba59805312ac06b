package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	rdebug "runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/pkg/core"
	"github.com/oakwood-commons/stepls/pkg/logger"
	"github.com/oakwood-commons/stepls/pkg/settings"
)

var (
	rootDir    string
	configFile string
	noColor    bool
	debug      bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   settings.CliBinaryName,
	Short: "Cucumber step definitions for your editor and your terminal",
	Long: `stepls scans JavaScript and TypeScript step definition files, compiles every
step pattern, and checks .feature files against them. It runs as a language
server (stepls serve) and as a command line tool for listing steps, validating
scenarios, and trying completions.`,
	Example: "\n  stepls steps\n  stepls steps --where 'step.usage == 0' -o yaml\n  stepls validate features/*.feature\n  stepls complete features/belly.feature 3 10\n  stepls serve --watch\n",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := logger.Level(debug)
		lgr := logger.Get(level)
		lgr = logger.WithValues(lgr, logger.RootCommandKey, settings.CliBinaryName, logger.SubCommandKey, cmd.Name())

		run := settings.NewCliParams()
		run.MinLogLevel = level
		run.Workspace.Root = rootDir
		run.Workspace.ConfigPath = configFile
		run.NoColor = noColor || !isTerminal(cmd.OutOrStdout())
		run.IsQuiet = quiet

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = logger.WithLogger(ctx, lgr)
		cmd.SetContext(settings.IntoContext(ctx, run))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runSettings(cmd *cobra.Command) *settings.Run {
	if run, ok := settings.FromContext(cmd.Context()); ok && run != nil {
		return run
	}
	return settings.NewCliParams()
}

// loadConfig resolves the configuration for the workspace of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	run := runSettings(cmd)
	return config.LoadFor(run.Workspace.Root, run.Workspace.ConfigPath)
}

// loadEngine builds the step engine for the workspace of cmd. Globs that
// fail to expand are logged and the engine is returned with what it could
// load.
func loadEngine(cmd *cobra.Command) (*core.Engine, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	lgr := logger.FromContext(cmd.Context())
	eng, err := core.New(runSettings(cmd).Workspace.Root,
		core.WithConfig(cfg),
		core.WithLogger(logger.Named(lgr, "core")),
	)
	if eng == nil {
		return nil, err
	}
	if err != nil {
		lgr.Error(err, "some steps could not be loaded")
	}
	return eng, nil
}

// readDocument reads a scenario file given on the command line, relative to
// the working directory.
func readDocument(path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("read %s: %w", path, err)
	}
	return abs, string(data), nil
}

func cliVersionString() string {
	v := settings.VersionInformation
	goVersion := runtime.Version()
	if info, ok := rdebug.ReadBuildInfo(); ok && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)", settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, goVersion)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print stepls version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cliVersionString())
		return err
	},
}

//nolint:gochecknoinits // cobra command wiring
func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "workspace root that step and feature globs are relative to")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to a stepls YAML config (default: <root>/"+settings.ConfigFileName+" or $XDG_CONFIG_HOME/stepls/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "print nothing on success")

	rootCmd.Version = cliVersionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(definitionCmd)
	rootCmd.AddCommand(serveCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}
