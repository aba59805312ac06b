package cmd

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/stepls/internal/config"
	"github.com/oakwood-commons/stepls/internal/lsp"
	"github.com/oakwood-commons/stepls/internal/watch"
	"github.com/oakwood-commons/stepls/pkg/core"
	"github.com/oakwood-commons/stepls/pkg/logger"
)

var (
	serveWatch    bool
	serveDebounce time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server on stdin/stdout",
	Long: `Run the Language Server Protocol server over stdin and stdout. Logs go to
stderr. With --watch, changes to step definition files and to the config file
reload the steps and refresh the diagnostics of every open document.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		run := runSettings(cmd)
		run.Workspace.FromLSP = true
		lgr := logger.FromContext(cmd.Context())

		eng, err := loadEngine(cmd)
		if err != nil {
			return err
		}
		server := lsp.NewServer(eng, logger.Named(lgr, "lsp"))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveWatch {
			w, err := watch.New(eng.Root(), func() []string { return watchedGlobs(eng) }, logger.Named(lgr, "watch"))
			if err != nil {
				return err
			}
			defer w.Close()
			w.SetDebounce(serveDebounce)

			cfgPath := eng.Config().Path
			if cfgPath != "" {
				if abs, err := filepath.Abs(cfgPath); err == nil {
					cfgPath = abs
				}
				w.Track(cfgPath)
			}
			go func() {
				err := w.Run(ctx, func(path string) {
					if path == cfgPath {
						reloadConfig(ctx, server, eng, cfgPath)
						return
					}
					if err := server.StepsChanged(ctx); err != nil {
						lgr.Error(err, "refreshing diagnostics", logger.PathKey, path)
					}
				})
				if err != nil && !errors.Is(err, context.Canceled) {
					lgr.Error(err, "file watcher stopped")
				}
			}()
		}

		lgr.Info("language server started", "root", eng.Root(), "watch", serveWatch)
		err = server.Serve(ctx, lsp.Stdio())
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

// watchedGlobs returns the globs whose files feed the engine.
func watchedGlobs(eng *core.Engine) []string {
	cfg := eng.Config()
	globs := append([]string(nil), cfg.Steps...)
	if g := cfg.FeatureGlob(); g != "" {
		globs = append(globs, g)
	}
	return globs
}

func reloadConfig(ctx context.Context, server *lsp.Server, eng *core.Engine, path string) {
	lgr := logger.FromContext(ctx)
	cfg, err := config.Load(path)
	if err != nil {
		lgr.Error(err, "config not reloaded", logger.PathKey, path)
		return
	}
	if err := eng.SetConfig(cfg); err != nil {
		lgr.Error(err, "applying reloaded config", logger.PathKey, path)
	}
	if err := server.StepsChanged(ctx); err != nil {
		lgr.Error(err, "refreshing diagnostics", logger.PathKey, path)
	}
}

//nolint:gochecknoinits // cobra command wiring
func init() {
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload steps when step definition or config files change")
	serveCmd.Flags().DurationVar(&serveDebounce, "debounce", watch.DefaultDebounce, "quiet period before a burst of file changes triggers a reload")
	// accepted for clients that always pass --stdio
	serveCmd.Flags().Bool("stdio", true, "serve over stdin/stdout (the only transport)")
	_ = serveCmd.Flags().MarkHidden("stdio")
}
