// Command sync publishes the prompts, steps and workflows changed by a pull
// request to the remote registry and reports the outcome on the pull request.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/greenhouse/internal/config"
	"github.com/JaimeStill/greenhouse/internal/infrastructure"
	wfsync "github.com/JaimeStill/greenhouse/internal/sync"
	"github.com/JaimeStill/greenhouse/pkg/sand"
)

type options struct {
	dryRun      bool
	downloadCLI bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "sync <branch>",
		Short:         "Sync changed workflows, steps and prompts to the registry",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			logger := infrastructure.NewLogger(
				&config.LoggingConfig{Level: "info", Format: "tint"},
				cmd.ErrOrStderr(),
			)
			cfg := wfsync.LoadConfig(args[0], opts.dryRun)
			return run(cmd.Context(), cfg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print registry commands without publishing")
	cmd.Flags().BoolVar(&opts.downloadCLI, "download-cli", false, "download the registry CLI before syncing")
	return cmd
}

// run writes progress and the success report to out. A failure report goes
// to errOut and, when possible, to the pull request.
func run(ctx context.Context, cfg wfsync.Config, opts options, out, errOut io.Writer, logger *slog.Logger) error {
	if err := execute(ctx, &cfg, opts, out, logger); err != nil {
		logger.Error("sync failed", "error", err)

		msg := wfsync.FailureMessage(err)
		fmt.Fprintln(errOut, wfsync.Plain(msg))
		if cerr := wfsync.PostComment(ctx, cfg, msg, logger); cerr != nil {
			logger.Warn("failure comment not posted", "error", cerr)
		}
		return err
	}
	return nil
}

func execute(ctx context.Context, cfg *wfsync.Config, opts options, out io.Writer, logger *slog.Logger) error {
	if opts.downloadCLI {
		path, err := sand.Download(ctx, nil, "", filepath.Join(os.TempDir(), "sand-cli"))
		if err != nil {
			return err
		}
		logger.Info("registry cli downloaded", "path", path)
		cfg.CLIPath = path
	}

	client := sand.New(sand.Config{
		Path:   cfg.CLIPath,
		DryRun: cfg.DryRun,
		Logger: logger,
	})

	syncer, err := wfsync.New(*cfg, client, logger)
	if err != nil {
		return err
	}

	workflows, err := syncer.Discover(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "🔄 Syncing to Sandgarden")
	for _, line := range wfsync.StatusLines(workflows) {
		fmt.Fprintln(out, line)
	}

	result := syncer.Publish(ctx, workflows)

	msg := wfsync.SuccessMessage(result)
	fmt.Fprintln(out, wfsync.Plain(msg))
	if err := syncer.PostComment(ctx, msg); err != nil {
		return fmt.Errorf("post sync summary: %w", err)
	}
	return nil
}
