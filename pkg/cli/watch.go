package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/baldr/baldr/pkg/logger"
	"github.com/baldr/baldr/pkg/watch"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch -p <project> [flags] [-- <target args>...]",
		Short: "Build, then rebuild whenever project sources change",
		Long: `Build once, then watch the project tree and rebuild after changes settle.

Rebuilds skip configure and never delete the build directory. A failed rebuild
is logged and watching continues until interrupted.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			trailing, err := trailingArgs(cmd, args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx, trailing)
		},
	}
	c.addBuildFlags(cmd)
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, trailing []string) error {
	opts := c.config.Build
	opts.Args = trailing

	initial, err := c.newEngine(opts)
	if err != nil {
		return err
	}
	if err := initial.Run(); err != nil {
		c.logger.Error("Initial build failed", logger.WithField("error", err))
	}

	rebuild := opts
	rebuild.NoConfigure = true
	rebuild.Delete = false

	w, err := watch.New(initial.Project(), c.view.WatchExclude(), c.view.WatchSettle(), func(changed []string) error {
		return c.build(rebuild)
	}, c.logger)
	if err != nil {
		return err
	}
	if w.ExcludeDir(initial.BuildDir()) {
		c.logger.Debug("Build directory excluded from watching", logger.WithField("path", initial.BuildDir()))
	}

	if err := w.Run(ctx); err != nil {
		return fmt.Errorf("watching %s: %w", initial.Project(), err)
	}
	c.logger.Info("Stopped watching")
	return nil
}
