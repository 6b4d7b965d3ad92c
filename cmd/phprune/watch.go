package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/phprune/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Re-run the report whenever a source file changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before re-running",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	loaded, err := loadConfig(c)
	if err != nil {
		return err
	}
	if loaded.Config.Output.RemoveFiles || loaded.Config.Output.RemoveFunc {
		return errors.New("removal is not available in watch mode")
	}

	w, err := watch.NewWatcher(loaded.Config.Input.RootPath, loaded.Config, c.Duration("debounce"), c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer w.Stop()

	w.SetCallback(func(changed []string) {
		if err := runAnalyzeCmd(c); err != nil {
			messages(c.App.ErrWriter).Error("%v", err)
		}
	})

	if err := runAnalyzeCmd(c); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
