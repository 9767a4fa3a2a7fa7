package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/buildprep/internal/config"
	"git.home.luguber.info/inful/buildprep/internal/pipeline"
	"git.home.luguber.info/inful/buildprep/internal/watch"
)

// WatchCmd implements the 'watch' command: run once, then re-run on changes.
type WatchCmd struct {
	Debounce time.Duration `help:"Delay before re-running after a change" default:"500ms"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, env, err := loadConfig(root)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runOnce := func(ctx context.Context) {
		if _, err := pipeline.New(cfg, env).Run(ctx); err != nil {
			slog.Error("Pipeline run failed", "error", err)
		}
	}

	runOnce(ctx)

	paths := watchPaths(cfg, root.Config)
	watcher, err := watch.New(paths, w.Debounce, runOnce)
	if err != nil {
		return err
	}

	fmt.Printf("Watching %d files for changes (ctrl-c to stop)\n", len(paths))
	return watcher.Run(ctx)
}

// watchPaths collects every file whose change invalidates a previous run.
func watchPaths(cfg *config.Config, configPath string) []string {
	paths := make([]string, 0, len(cfg.Proto.Files)+2)
	paths = append(paths, cfg.Proto.Files...)
	paths = append(paths, cfg.Project.Manifest, configPath)
	return paths
}
