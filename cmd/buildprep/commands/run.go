package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/buildprep/internal/pipeline"
)

// RunCmd implements the 'run' command: the once-per-build entry point.
type RunCmd struct{}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, env, err := loadConfig(root)
	if err != nil {
		return err
	}

	report, err := pipeline.New(cfg, env).Run(context.Background())
	if err != nil {
		return err
	}

	if report.SkippedCompile {
		fmt.Println("Stub generation skipped (inputs unchanged)")
	}
	fmt.Printf("Published %d build constants to %s\n", len(report.Constants), cfg.Publish.Output)
	return nil
}
