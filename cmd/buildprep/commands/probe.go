package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/buildprep/internal/provenance"
)

// ProbeCmd implements the 'probe' command: collect provenance and print it.
type ProbeCmd struct{}

func (p *ProbeCmd) Run(_ *Global, root *CLI) error {
	cfg, env, err := loadConfig(root)
	if err != nil {
		return err
	}

	rec := provenance.NewCollector(cfg.Toolchain).Collect(context.Background(), env)

	fmt.Printf("git branch:       %s\n", rec.GitBranch)
	fmt.Printf("git commit:       %s\n", rec.GitCommit)
	fmt.Printf("git status:       %s\n", rec.GitStatus)
	fmt.Printf("compiler:         %s\n", rec.CompilerVersion)
	fmt.Printf("package manager:  %s\n", rec.PackageManagerVersion)
	fmt.Printf("target:           %s\n", rec.TargetTriple)
	fmt.Printf("mode:             %s\n", rec.BuildMode)
	fmt.Printf("timestamp:        %s\n", rec.BuildTimestamp)
	return nil
}
