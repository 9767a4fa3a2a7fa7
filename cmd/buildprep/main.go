package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/buildprep/cmd/buildprep/commands"
	"git.home.luguber.info/inful/buildprep/internal/errors"
	"git.home.luguber.info/inful/buildprep/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("buildprep"),
		kong.Description("Pre-build orchestrator: protobuf stub generation, manifest extraction and build provenance publishing."),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{Logger: slog.Default()}, &cli)
	if err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
