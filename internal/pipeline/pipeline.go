// Package pipeline orchestrates the pre-build run: protocol stub generation,
// project metadata extraction, provenance collection, and constant
// publication, in that order. The first two stages abort the build on error.
// Provenance collection cannot fail, and constant assembly is pure; after
// provenance the only abort path is a failed write of the constants file.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/buildprep/internal/config"
	"git.home.luguber.info/inful/buildprep/internal/incremental"
	"git.home.luguber.info/inful/buildprep/internal/logfields"
	"git.home.luguber.info/inful/buildprep/internal/manifest"
	"git.home.luguber.info/inful/buildprep/internal/protoc"
	"git.home.luguber.info/inful/buildprep/internal/provenance"
	"git.home.luguber.info/inful/buildprep/internal/publish"
)

// Orchestrator runs the four-stage pre-build pipeline. It is single-use:
// create one per invocation.
type Orchestrator struct {
	cfg       *config.Config
	env       config.Environment
	compiler  *protoc.Compiler
	collector *provenance.Collector
	sink      publish.Sink
}

// runState carries mutable state across stages.
type runState struct {
	report *Report
	start  time.Time
}

// New creates an Orchestrator from the loaded configuration and the explicit
// environment snapshot.
func New(cfg *config.Config, env config.Environment) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		env:       env,
		compiler:  protoc.NewCompiler(cfg.Proto.Binary),
		collector: provenance.NewCollector(cfg.Toolchain),
		sink:      sinkFor(cfg.Publish),
	}
}

// WithSink overrides the publication sink (fluent helper, used in tests).
func (o *Orchestrator) WithSink(sink publish.Sink) *Orchestrator { o.sink = sink; return o }

func sinkFor(pub config.PublishConfig) publish.Sink {
	if pub.Format == config.FormatEnv {
		return publish.EnvSink{Path: pub.Output}
	}
	return publish.GoSink{Path: pub.Output, Package: pub.Package}
}

// Run executes the pipeline once. The returned Report is always non-nil;
// err is non-nil only when the run aborted.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	rs := &runState{
		report: newReport(uuid.NewString()),
		start:  time.Now(),
	}
	slog.Info("Starting pre-build run", logfields.RunID(rs.report.RunID))

	err := runStages(ctx, rs, []struct {
		name string
		fn   Stage
	}{
		{string(StateCompileProtos), o.stageCompileProtos},
		{string(StateExtractMetadata), o.stageExtractMetadata},
		{string(StateCollectProvenance), o.stageCollectProvenance},
		{string(StatePublish), o.stagePublish},
	})
	rs.report.Duration = time.Since(rs.start)

	if err != nil {
		slog.Error("Pre-build run aborted",
			logfields.RunID(rs.report.RunID),
			logfields.Error(err),
			logfields.DurationMS(float64(rs.report.Duration.Milliseconds())))
		return rs.report, err
	}
	slog.Info("Pre-build run completed",
		logfields.RunID(rs.report.RunID),
		slog.Int("constants", len(rs.report.Constants)),
		logfields.DurationMS(float64(rs.report.Duration.Milliseconds())))
	return rs.report, nil
}

// stageCompileProtos generates the stub source tree. With early skip enabled
// the stage compares an input digest against the previous run and skips the
// compiler invocation when nothing changed.
func (o *Orchestrator) stageCompileProtos(ctx context.Context, rs *runState) error {
	req := protoc.CompileRequest{
		Files:     o.cfg.Proto.Files,
		Includes:  o.cfg.Proto.Includes,
		GenClient: o.cfg.Proto.GenerateClient(),
		GenServer: o.cfg.Proto.GenerateServer(),
		Flags:     o.cfg.Proto.Flags,
		OutDir:    o.cfg.Proto.Output,
	}

	var sig *incremental.InputSignature
	if o.cfg.Skip.SkipEnabled() {
		inputs := append(append([]string(nil), req.Files...), o.cfg.Project.Manifest)
		opts := incremental.GenerationOptions(req.Includes, req.GenClient, req.GenServer, req.Flags)
		var err error
		sig, err = incremental.ComputeSignature(inputs, opts)
		if err != nil {
			// Missing inputs surface as fatal compile validation below.
			slog.Debug("Input signature unavailable", logfields.Error(err))
		} else {
			st, err := incremental.LoadState(o.cfg.Skip.StateFile)
			if err == nil && incremental.ShouldSkip(st, sig.InputHash, req.OutDir) {
				slog.Info("Inputs unchanged, skipping stub generation", logfields.Path(req.OutDir))
				rs.report.SkippedCompile = true
				return nil
			}
		}
	}

	if err := o.compiler.Compile(ctx, req); err != nil {
		return newFatalStageError(string(StateCompileProtos), err)
	}

	if sig != nil {
		st := incremental.State{
			InputHash:   sig.InputHash,
			OutputDir:   req.OutDir,
			GeneratedAt: time.Now().UTC(),
		}
		if err := incremental.SaveState(o.cfg.Skip.StateFile, st); err != nil {
			return newWarnStageError(string(StateCompileProtos), err)
		}
	}
	return nil
}

// stageExtractMetadata reads the required name and version fields from the
// project manifest. Either field missing aborts the build.
func (o *Orchestrator) stageExtractMetadata(_ context.Context, rs *runState) error {
	meta, err := manifest.Extract(o.cfg.Project.Manifest, o.cfg.Project.NameField, o.cfg.Project.VersionField)
	if err != nil {
		return newFatalStageError(string(StateExtractMetadata), err)
	}
	rs.report.Metadata = meta
	slog.Debug("Extracted project metadata",
		slog.String("name", meta.Name),
		slog.String("version", meta.Version))
	return nil
}

// stageCollectProvenance runs the probe set. It cannot fail; every probe
// degrades independently to the sentinel.
func (o *Orchestrator) stageCollectProvenance(ctx context.Context, rs *runState) error {
	rs.report.Provenance = o.collector.Collect(ctx, o.env)
	return nil
}

// stagePublish assembles the constant set (pure, cannot fail) and writes it
// through the configured sink.
func (o *Orchestrator) stagePublish(_ context.Context, rs *runState) error {
	rs.report.Constants = publish.Publish(o.cfg.Publish.Prefix, rs.report.Metadata, rs.report.Provenance)
	if err := o.sink.Write(rs.report.Constants); err != nil {
		// Assembly never fails; only the filesystem emission can, and a
		// missing constants file would break the downstream build invisibly.
		return newFatalStageError(string(StatePublish), err)
	}
	return nil
}
