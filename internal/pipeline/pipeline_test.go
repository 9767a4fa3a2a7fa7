package pipeline

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"git.home.luguber.info/inful/buildprep/internal/config"
	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
	"git.home.luguber.info/inful/buildprep/internal/incremental"
	"git.home.luguber.info/inful/buildprep/internal/provenance"
	"git.home.luguber.info/inful/buildprep/internal/publish"
)

// testConfig builds a runnable configuration in dir. The compiler binary is
// replaced with "true" so runs succeed without protoc installed, and the
// toolchain probes point at nonexistent binaries so they degrade quickly.
func testConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	protoFile := filepath.Join(dir, "scheduler.proto")
	if err := os.WriteFile(protoFile, []byte("syntax = \"proto3\";\n"), 0o644); err != nil {
		t.Fatalf("write proto: %v", err)
	}
	manifestFile := filepath.Join(dir, "pyproject.toml")
	if err := os.WriteFile(manifestFile, []byte("name = \"router\"\nversion = \"2.1.0\"\n"), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	cfg := &config.Config{
		Proto: config.ProtoConfig{
			Files:  []string{protoFile},
			Output: filepath.Join(dir, "gen"),
			Binary: "true",
		},
		Project: config.ProjectConfig{Manifest: manifestFile},
		Toolchain: config.ToolchainConfig{
			Git:            "buildprep-no-such-git",
			Compiler:       []string{"buildprep-no-such-compiler", "version"},
			PackageManager: []string{"buildprep-no-such-pm", "--version"},
			HostQuery:      []string{"buildprep-no-such-host", "env"},
		},
		Publish: config.PublishConfig{
			Format: config.FormatEnv,
			Output: filepath.Join(dir, "buildinfo.env"),
		},
		Skip: config.SkipConfig{StateFile: filepath.Join(dir, "state.json")},
	}
	config.ApplyDefaults(cfg)
	return cfg
}

func requireTrueBinary(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true binary not available")
	}
}

func TestRunHappyPath(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	report, err := New(cfg, config.Environment{Profile: "release"}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.FinalState != StateDone {
		t.Errorf("expected done, got %s", report.FinalState)
	}
	if report.RunID == "" {
		t.Error("report must carry a run id")
	}
	if report.Metadata.Name != "router" || report.Metadata.Version != "2.1.0" {
		t.Errorf("unexpected metadata %+v", report.Metadata)
	}
	if report.Provenance.GitBranch != provenance.Unknown {
		t.Errorf("expected sentinel branch, got %q", report.Provenance.GitBranch)
	}
	if report.Provenance.BuildMode != provenance.ModeRelease {
		t.Errorf("expected release mode, got %q", report.Provenance.BuildMode)
	}

	if name, _ := report.Constants.Lookup("BUILDPREP_PROJECT_NAME"); name != "router" {
		t.Errorf("published project name %q", name)
	}
	if version, _ := report.Constants.Lookup("BUILDPREP_PROJECT_VERSION"); version != "2.1.0" {
		t.Errorf("published project version %q", version)
	}

	if _, err := os.Stat(cfg.Publish.Output); err != nil {
		t.Errorf("constants file not written: %v", err)
	}
}

func TestRunAbortsOnMissingVersion(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	if err := os.WriteFile(cfg.Project.Manifest, []byte("name = \"router\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := New(cfg, config.Environment{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected abort for missing version field")
	}
	if report.FinalState != StateAborted {
		t.Errorf("expected aborted, got %s", report.FinalState)
	}
	if !buildpreperrors.IsCategory(errUnwrap(err), buildpreperrors.CategoryManifest) {
		t.Errorf("expected manifest error, got %v", err)
	}

	// Abort happens before provenance collection runs.
	if _, ran := report.StageDurations[string(StateCollectProvenance)]; ran {
		t.Error("provenance collection must not run after a metadata abort")
	}
	if _, statErr := os.Stat(cfg.Publish.Output); !os.IsNotExist(statErr) {
		t.Error("no constants may be published on abort")
	}
}

func TestRunAbortsOnCompilerFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false binary not available")
	}
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	cfg.Proto.Binary = "false"

	report, err := New(cfg, config.Environment{}).Run(context.Background())
	if err == nil {
		t.Fatal("expected abort for failing compiler")
	}
	if report.FinalState != StateAborted {
		t.Errorf("expected aborted, got %s", report.FinalState)
	}
	if _, ran := report.StageDurations[string(StateExtractMetadata)]; ran {
		t.Error("metadata extraction must not run after a compile abort")
	}
	if _, statErr := os.Stat(cfg.Publish.Output); !os.IsNotExist(statErr) {
		t.Error("no constants may be published on abort")
	}
}

func TestRunSkipsUnchangedInputs(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	// Fabricate a previous run: matching signature and populated output.
	if err := os.MkdirAll(cfg.Proto.Output, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Proto.Output, "scheduler.pb.go"), []byte("package scheduler\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	inputs := append(append([]string(nil), cfg.Proto.Files...), cfg.Project.Manifest)
	opts := incremental.GenerationOptions(cfg.Proto.Includes, cfg.Proto.GenerateClient(), cfg.Proto.GenerateServer(), cfg.Proto.Flags)
	sig, err := incremental.ComputeSignature(inputs, opts)
	if err != nil {
		t.Fatalf("ComputeSignature: %v", err)
	}
	st := incremental.State{InputHash: sig.InputHash, OutputDir: cfg.Proto.Output, GeneratedAt: time.Now().UTC()}
	if err := incremental.SaveState(cfg.Skip.StateFile, st); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	report, err := New(cfg, config.Environment{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.SkippedCompile {
		t.Error("expected compile stage to be skipped for unchanged inputs")
	}
}

func TestRunRecompilesOnIncludeChange(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	incA := filepath.Join(dir, "incA")
	incB := filepath.Join(dir, "incB")
	for _, inc := range []string{incA, incB} {
		if err := os.MkdirAll(inc, 0o750); err != nil {
			t.Fatal(err)
		}
	}
	cfg.Proto.Includes = []string{incA}

	if _, err := New(cfg, config.Environment{}).Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	// Populate the output so the skip gate's non-empty check passes.
	if err := os.MkdirAll(cfg.Proto.Output, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Proto.Output, "scheduler.pb.go"), []byte("package scheduler\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := New(cfg, config.Environment{}).Run(context.Background())
	if err != nil {
		t.Fatalf("unchanged rerun failed: %v", err)
	}
	if !report.SkippedCompile {
		t.Fatal("unchanged include set should skip the compile stage")
	}

	cfg.Proto.Includes = []string{incB}
	report, err = New(cfg, config.Environment{}).Run(context.Background())
	if err != nil {
		t.Fatalf("rerun with changed includes failed: %v", err)
	}
	if report.SkippedCompile {
		t.Error("changed include set must invalidate the previous signature")
	}
}

func TestRunSkipDisabled(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)
	disabled := false
	cfg.Skip.Enabled = &disabled

	report, err := New(cfg, config.Environment{}).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.SkippedCompile {
		t.Error("skip must not trigger when disabled")
	}
	if _, err := os.Stat(cfg.Skip.StateFile); !os.IsNotExist(err) {
		t.Error("no state file should be written when skip is disabled")
	}
}

func TestRunPublishFailure(t *testing.T) {
	requireTrueBinary(t)
	dir := t.TempDir()
	cfg := testConfig(t, dir)

	report, err := New(cfg, config.Environment{}).
		WithSink(failingSink{}).
		Run(context.Background())
	if err == nil {
		t.Fatal("expected error from failing sink")
	}
	if report.FinalState != StateAborted {
		t.Errorf("expected aborted, got %s", report.FinalState)
	}
	// Assembly already happened; the constant set itself is complete.
	if len(report.Constants) != 10 {
		t.Errorf("expected assembled constants, got %d", len(report.Constants))
	}
}

type failingSink struct{}

func (failingSink) Write(publish.Constants) error {
	return buildpreperrors.PublishWriteError("out", os.ErrPermission)
}

// errUnwrap digs the underlying cause out of a StageError chain.
func errUnwrap(err error) error {
	var se *StageError
	if errors.As(err, &se) {
		return se.Err
	}
	return err
}
