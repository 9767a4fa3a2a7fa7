package commands

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/buildprep/internal/config"
	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
)

func TestInitCmdCreatesConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildprep.yaml")

	cmd := &InitCmd{}
	if err := cmd.Run(&Global{}, &CLI{Config: path}); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if len(cfg.Proto.Files) == 0 {
		t.Error("example config should list at least one definition file")
	}
}

func TestInitCmdRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buildprep.yaml")
	if err := os.WriteFile(path, []byte("proto:\n  files: [a.proto]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &InitCmd{}
	if err := cmd.Run(&Global{}, &CLI{Config: path}); err == nil {
		t.Fatal("expected error without --force")
	}

	cmd = &InitCmd{Force: true}
	if err := cmd.Run(&Global{}, &CLI{Config: path}); err != nil {
		t.Fatalf("expected --force to overwrite: %v", err)
	}
}

func TestRunCmdMissingConfig(t *testing.T) {
	cmd := &RunCmd{}
	err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !buildpreperrors.IsCategory(err, buildpreperrors.CategoryConfig) {
		t.Errorf("expected config category, got %v", err)
	}
}

func TestProbeCmdMissingConfig(t *testing.T) {
	cmd := &ProbeCmd{}
	if err := cmd.Run(&Global{}, &CLI{Config: filepath.Join(t.TempDir(), "nope.yaml")}); err == nil {
		t.Fatal("expected error for missing config")
	}
}
