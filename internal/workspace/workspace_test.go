package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStagingLifecycle(t *testing.T) {
	base := t.TempDir()
	staging := NewStaging(base)

	if err := staging.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if staging.Path() == "" {
		t.Fatal("expected staging path after Create")
	}

	// Stage a nested file as protoc would.
	sub := filepath.Join(staging.Path(), "scheduler")
	if err := os.MkdirAll(sub, 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "scheduler.pb.go"), []byte("package scheduler\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := filepath.Join(base, "gen")
	if err := staging.Promote(out); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}

	promoted := filepath.Join(out, "scheduler", "scheduler.pb.go")
	data, err := os.ReadFile(promoted)
	if err != nil {
		t.Fatalf("promoted file missing: %v", err)
	}
	if string(data) != "package scheduler\n" {
		t.Errorf("unexpected content: %q", data)
	}

	stagedPath := staging.Path()
	if err := staging.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if _, err := os.Stat(stagedPath); !os.IsNotExist(err) {
		t.Error("staging directory should be gone after Cleanup")
	}
}

func TestPromoteWithoutCreate(t *testing.T) {
	staging := NewStaging(t.TempDir())
	if err := staging.Promote(filepath.Join(t.TempDir(), "gen")); err == nil {
		t.Fatal("expected error when promoting before Create")
	}
}

func TestCleanupIdempotent(t *testing.T) {
	staging := NewStaging(t.TempDir())
	if err := staging.Cleanup(); err != nil {
		t.Fatalf("Cleanup on unused staging failed: %v", err)
	}
	if err := staging.Create(); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := staging.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if err := staging.Cleanup(); err != nil {
		t.Fatalf("second Cleanup failed: %v", err)
	}
}
