package incremental

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestComputeSignatureDeterministic(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.proto", "syntax = \"proto3\";")
	b := writeInput(t, dir, "pyproject.toml", "name = \"router\"")

	sig1, err := ComputeSignature([]string{a, b}, []string{"--flag2", "--flag1"})
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}
	sig2, err := ComputeSignature([]string{b, a}, []string{"--flag1", "--flag2"})
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}

	if sig1.InputHash != sig2.InputHash {
		t.Error("signature must be independent of input and flag order")
	}
}

func TestComputeSignatureDetectsChange(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.proto", "syntax = \"proto3\";")

	sig1, err := ComputeSignature([]string{a}, nil)
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}

	writeInput(t, dir, "a.proto", "syntax = \"proto3\"; // changed")
	sig2, err := ComputeSignature([]string{a}, nil)
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}

	if sig1.InputHash == sig2.InputHash {
		t.Error("content change must change the signature")
	}
}

func TestGenerationOptionsAffectSignature(t *testing.T) {
	dir := t.TempDir()
	a := writeInput(t, dir, "a.proto", "syntax = \"proto3\";")

	base, err := ComputeSignature([]string{a}, GenerationOptions([]string{"proto"}, true, true, nil))
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}

	tests := []struct {
		name string
		opts []string
	}{
		{"changed include set", GenerationOptions([]string{"vendor-proto"}, true, true, nil)},
		{"extra include", GenerationOptions([]string{"proto", "vendor-proto"}, true, true, nil)},
		{"service stubs disabled", GenerationOptions([]string{"proto"}, false, false, nil)},
		{"extra flag", GenerationOptions([]string{"proto"}, true, true, []string{"--fatal_warnings"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := ComputeSignature([]string{a}, tt.opts)
			if err != nil {
				t.Fatalf("ComputeSignature failed: %v", err)
			}
			if sig.InputHash == base.InputHash {
				t.Error("generation option change must change the signature")
			}
		})
	}
}

func TestComputeSignatureMissingInput(t *testing.T) {
	if _, err := ComputeSignature([]string{filepath.Join(t.TempDir(), "absent.proto")}, nil); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := State{InputHash: "abc", OutputDir: "gen", GeneratedAt: time.Now().UTC()}

	if err := SaveState(path, st); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}
	loaded, err := LoadState(path)
	if err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if loaded == nil || loaded.InputHash != "abc" || loaded.OutputDir != "gen" {
		t.Errorf("unexpected state: %+v", loaded)
	}
}

func TestLoadStateMissing(t *testing.T) {
	st, err := LoadState(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil || st != nil {
		t.Errorf("missing state should be (nil, nil), got %+v, %v", st, err)
	}
}

func TestLoadStateCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := LoadState(path)
	if err != nil || st != nil {
		t.Errorf("corrupt state should regenerate, got %+v, %v", st, err)
	}
}

func TestShouldSkip(t *testing.T) {
	outDir := t.TempDir()
	writeInput(t, outDir, "scheduler.pb.go", "package scheduler")
	emptyDir := t.TempDir()

	tests := []struct {
		name string
		st   *State
		hash string
		out  string
		want bool
	}{
		{"match with output", &State{InputHash: "h", OutputDir: outDir}, "h", outDir, true},
		{"no previous state", nil, "h", outDir, false},
		{"hash mismatch", &State{InputHash: "other", OutputDir: outDir}, "h", outDir, false},
		{"output dir moved", &State{InputHash: "h", OutputDir: "elsewhere"}, "h", outDir, false},
		{"output empty", &State{InputHash: "h", OutputDir: emptyDir}, "h", emptyDir, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldSkip(tt.st, tt.hash, tt.out); got != tt.want {
				t.Errorf("ShouldSkip = %v, want %v", got, tt.want)
			}
		})
	}
}
