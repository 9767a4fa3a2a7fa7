package provenance

import (
	"context"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Probe is a uniform best-effort capability: one external command invocation
// and a parse of its standard output. A probe never returns an error; any
// failure (missing binary, non-zero exit, invalid output encoding, parse
// rejection) reports absent instead.
type Probe struct {
	Name  string
	Argv  []string
	Dir   string                            // Working directory; empty means inherit
	Parse func(stdout string) (string, bool) // nil means trimmed stdout
}

// Run executes the probe. The boolean reports whether a value was obtained.
func (p Probe) Run(ctx context.Context) (string, bool) {
	if len(p.Argv) == 0 {
		return "", false
	}
	cmd := exec.CommandContext(ctx, p.Argv[0], p.Argv[1:]...)
	cmd.Dir = p.Dir
	out, err := cmd.Output()
	if err != nil {
		return "", false
	}
	if !utf8.Valid(out) {
		return "", false
	}
	if p.Parse != nil {
		return p.Parse(string(out))
	}
	return strings.TrimSpace(string(out)), true
}

// parseWorkingTreeStatus maps a machine-readable status listing to
// clean/dirty: an empty listing means no uncommitted changes.
func parseWorkingTreeStatus(stdout string) (string, bool) {
	if strings.TrimSpace(stdout) == "" {
		return StatusClean, true
	}
	return StatusDirty, true
}

// parseHostPlatform joins the non-empty trimmed output lines with "/",
// turning a GOHOSTOS/GOHOSTARCH query into a platform pair like linux/amd64.
func parseHostPlatform(stdout string) (string, bool) {
	var parts []string
	for _, line := range strings.Split(stdout, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "/"), true
}
