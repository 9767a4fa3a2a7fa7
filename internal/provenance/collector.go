package provenance

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/buildprep/internal/config"
	"git.home.luguber.info/inful/buildprep/internal/logfields"
)

// Collector runs the fixed probe set. Probes are independent and stateless
// with respect to each other; sequential execution is sufficient.
type Collector struct {
	toolchain config.ToolchainConfig
	dir       string
	now       func() time.Time
}

// NewCollector creates a Collector using the configured toolchain commands.
func NewCollector(toolchain config.ToolchainConfig) *Collector {
	return &Collector{toolchain: toolchain, now: time.Now}
}

// WithDir sets the working directory for probe commands (fluent helper).
func (c *Collector) WithDir(dir string) *Collector { c.dir = dir; return c }

// WithClock overrides the timestamp source (fluent helper, used in tests).
func (c *Collector) WithClock(now func() time.Time) *Collector { c.now = now; return c }

// Collect runs every probe and assembles a Record. It cannot fail: each
// absent result is independently substituted with the sentinel. The explicit
// environment snapshot supplies the target override and build profile.
func (c *Collector) Collect(ctx context.Context, env config.Environment) Record {
	rec := NewRecord()

	apply := func(p Probe, field *string) {
		value, ok := p.Run(ctx)
		if !ok {
			slog.Debug("Provenance probe degraded to sentinel", logfields.Probe(p.Name))
			return
		}
		*field = value
	}

	git := c.toolchain.Git
	apply(Probe{Name: "git_branch", Argv: []string{git, "rev-parse", "--abbrev-ref", "HEAD"}, Dir: c.dir}, &rec.GitBranch)
	apply(Probe{Name: "git_commit", Argv: []string{git, "rev-parse", "--short", "HEAD"}, Dir: c.dir}, &rec.GitCommit)
	apply(Probe{Name: "git_status", Argv: []string{git, "status", "--porcelain"}, Dir: c.dir, Parse: parseWorkingTreeStatus}, &rec.GitStatus)
	apply(Probe{Name: "compiler_version", Argv: c.toolchain.Compiler, Dir: c.dir}, &rec.CompilerVersion)
	apply(Probe{Name: "package_manager_version", Argv: c.toolchain.PackageManager, Dir: c.dir}, &rec.PackageManagerVersion)

	if env.Target != "" {
		// Explicit override from the invoking build system wins.
		rec.TargetTriple = env.Target
	} else {
		apply(Probe{Name: "target_platform", Argv: c.toolchain.HostQuery, Dir: c.dir, Parse: parseHostPlatform}, &rec.TargetTriple)
	}

	rec.BuildMode = ResolveMode(env.Profile)
	rec.BuildTimestamp = FormatTimestamp(c.now())

	return rec
}
