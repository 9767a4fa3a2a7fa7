// Package provenance collects best-effort build provenance: version-control
// state and toolchain versions. Collection is total; every probe degrades to
// the sentinel value on failure and never aborts the build.
package provenance

import "time"

// Unknown is the sentinel substituted whenever an optional provenance fact
// cannot be determined. Its presence is a valid, expected state.
const Unknown = "unknown"

// Working-tree cleanliness states.
const (
	StatusClean = "clean"
	StatusDirty = "dirty"
)

// Build modes.
const (
	ModeDebug   = "debug"
	ModeRelease = "release"
)

// timestampLayout is the fixed UTC build timestamp format.
const timestampLayout = "2006-01-02 15:04:05 UTC"

// Record holds the collected provenance facts. Every field except
// BuildMode and BuildTimestamp may legitimately hold the sentinel.
type Record struct {
	GitBranch             string
	GitCommit             string
	GitStatus             string
	CompilerVersion       string
	PackageManagerVersion string
	TargetTriple          string
	BuildMode             string
	BuildTimestamp        string
}

// NewRecord returns a Record with every probed field set to the sentinel.
func NewRecord() Record {
	return Record{
		GitBranch:             Unknown,
		GitCommit:             Unknown,
		GitStatus:             Unknown,
		CompilerVersion:       Unknown,
		PackageManagerVersion: Unknown,
		TargetTriple:          Unknown,
	}
}

// ResolveMode maps a build profile name to a build mode: exactly "release"
// selects release, everything else (including absent) is debug.
func ResolveMode(profile string) string {
	if profile == ModeRelease {
		return ModeRelease
	}
	return ModeDebug
}

// FormatTimestamp renders t as the fixed UTC build timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
