package version

// Version contains the buildprep tool version.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/buildprep/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata for the tool itself.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)
