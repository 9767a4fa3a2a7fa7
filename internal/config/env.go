package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Environment variable names recognized by buildprep. They are read once at
// process entry; the pipeline itself never consults the process environment.
const (
	EnvTarget  = "BUILDPREP_TARGET"
	EnvProfile = "BUILDPREP_PROFILE"
)

// Environment is the explicit snapshot of build-system supplied overrides,
// captured once and passed into the orchestrator.
type Environment struct {
	Target  string // Target platform override; wins over the toolchain-derived value
	Profile string // Build profile name; exactly "release" selects release mode
}

// CaptureEnvironment loads .env/.env.local (without overriding existing
// process variables) and snapshots the recognized overrides.
func CaptureEnvironment() Environment {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err == nil {
			// godotenv.Load never overrides variables already set.
			_ = godotenv.Load(envPath)
		}
	}
	return Environment{
		Target:  os.Getenv(EnvTarget),
		Profile: os.Getenv(EnvProfile),
	}
}
