package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# buildprep configuration
# Run "buildprep run" once per build cycle, before compiling the application.

proto:
  files:
    - proto/scheduler.proto
  includes:
    - proto
  output: gen
  # Service stubs are generated unless both are false; the generator does
  # not emit client and server code separately.
  # client: true
  # server: true

project:
  manifest: pyproject.toml
  # name_field: name
  # version_field: version

toolchain:
  # git: git
  # compiler: [go, version]
  # package_manager: [buf, --version]
  # host_query: [go, env, GOHOSTOS, GOHOSTARCH]

publish:
  format: go
  output: internal/buildinfo/buildinfo.gen.go
  package: buildinfo
  prefix: BUILDPREP_

skip:
  enabled: true
`

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
