package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
)

// Config represents the buildprep configuration
type Config struct {
	Proto     ProtoConfig     `yaml:"proto"`
	Project   ProjectConfig   `yaml:"project"`
	Toolchain ToolchainConfig `yaml:"toolchain"`
	Publish   PublishConfig   `yaml:"publish"`
	Skip      SkipConfig      `yaml:"skip"`
}

// ProtoConfig describes the interface-definition compilation step
type ProtoConfig struct {
	Files    []string `yaml:"files"`
	Includes []string `yaml:"includes,omitempty"`
	Output   string   `yaml:"output,omitempty"` // Directory receiving generated stubs
	Binary   string   `yaml:"binary,omitempty"` // Compiler binary, defaults to protoc

	// Client and Server gate service stub generation (both default true).
	// The stub generator emits client and server code together, so disabling
	// only one of them changes nothing; disable both to generate message
	// types only.
	Client *bool `yaml:"client,omitempty"`
	Server *bool `yaml:"server,omitempty"`

	Flags []string `yaml:"flags,omitempty"` // Extra compiler flags
}

// GenerateClient reports whether client stubs should be generated.
func (p ProtoConfig) GenerateClient() bool { return p.Client == nil || *p.Client }

// GenerateServer reports whether server stubs should be generated.
func (p ProtoConfig) GenerateServer() bool { return p.Server == nil || *p.Server }

// ProjectConfig locates the project manifest and the fields read from it
type ProjectConfig struct {
	Manifest     string `yaml:"manifest,omitempty"`      // Path to the project manifest
	NameField    string `yaml:"name_field,omitempty"`    // Manifest key holding the project name
	VersionField string `yaml:"version_field,omitempty"` // Manifest key holding the project version
}

// ToolchainConfig holds the probe commands for toolchain provenance.
// Each entry is an argv slice; the first element is the binary.
type ToolchainConfig struct {
	Git            string   `yaml:"git,omitempty"`             // Version-control binary
	Compiler       []string `yaml:"compiler,omitempty"`        // Compiler version probe
	PackageManager []string `yaml:"package_manager,omitempty"` // Package manager version probe
	HostQuery      []string `yaml:"host_query,omitempty"`      // Host platform query
}

// PublishConfig controls how assembled constants are written out
type PublishConfig struct {
	Format  string `yaml:"format,omitempty"`  // "go" or "env"
	Output  string `yaml:"output,omitempty"`  // Destination file
	Package string `yaml:"package,omitempty"` // Go package name for format "go"
	Prefix  string `yaml:"prefix,omitempty"`  // Constant name prefix
}

// SkipConfig controls digest-based early skip of stub generation
type SkipConfig struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	StateFile string `yaml:"state_file,omitempty"`
}

// SkipEnabled reports whether early skip is active.
func (s SkipConfig) SkipEnabled() bool { return s.Enabled == nil || *s.Enabled }

// Publish formats
const (
	FormatGo  = "go"
	FormatEnv = "env"
)

// Load loads configuration from the specified file, applying defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, buildpreperrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills in unset fields with their documented defaults.
func ApplyDefaults(config *Config) {
	if config.Proto.Output == "" {
		config.Proto.Output = "gen"
	}
	if config.Proto.Binary == "" {
		config.Proto.Binary = "protoc"
	}
	if config.Project.Manifest == "" {
		config.Project.Manifest = "pyproject.toml"
	}
	if config.Project.NameField == "" {
		config.Project.NameField = "name"
	}
	if config.Project.VersionField == "" {
		config.Project.VersionField = "version"
	}
	if config.Toolchain.Git == "" {
		config.Toolchain.Git = "git"
	}
	if len(config.Toolchain.Compiler) == 0 {
		config.Toolchain.Compiler = []string{"go", "version"}
	}
	if len(config.Toolchain.PackageManager) == 0 {
		config.Toolchain.PackageManager = []string{"buf", "--version"}
	}
	if len(config.Toolchain.HostQuery) == 0 {
		config.Toolchain.HostQuery = []string{"go", "env", "GOHOSTOS", "GOHOSTARCH"}
	}
	config.Publish.Format = strings.ToLower(strings.TrimSpace(config.Publish.Format))
	if config.Publish.Format == "" {
		config.Publish.Format = FormatGo
	}
	if config.Publish.Package == "" {
		config.Publish.Package = "buildinfo"
	}
	if config.Publish.Prefix == "" {
		config.Publish.Prefix = "BUILDPREP_"
	}
	if config.Publish.Output == "" {
		switch config.Publish.Format {
		case FormatEnv:
			config.Publish.Output = "buildinfo.env"
		default:
			config.Publish.Output = "internal/buildinfo/buildinfo.gen.go"
		}
	}
	if config.Skip.StateFile == "" {
		config.Skip.StateFile = ".buildprep-state.json"
	}
}

// Validate checks invariants that would otherwise surface mid-pipeline.
func (c *Config) Validate() error {
	if len(c.Proto.Files) == 0 {
		return buildpreperrors.ValidationFailed("proto.files", "at least one definition file is required")
	}
	for _, f := range c.Proto.Files {
		if strings.TrimSpace(f) == "" {
			return buildpreperrors.ValidationFailed("proto.files", "definition file path must not be blank")
		}
	}
	if c.Publish.Format != FormatGo && c.Publish.Format != FormatEnv {
		return buildpreperrors.ValidationFailed("publish.format", fmt.Sprintf("unsupported format %q", c.Publish.Format))
	}
	if c.Publish.Format == FormatGo && !isValidGoPackageName(c.Publish.Package) {
		return buildpreperrors.ValidationFailed("publish.package", fmt.Sprintf("invalid Go package name %q", c.Publish.Package))
	}
	return nil
}

// isValidGoPackageName checks a lowercase identifier suitable as a package name.
func isValidGoPackageName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
