// Package protoc invokes the external interface-definition compiler to
// generate client and server stub code. Generation has no partial-success
// mode: output is staged and promoted only when the compiler exits cleanly.
package protoc

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
	"git.home.luguber.info/inful/buildprep/internal/logfields"
	"git.home.luguber.info/inful/buildprep/internal/workspace"
)

// CompileRequest describes one stub-generation invocation.
type CompileRequest struct {
	Files    []string // Definition files, in order; must be non-empty
	Includes []string // Include directories for import resolution

	// GenClient and GenServer gate service stub generation as a whole: the
	// stub generator emits both sides together, so either toggle enables it
	// and only both false omit it.
	GenClient bool
	GenServer bool

	Flags  []string // Extra compiler flags, passed through verbatim
	OutDir string   // Final destination for generated stubs
}

// Compiler wraps the external protoc binary.
type Compiler struct {
	binary string
}

// NewCompiler creates a Compiler using the given binary name (or path).
func NewCompiler(binary string) *Compiler {
	if binary == "" {
		binary = "protoc"
	}
	return &Compiler{binary: binary}
}

// Compile validates the request, runs the compiler into a staging directory,
// and promotes the generated tree into req.OutDir on success. Every failure
// is fatal: generated stubs are a hard dependency of the application build.
func (c *Compiler) Compile(ctx context.Context, req CompileRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}

	if _, err := exec.LookPath(c.binary); err != nil {
		return buildpreperrors.ProtocUnavailable(c.binary, err)
	}

	staging := workspace.NewStaging("")
	if err := staging.Create(); err != nil {
		return buildpreperrors.StagingError("create", err)
	}
	defer func() {
		if err := staging.Cleanup(); err != nil {
			slog.Warn("Failed to clean up staging directory", logfields.Error(err))
		}
	}()

	args := buildArgs(req, staging.Path())
	cmd := exec.CommandContext(ctx, c.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Debug("Invoking protocol compiler", logfields.Tool(c.binary), slog.String("args", strings.Join(args, " ")))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return buildpreperrors.ProtocFailed(strings.Join(req.Files, ", "), err)
	}

	if err := staging.Promote(req.OutDir); err != nil {
		return buildpreperrors.StagingError("promote", err)
	}

	slog.Info("Protocol stub generation completed successfully",
		logfields.Tool(c.binary),
		slog.Int("files", len(req.Files)),
		logfields.Path(req.OutDir))
	return nil
}

// validateRequest enforces the request invariants: definition paths non-empty
// and every definition and include path present on disk.
func validateRequest(req CompileRequest) error {
	if len(req.Files) == 0 {
		return buildpreperrors.ValidationFailed("files", "at least one definition file is required")
	}
	for _, f := range req.Files {
		if _, err := os.Stat(f); err != nil {
			return buildpreperrors.DefinitionMissing(f)
		}
	}
	for _, inc := range req.Includes {
		if _, err := os.Stat(inc); err != nil {
			return buildpreperrors.IncludeMissing(inc)
		}
	}
	return nil
}

// buildArgs assembles the compiler argument list. Both message and service
// stub generation target the staging directory; proto3 optional fields are
// always permitted for schema compatibility.
func buildArgs(req CompileRequest, stagingDir string) []string {
	args := []string{"--experimental_allow_proto3_optional"}
	for _, inc := range req.Includes {
		args = append(args, "-I", inc)
	}
	args = append(args,
		fmt.Sprintf("--go_out=%s", stagingDir),
		"--go_opt=paths=source_relative",
	)
	if req.GenClient || req.GenServer {
		args = append(args,
			fmt.Sprintf("--go-grpc_out=%s", stagingDir),
			"--go-grpc_opt=paths=source_relative",
		)
	}
	args = append(args, req.Flags...)
	args = append(args, req.Files...)
	return args
}
