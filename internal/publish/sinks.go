package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	buildpreperrors "git.home.luguber.info/inful/buildprep/internal/errors"
)

// Sink writes an assembled constant set to its destination. A write failure
// aborts the run: it is the only failure mode left once provenance has been
// collected, since assembly itself cannot fail.
type Sink interface {
	Write(constants Constants) error
}

// GoSink renders the constants as a generated Go source file with one string
// constant per entry, consumable by the application at compile time.
type GoSink struct {
	Path    string // Destination file
	Package string // Package name for the generated file
}

// Write renders and writes the generated Go file.
func (s GoSink) Write(constants Constants) error {
	var b strings.Builder
	b.WriteString("// Code generated by buildprep. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s exposes build-time constants for runtime introspection.\n", s.Package)
	fmt.Fprintf(&b, "package %s\n\nconst (\n", s.Package)
	for _, k := range constants {
		fmt.Fprintf(&b, "\t%s = %q\n", k.Name, k.Value)
	}
	b.WriteString(")\n")

	if err := writeFile(s.Path, b.String()); err != nil {
		return buildpreperrors.PublishWriteError(s.Path, err)
	}
	return nil
}

// EnvSink renders the constants as KEY=VALUE lines for consumption by
// ldflags wiring or CI steps.
type EnvSink struct {
	Path string
}

// Write renders and writes the env-format file.
func (s EnvSink) Write(constants Constants) error {
	var b strings.Builder
	for _, k := range constants {
		fmt.Fprintf(&b, "%s=%s\n", k.Name, k.Value)
	}
	if err := writeFile(s.Path, b.String()); err != nil {
		return buildpreperrors.PublishWriteError(s.Path, err)
	}
	return nil
}

func writeFile(path, content string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
