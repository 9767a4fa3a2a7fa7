// Package workspace manages the staging directory for generated output.
// Stubs are generated into an ephemeral timestamped directory and promoted
// into the final output directory only on success, so a failed generation
// never leaves partial output behind.
package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/buildprep/internal/logfields"
)

// Staging handles the lifecycle of an ephemeral generation directory.
type Staging struct {
	baseDir string
	dir     string
}

// NewStaging creates a staging manager rooted at baseDir (os.TempDir if empty).
func NewStaging(baseDir string) *Staging {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Staging{baseDir: baseDir}
}

// Create creates a timestamped staging directory.
func (s *Staging) Create() error {
	timestamp := time.Now().Format("20060102-150405")
	dir, err := os.MkdirTemp(s.baseDir, fmt.Sprintf("buildprep-%s-", timestamp))
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	s.dir = dir
	slog.Debug("Created staging directory", logfields.Path(dir))
	return nil
}

// Path returns the staging directory path.
func (s *Staging) Path() string {
	return s.dir
}

// Promote moves everything under the staging directory into dst, creating
// dst as needed. Existing files in dst are overwritten; files not touched by
// this run are left alone.
func (s *Staging) Promote(dst string) error {
	if s.dir == "" {
		return fmt.Errorf("staging directory not created")
	}
	if err := os.MkdirAll(dst, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			if rel == "." {
				return nil
			}
			return os.MkdirAll(target, 0o750)
		}
		return moveFile(path, target)
	})
	if err != nil {
		return fmt.Errorf("failed to promote staged output: %w", err)
	}
	slog.Debug("Promoted staged output", logfields.Path(dst))
	return nil
}

// Cleanup removes the staging directory and everything still in it.
func (s *Staging) Cleanup() error {
	if s.dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("failed to remove staging directory: %w", err)
	}
	slog.Debug("Removed staging directory", logfields.Path(s.dir))
	s.dir = ""
	return nil
}

// moveFile renames when possible and falls back to copy for cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
