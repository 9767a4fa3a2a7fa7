package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	if bpe, ok := err.(*BuildPrepError); ok {
		return a.exitCodeFromCategory(bpe)
	}

	return 1
}

// exitCodeFromCategory maps BuildPrepError to exit codes.
func (a *CLIErrorAdapter) exitCodeFromCategory(err *BuildPrepError) int {
	switch err.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryProtoc:
		return 8 // External compiler error
	case CategoryManifest:
		return 9 // Manifest extraction error
	case CategoryPublish, CategoryFileSystem:
		return 11 // Output error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	if bpe, ok := err.(*BuildPrepError); ok {
		return a.formatBuildPrep(bpe)
	}

	return fmt.Sprintf("Error: %v", err)
}

// formatBuildPrep formats a BuildPrepError for display.
func (a *CLIErrorAdapter) formatBuildPrep(err *BuildPrepError) string {
	if a.verbose {
		return err.Error()
	}

	switch err.Category {
	case CategoryConfig, CategoryValidation:
		return err.Message
	default:
		return fmt.Sprintf("%s: %s", err.Category, err.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	fmt.Fprintf(os.Stderr, "%s\n", message)
	os.Exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}

	if bpe, ok := err.(*BuildPrepError); ok {
		return bpe.Category == CategoryInternal || bpe.Severity == SeverityFatal
	}

	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	if bpe, ok := err.(*BuildPrepError); ok {
		level := a.slogLevelFromSeverity(bpe.Severity)
		attrs := []slog.Attr{
			slog.String("category", string(bpe.Category)),
		}

		a.logger.LogAttrs(nil, level, bpe.Message, attrs...)
		return
	}

	a.logger.Error("Unclassified error", "error", err)
}

// slogLevelFromSeverity converts BuildPrepError severity to slog level.
func (a *CLIErrorAdapter) slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityWarning:
		return slog.LevelWarn
	case SeverityFatal:
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
