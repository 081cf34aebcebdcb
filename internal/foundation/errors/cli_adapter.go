package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns errors into exit codes and user-facing messages.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	stderr  io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		stderr:  os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if classified, ok := AsClassified(err); ok {
		return exitCodeFromCategory(classified.Category())
	}
	return 1
}

func exitCodeFromCategory(category ErrorCategory) int {
	switch category {
	case CategoryConfig:
		return 1 // Missing or unreadable configuration
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryTemplate, CategoryMarkdown:
		return 3 // Content error
	case CategoryNotFound:
		return 4
	case CategoryBuild, CategoryFileSystem, CategoryGit:
		return 11 // Build error
	case CategoryRuntime:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1
	}
}

// FormatError formats an error for display on stderr.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return classified.Error()
	}
	if classified.Category() == CategoryInternal {
		return "Internal error occurred (use --debug for details)"
	}
	if cause := classified.Cause(); cause != nil {
		return fmt.Sprintf("Error: %s: %v", classified.Message(), cause)
	}
	return "Error: " + classified.Message()
}

// HandleError logs err, prints it and exits with the matching code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.stderr, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.IsFatal()
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if cause := classified.Cause(); cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(classified.Severity()), classified.Message(), attrs...)
}

func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
