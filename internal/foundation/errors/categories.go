package errors

import "maps"

// ErrorCategory is the broad class of a failure, used to pick exit codes and log levels.
type ErrorCategory string

const (
	// CategoryConfig covers configuration files and command line input.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryTemplate covers template lookup, parsing and execution.
	CategoryTemplate ErrorCategory = "template"
	CategoryMarkdown ErrorCategory = "markdown"

	// CategoryBuild covers tree construction and rendering.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryGit        ErrorCategory = "git"

	// CategoryRuntime covers watch mode and process level failures.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current build
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded output
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
