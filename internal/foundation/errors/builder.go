package errors

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

// NewError starts a builder for an error with no cause.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{
		category: category,
		severity: SeverityError,
		message:  message,
		context:  make(ErrorContext),
	}
}

// WrapError starts a builder that wraps err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

// WithSeverity sets the error severity.
func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.severity = severity
	return b
}

// WithContext adds a context key-value pair.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.context = b.context.Set(key, value)
	return b
}

// WithCause sets the wrapped error.
func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.cause = err
	return b
}

// Fatal sets the severity to fatal.
func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	return b.WithSeverity(SeverityFatal)
}

// Warning sets the severity to warning.
func (b *ErrorBuilder) Warning() *ErrorBuilder {
	return b.WithSeverity(SeverityWarning)
}

// Build creates the final ClassifiedError.
func (b *ErrorBuilder) Build() *ClassifiedError {
	return &ClassifiedError{
		category: b.category,
		severity: b.severity,
		message:  b.message,
		cause:    b.cause,
		context:  b.context,
	}
}

// ConfigError creates a fatal configuration error.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

// ValidationError creates a fatal input validation error.
func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message).Fatal()
}

// TemplateError creates a template error.
func TemplateError(message string) *ErrorBuilder {
	return NewError(CategoryTemplate, message)
}

// BuildError creates a fatal build error.
func BuildError(message string) *ErrorBuilder {
	return NewError(CategoryBuild, message).Fatal()
}

// FileSystemError creates a filesystem error.
func FileSystemError(message string) *ErrorBuilder {
	return NewError(CategoryFileSystem, message)
}

// RuntimeError creates a fatal runtime error.
func RuntimeError(message string) *ErrorBuilder {
	return NewError(CategoryRuntime, message).Fatal()
}
