package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is a failure carrying a category, a severity and structured context.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the error category.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the error severity.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// Message returns the error message without the cause.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Cause returns the underlying error.
func (e *ClassifiedError) Cause() error {
	return e.cause
}

// Context returns the error context.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// WithContext returns a copy of the error with an extra context value.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	return &ClassifiedError{
		category: e.category,
		severity: e.severity,
		message:  e.message,
		cause:    e.cause,
		context:  e.context.Merge(ErrorContext{key: value}),
	}
}

// Is reports whether target is a ClassifiedError with the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// IsCategory checks if the error belongs to a specific category.
func (e *ClassifiedError) IsCategory(category ErrorCategory) bool {
	return e.category == category
}

// IsFatal checks if the error should stop execution.
func (e *ClassifiedError) IsFatal() bool {
	return e.severity == SeverityFatal
}

// AsClassified finds the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if the first classified error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	if classified, ok := AsClassified(err); ok {
		return classified.IsCategory(category)
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.Category()
	}
	return CategoryInternal
}

// GetSeverity extracts the severity from an error, or returns SeverityError.
func GetSeverity(err error) ErrorSeverity {
	if classified, ok := AsClassified(err); ok {
		return classified.Severity()
	}
	return SeverityError
}
