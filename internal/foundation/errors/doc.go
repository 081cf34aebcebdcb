// Package errors provides the classified error type used across sitegen.
//
// A ClassifiedError carries an ErrorCategory, an ErrorSeverity and an
// ErrorContext. Errors are built with the fluent ErrorBuilder and presented by
// the CLIErrorAdapter, which maps categories to process exit codes.
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "write failed").
//		WithContext("path", out).
//		Build()
package errors
