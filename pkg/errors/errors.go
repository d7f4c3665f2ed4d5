/*
Copyright © 2025 Syskeep Authors
SPDX-License-Identifier: Apache-2.0
*/

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeModuleCapture indicates a single inspection probe failed.
	// This is isolated per category and never fatal to the snapshot.
	ErrCodeModuleCapture ErrorCode = "MODULE_CAPTURE"
	// ErrCodeSnapshotNotFound indicates the snapshot directory is missing
	// or unreadable. Fatal to the invocation that needed it.
	ErrCodeSnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	// ErrCodeValidation indicates a requested restoration category has no
	// usable record. The category is skipped, the run continues.
	ErrCodeValidation ErrorCode = "VALIDATION"
	// ErrCodeBackupWrite indicates a backup could not be written before a
	// mutating step. The category fails closed without mutating.
	ErrCodeBackupWrite ErrorCode = "BACKUP_WRITE"
	// ErrCodeApply indicates a restoration action failed mid-execution.
	ErrCodeApply ErrorCode = "APPLY"
	// ErrCodeRemoteUnreachable indicates the target host is not reachable.
	// Fatal to the whole run.
	ErrCodeRemoteUnreachable ErrorCode = "REMOTE_UNREACHABLE"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// StructuredError provides structured error information for better
// observability. It includes an error code for programmatic handling, a
// human-readable message, the underlying cause, and optional context.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new StructuredError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf extracts the ErrorCode from err, walking the wrap chain.
// Returns ErrCodeInternal when err carries no StructuredError.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err (or any error it wraps) carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code == code
	}
	return false
}
