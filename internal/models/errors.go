// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

package models

import (
	"errors"
	"fmt"
)

// Machine-readable error codes carried in APIError.Code.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeSystemError     = "SYSTEM_ERROR"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ValidationError indicates bad input: a malformed filter, a disabled export
// format, an exceeded row cap. Validation errors are never retried and are
// surfaced to the caller with a descriptive message.
type ValidationError struct {
	Message string
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with optional structured details.
func NewValidationError(message string, details map[string]interface{}) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// NotFoundError indicates a missing resource: an activity, export job, saved
// view, or download file that does not exist (or has expired).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given resource and id.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// SystemError indicates a storage or render failure. System errors during
// export are logged with full context and surfaced as a failed job status;
// they never crash the process.
type SystemError struct {
	Op  string
	Err error
}

func (e *SystemError) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SystemError) Unwrap() error {
	return e.Err
}

// NewSystemError wraps an underlying failure with the operation that caused it.
func NewSystemError(op string, err error) *SystemError {
	return &SystemError{Op: op, Err: err}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err is (or wraps) a NotFoundError.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// ErrorCode maps an error to its machine-readable API code.
// Unrecognized errors are classified as system errors.
func ErrorCode(err error) string {
	switch {
	case IsValidationError(err):
		return CodeValidationError
	case IsNotFoundError(err):
		return CodeNotFound
	default:
		return CodeSystemError
	}
}

// ErrorDetails extracts structured details from a ValidationError, or nil.
func ErrorDetails(err error) map[string]interface{} {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Details
	}
	return nil
}
