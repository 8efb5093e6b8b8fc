// Package errors provides structured error handling for the application.
// It defines AppError type with error codes for consistent API responses.
package errors

import (
	"errors"
	"fmt"
)

// Error codes organized by category
const (
	// General errors (1000-1099)
	CodeSuccess       = 0
	CodeUnknown       = 1000
	CodeInvalidParams = 1001
	CodeNotFound      = 1002
	CodeUnauthorized  = 1003

	// Media probe errors (1100-1199)
	CodeInvalidMedia       = 1100
	CodeDurationExceeded   = 1101
	CodeResolutionExceeded = 1102
	CodeProbeTimeout       = 1103
	CodeProbeFailed        = 1104

	// Render errors (1200-1299)
	CodeRenderFailed    = 1200
	CodeRenderTimeout   = 1201
	CodeRenderCancelled = 1202
	CodeOutputMissing   = 1203
	CodeQueueFull       = 1204

	// Content analysis errors (1300-1399)
	CodeAnalysisFailed   = 1300
	CodeTranscribeFailed = 1301
	CodeNoTranscript     = 1302

	// Storage errors (1400-1499)
	CodeDBError        = 1400
	CodeFileNotFound   = 1401
	CodeFileWriteError = 1402
	CodeUploadFailed   = 1403

	// Cleanup errors (1500-1599)
	CodeSweepFailed = 1500
)

// AppError represents a structured application error
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithDetail wraps an error with additional detail
func WrapWithDetail(code int, message string, detail string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Detail:  detail,
		Cause:   cause,
	}
}

// Is checks if the target error is an AppError with the specified code
func Is(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts error code from error, returns CodeUnknown if not AppError
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMessage extracts message from error
func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// Predefined common errors
var (
	ErrInvalidParams = New(CodeInvalidParams, "Invalid parameters")
	ErrNotFound      = New(CodeNotFound, "Resource not found")
	ErrUnauthorized  = New(CodeUnauthorized, "Unauthorized")

	// Probe
	ErrInvalidMedia       = New(CodeInvalidMedia, "No decodable video stream found")
	ErrDurationExceeded   = New(CodeDurationExceeded, "Video duration exceeds policy limit")
	ErrResolutionExceeded = New(CodeResolutionExceeded, "Video resolution exceeds policy limit")
	ErrProbeTimeout       = New(CodeProbeTimeout, "Media probe timed out")

	// Render
	ErrRenderFailed    = New(CodeRenderFailed, "Clip render failed")
	ErrRenderTimeout   = New(CodeRenderTimeout, "Clip render timed out")
	ErrRenderCancelled = New(CodeRenderCancelled, "Clip render cancelled")
	ErrQueueFull       = New(CodeQueueFull, "Render queue is full")

	// Analysis
	ErrAnalysisFailed   = New(CodeAnalysisFailed, "Content analysis failed")
	ErrTranscribeFailed = New(CodeTranscribeFailed, "Transcription failed")

	// Storage
	ErrDBError      = New(CodeDBError, "Database error")
	ErrFileNotFound = New(CodeFileNotFound, "File not found")
)
