package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	// Test without cause
	err := New(CodeInvalidMedia, "Test error")
	assert.Equal(t, "[1100] Test error", err.Error())

	// Test with cause
	cause := errors.New("underlying error")
	errWithCause := Wrap(CodeInvalidMedia, "Test error", cause)
	assert.Contains(t, errWithCause.Error(), "underlying error")
	assert.Contains(t, errWithCause.Error(), "1100")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(CodeRenderFailed, "Render failed", cause)

	// Test Unwrap
	assert.Equal(t, cause, err.Unwrap())

	// Test errors.Is
	assert.True(t, errors.Is(err, cause))
}

func TestIs(t *testing.T) {
	err := New(CodeRenderTimeout, "Render timed out")

	assert.True(t, Is(err, CodeRenderTimeout))
	assert.False(t, Is(err, CodeInvalidMedia))

	// Test with regular error
	regularErr := errors.New("regular error")
	assert.False(t, Is(regularErr, CodeRenderTimeout))
}

func TestGetCode(t *testing.T) {
	// AppError
	appErr := New(CodeAnalysisFailed, "Analysis failed")
	assert.Equal(t, CodeAnalysisFailed, GetCode(appErr))

	// Regular error returns CodeUnknown
	regularErr := errors.New("regular error")
	assert.Equal(t, CodeUnknown, GetCode(regularErr))
}

func TestGetMessage(t *testing.T) {
	// AppError
	appErr := New(CodeFileNotFound, "File not found")
	assert.Equal(t, "File not found", GetMessage(appErr))

	// Regular error returns error message
	regularErr := errors.New("regular error message")
	assert.Equal(t, "regular error message", GetMessage(regularErr))
}

func TestWrapWithDetail(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapWithDetail(CodeAnalysisFailed, "Analysis failed", "provider: openai", cause)

	assert.Equal(t, CodeAnalysisFailed, err.Code)
	assert.Equal(t, "Analysis failed", err.Message)
	assert.Equal(t, "provider: openai", err.Detail)
	assert.Equal(t, cause, err.Cause)
}

func TestPredefinedErrors(t *testing.T) {
	// Verify predefined errors have correct codes
	assert.Equal(t, CodeInvalidParams, ErrInvalidParams.Code)
	assert.Equal(t, CodeInvalidMedia, ErrInvalidMedia.Code)
	assert.Equal(t, CodeDurationExceeded, ErrDurationExceeded.Code)
	assert.Equal(t, CodeRenderFailed, ErrRenderFailed.Code)
	assert.Equal(t, CodeDBError, ErrDBError.Code)
}
