package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for conversational operations.
type ErrorCode string

const (
	// ErrCodeClassificationFailed indicates the intent classifier backend failed.
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"
	// ErrCodeValidationFailed indicates a form field failed validation.
	// Field-level and recoverable: the form re-prompts rather than surfacing it.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrCodeRetrievalFailed indicates the retrieval collaborator failed.
	ErrCodeRetrievalFailed ErrorCode = "RETRIEVAL_FAILED"
	// ErrCodeGenerationFailed indicates the generation collaborator failed.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeExtractionFailed indicates date/time extraction failed or was ambiguous.
	ErrCodeExtractionFailed ErrorCode = "EXTRACTION_FAILED"
	// ErrCodePersistenceFailed indicates the appointment store rejected a save.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	// ErrCodeTimeout indicates a collaborator call timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeSessionNotFound indicates the session id is unknown.
	// Callers treat this as "create a new session", not as a failure.
	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// CoreError represents a structured error for the conversational core.
type CoreError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *CoreError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// ClassificationFailed creates a classification failure error.
func ClassificationFailed(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeClassificationFailed, Message: msg, Cause: cause}
}

// ValidationFailed creates a field validation error.
func ValidationFailed(field, msg string) *CoreError {
	return &CoreError{Code: ErrCodeValidationFailed, Message: fmt.Sprintf("%s: %s", field, msg)}
}

// RetrievalFailed creates a retrieval failure error.
func RetrievalFailed(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeRetrievalFailed, Message: msg, Cause: cause}
}

// GenerationFailed creates a generation failure error.
func GenerationFailed(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeGenerationFailed, Message: msg, Cause: cause}
}

// ExtractionFailed creates a date extraction failure error.
func ExtractionFailed(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeExtractionFailed, Message: msg, Cause: cause}
}

// PersistenceFailed creates a persistence failure error.
func PersistenceFailed(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodePersistenceFailed, Message: msg, Cause: cause}
}

// Timeout creates a timeout error.
func Timeout(msg string, cause error) *CoreError {
	return &CoreError{Code: ErrCodeTimeout, Message: msg, Cause: cause}
}

// SessionNotFound creates a session-not-found error.
func SessionNotFound(sessionID string) *CoreError {
	return &CoreError{
		Code:    ErrCodeSessionNotFound,
		Message: fmt.Sprintf("session not found: %s", sessionID),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(cause error, code ErrorCode, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a CoreError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if coreErr, ok := err.(*CoreError); ok {
		return coreErr.Code
	}
	return defaultCode
}
