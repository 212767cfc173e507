package errors

import "fmt"

// ErrCode represents an error code
type ErrCode string

const (
	ErrCodeNotFound        ErrCode = "NOT_FOUND"
	ErrCodeRateLimited     ErrCode = "RATE_LIMITED"
	ErrCodeUnavailable     ErrCode = "UNAVAILABLE"
	ErrCodeCloneFailed     ErrCode = "CLONE_FAILED"
	ErrCodeUpdateFailed    ErrCode = "UPDATE_FAILED"
	ErrCodeToolUnavailable ErrCode = "TOOL_UNAVAILABLE"
	ErrCodeMetadataCorrupt ErrCode = "METADATA_CORRUPT"
	ErrCodeMetadataWrite   ErrCode = "METADATA_WRITE_FAILED"
)

// AppError represents an application error
type AppError struct {
	Code    ErrCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewRateLimitedError creates a new rate limited error
func NewRateLimitedError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeRateLimited,
		Message: message,
	}
}

// NewUnavailableError wraps a transport-level failure of the remote directory
func NewUnavailableError(message string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: message,
		Err:     err,
	}
}

// NewToolUnavailableError reports a missing version-control binary
func NewToolUnavailableError(binary string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeToolUnavailable,
		Message: fmt.Sprintf("%s is not installed or not in PATH", binary),
		Err:     err,
	}
}

// NewMetadataCorruptError reports an unreadable metadata document
func NewMetadataCorruptError(path string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMetadataCorrupt,
		Message: fmt.Sprintf("metadata document %s is not valid", path),
		Err:     err,
	}
}

// NewMetadataWriteError reports a failed metadata write
func NewMetadataWriteError(path string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeMetadataWrite,
		Message: fmt.Sprintf("failed to write metadata document %s", path),
		Err:     err,
	}
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsRateLimited checks if the error is a rate limited error
func IsRateLimited(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeRateLimited
	}
	return false
}

// IsToolUnavailable checks if the error reports a missing external binary
func IsToolUnavailable(err error) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code == ErrCodeToolUnavailable
	}
	return false
}
