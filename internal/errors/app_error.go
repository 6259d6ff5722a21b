package errors

import "fmt"

// Error codes used across the submission pipeline.
const (
	CodeConfigMissing    = "CONFIG_MISSING"
	CodeOriginDenied     = "ORIGIN_DENIED"
	CodeBotSuspected     = "BOT_SUSPECTED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeTransportFailed  = "TRANSPORT_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError represents a pipeline error with a stable code
type AppError struct {
	Code    string
	Message string
	Cause   error

	// Fields carries the failing field names for validation errors.
	Fields []string

	// Details carries structured context surfaced to the caller.
	Details map[string]any
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func NewConfigError(message string) *AppError {
	return &AppError{Code: CodeConfigMissing, Message: message}
}

func NewOriginDenied(message string) *AppError {
	return &AppError{Code: CodeOriginDenied, Message: message}
}

func NewBotSuspected(message string) *AppError {
	return &AppError{Code: CodeBotSuspected, Message: message}
}

func NewValidationFailed(fields []string) *AppError {
	return &AppError{Code: CodeValidationFailed, Message: "Validation failed", Fields: fields}
}

func NewRateLimited(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message}
}

func NewTransportFailed(message string) *AppError {
	return &AppError{Code: CodeTransportFailed, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}
