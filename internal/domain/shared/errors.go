package shared

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable machine-readable code clients branch on
type ErrorCode string

const (
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeExpired            ErrorCode = "EXPIRED"
	CodeVerificationFailed ErrorCode = "VERIFICATION_FAILED"
	CodeNotConfirmed       ErrorCode = "NOT_CONFIRMED"
	CodeRateUnavailable    ErrorCode = "RATE_UNAVAILABLE"
	CodeConflict           ErrorCode = "CONFLICT"
)

// DomainError is the error type crossing component boundaries. Retryable
// tells the client whether retrying the same call can succeed ("try again")
// or whether it must start over with a new intent.
type DomainError struct {
	Code      ErrorCode
	Message   string
	Retryable bool
	Cause     error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError with the same code
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NewValidationError(message string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message}
}

func NewNotFoundError(message string) *DomainError {
	return &DomainError{Code: CodeNotFound, Message: message}
}

func NewForbiddenError(message string) *DomainError {
	return &DomainError{Code: CodeForbidden, Message: message}
}

func NewExpiredError(message string) *DomainError {
	return &DomainError{Code: CodeExpired, Message: message}
}

// NewVerificationError wraps a settlement verification failure; retryable
// distinguishes a transient verifier outage from a definitive on-chain failure
func NewVerificationError(message string, retryable bool, cause error) *DomainError {
	return &DomainError{Code: CodeVerificationFailed, Message: message, Retryable: retryable, Cause: cause}
}

func NewNotConfirmedError(message string) *DomainError {
	return &DomainError{Code: CodeNotConfirmed, Message: message}
}

func NewConflictError(message string) *DomainError {
	return &DomainError{Code: CodeConflict, Message: message}
}

func NewRateUnavailableError(cause error) *DomainError {
	return &DomainError{Code: CodeRateUnavailable, Message: "no rate source or cached rate available", Retryable: true, Cause: cause}
}

// CodeOf extracts the stable code from an error chain, or empty if none
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the error chain carries a retryable DomainError
func IsRetryable(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Retryable
	}
	return false
}
