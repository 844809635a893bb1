package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is_MatchesByCode(t *testing.T) {
	err := NewExpiredError("intent expired")

	assert.ErrorIs(t, err, &DomainError{Code: CodeExpired})
	assert.NotErrorIs(t, err, &DomainError{Code: CodeNotFound})
}

func TestDomainError_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewVerificationError("verifier unreachable", true, cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "VERIFICATION_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(NewValidationError("bad amount")))
	assert.Equal(t, CodeNotFound, CodeOf(fmt.Errorf("wrapped: %w", NewNotFoundError("missing"))))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestIsRetryable(t *testing.T) {
	retryable := NewVerificationError("verifier unreachable", true, nil)
	definitive := NewVerificationError("transaction reverted", false, nil)

	assert.True(t, IsRetryable(retryable))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", retryable)))
	assert.False(t, IsRetryable(definitive))
	assert.False(t, IsRetryable(errors.New("plain")))

	require.True(t, IsRetryable(NewRateUnavailableError(nil)), "rate outages are always retryable")
}
