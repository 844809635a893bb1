package receipt

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShareToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{64}$`)

	first, err := NewShareToken()
	require.NoError(t, err)
	second, err := NewShareToken()
	require.NoError(t, err)

	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.NotEqual(t, first, second)
}

func TestReceipt_ShareTokenValid(t *testing.T) {
	token, err := NewShareToken()
	require.NoError(t, err)

	now := time.Now()
	r := &Receipt{
		ShareToken:          token,
		ShareTokenExpiresAt: now.Add(time.Hour),
	}

	assert.True(t, r.ShareTokenValid(token, now))
	assert.False(t, r.ShareTokenValid("wrong-token", now))
	assert.False(t, r.ShareTokenValid("", now))
	assert.False(t, r.ShareTokenValid(token, now.Add(time.Hour)), "expiry is exclusive")
	assert.False(t, r.ShareTokenValid(token, now.Add(2*time.Hour)))
}
