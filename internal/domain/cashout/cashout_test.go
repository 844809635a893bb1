package cashout

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitchain-core/internal/domain/shared"
)

func TestNewReference_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^RMT[0-9A-F]{12}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref, err := NewReference()
		require.NoError(t, err)
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref], "reference %s repeated", ref)
		seen[ref] = true
	}
}

func TestNewCashout(t *testing.T) {
	intentID := uuid.New()
	queuedFor := time.Now().Add(2 * time.Second)

	c, err := NewCashout(intentID, shared.CashoutMethodUPI, "priya@upi", queuedFor)
	require.NoError(t, err)

	assert.Equal(t, intentID, c.IntentID)
	assert.Equal(t, shared.CashoutStatusQueued, c.Status)
	require.Len(t, c.Events, 1)
	assert.Equal(t, shared.CashoutStatusQueued, c.Events[0].Status)
	assert.Equal(t, "Cash-out request received", c.Events[0].Note)
	require.NotNil(t, c.NextActionDueAt)
	assert.Equal(t, queuedFor, *c.NextActionDueAt)
}

func TestNewCashout_Validation(t *testing.T) {
	_, err := NewCashout(uuid.New(), shared.CashoutMethod("CASH"), "priya@upi", time.Now())
	assert.ErrorIs(t, err, shared.ErrInvalidCashoutMethod)

	_, err = NewCashout(uuid.New(), shared.CashoutMethodBank, "  ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyPayoutTarget)
}

func TestNextStatus(t *testing.T) {
	next, err := NextStatus(shared.CashoutStatusQueued, false)
	require.NoError(t, err)
	assert.Equal(t, shared.CashoutStatusProcessing, next)

	// failed has no effect before PROCESSING resolves
	next, err = NextStatus(shared.CashoutStatusQueued, true)
	require.NoError(t, err)
	assert.Equal(t, shared.CashoutStatusProcessing, next)

	next, err = NextStatus(shared.CashoutStatusProcessing, false)
	require.NoError(t, err)
	assert.Equal(t, shared.CashoutStatusPaid, next)

	next, err = NextStatus(shared.CashoutStatusProcessing, true)
	require.NoError(t, err)
	assert.Equal(t, shared.CashoutStatusFailed, next)

	_, err = NextStatus(shared.CashoutStatusPaid, false)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = NextStatus(shared.CashoutStatusFailed, false)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestStepNote(t *testing.T) {
	assert.Equal(t, "Payment processing initiated", StepNote(shared.CashoutStatusProcessing))
	assert.Equal(t, "Payment completed successfully", StepNote(shared.CashoutStatusPaid))
	assert.Equal(t, "Payment failed - please retry", StepNote(shared.CashoutStatusFailed))
}

func TestCashoutStatus_IsTerminal(t *testing.T) {
	assert.False(t, shared.CashoutStatusQueued.IsTerminal())
	assert.False(t, shared.CashoutStatusProcessing.IsTerminal())
	assert.True(t, shared.CashoutStatusPaid.IsTerminal())
	assert.True(t, shared.CashoutStatusFailed.IsTerminal())
}

func TestErrCashoutNotFound_Is(t *testing.T) {
	err := ErrCashoutNotFound{Reference: "RMTAB12CD34EF56"}

	assert.ErrorIs(t, err, ErrCashoutNotFound{})
	assert.ErrorIs(t, err, ErrCashoutNotFound{Reference: "RMTAB12CD34EF56"})
	assert.NotErrorIs(t, err, ErrCashoutNotFound{Reference: "RMT000000000000"})
}
