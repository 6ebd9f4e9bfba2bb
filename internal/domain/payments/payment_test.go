package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusSuccess))
	assert.True(t, StatusPending.CanTransitionTo(StatusFailed))
	assert.True(t, StatusSuccess.CanTransitionTo(StatusRefunded))

	t.Run("failed payments stay failed", func(t *testing.T) {
		assert.False(t, StatusFailed.CanTransitionTo(StatusSuccess))
		assert.False(t, StatusFailed.CanTransitionTo(StatusRefunded))
	})

	t.Run("refunds are final", func(t *testing.T) {
		assert.False(t, StatusRefunded.CanTransitionTo(StatusSuccess))
		assert.False(t, StatusRefunded.CanTransitionTo(StatusPending))
	})

	t.Run("success cannot fail after the fact", func(t *testing.T) {
		assert.False(t, StatusSuccess.CanTransitionTo(StatusFailed))
	})
}

func TestIdentifiers(t *testing.T) {
	assert.Regexp(t, `^PAY-[A-Z0-9]{8}$`, NewPaymentID())
	assert.Regexp(t, `^TXN-[A-Z0-9]{12}$`, NewTransactionID())
}
