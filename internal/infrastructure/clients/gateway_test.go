package clients

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "hotelops/internal/domain/payments"
)

func chargeRequest() domain.ChargeRequest {
	return domain.ChargeRequest{
		BookingNumber: "RB-AAAA0001",
		Amount:        decimal.NewFromInt(200),
		Currency:      "USD",
		Method:        domain.MethodCreditCard,
	}
}

func TestSimulatedGatewayAlwaysApproves(t *testing.T) {
	gateway := NewSimulatedGatewayWithSource(1.0, rand.NewSource(1))

	for i := 0; i < 50; i++ {
		result, err := gateway.Charge(context.Background(), chargeRequest())
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Regexp(t, `^TXN-`, result.TransactionID)
		assert.NotEmpty(t, result.GatewayRef)
		assert.Empty(t, result.FailureReason)
	}
}

func TestSimulatedGatewayAlwaysDeclines(t *testing.T) {
	gateway := NewSimulatedGatewayWithSource(0.0, rand.NewSource(1))

	for i := 0; i < 50; i++ {
		result, err := gateway.Charge(context.Background(), chargeRequest())
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "payment declined by gateway", result.FailureReason)
		assert.Empty(t, result.TransactionID)
	}
}

func TestSimulatedGatewayRoughlyHonorsRate(t *testing.T) {
	gateway := NewSimulatedGatewayWithSource(0.95, rand.NewSource(42))

	successes := 0
	const n = 1000
	for i := 0; i < n; i++ {
		result, err := gateway.Charge(context.Background(), chargeRequest())
		require.NoError(t, err)
		if result.Success {
			successes++
		}
	}

	assert.Greater(t, successes, 900)
	assert.Less(t, successes, n)
}
