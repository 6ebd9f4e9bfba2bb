package clients

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	domain "hotelops/internal/domain/payments"
)

// SimulatedGateway stands in for a real payment processor. Outcomes are
// drawn from successRate; the rest of the system only sees the
// payments.Gateway contract.
type SimulatedGateway struct {
	successRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedGateway(successRate float64) *SimulatedGateway {
	return NewSimulatedGatewayWithSource(successRate, rand.NewSource(time.Now().UnixNano()))
}

// NewSimulatedGatewayWithSource pins the randomness, which tests use to
// force deterministic outcomes.
func NewSimulatedGatewayWithSource(successRate float64, source rand.Source) *SimulatedGateway {
	return &SimulatedGateway{
		successRate: successRate,
		rng:         rand.New(source),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResult, error) {
	log.FromContext(ctx).
		WithField("booking_number", req.BookingNumber).
		WithField("amount", req.Amount.String()).
		Info("Processing payment through gateway")

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll >= g.successRate {
		return domain.ChargeResult{
			Success:       false,
			FailureReason: "payment declined by gateway",
		}, nil
	}

	return domain.ChargeResult{
		Success:       true,
		TransactionID: domain.NewTransactionID(),
		GatewayRef:    fmt.Sprintf("GATEWAY-REF-%d", time.Now().UnixMilli()),
	}, nil
}
