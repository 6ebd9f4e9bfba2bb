package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/sony/gobreaker"

	"hotelops/internal/fault"
)

type Config struct {
	// Timeout bounds a single attempt against the collaborator.
	Timeout time.Duration
	// MaxRetries bounds additional attempts after the first.
	MaxRetries uint64
	// ConsecutiveFailures trips the breaker open.
	ConsecutiveFailures uint32
	// OpenInterval is how long the breaker stays open before probing.
	OpenInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:             3 * time.Second,
		MaxRetries:          3,
		ConsecutiveFailures: 5,
		OpenInterval:        10 * time.Second,
	}
}

// Caller wraps collaborator calls with a per-attempt timeout, bounded
// exponential backoff, and a circuit breaker. One Caller per collaborator
// so an unhealthy hotel service does not open the menu breaker.
type Caller struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

func New(name string, cfg Config) *Caller {
	return &Caller{
		cfg: cfg,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: cfg.OpenInterval,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
			},
			// A missing resource is a healthy answer from the collaborator,
			// it must not open the breaker for everyone else.
			IsSuccessful: func(err error) bool {
				return err == nil || fault.IsNotFound(err)
			},
		}),
	}
}

// Do runs op through the breaker, retrying transient failures with
// backoff. An open breaker fails fast without touching the collaborator.
func (c *Caller) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := c.breaker.Execute(func() (any, error) {
		policy := backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.cfg.MaxRetries),
			ctx,
		)

		return nil, backoff.Retry(func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
			defer cancel()

			return op(attemptCtx)
		}, policy)
	})

	return err
}

// DoOnce runs op with only the attempt timeout, no retry and no breaker
// accounting. Mutating registry calls use it: they are best-effort and
// must not be replayed.
func (c *Caller) DoOnce(ctx context.Context, op func(ctx context.Context) error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	return op(attemptCtx)
}
