package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelops/internal/fault"
)

func testConfig() Config {
	return Config{
		Timeout:             time.Second,
		MaxRetries:          2,
		ConsecutiveFailures: 3,
		OpenInterval:        time.Minute,
	}
}

func TestDoRetriesTransientFailures(t *testing.T) {
	caller := New("test", testConfig())

	attempts := 0
	err := caller.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	caller := New("test", testConfig())
	sentinel := errors.New("not found")

	attempts := 0
	err := caller.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return backoff.Permanent(sentinel)
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, attempts)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	caller := New("test", cfg)

	boom := errors.New("boom")
	for i := 0; i < int(cfg.ConsecutiveFailures); i++ {
		err := caller.Do(context.Background(), func(ctx context.Context) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
	}

	attempts := 0
	err := caller.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, attempts)
}

func TestNotFoundDoesNotOpenBreaker(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRetries = 0
	caller := New("test", cfg)

	// a burst of lookups for ids that do not exist
	for i := 0; i < 10; i++ {
		err := caller.Do(context.Background(), func(ctx context.Context) error {
			return backoff.Permanent(fault.NotFound("resource", "room-nope"))
		})
		require.True(t, fault.IsNotFound(err), err)
	}

	attempts := 0
	err := caller.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoOnceAppliesTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 10 * time.Millisecond
	caller := New("test", cfg)

	err := caller.DoOnce(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoOnceSkipsBreakerAccounting(t *testing.T) {
	cfg := testConfig()
	caller := New("test", cfg)

	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		_ = caller.DoOnce(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}

	// best-effort failures must not open the breaker for authoritative calls
	err := caller.Do(context.Background(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}
