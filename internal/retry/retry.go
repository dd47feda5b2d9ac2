// Package retry runs fallible operations with bounded attempts and
// exponential backoff, absorbing the final failure into a fallback value.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ligun0805/wallet-activity/internal/fault"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	Backoff      float64
}

// DefaultPolicy waits 1s after the first failure and doubles each time.
func DefaultPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, InitialDelay: time.Second, Backoff: 2.0}
}

type Controller struct {
	policy  Policy
	log     *zap.Logger
	sleep   Sleeper
	onRetry func(op string, attempt int, err error)
}

type Option func(*Controller)

func WithSleeper(s Sleeper) Option {
	return func(c *Controller) { c.sleep = s }
}

// WithObserver is called after every failed attempt.
func WithObserver(fn func(op string, attempt int, err error)) Option {
	return func(c *Controller) { c.onRetry = fn }
}

func New(policy Policy, log *zap.Logger, opts ...Option) *Controller {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Backoff <= 0 {
		policy.Backoff = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Controller{policy: policy, log: log, sleep: Sleep}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Do invokes op until it succeeds or the attempts run out. On exhaustion the
// fallback is returned together with the last error; callers that only want
// the absorbed result can ignore the error. Configuration errors and a done
// ctx end the loop early.
func Do[T any](ctx context.Context, c *Controller, op string, fn func(context.Context) (T, error), fallback T) (T, error) {
	delay := c.policy.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= c.policy.Attempts; attempt++ {
		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if c.onRetry != nil {
			c.onRetry(op, attempt, err)
		}
		if ctx.Err() != nil {
			return fallback, ctx.Err()
		}
		if !fault.IsRetryable(err) {
			c.log.Error("non-retryable failure",
				zap.String("op", op),
				zap.Stringer("kind", fault.KindOf(err)),
				zap.Error(err))
			return fallback, err
		}
		if attempt == c.policy.Attempts {
			break
		}
		c.log.Warn(fmt.Sprintf("Attempt %d/%d failed, retrying in %.1fs", attempt, c.policy.Attempts, delay.Seconds()),
			zap.String("op", op),
			zap.Stringer("kind", fault.KindOf(err)),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return fallback, err
		}
		delay = time.Duration(float64(delay) * c.policy.Backoff)
	}
	c.log.Error(fmt.Sprintf("All %d attempts failed", c.policy.Attempts),
		zap.String("op", op),
		zap.Error(lastErr))
	return fallback, lastErr
}
