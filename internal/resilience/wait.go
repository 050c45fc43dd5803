// Package resilience provides bounded polling waits and retries for
// operations against a live page, which may lag behind or rebuild its DOM.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/testforge/uicore/internal/configurations"
	"github.com/testforge/uicore/internal/domain"
)

// minPollingInterval keeps a misconfigured zero interval from spinning
const minPollingInterval = 10 * time.Millisecond

var errNotSatisfied = errors.New("condition not satisfied yet")

// Condition is evaluated on every poll. An error that is not ignored ends the wait.
type Condition func(ctx context.Context) (bool, error)

// WaitOptions overrides the configured bounds for a single wait
type WaitOptions struct {
	Timeout         time.Duration
	PollingInterval time.Duration
	Message         string
	IgnoredErrors   []error
}

// WaitOption mutates WaitOptions
type WaitOption func(*WaitOptions)

// WithTimeout bounds the wait; zero means a single evaluation
func WithTimeout(d time.Duration) WaitOption {
	return func(o *WaitOptions) { o.Timeout = d }
}

func WithPollingInterval(d time.Duration) WaitOption {
	return func(o *WaitOptions) { o.PollingInterval = d }
}

// WithMessage names the awaited condition in timeout errors
func WithMessage(msg string) WaitOption {
	return func(o *WaitOptions) { o.Message = msg }
}

// IgnoringErrors treats the given errors (matched with errors.Is) as "not yet"
func IgnoringErrors(errs ...error) WaitOption {
	return func(o *WaitOptions) { o.IgnoredErrors = append(o.IgnoredErrors, errs...) }
}

func (o WaitOptions) ignores(err error) bool {
	for _, ignored := range o.IgnoredErrors {
		if errors.Is(err, ignored) {
			return true
		}
	}
	return false
}

// ConditionalWait polls conditions until they hold or the timeout elapses
type ConditionalWait struct {
	timeouts configurations.TimeoutConfiguration
}

func NewConditionalWait(timeouts configurations.TimeoutConfiguration) *ConditionalWait {
	return &ConditionalWait{timeouts: timeouts}
}

// Timeouts returns the configuration the wait defaults to
func (w *ConditionalWait) Timeouts() configurations.TimeoutConfiguration {
	return w.timeouts
}

func (w *ConditionalWait) options(opts []WaitOption) WaitOptions {
	o := WaitOptions{
		Timeout:         w.timeouts.Condition,
		PollingInterval: w.timeouts.PollingInterval,
		Message:         "condition",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.PollingInterval < minPollingInterval {
		o.PollingInterval = minPollingInterval
	}
	return o
}

// WaitForTrue returns nil once cond holds. On timeout it returns a
// domain.ErrTimeout error whose cause is the last ignored error, if any.
func (w *ConditionalWait) WaitForTrue(ctx context.Context, cond Condition, opts ...WaitOption) error {
	o := w.options(opts)

	var lastErr error
	op := func() error {
		ok, err := cond(ctx)
		if err != nil {
			if !o.ignores(err) {
				return backoff.Permanent(err)
			}
			lastErr = err
			return errNotSatisfied
		}
		if !ok {
			return errNotSatisfied
		}
		return nil
	}

	var err error
	if o.Timeout <= 0 {
		err = op()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Err
		}
	} else {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = o.PollingInterval
		b.MaxInterval = o.PollingInterval
		b.Multiplier = 1
		b.RandomizationFactor = 0
		b.MaxElapsedTime = o.Timeout
		err = backoff.Retry(op, backoff.WithContext(b, ctx))
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errNotSatisfied):
		return domain.Timeout(o.Message, o.Timeout, lastErr)
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return fmt.Errorf("waiting for %s: %w", o.Message, err)
	default:
		return err
	}
}

// WaitFor reports whether cond held within the timeout. Errors count as false.
func (w *ConditionalWait) WaitFor(ctx context.Context, cond Condition, opts ...WaitOption) bool {
	return w.WaitForTrue(ctx, cond, opts...) == nil
}
