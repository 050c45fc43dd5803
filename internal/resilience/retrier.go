package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/testforge/uicore/internal/configurations"
)

// ActionRetrier repeats an action that failed with one of the handled errors
type ActionRetrier struct {
	retry   configurations.RetryConfiguration
	onRetry func(attempt, max int, err error)
}

func NewActionRetrier(retry configurations.RetryConfiguration) *ActionRetrier {
	return &ActionRetrier{retry: retry}
}

// MaxRetries is the number of repeats after the first attempt
func (r *ActionRetrier) MaxRetries() int {
	return r.retry.Number
}

// OnRetry registers a hook called before each repeated attempt
func (r *ActionRetrier) OnRetry(fn func(attempt, max int, err error)) *ActionRetrier {
	r.onRetry = fn
	return r
}

type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }
func (e *stopError) Unwrap() error { return e.err }

// Stop marks err as final: Do returns it unwrapped without retrying, even
// when it matches a handled error.
func Stop(err error) error {
	if err == nil {
		return nil
	}
	return &stopError{err: err}
}

// Do runs fn and retries it up to the configured number of times while it
// fails with an error matching handled. Other errors are returned at once.
func (r *ActionRetrier) Do(ctx context.Context, fn func(ctx context.Context) error, handled ...error) error {
	op := func() error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		var stop *stopError
		if errors.As(err, &stop) {
			return backoff.Permanent(stop.err)
		}
		for _, h := range handled {
			if errors.Is(err, h) {
				return err
			}
		}
		return backoff.Permanent(err)
	}

	interval := r.retry.PollingInterval
	if interval < minPollingInterval {
		interval = minPollingInterval
	}
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), uint64(r.retry.Number)),
		ctx,
	)

	attempt := 0
	notify := func(err error, _ time.Duration) {
		attempt++
		if r.onRetry != nil {
			r.onRetry(attempt, r.retry.Number, err)
		}
	}
	return backoff.RetryNotify(op, b, notify)
}

// DoWithResult is Do for actions that produce a value
func DoWithResult[T any](ctx context.Context, r *ActionRetrier, fn func(ctx context.Context) (T, error), handled ...error) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	}, handled...)
	return result, err
}
