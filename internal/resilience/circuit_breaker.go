package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a CircuitBreaker
type BreakerState int32

const (
	// BreakerClosed lets calls through
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects calls until the open timeout passes
	BreakerOpen
	// BreakerHalfOpen lets a single probe through
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned without calling through while the breaker is open
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig configures a CircuitBreaker
type CircuitBreakerConfig struct {
	// Name identifies the breaker in state change callbacks
	Name string
	// FailureThreshold is the number of consecutive failures that opens the breaker
	FailureThreshold int
	// OpenTimeout is how long the breaker stays open before probing
	OpenTimeout time.Duration
	// OnStateChange is called with the lock released
	OnStateChange func(name string, from, to BreakerState)
}

// CircuitBreaker stops calling a collaborator that keeps failing. It is used
// for best-effort side effects (artifact uploads) that must not slow down
// every failing test once the backend is gone.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
	probing  bool
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	return &CircuitBreaker{cfg: cfg, now: time.Now}
}

// State returns the current state, moving an expired open breaker to half-open
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	state, change := cb.currentLocked()
	cb.mu.Unlock()
	cb.notify(change)
	return state
}

// Do runs fn unless the breaker is open. Context errors do not count as
// failures of the collaborator.
func (cb *CircuitBreaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cb.mu.Lock()
	state, change := cb.currentLocked()
	if state == BreakerOpen || (state == BreakerHalfOpen && cb.probing) {
		cb.mu.Unlock()
		cb.notify(change)
		return ErrCircuitOpen
	}
	if state == BreakerHalfOpen {
		cb.probing = true
	}
	cb.mu.Unlock()
	cb.notify(change)

	err := fn(ctx)

	cb.mu.Lock()
	cb.probing = false
	switch {
	case err == nil:
		cb.failures = 0
		change = cb.setLocked(BreakerClosed)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		change = nil
	default:
		cb.failures++
		if cb.state == BreakerHalfOpen || cb.failures >= cb.cfg.FailureThreshold {
			change = cb.setLocked(BreakerOpen)
		} else {
			change = nil
		}
	}
	cb.mu.Unlock()
	cb.notify(change)
	return err
}

type stateChange struct{ from, to BreakerState }

func (cb *CircuitBreaker) currentLocked() (BreakerState, *stateChange) {
	if cb.state == BreakerOpen && cb.now().Sub(cb.openedAt) >= cb.cfg.OpenTimeout {
		return BreakerHalfOpen, cb.setLocked(BreakerHalfOpen)
	}
	return cb.state, nil
}

func (cb *CircuitBreaker) setLocked(to BreakerState) *stateChange {
	if cb.state == to {
		return nil
	}
	from := cb.state
	cb.state = to
	switch to {
	case BreakerOpen:
		cb.openedAt = cb.now()
	case BreakerClosed:
		cb.failures = 0
	}
	return &stateChange{from: from, to: to}
}

func (cb *CircuitBreaker) notify(c *stateChange) {
	if c != nil && cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.cfg.Name, c.from, c.to)
	}
}
