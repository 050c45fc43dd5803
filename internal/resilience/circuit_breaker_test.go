package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errUpload = errors.New("upload failed")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func testBreaker(threshold int, transitions *[]string) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:             "artifacts",
		FailureThreshold: threshold,
		OpenTimeout:      time.Minute,
		OnStateChange: func(name string, from, to BreakerState) {
			if transitions != nil {
				*transitions = append(*transitions, name+":"+from.String()+"->"+to.String())
			}
		},
	})
	cb.now = clock.now
	return cb, clock
}

func fail(context.Context) error    { return errUpload }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb, _ := testBreaker(2, nil)

	if cb.State() != BreakerClosed {
		t.Errorf("initial state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := testBreaker(3, nil)
	ctx := context.Background()

	cb.Do(ctx, fail)
	cb.Do(ctx, fail)
	if cb.State() != BreakerClosed {
		t.Fatalf("state after 2 failures = %v, want closed", cb.State())
	}

	if err := cb.Do(ctx, fail); !errors.Is(err, errUpload) {
		t.Errorf("third call error = %v, want the call's error", err)
	}
	if cb.State() != BreakerOpen {
		t.Errorf("state after 3 failures = %v, want open", cb.State())
	}
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb, _ := testBreaker(2, nil)
	ctx := context.Background()

	cb.Do(ctx, fail)
	cb.Do(ctx, succeed)
	cb.Do(ctx, fail)

	if cb.State() != BreakerClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_RejectsWhileOpen(t *testing.T) {
	cb, _ := testBreaker(1, nil)
	ctx := context.Background()
	cb.Do(ctx, fail)

	called := false
	err := cb.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})

	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("open breaker called through")
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	tests := []struct {
		name      string
		probe     func(context.Context) error
		wantState BreakerState
	}{
		{name: "successful probe closes", probe: succeed, wantState: BreakerClosed},
		{name: "failed probe reopens", probe: fail, wantState: BreakerOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var transitions []string
			cb, clock := testBreaker(1, &transitions)
			ctx := context.Background()
			cb.Do(ctx, fail)

			clock.advance(time.Minute)
			if cb.State() != BreakerHalfOpen {
				t.Fatalf("state after timeout = %v, want half-open", cb.State())
			}

			cb.Do(ctx, tt.probe)
			if cb.State() != tt.wantState {
				t.Errorf("state after probe = %v, want %v", cb.State(), tt.wantState)
			}
			want := "artifacts:half-open->" + tt.wantState.String()
			if got := transitions[len(transitions)-1]; got != want {
				t.Errorf("last transition = %q, want %q", got, want)
			}
		})
	}
}

func TestCircuitBreaker_SingleProbeInHalfOpen(t *testing.T) {
	cb, clock := testBreaker(1, nil)
	ctx := context.Background()
	cb.Do(ctx, fail)
	clock.advance(time.Minute)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- cb.Do(ctx, func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	if err := cb.Do(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("concurrent probe error = %v, want ErrCircuitOpen", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("probe error = %v", err)
	}
	if cb.State() != BreakerClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreaker_IgnoresContextErrors(t *testing.T) {
	cb, _ := testBreaker(1, nil)

	err := cb.Do(context.Background(), func(context.Context) error {
		return context.DeadlineExceeded
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
	if cb.State() != BreakerClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cb.Do(ctx, fail); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want Canceled", err)
	}
	if cb.State() != BreakerClosed {
		t.Errorf("state after cancelled call = %v, want closed", cb.State())
	}
}
