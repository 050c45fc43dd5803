package elements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/localization"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/resilience"
)

// Match is a node that satisfied a lookup, with its position among all
// nodes the locator resolved to.
type Match struct {
	Index int
	Node  driver.Node
}

// ElementFinder polls the driver until nodes reach a requested state
type ElementFinder struct {
	driver  driver.Driver
	wait    *resilience.ConditionalWait
	logger  *localization.LocalizedLogger
	metrics *observability.Metrics
}

func NewElementFinder(d driver.Driver, wait *resilience.ConditionalWait, logger *localization.LocalizedLogger, metrics *observability.Metrics) *ElementFinder {
	return &ElementFinder{
		driver:  d,
		wait:    wait,
		logger:  logger,
		metrics: metrics,
	}
}

// DefaultTimeout is the configured condition timeout
func (f *ElementFinder) DefaultTimeout() time.Duration {
	return f.wait.Timeouts().Condition
}

// snapshot is the outcome of a single driver query
type snapshot struct {
	matches []Match
	total   int
}

// poll queries the driver once and filters by state. Stale nodes are skipped.
func (f *ElementFinder) poll(ctx context.Context, loc locator.Locator, state ElementState) (snapshot, error) {
	if err := loc.Err(); err != nil {
		return snapshot{}, err
	}
	nodes, err := f.driver.FindElements(ctx, loc)
	if err != nil {
		return snapshot{}, err
	}
	snap := snapshot{total: len(nodes)}
	for i, n := range nodes {
		ok, err := state.Accepts(ctx, n)
		if errors.Is(err, driver.ErrStaleNode) {
			continue
		}
		if err != nil {
			return snapshot{}, err
		}
		if ok {
			snap.matches = append(snap.matches, Match{Index: i, Node: n})
		}
	}
	return snap, nil
}

// find waits until at least one node is in state. It returns the last
// snapshot and, on timeout, the timeout error carrying the last driver error.
// An invalid locator fails at once.
func (f *ElementFinder) find(ctx context.Context, loc locator.Locator, state ElementState, timeout time.Duration) (snapshot, error) {
	if err := loc.Err(); err != nil {
		return snapshot{}, err
	}
	var last snapshot
	var lastErr error
	err := f.wait.WaitForTrue(ctx, func(ctx context.Context) (bool, error) {
		snap, err := f.poll(ctx, loc, state)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			lastErr = err
			return false, nil
		}
		last = snap
		return len(snap.matches) > 0, nil
	},
		resilience.WithTimeout(timeout),
		resilience.WithMessage(fmt.Sprintf("lookup of %s in state %s", loc, state)),
	)
	if err != nil && errors.Is(err, domain.ErrTimeout) && lastErr != nil {
		err = domain.Timeout(fmt.Sprintf("lookup of %s in state %s", loc, state), timeout, lastErr)
	}
	return last, err
}

// findNone waits until no node is in state. On timeout the snapshot holds
// the nodes that remained and the error carries the last driver error.
func (f *ElementFinder) findNone(ctx context.Context, loc locator.Locator, state ElementState, timeout time.Duration) (snapshot, error) {
	if err := loc.Err(); err != nil {
		return snapshot{}, err
	}
	var last snapshot
	var lastErr error
	err := f.wait.WaitForTrue(ctx, func(ctx context.Context) (bool, error) {
		snap, err := f.poll(ctx, loc, state)
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			lastErr = err
			return false, nil
		}
		last = snap
		return len(snap.matches) == 0, nil
	},
		resilience.WithTimeout(timeout),
		resilience.WithMessage(fmt.Sprintf("absence of %s in state %s", loc, state)),
	)
	if err != nil {
		if errors.Is(err, domain.ErrTimeout) && lastErr != nil {
			err = domain.Timeout(fmt.Sprintf("absence of %s in state %s", loc, state), timeout, lastErr)
		}
		return last, err
	}
	return snapshot{total: last.total}, nil
}

// FindElements returns the nodes in state, waiting up to timeout for the
// first one to appear. Absence is not an error: an empty slice is returned.
func (f *ElementFinder) FindElements(ctx context.Context, loc locator.Locator, state ElementState, timeout time.Duration) ([]Match, error) {
	snap, err := f.find(ctx, loc, state, timeout)
	if err != nil && !errors.Is(err, domain.ErrTimeout) {
		return nil, err
	}
	return snap.matches, nil
}

// FindElement returns the first node in state or an ErrElementNotFound error
func (f *ElementFinder) FindElement(ctx context.Context, loc locator.Locator, name string, state ElementState, timeout time.Duration) (driver.Node, error) {
	start := time.Now()
	snap, err := f.find(ctx, loc, state, timeout)
	if err == nil {
		f.metrics.RecordLookup(string(state), observability.ResultFound, time.Since(start))
		return snap.matches[0].Node, nil
	}
	if !errors.Is(err, domain.ErrTimeout) {
		f.metrics.RecordLookup(string(state), observability.ResultError, time.Since(start))
		return nil, fmt.Errorf("finding %s: %w", loc, err)
	}

	f.metrics.RecordLookup(string(state), observability.ResultNotFound, time.Since(start))
	manager := f.logger.Manager()
	var msg string
	if snap.total > 0 {
		msg = manager.Get("loc.elements.were.found.but.not.in.state", loc.String(), manager.Get(state.messageKey()))
	} else if state == StateDisplayed {
		msg = manager.Get("loc.no.elements.found.in.state", loc.String(), manager.Get(state.messageKey()))
	} else {
		msg = manager.Get("loc.no.elements.found.by.locator", loc.String())
	}
	f.logger.Logger().Debug(msg)
	return nil, domain.ElementNotFound(msg, loc.String(), name, string(state), err)
}
