package elements

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/configurations"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/localization"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/resilience"
)

const testTimeout = 150 * time.Millisecond

type fixture struct {
	factory *ElementFactory
	metrics *observability.Metrics
}

func newFixture(t *testing.T, d driver.Driver, logger *zap.Logger) fixture {
	t.Helper()
	if logger == nil {
		logger = zap.NewNop()
	}
	timeouts := configurations.TimeoutConfiguration{
		Condition:       testTimeout,
		PollingInterval: 10 * time.Millisecond,
		Command:         time.Second,
	}
	wait := resilience.NewConditionalWait(timeouts)
	retrier := resilience.NewActionRetrier(configurations.RetryConfiguration{
		Number:          2,
		PollingInterval: 10 * time.Millisecond,
	})
	localized := localization.NewLocalizedLogger(localization.NewManager("en"), logger)
	metrics := observability.NewMetrics("test")
	finder := NewElementFinder(d, wait, localized, metrics)
	return fixture{
		factory: NewElementFactory(finder, wait, retrier, localized, metrics),
		metrics: metrics,
	}
}

func css(v string) locator.By {
	return locator.By{Strategy: locator.StrategyCSS, Value: v}
}

// staleDriver wraps every node so that the first n clicks report a stale node
type staleDriver struct {
	driver.Driver
	remaining atomic.Int32
}

func newStaleDriver(d driver.Driver, n int32) *staleDriver {
	s := &staleDriver{Driver: d}
	s.remaining.Store(n)
	return s
}

func (s *staleDriver) FindElements(ctx context.Context, loc locator.Locator) ([]driver.Node, error) {
	nodes, err := s.Driver.FindElements(ctx, loc)
	if err != nil {
		return nil, err
	}
	wrapped := make([]driver.Node, 0, len(nodes))
	for _, n := range nodes {
		wrapped = append(wrapped, &staleClickNode{Node: n, d: s})
	}
	return wrapped, nil
}

type staleClickNode struct {
	driver.Node
	d *staleDriver
}

func (n *staleClickNode) Click(ctx context.Context) error {
	if n.d.remaining.Add(-1) >= 0 {
		return driver.ErrStaleNode
	}
	return n.Node.Click(ctx)
}
