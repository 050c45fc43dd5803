package elements

import (
	"context"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
	"github.com/testforge/uicore/internal/resilience"
)

// Element is a lazily resolved handle to a located node. Handles keep no
// node between calls; every capability queries the driver again.
type Element interface {
	Locator() locator.Locator
	Name() string
	// ElementType is the registry kind, used as the localized type name in logs
	ElementType() Kind
	ElementState() ElementState
	State() *StateProvider

	// Node resolves the handle once, waiting for its state
	Node(ctx context.Context) (driver.Node, error)
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// Attribute returns "" for an absent attribute
	Attribute(ctx context.Context, name string) (string, error)
	Focus(ctx context.Context) error
}

// BaseElement implements Element. Typed elements embed it.
type BaseElement struct {
	loc     locator.Locator
	name    string
	state   ElementState
	kind    Kind
	factory *ElementFactory
}

var _ Element = (*BaseElement)(nil)

func NewBaseElement(f *ElementFactory, loc locator.Locator, name string, state ElementState, kind Kind) *BaseElement {
	if kind == "" {
		kind = KindElement
	}
	return &BaseElement{
		loc:     loc,
		name:    name,
		state:   state,
		kind:    kind,
		factory: f,
	}
}

func (e *BaseElement) Locator() locator.Locator { return e.loc }
func (e *BaseElement) Name() string { return e.name }
func (e *BaseElement) ElementType() Kind { return e.kind }
func (e *BaseElement) ElementState() ElementState { return e.state }
func (e *BaseElement) Factory() *ElementFactory { return e.factory }

func (e *BaseElement) State() *StateProvider {
	return &StateProvider{element: e}
}

// displayName falls back to the locator for unnamed handles
func (e *BaseElement) displayName() string {
	if e.name != "" {
		return e.name
	}
	return e.loc.String()
}

func (e *BaseElement) Node(ctx context.Context) (driver.Node, error) {
	f := e.factory
	return f.finder.FindElement(ctx, e.loc, e.name, e.state, f.finder.DefaultTimeout())
}

// withNode resolves the node and runs fn, resolving again when fn hits a
// stale node. A failed resolution is final: the lookup already waited out
// its own timeout.
func (e *BaseElement) withNode(ctx context.Context, fn func(ctx context.Context, n driver.Node) error) error {
	_, err := withNodeResult(ctx, e, func(ctx context.Context, n driver.Node) (struct{}, error) {
		return struct{}{}, fn(ctx, n)
	})
	return err
}

func withNodeResult[T any](ctx context.Context, e *BaseElement, fn func(ctx context.Context, n driver.Node) (T, error)) (T, error) {
	f := e.factory
	attempt := 0
	return resilience.DoWithResult(ctx, f.retrier, func(ctx context.Context) (T, error) {
		if attempt > 0 {
			f.logger.DebugElementAction(string(e.kind), e.displayName(), "loc.retry.stale", attempt, f.retrier.MaxRetries())
			f.metrics.RecordActionRetry(string(e.kind))
		}
		attempt++
		n, err := e.Node(ctx)
		if err != nil {
			var zero T
			return zero, resilience.Stop(err)
		}
		return fn(ctx, n)
	}, driver.ErrStaleNode)
}

// logAction logs the localized message for key and counts the action
func (e *BaseElement) logAction(action, key string, args []any) {
	f := e.factory
	f.logger.InfoElementAction(string(e.kind), e.displayName(), key, args...)
	f.metrics.RecordElementAction(string(e.kind), action)
}

func (e *BaseElement) action(ctx context.Context, action, key string, args []any, fn func(ctx context.Context, n driver.Node) error) error {
	e.logAction(action, key, args)
	return e.withNode(ctx, fn)
}

func query[T any](ctx context.Context, e *BaseElement, action, key string, args []any, fn func(ctx context.Context, n driver.Node) (T, error)) (T, error) {
	e.logAction(action, key, args)
	return withNodeResult(ctx, e, fn)
}

func (e *BaseElement) Click(ctx context.Context) error {
	return e.action(ctx, "click", "loc.clicking", nil, func(ctx context.Context, n driver.Node) error {
		return n.Click(ctx)
	})
}

func (e *BaseElement) Text(ctx context.Context) (string, error) {
	return query(ctx, e, "text", "loc.get.text", nil, func(ctx context.Context, n driver.Node) (string, error) {
		return n.Text(ctx)
	})
}

func (e *BaseElement) Attribute(ctx context.Context, name string) (string, error) {
	return query(ctx, e, "attribute", "loc.el.getattr", []any{name}, func(ctx context.Context, n driver.Node) (string, error) {
		v, _, err := n.Attribute(ctx, name)
		return v, err
	})
}

func (e *BaseElement) Focus(ctx context.Context) error {
	return e.action(ctx, "focus", "loc.focusing", nil, func(ctx context.Context, n driver.Node) error {
		return n.Focus(ctx)
	})
}

// FindChildElement returns a handle of the registered kind below this one
func (e *BaseElement) FindChildElement(childLoc locator.Locator, kind Kind, opts ...Option) (Element, error) {
	return e.factory.FindChildElementOf(kind, e, childLoc, opts...)
}
