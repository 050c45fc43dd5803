package elements

import (
	"context"
	"errors"
	"fmt"

	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/resilience"
)

// StateProvider answers state questions about an element. The Is* methods
// query once; the WaitFor* methods poll until the configured condition
// timeout unless a resilience.WithTimeout option overrides it.
type StateProvider struct {
	element *BaseElement
}

func (p *StateProvider) first(ctx context.Context, state ElementState) (driver.Node, bool) {
	f := p.element.factory
	matches, err := f.finder.FindElements(ctx, p.element.loc, state, 0)
	if err != nil || len(matches) == 0 {
		return nil, false
	}
	return matches[0].Node, true
}

func (p *StateProvider) IsDisplayed(ctx context.Context) bool {
	_, ok := p.first(ctx, StateDisplayed)
	return ok
}

func (p *StateProvider) IsExist(ctx context.Context) bool {
	_, ok := p.first(ctx, StateExistsInAnyState)
	return ok
}

// IsEnabled fails with ErrElementNotFound when the element does not exist
func (p *StateProvider) IsEnabled(ctx context.Context) (bool, error) {
	e := p.element
	n, err := e.factory.finder.FindElement(ctx, e.loc, e.name, StateExistsInAnyState, 0)
	if err != nil {
		return false, err
	}
	return n.IsEnabled(ctx)
}

// IsClickable reports whether the element is displayed and enabled
func (p *StateProvider) IsClickable(ctx context.Context) bool {
	ok, _ := p.clickable(ctx)
	return ok
}

func (p *StateProvider) clickable(ctx context.Context) (bool, error) {
	n, ok := p.first(ctx, StateDisplayed)
	if !ok {
		return false, nil
	}
	enabled, err := n.IsEnabled(ctx)
	if errors.Is(err, driver.ErrStaleNode) {
		return false, nil
	}
	return enabled, err
}

func (p *StateProvider) enabled(ctx context.Context) (bool, bool) {
	n, ok := p.first(ctx, StateExistsInAnyState)
	if !ok {
		return false, false
	}
	enabled, err := n.IsEnabled(ctx)
	if err != nil {
		return false, false
	}
	return enabled, true
}

// describe renders the localized state name, negated when not is set
func (p *StateProvider) describe(key string, not bool) string {
	m := p.element.factory.logger.Manager()
	if not {
		return m.Get("loc.el.state.not", m.Get(key))
	}
	return m.Get(key)
}

func (p *StateProvider) waitFor(ctx context.Context, key string, not bool, cond resilience.Condition, opts []resilience.WaitOption) bool {
	e := p.element
	f := e.factory
	what := p.describe(key, not)
	f.logger.DebugElementAction(string(e.kind), e.displayName(), "loc.wait.for.state", what)
	opts = append([]resilience.WaitOption{resilience.WithMessage(fmt.Sprintf("%s to be %s", e.loc, what))}, opts...)
	return f.wait.WaitFor(ctx, cond, opts...)
}

func (p *StateProvider) WaitForDisplayed(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.displayed", false, func(ctx context.Context) (bool, error) {
		return p.IsDisplayed(ctx), nil
	}, opts)
}

func (p *StateProvider) WaitForNotDisplayed(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.displayed", true, func(ctx context.Context) (bool, error) {
		return !p.IsDisplayed(ctx), nil
	}, opts)
}

func (p *StateProvider) WaitForExist(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.exists", false, func(ctx context.Context) (bool, error) {
		return p.IsExist(ctx), nil
	}, opts)
}

func (p *StateProvider) WaitForNotExist(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.exists", true, func(ctx context.Context) (bool, error) {
		return !p.IsExist(ctx), nil
	}, opts)
}

func (p *StateProvider) WaitForEnabled(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.enabled", false, func(ctx context.Context) (bool, error) {
		enabled, found := p.enabled(ctx)
		return found && enabled, nil
	}, opts)
}

// WaitForNotEnabled waits for an existing element to become disabled
func (p *StateProvider) WaitForNotEnabled(ctx context.Context, opts ...resilience.WaitOption) bool {
	return p.waitFor(ctx, "loc.el.state.enabled", true, func(ctx context.Context) (bool, error) {
		enabled, found := p.enabled(ctx)
		return found && !enabled, nil
	}, opts)
}

// WaitForClickable fails with ErrElementNotFound wrapping the wait timeout
// when the element does not become displayed and enabled in time
func (p *StateProvider) WaitForClickable(ctx context.Context, opts ...resilience.WaitOption) error {
	e := p.element
	f := e.factory
	f.logger.DebugElementAction(string(e.kind), e.displayName(), "loc.wait.for.state", p.describe("loc.el.state.clickable", false))
	opts = append([]resilience.WaitOption{
		resilience.WithMessage(fmt.Sprintf("%s to be clickable", e.loc)),
		resilience.IgnoringErrors(driver.ErrStaleNode),
	}, opts...)
	err := f.wait.WaitForTrue(ctx, p.clickable, opts...)
	if err != nil && errors.Is(err, domain.ErrTimeout) {
		return domain.ElementNotFound(
			f.logger.Manager().Get("loc.no.elements.found.in.state", e.loc.String(), f.logger.Manager().Get("loc.el.state.clickable")),
			e.loc.String(), e.name, "clickable", err)
	}
	return err
}
