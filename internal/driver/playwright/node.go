package playwright

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
)

type node struct {
	loc     playwright.Locator
	timeout time.Duration
}

func (n *node) IsDisplayed(ctx context.Context) (bool, error) {
	v, err := n.loc.IsVisible()
	return v, mapError(err)
}

func (n *node) IsEnabled(ctx context.Context) (bool, error) {
	v, err := n.loc.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: timeoutMillis(ctx, n.timeout)})
	return v, mapError(err)
}

func (n *node) IsChecked(ctx context.Context) (bool, error) {
	v, err := n.loc.IsChecked(playwright.LocatorIsCheckedOptions{Timeout: timeoutMillis(ctx, n.timeout)})
	return v, mapError(err)
}

func (n *node) Click(ctx context.Context) error {
	return mapError(n.loc.Click(playwright.LocatorClickOptions{Timeout: timeoutMillis(ctx, n.timeout)}))
}

func (n *node) Text(ctx context.Context) (string, error) {
	v, err := n.loc.TextContent(playwright.LocatorTextContentOptions{Timeout: timeoutMillis(ctx, n.timeout)})
	return v, mapError(err)
}

func (n *node) Value(ctx context.Context) (string, error) {
	v, err := n.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: timeoutMillis(ctx, n.timeout)})
	return v, mapError(err)
}

func (n *node) Attribute(ctx context.Context, name string) (string, bool, error) {
	present, err := n.loc.Evaluate("(el, name) => el.hasAttribute(name)", name)
	if err != nil {
		return "", false, mapError(err)
	}
	if ok, _ := present.(bool); !ok {
		return "", false, nil
	}
	v, err := n.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: timeoutMillis(ctx, n.timeout)})
	if err != nil {
		return "", false, mapError(err)
	}
	return v, true, nil
}

func (n *node) Type(ctx context.Context, text string) error {
	return mapError(n.loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Timeout: timeoutMillis(ctx, n.timeout),
	}))
}

func (n *node) Clear(ctx context.Context) error {
	return mapError(n.loc.Clear(playwright.LocatorClearOptions{Timeout: timeoutMillis(ctx, n.timeout)}))
}

func (n *node) Focus(ctx context.Context) error {
	return mapError(n.loc.Focus(playwright.LocatorFocusOptions{Timeout: timeoutMillis(ctx, n.timeout)}))
}
