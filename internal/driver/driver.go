// Package driver defines the boundary between element handles and the
// browser-automation backend that actually talks to a page.
package driver

import (
	"context"
	"errors"

	"github.com/testforge/uicore/internal/locator"
)

var (
	// ErrStaleNode is returned by node operations when the node is no longer attached
	ErrStaleNode = errors.New("node is no longer attached to the document")

	// ErrUnsupportedLocator is returned when a backend cannot express a strategy
	ErrUnsupportedLocator = errors.New("locator strategy not supported by driver")
)

// Driver resolves locators against the live document
type Driver interface {
	// FindElements resolves the full locator chain. An empty result is not an error.
	FindElements(ctx context.Context, loc locator.Locator) ([]Node, error)
}

// Node is a resolved element. Implementations must not be cached by callers
// across operations.
type Node interface {
	IsDisplayed(ctx context.Context) (bool, error)
	IsEnabled(ctx context.Context) (bool, error)
	IsChecked(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	// Value is the current value of a form control
	Value(ctx context.Context) (string, error)
	// Attribute returns the value and whether the attribute is present
	Attribute(ctx context.Context, name string) (string, bool, error)
	Type(ctx context.Context, text string) error
	Clear(ctx context.Context) error
	Focus(ctx context.Context) error
}

// Session is a driver bound to an open page
type Session interface {
	Driver
	Navigate(ctx context.Context, url string) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
