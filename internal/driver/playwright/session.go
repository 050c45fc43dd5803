// Package playwright implements driver.Session on top of playwright-go.
package playwright

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
)

// Options configures the launched browser
type Options struct {
	Headless       bool
	ExecutablePath string
	ViewportWidth  int
	ViewportHeight int
	CommandTimeout time.Duration
}

// Session owns a playwright runtime, a browser, and one page
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	timeout time.Duration
	logger  *zap.Logger
}

var _ driver.Session = (*Session)(nil)

// Launch starts playwright and opens a blank page
func Launch(opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.ExecutablePath != "" {
		launchOpts.ExecutablePath = playwright.String(opts.ExecutablePath)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	pageOpts := playwright.BrowserNewPageOptions{}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		pageOpts.Viewport = &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		}
	}

	page, err := browser.NewPage(pageOpts)
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	logger.Debug("Playwright session started", zap.Bool("headless", opts.Headless))

	return &Session{
		pw:      pw,
		browser: browser,
		page:    page,
		timeout: opts.CommandTimeout,
		logger:  logger,
	}, nil
}

func (s *Session) FindElements(ctx context.Context, loc locator.Locator) ([]driver.Node, error) {
	if loc.IsZero() {
		return nil, fmt.Errorf("resolving locator: %w", driver.ErrUnsupportedLocator)
	}

	var target playwright.Locator
	for i, part := range loc.Parts() {
		sel, err := Selector(part.By)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			target = s.page.Locator(sel)
		} else {
			target = target.Locator(sel)
		}
		if part.Index >= 0 {
			target = target.Nth(part.Index)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := target.All()
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", loc, err)
	}

	nodes := make([]driver.Node, 0, len(matches))
	for _, m := range matches {
		nodes = append(nodes, &node{loc: m, timeout: s.timeout})
	}
	return nodes, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	opts := playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   timeoutMillis(ctx, s.timeout),
	}
	if _, err := s.page.Goto(url, opts); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  timeoutMillis(ctx, s.timeout),
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return data, nil
}

func (s *Session) Close() error {
	var errs []error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing browser: %w", err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping playwright: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Selector translates a locator part into playwright selector syntax
func Selector(by locator.By) (string, error) {
	switch by.Strategy {
	case locator.StrategyCSS:
		return "css=" + by.Value, nil
	case locator.StrategyXPath:
		return "xpath=" + by.Value, nil
	case locator.StrategyID:
		return "id=" + by.Value, nil
	case locator.StrategyName:
		return fmt.Sprintf("css=[name=%q]", by.Value), nil
	case locator.StrategyText:
		return "text=" + by.Value, nil
	}
	return "", fmt.Errorf("%s: %w", by.Strategy, driver.ErrUnsupportedLocator)
}

// timeoutMillis converts the context deadline, or the fallback, to playwright's
// millisecond timeout option. Nil leaves playwright's default in place.
func timeoutMillis(ctx context.Context, fallback time.Duration) *float64 {
	d := fallback
	if deadline, ok := ctx.Deadline(); ok {
		d = time.Until(deadline)
		if d <= 0 {
			d = time.Millisecond
		}
	}
	if d <= 0 {
		return nil
	}
	return playwright.Float(float64(d.Milliseconds()))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "not attached to the DOM") || strings.Contains(msg, "Element is detached") {
		return fmt.Errorf("%w: %v", driver.ErrStaleNode, err)
	}
	return err
}
