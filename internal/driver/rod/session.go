// Package rod implements driver.Session on top of go-rod.
package rod

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/locator"
)

// Options configures the launched browser
type Options struct {
	Headless       bool
	BinPath        string
	CommandTimeout time.Duration
}

// Session owns a rod browser and one page
type Session struct {
	browser *rod.Browser
	page    *rod.Page
	timeout time.Duration
	logger  *zap.Logger
}

var _ driver.Session = (*Session)(nil)

// Launch starts a local Chromium and opens a blank page
func Launch(opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	l := launcher.New().Headless(opts.Headless)
	if opts.BinPath != "" {
		l = l.Bin(opts.BinPath)
	}
	l = l.Set("no-sandbox").Set("disable-gpu").Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	logger.Debug("Rod session started", zap.Bool("headless", opts.Headless))

	return &Session{
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

	page := s.page.Context(ctx)
	var current rod.Elements
	for i, part := range loc.Parts() {
		var next rod.Elements
		if i == 0 {
			found, err := query(page, part.By)
			if err != nil {
				return nil, fmt.Errorf("querying %s: %w", loc, mapError(err))
			}
			next = found
		} else {
			for _, parent := range current {
				found, err := query(parent, part.By)
				if err != nil {
					return nil, fmt.Errorf("querying %s: %w", loc, mapError(err))
				}
				next = append(next, found...)
			}
		}
		if part.Index >= 0 {
			if part.Index >= len(next) {
				return nil, nil
			}
			next = rod.Elements{next[part.Index]}
		}
		current = next
	}

	nodes := make([]driver.Node, 0, len(current))
	for _, el := range current {
		nodes = append(nodes, &node{el: el, timeout: s.timeout})
	}
	return nodes, nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page := s.pageFor(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("waiting for load: %w", err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := s.pageFor(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return data, nil
}

func (s *Session) Close() error {
	if s.browser == nil {
		return nil
	}
	if err := s.browser.Close(); err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}

func (s *Session) pageFor(ctx context.Context) *rod.Page {
	page := s.page.Context(ctx)
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		page = page.Timeout(s.timeout)
	}
	return page
}

// searcher is satisfied by both *rod.Page and *rod.Element
type searcher interface {
	Elements(selector string) (rod.Elements, error)
	ElementsX(xpath string) (rod.Elements, error)
}

func query(scope searcher, by locator.By) (rod.Elements, error) {
	kind, expr, err := Expression(by)
	if err != nil {
		return nil, err
	}
	if kind == locator.StrategyXPath {
		return scope.ElementsX(expr)
	}
	return scope.Elements(expr)
}

// Expression translates a locator part into a CSS selector or an XPath
// expression, reporting which of the two it produced.
func Expression(by locator.By) (locator.Strategy, string, error) {
	switch by.Strategy {
	case locator.StrategyCSS:
		return locator.StrategyCSS, by.Value, nil
	case locator.StrategyXPath:
		return locator.StrategyXPath, by.Value, nil
	case locator.StrategyID:
		return locator.StrategyCSS, "[id=" + strconv.Quote(by.Value) + "]", nil
	case locator.StrategyName:
		return locator.StrategyCSS, "[name=" + strconv.Quote(by.Value) + "]", nil
	case locator.StrategyText:
		return locator.StrategyXPath, ".//*[text()[contains(normalize-space(.), " + xpathLiteral(by.Value) + ")]]", nil
	}
	return "", "", fmt.Errorf("%s: %w", by.Strategy, driver.ErrUnsupportedLocator)
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	return "concat('" + strings.Join(parts, `', "'", '`) + "')"
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var notFound *rod.ObjectNotFoundError
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", driver.ErrStaleNode, err)
	}
	msg := err.Error()
	if strings.Contains(msg, "Node with given id does not exist") ||
		strings.Contains(msg, "Cannot find context with specified id") {
		return fmt.Errorf("%w: %v", driver.ErrStaleNode, err)
	}
	return err
}
