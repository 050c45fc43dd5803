// Package application wraps a browser session as the application under test.
package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/config"
	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/driver/playwright"
	"github.com/testforge/uicore/internal/driver/rod"
)

// Application is what a test drives
type Application interface {
	Driver() driver.Driver
	IsStarted() bool
	Quit() error
}

// Browser is an Application backed by one browser session
type Browser struct {
	mu      sync.Mutex
	session driver.Session
	id      string
	started bool
	logger  *zap.Logger
}

var _ Application = (*Browser)(nil)

func NewBrowser(session driver.Session, logger *zap.Logger) *Browser {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Browser{
		session: session,
		id:      id,
		started: true,
		logger:  logger.With(zap.String("session_id", id)),
	}
}

func (b *Browser) Driver() driver.Driver {
	return b.session
}

// SessionID identifies this browser in logs and artifact keys
func (b *Browser) SessionID() string {
	return b.id
}

func (b *Browser) IsStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	b.logger.Debug("Navigating", zap.String("url", url))
	return b.session.Navigate(ctx, url)
}

func (b *Browser) Screenshot(ctx context.Context) ([]byte, error) {
	return b.session.Screenshot(ctx)
}

// Quit closes the session. Calling it again is a no-op.
func (b *Browser) Quit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil
	}
	b.started = false
	if err := b.session.Close(); err != nil {
		return domain.ApplicationError("closing browser session", err)
	}
	b.logger.Debug("Browser session closed")
	return nil
}

// Launcher opens a browser session for a configured backend
type Launcher func(cfg config.BrowserConfig, logger *zap.Logger) (driver.Session, error)

var launchers = map[string]Launcher{
	config.DriverPlaywright: func(cfg config.BrowserConfig, logger *zap.Logger) (driver.Session, error) {
		return playwright.Launch(playwright.Options{
			Headless:       cfg.Headless,
			ExecutablePath: cfg.ExecutablePath,
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
			CommandTimeout: cfg.CommandTimeout,
		}, logger)
	},
	config.DriverRod: func(cfg config.BrowserConfig, logger *zap.Logger) (driver.Session, error) {
		return rod.Launch(rod.Options{
			Headless:       cfg.Headless,
			BinPath:        cfg.ExecutablePath,
			CommandTimeout: cfg.CommandTimeout,
		}, logger)
	},
}

// Start launches the backend named by cfg.Driver
func Start(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger) (*Browser, error) {
	launch, ok := launchers[cfg.Driver]
	if !ok {
		return nil, domain.ApplicationError(fmt.Sprintf("unknown browser driver %q", cfg.Driver), nil)
	}
	return StartWith(ctx, cfg, logger, launch)
}

// StartWith launches a session with launch and opens cfg.StartURL when set
func StartWith(ctx context.Context, cfg config.BrowserConfig, logger *zap.Logger, launch Launcher) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	session, err := launch(cfg, logger)
	if err != nil {
		return nil, domain.ApplicationError("starting browser", err)
	}

	b := NewBrowser(session, logger)
	logger.Info("Browser started",
		zap.String("driver", cfg.Driver),
		zap.Bool("headless", cfg.Headless),
		zap.String("session_id", b.id),
	)

	if cfg.StartURL != "" {
		if err := b.Navigate(ctx, cfg.StartURL); err != nil {
			b.Quit()
			return nil, domain.ApplicationError("opening start page", err)
		}
	}
	return b, nil
}
