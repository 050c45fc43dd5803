package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/application"
	"github.com/testforge/uicore/internal/config"
	"github.com/testforge/uicore/internal/elements"
	"github.com/testforge/uicore/internal/observability"
)

// ErrNoArtifactStore is returned by SaveScreenshot when the module has no artifact store
var ErrNoArtifactStore = errors.New("no artifact store configured")

// AppFactory starts the application using the current container
type AppFactory[T application.Application] func(ctx context.Context, inj *Injector) (T, error)

// Screenshotter is implemented by applications that can capture their screen
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
	SessionID() string
}

// BrowserFactory starts a browser with cfg
func BrowserFactory(cfg config.BrowserConfig) AppFactory[*application.Browser] {
	return func(ctx context.Context, inj *Injector) (*application.Browser, error) {
		return application.Start(ctx, cfg, inj.Logger().Logger())
	}
}

// Services holds one test's application and container. Both are built on
// first use; InitInjector swaps the container for a new profile.
type Services[T application.Application] struct {
	mu       sync.Mutex
	factory  AppFactory[T]
	module   Module
	injector *Injector
	app      T
	hasApp   bool
}

func New[T application.Application](factory AppFactory[T], module Module) *Services[T] {
	return &Services[T]{
		factory: factory,
		module:  module,
	}
}

// ServiceProvider returns the container, building it from the module on first use
func (s *Services[T]) ServiceProvider() (*Injector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.injectorLocked()
}

func (s *Services[T]) injectorLocked() (*Injector, error) {
	if s.injector != nil {
		return s.injector, nil
	}
	inj, err := NewInjector(s.module)
	if err != nil {
		return nil, err
	}
	s.injector = inj
	return inj, nil
}

// Application returns the running application, starting it when there is
// none or the previous one was quit
func (s *Services[T]) Application(ctx context.Context) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, _, err := s.applicationLocked(ctx)
	return app, err
}

// applicationLocked returns the application together with the container
// it was started from
func (s *Services[T]) applicationLocked(ctx context.Context) (T, *Injector, error) {
	var zero T
	inj, err := s.injectorLocked()
	if err != nil {
		return zero, nil, err
	}
	if s.hasApp && s.app.IsStarted() {
		return s.app, inj, nil
	}

	app, err := s.factory(ctx, inj)
	if err != nil {
		return zero, nil, fmt.Errorf("starting application: %w", err)
	}
	s.app = app
	s.hasApp = true

	inj.Metrics().RecordApplicationStart()
	if sc, ok := any(app).(Screenshotter); ok {
		inj.Logger().Info("loc.application.started", sc.SessionID())
	} else {
		inj.Logger().Info("loc.application.started", inj.SessionID())
	}
	return app, inj, nil
}

// IsApplicationStarted reports whether an application is running
func (s *Services[T]) IsApplicationStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasApp && s.app.IsStarted()
}

// InitInjector discards the application reference and the container. The
// next access builds both from module. The old application is not quit.
func (s *Services[T]) InitInjector(module Module) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.app = zero
	s.hasApp = false
	s.module = module
	s.injector = nil
	module.withDefaults().Logger.Debug("Configuration module replaced", zap.String("profile", module.Profile))
}

// ElementFactory returns a factory bound to the running application
func (s *Services[T]) ElementFactory(ctx context.Context) (*elements.ElementFactory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, inj, err := s.applicationLocked(ctx)
	if err != nil {
		return nil, err
	}
	return inj.ElementFactory(app.Driver()), nil
}

// SaveScreenshot captures the application's screen and stores it in the
// artifact store, returning the artifact URI
func (s *Services[T]) SaveScreenshot(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	app, inj, err := s.applicationLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	store := inj.Artifacts()
	if store == nil {
		return "", ErrNoArtifactStore
	}
	sc, ok := any(app).(Screenshotter)
	if !ok {
		return "", fmt.Errorf("application %T cannot take screenshots", app)
	}

	data, err := sc.Screenshot(ctx)
	if err != nil {
		inj.Metrics().RecordArtifact("screenshot", observability.ResultError)
		return "", fmt.Errorf("capturing screenshot: %w", err)
	}
	uri, err := store.SaveScreenshot(ctx, sc.SessionID(), name, data)
	if err != nil {
		inj.Metrics().RecordArtifact("screenshot", observability.ResultError)
		return "", fmt.Errorf("storing screenshot: %w", err)
	}
	inj.Metrics().RecordArtifact("screenshot", "stored")
	inj.Logger().Info("loc.screenshot.saved", uri)
	return uri, nil
}

// Close quits the application if it is running
func (s *Services[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasApp {
		return nil
	}
	app := s.app
	var zero T
	s.app = zero
	s.hasApp = false
	if !app.IsStarted() {
		return nil
	}

	if s.injector != nil {
		s.injector.Logger().Info("loc.application.quit")
		s.injector.Metrics().RecordApplicationQuit()
	}
	return app.Quit()
}
