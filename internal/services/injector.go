package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/configurations"
	"github.com/testforge/uicore/internal/domain"
	"github.com/testforge/uicore/internal/driver"
	"github.com/testforge/uicore/internal/elements"
	"github.com/testforge/uicore/internal/localization"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/resilience"
	"github.com/testforge/uicore/internal/settings"
	"github.com/testforge/uicore/internal/storage"
)

// Injector is the service container built from a Module
type Injector struct {
	module    Module
	settings  settings.File
	loggerCfg configurations.LoggerConfiguration
	timeouts  configurations.TimeoutConfiguration
	retry     configurations.RetryConfiguration
	manager   *localization.Manager
	logger    *localization.LocalizedLogger
	wait      *resilience.ConditionalWait
	retrier   *resilience.ActionRetrier
	metrics   *observability.Metrics
	artifacts storage.ArtifactStore
	sessionID string
}

// NewInjector resolves every provider of m. Failures are configuration errors.
func NewInjector(m Module) (*Injector, error) {
	m = m.withDefaults()

	file, err := m.Settings(m)
	if err != nil {
		return nil, domain.ConfigurationError("loading settings", err)
	}
	timeouts, err := m.Timeouts(file)
	if err != nil {
		return nil, domain.ConfigurationError("reading timeouts", err)
	}
	retry, err := m.Retry(file)
	if err != nil {
		return nil, domain.ConfigurationError("reading retry settings", err)
	}
	artifacts, err := m.Artifacts(m)
	if err != nil {
		return nil, domain.ConfigurationError("creating artifact store", err)
	}

	loggerCfg := configurations.NewLoggerConfiguration(file)
	manager := m.Localization(loggerCfg)
	sessionID := uuid.NewString()
	zapLogger := m.Logger.With(zap.String("profile", m.Profile), zap.String("injector_id", sessionID))

	inj := &Injector{
		module:    m,
		settings:  file,
		loggerCfg: loggerCfg,
		timeouts:  timeouts,
		retry:     retry,
		manager:   manager,
		logger:    localization.NewLocalizedLogger(manager, zapLogger),
		wait:      resilience.NewConditionalWait(timeouts),
		retrier:   resilience.NewActionRetrier(retry),
		metrics:   m.Metrics(m),
		artifacts: artifacts,
		sessionID: sessionID,
	}
	zapLogger.Debug("Injector built",
		zap.String("settings", file.Source()),
		zap.String("language", manager.Language()),
		zap.Duration("condition_timeout", timeouts.Condition),
	)
	return inj, nil
}

func (i *Injector) Module() Module { return i.module }
func (i *Injector) Settings() settings.File { return i.settings }
func (i *Injector) LoggerConfiguration() configurations.LoggerConfiguration { return i.loggerCfg }
func (i *Injector) TimeoutConfiguration() configurations.TimeoutConfiguration { return i.timeouts }
func (i *Injector) RetryConfiguration() configurations.RetryConfiguration { return i.retry }
func (i *Injector) Localization() *localization.Manager { return i.manager }
func (i *Injector) Logger() *localization.LocalizedLogger { return i.logger }
func (i *Injector) ConditionalWait() *resilience.ConditionalWait { return i.wait }
func (i *Injector) ActionRetrier() *resilience.ActionRetrier { return i.retrier }
func (i *Injector) Metrics() *observability.Metrics { return i.metrics }

// Artifacts is nil when no artifact store is configured
func (i *Injector) Artifacts() storage.ArtifactStore { return i.artifacts }

// SessionID identifies this container in logs
func (i *Injector) SessionID() string { return i.sessionID }

func (i *Injector) ElementFinder(d driver.Driver) *elements.ElementFinder {
	return elements.NewElementFinder(d, i.wait, i.logger, i.metrics)
}

// ElementFactory builds a factory over d with the module's custom kinds registered
func (i *Injector) ElementFactory(d driver.Driver) *elements.ElementFactory {
	f := elements.NewElementFactory(i.ElementFinder(d), i.wait, i.retrier, i.logger, i.metrics)
	if i.module.Elements != nil {
		i.module.Elements(f)
	}
	return f
}
