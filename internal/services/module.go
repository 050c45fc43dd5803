// Package services hands each test its own application and service
// container. A Services value is owned by one test; parallel tests each
// create their own and share nothing.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/testforge/uicore/internal/config"
	"github.com/testforge/uicore/internal/configurations"
	"github.com/testforge/uicore/internal/elements"
	"github.com/testforge/uicore/internal/localization"
	"github.com/testforge/uicore/internal/observability"
	"github.com/testforge/uicore/internal/resilience"
	"github.com/testforge/uicore/internal/settings"
	"github.com/testforge/uicore/internal/storage"
)

// Module describes how an Injector is built. Nil provider funcs fall back
// to the defaults.
type Module struct {
	// Profile selects settings.<profile>.json (or .yaml/.yml)
	Profile     string
	SettingsDir string
	Fs          afero.Fs
	// LookupEnv resolves settings overrides; nil means os.LookupEnv
	LookupEnv        func(string) (string, bool)
	Logger           *zap.Logger
	MetricsNamespace string

	Settings     func(m Module) (settings.File, error)
	Localization func(cfg configurations.LoggerConfiguration) *localization.Manager
	Timeouts     func(file settings.File) (configurations.TimeoutConfiguration, error)
	Retry        func(file settings.File) (configurations.RetryConfiguration, error)
	Metrics      func(m Module) *observability.Metrics
	// Artifacts may return a nil store to disable screenshots
	Artifacts func(m Module) (storage.ArtifactStore, error)
	// Elements registers custom kinds on every factory the injector builds
	Elements func(f *elements.ElementFactory)
}

// DefaultModule reads settings for profile from the working directory
func DefaultModule(profile string) Module {
	return Module{
		Profile:     profile,
		SettingsDir: ".",
		Fs:          afero.NewOsFs(),
	}
}

// ModuleFromConfig builds a module from process configuration. Artifacts
// go to MinIO or a local directory when enabled, behind a breaker shared by
// every injector of the module.
func ModuleFromConfig(cfg *config.Config, logger *zap.Logger) Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := DefaultModule(cfg.Profile)
	m.SettingsDir = cfg.SettingsDir
	m.Logger = logger
	m.MetricsNamespace = cfg.Metrics.Namespace
	if cfg.Artifacts.Enabled {
		artifacts := cfg.Artifacts
		breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:             "artifacts",
			FailureThreshold: 3,
			OpenTimeout:      time.Minute,
			OnStateChange: func(name string, from, to resilience.BreakerState) {
				logger.Warn("Artifact store breaker changed state",
					zap.String("backend", artifacts.Backend),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
		m.Artifacts = func(m Module) (storage.ArtifactStore, error) {
			store, err := artifactStore(m, artifacts)
			if err != nil {
				return nil, err
			}
			return storage.NewGuardedStore(store, breaker), nil
		}
	}
	return m
}

func artifactStore(m Module, cfg config.ArtifactsConfig) (storage.ArtifactStore, error) {
	if cfg.Backend == config.ArtifactsFS {
		fs := m.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		return storage.NewFSStore(fs, cfg.Dir, cfg.ScreenshotPath), nil
	}

	store, err := storage.NewMinIOStore(storage.MinIOConfig{
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UseSSL:          cfg.UseSSL,
		BucketName:      cfg.Bucket,
		Prefix:          cfg.ScreenshotPath,
		PresignExpiry:   cfg.PresignExpiry,
	})
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// WithProfile returns a copy of m reading another profile
func (m Module) WithProfile(profile string) Module {
	m.Profile = profile
	return m
}

func (m Module) withDefaults() Module {
	if m.Fs == nil {
		m.Fs = afero.NewOsFs()
	}
	if m.SettingsDir == "" {
		m.SettingsDir = "."
	}
	if m.Logger == nil {
		m.Logger = zap.NewNop()
	}
	if m.Settings == nil {
		m.Settings = loadSettings
	}
	if m.Localization == nil {
		m.Localization = func(cfg configurations.LoggerConfiguration) *localization.Manager {
			return localization.NewManager(cfg.Language)
		}
	}
	if m.Timeouts == nil {
		m.Timeouts = configurations.NewTimeoutConfiguration
	}
	if m.Retry == nil {
		m.Retry = configurations.NewRetryConfiguration
	}
	if m.Metrics == nil {
		m.Metrics = func(m Module) *observability.Metrics {
			return observability.NewMetrics(m.MetricsNamespace)
		}
	}
	if m.Artifacts == nil {
		m.Artifacts = func(Module) (storage.ArtifactStore, error) { return nil, nil }
	}
	return m
}

func loadSettings(m Module) (settings.File, error) {
	file, err := settings.LoadFS(m.Fs, m.SettingsDir, m.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading settings for profile %q: %w", m.Profile, err)
	}
	if m.LookupEnv != nil {
		file = file.WithEnv(m.LookupEnv)
	}
	return file, nil
}
