package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvCI          Environment = "ci"
	EnvProduction  Environment = "production"
)

// Artifact backends
const (
	ArtifactsMinIO = "minio"
	ArtifactsFS    = "fs"
)

// Browser drivers
const (
	DriverPlaywright = "playwright"
	DriverRod        = "rod"
)

// Config holds process-level configuration. Per-profile test settings
// (language, timeouts, retries) live in settings documents instead.
type Config struct {
	// Environment
	Env      Environment `envconfig:"ENV" default:"development"`
	LogLevel string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool        `envconfig:"DEBUG" default:"false"`

	// Settings profile
	Profile     string `envconfig:"PROFILE" default:""`
	SettingsDir string `envconfig:"SETTINGS_DIR" default:"."`

	// Browser
	Browser BrowserConfig

	// Failure artifacts
	Artifacts ArtifactsConfig

	// Metrics
	Metrics MetricsConfig
}

// BrowserConfig selects and tunes the browser backend
type BrowserConfig struct {
	Driver         string        `envconfig:"BROWSER_DRIVER" default:"playwright"` // playwright, rod
	Headless       bool          `envconfig:"BROWSER_HEADLESS" default:"true"`
	ExecutablePath string        `envconfig:"BROWSER_EXECUTABLE_PATH" default:""`
	ViewportWidth  int           `envconfig:"BROWSER_VIEWPORT_WIDTH" default:"1280"`
	ViewportHeight int           `envconfig:"BROWSER_VIEWPORT_HEIGHT" default:"720"`
	CommandTimeout time.Duration `envconfig:"BROWSER_COMMAND_TIMEOUT" default:"60s"`
	StartURL       string        `envconfig:"BROWSER_START_URL" default:""`
}

// ArtifactsConfig selects where failure screenshots go: a MinIO/S3 bucket
// or a local directory
type ArtifactsConfig struct {
	Enabled         bool          `envconfig:"ARTIFACTS_ENABLED" default:"false"`
	Backend         string        `envconfig:"ARTIFACTS_BACKEND" default:"minio"` // minio, fs
	Dir             string        `envconfig:"ARTIFACTS_DIR" default:"artifacts"`
	Endpoint        string        `envconfig:"ARTIFACTS_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"ARTIFACTS_ACCESS_KEY_ID" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"ARTIFACTS_SECRET_ACCESS_KEY" default:"minioadmin"`
	Bucket          string        `envconfig:"ARTIFACTS_BUCKET" default:"uicore-artifacts"`
	UseSSL          bool          `envconfig:"ARTIFACTS_USE_SSL" default:"false"`
	PresignExpiry   time.Duration `envconfig:"ARTIFACTS_PRESIGN_EXPIRY" default:"0s"`
	ScreenshotPath  string        `envconfig:"ARTIFACTS_SCREENSHOT_PATH" default:"screenshots"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"uicore"`
	// Addr serves /metrics when set, e.g. ":9102"
	Addr string `envconfig:"METRICS_ADDR" default:""`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config without failing on values that do not
// parse (for CLI tools)
func LoadWithDefaults() (*Config, error) {
	var cfg Config

	// Try to load from env, but don't fail on bad values
	envconfig.Process("", &cfg)

	if cfg.Env == "" {
		cfg.Env = EnvDevelopment
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SettingsDir == "" {
		cfg.SettingsDir = "."
	}
	if cfg.Browser.Driver == "" {
		cfg.Browser.Driver = DriverPlaywright
	}
	if cfg.Browser.CommandTimeout == 0 {
		cfg.Browser.CommandTimeout = 60 * time.Second
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "uicore"
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errors []string

	switch c.Browser.Driver {
	case DriverPlaywright, DriverRod:
	default:
		errors = append(errors, fmt.Sprintf("BROWSER_DRIVER must be %q or %q, got %q", DriverPlaywright, DriverRod, c.Browser.Driver))
	}

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		errors = append(errors, "BROWSER_VIEWPORT_WIDTH and BROWSER_VIEWPORT_HEIGHT must not be negative")
	}

	if c.Artifacts.Enabled {
		switch c.Artifacts.Backend {
		case ArtifactsMinIO, "":
			if c.Artifacts.Endpoint == "" || c.Artifacts.Bucket == "" {
				errors = append(errors, "ARTIFACTS_ENDPOINT and ARTIFACTS_BUCKET are required when artifacts are enabled")
			}
			if c.Artifacts.PresignExpiry < 0 || c.Artifacts.PresignExpiry > 7*24*time.Hour {
				errors = append(errors, "ARTIFACTS_PRESIGN_EXPIRY must be between 0 and 168h")
			}
		case ArtifactsFS:
			if c.Artifacts.Dir == "" {
				errors = append(errors, "ARTIFACTS_DIR is required for the fs artifacts backend")
			}
		default:
			errors = append(errors, fmt.Sprintf("ARTIFACTS_BACKEND must be %q or %q, got %q", ArtifactsMinIO, ArtifactsFS, c.Artifacts.Backend))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// GetLogLevel returns the appropriate zap log level
func (c *Config) GetLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
