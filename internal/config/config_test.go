package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %v, want %v", cfg.Env, EnvDevelopment)
	}
	if cfg.Browser.Driver != DriverPlaywright {
		t.Errorf("Browser.Driver = %v, want %v", cfg.Browser.Driver, DriverPlaywright)
	}
	if !cfg.Browser.Headless {
		t.Error("Browser.Headless = false, want true")
	}
	if cfg.Browser.CommandTimeout != 60*time.Second {
		t.Errorf("Browser.CommandTimeout = %v, want 60s", cfg.Browser.CommandTimeout)
	}
	if cfg.SettingsDir != "." {
		t.Errorf("SettingsDir = %q, want \".\"", cfg.SettingsDir)
	}
	if cfg.Artifacts.Enabled {
		t.Error("Artifacts.Enabled = true, want false")
	}
	if cfg.Artifacts.Backend != ArtifactsMinIO || cfg.Artifacts.Dir != "artifacts" {
		t.Errorf("Artifacts backend = %q dir = %q, want minio and \"artifacts\"", cfg.Artifacts.Backend, cfg.Artifacts.Dir)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PROFILE", "ru")
	t.Setenv("BROWSER_DRIVER", "rod")
	t.Setenv("BROWSER_COMMAND_TIMEOUT", "5s")
	t.Setenv("METRICS_ADDR", ":9102")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Profile != "ru" {
		t.Errorf("Profile = %q, want \"ru\"", cfg.Profile)
	}
	if cfg.Browser.Driver != DriverRod {
		t.Errorf("Browser.Driver = %v, want %v", cfg.Browser.Driver, DriverRod)
	}
	if cfg.Browser.CommandTimeout != 5*time.Second {
		t.Errorf("Browser.CommandTimeout = %v, want 5s", cfg.Browser.CommandTimeout)
	}
	if cfg.Metrics.Addr != ":9102" {
		t.Errorf("Metrics.Addr = %q, want \":9102\"", cfg.Metrics.Addr)
	}
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("BROWSER_DRIVER", "selenium")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for unknown driver")
	}
}

func TestLoadWithDefaults_ToleratesBadValues(t *testing.T) {
	t.Setenv("BROWSER_HEADLESS", "maybe")

	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.Browser.Driver != DriverPlaywright {
		t.Errorf("Browser.Driver = %v, want %v", cfg.Browser.Driver, DriverPlaywright)
	}
	if cfg.Metrics.Namespace != "uicore" {
		t.Errorf("Metrics.Namespace = %q, want \"uicore\"", cfg.Metrics.Namespace)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name     string
		env      Environment
		expected bool
	}{
		{
			name:     "development",
			env:      EnvDevelopment,
			expected: true,
		},
		{
			name:     "ci",
			env:      EnvCI,
			expected: false,
		},
		{
			name:     "production",
			env:      EnvProduction,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.expected {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name     string
		env      Environment
		expected bool
	}{
		{
			name:     "development",
			env:      EnvDevelopment,
			expected: false,
		},
		{
			name:     "production",
			env:      EnvProduction,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Env: tt.env}
			if got := cfg.IsProduction(); got != tt.expected {
				t.Errorf("IsProduction() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_GetLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    bool
		logLevel string
		expected string
	}{
		{
			name:     "debug mode overrides",
			debug:    true,
			logLevel: "info",
			expected: "debug",
		},
		{
			name:     "normal mode uses log level",
			debug:    false,
			logLevel: "warn",
			expected: "warn",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Debug: tt.debug, LogLevel: tt.logLevel}
			if got := cfg.GetLogLevel(); got != tt.expected {
				t.Errorf("GetLogLevel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid playwright config",
			config:  &Config{Browser: BrowserConfig{Driver: DriverPlaywright}},
			wantErr: false,
		},
		{
			name:    "valid rod config",
			config:  &Config{Browser: BrowserConfig{Driver: DriverRod}},
			wantErr: false,
		},
		{
			name:    "unknown driver",
			config:  &Config{Browser: BrowserConfig{Driver: "webdriver"}},
			wantErr: true,
		},
		{
			name:    "negative viewport",
			config:  &Config{Browser: BrowserConfig{Driver: DriverRod, ViewportWidth: -1}},
			wantErr: true,
		},
		{
			name: "artifacts without bucket",
			config: &Config{
				Browser:   BrowserConfig{Driver: DriverPlaywright},
				Artifacts: ArtifactsConfig{Enabled: true, Endpoint: "localhost:9000"},
			},
			wantErr: true,
		},
		{
			name: "fs artifacts",
			config: &Config{
				Browser:   BrowserConfig{Driver: DriverPlaywright},
				Artifacts: ArtifactsConfig{Enabled: true, Backend: ArtifactsFS, Dir: "out"},
			},
			wantErr: false,
		},
		{
			name: "fs artifacts without dir",
			config: &Config{
				Browser:   BrowserConfig{Driver: DriverPlaywright},
				Artifacts: ArtifactsConfig{Enabled: true, Backend: ArtifactsFS},
			},
			wantErr: true,
		},
		{
			name: "unknown artifacts backend",
			config: &Config{
				Browser:   BrowserConfig{Driver: DriverPlaywright},
				Artifacts: ArtifactsConfig{Enabled: true, Backend: "gcs", Dir: "out"},
			},
			wantErr: true,
		},
		{
			name: "presign expiry beyond a week",
			config: &Config{
				Browser: BrowserConfig{Driver: DriverPlaywright},
				Artifacts: ArtifactsConfig{
					Enabled: true, Backend: ArtifactsMinIO, Endpoint: "localhost:9000", Bucket: "b",
					PresignExpiry: 8 * 24 * time.Hour,
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
