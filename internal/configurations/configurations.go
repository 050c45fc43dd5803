// Package configurations exposes typed views over a settings document.
package configurations

import (
	"fmt"
	"time"

	"github.com/testforge/uicore/internal/settings"
)

// LoggerConfiguration holds the language used for element-action messages
type LoggerConfiguration struct {
	Language string
}

// NewLoggerConfiguration reads logger.language, defaulting to "en"
func NewLoggerConfiguration(file settings.File) LoggerConfiguration {
	lang, err := file.String("logger.language")
	if err != nil || lang == "" {
		lang = "en"
	}
	return LoggerConfiguration{Language: lang}
}

// TimeoutConfiguration holds wait bounds for lookups and driver commands
type TimeoutConfiguration struct {
	// Condition bounds element lookups and explicit waits
	Condition time.Duration
	// PollingInterval is the pause between condition checks
	PollingInterval time.Duration
	// Command bounds a single driver command
	Command time.Duration
}

func NewTimeoutConfiguration(file settings.File) (TimeoutConfiguration, error) {
	condition, err := seconds(file, "timeouts.timeoutCondition", 30)
	if err != nil {
		return TimeoutConfiguration{}, err
	}
	polling, err := millis(file, "timeouts.timeoutPollingInterval", 300)
	if err != nil {
		return TimeoutConfiguration{}, err
	}
	command, err := seconds(file, "timeouts.timeoutCommand", 60)
	if err != nil {
		return TimeoutConfiguration{}, err
	}
	return TimeoutConfiguration{
		Condition:       condition,
		PollingInterval: polling,
		Command:         command,
	}, nil
}

// RetryConfiguration controls how often stale-node actions are retried
type RetryConfiguration struct {
	Number          int
	PollingInterval time.Duration
}

func NewRetryConfiguration(file settings.File) (RetryConfiguration, error) {
	number, err := intOr(file, "retry.number", 2)
	if err != nil {
		return RetryConfiguration{}, err
	}
	if number < 0 {
		return RetryConfiguration{}, fmt.Errorf("retry.number must not be negative, got %d", number)
	}
	polling, err := millis(file, "retry.pollingInterval", 300)
	if err != nil {
		return RetryConfiguration{}, err
	}
	return RetryConfiguration{Number: number, PollingInterval: polling}, nil
}

func intOr(file settings.File, path string, def int) (int, error) {
	if !file.IsPresent(path) {
		return def, nil
	}
	n, err := file.Int(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return n, nil
}

func durationOr(file settings.File, path string, def int, unit time.Duration) (time.Duration, error) {
	if !file.IsPresent(path) {
		return time.Duration(def) * unit, nil
	}
	d, err := file.Duration(path, unit)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	return d, nil
}

func seconds(file settings.File, path string, def int) (time.Duration, error) {
	return durationOr(file, path, def, time.Second)
}

func millis(file settings.File, path string, def int) (time.Duration, error) {
	return durationOr(file, path, def, time.Millisecond)
}
