// Package localization provides translated messages for element-action logs
// and lookup failures.
package localization

import (
	"embed"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// DefaultLanguage is used when the configured language has no bundle
const DefaultLanguage = "en"

//go:embed resources/*.json
var bundles embed.FS

// Manager resolves message keys for one language
type Manager struct {
	language string
	messages map[string]string
	fallback map[string]string
}

// NewManager loads the bundle for language, falling back to English
func NewManager(language string) *Manager {
	language = strings.ToLower(strings.TrimSpace(language))
	fallback := load(DefaultLanguage)

	messages := load(language)
	if messages == nil {
		language = DefaultLanguage
		messages = fallback
	}

	return &Manager{
		language: language,
		messages: messages,
		fallback: fallback,
	}
}

// Language is the language actually in use
func (m *Manager) Language() string {
	return m.language
}

// Get formats the message for key. Unknown keys are returned as is.
func (m *Manager) Get(key string, args ...any) string {
	tmpl, ok := m.messages[key]
	if !ok {
		tmpl, ok = m.fallback[key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func load(language string) map[string]string {
	data, err := bundles.ReadFile("resources/" + language + ".json")
	if err != nil {
		return nil
	}
	messages := make(map[string]string)
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		messages[key.String()] = value.String()
		return true
	})
	return messages
}

// LocalizedLogger writes translated messages through zap
type LocalizedLogger struct {
	manager *Manager
	logger  *zap.Logger
}

func NewLocalizedLogger(manager *Manager, logger *zap.Logger) *LocalizedLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalizedLogger{manager: manager, logger: logger}
}

func (l *LocalizedLogger) Manager() *Manager {
	return l.manager
}

func (l *LocalizedLogger) Logger() *zap.Logger {
	return l.logger
}

func (l *LocalizedLogger) Info(key string, args ...any) {
	l.logger.Info(l.manager.Get(key, args...))
}

func (l *LocalizedLogger) Debug(key string, args ...any) {
	l.logger.Debug(l.manager.Get(key, args...))
}

func (l *LocalizedLogger) Warn(key string, args ...any) {
	l.logger.Warn(l.manager.Get(key, args...))
}

// InfoElementAction logs "<Type> '<name>' :: <message>" for an element of kind
func (l *LocalizedLogger) InfoElementAction(kind, name, key string, args ...any) {
	l.logger.Info(l.ElementMessage(kind, name, key, args...),
		zap.String("element_kind", kind),
		zap.String("element_name", name),
	)
}

func (l *LocalizedLogger) DebugElementAction(kind, name, key string, args ...any) {
	l.logger.Debug(l.ElementMessage(kind, name, key, args...),
		zap.String("element_kind", kind),
		zap.String("element_name", name),
	)
}

// ElementMessage renders an element-action message without logging it
func (l *LocalizedLogger) ElementMessage(kind, name, key string, args ...any) string {
	return fmt.Sprintf("%s '%s' :: %s", l.manager.Get("loc."+kind), name, l.manager.Get(key, args...))
}
