package localization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestManager_Get(t *testing.T) {
	tests := []struct {
		name     string
		language string
		key      string
		args     []any
		want     string
	}{
		{"english", "en", "loc.clicking", nil, "Clicking"},
		{"russian", "ru", "loc.clicking", nil, "Клик"},
		{"formatted", "en", "loc.text.typing", []any{"abc"}, "Typing 'abc'"},
		{"case insensitive language", " RU ", "loc.button", nil, "Кнопка"},
		{"unknown language falls back", "xx", "loc.clicking", nil, "Clicking"},
		{"unknown key", "en", "loc.nope", nil, "loc.nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewManager(tt.language).Get(tt.key, tt.args...))
		})
	}
}

func TestManager_Language(t *testing.T) {
	assert.Equal(t, "ru", NewManager("ru").Language())
	assert.Equal(t, DefaultLanguage, NewManager("klingon").Language())
}

func TestBundlesHaveSameKeys(t *testing.T) {
	en := load("en")
	ru := load("ru")
	for key := range en {
		assert.Contains(t, ru, key)
	}
	assert.Len(t, ru, len(en))
}

func TestLocalizedLogger_InfoElementAction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewLocalizedLogger(NewManager("en"), zap.New(core))

	l.InfoElementAction("button", "Submit", "loc.clicking")
	l.DebugElementAction("button", "Submit", "loc.clicking")

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Button 'Submit' :: Clicking", entries[0].Message)
	assert.Equal(t, "Submit", entries[0].ContextMap()["element_name"])
}
