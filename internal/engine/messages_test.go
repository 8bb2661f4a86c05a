package engine_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
)

var translationKeys = []string{
	config.TKeyHelp,
	config.TKeyHelpBirthday,
	config.TKeyHelpEvent,
	config.TKeyHeaderBirthdays,
	config.TKeyHeaderEvents,
	config.TKeyEmptyBirthdays,
	config.TKeyEmptyEvents,
	config.TKeyBirthdayLine,
	config.TKeyEventLineTimed,
	config.TKeyEventLineAllDay,
	config.TKeyBirthdayAdded,
	config.TKeyFeedSummary,
	config.TKeyFeedBirth,
}

// TestI18nIntegrity ensures every translation key defined in config exists
// in every supported locale file.
func TestI18nIntegrity(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("locales", "active."+lang+".json"))
			require.NoError(t, err)

			var messages map[string]string
			require.NoError(t, json.Unmarshal(content, &messages))

			for _, k := range translationKeys {
				assert.NotEmpty(t, messages[k], "Key %q missing in %s", k, lang)
			}
		})
	}
}

func TestNewCatalog(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		c, err := engine.NewCatalog(lang)
		require.NoError(t, err, lang)
		assert.Equal(t, lang, c.Lang)
	}

	_, err := engine.NewCatalog("xx")
	assert.Error(t, err)
}

func TestCatalog_Text(t *testing.T) {
	en := newCatalog(t)
	assert.Equal(t, "Alice - Fri Mar 15 (34 years)", en.Text(config.TKeyBirthdayLine, map[string]any{
		"Name": "Alice", "Date": "Fri Mar 15", "Age": 34,
	}))
	assert.Equal(t, "no_such_key", en.Text("no_such_key", nil))

	fr, err := engine.NewCatalog("fr")
	require.NoError(t, err)
	assert.Equal(t, "Alice - Fri Mar 15 (34 ans)", fr.Text(config.TKeyBirthdayLine, map[string]any{
		"Name": "Alice", "Date": "Fri Mar 15", "Age": 34,
	}))

	var nilCatalog *engine.Catalog
	assert.Equal(t, config.TKeyHelp, nilCatalog.Text(config.TKeyHelp, nil))
}
