package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "./data/lingoreel.db", cfg.Storage.DBPath)
	assert.Equal(t, "en", cfg.Translate.PrimaryLanguage)
	assert.Equal(t, "vi", cfg.Translate.TargetLanguage)
	assert.Equal(t, ":8080", cfg.Server.HTTPAddr)
	assert.Equal(t, 2, cfg.Server.ImportWorkers)
}

func TestLoadTOMLFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lingoreel.toml")
	content := `
log_level = "debug"

[storage]
db_path = "/var/lib/lingoreel/db.sqlite"

[translate]
model = "gpt-4o"
target_language = "fr"

[server]
http_addr = ":9999"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("TRANSLATE_MODEL", "gpt-4.1-mini")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/lingoreel/db.sqlite", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "fr", cfg.Translate.TargetLanguage)
	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	// Env wins over the file.
	assert.Equal(t, "gpt-4.1-mini", cfg.Translate.Model)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoadRejectsSameLanguagePair(t *testing.T) {
	t.Setenv("TARGET_LANGUAGE", "en")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsUnknownLanguage(t *testing.T) {
	// Well-formed per BCP 47 but not a real language, so language.Parse
	// alone would let it through.
	t.Setenv("TARGET_LANGUAGE", "not-a-language")
	_, err := Load("")
	require.Error(t, err)
}

func TestLoadRejectsBadCron(t *testing.T) {
	t.Setenv("MAINTENANCE_CRON", "every day at noon")
	_, err := Load("")
	require.Error(t, err)
}

func TestRuntimeSettingsValidate(t *testing.T) {
	valid := RuntimeSettings{
		TranslateAPIURL: "https://api.openai.com/v1",
		TranslateModel:  "gpt-4o-mini",
		TargetLanguage:  "vi",
		CronExpr:        "0 3 * * *",
	}
	require.NoError(t, valid.Validate())

	badLang := valid
	badLang.TargetLanguage = "not-a-language"
	require.Error(t, badLang.Validate())

	badCron := valid
	badCron.CronExpr = "nope"
	require.Error(t, badCron.Validate())
}

func TestRuntimeSettingsStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	initial := RuntimeSettings{
		TranslateAPIURL: "https://api.openai.com/v1",
		TranslateModel:  "gpt-4o-mini",
		TargetLanguage:  "vi",
		CronExpr:        "0 3 * * *",
	}
	store, err := NewRuntimeSettingsStore(path, initial)
	require.NoError(t, err)

	next := initial
	next.TargetLanguage = "ja"
	_, err = store.UpdateRuntimeSettings(next)
	require.NoError(t, err)

	loaded, err := LoadRuntimeSettingsFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ja", loaded.TargetLanguage)

	current, err := store.GetRuntimeSettings()
	require.NoError(t, err)
	assert.Equal(t, "ja", current.TargetLanguage)
}
