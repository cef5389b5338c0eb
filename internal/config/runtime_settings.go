package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

const DefaultRuntimeSettingsFile = "./data/settings.json"

// RuntimeSettings is the subset of configuration adjustable through the
// HTTP API without a restart.
type RuntimeSettings struct {
	TranslateAPIURL string `json:"translate_api_url"`
	TranslateAPIKey string `json:"translate_api_key"`
	TranslateModel  string `json:"translate_model"`
	TargetLanguage  string `json:"target_language"`
	CronExpr        string `json:"cron_expr"`
}

func RuntimeSettingsFilePath() string {
	return getEnvString("SETTINGS_FILE", DefaultRuntimeSettingsFile)
}

func (s RuntimeSettings) Validate() error {
	if strings.TrimSpace(s.TranslateAPIURL) == "" {
		return fmt.Errorf("translate_api_url is required")
	}
	if strings.TrimSpace(s.TranslateModel) == "" {
		return fmt.Errorf("translate_model is required")
	}
	if strings.TrimSpace(s.TargetLanguage) == "" {
		return fmt.Errorf("target_language is required")
	}
	if err := validateLanguageCode(s.TargetLanguage); err != nil {
		return fmt.Errorf("invalid target_language %q: %w", s.TargetLanguage, err)
	}
	if strings.TrimSpace(s.CronExpr) == "" {
		return fmt.Errorf("cron_expr is required")
	}
	if _, err := cron.ParseStandard(s.CronExpr); err != nil {
		return fmt.Errorf("invalid cron_expr: %w", err)
	}
	return nil
}

func (c *Config) RuntimeSettings() RuntimeSettings {
	return RuntimeSettings{
		TranslateAPIURL: c.Translate.APIURL,
		TranslateAPIKey: c.Translate.APIKey,
		TranslateModel:  c.Translate.Model,
		TargetLanguage:  c.Translate.TargetLanguage,
		CronExpr:        c.Maintenance.CronExpr,
	}
}

func WithRuntimeSettings(settings RuntimeSettings) Option {
	return func(c *Config) {
		if strings.TrimSpace(settings.TranslateAPIURL) != "" {
			c.Translate.APIURL = settings.TranslateAPIURL
		}
		if strings.TrimSpace(settings.TranslateAPIKey) != "" {
			c.Translate.APIKey = settings.TranslateAPIKey
		}
		if strings.TrimSpace(settings.TranslateModel) != "" {
			c.Translate.Model = settings.TranslateModel
		}
		if err := validateLanguageCode(settings.TargetLanguage); err == nil {
			c.Translate.TargetLanguage = settings.TargetLanguage
		}
		if strings.TrimSpace(settings.CronExpr) != "" {
			c.Maintenance.CronExpr = settings.CronExpr
		}
	}
}

func LoadRuntimeSettingsFile(path string) (RuntimeSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuntimeSettings{}, err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return RuntimeSettings{}, fmt.Errorf("invalid settings file: %w", err)
	}
	return settings, nil
}

func WriteRuntimeSettingsFile(path string, settings RuntimeSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	content, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	content = append(content, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// RuntimeSettingsStore serializes settings updates coming from the HTTP API
// and persists each accepted change.
type RuntimeSettingsStore struct {
	path string

	mu      sync.RWMutex
	current RuntimeSettings
}

func NewRuntimeSettingsStore(path string, initial RuntimeSettings) (*RuntimeSettingsStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("settings file path is required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	return &RuntimeSettingsStore{
		path:    path,
		current: initial,
	}, nil
}

func (s *RuntimeSettingsStore) GetRuntimeSettings() (RuntimeSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

func (s *RuntimeSettingsStore) UpdateRuntimeSettings(next RuntimeSettings) (RuntimeSettings, error) {
	if err := next.Validate(); err != nil {
		return RuntimeSettings{}, err
	}
	if err := WriteRuntimeSettingsFile(s.path, next); err != nil {
		return RuntimeSettings{}, err
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	return next, nil
}
