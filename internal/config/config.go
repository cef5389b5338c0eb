package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds all application configuration. Values resolve in three
// layers: built-in defaults, an optional TOML file, then environment
// variables.
//
// Environment Variables:
//
// Storage:
// - LINGOREEL_DB_PATH: sqlite database file (default: ./data/lingoreel.db)
// - LINGOREEL_SUBTITLES_DIR: exported caption files root (default: ./data/subtitles)
//
// Translation:
// - TRANSLATE_API_KEY: API key for the translation provider (required for imports)
// - TRANSLATE_API_URL: API endpoint URL (default: OpenAI)
// - TRANSLATE_MODEL: model name (default: gpt-4o-mini)
// - TRANSLATE_TIMEOUT: request timeout in seconds (default: 30)
// - TRANSLATE_PARALLELISM: concurrent translation batches (default: 1)
// - PRIMARY_LANGUAGE: language of the source captions (default: en)
// - TARGET_LANGUAGE: language learners read along in (default: vi)
//
// Platform:
// - YTDLP_PATH: yt-dlp binary, searched on PATH when empty
// - YTDLP_COOKIE_FILE: Netscape cookie jar for gated videos
//
// Server:
// - HTTP_ADDR: listen address (default: :8080)
// - IMPORT_WORKERS: import queue worker count (default: 2)
// - MAINTENANCE_CRON: caption file maintenance schedule (default: 0 3 * * *)
//
// System:
// - LOG_LEVEL: debug, info, warn or error (default: info)
type Config struct {
	Storage     StorageConfig     `toml:"storage" json:"storage"`
	Translate   TranslateConfig   `toml:"translate" json:"translate"`
	Platform    PlatformConfig    `toml:"platform" json:"platform"`
	Server      ServerConfig      `toml:"server" json:"server"`
	Maintenance MaintenanceConfig `toml:"maintenance" json:"maintenance"`
	LogLevel    string            `toml:"log_level" json:"log_level"`
}

type StorageConfig struct {
	DBPath       string `toml:"db_path" json:"db_path"`
	SubtitlesDir string `toml:"subtitles_dir" json:"subtitles_dir"`
}

// TranslateConfig holds the provider settings plus the language pair every
// pipeline run works in.
type TranslateConfig struct {
	APIKey          string `toml:"api_key" json:"api_key"`
	APIURL          string `toml:"api_url" json:"api_url"`
	Model           string `toml:"model" json:"model"`
	Timeout         int    `toml:"timeout" json:"timeout"`
	Parallelism     int    `toml:"parallelism" json:"parallelism"`
	PrimaryLanguage string `toml:"primary_language" json:"primary_language"`
	TargetLanguage  string `toml:"target_language" json:"target_language"`
}

type PlatformConfig struct {
	YtDlpPath  string `toml:"ytdlp_path" json:"ytdlp_path"`
	CookieFile string `toml:"cookie_file" json:"cookie_file"`
}

type ServerConfig struct {
	HTTPAddr      string `toml:"http_addr" json:"http_addr"`
	ImportWorkers int    `toml:"import_workers" json:"import_workers"`
}

type MaintenanceConfig struct {
	CronExpr string `toml:"cron_expr" json:"cron_expr"`
}

// Option is a function type for adjusting Config after loading.
type Option func(*Config)

func defaults() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath:       "./data/lingoreel.db",
			SubtitlesDir: "./data/subtitles",
		},
		Translate: TranslateConfig{
			APIURL:          "https://api.openai.com/v1",
			Model:           "gpt-4o-mini",
			Timeout:         30,
			Parallelism:     1,
			PrimaryLanguage: "en",
			TargetLanguage:  "vi",
		},
		Server: ServerConfig{
			HTTPAddr:      ":8080",
			ImportWorkers: 2,
		},
		Maintenance: MaintenanceConfig{
			CronExpr: "0 3 * * *",
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional TOML file and
// environment variables, in that order. An empty path skips the file layer;
// a named file that does not exist is an error.
func Load(path string, opts ...Option) (*Config, error) {
	config := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	config.applyEnv()
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	c.Storage.DBPath = getEnvString("LINGOREEL_DB_PATH", c.Storage.DBPath)
	c.Storage.SubtitlesDir = getEnvString("LINGOREEL_SUBTITLES_DIR", c.Storage.SubtitlesDir)

	c.Translate.APIKey = getEnvString("TRANSLATE_API_KEY", c.Translate.APIKey)
	c.Translate.APIURL = getEnvString("TRANSLATE_API_URL", c.Translate.APIURL)
	c.Translate.Model = getEnvString("TRANSLATE_MODEL", c.Translate.Model)
	c.Translate.Timeout = getEnvInt("TRANSLATE_TIMEOUT", c.Translate.Timeout)
	c.Translate.Parallelism = getEnvInt("TRANSLATE_PARALLELISM", c.Translate.Parallelism)
	c.Translate.PrimaryLanguage = getEnvString("PRIMARY_LANGUAGE", c.Translate.PrimaryLanguage)
	c.Translate.TargetLanguage = getEnvString("TARGET_LANGUAGE", c.Translate.TargetLanguage)

	c.Platform.YtDlpPath = getEnvString("YTDLP_PATH", c.Platform.YtDlpPath)
	c.Platform.CookieFile = getEnvString("YTDLP_COOKIE_FILE", c.Platform.CookieFile)

	c.Server.HTTPAddr = getEnvString("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.ImportWorkers = getEnvInt("IMPORT_WORKERS", c.Server.ImportWorkers)
	c.Maintenance.CronExpr = getEnvString("MAINTENANCE_CRON", c.Maintenance.CronExpr)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
}

// validate checks everything that must hold regardless of which subcommand
// runs. The provider API key is checked lazily by whoever builds a
// translator, since read-only commands work without one.
func (c *Config) validate() error {
	if err := validateLanguageCode(c.Translate.PrimaryLanguage); err != nil {
		return fmt.Errorf("invalid primary_language %q: %w", c.Translate.PrimaryLanguage, err)
	}
	if err := validateLanguageCode(c.Translate.TargetLanguage); err != nil {
		return fmt.Errorf("invalid target_language %q: %w", c.Translate.TargetLanguage, err)
	}
	if c.Translate.PrimaryLanguage == c.Translate.TargetLanguage {
		return fmt.Errorf("primary_language and target_language must differ")
	}
	if _, err := cron.ParseStandard(c.Maintenance.CronExpr); err != nil {
		return fmt.Errorf("invalid maintenance cron_expr %q: %w", c.Maintenance.CronExpr, err)
	}
	if c.Server.ImportWorkers < 1 {
		return fmt.Errorf("import_workers must be at least 1")
	}
	return nil
}

// validateLanguageCode rejects codes that do not resolve to a known base
// language. language.Parse alone is too lenient: it canonicalizes unknown
// well-formed subtags without reporting an error.
func validateLanguageCode(code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return err
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" || base.ISO3() == "" {
		return fmt.Errorf("unknown language code")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
