package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lingoreel/lingoreel/internal/config"
	"github.com/lingoreel/lingoreel/internal/exporter"
	"github.com/lingoreel/lingoreel/internal/ingest"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/platform"
	"github.com/lingoreel/lingoreel/internal/translator"
)

// deps wires the shared components every subcommand builds on.
type deps struct {
	cfg      *config.Config
	store    *persistence.SQLiteStore
	exporter *exporter.Exporter
	platform *platform.YtDlp
}

func buildDeps(cfg *config.Config) (*deps, error) {
	if dir := filepath.Dir(cfg.Storage.DBPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := persistence.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	platformOpts := make([]platform.YtDlpOption, 0, 2)
	if cfg.Platform.YtDlpPath != "" {
		platformOpts = append(platformOpts, platform.WithBinary(cfg.Platform.YtDlpPath))
	}
	if cfg.Platform.CookieFile != "" {
		platformOpts = append(platformOpts, platform.WithCookieFile(cfg.Platform.CookieFile))
	}

	return &deps{
		cfg:      cfg,
		store:    store,
		exporter: exporter.New(store, cfg.Storage.SubtitlesDir),
		platform: platform.NewYtDlp(platformOpts...),
	}, nil
}

func (d *deps) Close() {
	_ = d.store.Close()
}

// translator builds the provider client. Kept off the shared path so
// read-only commands run without an API key.
func (d *deps) translator() (translator.Translator, error) {
	return translator.NewOpenAIClient(translator.OpenAIConfig{
		APIKey:  d.cfg.Translate.APIKey,
		BaseURL: d.cfg.Translate.APIURL,
		Model:   d.cfg.Translate.Model,
		Timeout: time.Duration(d.cfg.Translate.Timeout) * time.Second,
	})
}

func (d *deps) ingestService(trans translator.Translator) *ingest.Service {
	return ingest.NewService(
		d.store,
		d.platform,
		d.exporter,
		trans,
		ingest.WithLanguages(d.cfg.Translate.PrimaryLanguage, d.cfg.Translate.TargetLanguage),
		ingest.WithTranslateParallelism(d.cfg.Translate.Parallelism),
	)
}
