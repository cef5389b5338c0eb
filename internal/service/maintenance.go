package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/lingoreel/lingoreel/internal/exporter"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/subtitle"
	"github.com/lingoreel/lingoreel/pkg/file"
	"github.com/lingoreel/lingoreel/pkg/icron"
	"github.com/lingoreel/lingoreel/pkg/log"
)

// Store is the persistence surface the maintenance sweep reads from.
type Store interface {
	ListVideos(ctx context.Context, filter persistence.VideoFilter) ([]*persistence.Video, error)
	ListCaptions(ctx context.Context, videoID int64) ([]subtitle.Record, error)
}

// Exporter re-materializes caption files during the sweep.
type Exporter interface {
	Export(ctx context.Context, videoID int64) (string, error)
	Path(videoID int64) string
}

// MaintenanceService keeps the exported caption files consistent with the
// database: videos holding captions get their missing files re-exported,
// and files no video owns anymore are swept away.
type MaintenanceService struct {
	store        Store
	exporter     Exporter
	subtitlesDir string
	cronExpr     string
	cron         *cron.Cron

	group singleflight.Group
}

func NewMaintenanceService(store Store, exp Exporter, subtitlesDir, cronExpr string, c *cron.Cron) *MaintenanceService {
	return &MaintenanceService{
		store:        store,
		exporter:     exp,
		subtitlesDir: subtitlesDir,
		cronExpr:     cronExpr,
		cron:         c,
	}
}

// Schedule registers the sweep on the shared cron. Overlapping triggers
// collapse into one run.
func (s *MaintenanceService) Schedule(ctx context.Context) error {
	if info, err := icron.GetTriggerInfo(s.cronExpr, time.Now()); err == nil {
		log.Info("caption maintenance scheduled, next run %v", info.Next)
	}

	runFunc := func() {
		_, _, _ = s.group.Do("run", func() (any, error) {
			if err := s.RunOnce(ctx); err != nil {
				log.Error("caption maintenance run failed: %v", err)
			}
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

// RunOnce executes one full sweep. Also callable directly from the CLI.
func (s *MaintenanceService) RunOnce(ctx context.Context) error {
	videos, err := s.store.ListVideos(ctx, persistence.VideoFilter{})
	if err != nil {
		return err
	}

	owned := make(map[string]bool)
	reExported := 0
	for _, video := range videos {
		records, err := s.store.ListCaptions(ctx, video.ID)
		if err != nil {
			log.Error("maintenance: captions for video %d: %v", video.ID, err)
			continue
		}
		if len(records) == 0 {
			continue
		}
		owned[exporter.FileName(video.ID)] = true

		if _, err := os.Stat(s.exporter.Path(video.ID)); err == nil && video.CaptionFileURL != "" {
			continue
		}
		if _, err := s.exporter.Export(ctx, video.ID); err != nil {
			log.Error("maintenance: re-export video %d: %v", video.ID, err)
			continue
		}
		reExported++
	}

	swept, err := s.sweepOrphans(owned)
	if err != nil {
		return err
	}
	log.Info("caption maintenance: %d videos checked, %d re-exported, %d orphan files removed",
		len(videos), reExported, swept)
	return nil
}

// sweepOrphans removes caption files no video owns. Foreign files in the
// subtitles dir are left alone.
func (s *MaintenanceService) sweepOrphans(owned map[string]bool) (int, error) {
	if _, err := os.Stat(s.subtitlesDir); os.IsNotExist(err) {
		return 0, nil
	}
	paths, err := file.FindWithExt(s.subtitlesDir, ".vtt")
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, path := range paths {
		name := filepath.Base(path)
		if owned[name] {
			continue
		}
		var videoID int64
		if _, err := fmt.Sscanf(name, "video_%d.vtt", &videoID); err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Error("maintenance: remove orphan %s: %v", path, err)
			continue
		}
		swept++
	}
	return swept, nil
}
