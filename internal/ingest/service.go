package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/lingoreel/lingoreel/internal/align"
	"github.com/lingoreel/lingoreel/internal/jobs"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/platform"
	"github.com/lingoreel/lingoreel/internal/subtitle"
	"github.com/lingoreel/lingoreel/internal/translator"
	"github.com/lingoreel/lingoreel/pkg/log"
)

const platformCategoryName = "YouTube"

// Service runs the ingestion pipeline: fetch metadata, pull or translate
// captions, align them into bilingual records, persist and export.
type Service struct {
	store    Store
	platform Platform
	exporter Exporter
	trans    translator.Translator

	primaryLanguage string
	targetLanguage  string
	parallelism     int
}

type Option func(*Service)

// WithLanguages overrides the default en->vi language pair.
func WithLanguages(primary, target string) Option {
	return func(s *Service) {
		if primary != "" {
			s.primaryLanguage = primary
		}
		if target != "" {
			s.targetLanguage = target
		}
	}
}

// WithTranslateParallelism caps concurrent translation batches.
func WithTranslateParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

func NewService(store Store, pf Platform, exp Exporter, trans translator.Translator, opts ...Option) *Service {
	s := &Service{
		store:           store,
		platform:        pf,
		exporter:        exp,
		trans:           trans,
		primaryLanguage: "en",
		targetLanguage:  "vi",
		parallelism:     1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Import pulls one external video into the catalog. Re-importing a video
// that already exists refreshes its category links and succeeds without
// touching its captions. The event stream always ends with a single
// terminal event, completed or error.
func (s *Service) Import(ctx context.Context, req ImportRequest, report ProgressFunc) (int64, error) {
	send := func(ev Event) {
		if report != nil {
			report(ev)
		}
	}
	videoID, err := s.runImport(ctx, req, send)
	if err != nil {
		send(Event{Stage: StageError, Message: err.Error()})
		return 0, err
	}
	return videoID, nil
}

func (s *Service) runImport(ctx context.Context, req ImportRequest, send func(Event)) (int64, error) {
	emit := func(stage Stage, format string, args ...any) {
		send(Event{Stage: stage, Message: fmt.Sprintf(format, args...)})
	}
	completed := func(videoID int64, format string, args ...any) {
		send(Event{Stage: StageCompleted, VideoID: videoID, Message: fmt.Sprintf(format, args...)})
	}
	target := req.TargetLanguage
	if target == "" {
		target = s.targetLanguage
	}

	emit(StageFetchingMetadata, "fetching video metadata")
	meta, err := s.platform.FetchMetadata(ctx, req.SourceURL)
	if err != nil {
		return 0, fmt.Errorf("fetch metadata: %w", err)
	}
	canonical := platform.CanonicalURL(meta.ID)

	existing, err := s.store.FindVideoByExternalID(ctx, meta.ID)
	switch {
	case err == nil:
		categoryIDs, catErr := s.resolveCategories(ctx, req.CategoryIDs)
		if catErr != nil {
			return 0, catErr
		}
		if err := s.store.AttachCategories(ctx, existing.ID, categoryIDs); err != nil {
			return 0, err
		}
		completed(existing.ID, "video already in catalog, categories refreshed")
		return existing.ID, nil
	case !errors.Is(err, persistence.ErrNotFound):
		return 0, err
	}

	categoryIDs, err := s.resolveCategories(ctx, req.CategoryIDs)
	if err != nil {
		return 0, err
	}

	emit(StageDownloadingCaptions, "downloading captions (%s: %s, %s: %s)",
		s.primaryLanguage, meta.TrackFor(s.primaryLanguage), target, meta.TrackFor(target))
	captions, err := s.platform.DownloadCaptions(ctx, canonical, []string{s.primaryLanguage, target})
	if err != nil {
		return 0, fmt.Errorf("download captions: %w", err)
	}
	primary := captions[s.primaryLanguage]
	if len(primary) == 0 {
		return 0, fmt.Errorf("%s track: %w", s.primaryLanguage, platform.ErrNoCaptions)
	}
	subtitle.SortByStart(primary)

	var records []subtitle.Record
	if secondary := captions[target]; len(secondary) > 0 {
		subtitle.SortByStart(secondary)
		records = align.Align(primary, secondary, align.DefaultThreshold)
	} else {
		emit(StageTranslating, "translating %d lines to %s", len(primary), target)
		records = s.translateSegments(ctx, primary, target, emit)
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}

	title := s.translateTitle(ctx, meta.Title, target)
	video := &persistence.Video{
		Title:         title,
		OriginalTitle: meta.Title,
		SourceType:    "youtube",
		SourceURL:     canonical,
		ExternalID:    meta.ID,
		Description:   meta.Description,
		ThumbnailURL:  meta.ThumbnailURL,
		Level:         req.Level,
	}
	if err := s.store.CreateVideo(ctx, video); err != nil {
		return 0, fmt.Errorf("create video: %w", err)
	}
	if err := s.store.AttachCategories(ctx, video.ID, categoryIDs); err != nil {
		s.rollbackVideo(ctx, video.ID)
		return 0, err
	}
	count, err := s.store.ReplaceCaptions(ctx, video.ID, records)
	if err != nil {
		s.rollbackVideo(ctx, video.ID)
		return 0, fmt.Errorf("persist captions: %w", err)
	}

	emit(StageExporting, "exporting %d captions", count)
	if _, err := s.exporter.Export(ctx, video.ID); err != nil {
		// Captions are persisted; the maintenance sweep re-exports missing files.
		log.Warn("export for video %d failed: %v", video.ID, err)
	}

	completed(video.ID, "imported %q with %d captions", video.Title, count)
	return video.ID, nil
}

// translateSegments machine-translates the primary track and pairs each
// translation with its source cue by position.
func (s *Service) translateSegments(ctx context.Context, primary []subtitle.Segment, target string, emit func(Stage, string, ...any)) []subtitle.Record {
	texts := make([]string, len(primary))
	for i, seg := range primary {
		texts[i] = seg.Text
	}
	batcher := translator.NewBatcher(
		s.trans,
		translator.WithParallelism(s.parallelism),
		translator.WithProgress(func(done, total int) {
			emit(StageTranslating, "translated %d/%d lines", done, total)
		}),
	)
	translated := batcher.TranslateAll(ctx, texts, target)

	records := make([]subtitle.Record, len(primary))
	for i, seg := range primary {
		records[i] = subtitle.Record{
			Start:         seg.Start,
			End:           seg.End,
			PrimaryText:   seg.Text,
			SecondaryText: translated[i],
		}
	}
	return records
}

// translateTitle falls back to the original on failure so a flaky provider
// never blocks an import.
func (s *Service) translateTitle(ctx context.Context, title, target string) string {
	if title == "" {
		return title
	}
	batcher := translator.NewBatcher(s.trans)
	translated := batcher.TranslateAll(ctx, []string{title}, target)
	if len(translated) == 0 || translated[0] == "" {
		return title
	}
	return translated[0]
}

// resolveCategories ensures the platform category exists and prepends it to
// the requested ones.
func (s *Service) resolveCategories(ctx context.Context, requested []int64) ([]int64, error) {
	platformCat, err := s.store.EnsureCategory(ctx, platformCategoryName, "Videos imported from YouTube")
	if err != nil {
		return nil, err
	}
	ids := []int64{platformCat.ID}
	for _, id := range requested {
		if id != platformCat.ID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *Service) rollbackVideo(ctx context.Context, videoID int64) {
	if err := s.store.DeleteVideo(ctx, videoID); err != nil {
		log.Error("rollback of video %d failed: %v", videoID, err)
	}
}

// ClearSubtitles removes a video's captions, its caption URL and the
// exported file.
func (s *Service) ClearSubtitles(ctx context.Context, videoID int64) error {
	if err := s.store.ClearCaptions(ctx, videoID); err != nil {
		return err
	}
	return s.exporter.Remove(videoID)
}

// Executor adapts Import to the job queue's executor contract.
func (s *Service) Executor() jobs.Executor {
	return func(ctx context.Context, job *jobs.ImportJob, report jobs.ProgressFunc) (int64, error) {
		req := ImportRequest{
			SourceURL:      job.Payload.SourceURL,
			TargetLanguage: job.Payload.TargetLanguage,
			Level:          job.Payload.Level,
			CategoryIDs:    job.Payload.CategoryIDs,
		}
		return s.Import(ctx, req, func(ev Event) {
			report(string(ev.Stage), ev.Message)
		})
	}
}
