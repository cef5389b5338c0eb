package ingest

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/lingoreel/lingoreel/internal/align"
	"github.com/lingoreel/lingoreel/internal/subtitle"
	"github.com/lingoreel/lingoreel/pkg/log"
)

// ManualIngest attaches uploaded subtitle content to an existing video.
// Formats are auto-detected per file, so one upload may be SRT and the
// other WebVTT. When the files arrive in swapped language roles they are
// corrected by detection before aligning. Returns the stored caption count.
func (s *Service) ManualIngest(ctx context.Context, videoID int64, primaryContent, secondaryContent string) (int, error) {
	if _, err := s.store.GetVideo(ctx, videoID); err != nil {
		return 0, err
	}

	primary := subtitle.Parse(primaryContent)
	var secondary []subtitle.Segment
	if secondaryContent != "" {
		secondary = subtitle.Parse(secondaryContent)
	}

	if len(primary) == 0 && len(secondary) > 0 {
		primary, secondary = secondary, nil
	}
	if len(primary) == 0 {
		return 0, fmt.Errorf("video %d: no usable cues in upload", videoID)
	}
	if s.rolesSwapped(primary, secondary) {
		log.Info("video %d: uploaded tracks arrived in swapped language roles", videoID)
		primary, secondary = secondary, primary
	}

	subtitle.SortByStart(primary)
	var records []subtitle.Record
	if len(secondary) > 0 {
		subtitle.SortByStart(secondary)
		records = align.Align(primary, secondary, align.DefaultThreshold)
	} else {
		records = make([]subtitle.Record, len(primary))
		for i, seg := range primary {
			records[i] = subtitle.Record{Start: seg.Start, End: seg.End, PrimaryText: seg.Text}
		}
	}

	count, err := s.store.ReplaceCaptions(ctx, videoID, records)
	if err != nil {
		return 0, err
	}
	if _, err := s.exporter.Export(ctx, videoID); err != nil {
		return 0, fmt.Errorf("export captions: %w", err)
	}
	return count, nil
}

// rolesSwapped reports that the primary upload reads as the target language
// while the secondary reads as the primary one.
func (s *Service) rolesSwapped(primary, secondary []subtitle.Segment) bool {
	if len(secondary) == 0 {
		return false
	}
	primaryTag, err := language.Parse(s.primaryLanguage)
	if err != nil {
		return false
	}
	targetTag, err := language.Parse(s.targetLanguage)
	if err != nil {
		return false
	}
	detectedPrimary := subtitle.DetectLanguage(primary)
	detectedSecondary := subtitle.DetectLanguage(secondary)
	return detectedPrimary == targetTag && detectedSecondary == primaryTag
}
