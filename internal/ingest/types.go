package ingest

import (
	"context"

	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/platform"
	"github.com/lingoreel/lingoreel/internal/subtitle"
)

// Stage names one step of the ingestion pipeline, reported to pollers and
// SSE subscribers while an import runs.
type Stage string

const (
	StageFetchingMetadata    Stage = "fetching_metadata"
	StageDownloadingCaptions Stage = "downloading_captions"
	StageTranslating         Stage = "translating"
	StageExporting           Stage = "exporting"
	StageCompleted           Stage = "completed"
	StageError               Stage = "error"
)

// Event is one progress notification from a running ingestion. The stream
// ends with exactly one terminal event: completed carrying the video
// identifier, or error carrying the failure message.
type Event struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
	VideoID int64  `json:"video_id,omitempty"`
}

// ProgressFunc receives pipeline events. A nil ProgressFunc is valid and
// silently drops events.
type ProgressFunc func(Event)

// ImportRequest asks for one external video to be pulled into the catalog.
type ImportRequest struct {
	SourceURL      string
	TargetLanguage string
	Level          string
	CategoryIDs    []int64
}

// Store is the persistence surface the ingestion pipeline depends on.
type Store interface {
	CreateVideo(ctx context.Context, video *persistence.Video) error
	DeleteVideo(ctx context.Context, id int64) error
	GetVideo(ctx context.Context, id int64) (*persistence.Video, error)
	FindVideoByExternalID(ctx context.Context, externalID string) (*persistence.Video, error)
	ReplaceCaptions(ctx context.Context, videoID int64, records []subtitle.Record) (int, error)
	ClearCaptions(ctx context.Context, videoID int64) error
	EnsureCategory(ctx context.Context, name, description string) (*persistence.Category, error)
	AttachCategories(ctx context.Context, videoID int64, categoryIDs []int64) error
}

// Platform fetches metadata and caption tracks from the video source.
type Platform interface {
	FetchMetadata(ctx context.Context, url string) (*platform.Metadata, error)
	DownloadCaptions(ctx context.Context, url string, languages []string) (map[string][]subtitle.Segment, error)
}

// Exporter materializes stored captions as a servable file.
type Exporter interface {
	Export(ctx context.Context, videoID int64) (string, error)
	Remove(videoID int64) error
}
