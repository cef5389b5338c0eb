package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/lingoreel/lingoreel/internal/config"
	"github.com/lingoreel/lingoreel/internal/jobs"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/subtitle"
)

type runtimeSettingsStore interface {
	GetRuntimeSettings() (config.RuntimeSettings, error)
	UpdateRuntimeSettings(next config.RuntimeSettings) (config.RuntimeSettings, error)
}

type runtimeSettingsApplier func(next config.RuntimeSettings) error

// Store is the catalog surface the API reads and writes.
type Store interface {
	ListVideos(ctx context.Context, filter persistence.VideoFilter) ([]*persistence.Video, error)
	GetVideo(ctx context.Context, id int64) (*persistence.Video, error)
	DeleteVideo(ctx context.Context, id int64) error
	ListCaptions(ctx context.Context, videoID int64) ([]subtitle.Record, error)
	ListCategories(ctx context.Context) ([]*persistence.Category, error)
	VideoCategories(ctx context.Context, videoID int64) ([]*persistence.Category, error)
}

// IngestService covers the synchronous subtitle operations.
type IngestService interface {
	ManualIngest(ctx context.Context, videoID int64, primaryContent, secondaryContent string) (int, error)
	ClearSubtitles(ctx context.Context, videoID int64) error
}

type Server struct {
	store    Store
	ingest   IngestService
	queue    *jobs.Queue
	settings runtimeSettingsStore
	apply    runtimeSettingsApplier

	subtitlesDir string

	mux    *http.ServeMux
	server *http.Server
}

type Option func(*Server)

// WithSubtitlesDir serves exported caption files under /subtitles/.
func WithSubtitlesDir(dir string) Option {
	return func(s *Server) {
		s.subtitlesDir = dir
	}
}

func WithRuntimeSettingsStore(store runtimeSettingsStore) Option {
	return func(s *Server) {
		s.settings = store
	}
}

func WithRuntimeSettingsApplier(apply runtimeSettingsApplier) Option {
	return func(s *Server) {
		s.apply = apply
	}
}

func NewServer(store Store, ingest IngestService, queue *jobs.Queue, opts ...Option) *Server {
	s := &Server{
		store:  store,
		ingest: ingest,
		queue:  queue,
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/videos", s.handleVideos)
	s.mux.HandleFunc("/api/videos/", s.handleVideoByID)
	s.mux.HandleFunc("/api/imports", s.handleImports)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/jobs", s.handleJobs)
	s.mux.HandleFunc("/api/jobs/", s.handleJobByID)
	s.mux.HandleFunc("/api/jobs/stream", s.handleJobStream)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/subtitles/", s.handleSubtitleFiles)
}

// handleSubtitleFiles serves the exported WebVTT files players read from.
func (s *Server) handleSubtitleFiles(w http.ResponseWriter, r *http.Request) {
	if s.subtitlesDir == "" {
		http.NotFound(w, r)
		return
	}
	handler := http.StripPrefix("/subtitles/", http.FileServer(http.Dir(s.subtitlesDir)))
	handler.ServeHTTP(w, r)
}
