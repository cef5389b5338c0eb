package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/lingoreel/lingoreel/internal/config"
	"github.com/lingoreel/lingoreel/internal/jobs"
	"github.com/lingoreel/lingoreel/internal/persistence"
)

const maxSubtitleUploadBytes = 10 << 20

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	filter := persistence.VideoFilter{
		Status:     r.URL.Query().Get("status"),
		SourceType: r.URL.Query().Get("source_type"),
		Keyword:    r.URL.Query().Get("q"),
	}
	videos, err := s.store.ListVideos(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// handleVideoByID routes /api/videos/{id} and its subtitle subresource.
func (s *Server) handleVideoByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/videos/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	videoID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid video id")
		return
	}

	if len(parts) == 2 {
		switch parts[1] {
		case "subtitles":
			s.handleVideoSubtitles(w, r, videoID)
		case "captions":
			s.handleVideoCaptions(w, r, videoID)
		default:
			writeError(w, http.StatusNotFound, "not found")
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetVideo(w, r, videoID)
	case http.MethodDelete:
		s.handleDeleteVideo(w, r, videoID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type videoDetailResponse struct {
	*persistence.Video
	Categories   []*persistence.Category `json:"categories"`
	CaptionCount int                     `json:"caption_count"`
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request, videoID int64) {
	video, err := s.store.GetVideo(r.Context(), videoID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	categories, err := s.store.VideoCategories(r.Context(), videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records, err := s.store.ListCaptions(r.Context(), videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, videoDetailResponse{
		Video:        video,
		Categories:   categories,
		CaptionCount: len(records),
	})
}

func (s *Server) handleDeleteVideo(w http.ResponseWriter, r *http.Request, videoID int64) {
	if err := s.ingest.ClearSubtitles(r.Context(), videoID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.DeleteVideo(r.Context(), videoID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": videoID})
}

func (s *Server) handleVideoCaptions(w http.ResponseWriter, r *http.Request, videoID int64) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if _, err := s.store.GetVideo(r.Context(), videoID); err != nil {
		writeStoreError(w, err)
		return
	}
	records, err := s.store.ListCaptions(r.Context(), videoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleVideoSubtitles accepts a multipart upload (POST) with a "primary"
// file and an optional "secondary" file, or clears the stored captions
// (DELETE).
func (s *Server) handleVideoSubtitles(w http.ResponseWriter, r *http.Request, videoID int64) {
	switch r.Method {
	case http.MethodPost:
		if err := r.ParseMultipartForm(maxSubtitleUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "expected multipart form upload")
			return
		}
		primary, err := readFormFile(r, "primary")
		if err != nil {
			writeError(w, http.StatusBadRequest, "primary subtitle file is required")
			return
		}
		secondary, err := readFormFile(r, "secondary")
		if err != nil && !errors.Is(err, http.ErrMissingFile) {
			writeError(w, http.StatusBadRequest, "unreadable secondary subtitle file")
			return
		}

		count, err := s.ingest.ManualIngest(r.Context(), videoID, primary, secondary)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"caption_count": count})
	case http.MethodDelete:
		if _, err := s.store.GetVideo(r.Context(), videoID); err != nil {
			writeStoreError(w, err)
			return
		}
		if err := s.ingest.ClearSubtitles(r.Context(), videoID); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"cleared": videoID})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func readFormFile(r *http.Request, field string) (string, error) {
	f, _, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(f)
	data, err := io.ReadAll(io.LimitReader(f, maxSubtitleUploadBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type importRequest struct {
	SourceURL      string  `json:"source_url"`
	TargetLanguage string  `json:"target_language"`
	Level          string  `json:"level"`
	CategoryIDs    []int64 `json:"category_ids"`
}

// handleImports enqueues an asynchronous import job. Repeated requests for
// the same URL and language coalesce onto the running job.
func (s *Server) handleImports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.SourceURL == "" {
		writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}

	job, created := s.queue.Enqueue(jobs.EnqueueRequest{
		Source:    "api",
		DedupeKey: req.SourceURL + "|" + req.TargetLanguage,
		Payload: jobs.JobPayload{
			SourceURL:      req.SourceURL,
			TargetLanguage: req.TargetLanguage,
			Level:          req.Level,
			CategoryIDs:    req.CategoryIDs,
		},
	})
	code := http.StatusCreated
	if !created {
		code = http.StatusOK
	}
	writeJSON(w, code, map[string]any{
		"created": created,
		"job":     job,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.queue.List())
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/jobs/"), "/")
	if jobID == "" || jobID == "stream" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	job, ok := s.queue.Get(jobID)
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		settings, err := s.settings.GetRuntimeSettings()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		var req config.RuntimeSettings
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		saved, err := s.settings.UpdateRuntimeSettings(req)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.apply != nil {
			if err := s.apply(saved); err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, persistence.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
