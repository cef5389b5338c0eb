package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingoreel/lingoreel/internal/jobs"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/subtitle"
)

type fakeStore struct {
	videos   map[int64]*persistence.Video
	captions map[int64][]subtitle.Record
	cats     []*persistence.Category
}

func newStore() *fakeStore {
	return &fakeStore{
		videos:   make(map[int64]*persistence.Video),
		captions: make(map[int64][]subtitle.Record),
	}
}

func (f *fakeStore) ListVideos(_ context.Context, filter persistence.VideoFilter) ([]*persistence.Video, error) {
	ret := make([]*persistence.Video, 0)
	for _, video := range f.videos {
		if filter.Status != "" && video.Status != filter.Status {
			continue
		}
		ret = append(ret, video)
	}
	return ret, nil
}

func (f *fakeStore) GetVideo(_ context.Context, id int64) (*persistence.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return video, nil
}

func (f *fakeStore) DeleteVideo(_ context.Context, id int64) error {
	if _, ok := f.videos[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(f.videos, id)
	return nil
}

func (f *fakeStore) ListCaptions(_ context.Context, videoID int64) ([]subtitle.Record, error) {
	return f.captions[videoID], nil
}

func (f *fakeStore) ListCategories(context.Context) ([]*persistence.Category, error) {
	return f.cats, nil
}

func (f *fakeStore) VideoCategories(context.Context, int64) ([]*persistence.Category, error) {
	return f.cats, nil
}

type fakeIngest struct {
	manualCount int
	manualErr   error
	cleared     []int64
}

func (f *fakeIngest) ManualIngest(_ context.Context, _ int64, primary, _ string) (int, error) {
	if f.manualErr != nil {
		return 0, f.manualErr
	}
	if primary == "" {
		return 0, persistence.ErrNotFound
	}
	return f.manualCount, nil
}

func (f *fakeIngest) ClearSubtitles(_ context.Context, videoID int64) error {
	f.cleared = append(f.cleared, videoID)
	return nil
}

func newTestServer(t *testing.T, store *fakeStore, ingest *fakeIngest) *Server {
	t.Helper()
	queue := jobs.NewQueue(1, nil)
	t.Cleanup(queue.Stop)
	return NewServer(store, ingest, queue)
}

func TestListVideos(t *testing.T) {
	store := newStore()
	store.videos[1] = &persistence.Video{ID: 1, Title: "One", Status: "published"}
	store.videos[2] = &persistence.Video{ID: 2, Title: "Two", Status: "private"}
	server := newTestServer(t, store, &fakeIngest{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos?status=published", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var videos []*persistence.Video
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, "One", videos[0].Title)
}

func TestGetVideoDetail(t *testing.T) {
	store := newStore()
	store.videos[7] = &persistence.Video{ID: 7, Title: "Detail", Slug: "detail"}
	store.captions[7] = []subtitle.Record{{PrimaryText: "a"}, {PrimaryText: "b"}}
	store.cats = []*persistence.Category{{ID: 1, Name: "YouTube", Slug: "youtube"}}
	server := newTestServer(t, store, &fakeIngest{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail videoDetailResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Detail", detail.Title)
	assert.Equal(t, 2, detail.CaptionCount)
	require.Len(t, detail.Categories, 1)
}

func TestGetVideoNotFound(t *testing.T) {
	server := newTestServer(t, newStore(), &fakeIngest{})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/videos/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteVideoClearsSubtitles(t *testing.T) {
	store := newStore()
	store.videos[3] = &persistence.Video{ID: 3}
	ingest := &fakeIngest{}
	server := newTestServer(t, store, ingest)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/videos/3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{3}, ingest.cleared)
	assert.Empty(t, store.videos)
}

func TestEnqueueImportDeduplicates(t *testing.T) {
	server := newTestServer(t, newStore(), &fakeIngest{})

	body := `{"source_url": "https://youtu.be/abc123", "target_language": "vi"}`
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var first struct {
		Created bool            `json:"created"`
		Job     *jobs.ImportJob `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.True(t, first.Created)
	require.NotNil(t, first.Job)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		Created bool            `json:"created"`
		Job     *jobs.ImportJob `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.False(t, second.Created)
	assert.Equal(t, first.Job.ID, second.Job.ID)
}

func TestEnqueueImportRequiresURL(t *testing.T) {
	server := newTestServer(t, newStore(), &fakeIngest{})
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/imports", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobByID(t *testing.T) {
	store := newStore()
	server := newTestServer(t, store, &fakeIngest{})

	job, _ := server.queue.Enqueue(jobs.EnqueueRequest{
		Source:    "api",
		DedupeKey: "k",
		Payload:   jobs.JobPayload{SourceURL: "https://youtu.be/x"},
	})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, content := range fields {
		part, err := writer.CreateFormFile(field, field+".srt")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadSubtitles(t *testing.T) {
	store := newStore()
	store.videos[5] = &persistence.Video{ID: 5}
	ingest := &fakeIngest{manualCount: 42}
	server := newTestServer(t, store, ingest)

	body, contentType := multipartUpload(t, map[string]string{
		"primary": "1\n00:00:01,000 --> 00:00:02,000\nHello\n",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/videos/5/subtitles", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "42")
}

func TestUploadSubtitlesRequiresPrimary(t *testing.T) {
	server := newTestServer(t, newStore(), &fakeIngest{})

	body, contentType := multipartUpload(t, map[string]string{"secondary": "x"})
	req := httptest.NewRequest(http.MethodPost, "/api/videos/5/subtitles", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearSubtitlesEndpoint(t *testing.T) {
	store := newStore()
	store.videos[9] = &persistence.Video{ID: 9}
	ingest := &fakeIngest{}
	server := newTestServer(t, store, ingest)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/videos/9/subtitles", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{9}, ingest.cleared)
}

func TestServeSubtitleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video_1.vtt"), []byte("WEBVTT\n"), 0o644))

	store := newStore()
	queue := jobs.NewQueue(1, nil)
	t.Cleanup(queue.Stop)
	server := NewServer(store, &fakeIngest{}, queue, WithSubtitlesDir(dir))

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subtitles/video_1.vtt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "WEBVTT")
}

func TestJobStreamEmitsSnapshot(t *testing.T) {
	server := newTestServer(t, newStore(), &fakeIngest{})
	server.queue.Enqueue(jobs.EnqueueRequest{
		Source:    "api",
		DedupeKey: "stream",
		Payload:   jobs.JobPayload{SourceURL: "https://youtu.be/s"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		server.Handler().ServeHTTP(rec, req)
		close(done)
	}()
	cancel()
	<-done

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "data: "))
}
