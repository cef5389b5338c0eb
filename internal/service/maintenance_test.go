package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingoreel/lingoreel/internal/exporter"
	"github.com/lingoreel/lingoreel/internal/persistence"
	"github.com/lingoreel/lingoreel/internal/subtitle"
)

type fakeStore struct {
	videos   []*persistence.Video
	captions map[int64][]subtitle.Record
}

func (f *fakeStore) ListVideos(context.Context, persistence.VideoFilter) ([]*persistence.Video, error) {
	return f.videos, nil
}

func (f *fakeStore) ListCaptions(_ context.Context, videoID int64) ([]subtitle.Record, error) {
	return f.captions[videoID], nil
}

func (f *fakeStore) SetCaptionFileURL(_ context.Context, videoID int64, url string) error {
	for _, video := range f.videos {
		if video.ID == videoID {
			video.CaptionFileURL = url
		}
	}
	return nil
}

func TestRunOnceReExportsMissingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &fakeStore{
		videos: []*persistence.Video{
			{ID: 1, Title: "has captions, missing file"},
			{ID: 2, Title: "no captions"},
		},
		captions: map[int64][]subtitle.Record{
			1: {{Start: 0, End: 1, PrimaryText: "hello"}},
		},
	}
	exp := exporter.New(store, dir)
	svc := NewMaintenanceService(store, exp, dir, "0 3 * * *", nil)

	require.NoError(t, svc.RunOnce(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "video_1.vtt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "video_2.vtt"))
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, "subtitles/video_1.vtt", store.videos[0].CaptionFileURL)
}

func TestRunOnceSweepsOrphans(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// Orphan caption file for a deleted video plus a foreign file.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "video_99.vtt"), []byte("WEBVTT\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.vtt"), []byte("WEBVTT\n"), 0o644))

	store := &fakeStore{captions: map[int64][]subtitle.Record{}}
	svc := NewMaintenanceService(store, exporter.New(store, dir), dir, "0 3 * * *", nil)

	require.NoError(t, svc.RunOnce(context.Background()))

	_, err := os.Stat(filepath.Join(dir, "video_99.vtt"))
	assert.True(t, os.IsNotExist(err))
	// Files outside the naming scheme stay.
	_, err = os.Stat(filepath.Join(dir, "notes.vtt"))
	assert.NoError(t, err)
}

func TestRunOnceLeavesHealthyFilesAlone(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := &fakeStore{
		videos: []*persistence.Video{
			{ID: 5, Title: "healthy", CaptionFileURL: "subtitles/video_5.vtt"},
		},
		captions: map[int64][]subtitle.Record{
			5: {{Start: 0, End: 1, PrimaryText: "hi"}},
		},
	}
	path := filepath.Join(dir, "video_5.vtt")
	require.NoError(t, os.WriteFile(path, []byte("WEBVTT\n\nsentinel\n"), 0o644))

	svc := NewMaintenanceService(store, exporter.New(store, dir), dir, "0 3 * * *", nil)
	require.NoError(t, svc.RunOnce(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sentinel")
}
