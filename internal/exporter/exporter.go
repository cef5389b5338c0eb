package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingoreel/lingoreel/internal/subtitle"
)

// Store is the persistence surface the exporter needs.
type Store interface {
	ListCaptions(ctx context.Context, videoID int64) ([]subtitle.Record, error)
	SetCaptionFileURL(ctx context.Context, videoID int64, url string) error
}

// Exporter materializes a video's stored captions as a WebVTT file under
// the subtitles root and records the public path on the video row.
type Exporter struct {
	store Store
	root  string
}

func New(store Store, root string) *Exporter {
	return &Exporter{store: store, root: root}
}

// FileName returns the caption file name for a video, stable across
// re-exports so an export overwrites the previous file in place.
func FileName(videoID int64) string {
	return fmt.Sprintf("video_%d.vtt", videoID)
}

// PublicURL is the path recorded on the video row and served over HTTP.
func PublicURL(videoID int64) string {
	return "subtitles/" + FileName(videoID)
}

// Export writes the video's captions to {root}/video_{id}.vtt and updates
// caption_file_url. Returns the absolute path of the written file.
func (e *Exporter) Export(ctx context.Context, videoID int64) (string, error) {
	records, err := e.store.ListCaptions(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("load captions: %w", err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("video %d has no captions to export", videoID)
	}

	if err := os.MkdirAll(e.root, 0o755); err != nil {
		return "", fmt.Errorf("subtitles root: %w", err)
	}

	path := filepath.Join(e.root, FileName(videoID))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if err := subtitle.WriteVTT(out, records); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if err := e.store.SetCaptionFileURL(ctx, videoID, PublicURL(videoID)); err != nil {
		return "", fmt.Errorf("record caption url: %w", err)
	}
	return path, nil
}

// Remove deletes the exported file for a video if present. Used when a
// video's captions are cleared or the video is deleted.
func (e *Exporter) Remove(videoID int64) error {
	path := filepath.Join(e.root, FileName(videoID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns where a video's caption file lives on disk.
func (e *Exporter) Path(videoID int64) string {
	return filepath.Join(e.root, FileName(videoID))
}
