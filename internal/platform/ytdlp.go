package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/lingoreel/lingoreel/internal/subtitle"
	"github.com/lingoreel/lingoreel/pkg/log"
)

// YtDlp drives the yt-dlp binary to read video metadata and download caption
// tracks without touching the media stream itself.
type YtDlp struct {
	binPath    string
	cookieFile string
}

type YtDlpOption func(*YtDlp)

// WithBinary pins the yt-dlp executable path instead of searching PATH.
func WithBinary(path string) YtDlpOption {
	return func(y *YtDlp) { y.binPath = path }
}

// WithCookieFile passes a Netscape cookie jar to yt-dlp, needed for videos
// behind consent or age walls.
func WithCookieFile(path string) YtDlpOption {
	return func(y *YtDlp) { y.cookieFile = path }
}

func NewYtDlp(opts ...YtDlpOption) *YtDlp {
	y := &YtDlp{}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "yt-dlp.exe"
	}
	return "yt-dlp"
}

func (y *YtDlp) binary() (string, error) {
	if y.binPath != "" {
		return y.binPath, nil
	}
	path, err := exec.LookPath(binaryName())
	if err != nil {
		return "", fmt.Errorf("yt-dlp not found in PATH: %w", err)
	}
	y.binPath = path
	return path, nil
}

// IsAvailable reports whether the yt-dlp binary can be resolved.
func (y *YtDlp) IsAvailable() bool {
	_, err := y.binary()
	return err == nil
}

// CanonicalURL normalizes any YouTube URL shape to the watch form.
func CanonicalURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func (y *YtDlp) baseArgs() []string {
	args := []string{"--no-warnings", "--skip-download"}
	if y.cookieFile != "" {
		if _, err := os.Stat(y.cookieFile); err == nil {
			args = append(args, "--cookies", y.cookieFile)
		}
	}
	return args
}

// FetchMetadata reads the video's title, thumbnail and available caption
// tracks without downloading anything.
func (y *YtDlp) FetchMetadata(ctx context.Context, url string) (*Metadata, error) {
	bin, err := y.binary()
	if err != nil {
		return nil, err
	}

	args := append(y.baseArgs(), "--dump-json", url)
	output, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		return nil, classifyExecError(err)
	}

	var info struct {
		ID           string         `json:"id"`
		Title        string         `json:"title"`
		Description  string         `json:"description"`
		Thumbnail    string         `json:"thumbnail"`
		Duration     float64        `json:"duration"`
		Subtitles    map[string]any `json:"subtitles"`
		AutoCaptions map[string]any `json:"automatic_captions"`
	}
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}

	tracks := make(map[string]TrackKind)
	for lang := range info.AutoCaptions {
		tracks[baseLang(lang)] = TrackAuto
	}
	for lang := range info.Subtitles {
		tracks[baseLang(lang)] = TrackManual
	}

	return &Metadata{
		ID:           info.ID,
		Title:        info.Title,
		Description:  info.Description,
		ThumbnailURL: info.Thumbnail,
		Duration:     info.Duration,
		Tracks:       tracks,
	}, nil
}

// DownloadCaptions fetches json3 caption tracks for the given languages into
// a temp dir and parses them. Languages with no track are absent from the
// result rather than an error; ErrNoCaptions is returned only when nothing at
// all was fetched.
func (y *YtDlp) DownloadCaptions(ctx context.Context, url string, languages []string) (map[string][]subtitle.Segment, error) {
	bin, err := y.binary()
	if err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("no caption languages requested")
	}

	tempDir, err := os.MkdirTemp("", "lingoreel-captions-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	args := append(y.baseArgs(),
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", strings.Join(languages, ","),
		"--sub-format", "json3",
		"-o", filepath.Join(tempDir, "%(id)s.%(ext)s"),
		url,
	)
	if _, err := exec.CommandContext(ctx, bin, args...).Output(); err != nil {
		return nil, classifyExecError(err)
	}

	result := make(map[string][]subtitle.Segment)
	for _, lang := range languages {
		path, ok := findCaptionFile(tempDir, lang)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		segments, err := ParseJSON3(data)
		if err != nil {
			log.Warn("skipping unparseable %s caption track: %v", lang, err)
			continue
		}
		if len(segments) > 0 {
			result[lang] = segments
		}
	}
	if len(result) == 0 {
		return nil, ErrNoCaptions
	}
	return result, nil
}

// findCaptionFile locates {id}.{lang}.json3, falling back to variant tags
// like en-orig or vi-VN that yt-dlp sometimes emits.
func findCaptionFile(dir, lang string) (string, bool) {
	matches, _ := filepath.Glob(filepath.Join(dir, "*."+lang+".json3"))
	if len(matches) > 0 {
		return matches[0], true
	}
	matches, _ = filepath.Glob(filepath.Join(dir, "*."+lang+"*.json3"))
	if len(matches) > 0 {
		return matches[0], true
	}
	return "", false
}

func baseLang(lang string) string {
	if idx := strings.IndexAny(lang, "-_"); idx > 0 {
		return lang[:idx]
	}
	return lang
}

func classifyExecError(err error) error {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return fmt.Errorf("yt-dlp: %w", err)
	}
	stderr := string(exitErr.Stderr)
	switch {
	case strings.Contains(stderr, "Private video"), strings.Contains(stderr, "Video unavailable"):
		return fmt.Errorf("%w: %s", ErrVideoUnavailable, firstLine(stderr))
	case strings.Contains(stderr, "429"), strings.Contains(stderr, "rate"):
		return fmt.Errorf("%w: %s", ErrRateLimited, firstLine(stderr))
	default:
		return fmt.Errorf("yt-dlp failed: %s", firstLine(stderr))
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
