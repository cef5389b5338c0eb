package platform

import "errors"

var (
	// ErrVideoUnavailable reports a private, deleted or region-locked video.
	ErrVideoUnavailable = errors.New("video unavailable")
	// ErrRateLimited reports throttling by the video platform.
	ErrRateLimited = errors.New("rate limited by platform")
	// ErrNoCaptions reports that no caption track exists for the wanted language.
	ErrNoCaptions = errors.New("no captions available")
)

// TrackKind tells human captions apart from speech recognition output.
type TrackKind string

const (
	TrackManual TrackKind = "manual"
	TrackAuto   TrackKind = "auto"
	TrackNone   TrackKind = "none"
)

// Metadata is the platform-side description of a video, fetched before any
// caption download.
type Metadata struct {
	ID           string
	Title        string
	Description  string
	ThumbnailURL string
	Duration     float64
	// Caption track kinds per language code, manual preferred over auto.
	Tracks map[string]TrackKind
}

// TrackFor returns the caption track kind for a language, TrackNone when the
// platform offers nothing.
func (m *Metadata) TrackFor(lang string) TrackKind {
	if m == nil || m.Tracks == nil {
		return TrackNone
	}
	if kind, ok := m.Tracks[lang]; ok {
		return kind
	}
	return TrackNone
}
