package persistence

import (
	"errors"
	"time"
)

var (
	// ErrNotFound reports a missing video or category.
	ErrNotFound = errors.New("not found")
	// ErrSlugExhausted reports that slug collision resolution gave up.
	ErrSlugExhausted = errors.New("slug collision attempts exhausted")
)

// Video is a catalog entry. The ingestion core owns its caption records and
// its caption file URL; everything else is plain catalog data.
type Video struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	OriginalTitle  string    `json:"original_title,omitempty"`
	Slug           string    `json:"slug"`
	SourceType     string    `json:"source_type"`
	SourceURL      string    `json:"source_url,omitempty"`
	ExternalID     string    `json:"external_id,omitempty"`
	Description    string    `json:"description,omitempty"`
	ThumbnailURL   string    `json:"thumbnail_url,omitempty"`
	Level          string    `json:"level,omitempty"`
	Status         string    `json:"status"`
	CaptionFileURL string    `json:"caption_file_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// VideoFilter narrows ListVideos results. Zero values mean no filtering.
type VideoFilter struct {
	Status     string
	SourceType string
	Keyword    string
}
