package persistence

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxSlugLength   = 100
	maxSlugAttempts = 1000
)

// Strips combining marks after NFD decomposition, folding accented letters
// to their ASCII base.
var slugFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, ASCII-folds and hyphenates text. May return an empty
// string for all-symbol input; callers needing a non-empty slug must supply
// a fallback base.
func Slugify(text string) string {
	folded, _, err := transform.String(slugFolder, text)
	if err != nil {
		folded = text
	}

	var builder strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				builder.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.Trim(builder.String(), "-")
}

// UniqueVideoSlug derives a collision-free slug for a video title. The base
// is truncated to maxSlugLength; collisions get numeric suffixes, with the
// base re-truncated to make room. Titles folding to an empty slug fall back
// to the external identifier, or to "video" when none exists.
func (s *SQLiteStore) UniqueVideoSlug(ctx context.Context, title, externalID string) (string, error) {
	base := truncateSlug(Slugify(title), maxSlugLength)
	if base == "" {
		if fallback := Slugify(externalID); fallback != "" {
			base = truncateSlug("video-"+fallback, maxSlugLength)
		} else {
			base = "video"
		}
	}

	slug := base
	for counter := 1; ; counter++ {
		taken, err := s.videoSlugTaken(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		if counter > maxSlugAttempts {
			return "", fmt.Errorf("slug %q: %w", base, ErrSlugExhausted)
		}
		suffix := fmt.Sprintf("-%d", counter)
		slug = truncateSlug(base, maxSlugLength-len(suffix)) + suffix
	}
}

func (s *SQLiteStore) videoSlugTaken(ctx context.Context, slug string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos WHERE slug = ?`, slug).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func truncateSlug(slug string, limit int) string {
	if len(slug) <= limit {
		return slug
	}
	return strings.Trim(slug[:limit], "-")
}
