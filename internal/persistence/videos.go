package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const videoColumns = `id, title, original_title, slug, source_type, source_url, external_id,
	description, thumbnail_url, level, status, caption_file_url, created_at, updated_at`

// CreateVideo inserts a video row, resolving a collision-free slug from the
// title. The assigned ID and slug are written back to the argument.
func (s *SQLiteStore) CreateVideo(ctx context.Context, video *Video) error {
	if video == nil {
		return fmt.Errorf("video is nil")
	}
	slug, err := s.UniqueVideoSlug(ctx, video.Title, video.ExternalID)
	if err != nil {
		return err
	}
	video.Slug = slug

	now := time.Now().UTC()
	video.CreatedAt = now
	video.UpdatedAt = now
	if video.Status == "" {
		video.Status = "private"
	}
	if video.SourceType == "" {
		video.SourceType = "local"
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO videos (
			title, original_title, slug, source_type, source_url, external_id,
			description, thumbnail_url, level, status, caption_file_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.Title,
		video.OriginalTitle,
		video.Slug,
		video.SourceType,
		video.SourceURL,
		video.ExternalID,
		video.Description,
		video.ThumbnailURL,
		video.Level,
		video.Status,
		video.CaptionFileURL,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	video.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("video id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetVideo(ctx context.Context, id int64) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = ?`, id)
	return scanVideo(row)
}

// FindVideoByExternalID looks a video up by its source-platform identifier,
// so re-imports of the same external video stay idempotent.
func (s *SQLiteStore) FindVideoByExternalID(ctx context.Context, externalID string) (*Video, error) {
	if externalID == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos WHERE external_id = ?`, externalID)
	return scanVideo(row)
}

func (s *SQLiteStore) ListVideos(ctx context.Context, filter VideoFilter) ([]*Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	conditions := make([]string, 0)
	args := make([]any, 0)
	if filter.Status != "" && filter.Status != "all" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.SourceType != "" {
		conditions = append(conditions, "source_type = ?")
		args = append(args, filter.SourceType)
	}
	if filter.Keyword != "" {
		conditions = append(conditions, "title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Keyword+"%")
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		ret = append(ret, video)
	}
	return ret, rows.Err()
}

// DeleteVideo removes a video; captions and category links cascade.
func (s *SQLiteStore) DeleteVideo(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetCaptionFileURL persists the exported caption file's public path.
func (s *SQLiteStore) SetCaptionFileURL(ctx context.Context, videoID int64, url string) error {
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE videos SET caption_file_url = ?, updated_at = ? WHERE id = ?`,
		url, time.Now().UTC(), videoID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("video %d: %w", videoID, ErrNotFound)
	}
	return nil
}

// EnsureCategory finds a category by the slug of name, creating it on first
// use. Idempotent per slug.
func (s *SQLiteStore) EnsureCategory(ctx context.Context, name, description string) (*Category, error) {
	slug := Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("category name %q folds to an empty slug", name)
	}

	row := s.db.QueryRowContext(ctx, `SELECT id, name, slug, description FROM categories WHERE slug = ?`, slug)
	var category Category
	err := row.Scan(&category.ID, &category.Name, &category.Slug, &category.Description)
	if err == nil {
		return &category, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO categories (name, slug, description) VALUES (?, ?, ?)`,
		name, slug, description,
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Category{ID: id, Name: name, Slug: slug, Description: description}, nil
}

// ListCategories returns every category ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*Category, 0)
	for rows.Next() {
		var cat Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description); err != nil {
			return nil, err
		}
		ret = append(ret, &cat)
	}
	return ret, rows.Err()
}

// AttachCategories links a video to categories, ignoring existing links.
func (s *SQLiteStore) AttachCategories(ctx context.Context, videoID int64, categoryIDs []int64) error {
	for _, categoryID := range categoryIDs {
		if _, err := s.db.ExecContext(
			ctx,
			`INSERT OR IGNORE INTO video_categories (video_id, category_id) VALUES (?, ?)`,
			videoID, categoryID,
		); err != nil {
			return fmt.Errorf("attach category %d: %w", categoryID, err)
		}
	}
	return nil
}

func (s *SQLiteStore) VideoCategories(ctx context.Context, videoID int64) ([]*Category, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT c.id, c.name, c.slug, c.description
		 FROM categories c
		 JOIN video_categories vc ON vc.category_id = c.id
		 WHERE vc.video_id = ?
		 ORDER BY c.id ASC`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*Category, 0)
	for rows.Next() {
		var category Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.Description); err != nil {
			return nil, err
		}
		ret = append(ret, &category)
	}
	return ret, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVideo(row rowScanner) (*Video, error) {
	var video Video
	err := row.Scan(
		&video.ID,
		&video.Title,
		&video.OriginalTitle,
		&video.Slug,
		&video.SourceType,
		&video.SourceURL,
		&video.ExternalID,
		&video.Description,
		&video.ThumbnailURL,
		&video.Level,
		&video.Status,
		&video.CaptionFileURL,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}
