package persistence

import (
	"context"
	"fmt"

	"github.com/lingoreel/lingoreel/internal/subtitle"
)

// ReplaceCaptions atomically swaps the stored caption set of a video:
// delete everything, insert the given records, all in one transaction.
// Returns the inserted count. Concurrent replaces for the same video are
// serialized; a mid-insert failure leaves the previous set untouched.
func (s *SQLiteStore) ReplaceCaptions(ctx context.Context, videoID int64, records []subtitle.Record) (int, error) {
	lock := s.lockVideo(videoID)
	lock.Lock()
	defer lock.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos WHERE id = ?`, videoID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, fmt.Errorf("video %d: %w", videoID, ErrNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subtitles WHERE video_id = ?`, videoID); err != nil {
		return 0, fmt.Errorf("clear captions: %w", err)
	}

	stmt, err := tx.PrepareContext(
		ctx,
		`INSERT INTO subtitles (video_id, start_time, end_time, primary_text, secondary_text)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, record := range records {
		if record.PrimaryText == "" {
			continue
		}
		if _, err = stmt.ExecContext(ctx, videoID, record.Start, record.End, record.PrimaryText, record.SecondaryText); err != nil {
			return 0, fmt.Errorf("insert caption: %w", err)
		}
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit captions: %w", err)
	}
	return count, nil
}

// ListCaptions returns a video's captions ordered by start time.
func (s *SQLiteStore) ListCaptions(ctx context.Context, videoID int64) ([]subtitle.Record, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT start_time, end_time, primary_text, secondary_text
		 FROM subtitles
		 WHERE video_id = ?
		 ORDER BY start_time ASC, id ASC`,
		videoID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]subtitle.Record, 0)
	for rows.Next() {
		var record subtitle.Record
		if err := rows.Scan(&record.Start, &record.End, &record.PrimaryText, &record.SecondaryText); err != nil {
			return nil, err
		}
		ret = append(ret, record)
	}
	return ret, rows.Err()
}

// ClearCaptions deletes a video's caption set and blanks its caption file
// URL. Removing the exported file itself is the exporter's business.
func (s *SQLiteStore) ClearCaptions(ctx context.Context, videoID int64) error {
	lock := s.lockVideo(videoID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subtitles WHERE video_id = ?`, videoID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `UPDATE videos SET caption_file_url = '' WHERE id = ?`, videoID); err != nil {
		return err
	}
	return tx.Commit()
}
