package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lingoreel/lingoreel/internal/jobs"
)

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.ImportJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, source_url, target_language, level, category_ids,
		        status, stage, message, video_id, error, created_at, updated_at
		 FROM import_jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.ImportJob, 0)
	for rows.Next() {
		var item jobs.ImportJob
		var status string
		var categoryIDs string
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.SourceURL,
			&item.Payload.TargetLanguage,
			&item.Payload.Level,
			&categoryIDs,
			&status,
			&item.Stage,
			&item.Message,
			&item.VideoID,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		if err := json.Unmarshal([]byte(categoryIDs), &item.Payload.CategoryIDs); err != nil {
			return nil, fmt.Errorf("job %s: decode category ids: %w", item.ID, err)
		}
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM import_jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.ImportJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	categoryIDs, err := json.Marshal(job.Payload.CategoryIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO import_jobs (
			id, source, dedupe_key, source_url, target_language, level, category_ids,
			status, stage, message, video_id, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			source_url=excluded.source_url,
			target_language=excluded.target_language,
			level=excluded.level,
			category_ids=excluded.category_ids,
			status=excluded.status,
			stage=excluded.stage,
			message=excluded.message,
			video_id=excluded.video_id,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.SourceURL,
		job.Payload.TargetLanguage,
		job.Payload.Level,
		string(categoryIDs),
		string(job.Status),
		job.Stage,
		job.Message,
		job.VideoID,
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}
