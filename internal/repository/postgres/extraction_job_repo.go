package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scantab/internal/domain"
	"scantab/internal/port"
)

type extractionJobRepo struct {
	db *sqlx.DB
}

// NewExtractionJobRepo creates a new PostgreSQL-backed ExtractionJobRepository.
func NewExtractionJobRepo(db *sqlx.DB) port.ExtractionJobRepository {
	return &extractionJobRepo{db: db}
}

func (r *extractionJobRepo) Enqueue(ctx context.Context, job *domain.ExtractionJob) error {
	now := time.Now().UTC()
	job.Status = domain.JobStatusQueued
	job.CreatedAt = now
	job.UpdatedAt = now

	query := `INSERT INTO extraction_jobs
		(id, scan_id, status, attempts, backend, result_json, error,
		 export_bucket, export_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.ScanID, job.Status, job.Attempts, job.Backend, job.ResultJSON,
		job.Error, job.ExportBucket, job.ExportKey, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionJobRepo.Enqueue: %w", err)
	}
	return nil
}

// ClaimQueued claims up to limit queued jobs using SKIP LOCKED so concurrent
// workers never pick the same job twice.
func (r *extractionJobRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	now := time.Now().UTC()

	query := `UPDATE extraction_jobs SET
			status = $1, started_at = $2, updated_at = $2, attempts = attempts + 1
		WHERE id IN (
			SELECT id FROM extraction_jobs
			WHERE status = $3
			ORDER BY created_at
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`

	var jobs []domain.ExtractionJob
	err := r.db.SelectContext(ctx, &jobs, query,
		domain.JobStatusProcessing, now, domain.JobStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("extractionJobRepo.ClaimQueued: %w", err)
	}
	return jobs, nil
}

func (r *extractionJobRepo) MarkCompleted(ctx context.Context, job *domain.ExtractionJob) error {
	now := time.Now().UTC()
	job.Status = domain.JobStatusCompleted
	job.FinishedAt = &now
	job.UpdatedAt = now

	query := `UPDATE extraction_jobs SET
			status = $1, backend = $2, result_json = $3, error = '',
			export_bucket = $4, export_key = $5, finished_at = $6, updated_at = $6
		WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.Backend, job.ResultJSON,
		job.ExportBucket, job.ExportKey, now, job.ID)
	if err != nil {
		return fmt.Errorf("extractionJobRepo.MarkCompleted: %w", err)
	}
	return nil
}

// MarkFailed records a failure. With requeue the job goes back to the queue
// for another attempt; otherwise it is failed terminally.
func (r *extractionJobRepo) MarkFailed(ctx context.Context, job *domain.ExtractionJob, requeue bool) error {
	now := time.Now().UTC()
	job.Status = domain.JobStatusFailed
	if requeue {
		job.Status = domain.JobStatusQueued
	} else {
		job.FinishedAt = &now
	}
	job.UpdatedAt = now

	query := `UPDATE extraction_jobs SET
			status = $1, backend = $2, result_json = $3, error = $4,
			finished_at = $5, updated_at = $6
		WHERE id = $7`

	_, err := r.db.ExecContext(ctx, query,
		job.Status, job.Backend, job.ResultJSON, job.Error,
		job.FinishedAt, now, job.ID)
	if err != nil {
		return fmt.Errorf("extractionJobRepo.MarkFailed: %w", err)
	}
	return nil
}

func (r *extractionJobRepo) GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM extraction_jobs WHERE id = $1", jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("extractionJobRepo.GetByID: %w", err)
	}
	return &job, nil
}

func (r *extractionJobRepo) ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error) {
	var jobs []domain.ExtractionJob
	err := r.db.SelectContext(ctx, &jobs,
		"SELECT * FROM extraction_jobs WHERE scan_id = $1 ORDER BY created_at DESC", scanID)
	if err != nil {
		return nil, fmt.Errorf("extractionJobRepo.ListByScan: %w", err)
	}
	return jobs, nil
}
