package port

import (
	"context"

	"github.com/google/uuid"

	"scantab/internal/domain"
)

// ExtractionJobRepository persists extraction jobs and their results.
type ExtractionJobRepository interface {
	Enqueue(ctx context.Context, job *domain.ExtractionJob) error
	// ClaimQueued atomically claims up to limit queued jobs, marking them
	// processing, and returns them. Concurrent workers never claim the same job.
	ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error)
	MarkCompleted(ctx context.Context, job *domain.ExtractionJob) error
	MarkFailed(ctx context.Context, job *domain.ExtractionJob, requeue bool) error
	GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error)
	ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error)
}
