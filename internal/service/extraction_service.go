package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/export"
	"scantab/internal/port"
	"scantab/internal/reconstruct"
)

// ExtractionService defines the table extraction contract.
type ExtractionService interface {
	// Enqueue creates a queued extraction job for a scan. The queue worker
	// picks it up on its next poll.
	Enqueue(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, error)
	// ExtractNow runs the full pipeline synchronously and returns the
	// finished job together with the structured result.
	ExtractNow(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, *domain.ExtractionResult, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error)
	ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error)
	// ExportURL returns a presigned URL for a completed job's workbook.
	ExportURL(ctx context.Context, jobID uuid.UUID) (string, error)
	// RunJob executes one claimed job end to end, persisting the outcome.
	RunJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int)
}

type extractionService struct {
	scanRepo  port.ScanRepository
	jobRepo   port.ExtractionJobRepository
	storage   port.ObjectStorage
	builder   *reconstruct.Builder
	s3cfg     *config.S3Config
	exportCfg *config.ExportConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	scanRepo port.ScanRepository,
	jobRepo port.ExtractionJobRepository,
	storage port.ObjectStorage,
	builder *reconstruct.Builder,
	s3cfg *config.S3Config,
	exportCfg *config.ExportConfig,
) ExtractionService {
	return &extractionService{
		scanRepo:  scanRepo,
		jobRepo:   jobRepo,
		storage:   storage,
		builder:   builder,
		s3cfg:     s3cfg,
		exportCfg: exportCfg,
	}
}

func (s *extractionService) Enqueue(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, error) {
	scan, err := s.scanRepo.GetByID(ctx, scanID)
	if err != nil {
		return nil, err
	}

	job := &domain.ExtractionJob{
		ID:     uuid.New(),
		ScanID: scan.ID,
	}
	if err := s.jobRepo.Enqueue(ctx, job); err != nil {
		return nil, err
	}

	log.Printf("extractionService.Enqueue: queued job %s for scan %s", job.ID, scan.ID)
	return job, nil
}

func (s *extractionService) ExtractNow(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, *domain.ExtractionResult, error) {
	job, err := s.Enqueue(ctx, scanID)
	if err != nil {
		return nil, nil, err
	}

	// Synchronous extraction reports its outcome directly, so a failed run
	// is terminal rather than requeued.
	job.Attempts = 1
	result := s.process(ctx, job, 0)
	return job, result, nil
}

func (s *extractionService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	return s.jobRepo.GetByID(ctx, jobID)
}

func (s *extractionService) ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error) {
	return s.jobRepo.ListByScan(ctx, scanID)
}

func (s *extractionService) ExportURL(ctx context.Context, jobID uuid.UUID) (string, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	if job.Status != domain.JobStatusCompleted || job.ExportKey == "" {
		return "", domain.ErrJobNotFinished
	}
	return s.storage.GetPresignedURL(ctx, job.ExportBucket, job.ExportKey, s.s3cfg.PresignExpiry)
}

// RunJob executes a claimed job. Infrastructure errors requeue the job while
// attempts remain; deterministic pipeline failures are terminal.
func (s *extractionService) RunJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int) {
	result := s.process(ctx, job, maxRetries)
	if result.Success {
		log.Printf("extractionService.RunJob: job %s completed (%d rows, %d columns, backend=%s)",
			job.ID, result.RowsExtracted, result.ColumnsDetected, result.Backend)
	} else {
		log.Printf("extractionService.RunJob: job %s failed: %s", job.ID, result.Error)
	}
}

// process runs the pipeline for one job and persists the outcome. It always
// returns a structured result; failures before the pipeline (scan lookup,
// download) produce a failure result just like pipeline failures do.
func (s *extractionService) process(ctx context.Context, job *domain.ExtractionJob, maxRetries int) *domain.ExtractionResult {
	scan, err := s.scanRepo.GetByID(ctx, job.ScanID)
	if err != nil {
		return s.failJobWithResult(ctx, job, nil, fmt.Sprintf("loading scan: %v", err), false, maxRetries)
	}

	imageBytes, err := s.storage.Download(ctx, scan.S3Bucket, scan.S3Key)
	if err != nil {
		return s.failJobWithResult(ctx, job, scan, fmt.Sprintf("downloading scan: %v", err), true, maxRetries)
	}

	result := s.builder.Extract(ctx, port.LocateInput{
		ImageBytes:  imageBytes,
		ContentType: scan.ContentType,
	})

	job.Backend = result.Backend
	if resultJSON, jsonErr := json.Marshal(result); jsonErr == nil {
		job.ResultJSON = resultJSON
	}

	if !result.Success {
		// Empty or structureless images never change on retry; backend
		// errors might.
		s.failJob(ctx, job, scan, result.Error, retryableFailure(result.Error), maxRetries)
		return result
	}

	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, result.Table, s.exportCfg.SheetName); err != nil {
		s.failJob(ctx, job, scan, fmt.Sprintf("writing workbook: %v", err), true, maxRetries)
		return result
	}

	exportKey := fmt.Sprintf("exports/%s.xlsx", job.ID)
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         exportKey,
		Body:        &buf,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Size:        int64(buf.Len()),
	})
	if err != nil {
		s.failJob(ctx, job, scan, fmt.Sprintf("uploading workbook: %v", err), true, maxRetries)
		return result
	}
	job.ExportBucket = s.s3cfg.Bucket
	job.ExportKey = exportKey

	if err := s.jobRepo.MarkCompleted(ctx, job); err != nil {
		log.Printf("extractionService.process: failed to save results for job %s: %v", job.ID, err)
		return result
	}
	if err := s.scanRepo.UpdateStatus(ctx, scan.ID, domain.ScanStatusExtracted); err != nil {
		log.Printf("extractionService.process: failed to update scan %s status: %v", scan.ID, err)
	}

	return result
}

// failJobWithResult records a failure that happened before the pipeline ran,
// so a caller still gets a result record for it.
func (s *extractionService) failJobWithResult(ctx context.Context, job *domain.ExtractionJob, scan *domain.Scan, msg string, retryable bool, maxRetries int) *domain.ExtractionResult {
	result := &domain.ExtractionResult{Success: false, Error: msg}
	if resultJSON, jsonErr := json.Marshal(result); jsonErr == nil {
		job.ResultJSON = resultJSON
	}
	s.failJob(ctx, job, scan, msg, retryable, maxRetries)
	return result
}

// failJob persists a job failure, requeueing retryable ones while attempts
// remain. The scan is only marked failed on a terminal failure.
func (s *extractionService) failJob(ctx context.Context, job *domain.ExtractionJob, scan *domain.Scan, msg string, retryable bool, maxRetries int) {
	requeue := retryable && job.Attempts < maxRetries
	job.Error = msg

	if err := s.jobRepo.MarkFailed(ctx, job, requeue); err != nil {
		log.Printf("extractionService.failJob: failed to persist failure for job %s: %v", job.ID, err)
		return
	}

	if requeue {
		log.Printf("extractionService.failJob: job %s requeued after attempt %d: %s", job.ID, job.Attempts, msg)
		return
	}

	log.Printf("extractionService.failJob: job %s failed terminally: %s", job.ID, msg)
	if scan != nil {
		if err := s.scanRepo.UpdateStatus(ctx, scan.ID, domain.ScanStatusFailed); err != nil {
			log.Printf("extractionService.failJob: failed to update scan %s status: %v", scan.ID, err)
		}
	}
}

// retryableFailure reports whether a pipeline failure could resolve on a
// later attempt. Deterministic outcomes (blank image, no table structure,
// in-pipeline panic) never change between runs.
func retryableFailure(msg string) bool {
	switch msg {
	case domain.ErrNoTextDetected.Error(), domain.ErrNoTableStructure.Error():
		return false
	}
	return !strings.HasPrefix(msg, "reconstruction failed:")
}
