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

type scanRepo struct {
	db *sqlx.DB
}

// NewScanRepo creates a new PostgreSQL-backed ScanRepository.
func NewScanRepo(db *sqlx.DB) port.ScanRepository {
	return &scanRepo{db: db}
}

func (r *scanRepo) Create(ctx context.Context, scan *domain.Scan) error {
	now := time.Now().UTC()
	scan.CreatedAt = now
	scan.UpdatedAt = now

	query := `INSERT INTO scans
		(id, file_name, original_name, content_type, file_size,
		 s3_bucket, s3_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		scan.ID, scan.FileName, scan.OriginalName, scan.ContentType, scan.FileSize,
		scan.S3Bucket, scan.S3Key, scan.Status, scan.CreatedAt, scan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("scanRepo.Create: %w", err)
	}
	return nil
}

func (r *scanRepo) GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error) {
	var scan domain.Scan
	err := r.db.GetContext(ctx, &scan,
		"SELECT * FROM scans WHERE id = $1 AND status != $2", scanID, domain.ScanStatusDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanRepo.GetByID: %w", err)
	}
	return &scan, nil
}

func (r *scanRepo) List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM scans WHERE status != $1", domain.ScanStatusDeleted)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List count: %w", err)
	}

	var scans []domain.Scan
	err = r.db.SelectContext(ctx, &scans,
		`SELECT * FROM scans
		 WHERE status != $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		domain.ScanStatusDeleted, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("scanRepo.List: %w", err)
	}
	return scans, total, nil
}

func (r *scanRepo) UpdateStatus(ctx context.Context, scanID uuid.UUID, status domain.ScanStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE scans SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), scanID)
	if err != nil {
		return fmt.Errorf("scanRepo.UpdateStatus: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("scanRepo.UpdateStatus rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
