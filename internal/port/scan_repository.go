package port

import (
	"context"

	"github.com/google/uuid"

	"scantab/internal/domain"
)

// ScanRepository persists uploaded scan metadata.
type ScanRepository interface {
	Create(ctx context.Context, scan *domain.Scan) error
	GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error)
	List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error)
	UpdateStatus(ctx context.Context, scanID uuid.UUID, status domain.ScanStatus) error
}
