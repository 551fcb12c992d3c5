package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
)

// MockExtractionJobRepository is a mock implementation of port.ExtractionJobRepository.
type MockExtractionJobRepository struct {
	mock.Mock
}

func (m *MockExtractionJobRepository) Enqueue(ctx context.Context, job *domain.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockExtractionJobRepository) ClaimQueued(ctx context.Context, limit int) ([]domain.ExtractionJob, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionJobRepository) MarkCompleted(ctx context.Context, job *domain.ExtractionJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockExtractionJobRepository) MarkFailed(ctx context.Context, job *domain.ExtractionJob, requeue bool) error {
	args := m.Called(ctx, job, requeue)
	return args.Error(0)
}

func (m *MockExtractionJobRepository) GetByID(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionJobRepository) ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionJob), args.Error(1)
}
