package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Enqueue(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) ExtractNow(ctx context.Context, scanID uuid.UUID) (*domain.ExtractionJob, *domain.ExtractionResult, error) {
	args := m.Called(ctx, scanID)
	var job *domain.ExtractionJob
	if args.Get(0) != nil {
		job = args.Get(0).(*domain.ExtractionJob)
	}
	var result *domain.ExtractionResult
	if args.Get(1) != nil {
		result = args.Get(1).(*domain.ExtractionResult)
	}
	return job, result, args.Error(2)
}

func (m *MockExtractionService) GetJob(ctx context.Context, jobID uuid.UUID) (*domain.ExtractionJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) ListByScan(ctx context.Context, scanID uuid.UUID) ([]domain.ExtractionJob, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionJob), args.Error(1)
}

func (m *MockExtractionService) ExportURL(ctx context.Context, jobID uuid.UUID) (string, error) {
	args := m.Called(ctx, jobID)
	return args.String(0), args.Error(1)
}

func (m *MockExtractionService) RunJob(ctx context.Context, job *domain.ExtractionJob, maxRetries int) {
	m.Called(ctx, job, maxRetries)
}
