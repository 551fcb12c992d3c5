package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
	"scantab/internal/service"
)

// MockScanService is a mock implementation of service.ScanService.
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Upload(ctx context.Context, input service.ScanUploadInput) (*domain.Scan, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanService) GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanService) List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Scan), args.Int(1), args.Error(2)
}

func (m *MockScanService) GetDownloadURL(ctx context.Context, scanID uuid.UUID) (string, error) {
	args := m.Called(ctx, scanID)
	return args.String(0), args.Error(1)
}

func (m *MockScanService) Delete(ctx context.Context, scanID uuid.UUID) error {
	args := m.Called(ctx, scanID)
	return args.Error(0)
}
