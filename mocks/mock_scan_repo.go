package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
)

// MockScanRepository is a mock implementation of port.ScanRepository.
type MockScanRepository struct {
	mock.Mock
}

func (m *MockScanRepository) Create(ctx context.Context, scan *domain.Scan) error {
	args := m.Called(ctx, scan)
	return args.Error(0)
}

func (m *MockScanRepository) GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error) {
	args := m.Called(ctx, scanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Scan), args.Error(1)
}

func (m *MockScanRepository) List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Scan), args.Int(1), args.Error(2)
}

func (m *MockScanRepository) UpdateStatus(ctx context.Context, scanID uuid.UUID, status domain.ScanStatus) error {
	args := m.Called(ctx, scanID, status)
	return args.Error(0)
}
