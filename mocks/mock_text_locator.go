package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"scantab/internal/port"
)

// MockTextLocator is a mock implementation of port.TextLocator.
type MockTextLocator struct {
	mock.Mock
}

func (m *MockTextLocator) Locate(ctx context.Context, input port.LocateInput) (*port.LocateOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.LocateOutput), args.Error(1)
}

func (m *MockTextLocator) Name() string {
	args := m.Called()
	return args.String(0)
}
