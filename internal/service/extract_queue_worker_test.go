package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
	"scantab/internal/service"
	"scantab/mocks"
)

func TestExtractQueueWorker_PollsAndDispatches(t *testing.T) {
	jobRepo := new(mocks.MockExtractionJobRepository)
	extractSvc := new(mocks.MockExtractionService)

	job := domain.ExtractionJob{
		ID:       uuid.New(),
		ScanID:   uuid.New(),
		Status:   domain.JobStatusProcessing,
		Attempts: 1,
	}

	// First poll returns one job, subsequent polls return empty
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{job}, nil).Once()
	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()

	extractSvc.On("RunJob", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob"), 3).
		Return().Maybe()

	cfg := service.ExtractQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}
	worker := service.NewExtractQueueWorker(jobRepo, extractSvc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	// Wait for at least one poll cycle
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	jobRepo.AssertCalled(t, "ClaimQueued", mock.Anything, mock.AnythingOfType("int"))
	extractSvc.AssertCalled(t, "RunJob", mock.Anything, mock.AnythingOfType("*domain.ExtractionJob"), 3)
}

func TestExtractQueueWorker_RespectsConcurrencyCap(t *testing.T) {
	jobRepo := new(mocks.MockExtractionJobRepository)
	extractSvc := new(mocks.MockExtractionService)

	cfg := service.ExtractQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  2,
	}

	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()

	worker := service.NewExtractQueueWorker(jobRepo, extractSvc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	for _, call := range jobRepo.Calls {
		if call.Method == "ClaimQueued" {
			limit := call.Arguments.Get(1).(int)
			assert.LessOrEqual(t, limit, cfg.Concurrency)
		}
	}
}

func TestExtractQueueWorker_StopsOnCancel(t *testing.T) {
	jobRepo := new(mocks.MockExtractionJobRepository)
	extractSvc := new(mocks.MockExtractionService)

	jobRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int")).
		Return([]domain.ExtractionJob{}, nil).Maybe()

	cfg := service.ExtractQueueConfig{
		PollInterval: 20 * time.Millisecond,
		MaxRetries:   3,
		Concurrency:  1,
	}
	worker := service.NewExtractQueueWorker(jobRepo, extractSvc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
