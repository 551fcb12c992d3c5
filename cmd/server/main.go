package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/handler"
	"scantab/internal/locator"
	"scantab/internal/port"
	"scantab/internal/reconstruct"
	"scantab/internal/repository/postgres"
	"scantab/internal/router"
	"scantab/internal/service"
	s3storage "scantab/internal/storage/s3"

	// Register locator providers.
	_ "scantab/internal/locator/geminivision"
	_ "scantab/internal/locator/googlevision"
	_ "scantab/internal/locator/tesseract"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	scanRepo := postgres.NewScanRepo(db)
	jobRepo := postgres.NewExtractionJobRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Build the locator chain from configured providers
	chain, err := buildLocatorChain(&cfg.Locator)
	if err != nil {
		return err
	}
	builder := reconstruct.NewBuilder(chain)

	// Initialize services
	scanSvc := service.NewScanService(scanRepo, s3Client, &cfg.S3)
	extractSvc := service.NewExtractionService(scanRepo, jobRepo, s3Client, builder, &cfg.S3, &cfg.Export)

	// Initialize handlers
	scanH := handler.NewScanHandler(scanSvc, extractSvc)
	jobH := handler.NewJobHandler(extractSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, scanH, jobH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the extraction queue worker
	worker := service.NewExtractQueueWorker(jobRepo, extractSvc, service.ExtractQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(workerDone)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	<-workerDone

	return nil
}

// buildLocatorChain creates the fallback chain of OCR backends from the
// configured provider tiers.
func buildLocatorChain(cfg *config.LocatorConfig) (port.TextLocator, error) {
	var locators []port.TextLocator
	for _, pc := range cfg.Configured() {
		loc, err := locator.NewLocator(pc)
		if err != nil {
			return nil, fmt.Errorf("initializing locator %q: %w", pc.Provider, err)
		}
		locators = append(locators, loc)
	}
	if len(locators) == 0 {
		return nil, domain.ErrNoBackendAvailable
	}
	if len(locators) == 1 {
		return locators[0], nil
	}
	return locator.NewChainLocator(locators), nil
}
