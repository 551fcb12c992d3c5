package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/port"
)

// ScanUploadInput is the DTO for scan upload requests.
type ScanUploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// ScanService defines the scan image management contract.
type ScanService interface {
	Upload(ctx context.Context, input ScanUploadInput) (*domain.Scan, error)
	GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error)
	List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error)
	GetDownloadURL(ctx context.Context, scanID uuid.UUID) (string, error)
	Delete(ctx context.Context, scanID uuid.UUID) error
}

type scanService struct {
	scanRepo port.ScanRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewScanService creates a new ScanService implementation.
func NewScanService(
	scanRepo port.ScanRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) ScanService {
	return &scanService{
		scanRepo: scanRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *scanService) Upload(ctx context.Context, input ScanUploadInput) (*domain.Scan, error) {
	// Validate file extension
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	imageType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	// Validate file size
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	detectedType := http.DetectContentType(buf[:n])

	// Validate detected content type
	if _, validContent := domain.AllowedContentTypes[detectedType]; !validContent {
		return nil, domain.ErrUnsupportedFileType
	}

	// Seek back to beginning for upload
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	// Generate storage key and scan metadata
	scanID := uuid.New()
	s3Key := fmt.Sprintf("scans/%s/%s", scanID, input.Header.Filename)
	contentType := domain.AllowedImageTypes[imageType]

	scan := &domain.Scan{
		ID:           scanID,
		FileName:     scanID.String() + "." + ext,
		OriginalName: input.Header.Filename,
		ContentType:  contentType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		Status:       domain.ScanStatusUploaded,
	}

	log.Printf("scanService.Upload: uploading scan %s (%s, %d bytes)",
		input.Header.Filename, contentType, input.Header.Size)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Printf("scanService.Upload: S3 upload failed for scan %s: %v", scan.ID, err)
		return nil, domain.ErrUploadFailed
	}

	if err := s.scanRepo.Create(ctx, scan); err != nil {
		log.Printf("scanService.Upload: failed to create scan metadata: %v", err)
		// Best-effort cleanup of the orphaned object
		_ = s.storage.Delete(ctx, s.cfg.Bucket, s3Key)
		return nil, fmt.Errorf("creating scan metadata: %w", err)
	}

	return scan, nil
}

func (s *scanService) GetByID(ctx context.Context, scanID uuid.UUID) (*domain.Scan, error) {
	return s.scanRepo.GetByID(ctx, scanID)
}

func (s *scanService) List(ctx context.Context, offset, limit int) ([]domain.Scan, int, error) {
	return s.scanRepo.List(ctx, offset, limit)
}

func (s *scanService) GetDownloadURL(ctx context.Context, scanID uuid.UUID) (string, error) {
	scan, err := s.scanRepo.GetByID(ctx, scanID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, scan.S3Bucket, scan.S3Key, s.cfg.PresignExpiry)
}

func (s *scanService) Delete(ctx context.Context, scanID uuid.UUID) error {
	log.Printf("scanService.Delete: deleting scan %s", scanID)

	scan, err := s.scanRepo.GetByID(ctx, scanID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, scan.S3Bucket, scan.S3Key); err != nil {
		log.Printf("scanService.Delete: failed to delete from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.scanRepo.UpdateStatus(ctx, scanID, domain.ScanStatusDeleted)
}
