package service_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"scantab/internal/config"
	"scantab/internal/domain"
	"scantab/internal/port"
	"scantab/internal/service"
	"scantab/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		MaxFileSizeMB: 20,
		PresignExpiry: 3600,
	}
}

// createMultipartFile creates a fake multipart file header and content for testing.
func createMultipartFile(filename string, content []byte, contentType string) (multipart.File, *multipart.FileHeader) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)

	part, _ := writer.CreatePart(h)
	_, _ = part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content) + 1024))
	file, _ := form.File["file"][0].Open()
	return file, form.File["file"][0]
}

// pngContent returns minimal valid PNG bytes (magic bytes).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

// jpegContent returns minimal valid JPEG bytes (magic bytes).
func jpegContent() []byte {
	header := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func TestScanService_Upload_Success_PNG(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	file, header := createMultipartFile("receipt.png", pngContent(), "image/png")
	defer file.Close()

	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://test-bucket.s3.amazonaws.com/test", ETag: "abc"}, nil)
	scanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Scan")).Return(nil)

	scan, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.NoError(t, err)
	assert.Equal(t, domain.ScanStatusUploaded, scan.Status)
	assert.Equal(t, "receipt.png", scan.OriginalName)
	assert.Equal(t, "image/png", scan.ContentType)
	assert.Equal(t, "test-bucket", scan.S3Bucket)
	assert.Contains(t, scan.S3Key, "scans/")

	scanRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestScanService_Upload_Success_JPEG(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	file, header := createMultipartFile("table.jpg", jpegContent(), "image/jpeg")
	defer file.Close()

	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(&port.UploadOutput{Location: "https://s3/test", ETag: "abc"}, nil)
	scanRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Scan")).Return(nil)

	scan, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.NoError(t, err)
	assert.Equal(t, "image/jpeg", scan.ContentType)
}

func TestScanService_Upload_UnsupportedExtension(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	file, header := createMultipartFile("report.pdf", []byte("%PDF-1.4 not an image"), "application/pdf")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestScanService_Upload_ContentMismatch(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	// .png extension, but plain text content
	file, header := createMultipartFile("fake.png", []byte("definitely not a PNG image"), "image/png")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestScanService_Upload_FileTooLarge(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	cfg.MaxFileSizeMB = 0
	svc := service.NewScanService(scanRepo, storage, &cfg)

	file, header := createMultipartFile("big.png", pngContent(), "image/png")
	defer file.Close()

	_, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestScanService_Upload_StorageFailure(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	file, header := createMultipartFile("receipt.png", pngContent(), "image/png")
	defer file.Close()

	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).
		Return(nil, assert.AnError)

	_, err := svc.Upload(context.Background(), service.ScanUploadInput{File: file, Header: header})

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	scanRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestScanService_GetDownloadURL(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	scanID := uuid.New()
	scan := &domain.Scan{ID: scanID, S3Bucket: "test-bucket", S3Key: "scans/x/receipt.png"}

	scanRepo.On("GetByID", mock.Anything, scanID).Return(scan, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", "scans/x/receipt.png", int64(3600)).
		Return("https://presigned.example/receipt.png", nil)

	url, err := svc.GetDownloadURL(context.Background(), scanID)

	assert.NoError(t, err)
	assert.Equal(t, "https://presigned.example/receipt.png", url)
}

func TestScanService_Delete(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	scanID := uuid.New()
	scan := &domain.Scan{ID: scanID, S3Bucket: "test-bucket", S3Key: "scans/x/receipt.png"}

	scanRepo.On("GetByID", mock.Anything, scanID).Return(scan, nil)
	storage.On("Delete", mock.Anything, "test-bucket", "scans/x/receipt.png").Return(nil)
	scanRepo.On("UpdateStatus", mock.Anything, scanID, domain.ScanStatusDeleted).Return(nil)

	err := svc.Delete(context.Background(), scanID)

	assert.NoError(t, err)
	scanRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestScanService_Delete_NotFound(t *testing.T) {
	scanRepo := new(mocks.MockScanRepository)
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewScanService(scanRepo, storage, &cfg)

	scanID := uuid.New()
	scanRepo.On("GetByID", mock.Anything, scanID).Return(nil, domain.ErrNotFound)

	err := svc.Delete(context.Background(), scanID)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}
