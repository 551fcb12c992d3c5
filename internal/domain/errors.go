package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrNoTextDetected      = errors.New("No text detected")
	ErrNoTableStructure    = errors.New("Could not detect table structure")
	ErrNoBackendAvailable  = errors.New("no OCR backend available")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrScanNotProcessed    = errors.New("scan has not been processed yet")
	ErrJobNotFinished      = errors.New("extraction job has not finished yet")
)
