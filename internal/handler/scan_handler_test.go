package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"scantab/internal/domain"
	"scantab/internal/handler"
	"scantab/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartBody(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, _ = part.Write(content)
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestScanHandler_Upload_Success(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	scanID := uuid.New()
	scan := &domain.Scan{
		ID:           scanID,
		FileName:     scanID.String() + ".png",
		OriginalName: "receipt.png",
		ContentType:  "image/png",
		Status:       domain.ScanStatusUploaded,
	}
	job := &domain.ExtractionJob{ID: uuid.New(), ScanID: scanID, Status: domain.JobStatusQueued}

	mockScanSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.ScanUploadInput")).
		Return(scan, nil)
	mockExtractSvc.On("Enqueue", mock.Anything, scanID).Return(job, nil)

	body, contentType := multipartBody(t, "receipt.png", []byte("fake image content"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockScanSvc.AssertExpectations(t)
	mockExtractSvc.AssertExpectations(t)
}

func TestScanHandler_Upload_NoFile(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", nil)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockScanSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestScanHandler_Upload_UnsupportedType(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	mockScanSvc.On("Upload", mock.Anything, mock.AnythingOfType("service.ScanUploadInput")).
		Return(nil, domain.ErrUnsupportedFileType)

	body, contentType := multipartBody(t, "report.pdf", []byte("%PDF-1.4"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", body)
	c.Request.Header.Set("Content-Type", contentType)

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", resp.Error.Code)
}

func TestScanHandler_Get_NotFound(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	scanID := uuid.New()
	mockScanSvc.On("GetByID", mock.Anything, scanID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/"+scanID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanHandler_Get_InvalidID(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockScanSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestScanHandler_List(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	scans := []domain.Scan{{ID: uuid.New()}, {ID: uuid.New()}}
	mockScanSvc.On("List", mock.Anything, 0, 20).Return(scans, 2, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Meta.Total)
}

func TestScanHandler_Extract_Success(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	scanID := uuid.New()
	job := &domain.ExtractionJob{ID: uuid.New(), ScanID: scanID, Status: domain.JobStatusCompleted}
	result := &domain.ExtractionResult{
		Success:         true,
		RowsExtracted:   2,
		ColumnsDetected: 3,
		Backend:         "google_vision",
	}

	mockExtractSvc.On("ExtractNow", mock.Anything, scanID).Return(job, result, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans/"+scanID.String()+"/extract", nil)
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}

	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockExtractSvc.AssertExpectations(t)
}

func TestScanHandler_Delete(t *testing.T) {
	mockScanSvc := new(mocks.MockScanService)
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewScanHandler(mockScanSvc, mockExtractSvc)

	scanID := uuid.New()
	mockScanSvc.On("Delete", mock.Anything, scanID).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/api/v1/scans/"+scanID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockScanSvc.AssertExpectations(t)
}
