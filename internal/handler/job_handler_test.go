package handler_test

import (
	"encoding/json"
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

func TestJobHandler_Get_Success(t *testing.T) {
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockExtractSvc)

	jobID := uuid.New()
	resultJSON, _ := json.Marshal(domain.ExtractionResult{
		Success:       true,
		RowsExtracted: 3,
		Backend:       "tesseract",
	})
	job := &domain.ExtractionJob{
		ID:         jobID,
		Status:     domain.JobStatusCompleted,
		Backend:    "tesseract",
		ResultJSON: resultJSON,
	}

	mockExtractSvc.On("GetJob", mock.Anything, jobID).Return(job, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	result := data["result"].(map[string]interface{})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(3), result["rows_extracted"])
}

func TestJobHandler_Get_NotFound(t *testing.T) {
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockExtractSvc)

	jobID := uuid.New()
	mockExtractSvc.On("GetJob", mock.Anything, jobID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobHandler_Export_Success(t *testing.T) {
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockExtractSvc)

	jobID := uuid.New()
	mockExtractSvc.On("ExportURL", mock.Anything, jobID).
		Return("https://presigned.example/export.xlsx", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String()+"/export", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "https://presigned.example/export.xlsx", data["url"])
}

func TestJobHandler_Export_NotFinished(t *testing.T) {
	mockExtractSvc := new(mocks.MockExtractionService)
	h := handler.NewJobHandler(mockExtractSvc)

	jobID := uuid.New()
	mockExtractSvc.On("ExportURL", mock.Anything, jobID).
		Return("", domain.ErrJobNotFinished)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/jobs/"+jobID.String()+"/export", nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "JOB_NOT_FINISHED", resp.Error.Code)
}
