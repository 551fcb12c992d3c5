package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scantab/internal/service"
)

// JobHandler handles extraction job endpoints.
type JobHandler struct {
	extractService service.ExtractionService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(extractService service.ExtractionService) *JobHandler {
	return &JobHandler{extractService: extractService}
}

// Get handles GET /api/v1/jobs/:id. The persisted extraction result is
// inlined into the response when present.
func (h *JobHandler) Get(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job id")
		return
	}

	job, err := h.extractService.GetJob(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var result json.RawMessage
	if len(job.ResultJSON) > 0 {
		result = json.RawMessage(job.ResultJSON)
	}

	RespondOK(c, gin.H{"job": job, "result": result})
}

// Export handles GET /api/v1/jobs/:id/export
func (h *JobHandler) Export(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid job id")
		return
	}

	url, err := h.extractService.ExportURL(c.Request.Context(), jobID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}
