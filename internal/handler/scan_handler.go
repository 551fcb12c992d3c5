package handler

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"scantab/internal/service"
)

// ScanHandler handles scan upload and management endpoints.
type ScanHandler struct {
	scanService    service.ScanService
	extractService service.ExtractionService
}

// NewScanHandler creates a new ScanHandler.
func NewScanHandler(scanService service.ScanService, extractService service.ExtractionService) *ScanHandler {
	return &ScanHandler{scanService: scanService, extractService: extractService}
}

// Upload handles POST /api/v1/scans. The uploaded image is stored and an
// extraction job is queued for it.
func (h *ScanHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	scan, err := h.scanService.Upload(c.Request.Context(), service.ScanUploadInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	job, err := h.extractService.Enqueue(c.Request.Context(), scan.ID)
	if err != nil {
		// The scan itself is stored; report it with a warning instead of
		// failing the whole upload.
		log.Printf("scanHandler.Upload: failed to enqueue job for scan %s: %v", scan.ID, err)
		c.JSON(http.StatusCreated, APIResponse{
			Success: true,
			Data: gin.H{
				"scan":    scan,
				"warning": "scan uploaded but extraction could not be queued",
			},
		})
		return
	}

	RespondCreated(c, gin.H{"scan": scan, "job": job})
}

// List handles GET /api/v1/scans
func (h *ScanHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	scans, total, err := h.scanService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, scans, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/scans/:id
func (h *ScanHandler) Get(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	scan, err := h.scanService.GetByID(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, scan)
}

// Download handles GET /api/v1/scans/:id/download
func (h *ScanHandler) Download(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	url, err := h.scanService.GetDownloadURL(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Extract handles POST /api/v1/scans/:id/extract. The pipeline runs
// synchronously and the structured result is returned directly.
func (h *ScanHandler) Extract(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	job, result, err := h.extractService.ExtractNow(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"job_id": job.ID, "result": result})
}

// ListJobs handles GET /api/v1/scans/:id/jobs
func (h *ScanHandler) ListJobs(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	jobs, err := h.extractService.ListByScan(c.Request.Context(), scanID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, jobs)
}

// Delete handles DELETE /api/v1/scans/:id
func (h *ScanHandler) Delete(c *gin.Context) {
	scanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid scan id")
		return
	}

	if err := h.scanService.Delete(c.Request.Context(), scanID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": scanID})
}
