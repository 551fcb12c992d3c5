package router

import (
	"github.com/gin-gonic/gin"

	"scantab/internal/config"
	"scantab/internal/handler"
	"scantab/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	scanH *handler.ScanHandler,
	jobH *handler.JobHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Scan routes
	scans := v1.Group("/scans")
	scans.POST("", scanH.Upload)
	scans.GET("", scanH.List)
	scans.GET("/:id", scanH.Get)
	scans.GET("/:id/download", scanH.Download)
	scans.GET("/:id/jobs", scanH.ListJobs)
	scans.POST("/:id/extract", scanH.Extract)
	scans.DELETE("/:id", scanH.Delete)

	// Extraction job routes
	jobs := v1.Group("/jobs")
	jobs.GET("/:id", jobH.Get)
	jobs.GET("/:id/export", jobH.Export)

	return r
}
